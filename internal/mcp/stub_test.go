package mcp

import (
	"context"
	"fmt"

	"github.com/basefolk/supabase-mcp/internal/common"
	"github.com/basefolk/supabase-mcp/internal/supabase"
)

func testLogger() *common.Logger {
	return common.NewSilentLogger()
}

// stubBackends implements every collaborator interface, recording each
// invocation so tests can assert exactly what reached the platform.
type stubBackends struct {
	calls []string
	err   error

	rows       []supabase.Row
	lastInsert supabase.Row
	lastQuery  supabase.SelectQuery
	lastFilter []supabase.Condition

	uploadReq  supabase.UploadRequest
	download   *supabase.DownloadResult
	invokeName string
	invokeBody interface{}
	invokeHdrs map[string]string
	invokeType string
	invokeOut  interface{}

	user     *supabase.User
	userPage *supabase.UserPage
	projects []supabase.Project
	project  *supabase.Project
	orgs     []supabase.Organization
	org      *supabase.Organization
	keys     []supabase.APIKey
}

func newStubBackends() *stubBackends {
	return &stubBackends{
		rows:     []supabase.Row{{"id": float64(1)}},
		download: &supabase.DownloadResult{Content: []byte("hello"), ContentType: "text/plain"},
		user:     &supabase.User{ID: "u1", Email: "a@b.co"},
		userPage: &supabase.UserPage{Users: []supabase.User{{ID: "u1"}}},
		projects: []supabase.Project{{ID: "p1", Name: "demo"}},
		project:  &supabase.Project{ID: "p1", Name: "demo"},
		orgs:     []supabase.Organization{{ID: "o1", Name: "acme"}},
		org:      &supabase.Organization{ID: "o1", Name: "acme"},
		keys:     []supabase.APIKey{{Name: "anon", APIKey: "key"}},
	}
}

func (s *stubBackends) record(name string) { s.calls = append(s.calls, name) }

func (s *stubBackends) backends() Backends {
	return Backends{Data: s, Objects: s, Functions: s, Users: s, Management: s}
}

// DataStore

func (s *stubBackends) Insert(ctx context.Context, table string, data supabase.Row, returning []string) ([]supabase.Row, error) {
	s.record("insert:" + table)
	s.lastInsert = data
	return s.rows, s.err
}

func (s *stubBackends) Select(ctx context.Context, q supabase.SelectQuery) ([]supabase.Row, error) {
	s.record("select:" + q.Table)
	s.lastQuery = q
	return s.rows, s.err
}

func (s *stubBackends) Update(ctx context.Context, table string, data supabase.Row, filter []supabase.Condition, returning []string) ([]supabase.Row, error) {
	s.record("update:" + table)
	s.lastInsert = data
	s.lastFilter = filter
	return s.rows, s.err
}

func (s *stubBackends) Delete(ctx context.Context, table string, filter []supabase.Condition, returning []string) ([]supabase.Row, error) {
	s.record("delete:" + table)
	s.lastFilter = filter
	return s.rows, s.err
}

// ObjectStore

func (s *stubBackends) Upload(ctx context.Context, r supabase.UploadRequest) (*supabase.UploadResult, error) {
	s.record("upload:" + r.Bucket)
	s.uploadReq = r
	if s.err != nil {
		return nil, s.err
	}
	return &supabase.UploadResult{Key: r.Bucket + "/" + r.Path}, nil
}

func (s *stubBackends) Download(ctx context.Context, bucket, path string) (*supabase.DownloadResult, error) {
	s.record("download:" + bucket)
	return s.download, s.err
}

// FunctionInvoker

func (s *stubBackends) Invoke(ctx context.Context, name string, payload interface{}, headers map[string]string, responseType string) (interface{}, error) {
	s.record("invoke:" + name)
	s.invokeName = name
	s.invokeBody = payload
	s.invokeHdrs = headers
	s.invokeType = responseType
	if s.invokeOut != nil {
		return s.invokeOut, s.err
	}
	return map[string]interface{}{"ok": true}, s.err
}

// UserAdmin

func (s *stubBackends) ListUsers(ctx context.Context, page, perPage int) (*supabase.UserPage, error) {
	s.record(fmt.Sprintf("list_users:%d:%d", page, perPage))
	return s.userPage, s.err
}

func (s *stubBackends) GetUser(ctx context.Context, userID string) (*supabase.User, error) {
	s.record("get_user:" + userID)
	return s.user, s.err
}

func (s *stubBackends) CreateUser(ctx context.Context, attrs supabase.UserAttributes) (*supabase.User, error) {
	s.record("create_user:" + attrs.Email)
	return s.user, s.err
}

func (s *stubBackends) UpdateUser(ctx context.Context, userID string, attrs supabase.UserAttributes) (*supabase.User, error) {
	s.record("update_user:" + userID)
	return s.user, s.err
}

func (s *stubBackends) DeleteUser(ctx context.Context, userID string) error {
	s.record("delete_user:" + userID)
	return s.err
}

func (s *stubBackends) AssignRole(ctx context.Context, userID, role string) (*supabase.User, error) {
	s.record("assign_role:" + userID + ":" + role)
	return s.user, s.err
}

func (s *stubBackends) RemoveRole(ctx context.Context, userID, role string) (*supabase.User, error) {
	s.record("remove_role:" + userID + ":" + role)
	return s.user, s.err
}

// Management

func (s *stubBackends) ListProjects(ctx context.Context) ([]supabase.Project, error) {
	s.record("list_projects")
	return s.projects, s.err
}

func (s *stubBackends) GetProject(ctx context.Context, projectID string) (*supabase.Project, error) {
	s.record("get_project:" + projectID)
	return s.project, s.err
}

func (s *stubBackends) CreateProject(ctx context.Context, req supabase.CreateProjectRequest) (*supabase.Project, error) {
	s.record("create_project:" + req.Name)
	return s.project, s.err
}

func (s *stubBackends) DeleteProject(ctx context.Context, projectID string) error {
	s.record("delete_project:" + projectID)
	return s.err
}

func (s *stubBackends) ListOrganizations(ctx context.Context) ([]supabase.Organization, error) {
	s.record("list_organizations")
	return s.orgs, s.err
}

func (s *stubBackends) GetOrganization(ctx context.Context, orgID string) (*supabase.Organization, error) {
	s.record("get_organization:" + orgID)
	return s.org, s.err
}

func (s *stubBackends) CreateOrganization(ctx context.Context, name string) (*supabase.Organization, error) {
	s.record("create_organization:" + name)
	return s.org, s.err
}

func (s *stubBackends) GetProjectAPIKeys(ctx context.Context, projectID string) ([]supabase.APIKey, error) {
	s.record("api_keys:" + projectID)
	return s.keys, s.err
}
