// Package mcp implements the MCP-facing core: the tool catalog, the
// dispatcher, the approval gate, and the refresh notifier. Tool handlers
// delegate to collaborator interfaces so tests can observe exactly what
// reaches the platform.
package mcp

import (
	"context"

	"github.com/basefolk/supabase-mcp/internal/supabase"
)

// DataStore is the PostgREST data API surface used by the record tools.
type DataStore interface {
	Insert(ctx context.Context, table string, data supabase.Row, returning []string) ([]supabase.Row, error)
	Select(ctx context.Context, q supabase.SelectQuery) ([]supabase.Row, error)
	Update(ctx context.Context, table string, data supabase.Row, filter []supabase.Condition, returning []string) ([]supabase.Row, error)
	Delete(ctx context.Context, table string, filter []supabase.Condition, returning []string) ([]supabase.Row, error)
}

// ObjectStore is the Storage API surface used by the file tools.
type ObjectStore interface {
	Upload(ctx context.Context, r supabase.UploadRequest) (*supabase.UploadResult, error)
	Download(ctx context.Context, bucket, path string) (*supabase.DownloadResult, error)
}

// FunctionInvoker is the Edge Functions surface.
type FunctionInvoker interface {
	Invoke(ctx context.Context, name string, payload interface{}, headers map[string]string, responseType string) (interface{}, error)
}

// UserAdmin is the GoTrue admin surface used by the user tools.
type UserAdmin interface {
	ListUsers(ctx context.Context, page, perPage int) (*supabase.UserPage, error)
	GetUser(ctx context.Context, userID string) (*supabase.User, error)
	CreateUser(ctx context.Context, attrs supabase.UserAttributes) (*supabase.User, error)
	UpdateUser(ctx context.Context, userID string, attrs supabase.UserAttributes) (*supabase.User, error)
	DeleteUser(ctx context.Context, userID string) error
	AssignRole(ctx context.Context, userID, role string) (*supabase.User, error)
	RemoveRole(ctx context.Context, userID, role string) (*supabase.User, error)
}

// Management is the platform Management API surface.
type Management interface {
	ListProjects(ctx context.Context) ([]supabase.Project, error)
	GetProject(ctx context.Context, projectID string) (*supabase.Project, error)
	CreateProject(ctx context.Context, req supabase.CreateProjectRequest) (*supabase.Project, error)
	DeleteProject(ctx context.Context, projectID string) error
	ListOrganizations(ctx context.Context) ([]supabase.Organization, error)
	GetOrganization(ctx context.Context, orgID string) (*supabase.Organization, error)
	CreateOrganization(ctx context.Context, name string) (*supabase.Organization, error)
	GetProjectAPIKeys(ctx context.Context, projectID string) ([]supabase.APIKey, error)
}

// Backends bundles every collaborator the tool handlers need.
type Backends struct {
	Data       DataStore
	Objects    ObjectStore
	Functions  FunctionInvoker
	Users      UserAdmin
	Management Management
}
