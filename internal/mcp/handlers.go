package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/basefolk/supabase-mcp/internal/supabase"
)

// --- Helpers ---

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}

// jsonResult pretty-prints a collaborator response as the single text
// content element of a successful call.
func jsonResult(v interface{}) *mcp.CallToolResult {
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("Error encoding response: %v", err))
	}
	return textResult(string(pretty))
}

func objectArg(request mcp.CallToolRequest, key string) map[string]interface{} {
	if args := request.GetArguments(); args != nil {
		if m, ok := args[key].(map[string]interface{}); ok {
			return m
		}
	}
	return nil
}

func rawArg(request mcp.CallToolRequest, key string) interface{} {
	if args := request.GetArguments(); args != nil {
		return args[key]
	}
	return nil
}

// RegisterAll wires every catalog tool to its handler on the registry.
func RegisterAll(r *Registry, b Backends) {
	r.Add(createRecordTool(), handleCreateRecord(b))
	r.Add(readRecordsTool(), handleReadRecords(b))
	r.Add(updateRecordsTool(), handleUpdateRecords(b))
	r.Add(deleteRecordsTool(), handleDeleteRecords(b))
	r.Add(uploadFileTool(), handleUploadFile(b))
	r.Add(downloadFileTool(), handleDownloadFile(b))
	r.Add(invokeFunctionTool(), handleInvokeFunction(b))
	r.Add(listProjectsTool(), handleListProjects(b))
	r.Add(getProjectTool(), handleGetProject(b))
	r.Add(createProjectTool(), handleCreateProject(b))
	r.Add(deleteProjectTool(), handleDeleteProject(b))
	r.Add(listOrganizationsTool(), handleListOrganizations(b))
	r.Add(getOrganizationTool(), handleGetOrganization(b))
	r.Add(createOrganizationTool(), handleCreateOrganization(b))
	r.Add(getProjectAPIKeysTool(), handleGetProjectAPIKeys(b))
	r.Add(listUsersTool(), handleListUsers(b))
	r.Add(getUserTool(), handleGetUser(b))
	r.Add(createUserTool(), handleCreateUser(b))
	r.Add(updateUserTool(), handleUpdateUser(b))
	r.Add(deleteUserTool(), handleDeleteUser(b))
	r.Add(assignUserRoleTool(), handleAssignUserRole(b))
	r.Add(removeUserRoleTool(), handleRemoveUserRole(b))
}

// --- Data handlers ---

func handleCreateRecord(b Backends) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		table := request.GetString("table", "")
		data := objectArg(request, "data")
		if data == nil {
			return errorResult("Error: data must be an object"), nil
		}

		rows, err := b.Data.Insert(ctx, table, data, request.GetStringSlice("returning", nil))
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return jsonResult(rows), nil
	}
}

func handleReadRecords(b Backends) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		filter, err := parseFilter(rawArg(request, "filter"))
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		joins, err := parseJoins(rawArg(request, "joins"))
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		rows, err := b.Data.Select(ctx, supabase.SelectQuery{
			Table:   request.GetString("table", ""),
			Columns: request.GetStringSlice("select", nil),
			Filter:  filter,
			Joins:   joins,
			Limit:   request.GetInt("limit", 0),
		})
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return jsonResult(rows), nil
	}
}

func handleUpdateRecords(b Backends) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		data := objectArg(request, "data")
		if data == nil {
			return errorResult("Error: data must be an object"), nil
		}
		filter, err := parseFilter(rawArg(request, "filter"))
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		rows, err := b.Data.Update(ctx, request.GetString("table", ""), data, filter,
			request.GetStringSlice("returning", nil))
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return jsonResult(rows), nil
	}
}

func handleDeleteRecords(b Backends) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		filter, err := parseFilter(rawArg(request, "filter"))
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		rows, err := b.Data.Delete(ctx, request.GetString("table", ""), filter,
			request.GetStringSlice("returning", nil))
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return jsonResult(rows), nil
	}
}

// --- Storage handlers ---

func handleUploadFile(b Backends) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		content, err := base64.StdEncoding.DecodeString(request.GetString("content", ""))
		if err != nil {
			return errorResult(fmt.Sprintf("Error: content is not valid base64: %v", err)), nil
		}

		result, err := b.Objects.Upload(ctx, supabase.UploadRequest{
			Bucket:       request.GetString("bucket", ""),
			Path:         request.GetString("path", ""),
			Content:      content,
			ContentType:  request.GetString("content_type", ""),
			CacheControl: request.GetString("cache_control", ""),
			Upsert:       request.GetBool("upsert", false),
		})
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return jsonResult(result), nil
	}
}

func handleDownloadFile(b Backends) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := b.Objects.Download(ctx,
			request.GetString("bucket", ""), request.GetString("path", ""))
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		if isTextContent(result.ContentType) {
			return textResult(string(result.Content)), nil
		}
		return jsonResult(map[string]string{
			"content_type":   result.ContentType,
			"content_base64": base64.StdEncoding.EncodeToString(result.Content),
		}), nil
	}
}

// isTextContent reports whether a MIME type is safe to return as plain text.
func isTextContent(contentType string) bool {
	mediaType := contentType
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = mediaType[:i]
	}
	mediaType = strings.TrimSpace(mediaType)

	if strings.HasPrefix(mediaType, "text/") {
		return true
	}
	switch mediaType {
	case "application/json", "application/xml", "application/javascript":
		return true
	}
	return strings.HasSuffix(mediaType, "+json") || strings.HasSuffix(mediaType, "+xml")
}

// --- Functions handler ---

func handleInvokeFunction(b Backends) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var payload interface{}
		if body := objectArg(request, "body"); body != nil {
			payload = body
		}

		result, err := b.Functions.Invoke(ctx,
			request.GetString("name", ""), payload,
			stringMap(rawArg(request, "headers")),
			request.GetString("response_type", "json"))
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		if s, ok := result.(string); ok {
			return textResult(s), nil
		}
		return jsonResult(result), nil
	}
}

// --- Management handlers ---

func handleListProjects(b Backends) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		projects, err := b.Management.ListProjects(ctx)
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return jsonResult(projects), nil
	}
}

func handleGetProject(b Backends) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		project, err := b.Management.GetProject(ctx, request.GetString("project_id", ""))
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return jsonResult(project), nil
	}
}

func handleCreateProject(b Backends) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		project, err := b.Management.CreateProject(ctx, supabase.CreateProjectRequest{
			Name:           request.GetString("name", ""),
			OrganizationID: request.GetString("organization_id", ""),
			Region:         request.GetString("region", ""),
			DBPassword:     request.GetString("db_password", ""),
		})
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return jsonResult(project), nil
	}
}

func handleDeleteProject(b Backends) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		projectID := request.GetString("project_id", "")
		if err := b.Management.DeleteProject(ctx, projectID); err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return jsonResult(map[string]string{"deleted": projectID}), nil
	}
}

func handleListOrganizations(b Backends) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		orgs, err := b.Management.ListOrganizations(ctx)
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return jsonResult(orgs), nil
	}
}

func handleGetOrganization(b Backends) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		org, err := b.Management.GetOrganization(ctx, request.GetString("organization_id", ""))
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return jsonResult(org), nil
	}
}

func handleCreateOrganization(b Backends) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		org, err := b.Management.CreateOrganization(ctx, request.GetString("name", ""))
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return jsonResult(org), nil
	}
}

func handleGetProjectAPIKeys(b Backends) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		keys, err := b.Management.GetProjectAPIKeys(ctx, request.GetString("project_id", ""))
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return jsonResult(keys), nil
	}
}

// --- User admin handlers ---

func handleListUsers(b Backends) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		page, err := b.Users.ListUsers(ctx,
			request.GetInt("page", 0), request.GetInt("per_page", 0))
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return jsonResult(page), nil
	}
}

func handleGetUser(b Backends) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		user, err := b.Users.GetUser(ctx, request.GetString("user_id", ""))
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return jsonResult(user), nil
	}
}

func handleCreateUser(b Backends) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		user, err := b.Users.CreateUser(ctx, supabase.UserAttributes{
			Email:        request.GetString("email", ""),
			Password:     request.GetString("password", ""),
			EmailConfirm: request.GetBool("email_confirm", false),
			UserMetadata: objectArg(request, "user_metadata"),
		})
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return jsonResult(user), nil
	}
}

func handleUpdateUser(b Backends) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		user, err := b.Users.UpdateUser(ctx, request.GetString("user_id", ""),
			supabase.UserAttributes{
				Email:        request.GetString("email", ""),
				Password:     request.GetString("password", ""),
				UserMetadata: objectArg(request, "user_metadata"),
			})
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return jsonResult(user), nil
	}
}

func handleDeleteUser(b Backends) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		userID := request.GetString("user_id", "")
		if err := b.Users.DeleteUser(ctx, userID); err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return jsonResult(map[string]string{"deleted": userID}), nil
	}
}

func handleAssignUserRole(b Backends) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		user, err := b.Users.AssignRole(ctx,
			request.GetString("user_id", ""), request.GetString("role", ""))
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return jsonResult(user), nil
	}
}

func handleRemoveUserRole(b Backends) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		user, err := b.Users.RemoveRole(ctx,
			request.GetString("user_id", ""), request.GetString("role", ""))
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return jsonResult(user), nil
	}
}
