package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Catalog returns the full tool set in its fixed presentation order. The
// catalog is built once at startup; tools/list always returns this set.
func Catalog() []mcp.Tool {
	return []mcp.Tool{
		createRecordTool(),
		readRecordsTool(),
		updateRecordsTool(),
		deleteRecordsTool(),
		uploadFileTool(),
		downloadFileTool(),
		invokeFunctionTool(),
		listProjectsTool(),
		getProjectTool(),
		createProjectTool(),
		deleteProjectTool(),
		listOrganizationsTool(),
		getOrganizationTool(),
		createOrganizationTool(),
		getProjectAPIKeysTool(),
		listUsersTool(),
		getUserTool(),
		createUserTool(),
		updateUserTool(),
		deleteUserTool(),
		assignUserRoleTool(),
		removeUserRoleTool(),
	}
}

// --- Data tools ---

func createRecordTool() mcp.Tool {
	return mcp.NewTool("create_record",
		mcp.WithDescription("Create a new record in a database table. Returns the stored record."),
		mcp.WithString("table", mcp.Required(), mcp.Description("Table name (e.g., 'users', 'posts')")),
		mcp.WithObject("data", mcp.Required(), mcp.Description("Column values for the new record as a JSON object")),
		mcp.WithArray("returning", mcp.WithStringItems(), mcp.Description("Columns to return (default: all)")),
	)
}

func readRecordsTool() mcp.Tool {
	return mcp.NewTool("read_records",
		mcp.WithDescription("Read records from a database table with optional filters, joins, and a row limit."),
		mcp.WithString("table", mcp.Required(), mcp.Description("Table name to read from")),
		mcp.WithArray("select", mcp.WithStringItems(), mcp.Description("Columns to select (default: all)")),
		mcp.WithObject("filter", mcp.Description("Filter object: {column: value} for equality, or {column: {op: value}} with ops eq, neq, gt, gte, lt, lte, like, ilike, in. All conditions are AND-ed.")),
		mcp.WithArray("joins", mcp.Items(map[string]any{"type": "object"}),
			mcp.Description("Ordered joins: [{type: 'inner'|'left'|'right'|'full', table: 'other', on: 'base.col=other.col'}]. Type defaults to left.")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of rows to return")),
	)
}

func updateRecordsTool() mcp.Tool {
	return mcp.NewTool("update_records",
		mcp.WithDescription("Update every record matching the filter. Returns the updated records."),
		mcp.WithString("table", mcp.Required(), mcp.Description("Table name to update")),
		mcp.WithObject("data", mcp.Required(), mcp.Description("Column values to set as a JSON object")),
		mcp.WithObject("filter", mcp.Required(), mcp.Description("Filter selecting the records to update (same shape as read_records)")),
		mcp.WithArray("returning", mcp.WithStringItems(), mcp.Description("Columns to return (default: all)")),
	)
}

func deleteRecordsTool() mcp.Tool {
	return mcp.NewTool("delete_records",
		mcp.WithDescription("Delete every record matching the filter. Returns the deleted records."),
		mcp.WithString("table", mcp.Required(), mcp.Description("Table name to delete from")),
		mcp.WithObject("filter", mcp.Required(), mcp.Description("Filter selecting the records to delete (same shape as read_records)")),
		mcp.WithArray("returning", mcp.WithStringItems(), mcp.Description("Columns to return (default: all)")),
	)
}

// --- Storage tools ---

func uploadFileTool() mcp.Tool {
	return mcp.NewTool("upload_file",
		mcp.WithDescription("Upload a file to a storage bucket. Content is base64-encoded."),
		mcp.WithString("bucket", mcp.Required(), mcp.Description("Storage bucket name")),
		mcp.WithString("path", mcp.Required(), mcp.Description("Object path within the bucket (e.g., 'avatars/user1.png')")),
		mcp.WithString("content", mcp.Required(), mcp.Description("File content, base64-encoded")),
		mcp.WithString("content_type", mcp.Description("MIME type (default: application/octet-stream)")),
		mcp.WithString("cache_control", mcp.Description("Cache-Control header value for the stored object")),
		mcp.WithBoolean("upsert", mcp.Description("Replace an existing object at the same path (default: false)")),
	)
}

func downloadFileTool() mcp.Tool {
	return mcp.NewTool("download_file",
		mcp.WithDescription("Download a file from a storage bucket. Text content is returned as-is; binary content is base64-encoded."),
		mcp.WithString("bucket", mcp.Required(), mcp.Description("Storage bucket name")),
		mcp.WithString("path", mcp.Required(), mcp.Description("Object path within the bucket")),
	)
}

// --- Functions tool ---

func invokeFunctionTool() mcp.Tool {
	return mcp.NewTool("invoke_function",
		mcp.WithDescription("Invoke an edge function with an optional JSON body and extra headers."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Function name")),
		mcp.WithObject("body", mcp.Description("JSON body to send to the function")),
		mcp.WithObject("headers", mcp.Description("Extra request headers as {name: value}")),
		mcp.WithString("response_type", mcp.Description("How to treat the response: 'json' (default) or 'text'")),
	)
}

// --- Management tools ---

func listProjectsTool() mcp.Tool {
	return mcp.NewTool("list_projects",
		mcp.WithDescription("List all projects the access token can see."),
	)
}

func getProjectTool() mcp.Tool {
	return mcp.NewTool("get_project",
		mcp.WithDescription("Get details of a single project."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project reference id")),
	)
}

func createProjectTool() mcp.Tool {
	return mcp.NewTool("create_project",
		mcp.WithDescription("Create a new project in an organization."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Project name")),
		mcp.WithString("organization_id", mcp.Required(), mcp.Description("Organization to create the project in")),
		mcp.WithString("region", mcp.Description("Deployment region (e.g., 'us-east-1')")),
		mcp.WithString("db_password", mcp.Description("Database password for the new project")),
	)
}

func deleteProjectTool() mcp.Tool {
	return mcp.NewTool("delete_project",
		mcp.WithDescription("Delete a project. This is irreversible."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project reference id")),
	)
}

func listOrganizationsTool() mcp.Tool {
	return mcp.NewTool("list_organizations",
		mcp.WithDescription("List all organizations the access token belongs to."),
	)
}

func getOrganizationTool() mcp.Tool {
	return mcp.NewTool("get_organization",
		mcp.WithDescription("Get details of a single organization."),
		mcp.WithString("organization_id", mcp.Required(), mcp.Description("Organization id")),
	)
}

func createOrganizationTool() mcp.Tool {
	return mcp.NewTool("create_organization",
		mcp.WithDescription("Create a new organization."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Organization name")),
	)
}

func getProjectAPIKeysTool() mcp.Tool {
	return mcp.NewTool("get_project_api_keys",
		mcp.WithDescription("Get the API keys of a project."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project reference id")),
	)
}

// --- User admin tools ---

func listUsersTool() mcp.Tool {
	return mcp.NewTool("list_users",
		mcp.WithDescription("List users with optional pagination."),
		mcp.WithNumber("page", mcp.Description("Page number (1-based)")),
		mcp.WithNumber("per_page", mcp.Description("Users per page")),
	)
}

func getUserTool() mcp.Tool {
	return mcp.NewTool("get_user",
		mcp.WithDescription("Get a single user by id."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("User id")),
	)
}

func createUserTool() mcp.Tool {
	return mcp.NewTool("create_user",
		mcp.WithDescription("Create a new user."),
		mcp.WithString("email", mcp.Required(), mcp.Description("Email address")),
		mcp.WithString("password", mcp.Description("Initial password")),
		mcp.WithBoolean("email_confirm", mcp.Description("Mark the email as confirmed (default: false)")),
		mcp.WithObject("user_metadata", mcp.Description("Arbitrary user metadata as a JSON object")),
	)
}

func updateUserTool() mcp.Tool {
	return mcp.NewTool("update_user",
		mcp.WithDescription("Update a user's attributes. Omitted fields are left untouched."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("User id")),
		mcp.WithString("email", mcp.Description("New email address")),
		mcp.WithString("password", mcp.Description("New password")),
		mcp.WithObject("user_metadata", mcp.Description("User metadata to set as a JSON object")),
	)
}

func deleteUserTool() mcp.Tool {
	return mcp.NewTool("delete_user",
		mcp.WithDescription("Delete a user by id."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("User id")),
	)
}

func assignUserRoleTool() mcp.Tool {
	return mcp.NewTool("assign_user_role",
		mcp.WithDescription("Assign a role to a user. Assigning an already-held role is a no-op."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("User id")),
		mcp.WithString("role", mcp.Required(), mcp.Description("Role name to assign")),
	)
}

func removeUserRoleTool() mcp.Tool {
	return mcp.NewTool("remove_user_role",
		mcp.WithDescription("Remove a role from a user."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("User id")),
		mcp.WithString("role", mcp.Required(), mcp.Description("Role name to remove")),
	)
}
