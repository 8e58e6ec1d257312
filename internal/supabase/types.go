package supabase

import "fmt"

// Operator is a comparison operator in a filter condition. The names match
// PostgREST operators so serialization is a direct mapping.
type Operator string

const (
	OpEq    Operator = "eq"
	OpNeq   Operator = "neq"
	OpGt    Operator = "gt"
	OpGte   Operator = "gte"
	OpLt    Operator = "lt"
	OpLte   Operator = "lte"
	OpLike  Operator = "like"
	OpILike Operator = "ilike"
	OpIn    Operator = "in"
)

// KnownOperator reports whether op is one of the supported operators.
func KnownOperator(op string) bool {
	switch Operator(op) {
	case OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte, OpLike, OpILike, OpIn:
		return true
	}
	return false
}

// Condition is a single field comparison. All conditions in one query are
// AND-ed; there is no OR support.
type Condition struct {
	Field string
	Op    Operator
	Value interface{}
}

// JoinType is the join flavor requested for an embedded resource.
type JoinType string

const (
	JoinInner JoinType = "inner"
	JoinLeft  JoinType = "left"
	JoinRight JoinType = "right"
	JoinFull  JoinType = "full"
)

// JoinSpec describes one relational join, applied in the order given.
// On holds the parsed "leftTable.col=rightTable.col" condition.
type JoinSpec struct {
	Type  JoinType
	Table string
	On    JoinCondition
}

// JoinCondition is the two sides of a join's ON equality.
type JoinCondition struct {
	LeftTable   string
	LeftColumn  string
	RightTable  string
	RightColumn string
}

func (c JoinCondition) String() string {
	return fmt.Sprintf("%s.%s=%s.%s", c.LeftTable, c.LeftColumn, c.RightTable, c.RightColumn)
}

// SelectQuery is a structured read request against one table.
type SelectQuery struct {
	Table   string
	Columns []string // empty means all columns
	Filter  []Condition
	Joins   []JoinSpec
	Limit   int // 0 means no limit
}

// Row is one record returned by the data API.
type Row = map[string]interface{}

// UploadRequest describes a storage object upload.
type UploadRequest struct {
	Bucket       string
	Path         string
	Content      []byte
	ContentType  string
	CacheControl string
	Upsert       bool
}

// UploadResult reports where an uploaded object landed.
type UploadResult struct {
	Key string `json:"Key"`
	ID  string `json:"Id,omitempty"`
}

// DownloadResult carries a downloaded object and its content type.
type DownloadResult struct {
	Content     []byte
	ContentType string
}

// User is a GoTrue user record. Metadata is kept loosely typed because the
// platform round-trips arbitrary JSON there.
type User struct {
	ID           string                 `json:"id"`
	Aud          string                 `json:"aud,omitempty"`
	Email        string                 `json:"email"`
	Phone        string                 `json:"phone,omitempty"`
	Role         string                 `json:"role,omitempty"`
	AppMetadata  map[string]interface{} `json:"app_metadata,omitempty"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
	CreatedAt    string                 `json:"created_at,omitempty"`
	UpdatedAt    string                 `json:"updated_at,omitempty"`
}

// Roles returns the role names stored in app_metadata.roles.
func (u *User) Roles() []string {
	raw, ok := u.AppMetadata["roles"]
	if !ok {
		return nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	roles := make([]string, 0, len(list))
	for _, r := range list {
		if s, ok := r.(string); ok {
			roles = append(roles, s)
		}
	}
	return roles
}

// UserAttributes are the mutable fields accepted by create/update user.
type UserAttributes struct {
	Email        string                 `json:"email,omitempty"`
	Password     string                 `json:"password,omitempty"`
	EmailConfirm bool                   `json:"email_confirm,omitempty"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
	AppMetadata  map[string]interface{} `json:"app_metadata,omitempty"`
}

// UserPage is one page of the paginated user listing.
type UserPage struct {
	Users []User `json:"users"`
}

// Project is a Management API project record.
type Project struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization_id"`
	Name           string `json:"name"`
	Region         string `json:"region"`
	Status         string `json:"status,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
}

// CreateProjectRequest is the payload for project creation.
type CreateProjectRequest struct {
	Name           string `json:"name"`
	OrganizationID string `json:"organization_id"`
	Region         string `json:"region,omitempty"`
	DBPassword     string `json:"db_pass,omitempty"`
}

// Organization is a Management API organization record.
type Organization struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// APIKey is one entry from a project's API key listing.
type APIKey struct {
	Name   string `json:"name"`
	APIKey string `json:"api_key"`
}
