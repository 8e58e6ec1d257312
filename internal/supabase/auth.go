package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// adminPrefix is the GoTrue admin mount point on a Supabase project.
// Every operation here requires the service-role key.
const adminPrefix = "/auth/v1/admin/users"

// ListUsers returns one page of users. page and perPage fall back to the
// GoTrue defaults when zero.
func (c *Client) ListUsers(ctx context.Context, page, perPage int) (*UserPage, error) {
	params := url.Values{}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		params.Set("per_page", strconv.Itoa(perPage))
	}
	path := adminPrefix
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var result UserPage
	if err := c.getJSON(ctx, path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetUser fetches a single user by id.
func (c *Client) GetUser(ctx context.Context, userID string) (*User, error) {
	var user User
	if err := c.getJSON(ctx, adminPrefix+"/"+url.PathEscape(userID), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser creates a user with the given attributes.
func (c *Client) CreateUser(ctx context.Context, attrs UserAttributes) (*User, error) {
	body, err := c.doJSON(ctx, http.MethodPost, adminPrefix, attrs, nil)
	if err != nil {
		return nil, err
	}
	return decodeUser(body)
}

// UpdateUser updates a user's attributes. Zero-valued fields are omitted
// from the payload and left untouched.
func (c *Client) UpdateUser(ctx context.Context, userID string, attrs UserAttributes) (*User, error) {
	body, err := c.doJSON(ctx, http.MethodPut, adminPrefix+"/"+url.PathEscape(userID), attrs, nil)
	if err != nil {
		return nil, err
	}
	return decodeUser(body)
}

// DeleteUser removes a user by id.
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	_, err := c.doJSON(ctx, http.MethodDelete, adminPrefix+"/"+url.PathEscape(userID), nil, nil)
	return err
}

// AssignRole adds a role to app_metadata.roles on the user. Assigning an
// already-held role is a no-op.
func (c *Client) AssignRole(ctx context.Context, userID, role string) (*User, error) {
	user, err := c.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	roles := user.Roles()
	for _, r := range roles {
		if r == role {
			return user, nil
		}
	}
	roles = append(roles, role)

	return c.setRoles(ctx, userID, roles)
}

// RemoveRole drops a role from app_metadata.roles on the user.
func (c *Client) RemoveRole(ctx context.Context, userID, role string) (*User, error) {
	user, err := c.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	roles := user.Roles()
	kept := make([]string, 0, len(roles))
	for _, r := range roles {
		if r != role {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(roles) {
		return user, nil
	}

	return c.setRoles(ctx, userID, kept)
}

// setRoles writes the role list back into app_metadata.
func (c *Client) setRoles(ctx context.Context, userID string, roles []string) (*User, error) {
	payload := map[string]interface{}{
		"app_metadata": map[string]interface{}{"roles": roles},
	}
	body, err := c.doJSON(ctx, http.MethodPut, adminPrefix+"/"+url.PathEscape(userID), payload, nil)
	if err != nil {
		return nil, err
	}
	return decodeUser(body)
}

func decodeUser(body []byte) (*User, error) {
	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to parse user response: %w", err)
	}
	return &user, nil
}
