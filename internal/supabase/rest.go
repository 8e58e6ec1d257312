package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// restPrefix is the PostgREST mount point on a Supabase project.
const restPrefix = "/rest/v1/"

// Insert creates one record in the named table and returns the stored
// representation. returning narrows the columns echoed back.
func (c *Client) Insert(ctx context.Context, table string, data Row, returning []string) ([]Row, error) {
	params := url.Values{}
	if len(returning) > 0 {
		params.Set("select", strings.Join(returning, ","))
	}

	headers := http.Header{}
	headers.Set("Prefer", "return=representation")

	body, err := c.doJSON(ctx, http.MethodPost, restPath(table, params), data, headers)
	if err != nil {
		return nil, err
	}
	return decodeRows(body)
}

// Select reads records according to the structured query. Joins are
// serialized as PostgREST embedded resources; right and full joins degrade
// to left embeds since the REST surface cannot express them.
func (c *Client) Select(ctx context.Context, q SelectQuery) ([]Row, error) {
	params := url.Values{}
	params.Set("select", selectParam(q))
	addConditions(params, q.Filter)
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+restPath(q.Table, params), nil)
	if err != nil {
		return nil, err
	}
	body, _, err := c.do(req, nil)
	if err != nil {
		return nil, err
	}
	return decodeRows(body)
}

// Update patches every record matching the filter and returns the updated
// representations.
func (c *Client) Update(ctx context.Context, table string, data Row, filter []Condition, returning []string) ([]Row, error) {
	params := url.Values{}
	addConditions(params, filter)
	if len(returning) > 0 {
		params.Set("select", strings.Join(returning, ","))
	}

	headers := http.Header{}
	headers.Set("Prefer", "return=representation")

	body, err := c.doJSON(ctx, http.MethodPatch, restPath(table, params), data, headers)
	if err != nil {
		return nil, err
	}
	return decodeRows(body)
}

// Delete removes every record matching the filter and returns the deleted
// representations.
func (c *Client) Delete(ctx context.Context, table string, filter []Condition, returning []string) ([]Row, error) {
	params := url.Values{}
	addConditions(params, filter)
	if len(returning) > 0 {
		params.Set("select", strings.Join(returning, ","))
	}

	headers := http.Header{}
	headers.Set("Prefer", "return=representation")

	body, err := c.doJSON(ctx, http.MethodDelete, restPath(table, params), nil, headers)
	if err != nil {
		return nil, err
	}
	return decodeRows(body)
}

// restPath builds the PostgREST path for a table with encoded query params.
func restPath(table string, params url.Values) string {
	path := restPrefix + url.PathEscape(table)
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	return path
}

// selectParam builds the select= projection including join embeds.
func selectParam(q SelectQuery) string {
	cols := "*"
	if len(q.Columns) > 0 {
		cols = strings.Join(q.Columns, ",")
	}
	parts := []string{cols}
	for _, j := range q.Joins {
		parts = append(parts, embedFor(q.Table, j))
	}
	return strings.Join(parts, ",")
}

// embedFor serializes one join as an embedded resource. The FK hint is the
// join column on the base table's side of the ON condition, which keeps
// PostgREST from guessing when multiple relationships exist.
func embedFor(baseTable string, j JoinSpec) string {
	hint := ""
	switch baseTable {
	case j.On.LeftTable:
		hint = j.On.LeftColumn
	case j.On.RightTable:
		hint = j.On.RightColumn
	}

	embed := j.Table
	if hint != "" {
		embed += "!" + hint
	}
	if j.Type == JoinInner {
		embed += "!inner"
	}
	return embed + "(*)"
}

// addConditions serializes filter conditions as col=op.value params.
func addConditions(params url.Values, conds []Condition) {
	for _, cond := range conds {
		params.Add(cond.Field, string(cond.Op)+"."+conditionValue(cond))
	}
}

// conditionValue formats a condition's value in PostgREST syntax.
func conditionValue(cond Condition) string {
	if cond.Op == OpIn {
		list, ok := cond.Value.([]interface{})
		if !ok {
			return "(" + quoteInElement(scalarString(cond.Value)) + ")"
		}
		elems := make([]string, 0, len(list))
		for _, v := range list {
			elems = append(elems, quoteInElement(scalarString(v)))
		}
		return "(" + strings.Join(elems, ",") + ")"
	}
	return scalarString(cond.Value)
}

// scalarString renders a scalar filter value. JSON numbers arrive as
// float64; integral values print without a decimal point.
func scalarString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// quoteInElement quotes an in-list element when it contains reserved
// characters.
func quoteInElement(s string) string {
	if strings.ContainsAny(s, ",()\" ") {
		return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
	}
	return s
}

// decodeRows parses a PostgREST response body into rows. PostgREST returns
// an array even for single-record operations; an empty body means no
// representation was requested.
func decodeRows(body []byte) ([]Row, error) {
	if len(body) == 0 {
		return nil, nil
	}
	var rows []Row
	if err := json.Unmarshal(body, &rows); err != nil {
		// Single-object responses occur with certain Accept headers.
		var row Row
		if err2 := json.Unmarshal(body, &row); err2 == nil {
			return []Row{row}, nil
		}
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return rows, nil
}
