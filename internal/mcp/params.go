package mcp

import (
	"fmt"
	"sort"
	"strings"

	"github.com/basefolk/supabase-mcp/internal/supabase"
)

// parseFilter translates the untyped filter argument into conditions.
// A scalar value means equality; a nested map means a conjunction of
// operator comparisons on that field. Fields are emitted in sorted order
// so translation is deterministic.
func parseFilter(raw interface{}) ([]supabase.Condition, error) {
	if raw == nil {
		return nil, nil
	}
	filter, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("filter must be an object")
	}

	fields := make([]string, 0, len(filter))
	for f := range filter {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var conds []supabase.Condition
	for _, field := range fields {
		value := filter[field]
		nested, isMap := value.(map[string]interface{})
		if !isMap {
			conds = append(conds, supabase.Condition{Field: field, Op: supabase.OpEq, Value: value})
			continue
		}

		ops := make([]string, 0, len(nested))
		for op := range nested {
			ops = append(ops, op)
		}
		sort.Strings(ops)

		for _, op := range ops {
			if !supabase.KnownOperator(op) {
				return nil, fmt.Errorf("unknown filter operator %q on field %q", op, field)
			}
			conds = append(conds, supabase.Condition{Field: field, Op: supabase.Operator(op), Value: nested[op]})
		}
	}
	return conds, nil
}

// parseJoins translates the untyped joins argument into ordered join specs.
func parseJoins(raw interface{}) ([]supabase.JoinSpec, error) {
	if raw == nil {
		return nil, nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("joins must be an array")
	}

	joins := make([]supabase.JoinSpec, 0, len(list))
	for i, item := range list {
		entry, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("join %d must be an object", i)
		}

		table, _ := entry["table"].(string)
		if table == "" {
			return nil, fmt.Errorf("join %d is missing 'table'", i)
		}

		joinType := supabase.JoinLeft
		if t, ok := entry["type"].(string); ok && t != "" {
			switch supabase.JoinType(t) {
			case supabase.JoinInner, supabase.JoinLeft, supabase.JoinRight, supabase.JoinFull:
				joinType = supabase.JoinType(t)
			default:
				return nil, fmt.Errorf("join %d has unknown type %q", i, t)
			}
		}

		on, _ := entry["on"].(string)
		cond, err := parseJoinCondition(on)
		if err != nil {
			return nil, fmt.Errorf("join %d: %w", i, err)
		}

		joins = append(joins, supabase.JoinSpec{Type: joinType, Table: table, On: cond})
	}
	return joins, nil
}

// parseJoinCondition parses an "left.col=right.col" equality.
func parseJoinCondition(on string) (supabase.JoinCondition, error) {
	var cond supabase.JoinCondition
	if on == "" {
		return cond, fmt.Errorf("missing 'on' condition")
	}

	sides := strings.SplitN(on, "=", 2)
	if len(sides) != 2 {
		return cond, fmt.Errorf("'on' must be an equality like 'posts.user_id=users.id'")
	}

	left, err := splitDotted(strings.TrimSpace(sides[0]))
	if err != nil {
		return cond, fmt.Errorf("invalid 'on' left side: %w", err)
	}
	right, err := splitDotted(strings.TrimSpace(sides[1]))
	if err != nil {
		return cond, fmt.Errorf("invalid 'on' right side: %w", err)
	}

	cond.LeftTable, cond.LeftColumn = left[0], left[1]
	cond.RightTable, cond.RightColumn = right[0], right[1]
	return cond, nil
}

func splitDotted(s string) ([2]string, error) {
	parts := strings.SplitN(s, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return [2]string{}, fmt.Errorf("%q is not 'table.column'", s)
	}
	return [2]string{parts[0], parts[1]}, nil
}

// stringSlice coerces an untyped argument into a string slice, dropping
// non-string elements.
func stringSlice(raw interface{}) []string {
	list, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// stringMap coerces an untyped argument into a string map, rendering
// non-string values with fmt.
func stringMap(raw interface{}) map[string]string {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		if s, ok := v.(string); ok {
			out[k] = s
		} else {
			out[k] = fmt.Sprint(v)
		}
	}
	return out
}
