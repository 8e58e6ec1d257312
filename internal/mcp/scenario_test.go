package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/basefolk/supabase-mcp/internal/supabase"
)

// echoData echoes inserted records back, so the envelope can be checked
// against exactly what went in.
type echoData struct {
	stubBackends
}

func (e *echoData) Insert(ctx context.Context, table string, data supabase.Row, returning []string) ([]supabase.Row, error) {
	e.record("insert:" + table)
	return []supabase.Row{data}, nil
}

func TestScenarioCreateRecordEchoesInsert(t *testing.T) {
	stub := &echoData{}
	b := stub.backends()
	b.Data = stub

	r := NewRegistry(nil, testLogger())
	RegisterAll(r, b)

	result, err := r.Dispatch(context.Background(), "create_record", map[string]interface{}{
		"table": "users",
		"data":  map[string]interface{}{"name": "Alice"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got %q", resultText(t, result))
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal([]byte(resultText(t, result)), &rows); err != nil {
		t.Fatalf("response should be JSON: %v", err)
	}
	if len(rows) != 1 || rows[0]["name"] != "Alice" {
		t.Errorf("response = %v, want the echoed record", rows)
	}
}

func TestScenarioReadRecordsTranslation(t *testing.T) {
	stub := newStubBackends()
	r := newTestRegistry(stub, nil)

	result, _ := r.Dispatch(context.Background(), "read_records", map[string]interface{}{
		"table":  "posts",
		"filter": map[string]interface{}{"published": true},
		"joins": []interface{}{
			map[string]interface{}{"table": "users", "on": "posts.user_id=users.id"},
		},
	})
	if result.IsError {
		t.Fatalf("expected success, got %q", resultText(t, result))
	}

	if len(stub.calls) != 1 || stub.calls[0] != "select:posts" {
		t.Fatalf("expected a single select operation, got %v", stub.calls)
	}
	q := stub.lastQuery
	if len(q.Filter) != 1 || q.Filter[0].Field != "published" ||
		q.Filter[0].Op != supabase.OpEq || q.Filter[0].Value != true {
		t.Errorf("filter = %+v, want one equality on published", q.Filter)
	}
	if len(q.Joins) != 1 || q.Joins[0].Table != "users" || q.Joins[0].Type != supabase.JoinLeft {
		t.Errorf("joins = %+v, want one left join of users", q.Joins)
	}
	if q.Joins[0].On.String() != "posts.user_id=users.id" {
		t.Errorf("on = %q", q.Joins[0].On.String())
	}
}

func TestScenarioDeleteUserMissingID(t *testing.T) {
	stub := newStubBackends()
	r := newTestRegistry(stub, nil)

	result, _ := r.Dispatch(context.Background(), "delete_user", map[string]interface{}{})
	if !result.IsError {
		t.Fatal("expected error result")
	}
	if text := resultText(t, result); !strings.Contains(text, "user_id") {
		t.Errorf("message must mention user_id, got %q", text)
	}
	if len(stub.calls) != 0 {
		t.Errorf("collaborator must record zero calls, got %v", stub.calls)
	}
}

func TestScenarioDoubleRefresh(t *testing.T) {
	n := NewNotifier(testLogger())

	var order []string
	n.OnRefresh(func() { order = append(order, "a") })
	n.OnRefresh(func() { order = append(order, "b") })

	// tools/list fires Notify once per enumeration.
	n.Notify()
	n.Notify()

	want := []string{"a", "b", "a", "b"}
	if len(order) != len(want) {
		t.Fatalf("listeners ran %d times, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}
