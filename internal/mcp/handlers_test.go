package mcp

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/basefolk/supabase-mcp/internal/supabase"
)

func TestUploadFileDecodesBase64(t *testing.T) {
	stub := newStubBackends()
	r := newTestRegistry(stub, nil)

	content := []byte{0x89, 0x50, 0x4e, 0x47}
	result, _ := r.Dispatch(context.Background(), "upload_file", map[string]interface{}{
		"bucket":       "avatars",
		"path":         "user1.png",
		"content":      base64.StdEncoding.EncodeToString(content),
		"content_type": "image/png",
		"upsert":       true,
	})
	if result.IsError {
		t.Fatalf("expected success, got %q", resultText(t, result))
	}

	req := stub.uploadReq
	if req.Bucket != "avatars" || req.Path != "user1.png" {
		t.Errorf("unexpected target: %s/%s", req.Bucket, req.Path)
	}
	if string(req.Content) != string(content) {
		t.Errorf("content not decoded: %v", req.Content)
	}
	if req.ContentType != "image/png" || !req.Upsert {
		t.Errorf("options not forwarded: %+v", req)
	}
}

func TestUploadFileRejectsBadBase64(t *testing.T) {
	stub := newStubBackends()
	r := newTestRegistry(stub, nil)

	result, _ := r.Dispatch(context.Background(), "upload_file", map[string]interface{}{
		"bucket":  "avatars",
		"path":    "user1.png",
		"content": "not!!!base64",
	})
	if !result.IsError {
		t.Fatal("expected error for invalid base64")
	}
	if len(stub.calls) != 0 {
		t.Errorf("collaborator must not be invoked, got %v", stub.calls)
	}
}

func TestDownloadFileTextReturnedVerbatim(t *testing.T) {
	stub := newStubBackends()
	stub.download = &supabase.DownloadResult{
		Content:     []byte(`{"hello":"world"}`),
		ContentType: "application/json; charset=utf-8",
	}
	r := newTestRegistry(stub, nil)

	result, _ := r.Dispatch(context.Background(), "download_file", map[string]interface{}{
		"bucket": "docs",
		"path":   "greeting.json",
	})
	if result.IsError {
		t.Fatalf("expected success, got %q", resultText(t, result))
	}
	if text := resultText(t, result); text != `{"hello":"world"}` {
		t.Errorf("text content should pass through verbatim, got %q", text)
	}
}

func TestDownloadFileBinaryIsBase64(t *testing.T) {
	stub := newStubBackends()
	raw := []byte{0x00, 0x01, 0xfe, 0xff}
	stub.download = &supabase.DownloadResult{Content: raw, ContentType: "image/png"}
	r := newTestRegistry(stub, nil)

	result, _ := r.Dispatch(context.Background(), "download_file", map[string]interface{}{
		"bucket": "avatars",
		"path":   "user1.png",
	})
	if result.IsError {
		t.Fatalf("expected success, got %q", resultText(t, result))
	}
	text := resultText(t, result)
	if !strings.Contains(text, base64.StdEncoding.EncodeToString(raw)) {
		t.Errorf("binary content should be base64, got %q", text)
	}
	if !strings.Contains(text, "image/png") {
		t.Errorf("content type should be reported, got %q", text)
	}
}

func TestInvokeFunctionForwardsEverything(t *testing.T) {
	stub := newStubBackends()
	r := newTestRegistry(stub, nil)

	result, _ := r.Dispatch(context.Background(), "invoke_function", map[string]interface{}{
		"name":          "send-email",
		"body":          map[string]interface{}{"to": "a@b.co"},
		"headers":       map[string]interface{}{"X-Priority": "high"},
		"response_type": "json",
	})
	if result.IsError {
		t.Fatalf("expected success, got %q", resultText(t, result))
	}

	if stub.invokeName != "send-email" {
		t.Errorf("name = %q", stub.invokeName)
	}
	body, ok := stub.invokeBody.(map[string]interface{})
	if !ok || body["to"] != "a@b.co" {
		t.Errorf("body = %v", stub.invokeBody)
	}
	if stub.invokeHdrs["X-Priority"] != "high" {
		t.Errorf("headers = %v", stub.invokeHdrs)
	}
	if stub.invokeType != "json" {
		t.Errorf("response_type = %q", stub.invokeType)
	}
}

func TestInvokeFunctionTextResponse(t *testing.T) {
	stub := newStubBackends()
	stub.invokeOut = "plain text reply"
	r := newTestRegistry(stub, nil)

	result, _ := r.Dispatch(context.Background(), "invoke_function", map[string]interface{}{
		"name":          "render",
		"response_type": "text",
	})
	if result.IsError {
		t.Fatalf("expected success, got %q", resultText(t, result))
	}
	if text := resultText(t, result); text != "plain text reply" {
		t.Errorf("text reply should pass through without JSON quoting, got %q", text)
	}
}

func TestListUsersPagination(t *testing.T) {
	stub := newStubBackends()
	r := newTestRegistry(stub, nil)

	result, _ := r.Dispatch(context.Background(), "list_users", map[string]interface{}{
		"page":     float64(2),
		"per_page": float64(50),
	})
	if result.IsError {
		t.Fatalf("expected success, got %q", resultText(t, result))
	}
	if len(stub.calls) != 1 || stub.calls[0] != "list_users:2:50" {
		t.Errorf("pagination not forwarded, calls = %v", stub.calls)
	}
}

func TestCreateUserAttributes(t *testing.T) {
	stub := newStubBackends()
	r := newTestRegistry(stub, nil)

	result, _ := r.Dispatch(context.Background(), "create_user", map[string]interface{}{
		"email":         "new@user.co",
		"password":      "hunter2!",
		"email_confirm": true,
		"user_metadata": map[string]interface{}{"plan": "pro"},
	})
	if result.IsError {
		t.Fatalf("expected success, got %q", resultText(t, result))
	}
	if len(stub.calls) != 1 || stub.calls[0] != "create_user:new@user.co" {
		t.Errorf("calls = %v", stub.calls)
	}
}

func TestIsTextContent(t *testing.T) {
	cases := map[string]bool{
		"text/plain":                      true,
		"text/html; charset=utf-8":        true,
		"application/json":                true,
		"application/json; charset=utf8":  true,
		"application/vnd.api+json":        true,
		"application/xml":                 true,
		"image/png":                       false,
		"application/octet-stream":        false,
		"application/pdf":                 false,
		"":                                false,
	}
	for contentType, want := range cases {
		if got := isTextContent(contentType); got != want {
			t.Errorf("isTextContent(%q) = %v, want %v", contentType, got, want)
		}
	}
}
