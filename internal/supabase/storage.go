package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// storagePrefix is the Storage API mount point on a Supabase project.
const storagePrefix = "/storage/v1/object/"

// Upload stores an object at bucket/path. With Upsert set an existing
// object at the same path is replaced instead of rejected.
func (c *Client) Upload(ctx context.Context, r UploadRequest) (*UploadResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+objectPath(r.Bucket, r.Path), bytes.NewReader(r.Content))
	if err != nil {
		return nil, err
	}

	contentType := r.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	if r.CacheControl != "" {
		req.Header.Set("Cache-Control", r.CacheControl)
	}
	if r.Upsert {
		req.Header.Set("x-upsert", "true")
	}

	body, _, err := c.do(req, nil)
	if err != nil {
		return nil, err
	}

	var result UploadResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse upload response: %w", err)
	}
	return &result, nil
}

// Download fetches the object at bucket/path.
func (c *Client) Download(ctx context.Context, bucket, path string) (*DownloadResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+objectPath(bucket, path), nil)
	if err != nil {
		return nil, err
	}

	body, contentType, err := c.do(req, nil)
	if err != nil {
		return nil, err
	}
	return &DownloadResult{Content: body, ContentType: contentType}, nil
}

// objectPath builds the storage path for bucket/path, escaping each path
// segment individually so slashes in object keys survive.
func objectPath(bucket, path string) string {
	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return storagePrefix + url.PathEscape(bucket) + "/" + strings.Join(segments, "/")
}
