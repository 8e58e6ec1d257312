package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// functionsPrefix is the Edge Functions mount point on a Supabase project.
const functionsPrefix = "/functions/v1/"

// Invoke calls the named edge function with a JSON body. Extra headers are
// forwarded as-is. responseType "text" returns the raw body as a string;
// otherwise the body is decoded as JSON when possible.
func (c *Client) Invoke(ctx context.Context, name string, payload interface{}, headers map[string]string, responseType string) (interface{}, error) {
	extra := http.Header{}
	for k, v := range headers {
		extra.Set(k, v)
	}

	body, err := c.doJSON(ctx, http.MethodPost, functionsPrefix+url.PathEscape(name), payload, extra)
	if err != nil {
		return nil, err
	}

	if responseType == "text" {
		return string(body), nil
	}

	var result interface{}
	if err := json.Unmarshal(body, &result); err != nil {
		// Functions are free to return non-JSON bodies.
		return string(body), nil
	}
	return result, nil
}
