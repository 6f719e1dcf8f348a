// Package netx holds the small HTTP helpers used by the REST engine clients.
package netx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultClient is used when a caller passes a nil client.
var DefaultClient = &http.Client{Timeout: 60 * time.Second}

// HTTPError is returned for any non-2xx response. Body carries the response
// text so engine errors can be shown as they came.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// DoJSON sends body as JSON and decodes the JSON response into dest.
// A nil body sends no payload, a nil dest discards the response.
func DoJSON(ctx context.Context, client *http.Client, method, url string, headers map[string]string, body, dest any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	h := make(map[string]string, len(headers)+1)
	if body != nil {
		h["Content-Type"] = "application/json"
	}
	for k, v := range headers {
		h[k] = v
	}

	rc, err := DoRaw(ctx, client, method, url, h, reader)
	if err != nil {
		return err
	}
	defer rc.Close()

	if dest != nil {
		if err := json.NewDecoder(rc).Decode(dest); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// DoRaw sends body as is and returns the response body, which the caller
// must close.
func DoRaw(ctx context.Context, client *http.Client, method, url string, headers map[string]string, body io.Reader) (io.ReadCloser, error) {
	if client == nil {
		client = DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		resp.Body.Close()
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	return resp.Body, nil
}

// BearerAuth builds the Authorization header for an API key.
func BearerAuth(key string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + key}
}
