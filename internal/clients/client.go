// Package clients holds the HTTP clients for the collaborator services
// (user, post, comment, like). Every call carries a short timeout; callers
// on best-effort paths treat any failure as a degraded result rather than
// propagating it.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/picstream/picstream/pkg/logging"
)

var (
	// ErrNotFound indicates the upstream resolved the request but the
	// entity does not exist
	ErrNotFound = errors.New("upstream entity not found")
	// ErrUnavailable indicates the upstream call failed: timeout,
	// connection error, or a non-2xx response
	ErrUnavailable = errors.New("upstream unavailable")
)

// httpClient is the shared transport for the service clients
type httpClient struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func newHTTPClient(baseURL string, timeout time.Duration, component string) *httpClient {
	return &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logging.GetLogger().With(zap.String("component", component)),
	}
}

// getJSON performs a GET request and decodes the JSON response into out
func (c *httpClient) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return c.do(req, out)
}

// postJSON performs a POST request with a JSON body and decodes the JSON
// response into out. Both body and out may be nil.
func (c *httpClient) postJSON(ctx context.Context, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *httpClient) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s returned status %d", ErrUnavailable, req.URL.Path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrUnavailable, err)
	}
	return nil
}
