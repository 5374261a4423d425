// Package api is the HTTP client for the external backend that owns all
// business data. Every request goes through a bearer-token interceptor with
// a single refresh-and-replay retry on 401; this is the only retry policy
// in the application.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tmm-bienestar/internal/models"
)

// TokenStore gives the client access to the browser's persisted tokens.
// Implementations are bound to a single browser session.
type TokenStore interface {
	Access(ctx context.Context) (string, error)
	Refresh(ctx context.Context) (string, error)
	SetAccess(ctx context.Context, token string) error
	// ClearAccess removes only the access token.
	ClearAccess(ctx context.Context) error
	// Clear removes both tokens.
	Clear(ctx context.Context) error
}

// Client talks to the backend API. The zero token store makes an anonymous
// client; WithTokens binds a copy to one browser's tokens.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenStore
}

// NewClient creates an API client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// WithTokens returns a shallow copy of the client bound to the given token
// store. The underlying http.Client and its connection pool are shared.
func (c *Client) WithTokens(tokens TokenStore) *Client {
	cc := *c
	cc.tokens = tokens
	return &cc
}

// get issues a GET and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, "", out)
}

// postJSON issues a POST with a JSON body and decodes the response into out.
func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, body, "application/json", out)
}

func (c *Client) putJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}
	return c.do(ctx, http.MethodPut, path, body, "application/json", out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, "", nil)
}

// do sends one request through the interceptor and decodes the response.
// The body is held as a byte slice so a 401 replay re-sends it exactly.
func (c *Client) do(ctx context.Context, method, path string, body []byte, contentType string, out any) error {
	resp, err := c.send(ctx, method, path, body, contentType, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseAPIError(resp.StatusCode, respBody)
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if raw, ok := out.(*[]byte); ok {
		*raw = respBody
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// send performs the request, attaching the bearer token when one exists.
// On 401 it refreshes once and replays; a second 401 passes through.
func (c *Client) send(ctx context.Context, method, path string, body []byte, contentType string, allowRetry bool) (*http.Response, error) {
	req, err := c.newRequest(ctx, method, path, body, contentType)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}

	if resp.StatusCode != http.StatusUnauthorized || !allowRetry || c.tokens == nil {
		return resp, nil
	}
	resp.Body.Close()

	refresh, err := c.tokens.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	if refresh == "" {
		// No refresh token at all: drop the stale access token and give up.
		if err := c.tokens.ClearAccess(ctx); err != nil {
			return nil, err
		}
		return nil, models.ErrSessionExpired
	}

	access, err := c.refreshAccessToken(ctx, refresh)
	if err != nil {
		if clearErr := c.tokens.Clear(ctx); clearErr != nil {
			return nil, clearErr
		}
		return nil, models.ErrSessionExpired
	}
	if err := c.tokens.SetAccess(ctx, access); err != nil {
		return nil, err
	}

	return c.send(ctx, method, path, body, contentType, false)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body []byte, contentType string) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	if c.tokens != nil {
		access, err := c.tokens.Access(ctx)
		if err != nil {
			return nil, err
		}
		if access != "" {
			req.Header.Set("Authorization", "Bearer "+access)
		}
	}
	return req, nil
}

// refreshAccessToken calls the refresh endpoint directly, outside the
// interceptor, so a failing refresh can never trigger another refresh.
func (c *Client) refreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	body, err := json.Marshal(map[string]string{"refresh": refreshToken})
	if err != nil {
		return "", fmt.Errorf("failed to marshal refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/token/refresh/", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("token refresh request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read refresh response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", parseAPIError(resp.StatusCode, respBody)
	}

	var parsed struct {
		Access string `json:"access"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode refresh response: %w", err)
	}
	if parsed.Access == "" {
		return "", fmt.Errorf("refresh response carried no access token")
	}
	return parsed.Access, nil
}

func encodeQuery(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}
	q := url.Values{}
	for k, v := range params {
		if v != "" {
			q.Set(k, v)
		}
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}
