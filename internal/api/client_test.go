package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"tmm-bienestar/internal/models"
)

// fakeTokens is an in-memory TokenStore for tests.
type fakeTokens struct {
	mu      sync.Mutex
	access  string
	refresh string
}

func (t *fakeTokens) Access(_ context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.access, nil
}

func (t *fakeTokens) Refresh(_ context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.refresh, nil
}

func (t *fakeTokens) SetAccess(_ context.Context, token string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.access = token
	return nil
}

func (t *fakeTokens) ClearAccess(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.access = ""
	return nil
}

func (t *fakeTokens) Clear(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.access = ""
	t.refresh = ""
	return nil
}

func TestClientRefreshesOnceOn401(t *testing.T) {
	var refreshCalls, profileCalls int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token/refresh/":
			refreshCalls++
			json.NewEncoder(w).Encode(map[string]string{"access": "fresh-token"})
		case "/profile/":
			profileCalls++
			if r.Header.Get("Authorization") != "Bearer fresh-token" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"username": "maria"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	tokens := &fakeTokens{access: "stale-token", refresh: "refresh-token"}
	client := NewClient(server.URL, 5*time.Second).WithTokens(tokens)

	user, err := client.Profile(context.Background())
	if err != nil {
		t.Fatalf("Profile returned error: %v", err)
	}
	if user.Username != "maria" {
		t.Errorf("Expected username maria, got %q", user.Username)
	}
	if refreshCalls != 1 {
		t.Errorf("Expected exactly one refresh call, got %d", refreshCalls)
	}
	if profileCalls != 2 {
		t.Errorf("Expected original request plus one replay, got %d calls", profileCalls)
	}
	if tokens.access != "fresh-token" {
		t.Errorf("Refreshed access token not persisted, got %q", tokens.access)
	}
}

func TestClientSecond401PassesThrough(t *testing.T) {
	var refreshCalls int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token/refresh/" {
			refreshCalls++
			json.NewEncoder(w).Encode(map[string]string{"access": "still-bad"})
			return
		}
		// The backend rejects the replayed request too.
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "no autorizado"})
	}))
	defer server.Close()

	tokens := &fakeTokens{access: "stale", refresh: "refresh"}
	client := NewClient(server.URL, 5*time.Second).WithTokens(tokens)

	_, err := client.Profile(context.Background())
	if err == nil {
		t.Fatal("Expected error from double 401")
	}
	if refreshCalls != 1 {
		t.Errorf("Expected exactly one refresh attempt, got %d", refreshCalls)
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected a 401 api error, got %v", err)
	}
}

func TestClientNoRefreshTokenFailsFast(t *testing.T) {
	var refreshCalls int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token/refresh/" {
			refreshCalls++
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	tokens := &fakeTokens{access: "stale", refresh: ""}
	client := NewClient(server.URL, 5*time.Second).WithTokens(tokens)

	_, err := client.Profile(context.Background())
	if !errors.Is(err, models.ErrSessionExpired) {
		t.Fatalf("Expected ErrSessionExpired, got %v", err)
	}
	if refreshCalls != 0 {
		t.Errorf("Refresh endpoint should not be called without a refresh token, got %d calls", refreshCalls)
	}
	if tokens.access != "" {
		t.Errorf("Stale access token should be cleared, got %q", tokens.access)
	}
	if tokens.refresh != "" {
		t.Errorf("Refresh token slot should stay empty")
	}
}

func TestClientFailedRefreshClearsBothTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token/refresh/" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "token inválido"})
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	tokens := &fakeTokens{access: "stale", refresh: "expired-refresh"}
	client := NewClient(server.URL, 5*time.Second).WithTokens(tokens)

	_, err := client.Profile(context.Background())
	if !errors.Is(err, models.ErrSessionExpired) {
		t.Fatalf("Expected ErrSessionExpired, got %v", err)
	}
	if tokens.access != "" || tokens.refresh != "" {
		t.Errorf("Both tokens should be cleared after a failed refresh, got access=%q refresh=%q", tokens.access, tokens.refresh)
	}
}

func TestClientAnonymousNoRetry(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Header.Get("Authorization") != "" {
			t.Errorf("Anonymous request should carry no Authorization header")
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	_, err := client.Profile(context.Background())
	if err == nil {
		t.Fatal("Expected error")
	}
	if calls != 1 {
		t.Errorf("Anonymous client must not retry, got %d calls", calls)
	}
}

func TestClientSurfacesAPIErrorPayloads(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{
			name:    "detail field",
			status:  http.StatusBadRequest,
			body:    `{"detail": "Cupos agotados"}`,
			message: "Cupos agotados",
		},
		{
			name:    "error field",
			status:  http.StatusConflict,
			body:    `{"error": "Ya estás inscrita"}`,
			message: "Ya estás inscrita",
		},
		{
			name:    "field map",
			status:  http.StatusBadRequest,
			body:    `{"email": ["Este campo es obligatorio."]}`,
			message: "email: Este campo es obligatorio.",
		},
		{
			name:    "empty body",
			status:  http.StatusInternalServerError,
			body:    "",
			message: GenericErrorMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(server.URL, 5*time.Second)
			_, err := client.Courses(context.Background())
			if err == nil {
				t.Fatal("Expected error")
			}

			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("Expected *Error, got %T", err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, apiErr.StatusCode)
			}
			if apiErr.Message() != tt.message {
				t.Errorf("Expected message %q, got %q", tt.message, apiErr.Message())
			}
		})
	}
}

func TestUploadReceiptRequiresExactlyOneTarget(t *testing.T) {
	client := NewClient("http://example.invalid", time.Second)

	upload := ReceiptUpload{Amount: 1000, Filename: "f.jpg", ContentType: "image/jpeg", Data: []byte("x")}
	if _, err := client.UploadReceipt(context.Background(), upload); err == nil {
		t.Error("Expected error when neither enrollment nor order is set")
	}

	upload.EnrollmentID = 1
	upload.OrderID = 2
	if _, err := client.UploadReceipt(context.Background(), upload); err == nil {
		t.Error("Expected error when both enrollment and order are set")
	}
}

func TestEncodeQuery(t *testing.T) {
	if got := encodeQuery(nil); got != "" {
		t.Errorf("Expected empty query, got %q", got)
	}
	if got := encodeQuery(map[string]string{"tipo": ""}); got != "" {
		t.Errorf("Empty values should be dropped, got %q", got)
	}
	if got := encodeQuery(map[string]string{"tipo": "B2B"}); got != "?tipo=B2B" {
		t.Errorf("Expected ?tipo=B2B, got %q", got)
	}
}
