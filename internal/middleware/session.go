package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

type contextKey string

const (
	BrowserIDContextKey contextKey = "browser_id"

	sessionName = "tmm_session"
)

// SessionMiddleware pins a stable browser ID into the cookie session. The
// ID scopes everything the browser persists (tokens, cart, flags) in the
// state store, the way localStorage scoped them per origin.
type SessionMiddleware struct {
	store sessions.Store
}

// NewSessionMiddleware creates a new session middleware
func NewSessionMiddleware(store sessions.Store) *SessionMiddleware {
	return &SessionMiddleware{store: store}
}

// EnsureBrowserID loads or creates the browser ID and CSRF token, sets
// security headers, and rejects mutating requests with a bad CSRF token.
func (m *SessionMiddleware) EnsureBrowserID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")

		session, err := m.store.Get(r, sessionName)
		if err != nil {
			// A cookie signed with an old secret: start a fresh session.
			session, _ = m.store.New(r, sessionName)
		}

		browserID, ok := session.Values["browser_id"].(string)
		if !ok || browserID == "" {
			browserID = uuid.NewString()
			session.Values["browser_id"] = browserID
			session.Values["csrf_token"] = GenerateCSRFToken()
			if err := session.Save(r, w); err != nil {
				http.Error(w, "Failed to establish session", http.StatusInternalServerError)
				return
			}
		}

		if r.Method != http.MethodGet && r.Method != http.MethodHead && r.Method != http.MethodOptions {
			token, _ := session.Values["csrf_token"].(string)
			if token != "" && r.Header.Get("X-CSRF-Token") != token && r.FormValue("csrf_token") != token {
				http.Error(w, "CSRF token mismatch", http.StatusForbidden)
				return
			}
		}

		ctx := context.WithValue(r.Context(), BrowserIDContextKey, browserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CSRFToken returns the session's CSRF token for rendering into forms.
func (m *SessionMiddleware) CSRFToken(r *http.Request) string {
	session, err := m.store.Get(r, sessionName)
	if err != nil {
		return ""
	}
	token, _ := session.Values["csrf_token"].(string)
	return token
}

// GetBrowserID retrieves the browser ID from the request context.
func GetBrowserID(ctx context.Context) string {
	id, _ := ctx.Value(BrowserIDContextKey).(string)
	return id
}

// GenerateCSRFToken generates a random CSRF token
func GenerateCSRFToken() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return ""
	}
	return hex.EncodeToString(bytes)
}
