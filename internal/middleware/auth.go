package middleware

import (
	"context"
	"log"
	"net/http"

	"tmm-bienestar/internal/services"
)

const SessionContextKey contextKey = "session"

// AuthMiddleware resolves the browser's session before each request.
type AuthMiddleware struct {
	authService *services.AuthService
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(authService *services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// LoadSession resolves identity from the stored tokens and adds the
// session to the request context. Failures leave the request anonymous.
func (m *AuthMiddleware) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		browserID := GetBrowserID(r.Context())
		if browserID == "" {
			next.ServeHTTP(w, r)
			return
		}

		session, err := m.authService.Resolve(r.Context(), browserID)
		if err != nil {
			log.Printf("Failed to resolve session: %v", err)
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), SessionContextKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth redirects anonymous requests to the login page.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := GetSessionFromContext(r.Context())
		if session == nil || !session.Authenticated {
			http.Redirect(w, r, "/login?redirect="+r.URL.Path, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin gates the back-office. The superuser flag is an unverified
// claim, so this only hides the UI; the backend re-checks every admin call.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := GetSessionFromContext(r.Context())
		if session == nil || !session.Authenticated {
			http.Redirect(w, r, "/login?redirect="+r.URL.Path, http.StatusSeeOther)
			return
		}
		if !session.IsAdmin() {
			http.Error(w, "Acceso denegado", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetSessionFromContext retrieves the resolved session from the context.
func GetSessionFromContext(ctx context.Context) *services.Session {
	session, _ := ctx.Value(SessionContextKey).(*services.Session)
	return session
}
