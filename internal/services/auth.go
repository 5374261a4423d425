package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"tmm-bienestar/internal/api"
	"tmm-bienestar/internal/models"
	"tmm-bienestar/internal/store"

	"github.com/golang-jwt/jwt"
)

// Session is the resolved identity and enrollment membership for one
// browser. It is rebuilt per request from the stored tokens; only this
// service mutates it.
type Session struct {
	User          *models.User
	Authenticated bool
	Enrollments   models.EnrollmentSets
}

// IsAdmin reports whether the session may see admin views. The flag comes
// from unverified token claims, so it only gates the UI; every admin API
// call is authorized again server-side.
func (s *Session) IsAdmin() bool {
	return s != nil && s.User != nil && s.User.IsSuperuser
}

func (s *Session) IsEnrolledInCourse(id int) bool {
	return s != nil && s.Enrollments.HasCourse(id)
}

func (s *Session) IsEnrolledInWorkshop(id int) bool {
	return s != nil && s.Enrollments.HasWorkshop(id)
}

// AuthService resolves and holds current-user identity from the tokens
// persisted per browser.
type AuthService struct {
	api   *api.Client
	store store.Store
}

// NewAuthService creates a new authentication service.
func NewAuthService(apiClient *api.Client, st store.Store) *AuthService {
	return &AuthService{api: apiClient, store: st}
}

func (s *AuthService) tokens(browserID string) store.BrowserTokens {
	return store.BrowserTokens{Store: s.store, BrowserID: browserID}
}

// Client returns the API client bound to the browser's tokens.
func (s *AuthService) Client(browserID string) *api.Client {
	return s.api.WithTokens(s.tokens(browserID))
}

// Resolve rebuilds the session from the stored access token. An expired
// token logs out locally without touching the network. Claims that carry
// enough identity are adopted directly for speed; otherwise the
// authoritative profile is fetched. Either way the enrollment sets are
// loaded in the same pass.
func (s *AuthService) Resolve(ctx context.Context, browserID string) (*Session, error) {
	tokens := s.tokens(browserID)
	access, err := tokens.Access(ctx)
	if err != nil {
		return nil, err
	}
	if access == "" {
		return &Session{Enrollments: models.NewEnrollmentSets()}, nil
	}

	claims, err := decodeClaims(access)
	if err != nil || claims.expired() {
		if logoutErr := s.Logout(ctx, browserID); logoutErr != nil {
			return nil, logoutErr
		}
		return &Session{Enrollments: models.NewEnrollmentSets()}, nil
	}

	session := &Session{Enrollments: models.NewEnrollmentSets()}
	client := s.api.WithTokens(tokens)

	if claims.sufficient() {
		session.User = claims.user()
		session.Authenticated = true
	} else {
		user, err := client.Profile(ctx)
		if err != nil {
			log.Printf("Failed to fetch user profile: %v", err)
			if logoutErr := s.Logout(ctx, browserID); logoutErr != nil {
				return nil, logoutErr
			}
			return &Session{Enrollments: models.NewEnrollmentSets()}, nil
		}
		session.User = user
		session.Authenticated = true
	}

	s.loadEnrollments(ctx, client, session)
	return session, nil
}

// Login persists a freshly issued token pair and builds the session from
// the access token's claims. The enrollment fetch failing is not fatal.
func (s *AuthService) Login(ctx context.Context, browserID, access, refresh string) (*Session, error) {
	claims, err := decodeClaims(access)
	if err != nil {
		return nil, fmt.Errorf("failed to decode access token: %w", err)
	}

	tokens := s.tokens(browserID)
	if err := tokens.Save(ctx, access, refresh); err != nil {
		return nil, err
	}

	session := &Session{
		User:          claims.user(),
		Authenticated: true,
		Enrollments:   models.NewEnrollmentSets(),
	}
	s.loadEnrollments(ctx, s.api.WithTokens(tokens), session)
	return session, nil
}

// Logout clears both tokens and leaves the browser anonymous.
func (s *AuthService) Logout(ctx context.Context, browserID string) error {
	return s.tokens(browserID).Clear(ctx)
}

// loadEnrollments fetches and normalizes the membership sets. Failure
// degrades to empty sets: the UI then shows "not enrolled".
func (s *AuthService) loadEnrollments(ctx context.Context, client *api.Client, session *Session) {
	raw, err := client.MyEnrollments(ctx)
	if err != nil {
		log.Printf("Failed to fetch enrollments: %v", err)
		return
	}
	sets, err := NormalizeEnrollments(raw)
	if err != nil {
		log.Printf("Failed to normalize enrollments: %v", err)
		return
	}
	session.Enrollments = sets
}

// NormalizeEnrollments flattens the membership payload into id sets. Two
// input variants are accepted per entry: a bare integer id, or an object
// whose "curso"/"taller" field is the id or the nested object itself.
// Anything else is a mapping error, not silently coerced.
func NormalizeEnrollments(raw *api.RawEnrollments) (models.EnrollmentSets, error) {
	sets := models.NewEnrollmentSets()
	for _, entry := range raw.Cursos {
		id, err := enrollmentID(entry, "curso")
		if err != nil {
			return models.NewEnrollmentSets(), err
		}
		if id > 0 {
			sets.CourseIDs[id] = struct{}{}
		}
	}
	for _, entry := range raw.Talleres {
		id, err := enrollmentID(entry, "taller")
		if err != nil {
			return models.NewEnrollmentSets(), err
		}
		if id > 0 {
			sets.WorkshopIDs[id] = struct{}{}
		}
	}
	return sets, nil
}

func enrollmentID(entry json.RawMessage, field string) (int, error) {
	// Variant 1: the entry itself is a bare id.
	var bare int
	if err := json.Unmarshal(entry, &bare); err == nil {
		return bare, nil
	}

	// Variant 2: an object whose field holds the id or a nested object.
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(entry, &obj); err != nil {
		return 0, fmt.Errorf("unrecognized enrollment entry %s", string(entry))
	}
	ref, ok := obj[field]
	if !ok {
		// Enrollment of the other kind, or a serializer omitting the field
		// when null. Not a membership of this set.
		return 0, nil
	}

	var id int
	if err := json.Unmarshal(ref, &id); err == nil {
		return id, nil
	}
	var nested struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal(ref, &nested); err == nil && nested.ID > 0 {
		return nested.ID, nil
	}
	return 0, fmt.Errorf("unrecognized %s reference %s", field, string(ref))
}

// tokenClaims is the slice of the JWT payload this frontend reads. Decoding
// is unverified: the browser cannot check the signature, so claims are an
// optimistic hint that the backend re-validates on every API call.
type tokenClaims struct {
	Username    string
	Email       string
	FirstName   string
	IsSuperuser *bool
	Exp         int64
}

func decodeClaims(token string) (*tokenClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	parsed := &tokenClaims{}
	if v, ok := claims["username"].(string); ok {
		parsed.Username = v
	}
	if v, ok := claims["email"].(string); ok {
		parsed.Email = v
	}
	if v, ok := claims["first_name"].(string); ok {
		parsed.FirstName = v
	}
	if v, ok := claims["is_superuser"].(bool); ok {
		parsed.IsSuperuser = &v
	}
	if v, ok := claims["exp"].(float64); ok {
		parsed.Exp = int64(v)
	}
	return parsed, nil
}

func (c *tokenClaims) expired() bool {
	return c.Exp > 0 && time.Unix(c.Exp, 0).Before(time.Now())
}

// sufficient reports whether the claims carry enough identity to skip the
// profile fetch.
func (c *tokenClaims) sufficient() bool {
	return c.IsSuperuser != nil
}

func (c *tokenClaims) user() *models.User {
	user := &models.User{
		Username:  c.Username,
		Email:     c.Email,
		FirstName: c.FirstName,
		// The token does not carry the last name; a later profile fetch
		// fills it in.
	}
	if c.IsSuperuser != nil {
		user.IsSuperuser = *c.IsSuperuser
	}
	return user
}
