package api

import (
	"context"
	"fmt"

	"tmm-bienestar/internal/models"
)

// TokenPair is the response of the token issuance endpoint.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Login exchanges credentials for a token pair.
func (c *Client) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	var pair TokenPair
	payload := map[string]string{"username": username, "password": password}
	if err := c.postJSON(ctx, "/token/", payload, &pair); err != nil {
		return nil, err
	}
	return &pair, nil
}

// Register creates a new account. The account stays inactive until the
// emailed activation link is visited.
func (c *Client) Register(ctx context.Context, form models.RegisterForm) error {
	payload := map[string]string{
		"username":   form.Username,
		"email":      form.Email,
		"first_name": form.FirstName,
		"last_name":  form.LastName,
		"password":   form.Password,
	}
	return c.postJSON(ctx, "/register/", payload, nil)
}

// Activate confirms an account from the emailed uid/token pair.
func (c *Client) Activate(ctx context.Context, uid, token string) error {
	return c.get(ctx, fmt.Sprintf("/activate/%s/%s/", uid, token), nil)
}

// RequestPasswordReset asks the backend to email a reset link.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return c.postJSON(ctx, "/password-reset/", map[string]string{"email": email}, nil)
}

// ConfirmPasswordReset sets a new password from the emailed uid/token pair.
func (c *Client) ConfirmPasswordReset(ctx context.Context, uid, token, password string) error {
	path := fmt.Sprintf("/password-reset-confirm/%s/%s/", uid, token)
	return c.postJSON(ctx, path, map[string]string{"password": password}, nil)
}

// Profile fetches the authoritative user record.
func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.get(ctx, "/profile/", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile saves profile edits and returns the updated record.
func (c *Client) UpdateProfile(ctx context.Context, form models.ProfileUpdateForm) (*models.User, error) {
	payload := map[string]string{
		"first_name": form.FirstName,
		"last_name":  form.LastName,
		"email":      form.Email,
		"telefono":   form.Phone,
	}
	var user models.User
	if err := c.putJSON(ctx, "/profile/", payload, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
