package handlers

import (
	"log"
	"net/http"
	"net/url"
	"strings"

	"tmm-bienestar/internal/api"
	"tmm-bienestar/internal/middleware"
	"tmm-bienestar/internal/models"
	"tmm-bienestar/internal/services"
)

// AuthHandler serves login, registration and password recovery.
type AuthHandler struct {
	api      *api.Client
	auth     *services.AuthService
	cart     *services.CartService
	renderer *Renderer
	csrf     func(*http.Request) string
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(apiClient *api.Client, auth *services.AuthService, cart *services.CartService, renderer *Renderer, csrf func(*http.Request) string) *AuthHandler {
	return &AuthHandler{api: apiClient, auth: auth, cart: cart, renderer: renderer, csrf: csrf}
}

func (h *AuthHandler) pageData(r *http.Request, title string) PageData {
	browserID := middleware.GetBrowserID(r.Context())
	return PageData{
		Title:     title,
		Session:   middleware.GetSessionFromContext(r.Context()),
		CartCount: services.CartCount(h.cart.Items(r.Context(), browserID)),
		CSRFToken: h.csrf(r),
	}
}

// LoginPage renders the login form. Already-authenticated visitors are
// sent home.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	if session != nil && session.Authenticated {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	data := h.pageData(r, "Iniciar sesión")
	data.Data = map[string]any{"Redirect": safeRedirect(r.URL.Query().Get("redirect"))}
	h.renderer.Render(w, http.StatusOK, "login.html", data)
}

// Login exchanges credentials for a token pair and stores it against the
// browser.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	form := models.LoginForm{
		Username: strings.TrimSpace(r.FormValue("username")),
		Password: r.FormValue("password"),
	}
	redirect := safeRedirect(r.FormValue("redirect"))

	data := h.pageData(r, "Iniciar sesión")
	data.Data = map[string]any{"Redirect": redirect, "Username": form.Username}

	if err := validate.Struct(form); err != nil {
		data.Error = validationMessage(err)
		h.renderer.Render(w, http.StatusBadRequest, "login.html", data)
		return
	}

	pair, err := h.api.Login(r.Context(), form.Username, form.Password)
	if err != nil {
		data.Error = userMessage(err)
		h.renderer.Render(w, http.StatusUnauthorized, "login.html", data)
		return
	}

	browserID := middleware.GetBrowserID(r.Context())
	if _, err := h.auth.Login(r.Context(), browserID, pair.Access, pair.Refresh); err != nil {
		log.Printf("Failed to persist session for %s: %v", form.Username, err)
		data.Error = api.GenericErrorMessage
		h.renderer.Render(w, http.StatusInternalServerError, "login.html", data)
		return
	}

	if redirect == "" {
		redirect = "/"
	}
	http.Redirect(w, r, redirect, http.StatusSeeOther)
}

// Logout drops the browser's tokens. The cart survives logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	browserID := middleware.GetBrowserID(r.Context())
	if err := h.auth.Logout(r.Context(), browserID); err != nil {
		log.Printf("Failed to clear session: %v", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// RegisterPage renders the account creation form.
func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, "register.html", h.pageData(r, "Crear cuenta"))
}

// Register creates the account. The backend sends the activation email.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	form := models.RegisterForm{
		Username:  strings.TrimSpace(r.FormValue("username")),
		Email:     strings.TrimSpace(r.FormValue("email")),
		FirstName: strings.TrimSpace(r.FormValue("first_name")),
		LastName:  strings.TrimSpace(r.FormValue("last_name")),
		Password:  r.FormValue("password"),
		Password2: r.FormValue("password2"),
	}

	data := h.pageData(r, "Crear cuenta")
	data.Data = form

	if err := validate.Struct(form); err != nil {
		data.Error = validationMessage(err)
		h.renderer.Render(w, http.StatusBadRequest, "register.html", data)
		return
	}
	if err := h.api.Register(r.Context(), form); err != nil {
		data.Error = userMessage(err)
		h.renderer.Render(w, http.StatusBadRequest, "register.html", data)
		return
	}

	data.Data = nil
	data.Flash = "Cuenta creada. Revisa tu correo para activarla."
	h.renderer.Render(w, http.StatusOK, "login.html", data)
}

// Activate confirms the emailed activation link.
func (h *AuthHandler) Activate(w http.ResponseWriter, r *http.Request) {
	uid := chiParam(r, "uid")
	token := chiParam(r, "token")

	data := h.pageData(r, "Activar cuenta")
	if err := h.api.Activate(r.Context(), uid, token); err != nil {
		data.Error = "El enlace de activación no es válido o ya fue usado."
		h.renderer.Render(w, http.StatusBadRequest, "login.html", data)
		return
	}
	data.Flash = "¡Cuenta activada! Ya puedes iniciar sesión."
	h.renderer.Render(w, http.StatusOK, "login.html", data)
}

// ForgotPasswordPage renders the reset request form.
func (h *AuthHandler) ForgotPasswordPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, "forgot_password.html", h.pageData(r, "Recuperar contraseña"))
}

// ForgotPassword asks the backend to send the reset email. The response is
// the same whether or not the address exists.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	form := models.PasswordResetRequestForm{Email: strings.TrimSpace(r.FormValue("email"))}

	data := h.pageData(r, "Recuperar contraseña")
	if err := validate.Struct(form); err != nil {
		data.Error = validationMessage(err)
		h.renderer.Render(w, http.StatusBadRequest, "forgot_password.html", data)
		return
	}
	if err := h.api.RequestPasswordReset(r.Context(), form.Email); err != nil {
		log.Printf("Failed to request password reset: %v", err)
	}
	data.Flash = "Si el correo existe, te enviamos un enlace para restablecer tu contraseña."
	h.renderer.Render(w, http.StatusOK, "forgot_password.html", data)
}

// ResetPasswordPage renders the new-password form for an emailed link.
func (h *AuthHandler) ResetPasswordPage(w http.ResponseWriter, r *http.Request) {
	data := h.pageData(r, "Nueva contraseña")
	data.Data = map[string]any{"UID": chiParam(r, "uid"), "Token": chiParam(r, "token")}
	h.renderer.Render(w, http.StatusOK, "reset_password.html", data)
}

// ResetPassword sets the new password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	uid := chiParam(r, "uid")
	token := chiParam(r, "token")
	form := models.PasswordResetConfirmForm{
		Password:  r.FormValue("password"),
		Password2: r.FormValue("password2"),
	}

	data := h.pageData(r, "Nueva contraseña")
	data.Data = map[string]any{"UID": uid, "Token": token}

	if err := validate.Struct(form); err != nil {
		data.Error = validationMessage(err)
		h.renderer.Render(w, http.StatusBadRequest, "reset_password.html", data)
		return
	}
	if err := h.api.ConfirmPasswordReset(r.Context(), uid, token, form.Password); err != nil {
		data.Error = userMessage(err)
		h.renderer.Render(w, http.StatusBadRequest, "reset_password.html", data)
		return
	}

	data.Flash = "Contraseña actualizada. Inicia sesión con tu nueva contraseña."
	h.renderer.Render(w, http.StatusOK, "login.html", data)
}

// safeRedirect keeps post-login redirects on this site.
func safeRedirect(target string) string {
	if target == "" {
		return ""
	}
	u, err := url.Parse(target)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return ""
	}
	return u.Path
}
