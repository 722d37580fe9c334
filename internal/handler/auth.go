package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/showtracker/internal/auth"
	"github.com/sakif/showtracker/internal/model"
	"github.com/sakif/showtracker/internal/service"
)

// AuthHandler manages accounts and the session cookie.
//
// HANDLER RESPONSIBILITIES:
//   - HandleRegister → create an account
//   - HandleLogin    → verify credentials, set the session cookie
//   - HandleLogout   → clear the session cookie
//   - HandleMe       → return the logged-in user's profile
type AuthHandler struct {
	auth          *service.AuthService
	secureCookies bool
	logger        *slog.Logger
}

// NewAuthHandler creates an AuthHandler. secureCookies sets the Secure flag on
// the session cookie and should be true whenever the app is served over HTTPS.
func NewAuthHandler(authService *service.AuthService, secureCookies bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:          authService,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the body of a successful login.
type LoginResponse struct {
	Message string        `json:"message"`
	User    model.Profile `json:"user"`
}

// MeResponse is the body of GET /me.
type MeResponse struct {
	User model.Profile `json:"user"`
}

// HandleRegister creates an account.
//
// HTTP: POST /register
// REQUEST BODY: {"username": "...", "email": "...", "password": "..."}
// RESPONSE: 201 {"message": "Registration successful"}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	req := decodeJSON[registerRequest](r, h.logger)

	h.logger.Debug("register request", slog.String("username", req.Username))

	if _, err := h.auth.Register(r.Context(), req.Username, req.Email, req.Password); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, MessageResponse{Message: "Registration successful"})
}

// HandleLogin verifies credentials and starts a session.
//
// HTTP: POST /login
// REQUEST BODY: {"username": "...", "password": "..."}
// RESPONSE: 200 {"message": "Login successful", "user": {"username", "email"}}
//
// The token goes into an HttpOnly cookie, never the body, so page scripts
// can't read it.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	req := decodeJSON[loginRequest](r, h.logger)

	result, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	auth.SetSessionCookie(w, result.Token, h.auth.SessionTTL(), h.secureCookies)

	writeJSON(w, http.StatusOK, LoginResponse{
		Message: "Login successful",
		User:    result.User.Profile(),
	})
}

// HandleLogout clears the session cookie.
//
// HTTP: POST /logout
//
// Tokens are stateless, so this only removes the browser's copy; a copied
// token stays valid until it expires.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, h.secureCookies)
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Logged out"})
}

// HandleMe returns the profile behind the session cookie.
//
// HTTP: GET /me
// The Session middleware has already resolved the cookie; an anonymous
// request gets 401 {"error": "Not logged in"}.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	username, _ := auth.UsernameFromContext(r.Context())

	user, err := h.auth.CurrentUser(r.Context(), username)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MeResponse{User: user.Profile()})
}
