package http

import (
	"Linkfolio-Backend/internal/auth"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// AuthHandler serves registration and login.
type AuthHandler struct {
	auth *auth.Service
	log  *zap.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService *auth.Service, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth: authService,
		log:  log,
	}
}

// CredentialsRequest carries an email and password pair.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries the issued access token.
type AuthResponse struct {
	UserID      int64  `json:"user_id"`
	Email       string `json:"email"`
	AccessToken string `json:"access_token"`
}

// Register creates an account
//
//	@Summary	Register
//	@Tags		Auth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		CredentialsRequest	true	"Email and password"
//	@Success	201		{object}	AuthResponse		"Account created"
//	@Failure	400		{object}	map[string]string	"Invalid email or password"
//	@Failure	409		{object}	map[string]string	"Email already registered"
//	@Router		/api/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	user, token, err := h.auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, AuthResponse{
		UserID:      user.ID,
		Email:       user.Email,
		AccessToken: token,
	}, http.StatusCreated)
}

// Login verifies credentials
//
//	@Summary	Log in
//	@Tags		Auth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		CredentialsRequest	true	"Email and password"
//	@Success	200		{object}	AuthResponse		"Access token"
//	@Failure	401		{object}	map[string]string	"Invalid credentials"
//	@Router		/api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	user, token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, AuthResponse{
		UserID:      user.ID,
		Email:       user.Email,
		AccessToken: token,
	}, http.StatusOK)
}
