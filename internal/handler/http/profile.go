package http

import (
	"Linkfolio-Backend/internal/auth"
	"Linkfolio-Backend/internal/domain"
	"Linkfolio-Backend/internal/service"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// ProfileHandler serves the authenticated profile endpoints.
type ProfileHandler struct {
	profiles *service.ProfileService
	log      *zap.Logger
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(profiles *service.ProfileService, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		log:      log,
	}
}

// ProfileResponse is the JSON shape of the user's own profile.
type ProfileResponse struct {
	ID          string  `json:"id"`
	Username    string  `json:"username"`
	DisplayName *string `json:"display_name,omitempty"`
	Bio         *string `json:"bio,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
	Theme       string  `json:"theme"`
}

func toProfileResponse(profile *domain.Profile) ProfileResponse {
	return ProfileResponse{
		ID:          profile.ID,
		Username:    profile.Username,
		DisplayName: profile.DisplayName,
		Bio:         profile.Bio,
		AvatarURL:   profile.AvatarURL,
		Theme:       profile.Theme,
	}
}

// GetProfile returns the authenticated user's profile
//
//	@Summary	Get own profile
//	@Tags		Profile
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	ProfileResponse		"Profile"
//	@Failure	404	{object}	map[string]string	"No profile yet"
//	@Router		/api/profile [get]
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	profile, err := h.profiles.GetCurrent(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, toProfileResponse(profile), http.StatusOK)
}

// CreateProfileRequest carries the onboarding fields.
type CreateProfileRequest struct {
	Username    string  `json:"username"`
	DisplayName *string `json:"display_name,omitempty"`
}

// CreateProfile claims a username for the user
//
//	@Summary		Create a profile
//	@Description	Claims a public username; each user owns at most one profile
//	@Tags			Profile
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		CreateProfileRequest	true	"Onboarding fields"
//	@Success		201		{object}	ProfileResponse			"Created profile"
//	@Failure		400		{object}	map[string]string		"Invalid username"
//	@Failure		409		{object}	map[string]string		"Username taken"
//	@Router			/api/profile [post]
func (h *ProfileHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var req CreateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	profile, err := h.profiles.CreateProfile(r.Context(), userID, req.Username, req.DisplayName)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, toProfileResponse(profile), http.StatusCreated)
}

// UpdateProfileRequest carries partial profile edits.
type UpdateProfileRequest struct {
	DisplayName optionalString `json:"display_name"`
	Bio         optionalString `json:"bio"`
	AvatarURL   optionalString `json:"avatar_url"`
	Theme       *string        `json:"theme"`
}

// UpdateProfile edits profile fields
//
//	@Summary	Update own profile
//	@Tags		Profile
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		UpdateProfileRequest	true	"Fields to change"
//	@Success	200		{object}	ProfileResponse			"Updated profile"
//	@Failure	400		{object}	map[string]string		"Invalid profile fields"
//	@Router		/api/profile [patch]
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	input := service.UpdateProfileInput{
		DisplayName:    req.DisplayName.Value,
		DisplayNameSet: req.DisplayName.Set,
		Bio:            req.Bio.Value,
		BioSet:         req.Bio.Set,
		AvatarURL:      req.AvatarURL.Value,
		AvatarURLSet:   req.AvatarURL.Set,
		Theme:          req.Theme,
	}

	profile, err := h.profiles.UpdateProfile(r.Context(), userID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, toProfileResponse(profile), http.StatusOK)
}

// UsernameCheckResponse reports whether a username can be claimed.
type UsernameCheckResponse struct {
	Username  string `json:"username"`
	Available bool   `json:"available"`
}

// CheckUsername reports username availability
//
//	@Summary	Check username availability
//	@Tags		Profile
//	@Produce	json
//	@Security	BearerAuth
//	@Param		username	query		string					true	"Username to check"
//	@Success	200			{object}	UsernameCheckResponse	"Availability"
//	@Failure	400			{object}	map[string]string		"Malformed username"
//	@Router		/api/profile/username-check [get]
func (h *ProfileHandler) CheckUsername(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		writeError(w, "Username is required", http.StatusBadRequest)
		return
	}

	available, err := h.profiles.CheckUsername(r.Context(), username)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, UsernameCheckResponse{Username: username, Available: available}, http.StatusOK)
}
