package http

import (
	"Linkfolio-Backend/internal/auth"
	"Linkfolio-Backend/internal/domain"
	"Linkfolio-Backend/internal/repository"
	"Linkfolio-Backend/internal/service"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeServiceError maps service and repository sentinel errors onto
// HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidLayout),
		errors.Is(err, service.ErrInvalidLink),
		errors.Is(err, service.ErrInvalidProfile),
		errors.Is(err, auth.ErrInvalidPassword),
		errors.Is(err, auth.ErrInvalidEmail):
		writeError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, "Invalid email or password", http.StatusUnauthorized)
	case errors.Is(err, errNoIdentity):
		writeError(w, "Authentication required", http.StatusUnauthorized)
	case errors.Is(err, repository.ErrEmailTaken),
		errors.Is(err, repository.ErrUsernameTaken):
		writeError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, repository.ErrLinkNotFound),
		errors.Is(err, repository.ErrSectionNotFound),
		errors.Is(err, repository.ErrProfileNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		writeError(w, err.Error(), http.StatusNotFound)
	default:
		writeError(w, "Internal server error", http.StatusInternalServerError)
	}
}

var errNoIdentity = errors.New("user id not found in context")

// profileFromRequest resolves the authenticated user's profile.
func profileFromRequest(r *http.Request, storage repository.Storage) (*domain.Profile, error) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		return nil, errNoIdentity
	}
	return storage.GetProfileByUserID(r.Context(), userID)
}

// optionalString distinguishes an absent JSON field from an explicit
// null, so PATCH requests can clear nullable fields.
type optionalString struct {
	Set   bool
	Value *string
}

func (o *optionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// LinkResponse is the JSON shape of one link.
type LinkResponse struct {
	ID          string  `json:"id"`
	SectionID   *string `json:"section_id"`
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Description *string `json:"description,omitempty"`
	IconKey     *string `json:"icon_key,omitempty"`
	IconBgColor string  `json:"icon_bg_color"`
	IsActive    bool    `json:"is_active"`
	SortOrder   int     `json:"sort_order"`
	CreatedAt   string  `json:"created_at"`
}

// SectionResponse is the JSON shape of one section.
type SectionResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	SortOrder int    `json:"sort_order"`
}

func toLinkResponse(link *domain.Link) LinkResponse {
	return LinkResponse{
		ID:          link.ID,
		SectionID:   link.SectionID,
		Title:       link.Title,
		URL:         link.URL,
		Description: link.Description,
		IconKey:     link.IconKey,
		IconBgColor: link.IconBgColor,
		IsActive:    link.IsActive,
		SortOrder:   link.SortOrder,
		CreatedAt:   link.CreatedAt.Format(time.RFC3339),
	}
}

func toLinkResponses(links []*domain.Link) []LinkResponse {
	out := make([]LinkResponse, len(links))
	for i, link := range links {
		out[i] = toLinkResponse(link)
	}
	return out
}

func toSectionResponse(section *domain.Section) SectionResponse {
	return SectionResponse{
		ID:        section.ID,
		Title:     section.Title,
		SortOrder: section.SortOrder,
	}
}
