package http

import (
	"Linkfolio-Backend/internal/repository"
	"Linkfolio-Backend/internal/service"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// SectionsHandler serves the authenticated section endpoints.
type SectionsHandler struct {
	storage repository.Storage
	layouts *service.LayoutService
	log     *zap.Logger
}

// NewSectionsHandler creates a new sections handler.
func NewSectionsHandler(storage repository.Storage, layouts *service.LayoutService, log *zap.Logger) *SectionsHandler {
	return &SectionsHandler{
		storage: storage,
		layouts: layouts,
		log:     log,
	}
}

// CreateSectionRequest carries a section split: the new title, the
// container whose links are being divided, and how many of them stay
// behind.
type CreateSectionRequest struct {
	Title           string  `json:"title"`
	SourceSectionID *string `json:"source_section_id"`
	SplitIndex      int     `json:"split_index"`
}

// CreateSection splits a container into an existing part and a new section
//
//	@Summary		Create a section by splitting a container
//	@Description	Inserts a new section after the source container and moves the source's links from the split index onward into it
//	@Tags			Sections
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		CreateSectionRequest	true	"Split description"
//	@Success		201		{object}	SectionResponse			"Created section"
//	@Failure		400		{object}	map[string]string		"Invalid title or split position"
//	@Failure		404		{object}	map[string]string		"Source section not found"
//	@Router			/api/sections [post]
func (h *SectionsHandler) CreateSection(w http.ResponseWriter, r *http.Request) {
	profile, err := profileFromRequest(r, h.storage)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	var req CreateSectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	section, err := h.layouts.CreateSectionAtSplit(r.Context(), profile.ID, req.Title, req.SourceSectionID, req.SplitIndex)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.log.Info("created section",
		zap.String("profile_id", profile.ID),
		zap.String("section_id", section.ID))
	writeJSON(w, toSectionResponse(section), http.StatusCreated)
}

// RenameSectionRequest carries a section's new title.
type RenameSectionRequest struct {
	Title string `json:"title"`
}

// RenameSection changes a section title
//
//	@Summary		Rename a section
//	@Tags			Sections
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string					true	"Section id"
//	@Param			request	body		RenameSectionRequest	true	"New title"
//	@Success		200		{object}	SectionResponse			"Renamed section"
//	@Failure		400		{object}	map[string]string		"Invalid title"
//	@Failure		404		{object}	map[string]string		"Section not found"
//	@Router			/api/sections/{id} [patch]
func (h *SectionsHandler) RenameSection(w http.ResponseWriter, r *http.Request) {
	profile, err := profileFromRequest(r, h.storage)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	sectionID := r.PathValue("id")
	if sectionID == "" {
		writeError(w, "Section id is required", http.StatusBadRequest)
		return
	}

	var req RenameSectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	section, err := h.layouts.RenameSection(r.Context(), profile.ID, sectionID, req.Title)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, toSectionResponse(section), http.StatusOK)
}

// DeleteSection removes a section and re-homes its links
//
//	@Summary		Delete a section
//	@Description	Deletes a section; its links survive and move to the end of the unsectioned bucket
//	@Tags			Sections
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Section id"
//	@Success		204	"Section deleted"
//	@Failure		404	{object}	map[string]string	"Section not found"
//	@Router			/api/sections/{id} [delete]
func (h *SectionsHandler) DeleteSection(w http.ResponseWriter, r *http.Request) {
	profile, err := profileFromRequest(r, h.storage)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	sectionID := r.PathValue("id")
	if sectionID == "" {
		writeError(w, "Section id is required", http.StatusBadRequest)
		return
	}

	if err := h.layouts.DeleteSection(r.Context(), profile.ID, sectionID); err != nil {
		writeServiceError(w, err)
		return
	}

	h.log.Info("deleted section",
		zap.String("profile_id", profile.ID),
		zap.String("section_id", sectionID))
	w.WriteHeader(http.StatusNoContent)
}
