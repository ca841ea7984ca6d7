package http

import (
	"Linkfolio-Backend/internal/layout"
	"Linkfolio-Backend/internal/repository"
	"Linkfolio-Backend/internal/service"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// LinksHandler serves the authenticated link and layout endpoints.
type LinksHandler struct {
	storage repository.Storage
	links   *service.LinkService
	layouts *service.LayoutService
	log     *zap.Logger
}

// NewLinksHandler creates a new links handler.
func NewLinksHandler(storage repository.Storage, links *service.LinkService, layouts *service.LayoutService, log *zap.Logger) *LinksHandler {
	return &LinksHandler{
		storage: storage,
		links:   links,
		layouts: layouts,
		log:     log,
	}
}

// SectionWithLinks is one section and its ordered links.
type SectionWithLinks struct {
	SectionResponse
	Links []LinkResponse `json:"links"`
}

// LayoutResponse is the full editable layout: the unsectioned bucket
// first, then every section in order, plus the layout signature the
// client uses to skip redundant refreshes.
type LayoutResponse struct {
	UnsectionedLinks []LinkResponse     `json:"unsectioned_links"`
	Sections         []SectionWithLinks `json:"sections"`
	Signature        string             `json:"signature"`
}

// ListLayout returns the profile's full layout
//
//	@Summary		Get the link layout
//	@Description	Returns every section and link of the profile in render order
//	@Tags			Links
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	LayoutResponse		"Current layout"
//	@Failure		401	{object}	map[string]string	"Authentication required"
//	@Router			/api/links [get]
func (h *LinksHandler) ListLayout(w http.ResponseWriter, r *http.Request) {
	profile, err := profileFromRequest(r, h.storage)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	current, err := h.layouts.List(r.Context(), profile.ID)
	if err != nil {
		h.log.Error("failed to load layout", zap.String("profile_id", profile.ID), zap.Error(err))
		writeServiceError(w, err)
		return
	}

	containers, _ := layout.BuildContainers(current.Links, current.Sections)
	response := LayoutResponse{
		UnsectionedLinks: toLinkResponses(containers[layout.Unsectioned]),
		Sections:         make([]SectionWithLinks, 0, len(current.Sections)),
		Signature:        layout.Signature(current.Links, current.Sections),
	}
	for _, section := range layout.SortSections(current.Sections) {
		response.Sections = append(response.Sections, SectionWithLinks{
			SectionResponse: toSectionResponse(section),
			Links:           toLinkResponses(containers[layout.ContainerFor(&section.ID)]),
		})
	}

	writeJSON(w, response, http.StatusOK)
}

// CreateLinkRequest carries the fields for a new link.
type CreateLinkRequest struct {
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Description *string `json:"description,omitempty"`
	IconKey     *string `json:"icon_key,omitempty"`
	IconBgColor *string `json:"icon_bg_color,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
	SectionID   *string `json:"section_id,omitempty"`
}

// CreateLink adds a link to the end of its container
//
//	@Summary		Create a link
//	@Description	Adds a link to the end of the unsectioned bucket or a section
//	@Tags			Links
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		CreateLinkRequest	true	"Link fields"
//	@Success		201		{object}	LinkResponse		"Created link"
//	@Failure		400		{object}	map[string]string	"Invalid link fields"
//	@Failure		404		{object}	map[string]string	"Section not found"
//	@Router			/api/links [post]
func (h *LinksHandler) CreateLink(w http.ResponseWriter, r *http.Request) {
	profile, err := profileFromRequest(r, h.storage)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	var req CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	input := service.AddLinkInput{
		Title:       req.Title,
		URL:         req.URL,
		Description: req.Description,
		IconKey:     req.IconKey,
		IconBgColor: req.IconBgColor,
		IsActive:    true,
		SectionID:   req.SectionID,
	}
	if req.IsActive != nil {
		input.IsActive = *req.IsActive
	}

	link, err := h.links.AddLink(r.Context(), profile.ID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.log.Info("created link", zap.String("profile_id", profile.ID), zap.String("link_id", link.ID))
	writeJSON(w, toLinkResponse(link), http.StatusCreated)
}

// UpdateLinkRequest carries partial link edits. Omitted fields stay
// unchanged; nullable fields can be cleared with an explicit null.
type UpdateLinkRequest struct {
	Title       *string        `json:"title"`
	URL         *string        `json:"url"`
	Description optionalString `json:"description"`
	IconKey     optionalString `json:"icon_key"`
	IconBgColor *string        `json:"icon_bg_color"`
	IsActive    *bool          `json:"is_active"`
	SectionID   optionalString `json:"section_id"`
}

// UpdateLink edits link fields, moving it between containers when the
// section changes
//
//	@Summary		Update a link
//	@Tags			Links
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string				true	"Link id"
//	@Param			request	body		UpdateLinkRequest	true	"Fields to change"
//	@Success		200		{object}	LinkResponse		"Updated link"
//	@Failure		400		{object}	map[string]string	"Invalid link fields"
//	@Failure		404		{object}	map[string]string	"Link or section not found"
//	@Router			/api/links/{id} [patch]
func (h *LinksHandler) UpdateLink(w http.ResponseWriter, r *http.Request) {
	profile, err := profileFromRequest(r, h.storage)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	linkID := r.PathValue("id")
	if linkID == "" {
		writeError(w, "Link id is required", http.StatusBadRequest)
		return
	}

	var req UpdateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	input := service.UpdateLinkInput{
		Title:          req.Title,
		URL:            req.URL,
		Description:    req.Description.Value,
		DescriptionSet: req.Description.Set,
		IconKey:        req.IconKey.Value,
		IconKeySet:     req.IconKey.Set,
		IconBgColor:    req.IconBgColor,
		IsActive:       req.IsActive,
		SectionID:      req.SectionID.Value,
		SectionIDSet:   req.SectionID.Set,
	}

	link, err := h.links.UpdateLink(r.Context(), profile.ID, linkID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, toLinkResponse(link), http.StatusOK)
}

// DeleteLink removes a link
//
//	@Summary		Delete a link
//	@Description	Deletes a link and keeps its container densely ordered
//	@Tags			Links
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Link id"
//	@Success		204	"Link deleted"
//	@Failure		404	{object}	map[string]string	"Link not found"
//	@Router			/api/links/{id} [delete]
func (h *LinksHandler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	profile, err := profileFromRequest(r, h.storage)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	linkID := r.PathValue("id")
	if linkID == "" {
		writeError(w, "Link id is required", http.StatusBadRequest)
		return
	}

	if err := h.links.DeleteLink(r.Context(), profile.ID, linkID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Reorder replaces the whole layout ordering
//
//	@Summary		Reorder the layout
//	@Description	Submits the full desired layout: section order and every link list
//	@Tags			Links
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		layout.ReorderPayload	true	"Desired layout"
//	@Success		200		{object}	LayoutResponse			"Persisted layout"
//	@Failure		400		{object}	map[string]string		"Rejected layout"
//	@Router			/api/links/reorder [post]
func (h *LinksHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	profile, err := profileFromRequest(r, h.storage)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	var payload layout.ReorderPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	if err := h.layouts.Reorder(r.Context(), profile.ID, payload); err != nil {
		h.log.Warn("rejected reorder",
			zap.String("profile_id", profile.ID),
			zap.Error(err))
		writeServiceError(w, err)
		return
	}

	h.ListLayout(w, r)
}
