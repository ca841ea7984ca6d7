package http

import (
	"Linkfolio-Backend/internal/analytics"
	"Linkfolio-Backend/internal/repository"
	"Linkfolio-Backend/internal/service"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// PublicHandler serves the unauthenticated public page endpoints.
type PublicHandler struct {
	storage   repository.Storage
	links     *service.LinkService
	processor *analytics.Processor
	log       *zap.Logger
}

// NewPublicHandler creates a new public handler.
func NewPublicHandler(storage repository.Storage, links *service.LinkService, processor *analytics.Processor, log *zap.Logger) *PublicHandler {
	return &PublicHandler{
		storage:   storage,
		links:     links,
		processor: processor,
		log:       log,
	}
}

// PublicSectionResponse is one section of the public page with its
// active links.
type PublicSectionResponse struct {
	ID    string         `json:"id"`
	Title string         `json:"title"`
	Links []LinkResponse `json:"links"`
}

// PublicProfileResponse is the read-only public page payload.
type PublicProfileResponse struct {
	Username         string                  `json:"username"`
	DisplayName      *string                 `json:"display_name,omitempty"`
	Bio              *string                 `json:"bio,omitempty"`
	AvatarURL        *string                 `json:"avatar_url,omitempty"`
	Theme            string                  `json:"theme"`
	UnsectionedLinks []LinkResponse          `json:"unsectioned_links"`
	Sections         []PublicSectionResponse `json:"sections"`
}

// GetProfile serves a public profile page
//
//	@Summary		Get a public profile
//	@Description	Returns the public projection of a profile: active links only, empty sections omitted
//	@Tags			Public
//	@Produce		json
//	@Param			username	path		string					true	"Profile username"
//	@Success		200			{object}	PublicProfileResponse	"Public page"
//	@Failure		404			{object}	map[string]string		"Profile not found"
//	@Router			/api/public/{username} [get]
func (h *PublicHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	if username == "" {
		writeError(w, "Username is required", http.StatusBadRequest)
		return
	}

	public, err := h.links.GetPublic(r.Context(), username)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response := PublicProfileResponse{
		Username:         public.Profile.Username,
		DisplayName:      public.Profile.DisplayName,
		Bio:              public.Profile.Bio,
		AvatarURL:        public.Profile.AvatarURL,
		Theme:            public.Profile.Theme,
		UnsectionedLinks: toLinkResponses(public.UnsectionedLinks),
		Sections:         make([]PublicSectionResponse, 0, len(public.Sections)),
	}
	for _, section := range public.Sections {
		response.Sections = append(response.Sections, PublicSectionResponse{
			ID:    section.Section.ID,
			Title: section.Section.Title,
			Links: toLinkResponses(section.Links),
		})
	}

	writeJSON(w, response, http.StatusOK)
}

// RecordClick queues a click event for a public link
//
//	@Summary		Record a link click
//	@Description	Queues a click event for asynchronous recording; always fast, never blocks on the database
//	@Tags			Public
//	@Param			username	path	string	true	"Profile username"
//	@Param			id			path	string	true	"Link id"
//	@Success		202			"Click accepted"
//	@Failure		404			{object}	map[string]string	"Profile or link not found"
//	@Router			/api/public/{username}/links/{id}/click [post]
func (h *PublicHandler) RecordClick(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	linkID := r.PathValue("id")
	if username == "" || linkID == "" {
		writeError(w, "Username and link id are required", http.StatusBadRequest)
		return
	}

	profile, err := h.storage.GetProfileByUsername(r.Context(), username)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	link, err := h.storage.GetLinkByID(r.Context(), profile.ID, linkID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	click := &analytics.Click{
		LinkID:    link.ID,
		ProfileID: profile.ID,
		ClickedAt: time.Now(),
	}
	if referrer := r.Referer(); referrer != "" {
		click.Referrer = &referrer
	}
	if userAgent := r.UserAgent(); userAgent != "" {
		click.UserAgent = &userAgent
	}
	if country := r.Header.Get("CF-IPCountry"); country != "" {
		click.Country = &country
	}

	if err := h.processor.Submit(click); err != nil {
		// Click loss is acceptable; the visitor still gets through.
		h.log.Warn("failed to queue click", zap.String("link_id", link.ID), zap.Error(err))
	}
	w.WriteHeader(http.StatusAccepted)
}
