package service

import (
	"Linkfolio-Backend/internal/domain"
	"Linkfolio-Backend/internal/layout"
	"Linkfolio-Backend/internal/repository"
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// ErrInvalidLink marks a rejected link field: a bad title, an unsafe
// URL, an unknown icon key or an overlong description.
var ErrInvalidLink = errors.New("invalid link")

const (
	maxLinkTitleLength       = 100
	maxLinkDescriptionLength = 200
)

var hexColorRegex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// LinkService implements link CRUD on top of the layout invariants:
// new links append to the end of their container, moves re-home links
// between containers and deletions keep the vacated container densely
// numbered.
type LinkService struct {
	storage repository.Storage
	log     *zap.Logger
}

// NewLinkService creates a new link service.
func NewLinkService(storage repository.Storage, log *zap.Logger) *LinkService {
	return &LinkService{
		storage: storage,
		log:     log,
	}
}

// AddLinkInput carries the fields of a new link.
type AddLinkInput struct {
	Title       string
	URL         string
	Description *string
	IconKey     *string
	IconBgColor *string
	IsActive    bool
	SectionID   *string
}

// AddLink creates a link appended to the end of its target container.
func (s *LinkService) AddLink(ctx context.Context, profileID string, input AddLinkInput) (*domain.Link, error) {
	title, err := validLinkTitle(input.Title)
	if err != nil {
		return nil, err
	}
	normalizedURL, err := NormalizeHTTPURL(input.URL)
	if err != nil {
		return nil, err
	}
	description, err := validDescription(input.Description)
	if err != nil {
		return nil, err
	}
	iconKey, err := validIconKey(input.IconKey)
	if err != nil {
		return nil, err
	}
	iconBgColor, err := validIconBgColor(input.IconBgColor)
	if err != nil {
		return nil, err
	}

	if input.SectionID != nil {
		if _, err := s.storage.GetSectionByID(ctx, profileID, *input.SectionID); err != nil {
			return nil, err
		}
	}
	sortOrder, err := s.storage.NextLinkSortOrder(ctx, profileID, input.SectionID)
	if err != nil {
		return nil, err
	}

	link := &domain.Link{
		ProfileID:   profileID,
		SectionID:   input.SectionID,
		Title:       title,
		URL:         normalizedURL,
		Description: description,
		IconKey:     iconKey,
		IconBgColor: iconBgColor,
		IsActive:    input.IsActive,
		SortOrder:   sortOrder,
	}
	if err := s.storage.CreateLink(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

// UpdateLinkInput carries partial link edits. Pointer fields are
// unchanged when nil; the *Set flags distinguish "clear this field"
// from "leave it alone" for nullable columns.
type UpdateLinkInput struct {
	Title          *string
	URL            *string
	Description    *string
	DescriptionSet bool
	IconKey        *string
	IconKeySet     bool
	IconBgColor    *string
	IsActive       *bool
	SectionID      *string
	SectionIDSet   bool
}

// UpdateLink applies partial field edits. Changing the section moves
// the link to the end of the target container and renumbers the
// vacated one, so both containers stay densely ranked.
func (s *LinkService) UpdateLink(ctx context.Context, profileID, linkID string, input UpdateLinkInput) (*domain.Link, error) {
	link, err := s.storage.GetLinkByID(ctx, profileID, linkID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title, err := validLinkTitle(*input.Title)
		if err != nil {
			return nil, err
		}
		link.Title = title
	}
	if input.URL != nil {
		normalizedURL, err := NormalizeHTTPURL(*input.URL)
		if err != nil {
			return nil, err
		}
		link.URL = normalizedURL
	}
	if input.DescriptionSet {
		description, err := validDescription(input.Description)
		if err != nil {
			return nil, err
		}
		link.Description = description
	}
	if input.IconKeySet {
		iconKey, err := validIconKey(input.IconKey)
		if err != nil {
			return nil, err
		}
		link.IconKey = iconKey
	}
	if input.IconBgColor != nil {
		iconBgColor, err := validIconBgColor(input.IconBgColor)
		if err != nil {
			return nil, err
		}
		link.IconBgColor = iconBgColor
	}
	if input.IsActive != nil {
		link.IsActive = *input.IsActive
	}

	moving := input.SectionIDSet && !sameSection(link.SectionID, input.SectionID)
	if moving {
		if input.SectionID != nil {
			if _, err := s.storage.GetSectionByID(ctx, profileID, *input.SectionID); err != nil {
				return nil, err
			}
		}
		if err := s.moveLink(ctx, profileID, link, input.SectionID); err != nil {
			return nil, err
		}
	}

	if err := s.storage.UpdateLink(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

// moveLink appends the link to the target container and renumbers the
// container it left, in one transaction.
func (s *LinkService) moveLink(ctx context.Context, profileID string, link *domain.Link, targetSectionID *string) error {
	current, err := s.storage.GetLayout(ctx, profileID, false)
	if err != nil {
		return err
	}
	containers, _ := layout.BuildContainers(current.Links, current.Sections)

	remaining := make([]string, 0)
	for _, sibling := range containers[layout.ContainerFor(link.SectionID)] {
		if sibling.ID != link.ID {
			remaining = append(remaining, sibling.ID)
		}
	}
	target := idsOf(containers[layout.ContainerFor(targetSectionID)])

	plan := &domain.LayoutPlan{
		LinkPlacements: append(
			layout.Placements(link.SectionID, remaining),
			layout.Placements(targetSectionID, append(target, link.ID))...),
	}
	if err := s.storage.ApplyLayoutPlan(ctx, profileID, plan); err != nil {
		return err
	}

	link.SectionID = targetSectionID
	link.SortOrder = len(target)
	return nil
}

// DeleteLink removes a link and renumbers its container so the dense
// 0..n-1 ranking survives the deletion.
func (s *LinkService) DeleteLink(ctx context.Context, profileID, linkID string) error {
	link, err := s.storage.GetLinkByID(ctx, profileID, linkID)
	if err != nil {
		return err
	}

	current, err := s.storage.GetLayout(ctx, profileID, false)
	if err != nil {
		return err
	}
	containers, _ := layout.BuildContainers(current.Links, current.Sections)

	remaining := make([]string, 0)
	for _, sibling := range containers[layout.ContainerFor(link.SectionID)] {
		if sibling.ID != link.ID {
			remaining = append(remaining, sibling.ID)
		}
	}

	plan := &domain.LayoutPlan{
		LinkPlacements: layout.Placements(link.SectionID, remaining),
		DeleteLinkID:   &link.ID,
	}
	if err := s.storage.ApplyLayoutPlan(ctx, profileID, plan); err != nil {
		return err
	}
	s.log.Info("deleted link", zap.String("profile_id", profileID), zap.String("link_id", linkID))
	return nil
}

// PublicSection is a section on the public page together with its
// active links in order.
type PublicSection struct {
	Section *domain.Section
	Links   []*domain.Link
}

// PublicProfile is the read-only projection served on /u/{username}:
// active links only, sections with zero active links omitted.
type PublicProfile struct {
	Profile          *domain.Profile
	UnsectionedLinks []*domain.Link
	Sections         []PublicSection
}

// GetPublic resolves a username to its public projection.
func (s *LinkService) GetPublic(ctx context.Context, username string) (*PublicProfile, error) {
	profile, err := s.storage.GetProfileByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		return nil, err
	}

	current, err := s.storage.GetLayout(ctx, profile.ID, true)
	if err != nil {
		return nil, err
	}
	containers, _ := layout.BuildContainers(current.Links, current.Sections)

	public := &PublicProfile{
		Profile:          profile,
		UnsectionedLinks: containers[layout.Unsectioned],
	}
	for _, section := range layout.SortSections(current.Sections) {
		links := containers[layout.ContainerFor(&section.ID)]
		if len(links) == 0 {
			continue
		}
		public.Sections = append(public.Sections, PublicSection{Section: section, Links: links})
	}
	return public, nil
}

// NormalizeHTTPURL parses and re-serializes a link target, accepting
// only http(s) URLs without embedded credentials.
func NormalizeHTTPURL(value string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(value))
	if err != nil {
		return "", fmt.Errorf("%w: unparseable url", ErrInvalidLink)
	}
	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return "", fmt.Errorf("%w: url scheme must be http or https", ErrInvalidLink)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("%w: url has no host", ErrInvalidLink)
	}
	if parsed.User != nil {
		return "", fmt.Errorf("%w: url must not embed credentials", ErrInvalidLink)
	}
	return parsed.String(), nil
}

func validLinkTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: title must not be blank", ErrInvalidLink)
	}
	if len(title) > maxLinkTitleLength {
		return "", fmt.Errorf("%w: title exceeds %d characters", ErrInvalidLink, maxLinkTitleLength)
	}
	return title, nil
}

func validDescription(description *string) (*string, error) {
	if description == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*description)
	if trimmed == "" {
		return nil, nil
	}
	if len(trimmed) > maxLinkDescriptionLength {
		return nil, fmt.Errorf("%w: description exceeds %d characters", ErrInvalidLink, maxLinkDescriptionLength)
	}
	return &trimmed, nil
}

func validIconKey(iconKey *string) (*string, error) {
	if iconKey == nil {
		return nil, nil
	}
	if !domain.IsLinkIconKey(*iconKey) {
		return nil, fmt.Errorf("%w: unknown icon key %q", ErrInvalidLink, *iconKey)
	}
	return iconKey, nil
}

func validIconBgColor(color *string) (string, error) {
	if color == nil || *color == "" {
		return domain.DefaultIconBgColor, nil
	}
	if !hexColorRegex.MatchString(*color) {
		return "", fmt.Errorf("%w: icon background must be a #RRGGBB color", ErrInvalidLink)
	}
	return *color, nil
}

func sameSection(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
