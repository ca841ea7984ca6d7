package service

import (
	"Linkfolio-Backend/internal/domain"
	"Linkfolio-Backend/internal/layout"
	"Linkfolio-Backend/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrInvalidLayout marks any layout validation failure: duplicate ids,
// incomplete coverage, unknown ids, out-of-range split positions or
// bad section titles. Detected before any write begins; the wrapped
// message names the failed check.
var ErrInvalidLayout = errors.New("invalid layout")

const maxSectionTitleLength = 100

// LayoutService implements the structural layout mutations: full
// reorder, section creation by split, rename and delete with link
// re-homing. Every operation validates against the profile's current
// rows first and then commits through a single storage transaction.
type LayoutService struct {
	storage repository.Storage
	log     *zap.Logger
}

// NewLayoutService creates a new layout mutation service.
func NewLayoutService(storage repository.Storage, log *zap.Logger) *LayoutService {
	return &LayoutService{
		storage: storage,
		log:     log,
	}
}

// List returns the profile's full layout (all links regardless of the
// active flag) in canonical order.
func (s *LayoutService) List(ctx context.Context, profileID string) (*domain.Layout, error) {
	current, err := s.storage.GetLayout(ctx, profileID, false)
	if err != nil {
		return nil, err
	}
	ordered := layout.SortSections(current.Sections)
	return &domain.Layout{
		Sections: ordered,
		Links:    layout.SortLinksForLayout(current.Links, ordered),
	}, nil
}

// Reorder atomically applies an entire desired layout: the section
// order, the unsectioned link order and one ordered link list per
// section. The payload must account for every section and every link
// of the profile exactly once; a reorder can move links between
// containers but can never add, remove or duplicate one.
func (s *LayoutService) Reorder(ctx context.Context, profileID string, payload layout.ReorderPayload) error {
	current, err := s.storage.GetLayout(ctx, profileID, false)
	if err != nil {
		return err
	}
	plan, err := buildReorderPlan(current, payload)
	if err != nil {
		return err
	}

	if err := s.storage.ApplyLayoutPlan(ctx, profileID, plan); err != nil {
		return err
	}
	s.log.Info("reordered layout",
		zap.String("profile_id", profileID),
		zap.Int("sections", len(payload.SectionOrderIDs)),
		zap.Int("links", len(plan.LinkPlacements)))
	return nil
}

// buildReorderPlan validates a reorder payload against the current
// layout and turns it into row placements. All checks run before any
// write: the transaction is never opened on a known-invalid input.
func buildReorderPlan(current *domain.Layout, payload layout.ReorderPayload) (*domain.LayoutPlan, error) {
	// (a) no id list contains a duplicate
	if id, ok := firstDuplicate(payload.SectionOrderIDs); ok {
		return nil, fmt.Errorf("%w: duplicate section id %q in section order", ErrInvalidLayout, id)
	}
	submittedLinkIDs := make([]string, 0, len(payload.UnsectionedLinkIDs))
	submittedLinkIDs = append(submittedLinkIDs, payload.UnsectionedLinkIDs...)
	for _, order := range payload.SectionLinkOrders {
		submittedLinkIDs = append(submittedLinkIDs, order.LinkIDs...)
	}
	if id, ok := firstDuplicate(submittedLinkIDs); ok {
		return nil, fmt.Errorf("%w: link id %q listed more than once", ErrInvalidLayout, id)
	}

	// (b) the section order names exactly the existing sections
	existingSections := make(map[string]struct{}, len(current.Sections))
	for _, section := range current.Sections {
		existingSections[section.ID] = struct{}{}
	}
	if len(payload.SectionOrderIDs) != len(existingSections) {
		return nil, fmt.Errorf("%w: section order names %d of %d sections",
			ErrInvalidLayout, len(payload.SectionOrderIDs), len(existingSections))
	}
	for _, id := range payload.SectionOrderIDs {
		if _, ok := existingSections[id]; !ok {
			return nil, fmt.Errorf("%w: unknown section id %q in section order", ErrInvalidLayout, id)
		}
	}

	// (c) every existing section has exactly one link-order entry
	covered := make(map[string]struct{}, len(payload.SectionLinkOrders))
	for _, order := range payload.SectionLinkOrders {
		if _, ok := existingSections[order.SectionID]; !ok {
			return nil, fmt.Errorf("%w: link order given for unknown section %q", ErrInvalidLayout, order.SectionID)
		}
		if _, dup := covered[order.SectionID]; dup {
			return nil, fmt.Errorf("%w: duplicate link order for section %q", ErrInvalidLayout, order.SectionID)
		}
		covered[order.SectionID] = struct{}{}
	}
	if len(covered) != len(existingSections) {
		return nil, fmt.Errorf("%w: link orders cover %d of %d sections",
			ErrInvalidLayout, len(covered), len(existingSections))
	}

	// (d) the submitted link ids are exactly the profile's link ids
	existingLinks := make(map[string]struct{}, len(current.Links))
	for _, link := range current.Links {
		existingLinks[link.ID] = struct{}{}
	}
	if len(submittedLinkIDs) != len(existingLinks) {
		return nil, fmt.Errorf("%w: layout names %d of %d links",
			ErrInvalidLayout, len(submittedLinkIDs), len(existingLinks))
	}
	for _, id := range submittedLinkIDs {
		if _, ok := existingLinks[id]; !ok {
			return nil, fmt.Errorf("%w: unknown link id %q", ErrInvalidLayout, id)
		}
	}

	plan := &domain.LayoutPlan{
		SectionPositions: make([]domain.SectionPosition, 0, len(payload.SectionOrderIDs)),
		LinkPlacements:   layout.Placements(nil, payload.UnsectionedLinkIDs),
	}
	for i, id := range payload.SectionOrderIDs {
		plan.SectionPositions = append(plan.SectionPositions, domain.SectionPosition{SectionID: id, SortOrder: i})
	}
	for _, order := range payload.SectionLinkOrders {
		sectionID := order.SectionID
		plan.LinkPlacements = append(plan.LinkPlacements, layout.Placements(&sectionID, order.LinkIDs)...)
	}
	return plan, nil
}

// CreateSectionAtSplit splits a container in two at a link boundary:
// the first splitIndex links stay in the source container, the rest
// move under a new section inserted immediately after the source
// (position 0 when splitting the unsectioned bucket). splitIndex may
// equal the container's link count, creating an empty section.
func (s *LayoutService) CreateSectionAtSplit(ctx context.Context, profileID, title string, sourceSectionID *string, splitIndex int) (*domain.Section, error) {
	title, err := validSectionTitle(title)
	if err != nil {
		return nil, err
	}

	current, err := s.storage.GetLayout(ctx, profileID, false)
	if err != nil {
		return nil, err
	}
	containers, _ := layout.BuildContainers(current.Links, current.Sections)
	orderedSections := layout.SortSections(current.Sections)

	insertPos := 0
	if sourceSectionID != nil {
		sourceIndex := -1
		for i, section := range orderedSections {
			if section.ID == *sourceSectionID {
				sourceIndex = i
				break
			}
		}
		if sourceIndex < 0 {
			return nil, repository.ErrSectionNotFound
		}
		insertPos = sourceIndex + 1
	}

	sourceLinks := containers[layout.ContainerFor(sourceSectionID)]
	if splitIndex < 0 || splitIndex > len(sourceLinks) {
		return nil, fmt.Errorf("%w: invalid split position %d for container of %d links",
			ErrInvalidLayout, splitIndex, len(sourceLinks))
	}

	section := &domain.Section{
		ID:        uuid.NewString(),
		ProfileID: profileID,
		Title:     title,
		SortOrder: insertPos,
	}

	plan := &domain.LayoutPlan{InsertSection: section}
	// Renumber all sections around the insertion point; positions
	// below it keep their value, positions at or above shift up by one.
	for i, existing := range orderedSections {
		pos := i
		if i >= insertPos {
			pos = i + 1
		}
		plan.SectionPositions = append(plan.SectionPositions, domain.SectionPosition{SectionID: existing.ID, SortOrder: pos})
	}
	plan.LinkPlacements = append(plan.LinkPlacements,
		layout.Placements(sourceSectionID, idsOf(sourceLinks[:splitIndex]))...)
	plan.LinkPlacements = append(plan.LinkPlacements,
		layout.Placements(&section.ID, idsOf(sourceLinks[splitIndex:]))...)

	if err := s.storage.ApplyLayoutPlan(ctx, profileID, plan); err != nil {
		return nil, err
	}
	s.log.Info("created section by split",
		zap.String("profile_id", profileID),
		zap.String("section_id", section.ID),
		zap.Int("moved_links", len(sourceLinks)-splitIndex))
	return section, nil
}

// RenameSection updates a section's title only; ordering is untouched.
func (s *LayoutService) RenameSection(ctx context.Context, profileID, sectionID, title string) (*domain.Section, error) {
	title, err := validSectionTitle(title)
	if err != nil {
		return nil, err
	}

	section, err := s.storage.GetSectionByID(ctx, profileID, sectionID)
	if err != nil {
		return nil, err
	}
	section.Title = title
	if err := s.storage.UpdateSection(ctx, section); err != nil {
		return nil, err
	}
	return section, nil
}

// DeleteSection removes a section, re-homing its links to the end of
// the unsectioned bucket in their existing relative order and closing
// the section ordering gap. No link is ever observable pointing at the
// deleted section.
func (s *LayoutService) DeleteSection(ctx context.Context, profileID, sectionID string) error {
	section, err := s.storage.GetSectionByID(ctx, profileID, sectionID)
	if err != nil {
		return err
	}

	current, err := s.storage.GetLayout(ctx, profileID, false)
	if err != nil {
		return err
	}
	containers, _ := layout.BuildContainers(current.Links, current.Sections)

	rehomed := append(idsOf(containers[layout.Unsectioned]),
		idsOf(containers[layout.ContainerFor(&section.ID)])...)

	plan := &domain.LayoutPlan{
		LinkPlacements:  layout.Placements(nil, rehomed),
		DeleteSectionID: &section.ID,
	}
	pos := 0
	for _, existing := range layout.SortSections(current.Sections) {
		if existing.ID == section.ID {
			continue
		}
		plan.SectionPositions = append(plan.SectionPositions, domain.SectionPosition{SectionID: existing.ID, SortOrder: pos})
		pos++
	}

	if err := s.storage.ApplyLayoutPlan(ctx, profileID, plan); err != nil {
		return err
	}
	s.log.Info("deleted section",
		zap.String("profile_id", profileID),
		zap.String("section_id", sectionID),
		zap.Int("rehomed_links", len(plan.LinkPlacements)))
	return nil
}

func validSectionTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: section title must not be blank", ErrInvalidLayout)
	}
	if len(title) > maxSectionTitleLength {
		return "", fmt.Errorf("%w: section title exceeds %d characters", ErrInvalidLayout, maxSectionTitleLength)
	}
	return title, nil
}

func firstDuplicate(ids []string) (string, bool) {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return id, true
		}
		seen[id] = struct{}{}
	}
	return "", false
}

func idsOf(links []*domain.Link) []string {
	ids := make([]string, len(links))
	for i, link := range links {
		ids[i] = link.ID
	}
	return ids
}
