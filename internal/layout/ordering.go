// Package layout holds the pure ordering policy for profile pages:
// the canonical sort order of sections and links, the layout signature
// used for cheap client/server equality checks, and the container map
// helpers shared by the mutation service and the board controller.
// Nothing in this package touches storage or mutates its inputs unless
// documented otherwise.
package layout

import (
	"fmt"
	"sort"
	"strings"

	"Linkfolio-Backend/internal/domain"
)

// ContainerID identifies one ordered list of links: either a section
// or the synthetic unsectioned bucket.
type ContainerID string

// Unsectioned is the container holding links with no section.
const Unsectioned ContainerID = "container:unsectioned"

const sectionContainerPrefix = "container:"

// ContainerFor maps an optional section id to its container id.
func ContainerFor(sectionID *string) ContainerID {
	if sectionID == nil {
		return Unsectioned
	}
	return ContainerID(sectionContainerPrefix + *sectionID)
}

// SectionIDOf is the inverse of ContainerFor: nil for the unsectioned
// bucket, otherwise the section id.
func (c ContainerID) SectionIDOf() *string {
	if c == Unsectioned {
		return nil
	}
	id := strings.TrimPrefix(string(c), sectionContainerPrefix)
	return &id
}

// SortSections returns the sections in canonical order:
// (sortOrder, createdAt, id) ascending. The input is not modified.
func SortSections(sections []*domain.Section) []*domain.Section {
	ordered := make([]*domain.Section, len(sections))
	copy(ordered, sections)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return ordered
}

// SortLinksForLayout returns the links in global render order:
// unsectioned links first, then each section's links following the
// canonical section order; ties inside a container break on
// (sortOrder, createdAt, id). Links pointing at a section id absent
// from orderedSections sort last. The input is not modified.
func SortLinksForLayout(links []*domain.Link, orderedSections []*domain.Section) []*domain.Link {
	rank := make(map[string]int, len(orderedSections))
	for i, section := range orderedSections {
		rank[section.ID] = i
	}
	staleRank := len(orderedSections) + 1

	containerRank := func(l *domain.Link) int {
		if l.SectionID == nil {
			return -1
		}
		if r, ok := rank[*l.SectionID]; ok {
			return r
		}
		return staleRank
	}

	ordered := make([]*domain.Link, len(links))
	copy(ordered, links)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if ra, rb := containerRank(a), containerRank(b); ra != rb {
			return ra < rb
		}
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return ordered
}

// Signature builds a deterministic string over the whole layout. Two
// layouts with identical section and link arrangements produce the
// same signature regardless of input order or object identity; any
// change to a sortOrder, a container assignment, or the entity sets
// changes it. Used as an equality check only, never persisted.
func Signature(links []*domain.Link, sections []*domain.Section) string {
	ordered := SortSections(sections)

	var b strings.Builder
	for i, section := range ordered {
		if i > 0 {
			b.WriteByte('|')
		}
		fmt.Fprintf(&b, "%s:%d", section.ID, section.SortOrder)
	}
	b.WriteString("__")
	for i, link := range SortLinksForLayout(links, ordered) {
		if i > 0 {
			b.WriteByte('|')
		}
		sectionPart := "unsectioned"
		if link.SectionID != nil {
			sectionPart = *link.SectionID
		}
		fmt.Fprintf(&b, "%s:%s:%d", link.ID, sectionPart, link.SortOrder)
	}
	return b.String()
}

// Renumber assigns a contiguous 0..n-1 sort order to the given links
// in their current slice order, mutating them in place. All structural
// mutations funnel their index math through here.
func Renumber(links []*domain.Link) {
	for i, link := range links {
		link.SortOrder = i
	}
}

// Placements maps an ordered list of link ids into placements under
// the given container, ranked by list index.
func Placements(sectionID *string, linkIDs []string) []domain.LinkPlacement {
	placements := make([]domain.LinkPlacement, len(linkIDs))
	for i, id := range linkIDs {
		placements[i] = domain.LinkPlacement{LinkID: id, SectionID: sectionID, SortOrder: i}
	}
	return placements
}

// BuildContainers groups links into per-container ordered lists. The
// returned order always starts with the unsectioned bucket, followed
// by the sections in canonical order; containers stay present even
// when empty. Links referencing unknown sections get their own
// trailing container so no link is ever dropped from the map.
func BuildContainers(links []*domain.Link, sections []*domain.Section) (map[ContainerID][]*domain.Link, []ContainerID) {
	ordered := SortSections(sections)

	containers := map[ContainerID][]*domain.Link{Unsectioned: {}}
	order := []ContainerID{Unsectioned}
	for _, section := range ordered {
		id := ContainerFor(&section.ID)
		containers[id] = []*domain.Link{}
		order = append(order, id)
	}

	for _, link := range SortLinksForLayout(links, ordered) {
		id := ContainerFor(link.SectionID)
		if _, ok := containers[id]; !ok {
			containers[id] = []*domain.Link{}
			order = append(order, id)
		}
		containers[id] = append(containers[id], link)
	}
	return containers, order
}

// SectionLinkOrder is the desired ordered link-id list of one section.
type SectionLinkOrder struct {
	SectionID string   `json:"section_id"`
	LinkIDs   []string `json:"link_ids"`
}

// ReorderPayload is the entire desired layout submitted to the reorder
// operation: every section in order, every link of the profile listed
// exactly once across the unsectioned bucket and the section lists.
type ReorderPayload struct {
	SectionOrderIDs    []string           `json:"section_order_ids"`
	UnsectionedLinkIDs []string           `json:"unsectioned_link_ids"`
	SectionLinkOrders  []SectionLinkOrder `json:"section_link_orders"`
}

// PayloadFromContainers flattens a container map into a reorder
// payload, using the canonical section order for both the section
// ranking and the per-section lists.
func PayloadFromContainers(containers map[ContainerID][]*domain.Link, sections []*domain.Section) ReorderPayload {
	ordered := SortSections(sections)

	payload := ReorderPayload{
		SectionOrderIDs:    make([]string, 0, len(ordered)),
		UnsectionedLinkIDs: linkIDs(containers[Unsectioned]),
		SectionLinkOrders:  make([]SectionLinkOrder, 0, len(ordered)),
	}
	for _, section := range ordered {
		payload.SectionOrderIDs = append(payload.SectionOrderIDs, section.ID)
		payload.SectionLinkOrders = append(payload.SectionLinkOrders, SectionLinkOrder{
			SectionID: section.ID,
			LinkIDs:   linkIDs(containers[ContainerFor(&section.ID)]),
		})
	}
	return payload
}

func linkIDs(links []*domain.Link) []string {
	ids := make([]string, len(links))
	for i, link := range links {
		ids[i] = link.ID
	}
	return ids
}
