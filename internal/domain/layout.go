package domain

// Layout is the derived pair of all sections and links of one profile.
// It is never persisted as a whole; ordering is applied by the layout
// package, not by storage.
type Layout struct {
	Sections []*Section
	Links    []*Link
}

// SectionPosition pins a section to a final sort order.
type SectionPosition struct {
	SectionID string
	SortOrder int
}

// LinkPlacement pins a link to a final container and sort order.
// A nil SectionID places the link in the unsectioned bucket.
type LinkPlacement struct {
	LinkID    string
	SectionID *string
	SortOrder int
}

// LayoutPlan is an atomic batch of layout row updates. The store
// applies the whole plan inside a single transaction: section insert
// first, then section positions, then link placements, then deletions.
// A half-applied plan is never observable outside the transaction.
type LayoutPlan struct {
	InsertSection    *Section
	SectionPositions []SectionPosition
	LinkPlacements   []LinkPlacement
	DeleteLinkID     *string
	DeleteSectionID  *string
}

// IsEmpty reports whether the plan carries no work at all.
func (p *LayoutPlan) IsEmpty() bool {
	return p.InsertSection == nil &&
		len(p.SectionPositions) == 0 &&
		len(p.LinkPlacements) == 0 &&
		p.DeleteLinkID == nil &&
		p.DeleteSectionID == nil
}
