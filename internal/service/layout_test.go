package service

import (
	"Linkfolio-Backend/internal/domain"
	"Linkfolio-Backend/internal/layout"
	"Linkfolio-Backend/internal/repository"
	"Linkfolio-Backend/internal/repository/memory"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newLayoutFixture(t *testing.T) (*LayoutService, *memory.MemStorage, string) {
	t.Helper()
	store := memory.New()
	profile := &domain.Profile{UserID: 1, Username: "tester"}
	require.NoError(t, store.CreateProfile(context.Background(), profile))
	return NewLayoutService(store, zap.NewNop()), store, profile.ID
}

func addSection(t *testing.T, store *memory.MemStorage, profileID, id string, sortOrder int) {
	t.Helper()
	plan := &domain.LayoutPlan{InsertSection: &domain.Section{
		ID:        id,
		ProfileID: profileID,
		Title:     "Section " + id,
		SortOrder: sortOrder,
		CreatedAt: time.Now(),
	}}
	require.NoError(t, store.ApplyLayoutPlan(context.Background(), profileID, plan))
}

func addLink(t *testing.T, store *memory.MemStorage, profileID, id string, sectionID *string, sortOrder int) {
	t.Helper()
	require.NoError(t, store.CreateLink(context.Background(), &domain.Link{
		ID:        id,
		ProfileID: profileID,
		SectionID: sectionID,
		Title:     "Link " + id,
		URL:       "https://example.com/" + id,
		IsActive:  true,
		SortOrder: sortOrder,
	}))
}

// currentContainers reads the persisted layout grouped per container.
func currentContainers(t *testing.T, store *memory.MemStorage, profileID string) (map[layout.ContainerID][]*domain.Link, []*domain.Section) {
	t.Helper()
	current, err := store.GetLayout(context.Background(), profileID, false)
	require.NoError(t, err)
	containers, _ := layout.BuildContainers(current.Links, current.Sections)
	return containers, layout.SortSections(current.Sections)
}

func currentSignature(t *testing.T, store *memory.MemStorage, profileID string) string {
	t.Helper()
	current, err := store.GetLayout(context.Background(), profileID, false)
	require.NoError(t, err)
	return layout.Signature(current.Links, current.Sections)
}

func strp(s string) *string { return &s }

// seedScenario builds the reference layout: sections S1, S2 and links
// L1 (unsectioned), L2, L3 (S1), L4 (S2).
func seedScenario(t *testing.T, store *memory.MemStorage, profileID string) {
	t.Helper()
	addSection(t, store, profileID, "S1", 0)
	addSection(t, store, profileID, "S2", 1)
	addLink(t, store, profileID, "L1", nil, 0)
	addLink(t, store, profileID, "L2", strp("S1"), 0)
	addLink(t, store, profileID, "L3", strp("S1"), 1)
	addLink(t, store, profileID, "L4", strp("S2"), 0)
}

func TestReorderConcreteScenario(t *testing.T) {
	svc, store, profileID := newLayoutFixture(t)
	seedScenario(t, store, profileID)

	err := svc.Reorder(context.Background(), profileID, layout.ReorderPayload{
		SectionOrderIDs:    []string{"S2", "S1"},
		UnsectionedLinkIDs: []string{"L1"},
		SectionLinkOrders: []layout.SectionLinkOrder{
			{SectionID: "S1", LinkIDs: []string{"L3", "L2"}},
			{SectionID: "S2", LinkIDs: []string{"L4"}},
		},
	})
	require.NoError(t, err)

	containers, sections := currentContainers(t, store, profileID)
	require.Len(t, sections, 2)
	assert.Equal(t, "S2", sections[0].ID)
	assert.Equal(t, 0, sections[0].SortOrder)
	assert.Equal(t, "S1", sections[1].ID)
	assert.Equal(t, 1, sections[1].SortOrder)

	s1 := containers[layout.ContainerFor(strp("S1"))]
	require.Len(t, s1, 2)
	assert.Equal(t, "L3", s1[0].ID)
	assert.Equal(t, 0, s1[0].SortOrder)
	assert.Equal(t, "L2", s1[1].ID)
	assert.Equal(t, 1, s1[1].SortOrder)

	s2 := containers[layout.ContainerFor(strp("S2"))]
	require.Len(t, s2, 1)
	assert.Equal(t, "L4", s2[0].ID)
	assert.Equal(t, 0, s2[0].SortOrder)

	unsectioned := containers[layout.Unsectioned]
	require.Len(t, unsectioned, 1)
	assert.Equal(t, "L1", unsectioned[0].ID)
	assert.Equal(t, 0, unsectioned[0].SortOrder)
}

func TestReorderPreservesLinkIDSet(t *testing.T) {
	svc, store, profileID := newLayoutFixture(t)
	seedScenario(t, store, profileID)

	// Move every link somewhere else; the id set must survive intact.
	err := svc.Reorder(context.Background(), profileID, layout.ReorderPayload{
		SectionOrderIDs:    []string{"S1", "S2"},
		UnsectionedLinkIDs: []string{"L4", "L3"},
		SectionLinkOrders: []layout.SectionLinkOrder{
			{SectionID: "S1", LinkIDs: []string{}},
			{SectionID: "S2", LinkIDs: []string{"L1", "L2"}},
		},
	})
	require.NoError(t, err)

	current, err := store.GetLayout(context.Background(), profileID, false)
	require.NoError(t, err)
	require.Len(t, current.Links, 4)

	ids := make(map[string]*domain.Link, 4)
	for _, l := range current.Links {
		ids[l.ID] = l
	}
	for _, id := range []string{"L1", "L2", "L3", "L4"} {
		require.Contains(t, ids, id)
		// Only placement fields may change.
		assert.Equal(t, "Link "+id, ids[id].Title)
		assert.Equal(t, "https://example.com/"+id, ids[id].URL)
	}
}

func TestReorderRejectsTampering(t *testing.T) {
	tests := []struct {
		name    string
		payload layout.ReorderPayload
	}{
		{
			name: "link missing from all lists",
			payload: layout.ReorderPayload{
				SectionOrderIDs:    []string{"S1", "S2"},
				UnsectionedLinkIDs: []string{"L1"},
				SectionLinkOrders: []layout.SectionLinkOrder{
					{SectionID: "S1", LinkIDs: []string{"L2", "L3"}},
					{SectionID: "S2", LinkIDs: []string{}},
				},
			},
		},
		{
			name: "link duplicated across containers",
			payload: layout.ReorderPayload{
				SectionOrderIDs:    []string{"S1", "S2"},
				UnsectionedLinkIDs: []string{"L1", "L4"},
				SectionLinkOrders: []layout.SectionLinkOrder{
					{SectionID: "S1", LinkIDs: []string{"L2", "L3"}},
					{SectionID: "S2", LinkIDs: []string{"L4"}},
				},
			},
		},
		{
			name: "unknown section in section order",
			payload: layout.ReorderPayload{
				SectionOrderIDs:    []string{"S1", "ghost"},
				UnsectionedLinkIDs: []string{"L1"},
				SectionLinkOrders: []layout.SectionLinkOrder{
					{SectionID: "S1", LinkIDs: []string{"L2", "L3"}},
					{SectionID: "S2", LinkIDs: []string{"L4"}},
				},
			},
		},
		{
			name: "section missing from section order",
			payload: layout.ReorderPayload{
				SectionOrderIDs:    []string{"S1"},
				UnsectionedLinkIDs: []string{"L1"},
				SectionLinkOrders: []layout.SectionLinkOrder{
					{SectionID: "S1", LinkIDs: []string{"L2", "L3"}},
					{SectionID: "S2", LinkIDs: []string{"L4"}},
				},
			},
		},
		{
			name: "unknown link id",
			payload: layout.ReorderPayload{
				SectionOrderIDs:    []string{"S1", "S2"},
				UnsectionedLinkIDs: []string{"L1", "ghost"},
				SectionLinkOrders: []layout.SectionLinkOrder{
					{SectionID: "S1", LinkIDs: []string{"L2", "L3"}},
					{SectionID: "S2", LinkIDs: []string{"L4"}},
				},
			},
		},
		{
			name: "section without a link order entry",
			payload: layout.ReorderPayload{
				SectionOrderIDs:    []string{"S1", "S2"},
				UnsectionedLinkIDs: []string{"L1", "L4"},
				SectionLinkOrders: []layout.SectionLinkOrder{
					{SectionID: "S1", LinkIDs: []string{"L2", "L3"}},
				},
			},
		},
		{
			name: "duplicate link order for one section",
			payload: layout.ReorderPayload{
				SectionOrderIDs:    []string{"S1", "S2"},
				UnsectionedLinkIDs: []string{"L1", "L4"},
				SectionLinkOrders: []layout.SectionLinkOrder{
					{SectionID: "S1", LinkIDs: []string{"L2", "L3"}},
					{SectionID: "S1", LinkIDs: []string{}},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, profileID := newLayoutFixture(t)
			seedScenario(t, store, profileID)
			before := currentSignature(t, store, profileID)

			err := svc.Reorder(context.Background(), profileID, tt.payload)
			require.ErrorIs(t, err, ErrInvalidLayout)

			// A rejected reorder must not leave a trace.
			assert.Equal(t, before, currentSignature(t, store, profileID))
		})
	}
}

func TestReorderIdempotent(t *testing.T) {
	svc, store, profileID := newLayoutFixture(t)
	seedScenario(t, store, profileID)

	payload := layout.ReorderPayload{
		SectionOrderIDs:    []string{"S2", "S1"},
		UnsectionedLinkIDs: []string{"L1"},
		SectionLinkOrders: []layout.SectionLinkOrder{
			{SectionID: "S1", LinkIDs: []string{"L3", "L2"}},
			{SectionID: "S2", LinkIDs: []string{"L4"}},
		},
	}

	require.NoError(t, svc.Reorder(context.Background(), profileID, payload))
	first := currentSignature(t, store, profileID)

	require.NoError(t, svc.Reorder(context.Background(), profileID, payload))
	assert.Equal(t, first, currentSignature(t, store, profileID))
}

func TestCreateSectionAtSplit(t *testing.T) {
	svc, store, profileID := newLayoutFixture(t)
	addSection(t, store, profileID, "src", 0)
	addSection(t, store, profileID, "after", 1)
	addLink(t, store, profileID, "A", strp("src"), 0)
	addLink(t, store, profileID, "B", strp("src"), 1)
	addLink(t, store, profileID, "C", strp("src"), 2)
	addLink(t, store, profileID, "D", strp("src"), 3)

	section, err := svc.CreateSectionAtSplit(context.Background(), profileID, "New Section", strp("src"), 2)
	require.NoError(t, err)
	require.NotEmpty(t, section.ID)
	assert.Equal(t, "New Section", section.Title)
	assert.Equal(t, 1, section.SortOrder)

	containers, sections := currentContainers(t, store, profileID)
	require.Len(t, sections, 3)
	assert.Equal(t, "src", sections[0].ID)
	assert.Equal(t, 0, sections[0].SortOrder)
	assert.Equal(t, section.ID, sections[1].ID)
	// The section after the insertion point shifts up by one.
	assert.Equal(t, "after", sections[2].ID)
	assert.Equal(t, 2, sections[2].SortOrder)

	src := containers[layout.ContainerFor(strp("src"))]
	require.Len(t, src, 2)
	assert.Equal(t, "A", src[0].ID)
	assert.Equal(t, 0, src[0].SortOrder)
	assert.Equal(t, "B", src[1].ID)
	assert.Equal(t, 1, src[1].SortOrder)

	moved := containers[layout.ContainerFor(&section.ID)]
	require.Len(t, moved, 2)
	assert.Equal(t, "C", moved[0].ID)
	assert.Equal(t, 0, moved[0].SortOrder)
	assert.Equal(t, "D", moved[1].ID)
	assert.Equal(t, 1, moved[1].SortOrder)
}

func TestCreateSectionAtSplitFromUnsectioned(t *testing.T) {
	svc, store, profileID := newLayoutFixture(t)
	addSection(t, store, profileID, "S1", 0)
	addLink(t, store, profileID, "U1", nil, 0)
	addLink(t, store, profileID, "U2", nil, 1)

	section, err := svc.CreateSectionAtSplit(context.Background(), profileID, "From Bucket", nil, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, section.SortOrder)

	containers, sections := currentContainers(t, store, profileID)
	require.Len(t, sections, 2)
	assert.Equal(t, section.ID, sections[0].ID)
	assert.Equal(t, "S1", sections[1].ID)
	assert.Equal(t, 1, sections[1].SortOrder)

	require.Len(t, containers[layout.Unsectioned], 1)
	assert.Equal(t, "U1", containers[layout.Unsectioned][0].ID)
	moved := containers[layout.ContainerFor(&section.ID)]
	require.Len(t, moved, 1)
	assert.Equal(t, "U2", moved[0].ID)
}

func TestCreateSectionAtSplitAtEndCreatesEmptySection(t *testing.T) {
	svc, store, profileID := newLayoutFixture(t)
	addLink(t, store, profileID, "U1", nil, 0)

	section, err := svc.CreateSectionAtSplit(context.Background(), profileID, "Empty", nil, 1)
	require.NoError(t, err)

	containers, _ := currentContainers(t, store, profileID)
	assert.Len(t, containers[layout.Unsectioned], 1)
	assert.Empty(t, containers[layout.ContainerFor(&section.ID)])
}

func TestCreateSectionAtSplitRejectsBadInput(t *testing.T) {
	svc, store, profileID := newLayoutFixture(t)
	addSection(t, store, profileID, "src", 0)
	addLink(t, store, profileID, "A", strp("src"), 0)

	ctx := context.Background()

	_, err := svc.CreateSectionAtSplit(ctx, profileID, "T", strp("src"), 2)
	require.ErrorIs(t, err, ErrInvalidLayout)

	_, err = svc.CreateSectionAtSplit(ctx, profileID, "T", strp("src"), -1)
	require.ErrorIs(t, err, ErrInvalidLayout)

	_, err = svc.CreateSectionAtSplit(ctx, profileID, "   ", strp("src"), 0)
	require.ErrorIs(t, err, ErrInvalidLayout)

	_, err = svc.CreateSectionAtSplit(ctx, profileID, "T", strp("ghost"), 0)
	require.ErrorIs(t, err, repository.ErrSectionNotFound)
}

func TestDeleteSectionRehomesLinks(t *testing.T) {
	svc, store, profileID := newLayoutFixture(t)
	addSection(t, store, profileID, "doomed", 0)
	addSection(t, store, profileID, "later", 1)
	addLink(t, store, profileID, "P", nil, 0)
	addLink(t, store, profileID, "Q", nil, 1)
	addLink(t, store, profileID, "X", strp("doomed"), 0)
	addLink(t, store, profileID, "Y", strp("doomed"), 1)

	require.NoError(t, svc.DeleteSection(context.Background(), profileID, "doomed"))

	containers, sections := currentContainers(t, store, profileID)
	require.Len(t, sections, 1)
	assert.Equal(t, "later", sections[0].ID)
	assert.Equal(t, 0, sections[0].SortOrder)

	unsectioned := containers[layout.Unsectioned]
	require.Len(t, unsectioned, 4)
	for i, want := range []string{"P", "Q", "X", "Y"} {
		assert.Equal(t, want, unsectioned[i].ID)
		assert.Equal(t, i, unsectioned[i].SortOrder)
		assert.Nil(t, unsectioned[i].SectionID)
	}
}

func TestDeleteSectionUnknown(t *testing.T) {
	svc, _, profileID := newLayoutFixture(t)
	err := svc.DeleteSection(context.Background(), profileID, "ghost")
	require.ErrorIs(t, err, repository.ErrSectionNotFound)
}

func TestRenameSection(t *testing.T) {
	svc, store, profileID := newLayoutFixture(t)
	addSection(t, store, profileID, "S1", 0)
	addLink(t, store, profileID, "L1", strp("S1"), 0)
	before := currentSignature(t, store, profileID)

	section, err := svc.RenameSection(context.Background(), profileID, "S1", "  Renamed  ")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", section.Title)

	// Only the title changes, never the ordering.
	assert.Equal(t, before, currentSignature(t, store, profileID))

	_, err = svc.RenameSection(context.Background(), profileID, "S1", "")
	require.ErrorIs(t, err, ErrInvalidLayout)

	_, err = svc.RenameSection(context.Background(), profileID, "ghost", "Title")
	require.ErrorIs(t, err, repository.ErrSectionNotFound)
}

func TestListReturnsCanonicalOrder(t *testing.T) {
	svc, store, profileID := newLayoutFixture(t)
	seedScenario(t, store, profileID)

	current, err := svc.List(context.Background(), profileID)
	require.NoError(t, err)

	require.Len(t, current.Sections, 2)
	assert.Equal(t, "S1", current.Sections[0].ID)
	assert.Equal(t, "S2", current.Sections[1].ID)

	ids := make([]string, len(current.Links))
	for i, l := range current.Links {
		ids[i] = l.ID
	}
	assert.Equal(t, []string{"L1", "L2", "L3", "L4"}, ids)
}
