package postgres

import (
	"Linkfolio-Backend/internal/database"
	"Linkfolio-Backend/internal/domain"
	"Linkfolio-Backend/internal/layout"
	"Linkfolio-Backend/internal/repository"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestStorage runs the real GORM storage against an in-memory
// SQLite database so transaction behavior is exercised for real.
func setupTestStorage(t *testing.T) *PostgresStorage {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps every session on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db, zap.NewNop()))
	return New(db, zap.NewNop())
}

func strp(s string) *string { return &s }

func createTestProfile(t *testing.T, store *PostgresStorage) *domain.Profile {
	t.Helper()
	ctx := context.Background()
	user, err := store.CreateUser(ctx, "tester@example.com", "hash")
	require.NoError(t, err)
	profile := &domain.Profile{UserID: user.ID, Username: "tester"}
	require.NoError(t, store.CreateProfile(ctx, profile))
	return profile
}

func createTestSection(t *testing.T, store *PostgresStorage, profileID, id string, sortOrder int) {
	t.Helper()
	plan := &domain.LayoutPlan{InsertSection: &domain.Section{
		ID:        id,
		ProfileID: profileID,
		Title:     "Section " + id,
		SortOrder: sortOrder,
	}}
	require.NoError(t, store.ApplyLayoutPlan(context.Background(), profileID, plan))
}

func createTestLink(t *testing.T, store *PostgresStorage, profileID, id string, sectionID *string, sortOrder int) {
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

func TestUserLifecycle(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	user, err := store.CreateUser(ctx, "a@example.com", "hash")
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	assert.True(t, user.IsActive)

	_, err = store.CreateUser(ctx, "a@example.com", "other")
	require.ErrorIs(t, err, repository.ErrEmailTaken)

	byEmail, err := store.GetUserByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byEmail.IsActive = false
	require.NoError(t, store.UpdateUser(ctx, byEmail))
	_, err = store.GetUserByEmail(ctx, "a@example.com")
	require.ErrorIs(t, err, repository.ErrUserNotFound)
	_, err = store.GetUserByID(ctx, user.ID)
	require.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestProfileLifecycle(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()
	profile := createTestProfile(t, store)
	require.NotEmpty(t, profile.ID)

	other, err := store.CreateUser(ctx, "b@example.com", "hash")
	require.NoError(t, err)
	err = store.CreateProfile(ctx, &domain.Profile{UserID: other.ID, Username: "tester"})
	require.ErrorIs(t, err, repository.ErrUsernameTaken)

	byUsername, err := store.GetProfileByUsername(ctx, "tester")
	require.NoError(t, err)
	assert.Equal(t, profile.ID, byUsername.ID)

	_, err = store.GetProfileByUserID(ctx, 9999)
	require.ErrorIs(t, err, repository.ErrProfileNotFound)

	taken, err := store.UsernameExists(ctx, "tester")
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestApplyLayoutPlanCommits(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()
	profile := createTestProfile(t, store)
	createTestSection(t, store, profile.ID, "S1", 0)
	createTestSection(t, store, profile.ID, "S2", 1)
	createTestLink(t, store, profile.ID, "L1", strp("S1"), 0)
	createTestLink(t, store, profile.ID, "L2", strp("S1"), 1)

	err := store.ApplyLayoutPlan(ctx, profile.ID, &domain.LayoutPlan{
		SectionPositions: []domain.SectionPosition{
			{SectionID: "S2", SortOrder: 0},
			{SectionID: "S1", SortOrder: 1},
		},
		LinkPlacements: []domain.LinkPlacement{
			{LinkID: "L1", SectionID: strp("S2"), SortOrder: 0},
			{LinkID: "L2", SectionID: nil, SortOrder: 0},
		},
	})
	require.NoError(t, err)

	current, err := store.GetLayout(ctx, profile.ID, false)
	require.NoError(t, err)
	containers, _ := layout.BuildContainers(current.Links, current.Sections)

	require.Len(t, containers[layout.ContainerFor(strp("S2"))], 1)
	assert.Equal(t, "L1", containers[layout.ContainerFor(strp("S2"))][0].ID)
	require.Len(t, containers[layout.Unsectioned], 1)
	assert.Equal(t, "L2", containers[layout.Unsectioned][0].ID)
	assert.Empty(t, containers[layout.ContainerFor(strp("S1"))])

	sections := layout.SortSections(current.Sections)
	assert.Equal(t, "S2", sections[0].ID)
	assert.Equal(t, "S1", sections[1].ID)
}

func TestApplyLayoutPlanRollsBackOnUnknownRow(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()
	profile := createTestProfile(t, store)
	createTestSection(t, store, profile.ID, "S1", 0)
	createTestLink(t, store, profile.ID, "L1", strp("S1"), 0)

	before, err := store.GetLayout(ctx, profile.ID, false)
	require.NoError(t, err)
	beforeSig := layout.Signature(before.Links, before.Sections)

	// The valid first placement must not survive the failing second one.
	err = store.ApplyLayoutPlan(ctx, profile.ID, &domain.LayoutPlan{
		LinkPlacements: []domain.LinkPlacement{
			{LinkID: "L1", SectionID: nil, SortOrder: 0},
			{LinkID: "ghost", SectionID: nil, SortOrder: 1},
		},
	})
	require.ErrorIs(t, err, repository.ErrLinkNotFound)

	after, err := store.GetLayout(ctx, profile.ID, false)
	require.NoError(t, err)
	assert.Equal(t, beforeSig, layout.Signature(after.Links, after.Sections))
}

func TestApplyLayoutPlanScopedToProfile(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()
	profile := createTestProfile(t, store)
	createTestLink(t, store, profile.ID, "L1", nil, 0)

	other, err := store.CreateUser(ctx, "other@example.com", "hash")
	require.NoError(t, err)
	otherProfile := &domain.Profile{UserID: other.ID, Username: "other"}
	require.NoError(t, store.CreateProfile(ctx, otherProfile))

	// A plan cannot reach into another profile's rows.
	err = store.ApplyLayoutPlan(ctx, otherProfile.ID, &domain.LayoutPlan{
		LinkPlacements: []domain.LinkPlacement{{LinkID: "L1", SectionID: nil, SortOrder: 5}},
	})
	require.ErrorIs(t, err, repository.ErrLinkNotFound)

	link, err := store.GetLinkByID(ctx, profile.ID, "L1")
	require.NoError(t, err)
	assert.Equal(t, 0, link.SortOrder)
}

func TestApplyLayoutPlanDeletes(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()
	profile := createTestProfile(t, store)
	createTestSection(t, store, profile.ID, "S1", 0)
	createTestLink(t, store, profile.ID, "L1", strp("S1"), 0)

	err := store.ApplyLayoutPlan(ctx, profile.ID, &domain.LayoutPlan{
		LinkPlacements:  []domain.LinkPlacement{{LinkID: "L1", SectionID: nil, SortOrder: 0}},
		DeleteSectionID: strp("S1"),
	})
	require.NoError(t, err)

	_, err = store.GetSectionByID(ctx, profile.ID, "S1")
	require.ErrorIs(t, err, repository.ErrSectionNotFound)
	link, err := store.GetLinkByID(ctx, profile.ID, "L1")
	require.NoError(t, err)
	assert.Nil(t, link.SectionID)

	err = store.ApplyLayoutPlan(ctx, profile.ID, &domain.LayoutPlan{DeleteLinkID: strp("L1")})
	require.NoError(t, err)
	_, err = store.GetLinkByID(ctx, profile.ID, "L1")
	require.ErrorIs(t, err, repository.ErrLinkNotFound)
}

func TestNextLinkSortOrder(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()
	profile := createTestProfile(t, store)
	createTestSection(t, store, profile.ID, "S1", 0)

	next, err := store.NextLinkSortOrder(ctx, profile.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, next)

	createTestLink(t, store, profile.ID, "U1", nil, 0)
	createTestLink(t, store, profile.ID, "U2", nil, 1)
	createTestLink(t, store, profile.ID, "A", strp("S1"), 0)

	next, err = store.NextLinkSortOrder(ctx, profile.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, next)

	next, err = store.NextLinkSortOrder(ctx, profile.ID, strp("S1"))
	require.NoError(t, err)
	assert.Equal(t, 1, next)
}

func TestGetLayoutOnlyActive(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()
	profile := createTestProfile(t, store)
	createTestLink(t, store, profile.ID, "A", nil, 0)
	createTestLink(t, store, profile.ID, "B", nil, 1)

	link, err := store.GetLinkByID(ctx, profile.ID, "B")
	require.NoError(t, err)
	link.IsActive = false
	require.NoError(t, store.UpdateLink(ctx, link))

	all, err := store.GetLayout(ctx, profile.ID, false)
	require.NoError(t, err)
	assert.Len(t, all.Links, 2)

	active, err := store.GetLayout(ctx, profile.ID, true)
	require.NoError(t, err)
	require.Len(t, active.Links, 1)
	assert.Equal(t, "A", active.Links[0].ID)
}

func TestClickAnalytics(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()
	profile := createTestProfile(t, store)
	createTestLink(t, store, profile.ID, "L1", nil, 0)
	createTestLink(t, store, profile.ID, "L2", nil, 1)

	now := time.Now()
	click := func(linkID string, referrer *string, clickedAt time.Time) {
		require.NoError(t, store.CreateClickEvent(ctx, &domain.ClickEvent{
			LinkID:    linkID,
			ProfileID: profile.ID,
			Referrer:  referrer,
			ClickedAt: clickedAt,
		}))
	}
	click("L1", strp("https://www.instagram.com/someone"), now)
	click("L1", strp("https://instagram.com/other"), now.Add(-time.Hour))
	click("L1", nil, now.Add(-2*time.Hour))
	click("L2", strp("https://t.co/abc"), now.AddDate(0, 0, -10))

	total, err := store.CountClicks(ctx, profile.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)

	weekAgo := now.AddDate(0, 0, -7)
	recent, err := store.CountClicks(ctx, profile.ID, &weekAgo)
	require.NoError(t, err)
	assert.Equal(t, int64(3), recent)

	direct, err := store.CountDirectClicks(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), direct)

	unique, err := store.CountUniqueReferrers(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), unique)

	byLink, err := store.ClicksByLink(ctx, profile.ID)
	require.NoError(t, err)
	require.Len(t, byLink, 2)
	assert.Equal(t, "L1", byLink[0].LinkID)
	assert.Equal(t, int64(3), byLink[0].Count)
	assert.Equal(t, "Link L1", byLink[0].Title)

	// www. and bare hosts collapse into one source.
	referrers, err := store.TopReferrers(ctx, profile.ID, 5)
	require.NoError(t, err)
	require.NotEmpty(t, referrers)
	assert.Equal(t, "instagram.com", referrers[0].Source)
	assert.Equal(t, int64(2), referrers[0].Count)

	days, err := store.ClicksByDay(ctx, profile.ID, 30)
	require.NoError(t, err)
	require.NotEmpty(t, days)
	var bucketTotal int64
	for _, d := range days {
		bucketTotal += d.Count
	}
	assert.Equal(t, int64(4), bucketTotal)

	events, err := store.RecentClicks(ctx, profile.ID, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "L1", events[0].LinkID)
}
