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
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupIntegrationStorage starts a throwaway PostgreSQL container, so
// these tests need a working Docker daemon. Run with -short to skip.
func setupIntegrationStorage(t *testing.T) *PostgresStorage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx := context.Background()
	container, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		tcpostgres.WithDatabase("linkfolio_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Skipf("could not start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db, zap.NewNop()))
	return New(db, zap.NewNop())
}

func TestIntegrationLayoutReorder(t *testing.T) {
	store := setupIntegrationStorage(t)
	ctx := context.Background()

	user, err := store.CreateUser(ctx, "it@example.com", "hash")
	require.NoError(t, err)
	profile := &domain.Profile{UserID: user.ID, Username: "integration"}
	require.NoError(t, store.CreateProfile(ctx, profile))

	require.NoError(t, store.ApplyLayoutPlan(ctx, profile.ID, &domain.LayoutPlan{
		InsertSection: &domain.Section{ID: "S1", Title: "Socials", SortOrder: 0},
	}))
	require.NoError(t, store.CreateLink(ctx, &domain.Link{
		ID: "L1", ProfileID: profile.ID, Title: "One", URL: "https://example.com/1", IsActive: true, SortOrder: 0,
	}))
	require.NoError(t, store.CreateLink(ctx, &domain.Link{
		ID: "L2", ProfileID: profile.ID, SectionID: strp("S1"), Title: "Two", URL: "https://example.com/2", IsActive: true, SortOrder: 0,
	}))

	// Swap the two links between containers in one transaction.
	require.NoError(t, store.ApplyLayoutPlan(ctx, profile.ID, &domain.LayoutPlan{
		LinkPlacements: []domain.LinkPlacement{
			{LinkID: "L1", SectionID: strp("S1"), SortOrder: 0},
			{LinkID: "L2", SectionID: nil, SortOrder: 0},
		},
	}))

	current, err := store.GetLayout(ctx, profile.ID, false)
	require.NoError(t, err)
	containers, _ := layout.BuildContainers(current.Links, current.Sections)
	require.Len(t, containers[layout.Unsectioned], 1)
	assert.Equal(t, "L2", containers[layout.Unsectioned][0].ID)
	require.Len(t, containers[layout.ContainerFor(strp("S1"))], 1)
	assert.Equal(t, "L1", containers[layout.ContainerFor(strp("S1"))][0].ID)

	// A failing placement rolls the whole plan back.
	before := layout.Signature(current.Links, current.Sections)
	err = store.ApplyLayoutPlan(ctx, profile.ID, &domain.LayoutPlan{
		LinkPlacements: []domain.LinkPlacement{
			{LinkID: "L1", SectionID: nil, SortOrder: 0},
			{LinkID: "ghost", SectionID: nil, SortOrder: 1},
		},
	})
	require.ErrorIs(t, err, repository.ErrLinkNotFound)

	after, err := store.GetLayout(ctx, profile.ID, false)
	require.NoError(t, err)
	assert.Equal(t, before, layout.Signature(after.Links, after.Sections))
}
