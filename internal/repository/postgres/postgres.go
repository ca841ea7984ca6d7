package postgres

import (
	"Linkfolio-Backend/internal/domain"
	"Linkfolio-Backend/internal/repository"
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PostgresStorage implements the Storage interface on top of GORM.
type PostgresStorage struct {
	db  *gorm.DB
	log *zap.Logger
}

// New creates a new GORM-backed storage instance.
func New(db *gorm.DB, log *zap.Logger) *PostgresStorage {
	return &PostgresStorage{
		db:  db,
		log: log,
	}
}

// --- User Methods ---

// CreateUser creates a new account with an already-hashed password.
func (s *PostgresStorage) CreateUser(ctx context.Context, email, passwordHash string) (*domain.User, error) {
	var existing domain.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, repository.ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.log.Error("failed to check email existence", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	user := domain.User{
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     true,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		s.log.Error("failed to create user", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info("created new user", zap.Int64("user_id", user.ID))
	return &user, nil
}

// GetUserByEmail returns an active user by email.
func (s *PostgresStorage) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).Where("email = ? AND is_active = ?", email, true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrUserNotFound
	}
	if err != nil {
		s.log.Error("failed to get user by email", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetUserByID returns an active user by id.
func (s *PostgresStorage) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrUserNotFound
	}
	if err != nil {
		s.log.Error("failed to get user by id", zap.Int64("user_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// UpdateUser persists changed user fields.
func (s *PostgresStorage) UpdateUser(ctx context.Context, user *domain.User) error {
	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		s.log.Error("failed to update user", zap.Int64("user_id", user.ID), zap.Error(err))
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// --- Profile Methods ---

// CreateProfile creates the profile row for a user.
func (s *PostgresStorage) CreateProfile(ctx context.Context, profile *domain.Profile) error {
	taken, err := s.UsernameExists(ctx, profile.Username)
	if err != nil {
		return err
	}
	if taken {
		return repository.ErrUsernameTaken
	}

	if err := s.db.WithContext(ctx).Create(profile).Error; err != nil {
		s.log.Error("failed to create profile", zap.Int64("user_id", profile.UserID), zap.Error(err))
		return fmt.Errorf("failed to create profile: %w", err)
	}

	s.log.Info("created profile", zap.String("profile_id", profile.ID), zap.String("username", profile.Username))
	return nil
}

// GetProfileByUserID returns the profile owned by a user.
func (s *PostgresStorage) GetProfileByUserID(ctx context.Context, userID int64) (*domain.Profile, error) {
	var profile domain.Profile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrProfileNotFound
	}
	if err != nil {
		s.log.Error("failed to get profile by user id", zap.Int64("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

// GetProfileByUsername returns a profile by its public username.
func (s *PostgresStorage) GetProfileByUsername(ctx context.Context, username string) (*domain.Profile, error) {
	var profile domain.Profile
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrProfileNotFound
	}
	if err != nil {
		s.log.Error("failed to get profile by username", zap.String("username", username), zap.Error(err))
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

// UpdateProfile persists changed profile fields.
func (s *PostgresStorage) UpdateProfile(ctx context.Context, profile *domain.Profile) error {
	if err := s.db.WithContext(ctx).Save(profile).Error; err != nil {
		s.log.Error("failed to update profile", zap.String("profile_id", profile.ID), zap.Error(err))
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

// UsernameExists checks whether a username is already taken.
func (s *PostgresStorage) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.Profile{}).Where("username = ?", username).Count(&count).Error
	if err != nil {
		s.log.Error("failed to check username existence", zap.String("username", username), zap.Error(err))
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return count > 0, nil
}

// --- Layout Methods ---

// GetLayout returns all sections and links of a profile. Storage
// applies no ordering; callers sort through the layout package.
func (s *PostgresStorage) GetLayout(ctx context.Context, profileID string, onlyActive bool) (*domain.Layout, error) {
	var sections []*domain.Section
	if err := s.db.WithContext(ctx).Where("profile_id = ?", profileID).Find(&sections).Error; err != nil {
		s.log.Error("failed to load sections", zap.String("profile_id", profileID), zap.Error(err))
		return nil, fmt.Errorf("failed to load sections: %w", err)
	}

	query := s.db.WithContext(ctx).Where("profile_id = ?", profileID)
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	var links []*domain.Link
	if err := query.Find(&links).Error; err != nil {
		s.log.Error("failed to load links", zap.String("profile_id", profileID), zap.Error(err))
		return nil, fmt.Errorf("failed to load links: %w", err)
	}

	return &domain.Layout{Sections: sections, Links: links}, nil
}

// ApplyLayoutPlan commits a layout plan inside a single transaction.
// A reorder touches one row per link and section; either every update
// lands or none does.
func (s *PostgresStorage) ApplyLayoutPlan(ctx context.Context, profileID string, plan *domain.LayoutPlan) error {
	if plan == nil || plan.IsEmpty() {
		return nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if plan.InsertSection != nil {
			plan.InsertSection.ProfileID = profileID
			if err := tx.Create(plan.InsertSection).Error; err != nil {
				return fmt.Errorf("failed to insert section: %w", err)
			}
		}

		for _, pos := range plan.SectionPositions {
			result := tx.Model(&domain.Section{}).
				Where("id = ? AND profile_id = ?", pos.SectionID, profileID).
				Update("sort_order", pos.SortOrder)
			if result.Error != nil {
				return fmt.Errorf("failed to position section %s: %w", pos.SectionID, result.Error)
			}
			if result.RowsAffected == 0 {
				return repository.ErrSectionNotFound
			}
		}

		for _, placement := range plan.LinkPlacements {
			result := tx.Model(&domain.Link{}).
				Where("id = ? AND profile_id = ?", placement.LinkID, profileID).
				Updates(map[string]interface{}{
					"section_id": placement.SectionID,
					"sort_order": placement.SortOrder,
				})
			if result.Error != nil {
				return fmt.Errorf("failed to place link %s: %w", placement.LinkID, result.Error)
			}
			if result.RowsAffected == 0 {
				return repository.ErrLinkNotFound
			}
		}

		if plan.DeleteLinkID != nil {
			result := tx.Where("id = ? AND profile_id = ?", *plan.DeleteLinkID, profileID).
				Delete(&domain.Link{})
			if result.Error != nil {
				return fmt.Errorf("failed to delete link: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return repository.ErrLinkNotFound
			}
		}

		if plan.DeleteSectionID != nil {
			result := tx.Where("id = ? AND profile_id = ?", *plan.DeleteSectionID, profileID).
				Delete(&domain.Section{})
			if result.Error != nil {
				return fmt.Errorf("failed to delete section: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return repository.ErrSectionNotFound
			}
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) || errors.Is(err, repository.ErrSectionNotFound) {
			return err
		}
		s.log.Error("failed to apply layout plan", zap.String("profile_id", profileID), zap.Error(err))
		return fmt.Errorf("failed to apply layout plan: %w", err)
	}
	return nil
}

// --- Link Methods ---

// CreateLink saves a new link row.
func (s *PostgresStorage) CreateLink(ctx context.Context, link *domain.Link) error {
	if err := s.db.WithContext(ctx).Create(link).Error; err != nil {
		s.log.Error("failed to create link", zap.String("profile_id", link.ProfileID), zap.Error(err))
		return fmt.Errorf("failed to create link: %w", err)
	}
	s.log.Info("created link", zap.String("link_id", link.ID), zap.String("profile_id", link.ProfileID))
	return nil
}

// GetLinkByID returns a link owned by the given profile.
func (s *PostgresStorage) GetLinkByID(ctx context.Context, profileID, linkID string) (*domain.Link, error) {
	var link domain.Link
	err := s.db.WithContext(ctx).Where("id = ? AND profile_id = ?", linkID, profileID).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrLinkNotFound
	}
	if err != nil {
		s.log.Error("failed to get link", zap.String("link_id", linkID), zap.Error(err))
		return nil, fmt.Errorf("failed to get link: %w", err)
	}
	return &link, nil
}

// UpdateLink persists changed link fields.
func (s *PostgresStorage) UpdateLink(ctx context.Context, link *domain.Link) error {
	// Save would skip section_id when it transitions to nil, so the
	// container assignment is written explicitly.
	err := s.db.WithContext(ctx).Model(&domain.Link{}).
		Where("id = ? AND profile_id = ?", link.ID, link.ProfileID).
		Updates(map[string]interface{}{
			"section_id":    link.SectionID,
			"title":         link.Title,
			"url":           link.URL,
			"description":   link.Description,
			"icon_key":      link.IconKey,
			"icon_bg_color": link.IconBgColor,
			"is_active":     link.IsActive,
			"sort_order":    link.SortOrder,
		}).Error
	if err != nil {
		s.log.Error("failed to update link", zap.String("link_id", link.ID), zap.Error(err))
		return fmt.Errorf("failed to update link: %w", err)
	}
	return nil
}

// NextLinkSortOrder returns max(sortOrder)+1 within a container, or 0
// for an empty container.
func (s *PostgresStorage) NextLinkSortOrder(ctx context.Context, profileID string, sectionID *string) (int, error) {
	query := s.db.WithContext(ctx).Model(&domain.Link{}).Where("profile_id = ?", profileID)
	if sectionID == nil {
		query = query.Where("section_id IS NULL")
	} else {
		query = query.Where("section_id = ?", *sectionID)
	}

	var next int
	err := query.Select("COALESCE(MAX(sort_order) + 1, 0)").Scan(&next).Error
	if err != nil {
		s.log.Error("failed to compute next sort order", zap.String("profile_id", profileID), zap.Error(err))
		return 0, fmt.Errorf("failed to compute next sort order: %w", err)
	}
	return next, nil
}

// --- Section Methods ---

// GetSectionByID returns a section owned by the given profile.
func (s *PostgresStorage) GetSectionByID(ctx context.Context, profileID, sectionID string) (*domain.Section, error) {
	var section domain.Section
	err := s.db.WithContext(ctx).Where("id = ? AND profile_id = ?", sectionID, profileID).First(&section).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrSectionNotFound
	}
	if err != nil {
		s.log.Error("failed to get section", zap.String("section_id", sectionID), zap.Error(err))
		return nil, fmt.Errorf("failed to get section: %w", err)
	}
	return &section, nil
}

// UpdateSection persists changed section fields.
func (s *PostgresStorage) UpdateSection(ctx context.Context, section *domain.Section) error {
	if err := s.db.WithContext(ctx).Save(section).Error; err != nil {
		s.log.Error("failed to update section", zap.String("section_id", section.ID), zap.Error(err))
		return fmt.Errorf("failed to update section: %w", err)
	}
	return nil
}

// --- Click Analytics Methods ---

// CreateClickEvent saves a click event row.
func (s *PostgresStorage) CreateClickEvent(ctx context.Context, event *domain.ClickEvent) error {
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		s.log.Error("failed to create click event", zap.String("link_id", event.LinkID), zap.Error(err))
		return fmt.Errorf("failed to create click event: %w", err)
	}
	return nil
}

// CountClicks counts all clicks of a profile, optionally since a cutoff.
func (s *PostgresStorage) CountClicks(ctx context.Context, profileID string, since *time.Time) (int64, error) {
	query := s.db.WithContext(ctx).Model(&domain.ClickEvent{}).Where("profile_id = ?", profileID)
	if since != nil {
		query = query.Where("clicked_at >= ?", *since)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		s.log.Error("failed to count clicks", zap.String("profile_id", profileID), zap.Error(err))
		return 0, fmt.Errorf("failed to count clicks: %w", err)
	}
	return count, nil
}

// CountDirectClicks counts clicks arriving with no referrer.
func (s *PostgresStorage) CountDirectClicks(ctx context.Context, profileID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.ClickEvent{}).
		Where("profile_id = ? AND (referrer IS NULL OR TRIM(referrer) = '')", profileID).
		Count(&count).Error
	if err != nil {
		s.log.Error("failed to count direct clicks", zap.String("profile_id", profileID), zap.Error(err))
		return 0, fmt.Errorf("failed to count direct clicks: %w", err)
	}
	return count, nil
}

// CountUniqueReferrers counts distinct non-empty referrer values.
func (s *PostgresStorage) CountUniqueReferrers(ctx context.Context, profileID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.ClickEvent{}).
		Where("profile_id = ?", profileID).
		Select("COUNT(DISTINCT NULLIF(referrer, ''))").
		Scan(&count).Error
	if err != nil {
		s.log.Error("failed to count unique referrers", zap.String("profile_id", profileID), zap.Error(err))
		return 0, fmt.Errorf("failed to count unique referrers: %w", err)
	}
	return count, nil
}

// ClicksByLink returns per-link click totals, most clicked first.
func (s *PostgresStorage) ClicksByLink(ctx context.Context, profileID string) ([]repository.LinkClickCount, error) {
	var results []repository.LinkClickCount
	err := s.db.WithContext(ctx).Model(&domain.ClickEvent{}).
		Select("click_events.link_id AS link_id, links.title AS title, links.url AS url, COUNT(*) AS count").
		Joins("LEFT JOIN links ON links.id = click_events.link_id").
		Where("click_events.profile_id = ?", profileID).
		Group("click_events.link_id, links.title, links.url").
		Order("count DESC").
		Find(&results).Error
	if err != nil {
		s.log.Error("failed to aggregate clicks by link", zap.String("profile_id", profileID), zap.Error(err))
		return nil, fmt.Errorf("failed to aggregate clicks by link: %w", err)
	}
	return results, nil
}

// TopReferrers returns click totals grouped by referrer host. The raw
// referrer values are grouped in SQL and reduced to bare hosts in Go
// to stay portable across dialects.
func (s *PostgresStorage) TopReferrers(ctx context.Context, profileID string, limit int) ([]repository.ReferrerCount, error) {
	var raw []struct {
		Referrer *string
		Count    int64
	}
	err := s.db.WithContext(ctx).Model(&domain.ClickEvent{}).
		Select("referrer, COUNT(*) AS count").
		Where("profile_id = ?", profileID).
		Group("referrer").
		Find(&raw).Error
	if err != nil {
		s.log.Error("failed to aggregate referrers", zap.String("profile_id", profileID), zap.Error(err))
		return nil, fmt.Errorf("failed to aggregate referrers: %w", err)
	}

	totals := make(map[string]int64)
	for _, row := range raw {
		totals[referrerSource(row.Referrer)] += row.Count
	}

	sources := make([]repository.ReferrerCount, 0, len(totals))
	for source, count := range totals {
		sources = append(sources, repository.ReferrerCount{Source: source, Count: count})
	}
	sort.Slice(sources, func(i, j int) bool {
		if sources[i].Count != sources[j].Count {
			return sources[i].Count > sources[j].Count
		}
		return sources[i].Source < sources[j].Source
	})
	if limit > 0 && len(sources) > limit {
		sources = sources[:limit]
	}
	return sources, nil
}

// ClicksByDay returns daily click totals for the trailing window,
// bucketed in Go for dialect portability.
func (s *PostgresStorage) ClicksByDay(ctx context.Context, profileID string, days int) ([]repository.DayCount, error) {
	cutoff := time.Now().AddDate(0, 0, -(days - 1)).Truncate(24 * time.Hour)

	var stamps []time.Time
	err := s.db.WithContext(ctx).Model(&domain.ClickEvent{}).
		Where("profile_id = ? AND clicked_at >= ?", profileID, cutoff).
		Pluck("clicked_at", &stamps).Error
	if err != nil {
		s.log.Error("failed to load clicks for day buckets", zap.String("profile_id", profileID), zap.Error(err))
		return nil, fmt.Errorf("failed to load clicks by day: %w", err)
	}

	totals := make(map[string]int64)
	for _, ts := range stamps {
		totals[ts.Format("2006-01-02")]++
	}

	buckets := make([]repository.DayCount, 0, len(totals))
	for day, count := range totals {
		buckets = append(buckets, repository.DayCount{Day: day, Count: count})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Day < buckets[j].Day })
	return buckets, nil
}

// RecentClicks returns the newest click events, newest first.
func (s *PostgresStorage) RecentClicks(ctx context.Context, profileID string, limit int) ([]*domain.ClickEvent, error) {
	var events []*domain.ClickEvent
	err := s.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("clicked_at DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		s.log.Error("failed to load recent clicks", zap.String("profile_id", profileID), zap.Error(err))
		return nil, fmt.Errorf("failed to load recent clicks: %w", err)
	}
	return events, nil
}

// referrerSource reduces a raw referrer value to a comparable source
// host, "Direct" when empty or unparseable without a host.
func referrerSource(referrer *string) string {
	if referrer == nil {
		return "Direct"
	}
	value := strings.TrimSpace(*referrer)
	if value == "" {
		return "Direct"
	}
	parsed, err := url.Parse(value)
	if err != nil || parsed.Host == "" {
		return value
	}
	return strings.TrimPrefix(parsed.Host, "www.")
}
