package database

import (
	"Linkfolio-Backend/internal/domain"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const seedPassword = "SeedPassword123!"

var seedIconBgColors = []string{
	"#F5FF7B", "#8AE1E7", "#F2B7E2", "#FF8A4C", "#BFE3FF", "#DFFCD2",
}

var seedLinkTitlePrefixes = []string{
	"New release", "Starter guide", "Tool stack", "Newsletter",
	"Community", "Case study", "Template pack", "Video breakdown",
	"Live session", "Partner offer",
}

var seedLinkDescriptionPrefixes = []string{
	"Updated weekly", "Most visited", "Beginner friendly",
	"In-depth walkthrough", "Top converting page",
	"Limited-time campaign", "Fan favorite", "Featured content",
}

type seedProfile struct {
	Username      string
	DisplayName   string
	Bio           string
	LinkCount     int
	Theme         string
	SectionTitles []string
}

var seedProfiles = []seedProfile{
	{
		Username:      "alexstudio",
		DisplayName:   "Alex Studio",
		Bio:           "Design drops, tutorials, and weekly resources for creators.",
		LinkCount:     120,
		Theme:         "default",
		SectionTitles: []string{"Featured", "Design Tools", "Tutorials", "Community"},
	},
	{
		Username:      "maya.codes",
		DisplayName:   "Maya Codes",
		Bio:           "Frontend engineer sharing UI experiments, talks, and templates.",
		LinkCount:     95,
		Theme:         "sunset",
		SectionTitles: []string{"Now Shipping", "Code Labs", "Talks", "Downloads"},
	},
	{
		Username:      "noahfitness",
		DisplayName:   "Noah Fitness",
		Bio:           "Training plans, nutrition notes, and coaching links.",
		LinkCount:     85,
		Theme:         "mint",
		SectionTitles: []string{"Coaching", "Workouts", "Nutrition", "Recovery"},
	},
	{
		Username:      "luna.market",
		DisplayName:   "Luna Market",
		Bio:           "Product launches, community links, and campaign pages.",
		LinkCount:     75,
		Theme:         "ocean",
		SectionTitles: []string{"Launches", "Collections", "Community", "Support"},
	},
}

// SeedData fills an empty database with demo profiles, sections,
// links and click events. It is a no-op when users already exist.
func SeedData(db *gorm.DB, log *zap.Logger) error {
	var count int64
	if err := db.Model(&domain.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check existing users: %w", err)
	}
	if count > 0 {
		log.Info("users already exist, skipping seeding", zap.Int64("existing_count", count))
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	for _, seed := range seedProfiles {
		if err := seedOne(db, seed, string(hash)); err != nil {
			return fmt.Errorf("failed to seed %s: %w", seed.Username, err)
		}
		log.Info("seeded profile",
			zap.String("username", seed.Username),
			zap.Int("links", seed.LinkCount))
	}

	log.Info("database seeding completed", zap.Int("profiles", len(seedProfiles)))
	return nil
}

func seedOne(db *gorm.DB, seed seedProfile, passwordHash string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		user := &domain.User{
			Email:         seed.Username + "@seed.linkfolio.dev",
			PasswordHash:  passwordHash,
			EmailVerified: true,
			IsActive:      true,
		}
		if err := tx.Create(user).Error; err != nil {
			return err
		}

		bio := seed.Bio
		displayName := seed.DisplayName
		profile := &domain.Profile{
			UserID:      user.ID,
			Username:    seed.Username,
			DisplayName: &displayName,
			Bio:         &bio,
			Theme:       seed.Theme,
		}
		if err := tx.Create(profile).Error; err != nil {
			return err
		}

		sections := make([]*domain.Section, len(seed.SectionTitles))
		for i, title := range seed.SectionTitles {
			sections[i] = &domain.Section{
				ProfileID: profile.ID,
				Title:     title,
				SortOrder: i,
			}
			if err := tx.Create(sections[i]).Error; err != nil {
				return err
			}
		}

		links, err := seedLinks(tx, profile.ID, seed, sections)
		if err != nil {
			return err
		}
		return seedClicks(tx, profile.ID, links)
	})
}

// seedLinks spreads links over the unsectioned bucket and the
// sections, keeping each container's sort order dense.
func seedLinks(tx *gorm.DB, profileID string, seed seedProfile, sections []*domain.Section) ([]*domain.Link, error) {
	unsectionedCount := seed.LinkCount * 7 / 100
	if unsectionedCount < 2 {
		unsectionedCount = 2
	}

	nextOrder := make(map[string]int) // keyed by section id, "" for unsectioned
	links := make([]*domain.Link, 0, seed.LinkCount)

	for i := 0; i < seed.LinkCount; i++ {
		var sectionID *string
		key := ""
		if i >= unsectionedCount && len(sections) > 0 {
			id := sections[(i-unsectionedCount)%len(sections)].ID
			sectionID = &id
			key = id
		}

		description := fmt.Sprintf("%s - %s", seedLinkDescriptionPrefixes[i%len(seedLinkDescriptionPrefixes)], seed.Username)
		link := &domain.Link{
			ProfileID:   profileID,
			SectionID:   sectionID,
			Title:       fmt.Sprintf("%s #%d", seedLinkTitlePrefixes[i%len(seedLinkTitlePrefixes)], i+1),
			URL:         fmt.Sprintf("https://example.com/%s/link-%d", seed.Username, i+1),
			Description: &description,
			IconBgColor: seedIconBgColors[i%len(seedIconBgColors)],
			IsActive:    true,
			SortOrder:   nextOrder[key],
		}
		nextOrder[key]++

		if err := tx.Create(link).Error; err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	return links, nil
}

func seedClicks(tx *gorm.DB, profileID string, links []*domain.Link) error {
	maxLinks := len(links)
	if maxLinks > 25 {
		maxLinks = 25
	}

	referrers := []string{"https://instagram.com", "https://youtube.com", ""}
	countries := []string{"US", "CA"}
	userAgent := "seed-script"
	now := time.Now()

	for linkIndex, link := range links[:maxLinks] {
		for eventIndex := 0; eventIndex < 8; eventIndex++ {
			referrer := referrers[eventIndex%len(referrers)]
			country := countries[eventIndex%len(countries)]
			minutesAgo := linkIndex*12 + eventIndex*19

			event := &domain.ClickEvent{
				LinkID:    link.ID,
				ProfileID: profileID,
				UserAgent: &userAgent,
				Country:   &country,
				ClickedAt: now.Add(-time.Duration(minutesAgo) * time.Minute),
			}
			if referrer != "" {
				event.Referrer = &referrer
			}
			if err := tx.Create(event).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
