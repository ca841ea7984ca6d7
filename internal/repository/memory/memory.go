// Package memory provides a mutex-guarded in-memory Storage
// implementation used by unit tests and local experiments. Layout
// plans are validated up front and applied under one lock, mirroring
// the all-or-nothing behavior of the database transaction.
package memory

import (
	"Linkfolio-Backend/internal/domain"
	"Linkfolio-Backend/internal/repository"
	"context"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type MemStorage struct {
	mu          sync.RWMutex
	users       map[int64]*domain.User
	profiles    map[string]*domain.Profile
	links       map[string]*domain.Link
	sections    map[string]*domain.Section
	clicks      []*domain.ClickEvent
	userCounter int64
}

func New() *MemStorage {
	return &MemStorage{
		users:    make(map[int64]*domain.User),
		profiles: make(map[string]*domain.Profile),
		links:    make(map[string]*domain.Link),
		sections: make(map[string]*domain.Section),
	}
}

// --- User Methods ---

func (s *MemStorage) CreateUser(_ context.Context, email, passwordHash string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Email == email {
			return nil, repository.ErrEmailTaken
		}
	}

	s.userCounter++
	user := &domain.User{
		ID:           s.userCounter,
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	s.users[user.ID] = user

	copied := *user
	return &copied, nil
}

func (s *MemStorage) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Email == email && user.IsActive {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *MemStorage) GetUserByID(_ context.Context, id int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok || !user.IsActive {
		return nil, repository.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *MemStorage) UpdateUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

// --- Profile Methods ---

func (s *MemStorage) CreateProfile(_ context.Context, profile *domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.profiles {
		if existing.Username == profile.Username {
			return repository.ErrUsernameTaken
		}
	}
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now()
	}
	copied := *profile
	s.profiles[profile.ID] = &copied
	return nil
}

func (s *MemStorage) GetProfileByUserID(_ context.Context, userID int64) (*domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, profile := range s.profiles {
		if profile.UserID == userID {
			copied := *profile
			return &copied, nil
		}
	}
	return nil, repository.ErrProfileNotFound
}

func (s *MemStorage) GetProfileByUsername(_ context.Context, username string) (*domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, profile := range s.profiles {
		if profile.Username == username {
			copied := *profile
			return &copied, nil
		}
	}
	return nil, repository.ErrProfileNotFound
}

func (s *MemStorage) UpdateProfile(_ context.Context, profile *domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[profile.ID]; !ok {
		return repository.ErrProfileNotFound
	}
	copied := *profile
	s.profiles[profile.ID] = &copied
	return nil
}

func (s *MemStorage) UsernameExists(_ context.Context, username string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, profile := range s.profiles {
		if profile.Username == username {
			return true, nil
		}
	}
	return false, nil
}

// --- Layout Methods ---

func (s *MemStorage) GetLayout(_ context.Context, profileID string, onlyActive bool) (*domain.Layout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	layout := &domain.Layout{}
	for _, section := range s.sections {
		if section.ProfileID == profileID {
			copied := *section
			layout.Sections = append(layout.Sections, &copied)
		}
	}
	for _, link := range s.links {
		if link.ProfileID != profileID {
			continue
		}
		if onlyActive && !link.IsActive {
			continue
		}
		copied := *link
		layout.Links = append(layout.Links, &copied)
	}
	return layout, nil
}

func (s *MemStorage) ApplyLayoutPlan(_ context.Context, profileID string, plan *domain.LayoutPlan) error {
	if plan == nil || plan.IsEmpty() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate every referenced row before touching anything so a bad
	// plan leaves the store unchanged, like a rolled-back transaction.
	for _, pos := range plan.SectionPositions {
		if section, ok := s.sections[pos.SectionID]; !ok || section.ProfileID != profileID {
			return repository.ErrSectionNotFound
		}
	}
	for _, placement := range plan.LinkPlacements {
		if link, ok := s.links[placement.LinkID]; !ok || link.ProfileID != profileID {
			return repository.ErrLinkNotFound
		}
	}
	if plan.DeleteLinkID != nil {
		if link, ok := s.links[*plan.DeleteLinkID]; !ok || link.ProfileID != profileID {
			return repository.ErrLinkNotFound
		}
	}
	if plan.DeleteSectionID != nil {
		if section, ok := s.sections[*plan.DeleteSectionID]; !ok || section.ProfileID != profileID {
			return repository.ErrSectionNotFound
		}
	}

	if plan.InsertSection != nil {
		if plan.InsertSection.ID == "" {
			plan.InsertSection.ID = uuid.NewString()
		}
		if plan.InsertSection.CreatedAt.IsZero() {
			plan.InsertSection.CreatedAt = time.Now()
		}
		plan.InsertSection.ProfileID = profileID
		copied := *plan.InsertSection
		s.sections[copied.ID] = &copied
	}
	for _, pos := range plan.SectionPositions {
		s.sections[pos.SectionID].SortOrder = pos.SortOrder
	}
	for _, placement := range plan.LinkPlacements {
		link := s.links[placement.LinkID]
		link.SectionID = placement.SectionID
		link.SortOrder = placement.SortOrder
	}
	if plan.DeleteLinkID != nil {
		delete(s.links, *plan.DeleteLinkID)
	}
	if plan.DeleteSectionID != nil {
		delete(s.sections, *plan.DeleteSectionID)
	}
	return nil
}

// --- Link Methods ---

func (s *MemStorage) CreateLink(_ context.Context, link *domain.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if link.ID == "" {
		link.ID = uuid.NewString()
	}
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now()
	}
	copied := *link
	s.links[link.ID] = &copied
	return nil
}

func (s *MemStorage) GetLinkByID(_ context.Context, profileID, linkID string) (*domain.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	link, ok := s.links[linkID]
	if !ok || link.ProfileID != profileID {
		return nil, repository.ErrLinkNotFound
	}
	copied := *link
	return &copied, nil
}

func (s *MemStorage) UpdateLink(_ context.Context, link *domain.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.links[link.ID]
	if !ok || existing.ProfileID != link.ProfileID {
		return repository.ErrLinkNotFound
	}
	copied := *link
	s.links[link.ID] = &copied
	return nil
}

func (s *MemStorage) NextLinkSortOrder(_ context.Context, profileID string, sectionID *string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	next := 0
	for _, link := range s.links {
		if link.ProfileID != profileID || !sameContainer(link.SectionID, sectionID) {
			continue
		}
		if link.SortOrder+1 > next {
			next = link.SortOrder + 1
		}
	}
	return next, nil
}

func sameContainer(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// --- Section Methods ---

func (s *MemStorage) GetSectionByID(_ context.Context, profileID, sectionID string) (*domain.Section, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	section, ok := s.sections[sectionID]
	if !ok || section.ProfileID != profileID {
		return nil, repository.ErrSectionNotFound
	}
	copied := *section
	return &copied, nil
}

func (s *MemStorage) UpdateSection(_ context.Context, section *domain.Section) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.sections[section.ID]
	if !ok || existing.ProfileID != section.ProfileID {
		return repository.ErrSectionNotFound
	}
	copied := *section
	s.sections[section.ID] = &copied
	return nil
}

// --- Click Analytics Methods ---

func (s *MemStorage) CreateClickEvent(_ context.Context, event *domain.ClickEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.ClickedAt.IsZero() {
		event.ClickedAt = time.Now()
	}
	copied := *event
	s.clicks = append(s.clicks, &copied)
	return nil
}

func (s *MemStorage) CountClicks(_ context.Context, profileID string, since *time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, click := range s.clicks {
		if click.ProfileID != profileID {
			continue
		}
		if since != nil && click.ClickedAt.Before(*since) {
			continue
		}
		count++
	}
	return count, nil
}

func (s *MemStorage) CountDirectClicks(_ context.Context, profileID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, click := range s.clicks {
		if click.ProfileID != profileID {
			continue
		}
		if click.Referrer == nil || strings.TrimSpace(*click.Referrer) == "" {
			count++
		}
	}
	return count, nil
}

func (s *MemStorage) CountUniqueReferrers(_ context.Context, profileID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, click := range s.clicks {
		if click.ProfileID != profileID || click.Referrer == nil || *click.Referrer == "" {
			continue
		}
		seen[*click.Referrer] = struct{}{}
	}
	return int64(len(seen)), nil
}

func (s *MemStorage) ClicksByLink(_ context.Context, profileID string) ([]repository.LinkClickCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := make(map[string]int64)
	for _, click := range s.clicks {
		if click.ProfileID == profileID {
			totals[click.LinkID]++
		}
	}

	results := make([]repository.LinkClickCount, 0, len(totals))
	for linkID, count := range totals {
		row := repository.LinkClickCount{LinkID: linkID, Count: count}
		if link, ok := s.links[linkID]; ok {
			row.Title = link.Title
			row.URL = link.URL
		}
		results = append(results, row)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Count != results[j].Count {
			return results[i].Count > results[j].Count
		}
		return results[i].LinkID < results[j].LinkID
	})
	return results, nil
}

func (s *MemStorage) TopReferrers(_ context.Context, profileID string, limit int) ([]repository.ReferrerCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := make(map[string]int64)
	for _, click := range s.clicks {
		if click.ProfileID == profileID {
			totals[referrerSource(click.Referrer)]++
		}
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

func (s *MemStorage) ClicksByDay(_ context.Context, profileID string, days int) ([]repository.DayCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := time.Now().AddDate(0, 0, -(days - 1)).Truncate(24 * time.Hour)
	totals := make(map[string]int64)
	for _, click := range s.clicks {
		if click.ProfileID == profileID && !click.ClickedAt.Before(cutoff) {
			totals[click.ClickedAt.Format("2006-01-02")]++
		}
	}

	buckets := make([]repository.DayCount, 0, len(totals))
	for day, count := range totals {
		buckets = append(buckets, repository.DayCount{Day: day, Count: count})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Day < buckets[j].Day })
	return buckets, nil
}

func (s *MemStorage) RecentClicks(_ context.Context, profileID string, limit int) ([]*domain.ClickEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var events []*domain.ClickEvent
	for _, click := range s.clicks {
		if click.ProfileID == profileID {
			copied := *click
			events = append(events, &copied)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].ClickedAt.After(events[j].ClickedAt) })
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

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
