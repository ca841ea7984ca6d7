package repository

import (
	"Linkfolio-Backend/internal/domain"
	"context"
	"errors"
	"time"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailTaken      = errors.New("email already registered")
	ErrProfileNotFound = errors.New("profile not found")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrLinkNotFound    = errors.New("link not found")
	ErrSectionNotFound = errors.New("section not found")
)

// LinkClickCount is the per-link aggregation of click events.
type LinkClickCount struct {
	LinkID string `json:"link_id"`
	Title  string `json:"title"`
	URL    string `json:"url"`
	Count  int64  `json:"count"`
}

// ReferrerCount is the per-source aggregation of click events.
// Source is a bare host, "Direct" for empty referrers.
type ReferrerCount struct {
	Source string `json:"source"`
	Count  int64  `json:"count"`
}

// DayCount is one day's click total, Day formatted as YYYY-MM-DD.
type DayCount struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

type Storage interface {
	// User methods
	CreateUser(ctx context.Context, email, passwordHash string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error

	// Profile methods
	CreateProfile(ctx context.Context, profile *domain.Profile) error
	GetProfileByUserID(ctx context.Context, userID int64) (*domain.Profile, error)
	GetProfileByUsername(ctx context.Context, username string) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, profile *domain.Profile) error
	UsernameExists(ctx context.Context, username string) (bool, error)

	// Layout methods. GetLayout returns rows with no ordering
	// guarantee; ApplyLayoutPlan commits the whole plan in a single
	// all-or-nothing transaction.
	GetLayout(ctx context.Context, profileID string, onlyActive bool) (*domain.Layout, error)
	ApplyLayoutPlan(ctx context.Context, profileID string, plan *domain.LayoutPlan) error

	// Link methods
	CreateLink(ctx context.Context, link *domain.Link) error
	GetLinkByID(ctx context.Context, profileID, linkID string) (*domain.Link, error)
	UpdateLink(ctx context.Context, link *domain.Link) error
	NextLinkSortOrder(ctx context.Context, profileID string, sectionID *string) (int, error)

	// Section methods; creation and deletion go through ApplyLayoutPlan
	GetSectionByID(ctx context.Context, profileID, sectionID string) (*domain.Section, error)
	UpdateSection(ctx context.Context, section *domain.Section) error

	// Click analytics methods
	CreateClickEvent(ctx context.Context, event *domain.ClickEvent) error
	CountClicks(ctx context.Context, profileID string, since *time.Time) (int64, error)
	CountDirectClicks(ctx context.Context, profileID string) (int64, error)
	CountUniqueReferrers(ctx context.Context, profileID string) (int64, error)
	ClicksByLink(ctx context.Context, profileID string) ([]LinkClickCount, error)
	TopReferrers(ctx context.Context, profileID string, limit int) ([]ReferrerCount, error)
	ClicksByDay(ctx context.Context, profileID string, days int) ([]DayCount, error)
	RecentClicks(ctx context.Context, profileID string, limit int) ([]*domain.ClickEvent, error)
}
