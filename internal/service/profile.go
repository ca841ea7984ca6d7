package service

import (
	"Linkfolio-Backend/internal/domain"
	"Linkfolio-Backend/internal/repository"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// ErrInvalidProfile marks a rejected profile field.
var ErrInvalidProfile = errors.New("invalid profile")

const (
	maxDisplayNameLength = 50
	maxBioLength         = 200
)

// usernameRegex is the public handle format: lowercase letters,
// digits, underscore and hyphen, 2 to 30 characters.
var usernameRegex = regexp.MustCompile(`^[a-z0-9_-]{2,30}$`)

// ProfileService implements onboarding and profile edits.
type ProfileService struct {
	storage repository.Storage
	log     *zap.Logger
}

// NewProfileService creates a new profile service.
func NewProfileService(storage repository.Storage, log *zap.Logger) *ProfileService {
	return &ProfileService{
		storage: storage,
		log:     log,
	}
}

// GetCurrent returns the profile of the authenticated user.
func (s *ProfileService) GetCurrent(ctx context.Context, userID int64) (*domain.Profile, error) {
	return s.storage.GetProfileByUserID(ctx, userID)
}

// CheckUsername reports whether a handle is well-formed and free.
func (s *ProfileService) CheckUsername(ctx context.Context, username string) (bool, error) {
	username = normalizeUsername(username)
	if !usernameRegex.MatchString(username) {
		return false, fmt.Errorf("%w: username must be 2-30 lowercase letters, digits, _ or -", ErrInvalidProfile)
	}
	taken, err := s.storage.UsernameExists(ctx, username)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

// CreateProfile claims a username for a user. Each user owns at most
// one profile.
func (s *ProfileService) CreateProfile(ctx context.Context, userID int64, username string, displayName *string) (*domain.Profile, error) {
	username = normalizeUsername(username)
	if !usernameRegex.MatchString(username) {
		return nil, fmt.Errorf("%w: username must be 2-30 lowercase letters, digits, _ or -", ErrInvalidProfile)
	}
	name, err := validDisplayName(displayName)
	if err != nil {
		return nil, err
	}

	profile := &domain.Profile{
		UserID:      userID,
		Username:    username,
		DisplayName: name,
		Theme:       domain.DefaultTheme,
	}
	if err := s.storage.CreateProfile(ctx, profile); err != nil {
		return nil, err
	}
	s.log.Info("created profile",
		zap.Int64("user_id", userID),
		zap.String("username", username))
	return profile, nil
}

// UpdateProfileInput carries partial profile edits. The *Set flags
// distinguish clearing a nullable field from leaving it unchanged.
type UpdateProfileInput struct {
	DisplayName    *string
	DisplayNameSet bool
	Bio            *string
	BioSet         bool
	AvatarURL      *string
	AvatarURLSet   bool
	Theme          *string
}

// UpdateProfile applies partial field edits to the user's profile.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID int64, input UpdateProfileInput) (*domain.Profile, error) {
	profile, err := s.storage.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.DisplayNameSet {
		name, err := validDisplayName(input.DisplayName)
		if err != nil {
			return nil, err
		}
		profile.DisplayName = name
	}
	if input.BioSet {
		bio, err := validBio(input.Bio)
		if err != nil {
			return nil, err
		}
		profile.Bio = bio
	}
	if input.AvatarURLSet {
		avatar, err := validAvatarURL(input.AvatarURL)
		if err != nil {
			return nil, err
		}
		profile.AvatarURL = avatar
	}
	if input.Theme != nil {
		theme := strings.TrimSpace(*input.Theme)
		if theme == "" {
			theme = domain.DefaultTheme
		}
		profile.Theme = theme
	}

	if err := s.storage.UpdateProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func validDisplayName(name *string) (*string, error) {
	if name == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*name)
	if trimmed == "" {
		return nil, nil
	}
	if len(trimmed) > maxDisplayNameLength {
		return nil, fmt.Errorf("%w: display name exceeds %d characters", ErrInvalidProfile, maxDisplayNameLength)
	}
	return &trimmed, nil
}

func validBio(bio *string) (*string, error) {
	if bio == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*bio)
	if trimmed == "" {
		return nil, nil
	}
	if len(trimmed) > maxBioLength {
		return nil, fmt.Errorf("%w: bio exceeds %d characters", ErrInvalidProfile, maxBioLength)
	}
	return &trimmed, nil
}

// validAvatarURL accepts absolute http(s) URLs and site-relative
// upload paths.
func validAvatarURL(avatar *string) (*string, error) {
	if avatar == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*avatar)
	if trimmed == "" {
		return nil, nil
	}
	if strings.HasPrefix(trimmed, "/uploads/") {
		return &trimmed, nil
	}
	normalized, err := NormalizeHTTPURL(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: avatar must be an http(s) URL or an /uploads/ path", ErrInvalidProfile)
	}
	return &normalized, nil
}
