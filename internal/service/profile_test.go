package service

import (
	"Linkfolio-Backend/internal/repository"
	"Linkfolio-Backend/internal/repository/memory"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCreateProfileNormalizesUsername(t *testing.T) {
	store := memory.New()
	svc := NewProfileService(store, zap.NewNop())

	profile, err := svc.CreateProfile(context.Background(), 1, " My-Handle_7 ", strp("  Ada  "))
	require.NoError(t, err)
	assert.Equal(t, "my-handle_7", profile.Username)
	require.NotNil(t, profile.DisplayName)
	assert.Equal(t, "Ada", *profile.DisplayName)
	assert.Equal(t, "default", profile.Theme)

	_, err = svc.CreateProfile(context.Background(), 2, "my-handle_7", nil)
	require.ErrorIs(t, err, repository.ErrUsernameTaken)
}

func TestCheckUsername(t *testing.T) {
	store := memory.New()
	svc := NewProfileService(store, zap.NewNop())
	ctx := context.Background()

	available, err := svc.CheckUsername(ctx, "free-handle")
	require.NoError(t, err)
	assert.True(t, available)

	_, err = svc.CreateProfile(ctx, 1, "free-handle", nil)
	require.NoError(t, err)

	available, err = svc.CheckUsername(ctx, "Free-Handle")
	require.NoError(t, err)
	assert.False(t, available, "lookup is case-insensitive")

	for _, bad := range []string{"x", "has space", "dot.ted", strings.Repeat("a", 31), ""} {
		_, err := svc.CheckUsername(ctx, bad)
		assert.ErrorIs(t, err, ErrInvalidProfile, bad)
	}
}

func TestUpdateProfileFields(t *testing.T) {
	store := memory.New()
	svc := NewProfileService(store, zap.NewNop())
	ctx := context.Background()
	_, err := svc.CreateProfile(ctx, 1, "tester", nil)
	require.NoError(t, err)

	profile, err := svc.UpdateProfile(ctx, 1, UpdateProfileInput{
		DisplayName:    strp("Ada Lovelace"),
		DisplayNameSet: true,
		Bio:            strp("First programmer"),
		BioSet:         true,
		AvatarURL:      strp("/uploads/ada.png"),
		AvatarURLSet:   true,
		Theme:          strp("midnight"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", *profile.DisplayName)
	assert.Equal(t, "First programmer", *profile.Bio)
	assert.Equal(t, "/uploads/ada.png", *profile.AvatarURL)
	assert.Equal(t, "midnight", profile.Theme)

	// Clearing a field takes a set flag with a nil value.
	profile, err = svc.UpdateProfile(ctx, 1, UpdateProfileInput{Bio: nil, BioSet: true})
	require.NoError(t, err)
	assert.Nil(t, profile.Bio)
	assert.Equal(t, "Ada Lovelace", *profile.DisplayName)

	// Blank theme falls back to the default.
	profile, err = svc.UpdateProfile(ctx, 1, UpdateProfileInput{Theme: strp("  ")})
	require.NoError(t, err)
	assert.Equal(t, "default", profile.Theme)

	_, err = svc.UpdateProfile(ctx, 1, UpdateProfileInput{AvatarURL: strp("ftp://example.com/a.png"), AvatarURLSet: true})
	require.ErrorIs(t, err, ErrInvalidProfile)

	_, err = svc.UpdateProfile(ctx, 1, UpdateProfileInput{Bio: strp(strings.Repeat("b", 201)), BioSet: true})
	require.ErrorIs(t, err, ErrInvalidProfile)

	_, err = svc.UpdateProfile(ctx, 1, UpdateProfileInput{DisplayName: strp(strings.Repeat("n", 51)), DisplayNameSet: true})
	require.ErrorIs(t, err, ErrInvalidProfile)

	_, err = svc.UpdateProfile(ctx, 99, UpdateProfileInput{})
	require.ErrorIs(t, err, repository.ErrProfileNotFound)
}

func TestUpdateProfileAvatarAbsoluteURL(t *testing.T) {
	store := memory.New()
	svc := NewProfileService(store, zap.NewNop())
	ctx := context.Background()
	_, err := svc.CreateProfile(ctx, 1, "tester", nil)
	require.NoError(t, err)

	profile, err := svc.UpdateProfile(ctx, 1, UpdateProfileInput{
		AvatarURL:    strp("https://cdn.example.com/ada.png"),
		AvatarURLSet: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/ada.png", *profile.AvatarURL)
}
