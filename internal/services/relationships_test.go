package services

import (
	"context"
	"testing"

	"github.com/anonto42/circle/backend/internal/apperrors"
	"github.com/anonto42/circle/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollow(t *testing.T) {
	h := newHarness(t, defaultLimits())
	ctx := context.Background()

	err := h.relationships.Follow(ctx, alice, alice)
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))

	err = h.relationships.Follow(ctx, alice, 999)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))

	require.NoError(t, h.relationships.Follow(ctx, alice, bob))

	err = h.relationships.Follow(ctx, alice, bob)
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))

	notes := h.notifications.byType(models.NotificationNewFollower)
	require.Len(t, notes, 1)
	assert.Equal(t, bob, notes[0].RecipientID)
	assert.Equal(t, alice, notes[0].SenderID)
}

func TestUnfollow(t *testing.T) {
	h := newHarness(t, defaultLimits())
	ctx := context.Background()

	err := h.relationships.Unfollow(ctx, alice, bob)
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))

	require.NoError(t, h.relationships.Follow(ctx, alice, bob))
	require.NoError(t, h.relationships.Unfollow(ctx, alice, bob))

	following, err := h.follows.IsFollowing(ctx, alice, bob)
	require.NoError(t, err)
	assert.False(t, following)
}

func TestStatsAndMutualStatus(t *testing.T) {
	h := newHarness(t, defaultLimits())
	ctx := context.Background()

	require.NoError(t, h.relationships.Follow(ctx, alice, bob))
	require.NoError(t, h.relationships.Follow(ctx, bob, alice))
	require.NoError(t, h.relationships.Follow(ctx, carol, alice))

	stats, err := h.relationships.Stats(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, models.FollowStats{Followers: 2, Following: 1}, *stats)

	own, err := h.relationships.MutualStatus(ctx, alice, alice)
	require.NoError(t, err)
	assert.True(t, own.IsOwnProfile)
	assert.Nil(t, own.IsFollowing)
	assert.Nil(t, own.IsFollower)
	assert.Nil(t, own.IsMutual)

	mutual, err := h.relationships.MutualStatus(ctx, alice, bob)
	require.NoError(t, err)
	assert.True(t, *mutual.IsFollowing)
	assert.True(t, *mutual.IsFollower)
	assert.True(t, *mutual.IsMutual)

	oneWay, err := h.relationships.MutualStatus(ctx, alice, carol)
	require.NoError(t, err)
	assert.False(t, *oneWay.IsFollowing)
	assert.True(t, *oneWay.IsFollower)
	assert.False(t, *oneWay.IsMutual)
}

func TestListFollowersAndFollowing(t *testing.T) {
	h := newHarness(t, defaultLimits())
	ctx := context.Background()

	require.NoError(t, h.relationships.Follow(ctx, bob, alice))
	require.NoError(t, h.relationships.Follow(ctx, carol, alice))
	require.NoError(t, h.relationships.Follow(ctx, alice, dave))

	followers, total, err := h.relationships.ListFollowers(ctx, alice, Page{Number: 1, Size: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, followers, 2)
	assert.Equal(t, carol, followers[0].User.ID)
	assert.Equal(t, "Carol", followers[0].User.Name)
	assert.Equal(t, bob, followers[1].User.ID)

	following, total, err := h.relationships.ListFollowing(ctx, alice, Page{Number: 1, Size: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, following, 1)
	assert.Equal(t, dave, following[0].User.ID)
	assert.False(t, following[0].FollowedAt.IsZero())
}
