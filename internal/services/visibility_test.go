package services

import (
	"context"
	"errors"
	"testing"

	"github.com/anonto42/circle/backend/internal/apperrors"
	"github.com/anonto42/circle/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingFollows struct{}

func (failingFollows) IsFollowing(context.Context, uint, uint) (bool, error) {
	return false, errors.New("store unavailable")
}

func TestResolveAccess(t *testing.T) {
	follows := newFakeFollows()
	follows.add(bob, alice)
	resolver := NewVisibilityResolver(follows)

	tests := []struct {
		name       string
		visibility models.Visibility
		status     models.Status
		viewer     uint
		granted    bool
		reason     DenyReason
	}{
		{name: "owner private", visibility: models.VisibilityPrivate, status: models.StatusActive, viewer: alice, granted: true},
		{name: "owner followers", visibility: models.VisibilityFollowers, status: models.StatusActive, viewer: alice, granted: true},
		{name: "owner deleted", visibility: models.VisibilityPublic, status: models.StatusDeleted, viewer: alice, reason: ReasonInactive},
		{name: "public stranger", visibility: models.VisibilityPublic, status: models.StatusActive, viewer: carol, granted: true},
		{name: "hidden public", visibility: models.VisibilityPublic, status: models.StatusHidden, viewer: carol, reason: ReasonInactive},
		{name: "private follower", visibility: models.VisibilityPrivate, status: models.StatusActive, viewer: bob, reason: ReasonPrivate},
		{name: "private stranger", visibility: models.VisibilityPrivate, status: models.StatusActive, viewer: carol, reason: ReasonPrivate},
		{name: "followers follower", visibility: models.VisibilityFollowers, status: models.StatusActive, viewer: bob, granted: true},
		{name: "followers stranger", visibility: models.VisibilityFollowers, status: models.StatusActive, viewer: carol, reason: ReasonMustFollow},
		{name: "unknown visibility", visibility: models.Visibility("friends"), status: models.StatusActive, viewer: bob, reason: ReasonUnknownVisibility},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post := &models.Post{OwnerID: alice, Visibility: tt.visibility, Status: tt.status}

			decision, err := resolver.ResolveAccess(context.Background(), post, tt.viewer)
			require.NoError(t, err)
			assert.Equal(t, tt.granted, decision.Granted)
			assert.Equal(t, tt.reason, decision.Reason)
		})
	}
}

func TestResolveAccess_FollowLookupFails(t *testing.T) {
	resolver := NewVisibilityResolver(failingFollows{})
	post := &models.Post{OwnerID: alice, Visibility: models.VisibilityFollowers, Status: models.StatusActive}

	_, err := resolver.ResolveAccess(context.Background(), post, bob)
	require.Error(t, err)

	err = resolver.RequireAccess(context.Background(), post, bob)
	assert.True(t, apperrors.Is(err, apperrors.CodeInternal))
}

func TestRequireAccess_DenialLooksLikeNotFound(t *testing.T) {
	resolver := NewVisibilityResolver(newFakeFollows())
	ctx := context.Background()

	private := &models.Post{OwnerID: alice, Visibility: models.VisibilityPrivate, Status: models.StatusActive}
	deleted := &models.Post{OwnerID: alice, Visibility: models.VisibilityPublic, Status: models.StatusDeleted}

	errPrivate := resolver.RequireAccess(ctx, private, bob)
	errDeleted := resolver.RequireAccess(ctx, deleted, bob)

	require.Error(t, errPrivate)
	require.Error(t, errDeleted)
	assert.Equal(t, errDeleted.Error(), errPrivate.Error())
	assert.True(t, apperrors.Is(errPrivate, apperrors.CodeNotFound))
}

func TestReadableVisibilities(t *testing.T) {
	follows := newFakeFollows()
	follows.add(bob, alice)
	resolver := NewVisibilityResolver(follows)
	ctx := context.Background()

	own, err := resolver.readableVisibilities(ctx, alice, alice)
	require.NoError(t, err)
	assert.Nil(t, own)

	follower, err := resolver.readableVisibilities(ctx, alice, bob)
	require.NoError(t, err)
	assert.ElementsMatch(t, []models.Visibility{models.VisibilityPublic, models.VisibilityFollowers}, follower)

	stranger, err := resolver.readableVisibilities(ctx, alice, carol)
	require.NoError(t, err)
	assert.Equal(t, []models.Visibility{models.VisibilityPublic}, stranger)
}
