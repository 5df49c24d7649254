package services

import (
	"context"
	"errors"
	"testing"

	"github.com/anonto42/circle/backend/internal/apperrors"
	"github.com/anonto42/circle/backend/internal/models"
	"github.com/anonto42/circle/backend/internal/services/mocks"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInbox(t *testing.T) {
	h := newHarness(t, defaultLimits())
	ctx := context.Background()

	post := createPost(t, h, alice, models.VisibilityPublic)
	_, err := h.postService.LikePost(ctx, post.ID.Hex(), bob)
	require.NoError(t, err)
	_, err = h.commentSvc.AddRootComment(ctx, post.ID.Hex(), carol, "hi")
	require.NoError(t, err)
	require.NoError(t, h.relationships.Follow(ctx, dave, alice))

	inbox, err := h.inbox.List(ctx, alice, Page{Number: 1, Size: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 3, inbox.Total)
	assert.EqualValues(t, 3, inbox.Unread)
	require.Len(t, inbox.Notifications, 3)
	assert.Equal(t, models.NotificationNewFollower, inbox.Notifications[0].Type)

	err = h.inbox.MarkAsRead(ctx, inbox.Notifications[0].ID.Hex(), bob)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))

	require.NoError(t, h.inbox.MarkAsRead(ctx, inbox.Notifications[0].ID.Hex(), alice))
	unread, err := h.inbox.UnreadCount(ctx, alice)
	require.NoError(t, err)
	assert.EqualValues(t, 2, unread)

	marked, err := h.inbox.MarkAllAsRead(ctx, alice)
	require.NoError(t, err)
	assert.EqualValues(t, 2, marked)

	unread, err = h.inbox.UnreadCount(ctx, alice)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestNotifierFailureDoesNotFailAction(t *testing.T) {
	ctrl := gomock.NewController(t)
	notifier := mocks.NewMockNotifier(ctrl)

	follows := newFakeFollows()
	users := newFakeUsers()
	users.seed("Alice")
	users.seed("Bob")
	svc := NewRelationshipService(follows, users, notifier, WithClock(newStepClock().Now), WithLogger(zap.NewNop()))

	notifier.EXPECT().
		Notify(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, n *models.Notification) error {
			assert.Equal(t, models.NotificationNewFollower, n.Type)
			return errors.New("mongo down")
		})

	require.NoError(t, svc.Follow(context.Background(), alice, bob))

	following, err := follows.IsFollowing(context.Background(), alice, bob)
	require.NoError(t, err)
	assert.True(t, following)
}

func TestSelfActionsNeverReachNotifier(t *testing.T) {
	ctrl := gomock.NewController(t)
	notifier := mocks.NewMockNotifier(ctrl)
	notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Times(0)

	posts := newFakePosts()
	follows := newFakeFollows()
	users := newFakeUsers()
	users.seed("Alice")
	opts := []Option{WithLogger(zap.NewNop())}
	postSvc := NewPostService(posts, follows, users, notifier, defaultLimits(), opts...)
	commentSvc := NewCommentService(newFakeComments(), posts, follows, notifier, 1000, opts...)
	ctx := context.Background()

	post, err := postSvc.CreatePost(ctx, alice, CreatePostInput{Content: "mine", Tags: []uint{alice}})
	require.NoError(t, err)
	_, err = postSvc.LikePost(ctx, post.ID.Hex(), alice)
	require.NoError(t, err)

	root, err := commentSvc.AddRootComment(ctx, post.ID.Hex(), alice, "talking to myself")
	require.NoError(t, err)
	_, err = commentSvc.AddReply(ctx, root.ID.Hex(), alice, "indeed")
	require.NoError(t, err)
	_, err = commentSvc.ToggleLike(ctx, root.ID.Hex(), alice)
	require.NoError(t, err)
}
