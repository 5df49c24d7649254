package services

import (
	"testing"

	"go.uber.org/zap"
)

const (
	alice uint = iota + 1
	bob
	carol
	dave
)

type harness struct {
	clock         *stepClock
	posts         *fakePosts
	comments      *fakeComments
	follows       *fakeFollows
	notifications *fakeNotifications
	users         *fakeUsers

	inbox         *NotificationService
	postService   *PostService
	commentSvc    *CommentService
	relationships *RelationshipService
}

func newHarness(t *testing.T, limits PostLimits) *harness {
	t.Helper()

	h := &harness{
		clock:         newStepClock(),
		posts:         newFakePosts(),
		comments:      newFakeComments(),
		follows:       newFakeFollows(),
		notifications: &fakeNotifications{},
		users:         newFakeUsers(),
	}
	for _, name := range []string{"Alice", "Bob", "Carol", "Dave"} {
		h.users.seed(name)
	}

	opts := []Option{WithClock(h.clock.Now), WithLogger(zap.NewNop())}
	h.inbox = NewNotificationService(h.notifications, opts...)
	h.postService = NewPostService(h.posts, h.follows, h.users, h.inbox, limits, opts...)
	h.commentSvc = NewCommentService(h.comments, h.posts, h.follows, h.inbox, 1000, opts...)
	h.relationships = NewRelationshipService(h.follows, h.users, h.inbox, opts...)
	return h
}

func defaultLimits() PostLimits {
	return PostLimits{MaxContentLength: 5000, MaxImages: 10, MaxPostsPerHour: 10}
}
