package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Follow is a directed edge: FollowerID follows FollowingID.
// The pair is unique and the two ids always differ.
type Follow struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	FollowerID  uint               `json:"follower_id" bson:"follower_id"`
	FollowingID uint               `json:"following_id" bson:"following_id"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
}

type FollowStats struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}

// FollowStatus describes the relationship between the viewer and a profile.
// When IsOwnProfile is set the other fields are omitted.
type FollowStatus struct {
	IsOwnProfile bool  `json:"isOwnProfile,omitempty"`
	IsFollowing  *bool `json:"isFollowing,omitempty"`
	IsFollower   *bool `json:"isFollower,omitempty"`
	IsMutual     *bool `json:"isMutual,omitempty"`
}
