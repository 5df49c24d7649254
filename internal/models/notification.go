package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType is the closed set of notification triggers.
type NotificationType string

const (
	NotificationComment     NotificationType = "comment"
	NotificationReply       NotificationType = "reply"
	NotificationLikeComment NotificationType = "like-comment"
	NotificationLikePost    NotificationType = "like-post"
	NotificationSharePost   NotificationType = "share-post"
	NotificationNewFollower NotificationType = "new-follower"
	NotificationMention     NotificationType = "mention"
)

// Notification represents a user notification stored in MongoDB
type Notification struct {
	ID          primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	Type        NotificationType    `json:"type" bson:"type"`
	SenderID    uint                `json:"sender_id" bson:"sender_id"`
	RecipientID uint                `json:"recipient_id" bson:"recipient_id"`
	PostID      *primitive.ObjectID `json:"post_id,omitempty" bson:"post_id,omitempty"`
	CommentID   *primitive.ObjectID `json:"comment_id,omitempty" bson:"comment_id,omitempty"`
	Message     string              `json:"message" bson:"message"`
	IsRead      bool                `json:"is_read" bson:"is_read"`
	CreatedAt   time.Time           `json:"created_at" bson:"created_at"`
}
