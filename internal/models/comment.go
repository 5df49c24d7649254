package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DeletedCommentPlaceholder replaces the body of a soft-deleted comment.
const DeletedCommentPlaceholder = "[Comment deleted]"

// Comment represents a comment on a post. ParentID is nil for root comments;
// replies always point at a root comment of the same post.
type Comment struct {
	ID         primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	PostID     primitive.ObjectID  `json:"post_id" bson:"post_id"`
	ParentID   *primitive.ObjectID `json:"parent_id,omitempty" bson:"parent_id"`
	AuthorID   uint                `json:"author_id" bson:"author_id"`
	Content    string              `json:"content" bson:"content"`
	Likes      []uint              `json:"likes" bson:"likes"`
	ReplyCount int64               `json:"reply_count" bson:"reply_count"`
	Status     Status              `json:"status" bson:"status"`
	CreatedAt  time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at" bson:"updated_at"`
}

func (c *Comment) IsRoot() bool {
	return c.ParentID == nil
}

// CreateCommentRequest defines the request body for creating a comment or reply
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required"`
}

// UpdateCommentRequest defines the request body for updating an existing comment
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required"`
}
