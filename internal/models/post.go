package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Visibility controls who may read a post.
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityFollowers Visibility = "followers"
	VisibilityPrivate   Visibility = "private"
)

func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityFollowers, VisibilityPrivate:
		return true
	}
	return false
}

// Status is the lifecycle state shared by posts and comments. Deleted is terminal.
type Status string

const (
	StatusActive  Status = "active"
	StatusDeleted Status = "deleted"
	StatusHidden  Status = "hidden"
)

// Post represents a social media post stored in MongoDB.
// Likes, Views and Shares hold user ids with set semantics.
type Post struct {
	ID         primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	OwnerID    uint                `json:"owner_id" bson:"owner_id"`
	Content    string              `json:"content" bson:"content"`
	Images     []string            `json:"images" bson:"images"`
	Tags       []uint              `json:"tags,omitempty" bson:"tags,omitempty"`
	Visibility Visibility          `json:"visibility" bson:"visibility"`
	Status     Status              `json:"status" bson:"status"`
	Likes      []uint              `json:"likes" bson:"likes"`
	Views      []uint              `json:"views" bson:"views"`
	Shares     []uint              `json:"shares" bson:"shares"`
	SharedFrom *primitive.ObjectID `json:"shared_from,omitempty" bson:"shared_from,omitempty"`
	CreatedAt  time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at" bson:"updated_at"`
}

// IsShare reports whether the post references an origin post.
func (p *Post) IsShare() bool {
	return p.SharedFrom != nil
}

// PostPatch carries the optional fields of an owner edit. Nil means unchanged.
type PostPatch struct {
	Content    *string
	Images     []string
	Visibility *Visibility
	Tags       []uint
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Content    string   `json:"content" validate:"required"`
	Images     []string `json:"images,omitempty" validate:"omitempty,dive,url"`
	Visibility string   `json:"visibility,omitempty" validate:"omitempty,oneof=public followers private"`
	Tags       []uint   `json:"tags,omitempty" validate:"omitempty,dive,gt=0"`
}

// UpdatePostRequest defines the request body for updating an existing post
type UpdatePostRequest struct {
	Content    *string  `json:"content,omitempty"`
	Images     []string `json:"images,omitempty" validate:"omitempty,dive,url"`
	Visibility *string  `json:"visibility,omitempty" validate:"omitempty,oneof=public followers private"`
	Tags       []uint   `json:"tags,omitempty" validate:"omitempty,dive,gt=0"`
}

type SharePostRequest struct {
	Note string `json:"note,omitempty"`
}
