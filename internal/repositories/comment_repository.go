package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/circle/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const commentsCollection = "comments"

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id string) (*models.Comment, error)
	IncrementReplyCount(ctx context.Context, id string) error
	ListRoots(ctx context.Context, postID string, skip, limit int64) ([]models.Comment, int64, error)
	ListReplies(ctx context.Context, parentID string, skip, limit int64) ([]models.Comment, int64, error)
	ToggleLike(ctx context.Context, id string, userID uint) (bool, int, error)
	UpdateContent(ctx context.Context, id string, authorID uint, content string, now time.Time) (*models.Comment, error)
	SoftDelete(ctx context.Context, id string, authorID uint, now time.Time) error
}

// MongoCommentRepository implements CommentRepository for MongoDB
type MongoCommentRepository struct {
	collection *mongo.Collection
}

func NewMongoCommentRepository(db *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{collection: db.Collection(commentsCollection)}
}

func (r *MongoCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	const op = "repositories/comments/CreateComment"

	comment.ID = primitive.NewObjectID()
	if comment.Likes == nil {
		comment.Likes = []uint{}
	}
	if _, err := r.collection.InsertOne(ctx, comment); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *MongoCommentRepository) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	const op = "repositories/comments/GetCommentByID"

	objID, err := parseObjectID(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var comment models.Comment
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&comment); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &comment, nil
}

// IncrementReplyCount bumps the denormalized reply counter of a root comment.
// The counter is never decremented.
func (r *MongoCommentRepository) IncrementReplyCount(ctx context.Context, id string) error {
	const op = "repositories/comments/IncrementReplyCount"

	objID, err := parseObjectID(id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	res, err := r.collection.UpdateByID(ctx, objID, bson.M{"$inc": bson.M{"reply_count": 1}})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// ListRoots returns active root comments of a post, newest first.
// A limit of zero returns the whole set.
func (r *MongoCommentRepository) ListRoots(ctx context.Context, postID string, skip, limit int64) ([]models.Comment, int64, error) {
	const op = "repositories/comments/ListRoots"

	objID, err := parseObjectID(postID)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	filter := bson.M{"post_id": objID, "parent_id": nil, "status": models.StatusActive}
	sort := bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

	comments, total, err := r.list(ctx, filter, sort, skip, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return comments, total, nil
}

// ListReplies returns active replies to a root comment, oldest first.
func (r *MongoCommentRepository) ListReplies(ctx context.Context, parentID string, skip, limit int64) ([]models.Comment, int64, error) {
	const op = "repositories/comments/ListReplies"

	objID, err := parseObjectID(parentID)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	filter := bson.M{"parent_id": objID, "status": models.StatusActive}
	sort := bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}

	comments, total, err := r.list(ctx, filter, sort, skip, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return comments, total, nil
}

// ToggleLike adds userID to the like set when absent and removes it otherwise.
// Each branch is a single guarded document update that returns the post-update
// document, so the reported count always matches the action taken.
func (r *MongoCommentRepository) ToggleLike(ctx context.Context, id string, userID uint) (bool, int, error) {
	const op = "repositories/comments/ToggleLike"

	objID, err := parseObjectID(id)
	if err != nil {
		return false, 0, fmt.Errorf("%s: %w", op, err)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var comment models.Comment
	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": objID, "status": models.StatusActive, "likes": bson.M{"$ne": userID}},
		bson.M{"$addToSet": bson.M{"likes": userID}},
		opts,
	).Decode(&comment)
	if err == nil {
		return true, len(comment.Likes), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return false, 0, fmt.Errorf("%s: %w", op, err)
	}

	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": objID, "status": models.StatusActive, "likes": userID},
		bson.M{"$pull": bson.M{"likes": userID}},
		opts,
	).Decode(&comment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, 0, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return false, 0, fmt.Errorf("%s: %w", op, err)
	}
	return false, len(comment.Likes), nil
}

// UpdateContent edits an active comment written by authorID.
func (r *MongoCommentRepository) UpdateContent(ctx context.Context, id string, authorID uint, content string, now time.Time) (*models.Comment, error) {
	const op = "repositories/comments/UpdateContent"

	objID, err := parseObjectID(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var comment models.Comment
	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": objID, "author_id": authorID, "status": models.StatusActive},
		bson.M{"$set": bson.M{"content": content, "updated_at": now}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&comment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &comment, nil
}

// SoftDelete rewrites an active comment written by authorID to the placeholder
// body and marks it deleted.
func (r *MongoCommentRepository) SoftDelete(ctx context.Context, id string, authorID uint, now time.Time) error {
	const op = "repositories/comments/SoftDelete"

	objID, err := parseObjectID(id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	filter := bson.M{"_id": objID, "author_id": authorID, "status": models.StatusActive}
	update := bson.M{"$set": bson.M{
		"status":     models.StatusDeleted,
		"content":    models.DeletedCommentPlaceholder,
		"updated_at": now,
	}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

func (r *MongoCommentRepository) list(ctx context.Context, filter bson.M, sort bson.D, skip, limit int64) ([]models.Comment, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOptions := options.Find().SetSkip(skip).SetSort(sort)
	if limit > 0 {
		findOptions.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	comments := make([]models.Comment, 0)
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}
