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

const postsCollection = "posts"

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetPostsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Post, error)
	CountActiveSince(ctx context.Context, ownerID uint, since time.Time) (int64, error)
	UpdateOwned(ctx context.Context, id string, ownerID uint, patch models.PostPatch, now time.Time) (*models.Post, error)
	SoftDeleteOwned(ctx context.Context, id string, ownerID uint, now time.Time) error
	AddLike(ctx context.Context, id string, userID uint) (*models.Post, bool, error)
	RemoveLike(ctx context.Context, id string, userID uint) (*models.Post, error)
	AddView(ctx context.Context, id string, userID uint) (*models.Post, error)
	AddShare(ctx context.Context, id string, userID uint) error
	ListByOwner(ctx context.Context, ownerID uint, visibilities []models.Visibility, skip, limit int64) ([]models.Post, int64, error)
	ListFeed(ctx context.Context, viewerID uint, followingIDs []uint, skip, limit int64) ([]models.Post, int64, error)
	ListPublic(ctx context.Context, skip, limit int64) ([]models.Post, int64, error)
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection(postsCollection)}
}

// CreatePost inserts a new post. Nil engagement sets are stored as empty arrays
// so that $addToSet and $size always operate on arrays.
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	const op = "repositories/posts/CreatePost"

	post.ID = primitive.NewObjectID()
	if post.Images == nil {
		post.Images = []string{}
	}
	if post.Likes == nil {
		post.Likes = []uint{}
	}
	if post.Views == nil {
		post.Views = []uint{}
	}
	if post.Shares == nil {
		post.Shares = []uint{}
	}
	if _, err := r.collection.InsertOne(ctx, post); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	const op = "repositories/posts/GetPostByID"

	objID, err := parseObjectID(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var post models.Post
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &post, nil
}

// CountActiveSince counts active posts by ownerID created at or after since.
// GetPostsByIDs returns the posts with the given ids in any status. Unknown ids
// are skipped.
func (r *MongoPostRepository) GetPostsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Post, error) {
	const op = "repositories/posts/GetPostsByIDs"

	posts := make([]models.Post, 0, len(ids))
	if len(ids) == 0 {
		return posts, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return posts, nil
}

func (r *MongoPostRepository) CountActiveSince(ctx context.Context, ownerID uint, since time.Time) (int64, error) {
	const op = "repositories/posts/CountActiveSince"

	filter := bson.M{
		"owner_id":   ownerID,
		"status":     models.StatusActive,
		"created_at": bson.M{"$gte": since},
	}
	n, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// UpdateOwned applies patch only when the post exists, belongs to ownerID and is active.
// Shares only accept content edits; a patch touching images or a non-public visibility
// does not match a share. ErrNotFound is returned when the guard matches nothing.
func (r *MongoPostRepository) UpdateOwned(ctx context.Context, id string, ownerID uint, patch models.PostPatch, now time.Time) (*models.Post, error) {
	const op = "repositories/posts/UpdateOwned"

	objID, err := parseObjectID(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	filter := bson.M{"_id": objID, "owner_id": ownerID, "status": models.StatusActive}
	if patch.Images != nil || (patch.Visibility != nil && *patch.Visibility != models.VisibilityPublic) {
		filter["shared_from"] = bson.M{"$exists": false}
	}

	set := bson.M{"updated_at": now}
	if patch.Content != nil {
		set["content"] = *patch.Content
	}
	if patch.Images != nil {
		set["images"] = patch.Images
	}
	if patch.Visibility != nil {
		set["visibility"] = *patch.Visibility
	}
	if patch.Tags != nil {
		set["tags"] = patch.Tags
	}

	var post models.Post
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&post); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &post, nil
}

// SoftDeleteOwned flips an active post owned by ownerID to deleted.
func (r *MongoPostRepository) SoftDeleteOwned(ctx context.Context, id string, ownerID uint, now time.Time) error {
	const op = "repositories/posts/SoftDeleteOwned"

	objID, err := parseObjectID(id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	filter := bson.M{"_id": objID, "owner_id": ownerID, "status": models.StatusActive}
	update := bson.M{"$set": bson.M{"status": models.StatusDeleted, "updated_at": now}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// AddLike adds userID to the like set. The boolean reports whether the set changed.
func (r *MongoPostRepository) AddLike(ctx context.Context, id string, userID uint) (*models.Post, bool, error) {
	const op = "repositories/posts/AddLike"

	objID, err := parseObjectID(id)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	post, err := r.findOneAndUpdate(ctx,
		bson.M{"_id": objID, "status": models.StatusActive, "likes": bson.M{"$ne": userID}},
		bson.M{"$addToSet": bson.M{"likes": userID}},
	)
	if err == nil {
		return post, true, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	// Already liked, or the post vanished in between.
	post, err = r.GetPostByID(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return post, false, nil
}

func (r *MongoPostRepository) RemoveLike(ctx context.Context, id string, userID uint) (*models.Post, error) {
	const op = "repositories/posts/RemoveLike"

	objID, err := parseObjectID(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	post, err := r.findOneAndUpdate(ctx,
		bson.M{"_id": objID, "status": models.StatusActive},
		bson.M{"$pull": bson.M{"likes": userID}},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return post, nil
}

func (r *MongoPostRepository) AddView(ctx context.Context, id string, userID uint) (*models.Post, error) {
	const op = "repositories/posts/AddView"

	objID, err := parseObjectID(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	post, err := r.findOneAndUpdate(ctx,
		bson.M{"_id": objID, "status": models.StatusActive},
		bson.M{"$addToSet": bson.M{"views": userID}},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return post, nil
}

func (r *MongoPostRepository) AddShare(ctx context.Context, id string, userID uint) error {
	const op = "repositories/posts/AddShare"

	objID, err := parseObjectID(id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$addToSet": bson.M{"shares": userID}})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// ListByOwner lists active posts of ownerID newest first. A nil visibilities slice
// means every visibility level.
func (r *MongoPostRepository) ListByOwner(ctx context.Context, ownerID uint, visibilities []models.Visibility, skip, limit int64) ([]models.Post, int64, error) {
	const op = "repositories/posts/ListByOwner"

	filter := bson.M{"owner_id": ownerID, "status": models.StatusActive}
	if visibilities != nil {
		filter["visibility"] = bson.M{"$in": visibilities}
	}

	posts, total, err := r.list(ctx, filter, skip, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return posts, total, nil
}

// ListFeed lists the viewer's own active posts together with the public and
// followers-only posts of the accounts the viewer follows.
func (r *MongoPostRepository) ListFeed(ctx context.Context, viewerID uint, followingIDs []uint, skip, limit int64) ([]models.Post, int64, error) {
	const op = "repositories/posts/ListFeed"

	if followingIDs == nil {
		followingIDs = []uint{}
	}
	filter := bson.M{
		"status": models.StatusActive,
		"$or": bson.A{
			bson.M{"owner_id": viewerID},
			bson.M{
				"owner_id":   bson.M{"$in": followingIDs},
				"visibility": bson.M{"$in": bson.A{models.VisibilityPublic, models.VisibilityFollowers}},
			},
		},
	}

	posts, total, err := r.list(ctx, filter, skip, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return posts, total, nil
}

// ListPublic lists every active public post newest first.
func (r *MongoPostRepository) ListPublic(ctx context.Context, skip, limit int64) ([]models.Post, int64, error) {
	const op = "repositories/posts/ListPublic"

	filter := bson.M{"status": models.StatusActive, "visibility": models.VisibilityPublic}
	posts, total, err := r.list(ctx, filter, skip, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return posts, total, nil
}

func (r *MongoPostRepository) list(ctx context.Context, filter bson.M, skip, limit int64) ([]models.Post, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOptions := options.Find().
		SetSkip(skip).
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		findOptions.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	posts := make([]models.Post, 0)
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *MongoPostRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.Post, error) {
	var post models.Post
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&post); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}
