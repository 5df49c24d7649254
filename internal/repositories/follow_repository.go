package repositories

import (
	"context"
	"fmt"

	"github.com/anonto42/circle/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const followsCollection = "follows"

// FollowRepository defines the interface for follow data operations
type FollowRepository interface {
	CreateFollow(ctx context.Context, follow *models.Follow) error
	DeleteFollow(ctx context.Context, followerID, followingID uint) error
	IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error)
	GetFollowersCount(ctx context.Context, userID uint) (int64, error)
	GetFollowingCount(ctx context.Context, userID uint) (int64, error)
	GetFollowers(ctx context.Context, userID uint, skip, limit int64) ([]models.Follow, int64, error)
	GetFollowing(ctx context.Context, userID uint, skip, limit int64) ([]models.Follow, int64, error)
	GetFollowingIDs(ctx context.Context, userID uint) ([]uint, error)
}

// MongoFollowRepository implements FollowRepository for MongoDB
type MongoFollowRepository struct {
	collection *mongo.Collection
}

func NewMongoFollowRepository(db *mongo.Database) *MongoFollowRepository {
	return &MongoFollowRepository{collection: db.Collection(followsCollection)}
}

// CreateFollow inserts the edge. The unique (follower_id, following_id) index turns
// a concurrent duplicate into ErrAlreadyExists.
func (r *MongoFollowRepository) CreateFollow(ctx context.Context, follow *models.Follow) error {
	const op = "repositories/follows/CreateFollow"

	follow.ID = primitive.NewObjectID()
	if _, err := r.collection.InsertOne(ctx, follow); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%s: %w", op, ErrAlreadyExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *MongoFollowRepository) DeleteFollow(ctx context.Context, followerID, followingID uint) error {
	const op = "repositories/follows/DeleteFollow"

	res, err := r.collection.DeleteOne(ctx, bson.M{"follower_id": followerID, "following_id": followingID})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

func (r *MongoFollowRepository) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	const op = "repositories/follows/IsFollowing"

	n, err := r.collection.CountDocuments(ctx,
		bson.M{"follower_id": followerID, "following_id": followingID},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n > 0, nil
}

func (r *MongoFollowRepository) GetFollowersCount(ctx context.Context, userID uint) (int64, error) {
	const op = "repositories/follows/GetFollowersCount"

	n, err := r.collection.CountDocuments(ctx, bson.M{"following_id": userID})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

func (r *MongoFollowRepository) GetFollowingCount(ctx context.Context, userID uint) (int64, error) {
	const op = "repositories/follows/GetFollowingCount"

	n, err := r.collection.CountDocuments(ctx, bson.M{"follower_id": userID})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// GetFollowers lists edges pointing at userID, most recent first.
func (r *MongoFollowRepository) GetFollowers(ctx context.Context, userID uint, skip, limit int64) ([]models.Follow, int64, error) {
	const op = "repositories/follows/GetFollowers"

	follows, total, err := r.list(ctx, bson.M{"following_id": userID}, skip, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return follows, total, nil
}

// GetFollowing lists edges leaving userID, most recent first.
func (r *MongoFollowRepository) GetFollowing(ctx context.Context, userID uint, skip, limit int64) ([]models.Follow, int64, error) {
	const op = "repositories/follows/GetFollowing"

	follows, total, err := r.list(ctx, bson.M{"follower_id": userID}, skip, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return follows, total, nil
}

func (r *MongoFollowRepository) GetFollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	const op = "repositories/follows/GetFollowingIDs"

	opts := options.Find().SetProjection(bson.M{"following_id": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"follower_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer cursor.Close(ctx)

	var follows []models.Follow
	if err := cursor.All(ctx, &follows); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ids := make([]uint, 0, len(follows))
	for _, f := range follows {
		ids = append(ids, f.FollowingID)
	}
	return ids, nil
}

func (r *MongoFollowRepository) list(ctx context.Context, filter bson.M, skip, limit int64) ([]models.Follow, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOptions := options.Find().SetSkip(skip).SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		findOptions.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	follows := make([]models.Follow, 0)
	if err := cursor.All(ctx, &follows); err != nil {
		return nil, 0, err
	}
	return follows, total, nil
}
