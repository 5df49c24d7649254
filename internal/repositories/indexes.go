package repositories

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the secondary indexes the repositories rely on:
//   - posts: owner + status + created_at for quota counting and profile listing,
//     status + visibility + created_at for the public timeline
//   - comments: post + parent + status + created_at for root listing,
//     parent + status + created_at for reply listing
//   - follows: unique (follower, following), plus following + created_at for follower lists
//   - notifications: recipient + is_read + created_at for inbox and unread counts
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		postsCollection: {
			{
				Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("owner_status_created"),
			},
			{
				Keys:    bson.D{{Key: "status", Value: 1}, {Key: "visibility", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("status_visibility_created"),
			},
		},
		commentsCollection: {
			{
				Keys: bson.D{
					{Key: "post_id", Value: 1},
					{Key: "parent_id", Value: 1},
					{Key: "status", Value: 1},
					{Key: "created_at", Value: -1},
				},
				Options: options.Index().SetName("post_parent_status_created"),
			},
			{
				Keys:    bson.D{{Key: "parent_id", Value: 1}, {Key: "status", Value: 1}, {Key: "created_at", Value: 1}},
				Options: options.Index().SetName("parent_status_created"),
			},
		},
		followsCollection: {
			{
				Keys:    bson.D{{Key: "follower_id", Value: 1}, {Key: "following_id", Value: 1}},
				Options: options.Index().SetName("uniq_follower_following").SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "following_id", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("following_created"),
			},
		},
		notificationsCollection: {
			{
				Keys:    bson.D{{Key: "recipient_id", Value: 1}, {Key: "is_read", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("recipient_read_created"),
			},
		},
	}

	for collection, models := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("mongo ensure indexes on %s: %w", collection, err)
		}
	}
	return nil
}
