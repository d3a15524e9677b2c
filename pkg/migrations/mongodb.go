package migrations

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"chatfilter/internal/constants"
)

// EnsureMongoCollection creates the users collection indexes. It is safe to
// run repeatedly.
func EnsureMongoCollection(ctx context.Context, db *mongo.Database) error {
	collection := db.Collection(constants.UsersCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name_lower", Value: 1}},
			Options: options.Index().SetName("idx_users_name_lower").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "admin", Value: 1}},
			Options: options.Index().SetName("idx_users_admin").SetSparse(true),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		if !strings.Contains(err.Error(), "already exists") {
			return fmt.Errorf("failed to create indexes: %w", err)
		}
	}

	return nil
}
