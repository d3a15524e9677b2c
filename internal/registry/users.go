package registry

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"chatfilter/internal/constants"
	"chatfilter/internal/filter"
	"chatfilter/pkg/metrics"
)

// UserStore resolves users and tells whether a user is a global admin.
type UserStore interface {
	filter.UserRegistry
	IsAdmin(ctx context.Context, userID int64) (bool, error)
}

type userDocument struct {
	ID        int64     `bson:"_id"`
	Name      string    `bson:"name"`
	NameLower string    `bson:"name_lower"`
	Admin     bool      `bson:"admin"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type MongoUserRegistry struct {
	collection *mongo.Collection
}

func NewMongoUserRegistry(db *mongo.Database) *MongoUserRegistry {
	return &MongoUserRegistry{collection: db.Collection(constants.UsersCollection)}
}

// GetUser accepts a numeric user ID or a case-insensitive name.
func (r *MongoUserRegistry) GetUser(ctx context.Context, nameOrID string) (*filter.User, error) {
	filterDoc := bson.M{"name_lower": strings.ToLower(nameOrID)}
	if id, err := strconv.ParseInt(nameOrID, 10, 64); err == nil {
		filterDoc = bson.M{"$or": bson.A{bson.M{"_id": id}, filterDoc}}
	}

	doc, err := r.find(ctx, "users.get", filterDoc)
	if err != nil || doc == nil {
		return nil, err
	}
	return &filter.User{ID: doc.ID, Name: doc.Name}, nil
}

func (r *MongoUserRegistry) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	doc, err := r.find(ctx, "users.is_admin", bson.M{"_id": userID})
	if err != nil || doc == nil {
		return false, err
	}
	return doc.Admin, nil
}

// Upsert stores a user. It is used by operators to seed the registry.
func (r *MongoUserRegistry) Upsert(ctx context.Context, user filter.User, admin bool) error {
	doc := userDocument{
		ID:        user.ID,
		Name:      user.Name,
		NameLower: strings.ToLower(user.Name),
		Admin:     admin,
		UpdatedAt: time.Now(),
	}

	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": user.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

func (r *MongoUserRegistry) find(ctx context.Context, operation string, filterDoc bson.M) (doc *userDocument, err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveDatabaseQuery(constants.ServiceName, "mongodb", operation, time.Since(start), err)
	}()

	var d userDocument
	err = r.collection.FindOne(ctx, filterDoc).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &d, nil
}
