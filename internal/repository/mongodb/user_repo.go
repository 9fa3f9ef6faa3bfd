package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"eventsapi/internal/domain"
)

type userDocument struct {
	ID   string `bson:"_id"`
	Name string `bson:"name"`
}

type userDirectory struct {
	DB *mongo.Database
}

// NewUserDirectory resolves display names from the users collection. Users are never written here.
func NewUserDirectory(db *mongo.Database) domain.UserDirectory {
	return &userDirectory{DB: db}
}

func (d *userDirectory) DisplayNames(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	filter := bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: refIDs(ids)}}}}
	opts := options.Find().SetProjection(bson.D{{Key: "name", Value: 1}})
	cursor, err := d.DB.Collection(UsersCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	for _, u := range docs {
		names[u.ID] = u.Name
	}
	return names, nil
}
