package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the stores rely on. The text index on
// movies.title is required for relevance-ranked search.
func EnsureIndexes(ctx context.Context, db *DB) ([]string, error) {
	specs := map[string][]mongo.IndexModel{
		usersCollection: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("email_unique"),
			},
		},
		moviesCollection: {
			{
				Keys:    bson.D{{Key: "title", Value: "text"}},
				Options: options.Index().SetName("title_text"),
			},
			{
				Keys:    bson.D{{Key: "genre", Value: 1}},
				Options: options.Index().SetName("genre"),
			},
			{
				Keys:    bson.D{{Key: "createdBy", Value: 1}},
				Options: options.Index().SetName("created_by"),
			},
			{
				Keys:    bson.D{{Key: "createdAt", Value: -1}},
				Options: options.Index().SetName("created_at_desc"),
			},
		},
	}

	var created []string
	for _, coll := range []string{usersCollection, moviesCollection} {
		names, err := db.Database.Collection(coll).Indexes().CreateMany(ctx, specs[coll])
		if err != nil {
			return created, fmt.Errorf("failed to create indexes on %s: %w", coll, err)
		}
		for _, name := range names {
			created = append(created, coll+"."+name)
		}
	}

	return created, nil
}
