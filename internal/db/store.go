package db

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Store wraps the Mongo database and exposes blog and user persistence.
type Store struct {
	client *mongo.Client
	blogs  *mongo.Collection
	users  *mongo.Collection

	// textSearch is true once the title/content text index exists. When it
	// is false the query builder falls back to regex matching.
	textSearch bool

	log zerolog.Logger
}

func NewStore(ctx context.Context, uri, dbName string, log zerolog.Logger) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	database := client.Database(dbName)
	return &Store{
		client: client,
		blogs:  database.Collection("blogs"),
		users:  database.Collection("users"),
		log:    log,
	}, nil
}

func (s *Store) Close(ctx context.Context) {
	if s.client != nil {
		_ = s.client.Disconnect(ctx)
	}
}

// TextSearch reports whether full-text search is available.
func (s *Store) TextSearch() bool {
	return s.textSearch
}

// EnsureIndexes creates the indexes the queries rely on. Failure to create
// the text index is not fatal: the store keeps the regex search fallback.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.blogs.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "createdAt", Value: -1}},
		},
	})
	if err != nil {
		return fmt.Errorf("create blog indexes: %w", err)
	}

	_, err = s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}

	_, err = s.blogs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "title", Value: "text"},
			{Key: "content", Value: "text"},
		},
		Options: options.Index().SetWeights(bson.D{
			{Key: "title", Value: 10},
			{Key: "content", Value: 1},
		}),
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("text index unavailable, using regex search fallback")
		s.textSearch = false
		return nil
	}
	s.textSearch = true
	return nil
}
