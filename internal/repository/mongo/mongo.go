// Package mongo is the primary PlayerRepository, backed by a MongoDB collection
// with unique indexes on id and shortname.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/maxviazov/tennis-players-service/internal/config"
)

const (
	defaultDatabase   = "tennis"
	defaultCollection = "players"
)

// Store is a thin adapter over one MongoDB collection.
type Store struct {
	client  *mongodriver.Client
	players *mongodriver.Collection
	log     zerolog.Logger
	now     func() time.Time
}

// New connects, pings the primary and makes sure the indexes exist.
func New(ctx context.Context, cfg config.MongoConfig, logger zerolog.Logger) (*Store, error) {
	if cfg.URI == "" {
		return nil, errors.New("mongo: empty uri")
	}
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	cli, err := mongodriver.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := cli.Ping(ctx, readpref.Primary()); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	dbName, collName := cfg.Database, cfg.Collection
	if dbName == "" {
		dbName = defaultDatabase
	}
	if collName == "" {
		collName = defaultCollection
	}

	s := &Store{
		client:  cli,
		players: cli.Database(dbName).Collection(collName),
		log:     logger.With().Str("module", "repository").Str("component", "mongo").Logger(),
		// MongoDB DateTime keeps milliseconds.
		now: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = s.Close(context.Background())
		return nil, err
	}

	s.log.Info().Str("db", dbName).Str("collection", collName).Msg("connected to MongoDB")
	return s, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// ensureIndexes creates the indexes the player queries rely on:
//   - unique id and unique shortname (duplicate detection)
//   - data.rank for the default listing order
//   - country.code for the country filter and analytics
func (s *Store) ensureIndexes(ctx context.Context) error {
	models := []mongodriver.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetName("uniq_id").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "shortname", Value: 1}},
			Options: options.Index().SetName("uniq_shortname").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "data.rank", Value: 1}, {Key: "id", Value: 1}},
			Options: options.Index().SetName("rank_id"),
		},
		{
			Keys:    bson.D{{Key: "country.code", Value: 1}},
			Options: options.Index().SetName("country_code"),
		},
	}

	if _, err := s.players.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("mongo ensure indexes: %w", err)
	}
	return nil
}
