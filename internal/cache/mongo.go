package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoTimeout = 10 * time.Second

// MongoStore is a Store backed by a MongoDB collection, for caches shared
// between machines. One document per fingerprint.
type MongoStore struct {
	client  *mongo.Client
	entries *mongo.Collection
}

type mongoEntry struct {
	Fingerprint string    `bson:"_id"`
	HTML        []byte    `bson:"html"`
	CreatedAt   time.Time `bson:"created_at"`
}

// NewMongoStore connects to uri and uses database.collection for entries.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	if uri == "" {
		return nil, fault(ErrOpenFailed, "", errors.New("mongo cache requires a uri"))
	}
	if database == "" {
		database = "sitebuilder"
	}
	if collection == "" {
		collection = "render_cache"
	}

	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fault(ErrOpenFailed, "", fmt.Errorf("connect to MongoDB: %w", err))
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fault(ErrOpenFailed, "", fmt.Errorf("ping MongoDB: %w", err))
	}

	return &MongoStore{
		client:  client,
		entries: client.Database(database).Collection(collection),
	}, nil
}

func (s *MongoStore) Get(ctx context.Context, fp string) ([]byte, bool, error) {
	var entry mongoEntry
	err := s.entries.FindOne(ctx, bson.M{"_id": fp}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fault(ErrReadFailed, fp, err)
	}
	return entry.HTML, true, nil
}

// Put replaces the whole document, which MongoDB applies atomically.
func (s *MongoStore) Put(ctx context.Context, fp string, html []byte) error {
	entry := mongoEntry{Fingerprint: fp, HTML: html, CreatedAt: time.Now().UTC()}
	_, err := s.entries.ReplaceOne(ctx, bson.M{"_id": fp}, entry, options.Replace().SetUpsert(true))
	if err != nil {
		return fault(ErrWriteFailed, fp, err)
	}
	return nil
}

func (s *MongoStore) Sweep(ctx context.Context, live map[string]struct{}) (int, error) {
	keep := make([]string, 0, len(live))
	for fp := range live {
		keep = append(keep, fp)
	}
	res, err := s.entries.DeleteMany(ctx, bson.M{"_id": bson.M{"$nin": keep}})
	if err != nil {
		return 0, fault(ErrSweepFailed, "", err)
	}
	return int(res.DeletedCount), nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}
