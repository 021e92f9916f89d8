package seeds

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/IshaanNene/storyspider/internal/config"
)

// MongoSource reads seeds from the "url" field of every document in a
// MongoDB collection. The field holds either an array of URLs or a single URL.
type MongoSource struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *slog.Logger
}

// NewMongoSource connects to the seed store described by cfg.
func NewMongoSource(cfg config.SeedsConfig, logger *slog.Logger) (*MongoSource, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	uri := "mongodb://" + net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetServerSelectionTimeout(cfg.ConnectTimeout))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	return &MongoSource{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
		logger:     logger.With("component", "mongo_seeds"),
	}, nil
}

// Seeds implements Source.
func (s *MongoSource) Seeds(ctx context.Context) ([]string, error) {
	opts := options.Find().SetProjection(bson.D{{Key: "url", Value: 1}})
	cur, err := s.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find: %w", err)
	}
	defer cur.Close(ctx)

	set := newOrderedSet()
	docs := 0
	for cur.Next(ctx) {
		docs++
		urls, err := urlsFromDocument(cur.Current)
		if err != nil {
			s.logger.Warn("skipping seed document", "error", err)
			continue
		}
		set.add(urls...)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("mongodb cursor: %w", err)
	}

	s.logger.Info("seeds loaded", "collection", s.collection.Name(), "documents", docs, "urls", len(set.items))
	return set.items, nil
}

// Close disconnects from MongoDB.
func (s *MongoSource) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func urlsFromDocument(doc bson.Raw) ([]string, error) {
	val, err := doc.LookupErr("url")
	if err != nil {
		return nil, fmt.Errorf("document has no url field: %w", err)
	}

	switch val.Type {
	case bson.TypeString:
		return []string{val.StringValue()}, nil
	case bson.TypeArray:
		var urls []string
		if err := val.Unmarshal(&urls); err != nil {
			return nil, fmt.Errorf("decode url array: %w", err)
		}
		return urls, nil
	default:
		return nil, fmt.Errorf("unsupported url field type %s", val.Type)
	}
}
