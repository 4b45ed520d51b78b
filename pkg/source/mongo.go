package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dtnitsch/bbs-archive-parser/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Mongo reads documents from the archive database, one collection per board.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
	logger *slog.Logger
}

// OpenMongo connects to uri and selects the collection for board.
func OpenMongo(ctx context.Context, uri, database, board string, logger *slog.Logger) (*Mongo, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to reach mongo: %w", err)
	}
	return &Mongo{
		client: client,
		coll:   client.Database(database).Collection(board),
		logger: logger,
	}, nil
}

var noID = options.Find().SetProjection(bson.D{{Key: "_id", Value: 0}})

func (m *Mongo) Count(ctx context.Context, reids []string) (int, error) {
	if len(reids) > 0 {
		return len(reids), nil
	}
	n, err := m.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return int(n), nil
}

func (m *Mongo) Documents(ctx context.Context, reids []string, fn func(*models.RawDocument) error) error {
	if len(reids) > 0 {
		for _, reid := range reids {
			doc, err := m.Document(ctx, reid)
			if errors.Is(err, ErrNotFound) {
				m.logger.Warn("document not found", "reid", reid)
				continue
			}
			if err != nil {
				return err
			}
			if err := fn(doc); err != nil {
				return err
			}
		}
		return nil
	}

	cur, err := m.coll.Find(ctx, bson.D{}, noID)
	if err != nil {
		return fmt.Errorf("failed to query documents: %w", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		doc := &models.RawDocument{}
		if err := cur.Decode(doc); err != nil {
			return fmt.Errorf("failed to decode document: %w", err)
		}
		if err := fn(doc); err != nil {
			return err
		}
	}
	if err := cur.Err(); err != nil {
		return fmt.Errorf("cursor failed: %w", err)
	}
	return nil
}

func (m *Mongo) Document(ctx context.Context, reid string) (*models.RawDocument, error) {
	doc := &models.RawDocument{}
	err := m.coll.FindOne(ctx, bson.D{{Key: "reid", Value: reid}}).Decode(doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: reid %s", ErrNotFound, reid)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load reid %s: %w", reid, err)
	}
	return doc, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
