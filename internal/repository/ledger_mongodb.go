package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Spizzerp/CampaignNotionAutomation/internal/config"
	"github.com/Spizzerp/CampaignNotionAutomation/internal/model"
)

const mongoLedgerCollection = "processed_children"

// MongoLedger stores one document per child with _id "<campaign>#<child>".
type MongoLedger struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func NewMongoLedger(ctx context.Context, cfg config.LedgerConfig) (*MongoLedger, error) {
	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("mongodb uri is empty")
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &MongoLedger{
		client:     client,
		collection: client.Database(cfg.MongoDatabase).Collection(mongoLedgerCollection),
	}, nil
}

// NewMongoLedgerWithCollection wraps an existing collection. Close leaves the
// collection's client connected.
func NewMongoLedgerWithCollection(coll *mongo.Collection) *MongoLedger {
	return &MongoLedger{collection: coll}
}

func (m *MongoLedger) Lookup(ctx context.Context, campaignID, childID string) (*model.LedgerRecord, error) {
	var rec model.LedgerRecord
	err := m.collection.FindOne(ctx, bson.M{"_id": ledgerKey(campaignID, childID)}).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find ledger record: %w", err)
	}
	return &rec, nil
}

// Record upserts with $setOnInsert so an existing document is never changed.
func (m *MongoLedger) Record(ctx context.Context, rec model.LedgerRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := m.collection.UpdateOne(ctx,
		bson.M{"_id": ledgerKey(rec.CampaignID, rec.ChildID)},
		bson.M{"$setOnInsert": rec},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to store ledger record: %w", err)
	}
	return nil
}

func (m *MongoLedger) Close() error {
	if m.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

var _ ChildLedger = (*MongoLedger)(nil)
