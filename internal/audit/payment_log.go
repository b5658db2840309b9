// Package audit keeps a record of every exchange with the payment provider.
package audit

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	OperationInitialize = "initialize"
	OperationVerify     = "verify"

	OutcomeSucceeded        = "succeeded"
	OutcomeAlreadyVerified  = "already_verified"
	OutcomeNotSuccessful    = "not_successful"
	OutcomeProviderRejected = "provider_rejected"
	OutcomeTransportFailure = "transport_failure"
	OutcomeFailed           = "failed"

	retention = 365 * 24 * time.Hour
)

// Entry is one call to the payment provider and what came of it.
type Entry struct {
	Operation string    `bson:"operation"`
	Reference string    `bson:"reference,omitempty"`
	UserID    int64     `bson:"user_id"`
	OrderID   int64     `bson:"order_id,omitempty"`
	CartCode  string    `bson:"cart_code,omitempty"`
	Amount    int64     `bson:"amount_minor"`
	Outcome   string    `bson:"outcome"`
	Detail    string    `bson:"detail,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
}

type PaymentLog interface {
	Record(ctx context.Context, e Entry) error
}

type MongoPaymentLog struct {
	collection *mongo.Collection
}

func NewMongoPaymentLog(db *mongo.Database) *MongoPaymentLog {
	return &MongoPaymentLog{
		collection: db.Collection("payment_events"),
	}
}

func (m *MongoPaymentLog) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "reference", Value: 1}, {Key: "created_at", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(retention.Seconds())),
		},
	}

	if _, err := m.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (m *MongoPaymentLog) Record(ctx context.Context, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if _, err := m.collection.InsertOne(ctx, e); err != nil {
		return fmt.Errorf("failed to record payment event: %w", err)
	}
	return nil
}

// ListByReference returns the events recorded for a provider reference, oldest first.
func (m *MongoPaymentLog) ListByReference(ctx context.Context, reference string) ([]Entry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := m.collection.Find(ctx, bson.M{"reference": reference}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find payment events: %w", err)
	}
	defer cursor.Close(ctx)

	entries := make([]Entry, 0)
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode payment events: %w", err)
	}
	return entries, nil
}
