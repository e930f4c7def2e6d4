package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storepos/checkout"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoSessions struct {
	collection *mongo.Collection
}

func NewMongoSessions(db *mongo.Database) *MongoSessions {
	return &MongoSessions{collection: db.Collection("checkout_sessions")}
}

func (m *MongoSessions) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "updated_at", Value: 1}}},
		{Keys: bson.D{{Key: "cashier_id", Value: 1}, {Key: "updated_at", Value: -1}}},
	}
	if _, err := m.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create session indexes: %w", err)
	}
	return nil
}

func (m *MongoSessions) Create(ctx context.Context, s *checkout.Session) error {
	s.Version = 1
	if _, err := m.collection.InsertOne(ctx, s); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (m *MongoSessions) Get(ctx context.Context, id string) (*checkout.Session, error) {
	var s checkout.Session
	err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &s, nil
}

func (m *MongoSessions) Update(ctx context.Context, s *checkout.Session) error {
	loaded := s.Version
	s.Version = loaded + 1

	res, err := m.collection.ReplaceOne(ctx, bson.M{"_id": s.ID, "version": loaded}, s)
	if err != nil {
		s.Version = loaded
		return fmt.Errorf("failed to update session: %w", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	s.Version = loaded
	n, err := m.collection.CountDocuments(ctx, bson.M{"_id": s.ID}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return ErrVersionConflict
}

func (m *MongoSessions) Delete(ctx context.Context, id string) error {
	res, err := m.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteIdle removes sessions not touched since before. Sessions in the
// middle of a submission are left alone.
func (m *MongoSessions) DeleteIdle(ctx context.Context, before time.Time) (int64, error) {
	filter := bson.M{
		"updated_at": bson.M{"$lt": before},
		"status":     bson.M{"$ne": checkout.StatusProcessing},
	}
	res, err := m.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to purge idle sessions: %w", err)
	}
	return res.DeletedCount, nil
}
