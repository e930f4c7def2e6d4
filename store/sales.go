package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"storepos/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const maxRecent = 200

type MongoSales struct {
	collection *mongo.Collection
}

func NewMongoSales(db *mongo.Database) *MongoSales {
	return &MongoSales{collection: db.Collection("sales")}
}

func (m *MongoSales) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "cashier_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "invoice_no", Value: 1}}},
	}
	if _, err := m.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create sales indexes: %w", err)
	}
	return nil
}

func (m *MongoSales) Record(ctx context.Context, r models.SaleRecord) error {
	if _, err := m.collection.InsertOne(ctx, r); err != nil {
		return fmt.Errorf("error recording sale: %w", err)
	}
	return nil
}

func (m *MongoSales) Recent(ctx context.Context, cashierID string, limit int) ([]models.SaleRecord, error) {
	filter := bson.M{}
	if cashierID != "" {
		filter["cashier_id"] = cashierID
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(clampLimit(limit)))

	cursor, err := m.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error retrieving sales: %w", err)
	}
	defer cursor.Close(ctx)

	sales := []models.SaleRecord{}
	if err := cursor.All(ctx, &sales); err != nil {
		return nil, fmt.Errorf("error decoding sales: %w", err)
	}
	return sales, nil
}

// MemorySales keeps the journal in memory; it is lost on restart.
type MemorySales struct {
	mu    sync.RWMutex
	sales []models.SaleRecord
}

func NewMemorySales() *MemorySales {
	return &MemorySales{}
}

func (m *MemorySales) Record(_ context.Context, r models.SaleRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sales = append(m.sales, r)
	return nil
}

func (m *MemorySales) Recent(_ context.Context, cashierID string, limit int) ([]models.SaleRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.SaleRecord{}
	for _, r := range m.sales {
		if cashierID == "" || r.CashierID == cashierID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if n := clampLimit(limit); len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > maxRecent {
		return maxRecent
	}
	return limit
}
