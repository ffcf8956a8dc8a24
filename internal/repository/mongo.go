package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OpenMongoDiscountStore connects to uri, verifies the server is reachable and makes
// sure the discount indexes exist. Close releases the client.
func OpenMongoDiscountStore(ctx context.Context, uri, database string) (*MongoDiscountStore, error) {
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetAppName("storefront").
		SetConnectTimeout(10*time.Second).
		SetServerSelectionTimeout(5*time.Second).
		SetMaxPoolSize(50))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	store := NewMongoDiscountStore(client.Database(database))
	if err := store.CreateIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("discount indexes: %w", err)
	}
	return store, nil
}

func (s *MongoDiscountStore) Close(ctx context.Context) error {
	return s.collection.Database().Client().Disconnect(ctx)
}
