package store

import (
	"context"
	"fmt"
	"log"

	"github.com/example/ec-storefront/internal/config"
)

// Open builds the backend selected by cfg.Driver and prepares its schema.
func Open(ctx context.Context, cfg config.Store) (DocumentStore, error) {
	switch cfg.Driver {
	case "", "memory":
		log.Println("[Store] Using in-memory document store")
		return NewMemoryStore(), nil

	case "mongo":
		ms, err := ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		if err := ms.EnsureIndexes(ctx); err != nil {
			_ = ms.Close(ctx)
			return nil, err
		}
		log.Printf("[Store] Connected to MongoDB database %s", cfg.MongoDatabase)
		return ms, nil

	case "postgres":
		db, err := ConnectPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		ps := NewPostgresStore(db)
		if err := ps.EnsureSchema(ctx); err != nil {
			_ = ps.Close(ctx)
			return nil, err
		}
		log.Println("[Store] Connected to PostgreSQL")
		return ps, nil

	case "dynamodb":
		client, err := NewDynamoClient(ctx, cfg.DynamoEndpoint)
		if err != nil {
			return nil, err
		}
		log.Printf("[Store] Using DynamoDB table %s", cfg.DynamoTable)
		return NewDynamoStore(client, cfg.DynamoTable), nil
	}
	return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.Driver)
}
