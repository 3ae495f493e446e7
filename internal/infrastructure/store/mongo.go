package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// versionField is the document version key, shared with Mongoose documents.
const versionField = "__v"

// MongoStore keeps each collection in a MongoDB collection of the same name.
// Documents must carry bson tags matching their json tags.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// ConnectMongo connects and pings the server.
func ConnectMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoStore{client: client, db: client.Database(database)}, nil
}

// EnsureIndexes creates the indexes the application relies on.
func (ms *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := ms.db.Collection(CollectionUsers).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create users.email index: %w", err)
	}
	_, err = ms.db.Collection(CollectionOrders).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create orders.user index: %w", err)
	}
	return nil
}

func (ms *MongoStore) Insert(ctx context.Context, collection, id string, doc any) error {
	_, err := ms.db.Collection(collection).InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateID
	}
	if err != nil {
		return fmt.Errorf("insert %s/%s: %w", collection, id, err)
	}
	return nil
}

func (ms *MongoStore) Get(ctx context.Context, collection, id string, out any) error {
	err := ms.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return nil
}

func (ms *MongoStore) Replace(ctx context.Context, collection, id string, version int64, doc any) error {
	coll := ms.db.Collection(collection)
	res, err := coll.ReplaceOne(ctx, bson.M{"_id": id, versionField: version}, doc)
	if err != nil {
		return fmt.Errorf("replace %s/%s: %w", collection, id, err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrVersionConflict
}

func (ms *MongoStore) Delete(ctx context.Context, collection, id string) error {
	res, err := ms.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (ms *MongoStore) Find(ctx context.Context, collection string, q Query, out any) error {
	findOptions := options.Find()
	if q.SortBy != "" {
		dir := 1
		if q.Descending {
			dir = -1
		}
		findOptions.SetSort(bson.D{{Key: q.SortBy, Value: dir}})
	}
	if q.Skip > 0 {
		findOptions.SetSkip(q.Skip)
	}
	if q.Limit > 0 {
		findOptions.SetLimit(q.Limit)
	}

	cursor, err := ms.db.Collection(collection).Find(ctx, mongoFilter(q), findOptions)
	if err != nil {
		return fmt.Errorf("find %s: %w", collection, err)
	}
	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("decode %s: %w", collection, err)
	}
	return nil
}

func (ms *MongoStore) Count(ctx context.Context, collection string, q Query) (int64, error) {
	n, err := ms.db.Collection(collection).CountDocuments(ctx, mongoFilter(q))
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return n, nil
}

func (ms *MongoStore) Close(ctx context.Context) error {
	return ms.client.Disconnect(ctx)
}

// mongoFilter converts q into a filter document. Search terms are quoted so
// they match literally.
func mongoFilter(q Query) bson.M {
	filter := bson.M{}
	for field, value := range q.Equals {
		filter[field] = value
	}
	if q.Search.active() {
		filter[q.Search.Field] = bson.M{
			"$regex":   regexp.QuoteMeta(q.Search.Term),
			"$options": "i",
		}
	}
	return filter
}
