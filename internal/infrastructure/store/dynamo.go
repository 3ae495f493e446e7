package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoStore keeps documents in one DynamoDB table keyed by
// (collection, id). The JSON document is stored as a string attribute and
// queries are evaluated client-side over the collection partition.
type DynamoStore struct {
	client    *dynamodb.Client
	tableName string
}

// createdAtLayout has a fixed width so timestamps sort lexically.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z"

// dynamoDocument represents the DynamoDB item structure
type dynamoDocument struct {
	Collection string `dynamodbav:"collection"`
	ID         string `dynamodbav:"id"`
	Version    int64  `dynamodbav:"version"`
	Data       string `dynamodbav:"data"`
	CreatedAt  string `dynamodbav:"created_at"`
}

func NewDynamoStore(client *dynamodb.Client, tableName string) *DynamoStore {
	return &DynamoStore{client: client, tableName: tableName}
}

// NewDynamoClient builds a client from the default AWS credential chain.
// A non-empty endpoint overrides the service URL (DynamoDB Local).
func NewDynamoClient(ctx context.Context, endpoint string) (*dynamodb.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

func (ds *DynamoStore) key(collection, id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"collection": &types.AttributeValueMemberS{Value: collection},
		"id":         &types.AttributeValueMemberS{Value: id},
	}
}

func (ds *DynamoStore) Insert(ctx context.Context, collection, id string, doc any) error {
	data, err := marshalJSON(doc)
	if err != nil {
		return err
	}

	av, err := attributevalue.MarshalMap(dynamoDocument{
		Collection: collection,
		ID:         id,
		Version:    0,
		Data:       data,
		CreatedAt:  time.Now().UTC().Format(createdAtLayout),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	_, err = ds.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(ds.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if isConditionFailed(err) {
		return ErrDuplicateID
	}
	if err != nil {
		return fmt.Errorf("failed to put document: %w", err)
	}
	return nil
}

func (ds *DynamoStore) Get(ctx context.Context, collection, id string, out any) error {
	doc, err := ds.get(ctx, collection, id)
	if err != nil {
		return err
	}
	return unmarshalJSON(doc.Data, out)
}

func (ds *DynamoStore) get(ctx context.Context, collection, id string) (*dynamoDocument, error) {
	result, err := ds.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(ds.tableName),
		Key:            ds.key(collection, id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	if result.Item == nil {
		return nil, ErrNotFound
	}

	var doc dynamoDocument
	if err := attributevalue.UnmarshalMap(result.Item, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return &doc, nil
}

// Replace uses a conditional write on the version attribute (optimistic locking).
func (ds *DynamoStore) Replace(ctx context.Context, collection, id string, version int64, doc any) error {
	data, err := marshalJSON(doc)
	if err != nil {
		return err
	}

	_, err = ds.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(ds.tableName),
		Key:                 ds.key(collection, id),
		UpdateExpression:    aws.String("SET #data = :data, version = :next"),
		ConditionExpression: aws.String("attribute_exists(id) AND version = :expected"),
		ExpressionAttributeNames: map[string]string{
			"#data": "data",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":data":     &types.AttributeValueMemberS{Value: data},
			":next":     &types.AttributeValueMemberN{Value: strconv.FormatInt(version+1, 10)},
			":expected": &types.AttributeValueMemberN{Value: strconv.FormatInt(version, 10)},
		},
	})
	if isConditionFailed(err) {
		if _, getErr := ds.get(ctx, collection, id); errors.Is(getErr, ErrNotFound) {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	return nil
}

func (ds *DynamoStore) Delete(ctx context.Context, collection, id string) error {
	_, err := ds.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(ds.tableName),
		Key:                 ds.key(collection, id),
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	if isConditionFailed(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

func (ds *DynamoStore) Find(ctx context.Context, collection string, q Query, out any) error {
	docs, err := ds.scanCollection(ctx, collection)
	if err != nil {
		return err
	}
	matched, err := evaluate(docs, q, true)
	if err != nil {
		return err
	}
	return decodeAll(matched, out)
}

func (ds *DynamoStore) Count(ctx context.Context, collection string, q Query) (int64, error) {
	docs, err := ds.scanCollection(ctx, collection)
	if err != nil {
		return 0, err
	}
	matched, err := evaluate(docs, q, false)
	if err != nil {
		return 0, err
	}
	return int64(len(matched)), nil
}

func (ds *DynamoStore) Close(ctx context.Context) error {
	return nil
}

// scanCollection reads the whole collection partition ordered by creation.
func (ds *DynamoStore) scanCollection(ctx context.Context, collection string) ([]rawDoc, error) {
	var items []dynamoDocument
	var startKey map[string]types.AttributeValue
	for {
		result, err := ds.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(ds.tableName),
			KeyConditionExpression: aws.String("#c = :c"),
			ExpressionAttributeNames: map[string]string{
				"#c": "collection",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":c": &types.AttributeValueMemberS{Value: collection},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query %s: %w", collection, err)
		}

		var page []dynamoDocument
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", collection, err)
		}
		items = append(items, page...)

		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		startKey = result.LastEvaluatedKey
	}

	sortByCreatedAt(items)

	docs := make([]rawDoc, 0, len(items))
	for _, item := range items {
		docs = append(docs, rawDoc{data: []byte(item.Data)})
	}
	return docs, nil
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

// sortByCreatedAt restores insertion order; the sort key is the id.
func sortByCreatedAt(items []dynamoDocument) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt < items[j].CreatedAt
	})
}
