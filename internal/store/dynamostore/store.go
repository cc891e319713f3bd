// Package dynamostore persists the outbox collection as a single DynamoDB
// item, keeping the one-key blob layout shared by every driver.
package dynamostore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/m-ota618/shachoai-sub000/internal/outbox"
)

const itemKey = "outbox:v1"

type dynamodbInterface interface {
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

type Store struct {
	db        dynamodbInterface
	tableName string
}

func New(db *dynamodb.Client, tableName string) *Store {
	return &Store{
		db:        db,
		tableName: tableName,
	}
}

type blobRow struct {
	Id        string `dynamodbav:"Id"`
	Items     string `dynamodbav:"Items"`
	UpdatedAt string `dynamodbav:"UpdatedAt"`
}

func (s *Store) Load(ctx context.Context) ([]outbox.Item, error) {
	out, err := s.db.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"Id": &types.AttributeValueMemberS{Value: itemKey},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return []outbox.Item{}, nil
	}

	var row blobRow
	if err := attributevalue.UnmarshalMap(out.Item, &row); err != nil {
		return nil, err
	}

	var items []outbox.Item
	if err := json.Unmarshal([]byte(row.Items), &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []outbox.Item{}
	}
	return items, nil
}

func (s *Store) Save(ctx context.Context, items []outbox.Item) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}

	attrs, err := attributevalue.MarshalMap(blobRow{
		Id:        itemKey,
		Items:     string(data),
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	_, err = s.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      attrs,
	})
	return err
}
