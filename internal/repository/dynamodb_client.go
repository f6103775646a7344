package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"folio-api/internal/domain"
)

// ErrDuplicateMessage is returned when a message with the same id already exists.
var ErrDuplicateMessage = errors.New("repository: duplicate contact message id")

// dynamodbAPI is the minimal DynamoDB interface required by Client.
// Defined here for testability.
type dynamodbAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

var _ dynamodbAPI = (*dynamodb.Client)(nil)

// Client writes contact messages to a DynamoDB table keyed by "id".
type Client struct {
	api       dynamodbAPI
	tableName string
}

// New creates a new repository Client.
func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName}, nil
}

// PutContactMessage persists msg once; an existing item with the same id is
// never overwritten.
func (c *Client) PutContactMessage(ctx context.Context, msg domain.ContactMessage) error {
	if msg.ID == "" {
		return errors.New("repository: PutContactMessage: id is required")
	}

	item, err := attributevalue.MarshalMap(msg)
	if err != nil {
		return fmt.Errorf("repository: PutContactMessage marshal: %w", err)
	}
	cond, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name("id"))).
		Build()
	if err != nil {
		return fmt.Errorf("repository: PutContactMessage condition: %w", err)
	}

	_, err = c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(c.tableName),
		Item:                     item,
		ConditionExpression:      cond.Condition(),
		ExpressionAttributeNames: cond.Names(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("repository: PutContactMessage %s: %w", msg.ID, ErrDuplicateMessage)
		}
		return fmt.Errorf("repository: PutContactMessage: %w", err)
	}
	return nil
}
