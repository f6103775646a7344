package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"folio-api/internal/domain"
)

type fakeDynamo struct {
	putErr       error
	lastPutInput *dynamodb.PutItemInput
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.lastPutInput = in
	return &dynamodb.PutItemOutput{}, f.putErr
}

func mustNewClient(t *testing.T, db *fakeDynamo) *Client {
	t.Helper()
	c, err := New(db, "contact-messages")
	require.NoError(t, err)
	return c
}

func sampleMessage() domain.ContactMessage {
	return domain.ContactMessage{
		ID:        "4f8b3d3e-0c51-4c1b-9d62-1f1f7d2f0a9e",
		Timestamp: "2026-10-14T09:00:00Z",
		IP:        "203.0.113.7",
		Name:      "Ada",
		Email:     "ada@example.com",
		Message:   "Hello there, nice site!",
	}
}

func strAttr(t *testing.T, item map[string]types.AttributeValue, key string) string {
	t.Helper()
	v, ok := item[key].(*types.AttributeValueMemberS)
	require.True(t, ok, "attribute %q is not a string", key)
	return v.Value
}

func TestNew_Validates(t *testing.T) {
	_, err := New(nil, "t")
	require.ErrorContains(t, err, "api must not be nil")
	_, err = New(&fakeDynamo{}, "  ")
	require.ErrorContains(t, err, "table name must not be empty")
}

func TestPutContactMessage_HappyPath(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)

	require.NoError(t, c.PutContactMessage(context.Background(), sampleMessage()))

	in := db.lastPutInput
	require.NotNil(t, in)
	require.Equal(t, "contact-messages", aws.ToString(in.TableName))
	require.Equal(t, "4f8b3d3e-0c51-4c1b-9d62-1f1f7d2f0a9e", strAttr(t, in.Item, "id"))
	require.Equal(t, "Ada", strAttr(t, in.Item, "name"))
	require.Equal(t, "ada@example.com", strAttr(t, in.Item, "email"))
	require.Equal(t, "203.0.113.7", strAttr(t, in.Item, "ip"))
	require.Equal(t, "2026-10-14T09:00:00Z", strAttr(t, in.Item, "timestamp"))
	require.Equal(t, "attribute_not_exists (#0)", aws.ToString(in.ConditionExpression))
	require.Equal(t, map[string]string{"#0": "id"}, in.ExpressionAttributeNames)
}

func TestPutContactMessage_OmitsEmptyIP(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)
	msg := sampleMessage()
	msg.IP = ""

	require.NoError(t, c.PutContactMessage(context.Background(), msg))
	require.NotContains(t, db.lastPutInput.Item, "ip")
}

func TestPutContactMessage_RequiresID(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)
	msg := sampleMessage()
	msg.ID = ""

	err := c.PutContactMessage(context.Background(), msg)
	require.ErrorContains(t, err, "id is required")
	require.Nil(t, db.lastPutInput)
}

func TestPutContactMessage_Duplicate(t *testing.T) {
	db := &fakeDynamo{putErr: &types.ConditionalCheckFailedException{Message: aws.String("exists")}}
	c := mustNewClient(t, db)

	err := c.PutContactMessage(context.Background(), sampleMessage())
	require.ErrorIs(t, err, ErrDuplicateMessage)
}

func TestPutContactMessage_PutError(t *testing.T) {
	db := &fakeDynamo{putErr: errors.New("ResourceNotFoundException")}
	c := mustNewClient(t, db)

	err := c.PutContactMessage(context.Background(), sampleMessage())
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrDuplicateMessage)
	require.Contains(t, err.Error(), "PutContactMessage")
}
