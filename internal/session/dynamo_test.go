package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockDynamo struct {
	items     map[string]map[string]types.AttributeValue
	putInput  *dynamodb.PutItemInput
	getErr    error
	deleteIDs []string
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{items: make(map[string]map[string]types.AttributeValue)}
}

func keyOf(key map[string]types.AttributeValue) string {
	if v, ok := key["sessionId"].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func (m *mockDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return &dynamodb.GetItemOutput{Item: m.items[keyOf(in.Key)]}, nil
}

func (m *mockDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.putInput = in
	m.items[keyOf(in.Item)] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	id := keyOf(in.Key)
	m.deleteIDs = append(m.deleteIDs, id)
	delete(m.items, id)
	return &dynamodb.DeleteItemOutput{}, nil
}

func TestDynamoStore_PutWritesTTLAndPhase(t *testing.T) {
	mock := newMockDynamo()
	now := time.Date(2025, 12, 20, 10, 0, 0, 0, time.UTC)
	store := NewDynamoStore(mock, "salon_chat_sessions", time.Hour, nil)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Put(context.Background(), "s1", State{Phase: PhaseAwaitingYesNo, LastBookingID: 3, LastService: "facial"}))
	require.NotNil(t, mock.putInput)
	assert.Equal(t, "salon_chat_sessions", *mock.putInput.TableName)

	var item sessionItem
	require.NoError(t, attributevalue.UnmarshalMap(mock.putInput.Item, &item))
	assert.Equal(t, "s1", item.SessionID)
	assert.Equal(t, "awaiting_yes_no", item.Phase)
	assert.Equal(t, int64(3), item.LastBookingID)
	assert.Equal(t, "facial", item.LastService)
	assert.Equal(t, now.Add(time.Hour).Unix(), item.ExpiresAt)

	got, err := store.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, PhaseAwaitingYesNo, got.Phase)
	assert.Equal(t, int64(3), got.LastBookingID)
	assert.Equal(t, "facial", got.LastService)
	assert.True(t, got.UpdatedAt.Equal(now))
}

func TestDynamoStore_MissingAndExpiredItemsAreIdle(t *testing.T) {
	mock := newMockDynamo()
	now := time.Date(2025, 12, 20, 10, 0, 0, 0, time.UTC)
	store := NewDynamoStore(mock, "sessions", time.Minute, nil)
	store.now = func() time.Time { return now }

	got, err := store.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.Equal(t, New(), got)

	require.NoError(t, store.Put(context.Background(), "s1", State{Phase: PhaseAwaitingProfile}))
	now = now.Add(2 * time.Minute)

	got, err = store.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, PhaseIdle, got.Phase)
}

func TestDynamoStore_DeleteAndErrors(t *testing.T) {
	mock := newMockDynamo()
	store := NewDynamoStore(mock, "sessions", 0, nil)

	require.NoError(t, store.Delete(context.Background(), "s1"))
	assert.Equal(t, []string{"s1"}, mock.deleteIDs)

	mock.getErr = errors.New("throttled")
	_, err := store.Get(context.Background(), "s1")
	assert.ErrorContains(t, err, "throttled")
}

func TestNewDynamoStore_PanicsWithoutTable(t *testing.T) {
	assert.Panics(t, func() { NewDynamoStore(newMockDynamo(), "", 0, nil) })
}
