package session

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/wolfman30/salon-concierge/pkg/logging"
)

type dynamoAPI interface {
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(context.Context, *dynamodb.DeleteItemInput, ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// sessionItem is the table row. expiresAt is the table's TTL attribute.
type sessionItem struct {
	SessionID     string `dynamodbav:"sessionId"`
	Phase         string `dynamodbav:"phase"`
	LastBookingID int64  `dynamodbav:"lastBookingId,omitempty"`
	LastService   string `dynamodbav:"lastService,omitempty"`
	UpdatedAt     string `dynamodbav:"updatedAt"`
	ExpiresAt     int64  `dynamodbav:"expiresAt,omitempty"`
}

// DynamoStore keeps sessions in a DynamoDB table keyed by sessionId. It does
// not lock; pair it with a KeyedMutex.
type DynamoStore struct {
	client    dynamoAPI
	tableName string
	ttl       time.Duration
	logger    *logging.Logger
	now       func() time.Time
}

var _ Store = (*DynamoStore)(nil)

// NewDynamoStore builds a store backed by the provided DynamoDB client.
func NewDynamoStore(client dynamoAPI, tableName string, ttl time.Duration, logger *logging.Logger) *DynamoStore {
	if client == nil {
		panic("session: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("session: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &DynamoStore{
		client:    client,
		tableName: tableName,
		ttl:       ttl,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *DynamoStore) Get(ctx context.Context, id string) (State, error) {
	if id == "" {
		return State{}, ErrEmptyID
	}
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            itemKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return State{}, fmt.Errorf("session: failed to fetch %s: %w", id, err)
	}
	if out == nil || out.Item == nil {
		return New(), nil
	}

	var item sessionItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return State{}, fmt.Errorf("session: failed to decode %s: %w", id, err)
	}
	// DynamoDB deletes expired items lazily.
	if item.ExpiresAt > 0 && item.ExpiresAt <= s.now().Unix() {
		return New(), nil
	}

	state := State{Phase: Phase(item.Phase), LastBookingID: item.LastBookingID, LastService: item.LastService}
	if item.UpdatedAt != "" {
		if ts, err := time.Parse(time.RFC3339Nano, item.UpdatedAt); err == nil {
			state.UpdatedAt = ts
		} else {
			s.logger.Warn("bad session timestamp", "session_id", id, "error", err)
		}
	}
	return state.normalized(), nil
}

func (s *DynamoStore) Put(ctx context.Context, id string, state State) error {
	if id == "" {
		return ErrEmptyID
	}
	now := s.now().UTC()
	state = state.normalized()
	item := sessionItem{
		SessionID:     id,
		Phase:         string(state.Phase),
		LastBookingID: state.LastBookingID,
		LastService:   state.LastService,
		UpdatedAt:     now.Format(time.RFC3339Nano),
	}
	if s.ttl > 0 {
		item.ExpiresAt = now.Add(s.ttl).Unix()
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("session: failed to marshal %s: %w", id, err)
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	}); err != nil {
		return fmt.Errorf("session: failed to persist %s: %w", id, err)
	}
	return nil
}

func (s *DynamoStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyID
	}
	if _, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       itemKey(id),
	}); err != nil {
		return fmt.Errorf("session: failed to delete %s: %w", id, err)
	}
	return nil
}

func itemKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"sessionId": &types.AttributeValueMemberS{Value: id},
	}
}
