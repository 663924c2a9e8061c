package ddb

import (
	"context"
	"fmt"

	"triptailor-backend/internal/domain"
	"triptailor-backend/internal/repository"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type ddbMessage struct {
	UserID    string `dynamodbav:"user_id"`
	ChatID    string `dynamodbav:"chat_id"`
	Role      string `dynamodbav:"role"`
	Content   string `dynamodbav:"content"`
	Timestamp int64  `dynamodbav:"timestamp"`
}

// TranscriptStore reads the chat history table: partition key user_id, sort
// key timestamp, one item per message tagged with its chat_id.
type TranscriptStore struct {
	client DBClient
	table  string
}

// NewTranscriptStore creates a transcript reader over the given table.
func NewTranscriptStore(client DBClient, table string) *TranscriptStore {
	return &TranscriptStore{client: client, table: table}
}

// Messages returns every message of the conversation in timestamp order.
func (s *TranscriptStore) Messages(ctx context.Context, key domain.TripKey) ([]domain.Message, error) {
	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key("user_id").Equal(expression.Value(key.UserID))).
		WithFilter(expression.Name("chat_id").Equal(expression.Value(key.ChatID))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build transcript query: %w", err)
	}

	var (
		messages []domain.Message
		startKey map[string]types.AttributeValue
	)
	for {
		out, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(s.table),
			KeyConditionExpression:    expr.KeyCondition(),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ScanIndexForward:          aws.Bool(true),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, classify(err, "chat-history", key.String(), "query")
		}

		var page []ddbMessage
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshal chat history %s: %w", key, err)
		}
		for _, m := range page {
			role := m.Role
			if role == "" {
				role = "assistant"
			}
			messages = append(messages, domain.Message{Role: role, Content: m.Content, Timestamp: m.Timestamp})
		}

		if len(out.LastEvaluatedKey) == 0 {
			return messages, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

var _ repository.TranscriptStore = (*TranscriptStore)(nil)
