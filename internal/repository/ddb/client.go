// Package ddb implements the repository interfaces on AWS DynamoDB.
package ddb

import (
	"context"
	"errors"
	"fmt"

	"triptailor-backend/internal/repository"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

// DBClient is the subset of the DynamoDB API the stores use; *dynamodb.Client
// satisfies it.
type DBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

var _ DBClient = (*dynamodb.Client)(nil)

// classify maps DynamoDB failures onto repository errors.
func classify(err error, resource, id, op string) error {
	if err == nil {
		return nil
	}
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return repository.NewConflict(resource, id, "condition check failed")
	}
	var rnf *types.ResourceNotFoundException
	if errors.As(err, &rnf) {
		return fmt.Errorf("%s %s: table not found: %w", op, resource, err)
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s %s %s: %s: %w", op, resource, id, apiErr.ErrorCode(), err)
	}
	return fmt.Errorf("%s %s %s: %w", op, resource, id, err)
}
