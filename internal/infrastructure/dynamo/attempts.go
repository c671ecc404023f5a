package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-storefront-gateway/internal/domain"
)

// itemAPI is the subset of *dynamodb.Client the attempt store calls.
type itemAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, opts ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// AttemptRepo stores finished confirmation attempts.
// PK: attempt_id. GSI subject_id-created_at-index. Items expire through the expires_at TTL.
type AttemptRepo struct {
	client    itemAPI
	tableName string
	retention time.Duration
	now       func() time.Time
}

func NewAttemptRepo(client itemAPI, tableName string, retention time.Duration) *AttemptRepo {
	return &AttemptRepo{client: client, tableName: tableName, retention: retention, now: time.Now}
}

func (r *AttemptRepo) Put(ctx context.Context, a *domain.ConfirmationAttempt) error {
	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return fmt.Errorf("marshal attempt: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// Record stores a copy of a with its retention deadline set.
func (r *AttemptRepo) Record(ctx context.Context, a *domain.ConfirmationAttempt) error {
	rec := *a
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = r.now().UTC()
	}
	rec.ExpiresAt = rec.CreatedAt.Add(r.retention).Unix()
	return r.Put(ctx, &rec)
}

func (r *AttemptRepo) Get(ctx context.Context, attemptID string) (*domain.ConfirmationAttempt, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(fieldAttemptID, attemptID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("attempt not found: %w", domain.ErrNotFound)
	}
	var a domain.ConfirmationAttempt
	if err := attributevalue.UnmarshalMap(out.Item, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// ListBySubject returns the newest attempts of one user first.
func (r *AttemptRepo) ListBySubject(ctx context.Context, subjectID string, limit int32) ([]domain.ConfirmationAttempt, error) {
	in := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(subjectIndex),
		KeyConditionExpression:    aws.String("#sub = :sub"),
		ExpressionAttributeNames:  map[string]string{"#sub": fieldSubjectID},
		ExpressionAttributeValues: strValues(":sub", subjectID),
		ScanIndexForward:          aws.Bool(false),
	}
	if limit > 0 {
		in.Limit = aws.Int32(limit)
	}
	out, err := r.client.Query(ctx, in)
	if err != nil {
		return nil, err
	}
	var items []domain.ConfirmationAttempt
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return nil, err
	}
	return items, nil
}
