package ddb

import (
	"context"
	"fmt"
	"time"

	"triptailor-backend/internal/domain"
	"triptailor-backend/internal/repository"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
)

// itemTable describes how one item kind is laid out in its table.
type itemTable struct {
	name       string
	keyAttr    string
	detailAttr string
}

// ItemStore reads and writes flight and hotel documents. Each table has the
// content id as partition key and the write time in milliseconds as sort key.
type ItemStore struct {
	client DBClient
	tables map[domain.ItemKind]itemTable
	logger *zap.Logger
	now    func() time.Time
}

// NewItemStore creates an item store over the flights and hotels tables.
func NewItemStore(client DBClient, flightsTable, hotelsTable string, logger *zap.Logger) *ItemStore {
	return &ItemStore{
		client: client,
		tables: map[domain.ItemKind]itemTable{
			domain.KindFlight: {name: flightsTable, keyAttr: "flightId", detailAttr: "flightDetails"},
			domain.KindHotel:  {name: hotelsTable, keyAttr: "hotelOfferId", detailAttr: "hotelOffersDetails"},
		},
		logger: logger,
		now:    time.Now,
	}
}

func (s *ItemStore) table(kind domain.ItemKind) (itemTable, error) {
	t, ok := s.tables[kind]
	if !ok {
		return itemTable{}, fmt.Errorf("no table for item kind %q", kind)
	}
	return t, nil
}

// Latest returns the most recent document written under id.
func (s *ItemStore) Latest(ctx context.Context, kind domain.ItemKind, id string) (domain.Document, error) {
	t, err := s.table(kind)
	if err != nil {
		return nil, err
	}

	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key(t.keyAttr).Equal(expression.Value(id))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build key condition: %w", err)
	}

	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(t.name),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, classify(err, string(kind), id, "query")
	}
	if len(out.Items) == 0 {
		return nil, repository.NewNotFound(string(kind), id)
	}

	var row map[string]any
	if err := attributevalue.UnmarshalMap(out.Items[0], &row); err != nil {
		return nil, fmt.Errorf("unmarshal %s %s: %w", kind, id, err)
	}
	doc := domain.AsDocument(row[t.detailAttr])
	if doc == nil {
		return nil, repository.NewNotFound(string(kind), id)
	}
	return doc, nil
}

// Put writes doc under id unless the id already exists.
func (s *ItemStore) Put(ctx context.Context, kind domain.ItemKind, id string, doc domain.Document) error {
	t, err := s.table(kind)
	if err != nil {
		return err
	}

	row := map[string]any{
		t.keyAttr:    id,
		"timestamp":  s.now().UnixMilli(),
		t.detailAttr: map[string]any(doc),
	}
	if ttl, ok := expiry(kind, doc); ok {
		row["expiresAt"] = ttl
	}
	item, err := attributevalue.MarshalMap(row)
	if err != nil {
		return fmt.Errorf("marshal %s %s: %w", kind, id, err)
	}

	cond, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name(t.keyAttr))).
		Build()
	if err != nil {
		return fmt.Errorf("build condition: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(t.name),
		Item:                     item,
		ConditionExpression:      cond.Condition(),
		ExpressionAttributeNames: cond.Names(),
	})
	if err != nil {
		err = classify(err, string(kind), id, "put")
		if repository.IsConflict(err) {
			s.logger.Debug("item already stored", zap.String("kind", string(kind)), zap.String("id", id))
		}
		return err
	}
	return nil
}

// expiry returns the epoch-second TTL for a document: a day after departure
// for flights, a day after the latest check-out for hotels.
func expiry(kind domain.ItemKind, doc domain.Document) (int64, bool) {
	const grace = 24 * time.Hour
	var latest time.Time

	switch kind {
	case domain.KindFlight:
		if its := doc.Maps("itineraries"); len(its) > 0 {
			if segs := its[0].Maps("segments"); len(segs) > 0 {
				latest, _ = parseTime(segs[0].Map("departure").String("at"))
			}
		}
	case domain.KindHotel:
		for _, o := range doc.Maps("offers") {
			if ts, ok := parseTime(o.String("checkOutDate")); ok && ts.After(latest) {
				latest = ts
			}
		}
	}
	if latest.IsZero() {
		return 0, false
	}
	return latest.Add(grace).Unix(), true
}

func parseTime(s string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02T15:04:05", time.RFC3339, "2006-01-02"} {
		if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

var _ repository.ItemStore = (*ItemStore)(nil)
