package ddb

import (
	"context"
	"fmt"
	"time"

	"triptailor-backend/internal/domain"
	"triptailor-backend/internal/repository"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

const tripKeyAttr = "UserAndChatID"

// ddbTrip is the stored shape of a trip record. Item collections are lists of
// [id, status] pairs.
type ddbTrip struct {
	UserAndChatID string     `dynamodbav:"UserAndChatID"`
	LastModified  string     `dynamodbav:"last modified"`
	Destinations  []string   `dynamodbav:"destinations"`
	Dates         string     `dynamodbav:"dates"`
	Summary       string     `dynamodbav:"summary"`
	FlightTuples  [][]string `dynamodbav:"flight_tuples"`
	HotelTuples   [][]string `dynamodbav:"hotel_tuples"`
}

// TripStore persists trip records, one item per (user, conversation).
type TripStore struct {
	client DBClient
	table  string
	logger *zap.Logger
}

// NewTripStore creates a trip store over the given table.
func NewTripStore(client DBClient, table string, logger *zap.Logger) *TripStore {
	return &TripStore{client: client, table: table, logger: logger}
}

func tripKey(key domain.TripKey) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		tripKeyAttr: &types.AttributeValueMemberS{Value: key.String()},
	}
}

// Get loads the record for key.
func (s *TripStore) Get(ctx context.Context, key domain.TripKey) (*domain.TripRecord, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            tripKey(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, classify(err, "trip", key.String(), "get")
	}
	if len(out.Item) == 0 {
		return nil, repository.NewNotFound("trip", key.String())
	}

	var row map[string]any
	if err := attributevalue.UnmarshalMap(out.Item, &row); err != nil {
		return nil, fmt.Errorf("unmarshal trip %s: %w", key, err)
	}
	return decodeTrip(key, domain.Document(row), s.logger), nil
}

// Put writes the whole record in one request.
func (s *TripStore) Put(ctx context.Context, record *domain.TripRecord) error {
	item, err := attributevalue.MarshalMap(encodeTrip(record))
	if err != nil {
		return fmt.Errorf("marshal trip %s: %w", record.Key, err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	return classify(err, "trip", record.Key.String(), "put")
}

// Delete removes the record for key.
func (s *TripStore) Delete(ctx context.Context, key domain.TripKey) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       tripKey(key),
	})
	return classify(err, "trip", key.String(), "delete")
}

func encodeTrip(rec *domain.TripRecord) ddbTrip {
	dests := rec.Destinations
	if dests == nil {
		dests = []string{}
	}
	return ddbTrip{
		UserAndChatID: rec.Key.String(),
		LastModified:  rec.LastModified.UTC().Format(time.RFC3339Nano),
		Destinations:  dests,
		Dates:         rec.Dates,
		Summary:       rec.Summary,
		FlightTuples:  encodeTuples(rec.Flights),
		HotelTuples:   encodeTuples(rec.Hotels),
	}
}

func encodeTuples(set *domain.ItemSet) [][]string {
	out := make([][]string, 0, set.Len())
	for _, e := range set.Entries() {
		out = append(out, []string{e.ID, string(e.Status)})
	}
	return out
}

// decodeTrip reads a stored trip tolerantly: tuples may be [id, status] lists
// or {id, status} objects, and older records use the "flights"/"hotels" keys.
func decodeTrip(key domain.TripKey, row domain.Document, logger *zap.Logger) *domain.TripRecord {
	rec := domain.NewTripRecord(key)
	rec.Dates = row.String("dates")
	rec.Summary = row.String("summary")

	switch v := row["destinations"].(type) {
	case []any:
		for _, d := range v {
			if s := domain.Stringify(d); s != "" {
				rec.Destinations = append(rec.Destinations, s)
			}
		}
	case string:
		if v != "" {
			rec.Destinations = append(rec.Destinations, v)
		}
	}

	if lm := row.String("last modified"); lm != "" {
		if ts, err := time.Parse(time.RFC3339Nano, lm); err == nil {
			rec.LastModified = ts
		} else {
			logger.Debug("unparseable last modified", zap.String("trip", key.String()), zap.String("value", lm))
		}
	}

	rec.Flights = decodeTuples(firstList(row, "flight_tuples", "flights"))
	rec.Hotels = decodeTuples(firstList(row, "hotel_tuples", "hotels"))
	return rec
}

func firstList(row domain.Document, keys ...string) []any {
	for _, k := range keys {
		if l := row.List(k); len(l) > 0 {
			return l
		}
	}
	return nil
}

func decodeTuples(raw []any) *domain.ItemSet {
	set := domain.NewItemSet()
	for _, it := range raw {
		switch v := it.(type) {
		case []any:
			if len(v) == 0 {
				continue
			}
			status := domain.StatusAvailable
			if len(v) > 1 && v[1] != nil {
				status = domain.NormalizeStatus(domain.Stringify(v[1]))
			}
			set.Put(domain.Stringify(v[0]), status)
		case map[string]any:
			doc := domain.Document(v)
			if !doc.Has("id") {
				continue
			}
			status := domain.StatusAvailable
			if doc.Has("status") {
				status = domain.NormalizeStatus(doc.String("status"))
			}
			set.Put(doc.String("id"), status)
		}
	}
	return set
}

var _ repository.TripStore = (*TripStore)(nil)
