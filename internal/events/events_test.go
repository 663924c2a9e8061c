package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"triptailor-backend/internal/domain"
	"triptailor-backend/internal/repository/memory"
	"triptailor-backend/internal/service/oracle"
	"triptailor-backend/internal/service/trip"

	lambdaevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeEventBridge struct {
	inputs []*eventbridge.PutEventsInput
	failed int32
	err    error
}

func (f *fakeEventBridge) PutEvents(_ context.Context, in *eventbridge.PutEventsInput, _ ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &eventbridge.PutEventsOutput{FailedEntryCount: f.failed}, nil
}

func TestPublisherTripUpdated(t *testing.T) {
	fake := &fakeEventBridge{}
	p := NewPublisher(fake, "trips-bus", "")

	rec := domain.NewTripRecord(domain.TripKey{UserID: "u1", ChatID: "c1"})
	rec.Flights.Put("F1", domain.StatusBooked)
	rec.Destinations = []string{"Rome"}
	rec.LastModified = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, p.TripUpdated(context.Background(), rec))
	require.Len(t, fake.inputs, 1)

	entry := fake.inputs[0].Entries[0]
	assert.Equal(t, "trips-bus", *entry.EventBusName)
	assert.Equal(t, "triptailor.trips", *entry.Source)
	assert.Equal(t, DetailTypeTripCardUpdated, *entry.DetailType)
	assert.Equal(t, []string{"u1:c1"}, entry.Resources)

	var detail TripCardUpdated
	require.NoError(t, json.Unmarshal([]byte(*entry.Detail), &detail))
	assert.Equal(t, "u1", detail.UserID)
	assert.Equal(t, 1, detail.Flights)
	assert.Equal(t, []string{"Rome"}, detail.Destinations)
	assert.NotEmpty(t, detail.EventID)

	fake.failed = 1
	assert.Error(t, p.TripUpdated(context.Background(), rec))
	fake.err = errors.New("throttled")
	assert.Error(t, p.TripUpdated(context.Background(), rec))
}

func TestBookingConfirmedInput(t *testing.T) {
	in, err := BookingConfirmed{UserID: "u", ChatID: "c", Kind: "hotels", OriginalID: "H1", BookedID: "H1B"}.Input()
	require.NoError(t, err)
	assert.Equal(t, map[string]domain.Status{"H1B": domain.StatusBooked}, in.Hotels.Overrides)
	assert.Equal(t, map[string]string{"H1": "H1B"}, in.Hotels.Remap)
	assert.Equal(t, []string{"H1B"}, in.Hotels.Candidates)
	assert.Empty(t, in.Flights.Overrides)

	in, err = BookingConfirmed{UserID: "u", ChatID: "c", Kind: "flight", BookedID: "F1B"}.Input()
	require.NoError(t, err)
	assert.Nil(t, in.Flights.Remap)

	_, err = BookingConfirmed{UserID: "u", ChatID: "c", Kind: "car", BookedID: "X"}.Input()
	assert.Error(t, err)
	_, err = BookingConfirmed{UserID: "u", Kind: "flight", BookedID: "X"}.Input()
	assert.Error(t, err)
	_, err = BookingConfirmed{UserID: "u", ChatID: "c", Kind: "flight"}.Input()
	assert.Error(t, err)
}

func newBookingFixture(t *testing.T) (*BookingHandler, *memory.TripStore) {
	t.Helper()
	trips := memory.NewTripStore()
	items := memory.NewItemStore()
	svc := trip.NewService(trip.Deps{
		Trips:       trips,
		Items:       items,
		Transcripts: memory.NewTranscriptStore(),
		Compactor:   noopSummarizer{},
		Oracle:      oracle.NewAdapter(oracle.NewMockProvider(), oracle.DefaultOptions(), nil, zap.NewNop()),
		Logger:      zap.NewNop(),
	}, 2)
	return NewBookingHandler(svc, zap.NewNop()), trips
}

type noopSummarizer struct{}

func (noopSummarizer) Flights(_ context.Context, ids []string) []domain.FlightSummary {
	out := make([]domain.FlightSummary, len(ids))
	for i, id := range ids {
		out[i].ID = id
	}
	return out
}

func (noopSummarizer) Hotels(_ context.Context, ids []string) []domain.HotelSummary {
	out := make([]domain.HotelSummary, len(ids))
	for i, id := range ids {
		out[i].ID = id
	}
	return out
}

func bookingEvent(t *testing.T, detail any) lambdaevents.EventBridgeEvent {
	t.Helper()
	raw, err := json.Marshal(detail)
	require.NoError(t, err)
	return lambdaevents.EventBridgeEvent{ID: "evt-1", DetailType: DetailTypeBookingConfirmed, Detail: raw}
}

func TestBookingHandler(t *testing.T) {
	h, trips := newBookingFixture(t)
	key := domain.TripKey{UserID: "u", ChatID: "c"}
	rec := domain.NewTripRecord(key)
	rec.Flights.Put("F1", domain.StatusAvailable)
	rec.Flights.Put("F2", domain.StatusUnavailable)
	require.NoError(t, trips.Put(context.Background(), rec))

	err := h.Handle(context.Background(), bookingEvent(t, BookingConfirmed{
		UserID: "u", ChatID: "c", Kind: "flight", OriginalID: "F1", BookedID: "F1_BOOKED",
	}))
	require.NoError(t, err)

	stored, err := trips.Get(context.Background(), key)
	require.NoError(t, err)
	st, ok := stored.Flights.Status("F1_BOOKED")
	require.True(t, ok)
	assert.Equal(t, domain.StatusBooked, st)
	assert.False(t, stored.Flights.Has("F1"))
	assert.True(t, stored.Flights.Has("F2"))
}

func TestBookingHandlerOriginalNotOnCard(t *testing.T) {
	h, trips := newBookingFixture(t)
	key := domain.TripKey{UserID: "u", ChatID: "c"}
	rec := domain.NewTripRecord(key)
	rec.Hotels.Put("H2", domain.StatusAvailable)
	require.NoError(t, trips.Put(context.Background(), rec))

	err := h.Handle(context.Background(), bookingEvent(t, BookingConfirmed{
		UserID: "u", ChatID: "c", Kind: "hotel", OriginalID: "H_GONE", BookedID: "H_BOOKED",
	}))
	require.NoError(t, err)

	stored, err := trips.Get(context.Background(), key)
	require.NoError(t, err)
	st, ok := stored.Hotels.Status("H_BOOKED")
	require.True(t, ok)
	assert.Equal(t, domain.StatusBooked, st)
	assert.True(t, stored.Hotels.Has("H2"))
	assert.False(t, stored.Hotels.Has("H_GONE"))
}

func TestBookingHandlerDropsAndRetries(t *testing.T) {
	h, trips := newBookingFixture(t)

	assert.NoError(t, h.Handle(context.Background(), lambdaevents.EventBridgeEvent{DetailType: "Other"}))
	assert.NoError(t, h.Handle(context.Background(), lambdaevents.EventBridgeEvent{
		DetailType: DetailTypeBookingConfirmed, Detail: json.RawMessage(`{not json`),
	}))
	assert.NoError(t, h.Handle(context.Background(), bookingEvent(t, BookingConfirmed{Kind: "flight"})))
	assert.Zero(t, trips.Puts())

	trips.SetError("Put", errors.New("dynamo down"))
	err := h.Handle(context.Background(), bookingEvent(t, BookingConfirmed{
		UserID: "u", ChatID: "c", Kind: "hotel", BookedID: "H1",
	}))
	assert.Error(t, err)
}
