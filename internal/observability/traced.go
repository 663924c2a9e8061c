package observability

import (
	"context"

	"triptailor-backend/internal/domain"
	"triptailor-backend/internal/repository"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func endSpan(span trace.Span, err error) {
	if err != nil && !repository.IsNotFound(err) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// TraceItemStore wraps an item store with spans.
func TraceItemStore(inner repository.ItemStore, tracer trace.Tracer) repository.ItemStore {
	return &tracedItemStore{inner: inner, tracer: tracer}
}

type tracedItemStore struct {
	inner  repository.ItemStore
	tracer trace.Tracer
}

func (s *tracedItemStore) Latest(ctx context.Context, kind domain.ItemKind, id string) (domain.Document, error) {
	ctx, span := s.tracer.Start(ctx, "items.Latest", trace.WithAttributes(
		attribute.String("item.kind", string(kind)),
		attribute.String("item.id", id),
	))
	doc, err := s.inner.Latest(ctx, kind, id)
	endSpan(span, err)
	return doc, err
}

func (s *tracedItemStore) Put(ctx context.Context, kind domain.ItemKind, id string, doc domain.Document) error {
	ctx, span := s.tracer.Start(ctx, "items.Put", trace.WithAttributes(
		attribute.String("item.kind", string(kind)),
		attribute.String("item.id", id),
	))
	err := s.inner.Put(ctx, kind, id, doc)
	endSpan(span, err)
	return err
}

// TraceTripStore wraps a trip store with spans.
func TraceTripStore(inner repository.TripStore, tracer trace.Tracer) repository.TripStore {
	return &tracedTripStore{inner: inner, tracer: tracer}
}

type tracedTripStore struct {
	inner  repository.TripStore
	tracer trace.Tracer
}

func (s *tracedTripStore) Get(ctx context.Context, key domain.TripKey) (*domain.TripRecord, error) {
	ctx, span := s.tracer.Start(ctx, "trips.Get", trace.WithAttributes(attribute.String("trip.key", key.String())))
	rec, err := s.inner.Get(ctx, key)
	endSpan(span, err)
	return rec, err
}

func (s *tracedTripStore) Put(ctx context.Context, record *domain.TripRecord) error {
	ctx, span := s.tracer.Start(ctx, "trips.Put", trace.WithAttributes(
		attribute.String("trip.key", record.Key.String()),
		attribute.Int("trip.flights", record.Flights.Len()),
		attribute.Int("trip.hotels", record.Hotels.Len()),
	))
	err := s.inner.Put(ctx, record)
	endSpan(span, err)
	return err
}

func (s *tracedTripStore) Delete(ctx context.Context, key domain.TripKey) error {
	ctx, span := s.tracer.Start(ctx, "trips.Delete", trace.WithAttributes(attribute.String("trip.key", key.String())))
	err := s.inner.Delete(ctx, key)
	endSpan(span, err)
	return err
}

// TraceTranscriptStore wraps a transcript store with spans.
func TraceTranscriptStore(inner repository.TranscriptStore, tracer trace.Tracer) repository.TranscriptStore {
	return &tracedTranscriptStore{inner: inner, tracer: tracer}
}

type tracedTranscriptStore struct {
	inner  repository.TranscriptStore
	tracer trace.Tracer
}

func (s *tracedTranscriptStore) Messages(ctx context.Context, key domain.TripKey) ([]domain.Message, error) {
	ctx, span := s.tracer.Start(ctx, "transcripts.Messages", trace.WithAttributes(attribute.String("trip.key", key.String())))
	msgs, err := s.inner.Messages(ctx, key)
	span.SetAttributes(attribute.Int("transcript.messages", len(msgs)))
	endSpan(span, err)
	return msgs, err
}
