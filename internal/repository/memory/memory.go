// Package memory provides in-memory implementations of the repository
// interfaces for tests and local development.
package memory

import (
	"context"
	"sync"

	"triptailor-backend/internal/domain"
	"triptailor-backend/internal/repository"
)

// failures lets tests inject an error per method name.
type failures struct {
	shouldFailOn map[string]error
}

// SetError configures the store to return err for method.
func (f *failures) SetError(method string, err error) {
	if f.shouldFailOn == nil {
		f.shouldFailOn = make(map[string]error)
	}
	f.shouldFailOn[method] = err
}

// ClearErrors removes all configured errors.
func (f *failures) ClearErrors() {
	f.shouldFailOn = nil
}

func (f *failures) checkError(method string) error {
	return f.shouldFailOn[method]
}

// ItemStore keeps every written version of each item document.
type ItemStore struct {
	mu sync.RWMutex
	failures
	docs  map[domain.ItemKind]map[string][]domain.Document
	reads map[string]int
}

// NewItemStore creates an empty item store.
func NewItemStore() *ItemStore {
	return &ItemStore{
		docs:  make(map[domain.ItemKind]map[string][]domain.Document),
		reads: make(map[string]int),
	}
}

func (s *ItemStore) SetError(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures.SetError(method, err)
}

func (s *ItemStore) Latest(ctx context.Context, kind domain.ItemKind, id string) (domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads[id]++
	if err := s.checkError("Latest"); err != nil {
		return nil, err
	}
	versions := s.docs[kind][id]
	if len(versions) == 0 {
		return nil, repository.NewNotFound(string(kind), id)
	}
	return versions[len(versions)-1], nil
}

func (s *ItemStore) Put(ctx context.Context, kind domain.ItemKind, id string, doc domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkError("Put"); err != nil {
		return err
	}
	if len(s.docs[kind][id]) > 0 {
		return repository.NewConflict(string(kind), id, "item already exists")
	}
	s.append(kind, id, doc)
	return nil
}

// AddVersion appends a document version regardless of existing content. Tests
// use it to model several writes under one id.
func (s *ItemStore) AddVersion(kind domain.ItemKind, id string, doc domain.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.append(kind, id, doc)
}

// Reads returns how many lookups id has received.
func (s *ItemStore) Reads(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reads[id]
}

func (s *ItemStore) append(kind domain.ItemKind, id string, doc domain.Document) {
	if s.docs[kind] == nil {
		s.docs[kind] = make(map[string][]domain.Document)
	}
	s.docs[kind][id] = append(s.docs[kind][id], doc)
}

// TripStore keeps trip records by key. Records are copied on the way in and
// out so callers cannot mutate stored state.
type TripStore struct {
	mu sync.RWMutex
	failures
	records map[string]*domain.TripRecord
	puts    int
}

// NewTripStore creates an empty trip store.
func NewTripStore() *TripStore {
	return &TripStore{records: make(map[string]*domain.TripRecord)}
}

func (s *TripStore) SetError(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures.SetError(method, err)
}

func (s *TripStore) Get(ctx context.Context, key domain.TripKey) (*domain.TripRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkError("Get"); err != nil {
		return nil, err
	}
	rec, ok := s.records[key.String()]
	if !ok {
		return nil, repository.NewNotFound("trip", key.String())
	}
	return rec.Clone(), nil
}

func (s *TripStore) Put(ctx context.Context, record *domain.TripRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkError("Put"); err != nil {
		return err
	}
	s.records[record.Key.String()] = record.Clone()
	s.puts++
	return nil
}

func (s *TripStore) Delete(ctx context.Context, key domain.TripKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkError("Delete"); err != nil {
		return err
	}
	delete(s.records, key.String())
	return nil
}

// Puts returns the number of successful writes.
func (s *TripStore) Puts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.puts
}

// TranscriptStore keeps conversation messages in arrival order.
type TranscriptStore struct {
	mu sync.RWMutex
	failures
	messages map[string][]domain.Message
}

// NewTranscriptStore creates an empty transcript store.
func NewTranscriptStore() *TranscriptStore {
	return &TranscriptStore{messages: make(map[string][]domain.Message)}
}

func (s *TranscriptStore) SetError(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures.SetError(method, err)
}

// Append adds messages to the conversation.
func (s *TranscriptStore) Append(key domain.TripKey, msgs ...domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[key.String()] = append(s.messages[key.String()], msgs...)
}

func (s *TranscriptStore) Messages(ctx context.Context, key domain.TripKey) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkError("Messages"); err != nil {
		return nil, err
	}
	return append([]domain.Message(nil), s.messages[key.String()]...), nil
}

var (
	_ repository.ItemStore       = (*ItemStore)(nil)
	_ repository.TripStore       = (*TripStore)(nil)
	_ repository.TranscriptStore = (*TranscriptStore)(nil)
)
