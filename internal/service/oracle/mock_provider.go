package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MockProvider is a deterministic provider for tests and local development.
// Without a scripted response it keeps every existing item and returns empty
// metadata.
type MockProvider struct {
	mu        sync.Mutex
	available bool
	response  string
	err       error
	calls     []string
}

// NewMockProvider creates an available mock provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{available: true}
}

func (m *MockProvider) Name() string { return "mock" }

// SetAvailable toggles availability.
func (m *MockProvider) SetAvailable(available bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.available = available
}

// SetResponse scripts the raw text returned by every call.
func (m *MockProvider) SetResponse(raw string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.response = raw
}

// SetError makes every call fail with err.
func (m *MockProvider) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns the prompts received so far.
func (m *MockProvider) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *MockProvider) IsAvailable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.available
}

func (m *MockProvider) Complete(ctx context.Context, prompt string, options CompletionOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, prompt)

	if !m.available {
		return "", fmt.Errorf("mock provider is not available")
	}
	if m.err != nil {
		return "", m.err
	}
	if m.response != "" {
		return m.response, nil
	}
	return keepAll(prompt)
}

// keepAll answers "keep" for every existing item named in the prompt.
func keepAll(prompt string) (string, error) {
	var payload struct {
		ExistingItems struct {
			Flights []struct {
				ID string `json:"id"`
			} `json:"flights"`
			Hotels []struct {
				ID string `json:"id"`
			} `json:"hotels"`
		} `json:"existing_items"`
	}
	if err := json.Unmarshal([]byte(prompt), &payload); err != nil {
		return "", fmt.Errorf("mock provider: unsupported prompt: %w", err)
	}

	type decision struct {
		ID       string `json:"id"`
		Decision string `json:"decision"`
	}
	out := struct {
		Destinations    []string   `json:"destinations"`
		Dates           string     `json:"dates"`
		Summary         string     `json:"summary"`
		FlightDecisions []decision `json:"flight_decisions"`
		HotelDecisions  []decision `json:"hotel_decisions"`
	}{Destinations: []string{}, FlightDecisions: []decision{}, HotelDecisions: []decision{}}

	for _, f := range payload.ExistingItems.Flights {
		out.FlightDecisions = append(out.FlightDecisions, decision{ID: f.ID, Decision: "keep"})
	}
	for _, h := range payload.ExistingItems.Hotels {
		out.HotelDecisions = append(out.HotelDecisions, decision{ID: h.ID, Decision: "keep"})
	}
	b, err := json.Marshal(out)
	return string(b), err
}
