package domain

import (
	"fmt"
	"strings"
	"time"
)

// TripKey identifies a trip record: one per (user, conversation).
type TripKey struct {
	UserID string
	ChatID string
}

// String renders the storage key "user:chat".
func (k TripKey) String() string {
	return k.UserID + ":" + k.ChatID
}

// Validate rejects keys with a missing component.
func (k TripKey) Validate() error {
	if strings.TrimSpace(k.UserID) == "" || strings.TrimSpace(k.ChatID) == "" {
		return fmt.Errorf("user_id and chat_id are required")
	}
	return nil
}

// ParseTripKey splits a "user:chat" storage key at the first colon.
func ParseTripKey(s string) (TripKey, error) {
	user, chat, ok := strings.Cut(s, ":")
	if !ok || user == "" || chat == "" {
		return TripKey{}, fmt.Errorf("malformed trip key %q", s)
	}
	return TripKey{UserID: user, ChatID: chat}, nil
}

// TripRecord is the reconciled trip card of one conversation.
type TripRecord struct {
	Key          TripKey
	Destinations []string
	Dates        string
	Summary      string
	Flights      *ItemSet
	Hotels       *ItemSet
	LastModified time.Time
}

// NewTripRecord returns an empty record for key.
func NewTripRecord(key TripKey) *TripRecord {
	return &TripRecord{
		Key:          key,
		Destinations: []string{},
		Flights:      NewItemSet(),
		Hotels:       NewItemSet(),
	}
}

// Items returns the collection for kind, creating it when absent.
func (t *TripRecord) Items(kind ItemKind) *ItemSet {
	switch kind {
	case KindHotel:
		if t.Hotels == nil {
			t.Hotels = NewItemSet()
		}
		return t.Hotels
	default:
		if t.Flights == nil {
			t.Flights = NewItemSet()
		}
		return t.Flights
	}
}

// SetItems replaces the collection for kind.
func (t *TripRecord) SetItems(kind ItemKind, set *ItemSet) {
	if kind == KindHotel {
		t.Hotels = set
		return
	}
	t.Flights = set
}

// Message is one transcript line of a conversation.
type Message struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// Clone returns a deep copy of the record.
func (t *TripRecord) Clone() *TripRecord {
	if t == nil {
		return nil
	}
	c := *t
	c.Destinations = append([]string{}, t.Destinations...)
	c.Flights = t.Flights.Clone()
	c.Hotels = t.Hotels.Clone()
	return &c
}
