package domain

import (
	"fmt"
	"strings"
)

// ItemKind distinguishes the two item classes kept on a trip card.
type ItemKind string

const (
	KindFlight ItemKind = "flight"
	KindHotel  ItemKind = "hotel"
)

// Kinds lists every item kind in reconciliation order.
var Kinds = []ItemKind{KindFlight, KindHotel}

// ParseItemKind accepts singular or plural spellings ("flight", "hotels").
func ParseItemKind(s string) (ItemKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "flight", "flights":
		return KindFlight, nil
	case "hotel", "hotels":
		return KindHotel, nil
	}
	return "", fmt.Errorf("unknown item kind %q", s)
}

// Status is the lifecycle status of an item on a trip card.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusUnavailable Status = "unavailable"
	StatusBooked      Status = "booked"
)

// ParseStatus parses a status case-insensitively.
func ParseStatus(s string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusAvailable:
		return StatusAvailable, true
	case StatusUnavailable:
		return StatusUnavailable, true
	case StatusBooked:
		return StatusBooked, true
	}
	return "", false
}

// NormalizeStatus maps stored status strings onto the vocabulary; anything
// unrecognised reads as available.
func NormalizeStatus(s string) Status {
	if st, ok := ParseStatus(s); ok {
		return st
	}
	return StatusAvailable
}

// IsBooked reports whether the status is terminal.
func (s Status) IsBooked() bool { return s == StatusBooked }

// Inferable reports whether the status may still be revised from the provider document.
func (s Status) Inferable() bool {
	return s == StatusAvailable || s == StatusUnavailable
}

// Decision is the oracle verdict on an existing item.
type Decision string

const (
	DecisionKeep   Decision = "keep"
	DecisionRemove Decision = "remove"
)

// ItemDecision pairs an item id with a keep/remove verdict.
type ItemDecision struct {
	ID       string   `json:"id"`
	Decision Decision `json:"decision"`
}
