package oracle

import (
	"encoding/json"
	"fmt"
	"strings"

	"triptailor-backend/internal/domain"
)

const systemPrompt = `You maintain a "trip card": the record of a user's evolving travel plan inside a trip-planning chat.
The card holds destinations, a date range, a short summary, and the flights and hotels the user has already been shown.
From the chat transcript and the existing card items, return one JSON object with:
- destinations: array of the trip's end destinations (cities preferred, countries when touring). Never include the origin or layovers. Keep earlier destinations and append new ones.
- dates: one string covering the current overall trip dates, formatted like "Mar 15, 2024 - Mar 25, 2024", or "" when unknown.
- summary: two or three sentences describing the plan, addressing the user as "you".
- flight_decisions: [{"id": ..., "decision": "keep" | "remove"}] for each existing flight.
- hotel_decisions: [{"id": ..., "decision": "keep" | "remove"}] for each existing hotel.
Decision rules:
- Default to "keep".
- Use "remove" only when the user clearly rejected that specific item (dislike, too expensive, bad timing, wants something else).
- Items the user liked or did not mention are kept. When in doubt, keep.
Respond with the JSON object only.`

var destinationRules = []string{
	"Exclude origin and layovers",
	"Include only end destinations",
	"Append new destinations without removing earlier ones",
	"Ignore return legs to the origin",
	"Omit a destination while it is uncertain",
}

var dateRules = []string{
	"When the user changes dates, report only the new dates rather than combining old and new",
	"When the user extends or shortens the trip, report the resulting overall span",
	"Always give a full range; omit dates that are still uncertain",
}

// Request is the input of a decision.
type Request struct {
	Transcript []domain.Message
	Flights    []domain.FlightSummary
	Hotels     []domain.HotelSummary
}

type promptPayload struct {
	Transcript    string        `json:"transcript"`
	ExistingItems existingItems `json:"existing_items"`
	Instructions  instructions  `json:"instructions"`
}

type existingItems struct {
	Flights []domain.FlightSummary `json:"flights"`
	Hotels  []domain.HotelSummary  `json:"hotels"`
}

type instructions struct {
	DestinationRules []string `json:"destinations_rules"`
	DateRules        []string `json:"dates_rules"`
}

// FormatTranscript renders the last maxMessages messages as "role: content"
// lines, truncating each content to maxChars characters.
func FormatTranscript(msgs []domain.Message, maxMessages, maxChars int) string {
	if maxMessages > 0 && len(msgs) > maxMessages {
		msgs = msgs[len(msgs)-maxMessages:]
	}
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		role := m.Role
		if role == "" {
			role = "assistant"
		}
		content := m.Content
		if maxChars > 0 {
			if r := []rune(content); len(r) > maxChars {
				content = string(r[:maxChars])
			}
		}
		lines = append(lines, fmt.Sprintf("%s: %s", role, content))
	}
	return strings.Join(lines, "\n")
}

// BuildPrompt returns the user prompt: a JSON document with the transcript,
// the existing items and the metadata rules.
func BuildPrompt(req Request, maxMessages, maxChars int) (string, error) {
	flights, hotels := req.Flights, req.Hotels
	if flights == nil {
		flights = []domain.FlightSummary{}
	}
	if hotels == nil {
		hotels = []domain.HotelSummary{}
	}
	b, err := json.Marshal(promptPayload{
		Transcript:    FormatTranscript(req.Transcript, maxMessages, maxChars),
		ExistingItems: existingItems{Flights: flights, Hotels: hotels},
		Instructions:  instructions{DestinationRules: destinationRules, DateRules: dateRules},
	})
	if err != nil {
		return "", fmt.Errorf("marshal oracle prompt: %w", err)
	}
	return string(b), nil
}
