package oracle

import (
	"encoding/json"
	"strings"

	"triptailor-backend/internal/domain"
)

// Outcome tags whether the oracle response could be read.
type Outcome int

const (
	ParseFailed Outcome = iota
	Parsed
)

func (o Outcome) String() string {
	if o == Parsed {
		return "parsed"
	}
	return "parse_failed"
}

// Result is the oracle verdict. A ParseFailed result carries no decisions and
// empty metadata, which reconciliation treats as "change nothing".
type Result struct {
	Outcome         Outcome
	Destinations    []string
	Dates           string
	Summary         string
	FlightDecisions []domain.ItemDecision
	HotelDecisions  []domain.ItemDecision
}

// NoDecision is the result used whenever the oracle cannot be consulted or read.
func NoDecision() Result {
	return Result{Outcome: ParseFailed, Destinations: []string{}}
}

// Decisions returns the decisions for kind.
func (r Result) Decisions(kind domain.ItemKind) []domain.ItemDecision {
	if kind == domain.KindHotel {
		return r.HotelDecisions
	}
	return r.FlightDecisions
}

// responseKeys are the top-level fields of an oracle response. An object
// carrying none of them is not a response.
var responseKeys = []string{"destinations", "dates", "summary", "flight_decisions", "hotel_decisions"}

// ParseResponse reads raw oracle output. It accepts a bare JSON object or one
// embedded in surrounding text (such as a code fence); anything else,
// including an object without any response field, is ParseFailed.
func ParseResponse(raw string) Result {
	obj, ok := decodeObject(raw)
	if !ok || !hasResponseKey(obj) {
		return NoDecision()
	}

	res := Result{
		Outcome:         Parsed,
		Destinations:    destinations(obj["destinations"]),
		Dates:           domain.Stringify(obj["dates"]),
		Summary:         domain.Stringify(obj["summary"]),
		FlightDecisions: decisions(obj["flight_decisions"]),
		HotelDecisions:  decisions(obj["hotel_decisions"]),
	}
	return res
}

func hasResponseKey(obj domain.Document) bool {
	for _, k := range responseKeys {
		if _, ok := obj[k]; ok {
			return true
		}
	}
	return false
}

func decodeObject(raw string) (domain.Document, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err == nil && obj != nil {
		return obj, true
	}
	start, end := strings.Index(raw, "{"), strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return nil, false
	}
	obj = nil
	if err := json.Unmarshal([]byte(raw[start:end+1]), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

func destinations(v any) []string {
	out := []string{}
	switch x := v.(type) {
	case nil:
	case []any:
		for _, d := range x {
			if s := strings.TrimSpace(domain.Stringify(d)); s != "" {
				out = append(out, s)
			}
		}
	default:
		if s := strings.TrimSpace(domain.Stringify(x)); s != "" && s != "false" {
			out = append(out, s)
		}
	}
	return out
}

func decisions(v any) []domain.ItemDecision {
	list, _ := v.([]any)
	out := make([]domain.ItemDecision, 0, len(list))
	for _, it := range list {
		d := domain.AsDocument(it)
		id := d.String("id")
		if id == "" {
			continue
		}
		verdict := domain.DecisionKeep
		if strings.EqualFold(strings.TrimSpace(d.String("decision")), string(domain.DecisionRemove)) {
			verdict = domain.DecisionRemove
		}
		out = append(out, domain.ItemDecision{ID: id, Decision: verdict})
	}
	return out
}
