package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Document is a raw provider payload (flight offer or hotel offers) as stored
// in the item store. Accessors never fail: missing or mistyped values read as
// zero values.
type Document map[string]any

// Map returns the nested object under key.
func (d Document) Map(key string) Document {
	return AsDocument(d[key])
}

// List returns the array under key.
func (d Document) List(key string) []any {
	if d == nil {
		return nil
	}
	v, _ := d[key].([]any)
	return v
}

// Maps returns the objects of the array under key, skipping non-objects.
func (d Document) Maps(key string) []Document {
	var out []Document
	for _, v := range d.List(key) {
		if m, ok := asMap(v); ok {
			out = append(out, m)
		}
	}
	return out
}

// String returns the value under key rendered as a string.
func (d Document) String(key string) string {
	if d == nil {
		return ""
	}
	return Stringify(d[key])
}

// Has reports whether key is present with a non-nil value.
func (d Document) Has(key string) bool {
	if d == nil {
		return false
	}
	v, ok := d[key]
	return ok && v != nil
}

// Truthy reports whether the value under key is truthy (see IsTruthy).
func (d Document) Truthy(key string) bool {
	if d == nil {
		return false
	}
	return IsTruthy(d[key])
}

// Number returns the value under key as a float, accepting numeric strings.
func (d Document) Number(key string) float64 {
	if d == nil {
		return 0
	}
	switch v := d[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

// AsDocument converts a decoded JSON object into a Document.
func AsDocument(v any) Document {
	m, _ := asMap(v)
	return m
}

func asMap(v any) (Document, bool) {
	switch m := v.(type) {
	case Document:
		return m, true
	case map[string]any:
		return Document(m), true
	}
	return nil, false
}

// IsTruthy follows JSON truthiness: true, non-zero numbers, non-empty
// strings, arrays and objects are truthy. The strings "0" and "false" are not.
func IsTruthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		s := strings.ToLower(strings.TrimSpace(x))
		return s != "" && s != "0" && s != "false"
	case float64:
		return x != 0
	case float32:
		return x != 0
	case int:
		return x != 0
	case int64:
		return x != 0
	case json.Number:
		f, err := x.Float64()
		return err == nil && f != 0
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	case Document:
		return len(x) > 0
	}
	return true
}

// Stringify renders scalars as strings; objects and arrays become JSON.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case json.Number:
		return x.String()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
