package models

import (
	"bytes"
	"encoding/json"
	"errors"
)

var (
	// ErrSourceUnavailable indicates the dataset could not be read or fetched.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrMalformedSource indicates the dataset is not a JSON array of records.
	ErrMalformedSource = errors.New("malformed source")
	// ErrWriteFailure indicates the output file could not be written.
	ErrWriteFailure = errors.New("write failure")
	// ErrInvalidConfig indicates a rejected configuration value.
	ErrInvalidConfig = errors.New("invalid config")
)

// ProductRecord is one raw dataset entry. Values are kept undecoded so they
// can be passed through to the output unchanged.
type ProductRecord map[string]json.RawMessage

// Field returns the raw value stored under key, nil when absent.
func (p ProductRecord) Field(key string) json.RawMessage {
	return p[key]
}

// Name returns the product name, or "" when it is absent or not a string.
func (p ProductRecord) Name() string {
	return p.stringField("name")
}

// Store returns the store id, or "" when it is absent or not a string.
func (p ProductRecord) Store() string {
	return p.stringField("store")
}

// Bio reports whether the organic flag is set to a truthy value.
func (p ProductRecord) Bio() bool {
	return Truthy(p["bio"])
}

func (p ProductRecord) stringField(key string) string {
	raw, ok := p[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// Truthy applies JSON truthiness: false, 0, "", null and missing values are
// false, everything else (including empty arrays and objects) is true.
func Truthy(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	switch raw[0] {
	case 'n', 'f':
		return false
	case 't', '[', '{':
		return true
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return false
		}
		return s != ""
	default:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return false
		}
		return f != 0
	}
}

// FilteredRecord is the reduced projection written to the output file.
// Field order defines the key order of the serialized object.
type FilteredRecord struct {
	Name         json.RawMessage   `json:"name"`
	Store        string            `json:"store"`
	Price        json.RawMessage   `json:"price"`
	Unit         json.RawMessage   `json:"unit"`
	Quantity     json.RawMessage   `json:"quantity"`
	PriceHistory []json.RawMessage `json:"priceHistory"`
}

// OutputEnvelope wraps the filtered items with run metadata.
type OutputEnvelope struct {
	GeneratedAt string           `json:"generatedAt"`
	Count       int              `json:"count"`
	Stores      []string         `json:"stores"`
	Items       []FilteredRecord `json:"items"`
}
