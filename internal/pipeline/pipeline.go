// Package pipeline turns raw product records into the output envelope.
package pipeline

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/drstein77/organicfilter/internal/models"
)

// DefaultMaxItems caps the number of items written per run.
const DefaultMaxItems = 2000

// MaxPriceHistory is the number of leading price history entries kept per item.
const MaxPriceHistory = 3

// TimeFormat is the ISO-8601 layout used for generatedAt.
const TimeFormat = "2006-01-02T15:04:05.000Z"

// Predicate decides whether a record is kept.
type Predicate interface {
	Allows(models.ProductRecord) bool
}

// Result carries the envelope together with per-stage counters.
type Result struct {
	Envelope models.OutputEnvelope
	Read     int
	Matched  int
	Kept     int
}

// Run filters, limits and projects records and wraps them in an envelope
// stamped with now. The input slice and its records are not modified.
func Run(records []models.ProductRecord, pred Predicate, maxItems int, now time.Time) Result {
	matched := Filter(records, pred)
	limited := Limit(matched, maxItems)

	items := make([]models.FilteredRecord, 0, len(limited))
	for _, rec := range limited {
		items = append(items, Project(rec))
	}

	return Result{
		Envelope: BuildEnvelope(items, now),
		Read:     len(records),
		Matched:  len(matched),
		Kept:     len(items),
	}
}

// Filter returns the records accepted by pred, in input order.
func Filter(records []models.ProductRecord, pred Predicate) []models.ProductRecord {
	var out []models.ProductRecord
	for _, rec := range records {
		if pred.Allows(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// Limit returns the first n elements of items.
func Limit[T any](items []T, n int) []T {
	if n < 0 {
		n = 0
	}
	if len(items) > n {
		return items[:n]
	}
	return items
}

// Project builds the reduced output record. Absent fields stay nil and are
// written as null.
func Project(rec models.ProductRecord) models.FilteredRecord {
	return models.FilteredRecord{
		Name:         clone(rec.Field("name")),
		Store:        rec.Store(),
		Price:        clone(rec.Field("price")),
		Unit:         clone(rec.Field("unit")),
		Quantity:     clone(rec.Field("quantity")),
		PriceHistory: priceHistory(rec.Field("priceHistory")),
	}
}

func priceHistory(raw json.RawMessage) []json.RawMessage {
	out := []json.RawMessage{}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return out
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return out
	}
	for _, e := range Limit(entries, MaxPriceHistory) {
		out = append(out, clone(e))
	}
	return out
}

// BuildEnvelope derives count and stores from items. Stores are listed in
// order of first appearance.
func BuildEnvelope(items []models.FilteredRecord, now time.Time) models.OutputEnvelope {
	if items == nil {
		items = []models.FilteredRecord{}
	}

	stores := []string{}
	seen := make(map[string]struct{})
	for _, it := range items {
		if _, ok := seen[it.Store]; ok {
			continue
		}
		seen[it.Store] = struct{}{}
		stores = append(stores, it.Store)
	}

	return models.OutputEnvelope{
		GeneratedAt: now.UTC().Format(TimeFormat),
		Count:       len(items),
		Stores:      stores,
		Items:       items,
	}
}

func clone(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	return append(json.RawMessage(nil), raw...)
}
