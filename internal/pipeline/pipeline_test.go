package pipeline

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/drstein77/organicfilter/internal/models"
	"github.com/drstein77/organicfilter/internal/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 16, 8, 30, 0, 123_000_000, time.FixedZone("CEST", 2*60*60))

func decode(t *testing.T, raw string) []models.ProductRecord {
	t.Helper()
	var recs []models.ProductRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &recs))
	return recs
}

func TestRunFiltersAndProjects(t *testing.T) {
	recs := decode(t, `[
		{"name":"Bio Vollmilch","store":"spar","bio":true,"price":1.29,"unit":"l","quantity":1,"priceHistory":[{"p":1.19},{"p":1.25},{"p":1.27},{"p":1.29}],"extra":"dropped"},
		{"name":"Bio Kartoffelbrot","store":"hofer","bio":true},
		{"name":"Bio Vollmilch","store":"lidl","bio":true},
		{"name":"Vollmilch","store":"spar","bio":false},
		{"name":"Bio Karotten","store":"billa","bio":true,"priceHistory":"n/a"},
		{"name":"Bio Apfel","store":"spar","bio":true}
	]`)

	res := Run(recs, policy.Default(), DefaultMaxItems, fixedNow)

	assert.Equal(t, 6, res.Read)
	assert.Equal(t, 3, res.Matched)
	assert.Equal(t, 3, res.Kept)

	env := res.Envelope
	assert.Equal(t, "2026-10-16T06:30:00.123Z", env.GeneratedAt)
	assert.Equal(t, 3, env.Count)
	assert.Equal(t, []string{"spar", "billa"}, env.Stores)
	require.Len(t, env.Items, 3)

	milk := env.Items[0]
	assert.Equal(t, json.RawMessage(`"Bio Vollmilch"`), milk.Name)
	assert.Equal(t, json.RawMessage(`1.29`), milk.Price)
	assert.Equal(t, json.RawMessage(`"l"`), milk.Unit)
	assert.Equal(t, json.RawMessage(`1`), milk.Quantity)
	assert.Equal(t, []json.RawMessage{
		json.RawMessage(`{"p":1.19}`),
		json.RawMessage(`{"p":1.25}`),
		json.RawMessage(`{"p":1.27}`),
	}, milk.PriceHistory)

	assert.Equal(t, []json.RawMessage{}, env.Items[1].PriceHistory)
	assert.Nil(t, env.Items[2].Price)
	assert.Equal(t, []json.RawMessage{}, env.Items[2].PriceHistory)
}

func TestRunLimitsToFirstItems(t *testing.T) {
	recs := make([]models.ProductRecord, 0, 2500)
	for i := 0; i < 2500; i++ {
		recs = append(recs, models.ProductRecord{
			"name":  json.RawMessage(fmt.Sprintf(`"Bio Apfel %d"`, i)),
			"store": json.RawMessage(`"hofer"`),
			"bio":   json.RawMessage(`true`),
		})
	}

	res := Run(recs, policy.Default(), DefaultMaxItems, fixedNow)

	assert.Equal(t, 2500, res.Matched)
	assert.Equal(t, DefaultMaxItems, res.Kept)
	assert.Equal(t, DefaultMaxItems, res.Envelope.Count)
	assert.Equal(t, json.RawMessage(`"Bio Apfel 0"`), res.Envelope.Items[0].Name)
	assert.Equal(t, json.RawMessage(`"Bio Apfel 1999"`), res.Envelope.Items[1999].Name)
}

func TestRunIsIdempotent(t *testing.T) {
	raw := `[
		{"name":"Bio Joghurt","store":"billa","bio":true,"price":0.89},
		{"name":"Bio Lachs","store":"hofer","bio":"ja","priceHistory":[1,2]}
	]`

	first := Run(decode(t, raw), policy.Default(), DefaultMaxItems, fixedNow)
	second := Run(decode(t, raw), policy.Default(), DefaultMaxItems, fixedNow.Add(time.Hour))

	assert.Equal(t, first.Envelope.Items, second.Envelope.Items)
	assert.Equal(t, first.Envelope.Stores, second.Envelope.Stores)
	assert.Equal(t, first.Envelope.Count, second.Envelope.Count)
	assert.NotEqual(t, first.Envelope.GeneratedAt, second.Envelope.GeneratedAt)
}

func TestRunDoesNotMutateInput(t *testing.T) {
	recs := decode(t, `[{"name":"Bio Milch","store":"spar","bio":true,"priceHistory":[1,2,3,4,5]}]`)
	before, err := json.Marshal(recs)
	require.NoError(t, err)

	res := Run(recs, policy.Default(), DefaultMaxItems, fixedNow)
	res.Envelope.Items[0].PriceHistory[0][0] = '9'

	after, err := json.Marshal(recs)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
	assert.Len(t, recs[0], 4)
}

func TestRunEmpty(t *testing.T) {
	res := Run(nil, policy.Default(), DefaultMaxItems, fixedNow)

	out, err := json.Marshal(res.Envelope)
	require.NoError(t, err)
	assert.JSONEq(t, `{"generatedAt":"2026-10-16T06:30:00.123Z","count":0,"stores":[],"items":[]}`, string(out))
}

func TestLimit(t *testing.T) {
	tests := []struct {
		name string
		in   []int
		n    int
		want []int
	}{
		{"under", []int{1, 2}, 3, []int{1, 2}},
		{"exact", []int{1, 2, 3}, 3, []int{1, 2, 3}},
		{"over", []int{1, 2, 3, 4}, 3, []int{1, 2, 3}},
		{"zero", []int{1}, 0, []int{}},
		{"negative", []int{1}, -1, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Limit(tt.in, tt.n))
		})
	}
}

func TestPriceHistory(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"absent", "", 0},
		{"null", "null", 0},
		{"object", `{"a":1}`, 0},
		{"string", `"[1,2]"`, 0},
		{"empty", "[]", 0},
		{"short", "[1,2]", 2},
		{"long", "[1,2,3,4,5]", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var raw json.RawMessage
			if tt.raw != "" {
				raw = json.RawMessage(tt.raw)
			}
			got := priceHistory(raw)
			require.NotNil(t, got)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestBuildEnvelopeStoresAreDistinct(t *testing.T) {
	items := []models.FilteredRecord{
		{Store: "billa"}, {Store: "spar"}, {Store: "billa"}, {Store: "hofer"}, {Store: "spar"},
	}

	env := BuildEnvelope(items, fixedNow)

	assert.Equal(t, []string{"billa", "spar", "hofer"}, env.Stores)
	assert.Equal(t, 5, env.Count)
}
