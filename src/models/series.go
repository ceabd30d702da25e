package models

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// Series Request
// -----------------------------------------------------------------------------

// ParseSeriesIDs splits a comma separated series_id parameter into a request.
func ParseSeriesIDs(raw string) []string {
	return NewSeriesRequest(strings.Split(raw, ","))
}

// NewSeriesRequest trims identifiers, drops empty ones and removes duplicates
// while keeping the order of first occurrence.
func NewSeriesRequest(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// -----------------------------------------------------------------------------
// Observation
// -----------------------------------------------------------------------------

// MObservation is a single dated value of a series.
type MObservation struct {
	Date  string          `json:"date"`
	Value decimal.Decimal `json:"value"`
}

// -----------------------------------------------------------------------------
// Series Result
// -----------------------------------------------------------------------------

// MSeriesResult carries either observations or an error message, never both.
type MSeriesResult struct {
	Observations []MObservation
	Error        string
}

func NewObservationsResult(obs []MObservation) MSeriesResult {
	if obs == nil {
		obs = []MObservation{}
	}
	return MSeriesResult{Observations: obs}
}

func NewErrorResult(msg string) MSeriesResult {
	if msg == "" {
		msg = "unknown error"
	}
	return MSeriesResult{Error: msg}
}

// IsError reports whether the fetch for this series failed.
func (r MSeriesResult) IsError() bool {
	return r.Error != ""
}

func (r MSeriesResult) MarshalJSON() ([]byte, error) {
	if r.IsError() {
		return json.Marshal(struct {
			Error string `json:"error"`
		}{r.Error})
	}
	obs := r.Observations
	if obs == nil {
		obs = []MObservation{}
	}
	return json.Marshal(struct {
		Observations []MObservation `json:"observations"`
	}{obs})
}

func (r *MSeriesResult) UnmarshalJSON(data []byte) error {
	var raw struct {
		Observations []MObservation `json:"observations"`
		Error        *string        `json:"error"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Error != nil {
		*r = NewErrorResult(*raw.Error)
		return nil
	}
	*r = NewObservationsResult(raw.Observations)
	return nil
}

// -----------------------------------------------------------------------------
// Result Map
// -----------------------------------------------------------------------------

// MResultMap maps series identifiers to results and remembers insertion
// order so the JSON object follows the order of the request.
type MResultMap struct {
	order   []string
	entries map[string]MSeriesResult
}

func NewResultMap(capacity int) *MResultMap {
	return &MResultMap{
		order:   make([]string, 0, capacity),
		entries: make(map[string]MSeriesResult, capacity),
	}
}

// Set stores the result for id. Re-setting an id keeps its original position.
func (m *MResultMap) Set(id string, result MSeriesResult) {
	if _, ok := m.entries[id]; !ok {
		m.order = append(m.order, id)
	}
	m.entries[id] = result
}

func (m *MResultMap) Get(id string) (MSeriesResult, bool) {
	r, ok := m.entries[id]
	return r, ok
}

// Keys returns identifiers in insertion order.
func (m *MResultMap) Keys() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

func (m *MResultMap) Len() int {
	return len(m.order)
}

// Failed counts entries carrying an error.
func (m *MResultMap) Failed() int {
	n := 0
	for _, r := range m.entries {
		if r.IsError() {
			n++
		}
	}
	return n
}

func (m MResultMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range m.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(m.entries[id])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
