package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeriesIDs(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"single", "DGS10", []string{"DGS10"}},
		{"trimmed", " DGS10 , FEDFUNDS ", []string{"DGS10", "FEDFUNDS"}},
		{"empty entries", ",DGS10,,FEDFUNDS,", []string{"DGS10", "FEDFUNDS"}},
		{"duplicates keep first position", "B,A,B,C,A", []string{"B", "A", "C"}},
		{"nothing", "", []string{}},
		{"only separators", " , ,", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSeriesIDs(tt.raw))
		})
	}
}

func TestSeriesResultJSONIsExclusive(t *testing.T) {
	errBody, err := json.Marshal(NewErrorResult("upstream status 500"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"upstream status 500"}`, string(errBody))

	emptyBody, err := json.Marshal(NewObservationsResult(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"observations":[]}`, string(emptyBody))

	obs := []MObservation{{Date: "2024-03-07", Value: decimal.RequireFromString("6.74")}}
	obsBody, err := json.Marshal(NewObservationsResult(obs))
	require.NoError(t, err)
	assert.JSONEq(t, `{"observations":[{"date":"2024-03-07","value":"6.74"}]}`, string(obsBody))
}

func TestSeriesResultUnmarshal(t *testing.T) {
	var r MSeriesResult
	require.NoError(t, json.Unmarshal([]byte(`{"error":"boom"}`), &r))
	assert.True(t, r.IsError())
	assert.Nil(t, r.Observations)

	require.NoError(t, json.Unmarshal([]byte(`{"observations":[{"date":"2024-01-01","value":"1.5"}]}`), &r))
	assert.False(t, r.IsError())
	require.Len(t, r.Observations, 1)
	assert.True(t, decimal.RequireFromString("1.5").Equal(r.Observations[0].Value))
}

func TestResultMapPreservesInsertionOrder(t *testing.T) {
	m := NewResultMap(3)
	m.Set("ZZZ", NewObservationsResult(nil))
	m.Set("AAA", NewErrorResult("upstream status 404"))
	m.Set("MMM", NewObservationsResult(nil))
	m.Set("ZZZ", NewErrorResult("replaced"))

	assert.Equal(t, []string{"ZZZ", "AAA", "MMM"}, m.Keys())
	assert.Equal(t, 3, m.Len())
	assert.Equal(t, 2, m.Failed())

	body, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `{"ZZZ":{"error":"replaced"},"AAA":{"error":"upstream status 404"},"MMM":{"observations":[]}}`, string(body))
}

func TestEmptyResultMapJSON(t *testing.T) {
	body, err := json.Marshal(NewResultMap(0))
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(body))
}
