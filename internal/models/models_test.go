package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLastShare(t *testing.T) {
	data := &PartyTrendData{
		Party: "Alpha",
		HistoricalVotes: []PartyYearShare{
			{Year: 2018, Votes: 4800, Share: 48},
			{Year: 2022, Votes: 5100, Share: 51},
		},
	}

	last, ok := data.LastShare()
	require.True(t, ok)
	assert.Equal(t, 2022, last.Year)
	assert.Equal(t, 51.0, last.Share)
}

func TestLastShareEmpty(t *testing.T) {
	data := &PartyTrendData{Party: "Ghost"}

	_, ok := data.LastShare()
	assert.False(t, ok)
}

func TestMonteCarloResultSamplesNotSerialized(t *testing.T) {
	result := MonteCarloResult{Samples: []float64{1, 2, 3}, Mean: 2}

	raw, err := json.Marshal(result)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "Samples")
	assert.Contains(t, string(raw), `"mean":2`)
}
