package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psephos-ai/psephos-go/internal/models"
)

func TestGroupVotesByParty(t *testing.T) {
	records := []models.HistoricalVoteRecord{
		{Year: 2022, Party: "Alliance", TotalVotes: 500},
		{Year: 2014, Party: "Alliance", TotalVotes: 300},
		{Year: 2018, Party: "Unity", TotalVotes: 400},
		{Year: 2018, Party: "Alliance", TotalVotes: 450},
	}

	grouped := GroupVotesByParty(records)

	require.Len(t, grouped, 2)
	require.Len(t, grouped["Alliance"], 3)
	// Ordered ascending by year
	assert.Equal(t, 2014, grouped["Alliance"][0].Year)
	assert.Equal(t, 2018, grouped["Alliance"][1].Year)
	assert.Equal(t, 2022, grouped["Alliance"][2].Year)
	assert.Equal(t, []models.HistoricalVoteRecord{{Year: 2018, Party: "Unity", TotalVotes: 400}}, grouped["Unity"])
}

func TestGroupVotesByPartyEmptyInput(t *testing.T) {
	grouped := GroupVotesByParty(nil)
	assert.Empty(t, grouped)
}

func TestTotalVotesByYear(t *testing.T) {
	records := []models.HistoricalVoteRecord{
		{Year: 2018, Party: "Alliance", TotalVotes: 450},
		{Year: 2018, Party: "Unity", TotalVotes: 400},
		{Year: 2022, Party: "Alliance", TotalVotes: 500},
	}

	totals := TotalVotesByYear(records)

	assert.Equal(t, int64(850), totals[2018])
	assert.Equal(t, int64(500), totals[2022])
}

func TestPartyShareSeriesNormalization(t *testing.T) {
	// One year, three parties summing to 1000: shares must sum to 100.
	records := []models.HistoricalVoteRecord{
		{Year: 2022, Party: "A", TotalVotes: 550},
		{Year: 2022, Party: "B", TotalVotes: 300},
		{Year: 2022, Party: "C", TotalVotes: 150},
	}
	totals := TotalVotesByYear(records)

	var sum float64
	for _, party := range []string{"A", "B", "C"} {
		grouped := GroupVotesByParty(records)
		series := PartyShareSeries(grouped[party], totals)
		require.Len(t, series, 1)
		sum += series[0].Share
	}

	assert.InDelta(t, 100.0, sum, 1e-9)
}

func TestPartyShareSeriesZeroYearTotal(t *testing.T) {
	records := []models.HistoricalVoteRecord{
		{Year: 2022, Party: "A", TotalVotes: 0},
	}
	series := PartyShareSeries(records, TotalVotesByYear(records))

	require.Len(t, series, 1)
	assert.Zero(t, series[0].Share)
}
