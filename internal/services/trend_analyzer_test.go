package services

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psephos-ai/psephos-go/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func shareSeries(years []int, shares []float64) []models.PartyYearShare {
	series := make([]models.PartyYearShare, len(years))
	for i := range years {
		series[i] = models.PartyYearShare{Year: years[i], Share: shares[i]}
	}
	return series
}

func TestAnalyzeFewerThanTwoPoints(t *testing.T) {
	analyzer := NewTrendAnalyzer(testLogger())

	for _, series := range [][]models.PartyYearShare{
		nil,
		shareSeries([]int{2022}, []float64{41.5}),
	} {
		data := analyzer.Analyze("Alliance", series)
		assert.Zero(t, data.TrendSlope)
		assert.Zero(t, data.Volatility)
		assert.Zero(t, data.AvgGrowthRate)
	}
}

func TestAnalyzeLinearSeries(t *testing.T) {
	analyzer := NewTrendAnalyzer(testLogger())

	// Perfect line: +0.5 share points per year, sample stddev exactly 2.
	data := analyzer.Analyze("Alliance", shareSeries([]int{2014, 2018, 2022}, []float64{40, 42, 44}))

	assert.InDelta(t, 0.5, data.TrendSlope, 1e-6)
	assert.InDelta(t, 2.0, data.Volatility, 1e-9)
	// Mean of 2/40 and 2/42
	assert.InDelta(t, (0.05+2.0/42)/2, data.AvgGrowthRate, 1e-9)
}

func TestAnalyzeZeroVarianceSeries(t *testing.T) {
	analyzer := NewTrendAnalyzer(testLogger())

	data := analyzer.Analyze("Steady", shareSeries([]int{2014, 2018, 2022}, []float64{33, 33, 33}))

	assert.Zero(t, data.TrendSlope)
	assert.Zero(t, data.Volatility)
	assert.Zero(t, data.AvgGrowthRate)
}

func TestAnalyzeDegenerateFitClampedToZero(t *testing.T) {
	analyzer := NewTrendAnalyzer(testLogger())

	// Two points in the same year make the OLS denominator zero.
	data := analyzer.Analyze("Alliance", shareSeries([]int{2022, 2022}, []float64{40, 60}))

	assert.Zero(t, data.TrendSlope)
}

func TestAvgGrowthRateSkipsZeroPriorShare(t *testing.T) {
	analyzer := NewTrendAnalyzer(testLogger())

	// The 0 -> 20 period would divide by zero and is skipped; only the
	// 20 -> 30 period counts.
	data := analyzer.Analyze("Comeback", shareSeries([]int{2014, 2018, 2022}, []float64{0, 20, 30}))

	assert.InDelta(t, 0.5, data.AvgGrowthRate, 1e-9)
}

func TestAvgGrowthRateAllPriorsZero(t *testing.T) {
	analyzer := NewTrendAnalyzer(testLogger())

	data := analyzer.Analyze("New", shareSeries([]int{2018, 2022}, []float64{0, 25}))

	assert.Zero(t, data.AvgGrowthRate)
}

func TestSmoothedShare(t *testing.T) {
	analyzer := NewTrendAnalyzer(testLogger())

	data := analyzer.Analyze("Alliance", shareSeries([]int{2010, 2014, 2018, 2022}, []float64{40, 42, 44, 46}))
	// Last 3-period SMA window: (42+44+46)/3
	assert.InDelta(t, 44.0, data.SmoothedShare, 1e-9)

	short := analyzer.Analyze("Alliance", shareSeries([]int{2018, 2022}, []float64{40, 42}))
	assert.Zero(t, short.SmoothedShare)
}

func TestAnalyzeParties(t *testing.T) {
	analyzer := NewTrendAnalyzer(testLogger())

	records := []models.HistoricalVoteRecord{
		{Year: 2018, Party: "A", TotalVotes: 600},
		{Year: 2018, Party: "B", TotalVotes: 400},
		{Year: 2022, Party: "A", TotalVotes: 550},
		{Year: 2022, Party: "B", TotalVotes: 450},
	}

	trends := analyzer.AnalyzeParties(records)

	require.Len(t, trends, 2)
	require.Len(t, trends["A"].HistoricalVotes, 2)
	assert.InDelta(t, 60.0, trends["A"].HistoricalVotes[0].Share, 1e-9)
	assert.InDelta(t, 55.0, trends["A"].HistoricalVotes[1].Share, 1e-9)
	// A declines exactly as B rises
	assert.InDelta(t, trends["A"].TrendSlope, -trends["B"].TrendSlope, 1e-9)
}
