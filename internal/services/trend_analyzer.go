package services

import (
	"math"
	"sort"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
	"github.com/sirupsen/logrus"

	"github.com/psephos-ai/psephos-go/internal/models"
)

// smoothingPeriod is the SMA window applied to the share series for the
// descriptive smoothed-share metric.
const smoothingPeriod = 3

// TrendAnalyzer derives per-party trend statistics from historical vote
// shares. Every numeric edge case degrades to a neutral value; analysis
// never returns an error.
type TrendAnalyzer struct {
	logger *logrus.Logger
}

// NewTrendAnalyzer creates a new trend analyzer.
func NewTrendAnalyzer(logger *logrus.Logger) *TrendAnalyzer {
	return &TrendAnalyzer{logger: logger}
}

// AnalyzeParties computes trend data for every party present in the records.
func (ta *TrendAnalyzer) AnalyzeParties(records []models.HistoricalVoteRecord) map[string]*models.PartyTrendData {
	grouped := GroupVotesByParty(records)
	yearTotals := TotalVotesByYear(records)

	trends := make(map[string]*models.PartyTrendData, len(grouped))
	for party, partyRecords := range grouped {
		series := PartyShareSeries(partyRecords, yearTotals)
		trends[party] = ta.Analyze(party, series)
	}
	return trends
}

// Analyze computes trend statistics for one party's chronologically sorted
// share series.
func (ta *TrendAnalyzer) Analyze(party string, series []models.PartyYearShare) *models.PartyTrendData {
	data := &models.PartyTrendData{
		Party:           party,
		HistoricalVotes: series,
		TrendSlope:      trendSlope(series),
		Volatility:      shareVolatility(series),
		AvgGrowthRate:   avgGrowthRate(series),
		SmoothedShare:   smoothedShare(series),
	}

	if ta.logger != nil {
		ta.logger.WithFields(logrus.Fields{
			"party":      party,
			"points":     len(series),
			"slope":      data.TrendSlope,
			"volatility": data.Volatility,
		}).Debug("Analyzed party trend")
	}
	return data
}

// trendSlope is the ordinary least-squares slope of share against year.
// Fewer than two points, or a degenerate fit, yields 0.
func trendSlope(series []models.PartyYearShare) float64 {
	n := float64(len(series))
	if len(series) < 2 {
		return 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for _, point := range series {
		x := float64(point.Year)
		y := point.Share
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	slope := (n*sumXY - sumX*sumY) / (n*sumXX - sumX*sumX)
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		return 0
	}
	return slope
}

// shareVolatility is the sample standard deviation (divisor n-1) of the
// share values; 0 when fewer than two points.
func shareVolatility(series []models.PartyYearShare) float64 {
	if len(series) < 2 {
		return 0
	}

	var sum float64
	for _, point := range series {
		sum += point.Share
	}
	mean := sum / float64(len(series))

	var sumSq float64
	for _, point := range series {
		diff := point.Share - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(series)-1))
}

// avgGrowthRate is the mean of period-over-period relative share changes,
// skipping periods whose prior share is 0; 0 when no valid periods exist.
func avgGrowthRate(series []models.PartyYearShare) float64 {
	var sum float64
	var count int
	for i := 1; i < len(series); i++ {
		prev := series[i-1].Share
		if prev == 0 {
			continue
		}
		sum += (series[i].Share - prev) / prev
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// smoothedShare is the last value of a 3-period SMA over the share series,
// or 0 when the series is shorter than the window. Descriptive only.
func smoothedShare(series []models.PartyYearShare) float64 {
	if len(series) < smoothingPeriod {
		return 0
	}
	shares := make([]float64, len(series))
	for i, point := range series {
		shares[i] = point.Share
	}
	sma := trend.NewSmaWithPeriod[float64](smoothingPeriod)
	values := helper.ChanToSlice(sma.Compute(helper.SliceToChan(shares)))
	if len(values) == 0 {
		return 0
	}
	return values[len(values)-1]
}

// SortedParties returns the party names of a trend map in deterministic
// order, for stable iteration in logs and prompts.
func SortedParties(trends map[string]*models.PartyTrendData) []string {
	parties := make([]string, 0, len(trends))
	for party := range trends {
		parties = append(parties, party)
	}
	sort.Strings(parties)
	return parties
}
