package services

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/psephos-ai/psephos-go/internal/config"
	"github.com/psephos-ai/psephos-go/internal/models"
)

// Classification thresholds for party forecasts.
const (
	// risingSlopeThreshold and fallingSlopeThreshold bound the "stable" band
	// of the trend-direction classification, in share points per year.
	risingSlopeThreshold  = 0.5
	fallingSlopeThreshold = -0.5
	// highVolatilityThreshold buckets the volatility influence factor.
	highVolatilityThreshold = 5.0
	// confidenceFloor is the minimum confidence attached to any forecast.
	confidenceFloor = 0.3
)

// ForecastGenerator combines per-party trend data with Monte Carlo
// simulation to produce ranked vote-share forecasts.
type ForecastGenerator struct {
	cfg       *config.ForecastConfig
	simulator *MonteCarloSimulator
	logger    *logrus.Logger
}

// NewForecastGenerator creates a new forecast generator.
func NewForecastGenerator(cfg *config.ForecastConfig, simulator *MonteCarloSimulator, logger *logrus.Logger) *ForecastGenerator {
	return &ForecastGenerator{
		cfg:       cfg,
		simulator: simulator,
		logger:    logger,
	}
}

// Generate produces one forecast per party with historical votes, sorted
// descending by predicted vote share. Parties without any historical data
// point are silently omitted.
func (fg *ForecastGenerator) Generate(trends map[string]*models.PartyTrendData, targetYear int) []models.ForecastResult {
	results := make([]models.ForecastResult, 0, len(trends))

	for _, party := range SortedParties(trends) {
		trendData := trends[party]
		last, ok := trendData.LastShare()
		if !ok {
			continue
		}

		yearsDelta := targetYear - last.Year
		trendProjection := last.Share + trendData.TrendSlope*float64(yearsDelta)

		// Uncertainty grows with the square root of the forecast horizon;
		// a non-positive horizon degenerates to zero spread.
		adjustedVolatility := 0.0
		if yearsDelta > 0 {
			adjustedVolatility = trendData.Volatility * fg.cfg.VolatilityMultiplier * math.Sqrt(float64(yearsDelta))
		}

		simulation := fg.simulator.Run(trendProjection, adjustedVolatility, 0, fg.cfg.MonteCarloIterations, fg.cfg.ConfidenceLevel)

		results = append(results, models.ForecastResult{
			ResultType:         "party",
			EntityName:         party,
			PredictedVoteShare: decimal.NewFromFloat(simulation.Mean),
			VoteShareLower:     decimal.NewFromFloat(simulation.Lower),
			VoteShareUpper:     decimal.NewFromFloat(simulation.Upper),
			HistoricalTrend:    historicalTrend(trendData),
			TrendDirection:     classifyTrend(trendData.TrendSlope),
			TrendStrength:      decimal.NewFromFloat(math.Abs(trendData.TrendSlope)),
			Confidence:         decimal.NewFromFloat(forecastConfidence(simulation)),
			InfluenceFactors:   fg.influenceFactors(trendData),
		})

		if fg.logger != nil {
			fg.logger.WithFields(logrus.Fields{
				"party":      party,
				"projection": trendProjection,
				"mean":       simulation.Mean,
				"direction":  classifyTrend(trendData.TrendSlope),
			}).Debug("Generated party forecast")
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].PredictedVoteShare.GreaterThan(results[j].PredictedVoteShare)
	})
	return results
}

func classifyTrend(slope float64) string {
	switch {
	case slope > risingSlopeThreshold:
		return models.TrendRising
	case slope < fallingSlopeThreshold:
		return models.TrendFalling
	default:
		return models.TrendStable
	}
}

// forecastConfidence maps simulated dispersion to a confidence score in
// [confidenceFloor, 1]. A zero mean would divide by zero and is treated as
// the floor; the dispersion ratio is non-negative, so the score never
// exceeds 1.
func forecastConfidence(sim *models.MonteCarloResult) float64 {
	if sim.Mean == 0 {
		return confidenceFloor
	}
	confidence := 1 - (sim.StandardDeviation/sim.Mean)*0.5
	if confidence < confidenceFloor {
		return confidenceFloor
	}
	return confidence
}

func (fg *ForecastGenerator) influenceFactors(trendData *models.PartyTrendData) []models.InfluenceFactor {
	volatilityImpact := "medium"
	if trendData.Volatility > highVolatilityThreshold {
		volatilityImpact = "high"
	}
	growthImpact := "negative"
	if trendData.AvgGrowthRate > 0 {
		growthImpact = "positive"
	}

	return []models.InfluenceFactor{
		{
			Factor: "historical_trend",
			Weight: decimal.NewFromFloat(fg.cfg.TrendWeight),
			Impact: classifyTrend(trendData.TrendSlope),
		},
		{
			Factor: "volatility",
			Weight: decimal.NewFromFloat(trendData.Volatility),
			Impact: volatilityImpact,
		},
		{
			Factor: "growth_rate",
			Weight: decimal.NewFromFloat(trendData.AvgGrowthRate),
			Impact: growthImpact,
		},
	}
}

func historicalTrend(trendData *models.PartyTrendData) models.HistoricalTrend {
	ht := models.HistoricalTrend{
		Years:      make([]int, 0, len(trendData.HistoricalVotes)),
		VoteShares: make([]float64, 0, len(trendData.HistoricalVotes)),
	}
	for _, point := range trendData.HistoricalVotes {
		ht.Years = append(ht.Years, point.Year)
		ht.VoteShares = append(ht.VoteShares, point.Share)
	}
	return ht
}
