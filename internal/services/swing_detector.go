package services

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/psephos-ai/psephos-go/internal/config"
	"github.com/psephos-ai/psephos-go/internal/models"
)

// Swing classification thresholds. A region is a swing region iff its
// leader/challenger margin is below swingMarginThreshold percent AND the two
// parties' average volatility exceeds swingVolatilityThreshold.
const (
	swingMarginThreshold     = 10.0
	swingVolatilityThreshold = 2.0
	// tightMarginThreshold upgrades the "tight margin" key factor to high.
	tightMarginThreshold = 5.0
)

// SwingRegionDetector cross-references the two leading parties per region
// using the most recent year's data and each party's volatility.
type SwingRegionDetector struct {
	cfg    *config.ForecastConfig
	logger *logrus.Logger
}

// NewSwingRegionDetector creates a new swing region detector.
func NewSwingRegionDetector(cfg *config.ForecastConfig, logger *logrus.Logger) *SwingRegionDetector {
	return &SwingRegionDetector{cfg: cfg, logger: logger}
}

// Detect classifies contested regions from the historical records and the
// per-party trend data. Records without a region, and regions with fewer
// than two parties in their latest year, are skipped. Output is sorted
// descending by volatility score.
func (sd *SwingRegionDetector) Detect(records []models.HistoricalVoteRecord, trends map[string]*models.PartyTrendData) []models.SwingRegion {
	byRegion := make(map[string][]models.HistoricalVoteRecord)
	for _, rec := range records {
		if rec.Region == "" {
			continue
		}
		byRegion[rec.Region] = append(byRegion[rec.Region], rec)
	}

	regions := make([]models.SwingRegion, 0)
	for region, regionRecords := range byRegion {
		swing, ok := sd.detectRegion(region, regionRecords, trends)
		if ok {
			regions = append(regions, swing)
		}
	}

	sort.Slice(regions, func(i, j int) bool {
		return regions[i].VolatilityScore.GreaterThan(regions[j].VolatilityScore)
	})
	return regions
}

func (sd *SwingRegionDetector) detectRegion(region string, regionRecords []models.HistoricalVoteRecord, trends map[string]*models.PartyTrendData) (models.SwingRegion, bool) {
	latestYear := 0
	for _, rec := range regionRecords {
		if rec.Year > latestYear {
			latestYear = rec.Year
		}
	}

	latest := make([]models.HistoricalVoteRecord, 0, len(regionRecords))
	var totalVotes int64
	for _, rec := range regionRecords {
		if rec.Year == latestYear {
			latest = append(latest, rec)
			totalVotes += rec.TotalVotes
		}
	}
	if len(latest) < 2 || totalVotes == 0 {
		return models.SwingRegion{}, false
	}

	sort.Slice(latest, func(i, j int) bool { return latest[i].TotalVotes > latest[j].TotalVotes })
	leader, challenger := latest[0], latest[1]

	marginVotes := leader.TotalVotes - challenger.TotalVotes
	margin := float64(marginVotes) / float64(totalVotes) * 100

	leaderVol, leaderSlope := trendStats(trends, leader.Party)
	chalVol, chalSlope := trendStats(trends, challenger.Party)
	avgVolatility := (leaderVol + chalVol) / 2

	if margin >= swingMarginThreshold || avgVolatility <= swingVolatilityThreshold {
		return models.SwingRegion{}, false
	}

	recentTrendShift := chalSlope - leaderSlope
	uncertainty := (swingMarginThreshold - margin) / swingMarginThreshold * avgVolatility / 5
	if uncertainty > 1 {
		uncertainty = 1
	}

	if sd.logger != nil {
		sd.logger.WithFields(logrus.Fields{
			"region":     region,
			"margin":     margin,
			"volatility": avgVolatility,
			"leader":     leader.Party,
			"challenger": challenger.Party,
		}).Debug("Flagged swing region")
	}

	return models.SwingRegion{
		Region:            region,
		RegionName:        region,
		Position:          leader.Position,
		MarginPercent:     decimal.NewFromFloat(margin),
		MarginVotes:       marginVotes,
		VolatilityScore:   decimal.NewFromFloat(avgVolatility),
		SwingMagnitude:    decimal.NewFromFloat(avgVolatility * sd.cfg.VolatilityMultiplier),
		LeadingEntity:     leader.Party,
		ChallengingEntity: challenger.Party,
		// Sentiment integration is not wired into this engine yet.
		SentimentBalance:   "0",
		RecentTrendShift:   decimal.NewFromFloat(recentTrendShift),
		OutcomeUncertainty: decimal.NewFromFloat(uncertainty),
		KeyFactors:         keyFactors(margin, avgVolatility, recentTrendShift),
	}, true
}

func trendStats(trends map[string]*models.PartyTrendData, party string) (volatility, slope float64) {
	trendData, ok := trends[party]
	if !ok {
		return 0, 0
	}
	return trendData.Volatility, trendData.TrendSlope
}

func keyFactors(margin, avgVolatility, recentTrendShift float64) []models.KeyFactor {
	marginImpact := "medium"
	if margin < tightMarginThreshold {
		marginImpact = "high"
	}
	volatilityImpact := "medium"
	if avgVolatility > highVolatilityThreshold {
		volatilityImpact = "high"
	}

	factors := []models.KeyFactor{
		{Factor: "tight margin", Impact: marginImpact},
		{Factor: "high historical volatility", Impact: volatilityImpact},
	}
	if recentTrendShift > 0 {
		factors = append(factors, models.KeyFactor{Factor: "challenger ascending", Impact: "high"})
	}
	return factors
}
