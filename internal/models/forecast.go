package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Forecast run lifecycle states. Pending and running are transient; completed
// and failed are terminal.
const (
	RunStatusPending   = "pending"
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Trend direction classifications for a party's vote-share slope.
const (
	TrendRising  = "rising"
	TrendFalling = "falling"
	TrendStable  = "stable"
)

// MonteCarloResult summarizes one simulated vote-share distribution. Samples
// are sorted ascending; Lower and Upper are the configured confidence bounds.
type MonteCarloResult struct {
	Samples           []float64 `json:"-"`
	Mean              float64   `json:"mean"`
	Median            float64   `json:"median"`
	Lower             float64   `json:"lower"`
	Upper             float64   `json:"upper"`
	StandardDeviation float64   `json:"standard_deviation"`
}

// InfluenceFactor describes one weighted driver behind a party forecast
type InfluenceFactor struct {
	Factor string          `json:"factor"`
	Weight decimal.Decimal `json:"weight"`
	Impact string          `json:"impact"`
}

// HistoricalTrend is the observed share series attached to a forecast result
type HistoricalTrend struct {
	Years      []int     `json:"years"`
	VoteShares []float64 `json:"vote_shares"`
}

// ForecastResult represents one party's projected vote share for the target
// election, with confidence bounds from Monte Carlo simulation
type ForecastResult struct {
	ID                 string            `json:"id" db:"id"`
	RunID              string            `json:"run_id" db:"run_id"`
	ResultType         string            `json:"result_type" db:"result_type"`
	EntityName         string            `json:"entity_name" db:"entity_name"`
	PredictedVoteShare decimal.Decimal   `json:"predicted_vote_share" db:"predicted_vote_share"`
	VoteShareLower     decimal.Decimal   `json:"vote_share_lower" db:"vote_share_lower"`
	VoteShareUpper     decimal.Decimal   `json:"vote_share_upper" db:"vote_share_upper"`
	HistoricalTrend    HistoricalTrend   `json:"historical_trend" db:"historical_trend"`
	TrendDirection     string            `json:"trend_direction" db:"trend_direction"`
	TrendStrength      decimal.Decimal   `json:"trend_strength" db:"trend_strength"`
	Confidence         decimal.Decimal   `json:"confidence" db:"confidence"`
	InfluenceFactors   []InfluenceFactor `json:"influence_factors" db:"influence_factors"`
	CreatedAt          time.Time         `json:"created_at" db:"created_at"`
}

// KeyFactor names one driver of a swing classification
type KeyFactor struct {
	Factor string `json:"factor"`
	Impact string `json:"impact"`
}

// SwingRegion represents a contested region whose outcome the model
// considers genuinely uncertain
type SwingRegion struct {
	ID                 string          `json:"id" db:"id"`
	RunID              string          `json:"run_id" db:"run_id"`
	Region             string          `json:"region" db:"region"`
	RegionName         string          `json:"region_name" db:"region_name"`
	Position           string          `json:"position,omitempty" db:"position"`
	MarginPercent      decimal.Decimal `json:"margin_percent" db:"margin_percent"`
	MarginVotes        int64           `json:"margin_votes" db:"margin_votes"`
	VolatilityScore    decimal.Decimal `json:"volatility_score" db:"volatility_score"`
	SwingMagnitude     decimal.Decimal `json:"swing_magnitude" db:"swing_magnitude"`
	LeadingEntity      string          `json:"leading_entity" db:"leading_entity"`
	ChallengingEntity  string          `json:"challenging_entity" db:"challenging_entity"`
	SentimentBalance   string          `json:"sentiment_balance" db:"sentiment_balance"`
	RecentTrendShift   decimal.Decimal `json:"recent_trend_shift" db:"recent_trend_shift"`
	OutcomeUncertainty decimal.Decimal `json:"outcome_uncertainty" db:"outcome_uncertainty"`
	KeyFactors         []KeyFactor     `json:"key_factors" db:"key_factors"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
}

// ModelParameters records the model configuration a run executed with
type ModelParameters struct {
	MonteCarloIterations  int     `json:"monte_carlo_iterations"`
	ConfidenceLevel       float64 `json:"confidence_level"`
	HistoricalWeightDecay float64 `json:"historical_weight_decay"`
	SentimentWeight       float64 `json:"sentiment_weight"`
	TrendWeight           float64 `json:"trend_weight"`
	VolatilityMultiplier  float64 `json:"volatility_multiplier"`
}

// ForecastRun represents the lifecycle record of one forecast execution
type ForecastRun struct {
	ID                  string           `json:"id" db:"id"`
	TargetYear          int              `json:"target_year" db:"target_year"`
	TargetPosition      string           `json:"target_position,omitempty" db:"target_position"`
	TargetState         string           `json:"target_state,omitempty" db:"target_state"`
	Status              string           `json:"status" db:"status"`
	StartedAt           *time.Time       `json:"started_at,omitempty" db:"started_at"`
	CompletedAt         *time.Time       `json:"completed_at,omitempty" db:"completed_at"`
	TotalSimulations    int              `json:"total_simulations" db:"total_simulations"`
	HistoricalYearsUsed int              `json:"historical_years_used" db:"historical_years_used"`
	ModelParameters     *ModelParameters `json:"model_parameters,omitempty" db:"model_parameters"`
	ErrorMessage        string           `json:"error_message,omitempty" db:"error_message"`
	CreatedAt           time.Time        `json:"created_at" db:"created_at"`
}

// ForecastRunUpdate is a partial update of a run record; nil fields are
// left untouched
type ForecastRunUpdate struct {
	Status              *string          `json:"status,omitempty"`
	StartedAt           *time.Time       `json:"started_at,omitempty"`
	CompletedAt         *time.Time       `json:"completed_at,omitempty"`
	TotalSimulations    *int             `json:"total_simulations,omitempty"`
	HistoricalYearsUsed *int             `json:"historical_years_used,omitempty"`
	ModelParameters     *ModelParameters `json:"model_parameters,omitempty"`
	ErrorMessage        *string          `json:"error_message,omitempty"`
}

// ForecastSummary is the caller-facing bundle of a completed run's outputs
type ForecastSummary struct {
	RunID        string           `json:"run_id"`
	PartyResults []ForecastResult `json:"party_results"`
	SwingRegions []SwingRegion    `json:"swing_regions"`
	Narrative    string           `json:"narrative,omitempty"`
}
