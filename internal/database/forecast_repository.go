package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/psephos-ai/psephos-go/internal/models"
)

// ForecastRepository persists forecast runs, party results, and swing
// regions. It implements interfaces.ForecastStore.
type ForecastRepository struct {
	pool DatabasePool
}

// NewForecastRepository creates a new forecast repository.
//
// Parameters:
//
//	pool: The database connection pool.
//
// Returns:
//
//	*ForecastRepository: The initialized repository.
func NewForecastRepository(pool DatabasePool) *ForecastRepository {
	return &ForecastRepository{pool: pool}
}

// CreateForecastRun inserts a new run record.
func (r *ForecastRepository) CreateForecastRun(ctx context.Context, run *models.ForecastRun) error {
	query := `
		INSERT INTO forecast_runs (id, target_year, target_position, target_state, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(ctx, query,
		run.ID, run.TargetYear, run.TargetPosition, run.TargetState, run.Status, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create forecast run: %w", err)
	}
	return nil
}

// GetForecastRun fetches a run by id; nil when no run matches.
func (r *ForecastRepository) GetForecastRun(ctx context.Context, id string) (*models.ForecastRun, error) {
	query := `
		SELECT id, target_year, COALESCE(target_position, ''), COALESCE(target_state, ''),
		       status, started_at, completed_at, total_simulations, historical_years_used,
		       model_parameters, COALESCE(error_message, ''), created_at
		FROM forecast_runs
		WHERE id = $1`

	var run models.ForecastRun
	var paramsJSON []byte
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&run.ID,
		&run.TargetYear,
		&run.TargetPosition,
		&run.TargetState,
		&run.Status,
		&run.StartedAt,
		&run.CompletedAt,
		&run.TotalSimulations,
		&run.HistoricalYearsUsed,
		&paramsJSON,
		&run.ErrorMessage,
		&run.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get forecast run: %w", err)
	}

	if len(paramsJSON) > 0 {
		var params models.ModelParameters
		if err := json.Unmarshal(paramsJSON, &params); err != nil {
			return nil, fmt.Errorf("failed to unmarshal model parameters: %w", err)
		}
		run.ModelParameters = &params
	}
	return &run, nil
}

// UpdateForecastRun applies a partial update; nil fields are untouched.
func (r *ForecastRepository) UpdateForecastRun(ctx context.Context, id string, update *models.ForecastRunUpdate) error {
	setClauses := make([]string, 0, 7)
	args := make([]interface{}, 0, 8)
	argIdx := 1

	addClause := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if update.Status != nil {
		addClause("status", *update.Status)
	}
	if update.StartedAt != nil {
		addClause("started_at", *update.StartedAt)
	}
	if update.CompletedAt != nil {
		addClause("completed_at", *update.CompletedAt)
	}
	if update.TotalSimulations != nil {
		addClause("total_simulations", *update.TotalSimulations)
	}
	if update.HistoricalYearsUsed != nil {
		addClause("historical_years_used", *update.HistoricalYearsUsed)
	}
	if update.ModelParameters != nil {
		paramsJSON, err := json.Marshal(update.ModelParameters)
		if err != nil {
			return fmt.Errorf("failed to marshal model parameters: %w", err)
		}
		addClause("model_parameters", paramsJSON)
	}
	if update.ErrorMessage != nil {
		addClause("error_message", *update.ErrorMessage)
	}
	if len(setClauses) == 0 {
		return nil
	}

	query := fmt.Sprintf("UPDATE forecast_runs SET %s WHERE id = $%d", strings.Join(setClauses, ", "), argIdx)
	args = append(args, id)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update forecast run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("forecast run %s not found", id)
	}
	return nil
}

// CreateForecastResults inserts all party results of a run.
func (r *ForecastRepository) CreateForecastResults(ctx context.Context, results []models.ForecastResult) error {
	query := `
		INSERT INTO forecast_results (
			id, run_id, result_type, entity_name,
			predicted_vote_share, vote_share_lower, vote_share_upper,
			historical_trend, trend_direction, trend_strength, confidence, influence_factors
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	for _, result := range results {
		trendJSON, err := json.Marshal(result.HistoricalTrend)
		if err != nil {
			return fmt.Errorf("failed to marshal historical trend: %w", err)
		}
		factorsJSON, err := json.Marshal(result.InfluenceFactors)
		if err != nil {
			return fmt.Errorf("failed to marshal influence factors: %w", err)
		}

		_, err = r.pool.Exec(ctx, query,
			result.ID, result.RunID, result.ResultType, result.EntityName,
			result.PredictedVoteShare, result.VoteShareLower, result.VoteShareUpper,
			trendJSON, result.TrendDirection, result.TrendStrength, result.Confidence, factorsJSON)
		if err != nil {
			return fmt.Errorf("failed to insert forecast result for %s: %w", result.EntityName, err)
		}
	}
	return nil
}

// CreateSwingRegions inserts all swing regions of a run.
func (r *ForecastRepository) CreateSwingRegions(ctx context.Context, regions []models.SwingRegion) error {
	query := `
		INSERT INTO swing_regions (
			id, run_id, region, region_name, position,
			margin_percent, margin_votes, volatility_score, swing_magnitude,
			leading_entity, challenging_entity, sentiment_balance,
			recent_trend_shift, outcome_uncertainty, key_factors
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	for _, region := range regions {
		factorsJSON, err := json.Marshal(region.KeyFactors)
		if err != nil {
			return fmt.Errorf("failed to marshal key factors: %w", err)
		}

		_, err = r.pool.Exec(ctx, query,
			region.ID, region.RunID, region.Region, region.RegionName, region.Position,
			region.MarginPercent, region.MarginVotes, region.VolatilityScore, region.SwingMagnitude,
			region.LeadingEntity, region.ChallengingEntity, region.SentimentBalance,
			region.RecentTrendShift, region.OutcomeUncertainty, factorsJSON)
		if err != nil {
			return fmt.Errorf("failed to insert swing region %s: %w", region.Region, err)
		}
	}
	return nil
}

// GetForecastResults returns a run's party results sorted descending by
// predicted vote share.
func (r *ForecastRepository) GetForecastResults(ctx context.Context, runID string) ([]models.ForecastResult, error) {
	query := `
		SELECT id, run_id, result_type, entity_name,
		       predicted_vote_share, vote_share_lower, vote_share_upper,
		       historical_trend, trend_direction, trend_strength, confidence, influence_factors, created_at
		FROM forecast_results
		WHERE run_id = $1
		ORDER BY predicted_vote_share DESC`

	rows, err := r.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query forecast results: %w", err)
	}
	defer rows.Close()

	results := make([]models.ForecastResult, 0)
	for rows.Next() {
		var result models.ForecastResult
		var trendJSON, factorsJSON []byte
		if err := rows.Scan(
			&result.ID, &result.RunID, &result.ResultType, &result.EntityName,
			&result.PredictedVoteShare, &result.VoteShareLower, &result.VoteShareUpper,
			&trendJSON, &result.TrendDirection, &result.TrendStrength, &result.Confidence, &factorsJSON,
			&result.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan forecast result: %w", err)
		}
		if err := json.Unmarshal(trendJSON, &result.HistoricalTrend); err != nil {
			return nil, fmt.Errorf("failed to unmarshal historical trend: %w", err)
		}
		if err := json.Unmarshal(factorsJSON, &result.InfluenceFactors); err != nil {
			return nil, fmt.Errorf("failed to unmarshal influence factors: %w", err)
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate forecast results: %w", err)
	}
	return results, nil
}

// GetSwingRegions returns a run's swing regions sorted descending by
// volatility score.
func (r *ForecastRepository) GetSwingRegions(ctx context.Context, runID string) ([]models.SwingRegion, error) {
	query := `
		SELECT id, run_id, region, region_name, COALESCE(position, ''),
		       margin_percent, margin_votes, volatility_score, swing_magnitude,
		       leading_entity, challenging_entity, sentiment_balance,
		       recent_trend_shift, outcome_uncertainty, key_factors, created_at
		FROM swing_regions
		WHERE run_id = $1
		ORDER BY volatility_score DESC`

	rows, err := r.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query swing regions: %w", err)
	}
	defer rows.Close()

	regions := make([]models.SwingRegion, 0)
	for rows.Next() {
		var region models.SwingRegion
		var factorsJSON []byte
		if err := rows.Scan(
			&region.ID, &region.RunID, &region.Region, &region.RegionName, &region.Position,
			&region.MarginPercent, &region.MarginVotes, &region.VolatilityScore, &region.SwingMagnitude,
			&region.LeadingEntity, &region.ChallengingEntity, &region.SentimentBalance,
			&region.RecentTrendShift, &region.OutcomeUncertainty, &factorsJSON,
			&region.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan swing region: %w", err)
		}
		if err := json.Unmarshal(factorsJSON, &region.KeyFactors); err != nil {
			return nil, fmt.Errorf("failed to unmarshal key factors: %w", err)
		}
		regions = append(regions, region)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate swing regions: %w", err)
	}
	return regions, nil
}
