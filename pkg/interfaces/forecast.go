package interfaces

import (
	"context"

	"github.com/psephos-ai/psephos-go/internal/models"
)

// HistoricalDataSource supplies the historical vote tallies the forecasting
// pipeline consumes. Implementations must return an empty slice, not an
// error, when no rows match the requested scope.
type HistoricalDataSource interface {
	GetHistoricalVotesByParty(ctx context.Context, years []int, position, state string) ([]models.HistoricalVoteRecord, error)
}

// NarrativeGenerator produces a free-text narrative from a structured prompt.
// The orchestrator treats any error, and empty output, as recoverable.
type NarrativeGenerator interface {
	GenerateNarrative(ctx context.Context, prompt string) (string, error)
}

// ForecastStore persists forecast runs and their outputs.
type ForecastStore interface {
	CreateForecastRun(ctx context.Context, run *models.ForecastRun) error
	GetForecastRun(ctx context.Context, id string) (*models.ForecastRun, error)
	UpdateForecastRun(ctx context.Context, id string, update *models.ForecastRunUpdate) error
	CreateForecastResults(ctx context.Context, results []models.ForecastResult) error
	CreateSwingRegions(ctx context.Context, regions []models.SwingRegion) error
	GetForecastResults(ctx context.Context, runID string) ([]models.ForecastResult, error)
	GetSwingRegions(ctx context.Context, runID string) ([]models.SwingRegion, error)
}

// RunNotifier fans out run lifecycle events to subscribed channels.
// Notification failures are logged and never affect the run itself.
type RunNotifier interface {
	NotifyRunCompleted(ctx context.Context, run *models.ForecastRun, summary *models.ForecastSummary) error
	NotifyRunFailed(ctx context.Context, run *models.ForecastRun, cause error) error
}

// SummaryCache stores caller-facing forecast summaries keyed by run id.
type SummaryCache interface {
	SetSummary(ctx context.Context, runID string, summary *models.ForecastSummary) error
	GetSummary(ctx context.Context, runID string) (*models.ForecastSummary, error)
}
