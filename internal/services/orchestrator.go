package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/psephos-ai/psephos-go/internal/config"
	"github.com/psephos-ai/psephos-go/internal/models"
	"github.com/psephos-ai/psephos-go/internal/utils"
	"github.com/psephos-ai/psephos-go/pkg/interfaces"
)

// narrativeFallback replaces the narrative when the text-generation
// collaborator fails or returns empty content.
const narrativeFallback = "A narrative summary could not be generated for this forecast run; the numeric projections below are unaffected."

// Prompt scope limits for the narrative request.
const (
	narrativeTopParties = 5
	narrativeTopRegions = 3
)

// ForecastRequest is the caller-supplied scope of a forecast run.
type ForecastRequest struct {
	TargetYear int    `json:"target_year"`
	Position   string `json:"position,omitempty"`
	State      string `json:"state,omitempty"`
}

// ForecastOrchestrator sequences aggregation, trend analysis, forecast
// generation, swing detection, narrative generation, and persistence for a
// forecast run, and manages the run's lifecycle status.
type ForecastOrchestrator struct {
	cfg        *config.ForecastConfig
	store      interfaces.ForecastStore
	historical interfaces.HistoricalDataSource
	narrative  interfaces.NarrativeGenerator
	notifier   interfaces.RunNotifier
	cache      interfaces.SummaryCache
	analyzer   *TrendAnalyzer
	generator  *ForecastGenerator
	detector   *SwingRegionDetector
	monitor    *ResourceMonitor
	logger     *logrus.Logger
	tracer     trace.Tracer
	printer    *message.Printer
}

// NewForecastOrchestrator wires the pipeline. The notifier, cache, and
// monitor are optional; nil disables them.
func NewForecastOrchestrator(
	cfg *config.ForecastConfig,
	store interfaces.ForecastStore,
	historical interfaces.HistoricalDataSource,
	narrative interfaces.NarrativeGenerator,
	notifier interfaces.RunNotifier,
	cache interfaces.SummaryCache,
	monitor *ResourceMonitor,
	logger *logrus.Logger,
) *ForecastOrchestrator {
	return &ForecastOrchestrator{
		cfg:        cfg,
		store:      store,
		historical: historical,
		narrative:  narrative,
		notifier:   notifier,
		cache:      cache,
		analyzer:   NewTrendAnalyzer(logger),
		generator:  NewForecastGenerator(cfg, NewMonteCarloSimulator(), logger),
		detector:   NewSwingRegionDetector(cfg, logger),
		monitor:    monitor,
		logger:     logger,
		tracer:     otel.Tracer("psephos/forecast"),
		printer:    message.NewPrinter(language.English),
	}
}

// CreateAndLaunch persists a new run in pending state and starts its
// execution in the background. The returned run can be polled by id while
// the pipeline executes; there is no cancellation mechanism.
func (o *ForecastOrchestrator) CreateAndLaunch(ctx context.Context, req ForecastRequest) (*models.ForecastRun, error) {
	if req.TargetYear <= 0 {
		return nil, utils.NewValidationErrorf("target_year must be positive, got %d", req.TargetYear)
	}

	run := &models.ForecastRun{
		ID:             uuid.New().String(),
		TargetYear:     req.TargetYear,
		TargetPosition: req.Position,
		TargetState:    req.State,
		Status:         models.RunStatusPending,
		CreatedAt:      time.Now().UTC(),
	}
	if err := o.store.CreateForecastRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to create forecast run: %w", err)
	}

	// Detached context: the run outlives the request that launched it.
	go func() {
		if _, err := o.Execute(context.Background(), run); err != nil {
			o.logger.WithError(err).WithField("run_id", run.ID).Error("Forecast run failed")
		}
	}()

	return run, nil
}

// Execute runs the full pipeline for an already-created pending run. The run
// transitions to running immediately and ends in completed or failed; both
// end states are terminal.
func (o *ForecastOrchestrator) Execute(ctx context.Context, run *models.ForecastRun) (*models.ForecastSummary, error) {
	ctx, span := o.tracer.Start(ctx, "forecast.run", trace.WithAttributes(
		attribute.String("run.id", run.ID),
		attribute.Int("run.target_year", run.TargetYear),
	))
	defer span.End()

	startedAt := time.Now().UTC()
	if err := o.transition(ctx, run, models.RunStatusRunning, &models.ForecastRunUpdate{StartedAt: &startedAt}); err != nil {
		return nil, err
	}

	years := o.historicalYears(run.TargetYear)
	records, err := o.historical.GetHistoricalVotesByParty(ctx, years, run.TargetPosition, run.TargetState)
	if err != nil {
		return nil, o.fail(ctx, run, fmt.Errorf("historical data query failed: %w", err))
	}
	if len(records) == 0 {
		return nil, o.fail(ctx, run, utils.NewDataInsufficiencyError(years, run.TargetPosition, run.TargetState))
	}

	_, analysisSpan := o.tracer.Start(ctx, "forecast.analysis")
	trends := o.analyzer.AnalyzeParties(records)
	results := o.generator.Generate(trends, run.TargetYear)
	swings := o.detector.Detect(records, trends)
	analysisSpan.End()

	if o.monitor != nil {
		o.monitor.LogSnapshot(ctx, "simulation")
	}

	narrative := o.generateNarrative(ctx, run, results, swings)

	for i := range results {
		results[i].ID = uuid.New().String()
		results[i].RunID = run.ID
	}
	for i := range swings {
		swings[i].ID = uuid.New().String()
		swings[i].RunID = run.ID
	}

	_, persistSpan := o.tracer.Start(ctx, "forecast.persist")
	if err := o.store.CreateForecastResults(ctx, results); err != nil {
		persistSpan.End()
		return nil, o.fail(ctx, run, fmt.Errorf("failed to persist forecast results: %w", err))
	}
	if err := o.store.CreateSwingRegions(ctx, swings); err != nil {
		persistSpan.End()
		return nil, o.fail(ctx, run, fmt.Errorf("failed to persist swing regions: %w", err))
	}
	persistSpan.End()

	completedAt := time.Now().UTC()
	totalSimulations := o.cfg.MonteCarloIterations
	yearsUsed := distinctYears(records)
	params := o.modelParameters()
	update := &models.ForecastRunUpdate{
		CompletedAt:         &completedAt,
		TotalSimulations:    &totalSimulations,
		HistoricalYearsUsed: &yearsUsed,
		ModelParameters:     params,
	}
	if err := o.transition(ctx, run, models.RunStatusCompleted, update); err != nil {
		return nil, err
	}
	run.CompletedAt = &completedAt
	run.TotalSimulations = totalSimulations
	run.HistoricalYearsUsed = yearsUsed
	run.ModelParameters = params

	summary := &models.ForecastSummary{
		RunID:        run.ID,
		PartyResults: results,
		SwingRegions: swings,
		Narrative:    narrative,
	}
	o.publish(ctx, run, summary)

	o.logger.WithFields(logrus.Fields{
		"run_id":        run.ID,
		"parties":       len(results),
		"swing_regions": len(swings),
		"years_used":    yearsUsed,
	}).Info("Forecast run completed")
	return summary, nil
}

// historicalYears is the requested election-year window: the target year
// minus each configured cycle offset, filtered to the configured minimum.
func (o *ForecastOrchestrator) historicalYears(targetYear int) []int {
	years := make([]int, 0, len(o.cfg.CycleOffsets))
	for _, offset := range o.cfg.CycleOffsets {
		year := targetYear - offset
		if year >= o.cfg.MinHistoricalYear {
			years = append(years, year)
		}
	}
	return years
}

func (o *ForecastOrchestrator) generateNarrative(ctx context.Context, run *models.ForecastRun, results []models.ForecastResult, swings []models.SwingRegion) string {
	prompt := o.buildNarrativePrompt(run, results, swings)
	text, err := o.narrative.GenerateNarrative(ctx, prompt)
	if err != nil || strings.TrimSpace(text) == "" {
		o.logger.WithError(utils.NewNarrativeGenerationError(err)).
			WithField("run_id", run.ID).
			Warn("Narrative generation failed, using fallback")
		return narrativeFallback
	}
	return text
}

func (o *ForecastOrchestrator) buildNarrativePrompt(run *models.ForecastRun, results []models.ForecastResult, swings []models.SwingRegion) string {
	var b strings.Builder
	scope := run.TargetPosition
	if scope == "" {
		scope = "all positions"
	}
	state := run.TargetState
	if state == "" {
		state = "all states"
	}
	fmt.Fprintf(&b, "Write a concise electoral forecast narrative for the %d election (%s, %s).\n\n", run.TargetYear, scope, state)

	b.WriteString("Projected vote shares:\n")
	for i, result := range results {
		if i >= narrativeTopParties {
			break
		}
		fmt.Fprintf(&b, "- %s: %s%% (range %s%% to %s%%, trend %s, confidence %s)\n",
			result.EntityName,
			result.PredictedVoteShare.Round(2),
			result.VoteShareLower.Round(2),
			result.VoteShareUpper.Round(2),
			result.TrendDirection,
			result.Confidence.Round(2),
		)
	}

	if len(swings) > 0 {
		b.WriteString("\nContested regions:\n")
		for i, swing := range swings {
			if i >= narrativeTopRegions {
				break
			}
			fmt.Fprintf(&b, "- %s: %s leads %s by %s%% (%s votes), uncertainty %s\n",
				swing.RegionName,
				swing.LeadingEntity,
				swing.ChallengingEntity,
				swing.MarginPercent.Round(2),
				o.printer.Sprintf("%d", swing.MarginVotes),
				swing.OutcomeUncertainty.Round(2),
			)
		}
	}
	return b.String()
}

// fail transitions the run to failed and returns the fatal cause.
func (o *ForecastOrchestrator) fail(ctx context.Context, run *models.ForecastRun, cause error) error {
	completedAt := time.Now().UTC()
	msg := cause.Error()
	update := &models.ForecastRunUpdate{
		CompletedAt:  &completedAt,
		ErrorMessage: &msg,
	}
	if err := o.transition(ctx, run, models.RunStatusFailed, update); err != nil {
		o.logger.WithError(err).WithField("run_id", run.ID).Error("Failed to mark run as failed")
	}
	run.ErrorMessage = msg
	if o.notifier != nil {
		if err := o.notifier.NotifyRunFailed(ctx, run, cause); err != nil {
			o.logger.WithError(err).WithField("run_id", run.ID).Warn("Failure notification not delivered")
		}
	}
	return cause
}

func (o *ForecastOrchestrator) transition(ctx context.Context, run *models.ForecastRun, status string, update *models.ForecastRunUpdate) error {
	update.Status = &status
	if err := o.store.UpdateForecastRun(ctx, run.ID, update); err != nil {
		return fmt.Errorf("failed to transition run %s to %s: %w", run.ID, status, err)
	}
	run.Status = status
	if update.StartedAt != nil {
		run.StartedAt = update.StartedAt
	}
	return nil
}

// publish performs the best-effort post-completion steps: summary caching
// and completion notification. Neither can fail the run.
func (o *ForecastOrchestrator) publish(ctx context.Context, run *models.ForecastRun, summary *models.ForecastSummary) {
	if o.cache != nil {
		if err := o.cache.SetSummary(ctx, run.ID, summary); err != nil {
			o.logger.WithError(err).WithField("run_id", run.ID).Warn("Failed to cache forecast summary")
		}
	}
	if o.notifier != nil {
		if err := o.notifier.NotifyRunCompleted(ctx, run, summary); err != nil {
			o.logger.WithError(err).WithField("run_id", run.ID).Warn("Completion notification not delivered")
		}
	}
}

func (o *ForecastOrchestrator) modelParameters() *models.ModelParameters {
	return &models.ModelParameters{
		MonteCarloIterations:  o.cfg.MonteCarloIterations,
		ConfidenceLevel:       o.cfg.ConfidenceLevel,
		HistoricalWeightDecay: o.cfg.HistoricalWeightDecay,
		SentimentWeight:       o.cfg.SentimentWeight,
		TrendWeight:           o.cfg.TrendWeight,
		VolatilityMultiplier:  o.cfg.VolatilityMultiplier,
	}
}

func distinctYears(records []models.HistoricalVoteRecord) int {
	years := make(map[int]struct{}, len(records))
	for _, rec := range records {
		years[rec.Year] = struct{}{}
	}
	return len(years)
}
