package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psephos-ai/psephos-go/internal/config"
	"github.com/psephos-ai/psephos-go/internal/models"
	"github.com/psephos-ai/psephos-go/internal/services"
)

type stubStore struct {
	mu      sync.Mutex
	runs    map[string]*models.ForecastRun
	results []models.ForecastResult
	swings  []models.SwingRegion
}

func newStubStore() *stubStore {
	return &stubStore{runs: make(map[string]*models.ForecastRun)}
}

func (s *stubStore) CreateForecastRun(ctx context.Context, run *models.ForecastRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *run
	s.runs[run.ID] = &stored
	return nil
}

func (s *stubStore) GetForecastRun(ctx context.Context, id string) (*models.ForecastRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, nil
	}
	copied := *run
	return &copied, nil
}

func (s *stubStore) UpdateForecastRun(ctx context.Context, id string, update *models.ForecastRunUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	if !ok {
		return nil
	}
	if update.Status != nil {
		run.Status = *update.Status
	}
	return nil
}

func (s *stubStore) CreateForecastResults(ctx context.Context, results []models.ForecastResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, results...)
	return nil
}

func (s *stubStore) CreateSwingRegions(ctx context.Context, regions []models.SwingRegion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.swings = append(s.swings, regions...)
	return nil
}

func (s *stubStore) GetForecastResults(ctx context.Context, runID string) ([]models.ForecastResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results, nil
}

func (s *stubStore) GetSwingRegions(ctx context.Context, runID string) ([]models.SwingRegion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.swings, nil
}

type stubHistorical struct {
	records []models.HistoricalVoteRecord
}

func (h *stubHistorical) GetHistoricalVotesByParty(ctx context.Context, years []int, position, state string) ([]models.HistoricalVoteRecord, error) {
	return h.records, nil
}

type stubNarrative struct{}

func (stubNarrative) GenerateNarrative(ctx context.Context, prompt string) (string, error) {
	return "narrative", nil
}

type stubCache struct {
	summaries map[string]*models.ForecastSummary
}

func (c *stubCache) SetSummary(ctx context.Context, runID string, summary *models.ForecastSummary) error {
	if c.summaries == nil {
		c.summaries = make(map[string]*models.ForecastSummary)
	}
	c.summaries[runID] = summary
	return nil
}

func (c *stubCache) GetSummary(ctx context.Context, runID string) (*models.ForecastSummary, error) {
	return c.summaries[runID], nil
}

func handlerConfig() *config.ForecastConfig {
	return &config.ForecastConfig{
		MonteCarloIterations: 200,
		ConfidenceLevel:      0.95,
		TrendWeight:          0.4,
		VolatilityMultiplier: 1.2,
		MinHistoricalYear:    2002,
		CycleOffsets:         []int{4, 8, 12},
	}
}

func newTestRouter(store *stubStore, cache *stubCache) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	historical := &stubHistorical{records: []models.HistoricalVoteRecord{
		{Year: 2018, Party: "Alpha", TotalVotes: 4800},
		{Year: 2018, Party: "Beta", TotalVotes: 5200},
		{Year: 2022, Party: "Alpha", TotalVotes: 5100},
		{Year: 2022, Party: "Beta", TotalVotes: 4900},
	}}
	orchestrator := services.NewForecastOrchestrator(handlerConfig(), store, historical, stubNarrative{}, nil, nil, nil, logger)

	var handler *ForecastHandler
	if cache != nil {
		handler = NewForecastHandler(orchestrator, store, cache, logger)
	} else {
		handler = NewForecastHandler(orchestrator, store, nil, logger)
	}

	router := gin.New()
	router.POST("/api/v1/forecasts", handler.CreateForecast)
	router.GET("/api/v1/forecasts/:id", handler.GetForecastRun)
	router.GET("/api/v1/forecasts/:id/results", handler.GetForecastResults)
	return router
}

func TestCreateForecastAccepted(t *testing.T) {
	store := newStubStore()
	router := newTestRouter(store, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/forecasts", strings.NewReader(`{"target_year":2026,"position":"governor"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)
	var run models.ForecastRun
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &run))
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, 2026, run.TargetYear)
	assert.Equal(t, "governor", run.TargetPosition)
	assert.Equal(t, models.RunStatusPending, run.Status)

	// The launched run eventually reaches a terminal state in the store.
	require.Eventually(t, func() bool {
		stored, _ := store.GetForecastRun(context.Background(), run.ID)
		return stored != nil && stored.Status == models.RunStatusCompleted
	}, 5*time.Second, 10*time.Millisecond)
}

func TestCreateForecastInvalidBody(t *testing.T) {
	router := newTestRouter(newStubStore(), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/forecasts", strings.NewReader(`{bad json`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateForecastInvalidYear(t *testing.T) {
	router := newTestRouter(newStubStore(), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/forecasts", strings.NewReader(`{"target_year":0}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "target_year")
}

func TestGetForecastRunNotFound(t *testing.T) {
	router := newTestRouter(newStubStore(), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/forecasts/missing", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetForecastResultsNotCompleted(t *testing.T) {
	store := newStubStore()
	store.runs["run-1"] = &models.ForecastRun{ID: "run-1", TargetYear: 2026, Status: models.RunStatusRunning}
	router := newTestRouter(store, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/forecasts/run-1/results", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), models.RunStatusRunning)
}

func TestGetForecastResultsFromCache(t *testing.T) {
	store := newStubStore()
	store.runs["run-1"] = &models.ForecastRun{ID: "run-1", TargetYear: 2026, Status: models.RunStatusCompleted}
	cache := &stubCache{summaries: map[string]*models.ForecastSummary{
		"run-1": {RunID: "run-1", Narrative: "cached narrative"},
	}}
	router := newTestRouter(store, cache)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/forecasts/run-1/results", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "cached narrative")
}

func TestGetForecastResultsStoreFallback(t *testing.T) {
	store := newStubStore()
	store.runs["run-1"] = &models.ForecastRun{ID: "run-1", TargetYear: 2026, Status: models.RunStatusCompleted}
	store.results = []models.ForecastResult{{RunID: "run-1", EntityName: "Alpha", ResultType: "party"}}
	router := newTestRouter(store, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/forecasts/run-1/results", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var summary models.ForecastSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, "run-1", summary.RunID)
	require.Len(t, summary.PartyResults, 1)
	assert.Equal(t, "Alpha", summary.PartyResults[0].EntityName)
	// The narrative lives only in the cache.
	assert.Empty(t, summary.Narrative)
}
