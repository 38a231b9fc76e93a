package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/psephos-ai/psephos-go/internal/models"
	"github.com/psephos-ai/psephos-go/internal/services"
	"github.com/psephos-ai/psephos-go/internal/utils"
	"github.com/psephos-ai/psephos-go/pkg/interfaces"
)

// ForecastHandler exposes forecast runs over HTTP.
type ForecastHandler struct {
	orchestrator *services.ForecastOrchestrator
	store        interfaces.ForecastStore
	cache        interfaces.SummaryCache
	logger       *logrus.Logger
}

// NewForecastHandler creates a new forecast handler. The cache is optional.
func NewForecastHandler(orchestrator *services.ForecastOrchestrator, store interfaces.ForecastStore, cache interfaces.SummaryCache, logger *logrus.Logger) *ForecastHandler {
	return &ForecastHandler{
		orchestrator: orchestrator,
		store:        store,
		cache:        cache,
		logger:       logger,
	}
}

// CreateForecast launches a new forecast run in the background and returns
// the pending run record with 202 Accepted. The run is polled by id.
func (h *ForecastHandler) CreateForecast(c *gin.Context) {
	var req services.ForecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	run, err := h.orchestrator.CreateAndLaunch(c.Request.Context(), req)
	if err != nil {
		var validationErr *utils.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
			return
		}
		h.logger.WithError(err).Error("Failed to create forecast run")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create forecast run"})
		return
	}

	c.JSON(http.StatusAccepted, run)
}

// GetForecastRun returns the lifecycle record of a run.
func (h *ForecastHandler) GetForecastRun(c *gin.Context) {
	run, ok := h.lookupRun(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, run)
}

// GetForecastResults returns the summary of a completed run, cache-first.
// The narrative is only available from the cache; a database fallback
// serves the persisted records without it.
func (h *ForecastHandler) GetForecastResults(c *gin.Context) {
	run, ok := h.lookupRun(c)
	if !ok {
		return
	}
	if run.Status != models.RunStatusCompleted {
		c.JSON(http.StatusConflict, gin.H{
			"error":  "forecast run has not completed",
			"status": run.Status,
		})
		return
	}

	if h.cache != nil {
		summary, err := h.cache.GetSummary(c.Request.Context(), run.ID)
		if err != nil {
			h.logger.WithError(err).WithField("run_id", run.ID).Warn("Summary cache read failed")
		} else if summary != nil {
			c.JSON(http.StatusOK, summary)
			return
		}
	}

	results, err := h.store.GetForecastResults(c.Request.Context(), run.ID)
	if err != nil {
		h.logger.WithError(err).WithField("run_id", run.ID).Error("Failed to load forecast results")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load forecast results"})
		return
	}
	regions, err := h.store.GetSwingRegions(c.Request.Context(), run.ID)
	if err != nil {
		h.logger.WithError(err).WithField("run_id", run.ID).Error("Failed to load swing regions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load swing regions"})
		return
	}

	c.JSON(http.StatusOK, models.ForecastSummary{
		RunID:        run.ID,
		PartyResults: results,
		SwingRegions: regions,
	})
}

func (h *ForecastHandler) lookupRun(c *gin.Context) (*models.ForecastRun, bool) {
	id := c.Param("id")
	run, err := h.store.GetForecastRun(c.Request.Context(), id)
	if err != nil {
		h.logger.WithError(err).WithField("run_id", id).Error("Failed to load forecast run")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load forecast run"})
		return nil, false
	}
	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "forecast run not found"})
		return nil, false
	}
	return run, true
}
