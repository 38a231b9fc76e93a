package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/psephos-ai/psephos-go/internal/api/handlers"
	"github.com/psephos-ai/psephos-go/internal/database"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Services  Services  `json:"services"`
}

type Services struct {
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

// SetupRoutes registers the HTTP surface of the forecasting service.
func SetupRoutes(router *gin.Engine, db *database.PostgresDB, redis *database.RedisClient, forecastHandler *handlers.ForecastHandler) {
	router.Use(otelgin.Middleware("psephos"))

	// Health check endpoint
	router.GET("/health", healthCheck(db, redis))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		forecasts := v1.Group("/forecasts")
		{
			forecasts.POST("", forecastHandler.CreateForecast)
			forecasts.GET("/:id", forecastHandler.GetForecastRun)
			forecasts.GET("/:id/results", forecastHandler.GetForecastResults)
		}
	}
}

func healthCheck(db *database.PostgresDB, redis *database.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC(),
			Version:   "1.0.0",
			Services:  Services{Database: "healthy", Redis: "healthy"},
		}

		if db != nil {
			if err := db.HealthCheck(c.Request.Context()); err != nil {
				response.Status = "degraded"
				response.Services.Database = "unhealthy"
			}
		}
		if redis != nil {
			if err := redis.HealthCheck(c.Request.Context()); err != nil {
				response.Status = "degraded"
				response.Services.Redis = "unhealthy"
			}
		}

		status := http.StatusOK
		if response.Status != "healthy" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, response)
	}
}
