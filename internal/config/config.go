package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string          `mapstructure:"environment"`
	LogLevel    string          `mapstructure:"log_level"`
	Server      ServerConfig    `mapstructure:"server"`
	Database    DatabaseConfig  `mapstructure:"database"`
	Redis       RedisConfig     `mapstructure:"redis"`
	LLM         LLMConfig       `mapstructure:"llm"`
	Telegram    TelegramConfig  `mapstructure:"telegram"`
	Telemetry   TelemetryConfig `mapstructure:"telemetry"`
	Forecast    ForecastConfig  `mapstructure:"forecast"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	DBName       string `mapstructure:"dbname"`
	SSLMode      string `mapstructure:"sslmode"`
	DatabaseURL  string `mapstructure:"database_url"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LLMConfig points at the narrative text-generation sidecar service.
type LLMConfig struct {
	ServiceURL string `mapstructure:"service_url"`
	Model      string `mapstructure:"model"`
	MaxTokens  int    `mapstructure:"max_tokens"`
	Timeout    int    `mapstructure:"timeout"`
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

type TelemetryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

// ForecastConfig carries the recognized forecasting options. The
// historical_weight_decay and sentiment_weight fields are parsed and recorded
// with each run's model parameters but feed no formula yet.
type ForecastConfig struct {
	MonteCarloIterations  int     `mapstructure:"monte_carlo_iterations"`
	ConfidenceLevel       float64 `mapstructure:"confidence_level"`
	HistoricalWeightDecay float64 `mapstructure:"historical_weight_decay"`
	SentimentWeight       float64 `mapstructure:"sentiment_weight"`
	TrendWeight           float64 `mapstructure:"trend_weight"`
	VolatilityMultiplier  float64 `mapstructure:"volatility_multiplier"`
	MinHistoricalYear     int     `mapstructure:"min_historical_year"`
	CycleOffsets          []int   `mapstructure:"cycle_offsets"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	// Enable environment variable support
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Config file is optional; defaults and environment variables suffice
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Environment = strings.ToLower(config.Environment)

	if err := validateForecast(&config.Forecast); err != nil {
		return nil, err
	}

	return &config, nil
}

func validateForecast(fc *ForecastConfig) error {
	if fc.MonteCarloIterations <= 0 {
		return fmt.Errorf("forecast.monte_carlo_iterations must be positive, got %d", fc.MonteCarloIterations)
	}
	if fc.ConfidenceLevel <= 0 || fc.ConfidenceLevel >= 1 {
		return fmt.Errorf("forecast.confidence_level must be in (0, 1), got %g", fc.ConfidenceLevel)
	}
	if fc.VolatilityMultiplier <= 0 {
		return fmt.Errorf("forecast.volatility_multiplier must be positive, got %g", fc.VolatilityMultiplier)
	}
	if len(fc.CycleOffsets) == 0 {
		return fmt.Errorf("forecast.cycle_offsets must not be empty")
	}
	return nil
}

func setDefaults() {
	// Environment
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Database
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.dbname", "psephos")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.database_url", "")
	viper.SetDefault("database.max_open_conns", 25)

	// Redis
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// Narrative generation service
	viper.SetDefault("llm.service_url", "http://localhost:3002")
	viper.SetDefault("llm.model", "")
	viper.SetDefault("llm.max_tokens", 1024)
	viper.SetDefault("llm.timeout", 30)

	// Telegram
	viper.SetDefault("telegram.bot_token", "")
	viper.SetDefault("telegram.chat_id", 0)

	// Telemetry
	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.otlp_endpoint", "")

	// Forecast model
	viper.SetDefault("forecast.monte_carlo_iterations", 10000)
	viper.SetDefault("forecast.confidence_level", 0.95)
	viper.SetDefault("forecast.historical_weight_decay", 0.85)
	viper.SetDefault("forecast.sentiment_weight", 0.15)
	viper.SetDefault("forecast.trend_weight", 0.4)
	viper.SetDefault("forecast.volatility_multiplier", 1.2)
	viper.SetDefault("forecast.min_historical_year", 2002)
	viper.SetDefault("forecast.cycle_offsets", []int{4, 8, 12})
}
