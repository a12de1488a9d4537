package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Config represents runtime configuration derived from environment variables.
type Config struct {
	Server   ServerConfig
	Logging  LoggingConfig
	Database DatabaseConfig
	OpenAI   OpenAIConfig
	Pricing  PricingConfig
}

// ServerConfig holds HTTP server runtime parameters.
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// LoggingConfig represents structured logging configuration.
type LoggingConfig struct {
	Level  slog.Level
	Format string
}

// DatabaseConfig holds the Postgres connection string.
type DatabaseConfig struct {
	URL string
}

// OpenAIConfig holds parameters for outbound chat-completion calls.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// PricingConfig holds the numeric thresholds and bounds that constrain every
// pricing recommendation. These values are embedded verbatim into the model
// prompt and enforced again by the response validator.
type PricingConfig struct {
	PriceIncreaseMax       float64
	PriceDecreaseMax       float64
	ConservativeAdjustment float64

	DefaultInternalWeight float64
	DefaultExternalWeight float64

	HighTempThreshold float64
	LowTempThreshold  float64
	ExtremeHighTemp   float64
	ExtremeLowTemp    float64

	EventProximityKm   float64
	EventFarDistanceKm float64

	HighCompetitorCount int

	DefaultLocation string
}

const (
	defaultPort            = "8080"
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultShutdownTimeout = 5 * time.Second

	defaultLogFormat = "json"

	defaultOpenAIModel       = "gpt-4-turbo-preview"
	defaultOpenAITemperature = 0.7
	defaultOpenAIMaxTokens   = 400
	defaultOpenAITimeout     = 60 * time.Second

	defaultPriceIncreaseMax       = 1.3
	defaultPriceDecreaseMax       = 0.7
	defaultConservativeAdjustment = 1.05
	defaultInternalWeight         = 0.6
	defaultExternalWeight         = 0.4

	defaultHighTempThreshold = 30
	defaultLowTempThreshold  = 10
	defaultExtremeHighTemp   = 35
	defaultExtremeLowTemp    = 5

	defaultEventProximityKm   = 5
	defaultEventFarDistanceKm = 5

	defaultHighCompetitorCount = 3

	defaultLocation = "default"
)

// Load reads configuration from environment variables, applying defaults when
// values are not provided.
func Load() (Config, error) {
	// Cloud Run sets PORT, but allow SERVER_PORT override for local dev
	port := getEnv("PORT", "")
	if port == "" {
		port = getEnv("SERVER_PORT", defaultPort)
	}

	cfg := Config{
		Server: ServerConfig{
			Port:            port,
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Logging: LoggingConfig{
			Level:  slog.LevelInfo,
			Format: defaultLogFormat,
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		OpenAI: OpenAIConfig{
			APIKey:      os.Getenv("OPENAI_API_KEY"),
			Model:       getEnv("OPENAI_MODEL", defaultOpenAIModel),
			Temperature: defaultOpenAITemperature,
			MaxTokens:   defaultOpenAIMaxTokens,
			Timeout:     defaultOpenAITimeout,
		},
		Pricing: PricingConfig{
			PriceIncreaseMax:       defaultPriceIncreaseMax,
			PriceDecreaseMax:       defaultPriceDecreaseMax,
			ConservativeAdjustment: defaultConservativeAdjustment,
			DefaultInternalWeight:  defaultInternalWeight,
			DefaultExternalWeight:  defaultExternalWeight,
			HighTempThreshold:      defaultHighTempThreshold,
			LowTempThreshold:       defaultLowTempThreshold,
			ExtremeHighTemp:        defaultExtremeHighTemp,
			ExtremeLowTemp:         defaultExtremeLowTemp,
			EventProximityKm:       defaultEventProximityKm,
			EventFarDistanceKm:     defaultEventFarDistanceKm,
			HighCompetitorCount:    defaultHighCompetitorCount,
			DefaultLocation:        getEnv("DEFAULT_LOCATION", defaultLocation),
		},
	}

	if err := loadServer(&cfg.Server); err != nil {
		return Config{}, err
	}
	if err := loadLogging(&cfg.Logging); err != nil {
		return Config{}, err
	}
	if err := loadOpenAI(&cfg.OpenAI); err != nil {
		return Config{}, err
	}
	if err := loadPricing(&cfg.Pricing); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadServer(cfg *ServerConfig) error {
	durations := []struct {
		key    string
		target *time.Duration
	}{
		{"SERVER_READ_TIMEOUT_SECONDS", &cfg.ReadTimeout},
		{"SERVER_WRITE_TIMEOUT_SECONDS", &cfg.WriteTimeout},
		{"SERVER_SHUTDOWN_TIMEOUT_SECONDS", &cfg.ShutdownTimeout},
	}
	for _, d := range durations {
		if v := os.Getenv(d.key); v != "" {
			parsed, err := parseSeconds(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", d.key, err)
			}
			*d.target = parsed
		}
	}
	return nil
}

func loadLogging(cfg *LoggingConfig) error {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level, err := parseLogLevel(v)
		if err != nil {
			return fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		cfg.Level = level
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		switch v {
		case "json", "text":
			cfg.Format = v
		default:
			return fmt.Errorf("invalid LOG_FORMAT: must be 'json' or 'text'")
		}
	}
	return nil
}

func loadOpenAI(cfg *OpenAIConfig) error {
	if v := os.Getenv("OPENAI_TEMPERATURE"); v != "" {
		temp, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return fmt.Errorf("invalid OPENAI_TEMPERATURE: %w", err)
		}
		cfg.Temperature = float32(temp)
	}

	if v := os.Getenv("OPENAI_MAX_TOKENS"); v != "" {
		tokens, err := strconv.Atoi(v)
		if err != nil || tokens <= 0 {
			return fmt.Errorf("invalid OPENAI_MAX_TOKENS: must be a positive integer")
		}
		cfg.MaxTokens = tokens
	}

	if v := os.Getenv("OPENAI_TIMEOUT_SECONDS"); v != "" {
		timeout, err := parseSeconds(v)
		if err != nil {
			return fmt.Errorf("invalid OPENAI_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Timeout = timeout
	}

	return nil
}

func loadPricing(cfg *PricingConfig) error {
	floats := []struct {
		key    string
		target *float64
	}{
		{"PRICE_INCREASE_MAX", &cfg.PriceIncreaseMax},
		{"PRICE_DECREASE_MAX", &cfg.PriceDecreaseMax},
		{"CONSERVATIVE_PRICE_ADJUSTMENT", &cfg.ConservativeAdjustment},
		{"DEFAULT_INTERNAL_WEIGHT", &cfg.DefaultInternalWeight},
		{"DEFAULT_EXTERNAL_WEIGHT", &cfg.DefaultExternalWeight},
		{"HIGH_TEMPERATURE_THRESHOLD", &cfg.HighTempThreshold},
		{"LOW_TEMPERATURE_THRESHOLD", &cfg.LowTempThreshold},
		{"EXTREME_HIGH_TEMPERATURE", &cfg.ExtremeHighTemp},
		{"EXTREME_LOW_TEMPERATURE", &cfg.ExtremeLowTemp},
		{"EVENT_PROXIMITY_THRESHOLD", &cfg.EventProximityKm},
		{"EVENT_FAR_DISTANCE", &cfg.EventFarDistanceKm},
	}
	for _, f := range floats {
		if v := os.Getenv(f.key); v != "" {
			parsed, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", f.key, err)
			}
			*f.target = parsed
		}
	}

	if v := os.Getenv("HIGH_COMPETITOR_COUNT"); v != "" {
		count, err := strconv.Atoi(v)
		if err != nil || count < 0 {
			return fmt.Errorf("invalid HIGH_COMPETITOR_COUNT: must be a non-negative integer")
		}
		cfg.HighCompetitorCount = count
	}

	return nil
}

func parseSeconds(raw string) (time.Duration, error) {
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds < 0 {
		return 0, fmt.Errorf("must be a non-negative integer")
	}
	return time.Duration(seconds) * time.Second, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch raw {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("must be one of debug, info, warn, error")
	}
}
