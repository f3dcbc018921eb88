package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"nseScreener/internal/adapters/logger" // Import the logger package for LogLevel
)

// Config holds all application configuration.
type Config struct {
	// Universe & Data
	Symbols      []string // NSE symbols without exchange suffix (e.g. "RELIANCE")
	DataDir      string   // Directory holding cached candle CSVs
	LookbackDays int      // Calendar days of history to replay

	// Simulation Parameters
	InitialCapital float64
	RiskPerTrade   float64 // Fraction of running capital risked per trade
	Commission     float64 // Per-leg commission as a fraction of notional
	MaxPositionPct float64 // Cap on position notional as a fraction of capital
	PartialTakeR   float64 // Favorable excursion in R that triggers the partial exit
	TrailTriggerR  float64 // Favorable excursion in R that activates the trailing stop
	TrailDistanceR float64 // Trailing stop distance behind the best price, in R
	MaxHoldDays    int     // Trading days before a forced time exit

	// Signal Engine Parameters
	RSIPeriod     int
	RSIOverbought float64
	RSIOversold   float64
	FastSMAPeriod int
	SlowSMAPeriod int
	ATRPeriod     int
	StopATRMult   float64
	TargetATRMult float64

	// Infrastructure
	DBPath    string
	ReportDir string
	Workers   int
	LogLevel  logger.LogLevel

	// Data Provider
	RequestTimeout time.Duration
	MaxRetries     int
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	// Universe & Data
	symbolsStr := getEnv("SYMBOLS", "RELIANCE,TCS,INFY,HDFCBANK,ICICIBANK")
	for _, s := range strings.Split(symbolsStr, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			cfg.Symbols = append(cfg.Symbols, strings.ToUpper(s))
		}
	}
	if len(cfg.Symbols) == 0 {
		errs = append(errs, "SYMBOLS must contain at least one symbol")
	}

	cfg.DataDir = getEnv("DATA_DIR", "./data")
	cfg.LookbackDays = getEnvAsInt("LOOKBACK_DAYS", 365)
	if cfg.LookbackDays <= 0 {
		errs = append(errs, "LOOKBACK_DAYS must be positive")
	}

	// Simulation Parameters
	cfg.InitialCapital, err = getEnvAsFloatRequired("INITIAL_CAPITAL", 100000)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid INITIAL_CAPITAL: %v", err))
	} else if cfg.InitialCapital <= 0 {
		errs = append(errs, "INITIAL_CAPITAL must be positive")
	}

	cfg.RiskPerTrade, err = getEnvAsFloatRequired("RISK_PER_TRADE", 0.02)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid RISK_PER_TRADE: %v", err))
	} else if cfg.RiskPerTrade <= 0 || cfg.RiskPerTrade >= 1.0 {
		errs = append(errs, "RISK_PER_TRADE must be between 0.0 and 1.0 (exclusive)")
	}

	cfg.Commission, err = getEnvAsFloatRequired("COMMISSION", 0.0005)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid COMMISSION: %v", err))
	} else if cfg.Commission <= 0 || cfg.Commission >= 1.0 {
		errs = append(errs, "COMMISSION must be between 0.0 and 1.0 (exclusive)")
	}

	cfg.MaxPositionPct, err = getEnvAsFloatRequired("MAX_POSITION_PCT", 0.20)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MAX_POSITION_PCT: %v", err))
	} else if cfg.MaxPositionPct <= 0 || cfg.MaxPositionPct > 1.0 {
		errs = append(errs, "MAX_POSITION_PCT must be between 0.0 (exclusive) and 1.0 (inclusive)")
	}

	cfg.PartialTakeR = getEnvAsFloat("PARTIAL_TAKE_R", 1.5)
	cfg.TrailTriggerR = getEnvAsFloat("TRAIL_TRIGGER_R", 1.0)
	cfg.TrailDistanceR = getEnvAsFloat("TRAIL_DISTANCE_R", 0.5)
	if cfg.PartialTakeR <= 0 || cfg.TrailTriggerR <= 0 || cfg.TrailDistanceR <= 0 {
		errs = append(errs, "PARTIAL_TAKE_R, TRAIL_TRIGGER_R and TRAIL_DISTANCE_R must be positive")
	}

	cfg.MaxHoldDays = getEnvAsInt("MAX_HOLD_DAYS", 20)
	if cfg.MaxHoldDays <= 0 {
		errs = append(errs, "MAX_HOLD_DAYS must be positive")
	}

	// Signal Engine Parameters (using defaults if not set)
	cfg.RSIPeriod = getEnvAsInt("RSI_PERIOD", 14)
	cfg.RSIOverbought = getEnvAsFloat("RSI_OVERBOUGHT", 70.0)
	cfg.RSIOversold = getEnvAsFloat("RSI_OVERSOLD", 30.0)
	cfg.FastSMAPeriod = getEnvAsInt("FAST_SMA_PERIOD", 20)
	cfg.SlowSMAPeriod = getEnvAsInt("SLOW_SMA_PERIOD", 50)
	cfg.ATRPeriod = getEnvAsInt("ATR_PERIOD", 14)
	cfg.StopATRMult = getEnvAsFloat("STOP_ATR_MULT", 2.0)
	cfg.TargetATRMult = getEnvAsFloat("TARGET_ATR_MULT", 3.0)

	if cfg.RSIPeriod <= 0 || cfg.FastSMAPeriod <= 0 || cfg.SlowSMAPeriod <= 0 || cfg.ATRPeriod <= 0 {
		errs = append(errs, "indicator periods (RSI, SMA, ATR) must be positive")
	}
	if cfg.FastSMAPeriod >= cfg.SlowSMAPeriod {
		errs = append(errs, "FAST_SMA_PERIOD must be less than SLOW_SMA_PERIOD")
	}
	if cfg.RSIOverbought <= cfg.RSIOversold || cfg.RSIOverbought > 100 || cfg.RSIOversold < 0 {
		errs = append(errs, "invalid RSI thresholds (Overbought must be > Oversold, between 0-100)")
	}
	if cfg.StopATRMult <= 0 || cfg.TargetATRMult <= 0 {
		errs = append(errs, "STOP_ATR_MULT and TARGET_ATR_MULT must be positive")
	}

	// Infrastructure
	cfg.DBPath = getEnv("DB_PATH", "./data/backtests.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}
	cfg.ReportDir = getEnv("REPORT_DIR", "./reports")

	cfg.Workers = getEnvAsInt("WORKERS", 4)
	if cfg.Workers <= 0 {
		errs = append(errs, "WORKERS must be positive")
	}

	// Logging
	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr) // Use the parser from the logger package

	// Data Provider
	timeoutSeconds := getEnvAsInt("REQUEST_TIMEOUT_SECONDS", 15)
	if timeoutSeconds <= 0 {
		errs = append(errs, "REQUEST_TIMEOUT_SECONDS must be positive")
	}
	cfg.RequestTimeout = time.Duration(timeoutSeconds) * time.Second

	cfg.MaxRetries = getEnvAsInt("MAX_RETRIES", 3)
	if cfg.MaxRetries < 0 {
		errs = append(errs, "MAX_RETRIES cannot be negative")
	}

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}
