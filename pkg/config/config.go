package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// Every tunable threshold the pipeline consumes lives here; components
// receive values through their constructors and never read the
// environment themselves.
type Config struct {
	Env string // development, staging, production

	// Pipeline
	Scanner ScannerConfig
	Regime  RegimeConfig
	Social  SocialConfig
	AI      AIConfig
	Risk    RiskConfig

	// Infrastructure
	Provider ProviderConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Notify   NotifyConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// ScannerConfig holds universe sizing and filter thresholds.
type ScannerConfig struct {
	ScanLimit int // tickers processed per run
	TopK      int // finalists returned per run

	// Market cap bounds (USD)
	MinMarketCap float64
	MaxMarketCap float64

	// Price bounds (USD)
	MinPrice float64
	MaxPrice float64

	// Liquidity floors
	MinDailyVolumeUSD float64
	MinAvgVolume      float64

	// Price action bounds (percent)
	Max7DChange  float64 // above: already pumped
	Max1DChange  float64 // above: daily spike
	Min90DChange float64 // below: falling knife
	FreshMin     float64 // fresh band lower bound (7d change)
	FreshMax     float64 // fresh band upper bound

	// Technical gates
	MinRSI         float64
	MaxRSI         float64
	MinVolumeRatio float64

	// Fundamental gates
	MinRevenueGrowth        float64 // percent, 0 disables
	MaxPERatio              float64
	RequirePositiveEarnings bool

	// Final cut
	MinCompositeScore float64

	// Hard exclusions
	MaxShortPercent float64 // squeeze-risk ceiling
	BannedSectors   []string
}

// RegimeConfig holds market regime gate thresholds.
type RegimeConfig struct {
	IndexSymbol       string  // broad market proxy
	VolatilitySymbol  string  // volatility index
	MaxVolatility     float64 // pause above this level
	Min10DChange      float64 // pause below (percent)
	Min5DChange       float64 // pause below (percent)
	MaxRedWeeks       int     // pause at/above this consecutive down-week count
	DistributionRatio float64 // pause when 5d negative and index volume ratio above
}

// SocialConfig holds social intelligence thresholds.
type SocialConfig struct {
	RecentWindow       time.Duration // recent mention window
	BaselineWindow     time.Duration // trailing baseline window
	MinRecentMentions  int           // absolute floor for acceleration
	AccelThreshold     float64       // acceleration ratio floor
	MinPostLength      int           // quality mention length floor
	MinPostEngagement  int           // quality mention engagement floor
	MinCompositeScore  float64       // candidates at or below are dropped before technical/AI
	CatalystBoostCount int           // catalyst mentions required for boost
}

// AIConfig holds LLM analysis configuration.
type AIConfig struct {
	Enabled bool
	APIKey  string
	BaseURL string
	Model   string

	// Dimension toggles
	EnableScanner      bool
	EnableRisk         bool
	EnableTechnical    bool
	EnableValue        bool
	EnableSentiment    bool
	EnableGeopolitical bool

	// Composite weights: the three signal weights must sum to 1.0;
	// the risk penalty weight is an independent fraction in [0, 1]
	FundamentalWeight float64
	TechnicalWeight   float64
	SentimentWeight   float64
	RiskPenaltyWeight float64

	// Call settings
	Temperature float64
	MaxRetries  int
	RetryDelay  time.Duration
	Timeout     time.Duration
}

// RiskConfig holds position sizing and stop loss rules.
type RiskConfig struct {
	HighConvictionSize   float64 // fraction of capital
	MediumConvictionSize float64
	LowConvictionSize    float64

	DefaultStopLossPct float64
	TightStopLossPct   float64
	WideStopLossPct    float64

	HighRiskThreshold float64 // risk score above which ratings get downgraded
}

// ProviderConfig holds market data provider settings.
type ProviderConfig struct {
	Mode         string // live, synthetic
	QuoteBaseURL string
	ScreenerURL  string
	CacheSize    int // per-run memo cache capacity
	RatePerSec   float64
	RateBurst    int
}

// DatabaseConfig holds PostgreSQL configuration for run history.
type DatabaseConfig struct {
	URL string // empty disables run persistence

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// NotifyConfig holds notification sink settings. Empty values disable
// the corresponding sink.
type NotifyConfig struct {
	DiscordWebhookURL string
	TelegramToken     string
	TelegramChatID    string
	CSVOutputDir      string
}

// Load reads configuration from environment variables.
// This is the only function that calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Env: getEnv("ENV", "development"),

		Scanner: ScannerConfig{
			ScanLimit:               getEnvAsInt("SCAN_LIMIT", 100),
			TopK:                    getEnvAsInt("TOP_K", 3),
			MinMarketCap:            getEnvAsFloat("MIN_MARKET_CAP", 500_000_000),
			MaxMarketCap:            getEnvAsFloat("MAX_MARKET_CAP", 999_999_999_999_999),
			MinPrice:                getEnvAsFloat("MIN_PRICE", 5.00),
			MaxPrice:                getEnvAsFloat("MAX_PRICE", 9999.00),
			MinDailyVolumeUSD:       getEnvAsFloat("MIN_DAILY_VOLUME_USD", 2_000_000),
			MinAvgVolume:            getEnvAsFloat("MIN_AVG_VOLUME", 500_000),
			Max7DChange:             getEnvAsFloat("MAX_7D_CHANGE", 20.0),
			Max1DChange:             getEnvAsFloat("MAX_1D_CHANGE", 12.0),
			Min90DChange:            getEnvAsFloat("MIN_90D_CHANGE", 0.0),
			FreshMin:                getEnvAsFloat("FRESH_MIN", 0.0),
			FreshMax:                getEnvAsFloat("FRESH_MAX", 5.0),
			MinRSI:                  getEnvAsFloat("MIN_RSI", 40.0),
			MaxRSI:                  getEnvAsFloat("MAX_RSI", 75.0),
			MinVolumeRatio:          getEnvAsFloat("MIN_VOLUME_RATIO", 0.5),
			MinRevenueGrowth:        getEnvAsFloat("MIN_REVENUE_GROWTH", 5.0),
			MaxPERatio:              getEnvAsFloat("MAX_PE_RATIO", 60.0),
			RequirePositiveEarnings: getEnvAsBool("REQUIRE_POSITIVE_EARNINGS", false),
			MinCompositeScore:       getEnvAsFloat("MIN_COMPOSITE_SCORE", 3.0),
			MaxShortPercent:         getEnvAsFloat("MAX_SHORT_PERCENT", 20.0),
			BannedSectors:           getEnvAsList("BANNED_SECTORS", "Energy,Consumer Cyclical,Utilities"),
		},

		Regime: RegimeConfig{
			IndexSymbol:       getEnv("REGIME_INDEX_SYMBOL", "SPY"),
			VolatilitySymbol:  getEnv("REGIME_VOLATILITY_SYMBOL", "^VIX"),
			MaxVolatility:     getEnvAsFloat("REGIME_MAX_VIX", 30.0),
			Min10DChange:      getEnvAsFloat("REGIME_MIN_10D_CHANGE", -6.0),
			Min5DChange:       getEnvAsFloat("REGIME_MIN_5D_CHANGE", -4.0),
			MaxRedWeeks:       getEnvAsInt("REGIME_MAX_RED_WEEKS", 3),
			DistributionRatio: getEnvAsFloat("REGIME_DISTRIBUTION_RATIO", 1.5),
		},

		Social: SocialConfig{
			RecentWindow:       getEnvAsDuration("SOCIAL_RECENT_WINDOW", "24h"),
			BaselineWindow:     getEnvAsDuration("SOCIAL_BASELINE_WINDOW", "120h"),
			MinRecentMentions:  getEnvAsInt("SOCIAL_MIN_RECENT_MENTIONS", 15),
			AccelThreshold:     getEnvAsFloat("SOCIAL_ACCEL_THRESHOLD", 0.5),
			MinPostLength:      getEnvAsInt("SOCIAL_MIN_POST_LENGTH", 50),
			MinPostEngagement:  getEnvAsInt("SOCIAL_MIN_POST_ENGAGEMENT", 3),
			MinCompositeScore:  getEnvAsFloat("SOCIAL_MIN_COMPOSITE", 0.2),
			CatalystBoostCount: getEnvAsInt("SOCIAL_CATALYST_BOOST_COUNT", 3),
		},

		AI: AIConfig{
			Enabled:            getEnvAsBool("ENABLE_AI_ANALYSIS", true),
			APIKey:             getEnv("OPENAI_API_KEY", ""),
			BaseURL:            getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:              getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			EnableScanner:      getEnvAsBool("AI_ENABLE_SCANNER", true),
			EnableRisk:         getEnvAsBool("AI_ENABLE_RISK", true),
			EnableTechnical:    getEnvAsBool("AI_ENABLE_TECHNICAL", true),
			EnableValue:        getEnvAsBool("AI_ENABLE_VALUE", true),
			EnableSentiment:    getEnvAsBool("AI_ENABLE_SENTIMENT", true),
			EnableGeopolitical: getEnvAsBool("AI_ENABLE_GEOPOLITICAL", false),
			FundamentalWeight:  getEnvAsFloat("AI_FUNDAMENTAL_WEIGHT", 0.4375),
			TechnicalWeight:    getEnvAsFloat("AI_TECHNICAL_WEIGHT", 0.3125),
			SentimentWeight:    getEnvAsFloat("AI_SENTIMENT_WEIGHT", 0.25),
			RiskPenaltyWeight:  getEnvAsFloat("AI_RISK_PENALTY_WEIGHT", 0.20),
			Temperature:        getEnvAsFloat("AI_TEMPERATURE", 0.3),
			MaxRetries:         getEnvAsInt("AI_MAX_RETRIES", 3),
			RetryDelay:         getEnvAsDuration("AI_RETRY_DELAY", "2s"),
			Timeout:            getEnvAsDuration("AI_TIMEOUT", "30s"),
		},

		Risk: RiskConfig{
			HighConvictionSize:   getEnvAsFloat("RISK_HIGH_CONVICTION_SIZE", 0.10),
			MediumConvictionSize: getEnvAsFloat("RISK_MEDIUM_CONVICTION_SIZE", 0.05),
			LowConvictionSize:    getEnvAsFloat("RISK_LOW_CONVICTION_SIZE", 0.025),
			DefaultStopLossPct:   getEnvAsFloat("RISK_DEFAULT_STOP_LOSS_PCT", 0.10),
			TightStopLossPct:     getEnvAsFloat("RISK_TIGHT_STOP_LOSS_PCT", 0.07),
			WideStopLossPct:      getEnvAsFloat("RISK_WIDE_STOP_LOSS_PCT", 0.12),
			HighRiskThreshold:    getEnvAsFloat("RISK_HIGH_THRESHOLD", 0.7),
		},

		Provider: ProviderConfig{
			Mode:         getEnv("PROVIDER_MODE", "live"),
			QuoteBaseURL: getEnv("PROVIDER_QUOTE_BASE_URL", "https://query1.finance.yahoo.com"),
			ScreenerURL:  getEnv("PROVIDER_SCREENER_URL", "https://finviz.com/screener.ashx"),
			CacheSize:    getEnvAsInt("PROVIDER_CACHE_SIZE", 2000),
			RatePerSec:   getEnvAsFloat("PROVIDER_RATE_PER_SEC", 5),
			RateBurst:    getEnvAsInt("PROVIDER_RATE_BURST", 5),
		},

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Notify: NotifyConfig{
			DiscordWebhookURL: getEnv("DISCORD_WEBHOOK_URL", ""),
			TelegramToken:     getEnv("TELEGRAM_BOT_TOKEN", ""),
			TelegramChatID:    getEnv("TELEGRAM_CHAT_ID", ""),
			CSVOutputDir:      getEnv("CSV_OUTPUT_DIR", "outputs"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate rejects self-contradictory bounds before any candidate is
// processed. The pipeline must never run with an inverted range.
func (c *Config) validate() error {
	var errs []string

	if c.Scanner.MinPrice > c.Scanner.MaxPrice {
		errs = append(errs, "MIN_PRICE cannot exceed MAX_PRICE")
	}
	if c.Scanner.MinMarketCap > c.Scanner.MaxMarketCap {
		errs = append(errs, "MIN_MARKET_CAP cannot exceed MAX_MARKET_CAP")
	}
	if c.Scanner.FreshMin > c.Scanner.FreshMax {
		errs = append(errs, "FRESH_MIN cannot exceed FRESH_MAX")
	}
	if c.Scanner.MinRSI > c.Scanner.MaxRSI {
		errs = append(errs, "MIN_RSI cannot exceed MAX_RSI")
	}
	if c.Scanner.ScanLimit <= 0 {
		errs = append(errs, "SCAN_LIMIT must be positive")
	}
	if c.Scanner.TopK <= 0 {
		errs = append(errs, "TOP_K must be positive")
	}

	weightSum := c.AI.FundamentalWeight + c.AI.TechnicalWeight + c.AI.SentimentWeight
	if math.Abs(weightSum-1.0) > 0.01 {
		errs = append(errs, fmt.Sprintf("AI signal weights must sum to 1.0 (got %.2f)", weightSum))
	}
	if c.AI.RiskPenaltyWeight < 0 || c.AI.RiskPenaltyWeight > 1 {
		errs = append(errs, "AI_RISK_PENALTY_WEIGHT must be within [0, 1]")
	}
	if c.AI.MaxRetries < 0 {
		errs = append(errs, "AI_MAX_RETRIES cannot be negative")
	}
	if c.AI.Enabled && c.AI.APIKey == "" && c.Provider.Mode == "live" {
		errs = append(errs, "OPENAI_API_KEY is required when ENABLE_AI_ANALYSIS=true")
	}

	if c.Provider.Mode != "live" && c.Provider.Mode != "synthetic" {
		errs = append(errs, "PROVIDER_MODE must be one of: live, synthetic")
	}
	if c.Provider.CacheSize <= 0 {
		errs = append(errs, "PROVIDER_CACHE_SIZE must be positive")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		errs = append(errs, "ENV must be one of: development, staging, production")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
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

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

func getEnvAsList(key string, defaultValue string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}
	if valueStr == "" {
		return nil
	}

	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
