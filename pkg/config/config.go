package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel string
	HTTPPort string

	// Accounts
	TargetAddress   string // USER_ADDRESS: the trader being mirrored
	FollowerAddress string // PROXY_WALLET: funder of the follower's orders
	PrivateKey      string
	SignatureType   int

	// Polymarket API
	CLOBURL              string
	DataAPIURL           string
	PolymarketAPIKey     string
	PolymarketSecret     string
	PolymarketPassphrase string
	CLOBMinCallInterval  time.Duration
	HTTPBaseBackoff      time.Duration
	HTTPMaxBackoff       time.Duration
	HTTPMaxRetries       int
	MetadataCacheTTL     time.Duration

	// Chain
	RPCURLs             []string
	USDCContractAddress string

	// Executor loop
	FetchInterval   time.Duration
	TooOldTimestamp time.Duration
	RetryLimit      int

	// Mirroring
	Amplification      float64
	MirrorSellFraction bool
	SlippageTolerance  float64
	FastAttempts       int
	OrderbookDelay     time.Duration
	RetryDelay         time.Duration
	MakerWait          time.Duration

	// Resilient calls
	CallMaxAttempts  int
	CallRetryDelay   time.Duration
	BuildMaxAttempts int
	BuildRetryDelay  time.Duration

	// Execution
	ExecutionMode string
	MinBalanceUSD float64

	// Balance circuit breaker (enabled when MinBalanceUSD > 0)
	BreakerTradeMultiplier float64
	BreakerHysteresisRatio float64

	// Storage
	StorageMode  string // "postgres" or "memory"
	PostgresHost string
	PostgresPort string
	PostgresUser string
	PostgresPass string
	PostgresDB   string
	PostgresSSL  string
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		// Application defaults
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort: getEnvOrDefault("HTTP_PORT", "8080"),

		// Accounts
		TargetAddress:   os.Getenv("USER_ADDRESS"),
		FollowerAddress: os.Getenv("PROXY_WALLET"),
		PrivateKey:      strings.TrimPrefix(strings.TrimSpace(os.Getenv("PRIVATE_KEY")), "0x"),
		SignatureType:   getIntOrDefault("SIGNATURE_TYPE", 2),

		// Polymarket API defaults
		CLOBURL:              getEnvOrDefault("CLOB_HTTP_URL", "https://clob.polymarket.com"),
		DataAPIURL:           getEnvOrDefault("DATA_API_URL", "https://data-api.polymarket.com"),
		PolymarketAPIKey:     os.Getenv("POLYMARKET_API_KEY"),
		PolymarketSecret:     os.Getenv("POLYMARKET_SECRET"),
		PolymarketPassphrase: os.Getenv("POLYMARKET_PASSPHRASE"),
		CLOBMinCallInterval:  getDurationOrDefault("CLOB_MIN_CALL_INTERVAL", 100*time.Millisecond),
		HTTPBaseBackoff:      getDurationOrDefault("HTTP_BASE_BACKOFF", 1*time.Second),
		HTTPMaxBackoff:       getDurationOrDefault("HTTP_MAX_BACKOFF", 10*time.Second),
		HTTPMaxRetries:       getIntOrDefault("HTTP_MAX_RETRIES", 3),
		MetadataCacheTTL:     getDurationOrDefault("METADATA_CACHE_TTL", 5*time.Minute),

		// Chain defaults
		RPCURLs:             getListOrDefault([]string{"RPC_URL1", "RPC_URL2"}, []string{"https://polygon-rpc.com"}),
		USDCContractAddress: getEnvOrDefault("USDC_CONTRACT_ADDRESS", "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174"),

		// Executor defaults
		FetchInterval:   getDurationOrDefault("FETCH_INTERVAL", 1*time.Second),
		TooOldTimestamp: getDurationOrDefault("TOO_OLD_TIMESTAMP", 24*time.Hour),
		RetryLimit:      getIntOrDefault("RETRY_LIMIT", 3),

		// Mirroring defaults
		Amplification:      getFloat64OrDefault("MIRROR_AMPLIFICATION", 1.0),
		MirrorSellFraction: getBoolOrDefault("MIRROR_SELL_FRACTION", true),
		SlippageTolerance:  getFloat64OrDefault("SLIPPAGE_TOLERANCE", 0.05),
		FastAttempts:       getIntOrDefault("FAST_ATTEMPTS", 2),
		OrderbookDelay:     getDurationOrDefault("ORDERBOOK_DELAY", 350*time.Millisecond),
		RetryDelay:         getDurationOrDefault("RETRY_DELAY", 1200*time.Millisecond),
		MakerWait:          getDurationOrDefault("MAKER_WAIT", 200*time.Millisecond),

		// Resilient call defaults
		CallMaxAttempts:  getIntOrDefault("CALL_MAX_ATTEMPTS", 3),
		CallRetryDelay:   getDurationOrDefault("CALL_RETRY_DELAY", 600*time.Millisecond),
		BuildMaxAttempts: getIntOrDefault("BUILD_MAX_ATTEMPTS", 3),
		BuildRetryDelay:  getDurationOrDefault("BUILD_RETRY_DELAY", 400*time.Millisecond),

		// Execution defaults
		ExecutionMode: getEnvOrDefault("EXECUTION_MODE", "paper"),
		MinBalanceUSD: getFloat64OrDefault("MIN_BALANCE_USD", 0),

		// Circuit breaker defaults
		BreakerTradeMultiplier: getFloat64OrDefault("BREAKER_TRADE_MULTIPLIER", 0),
		BreakerHysteresisRatio: getFloat64OrDefault("BREAKER_HYSTERESIS_RATIO", 1.0),

		// Storage defaults
		StorageMode:  getEnvOrDefault("STORAGE_MODE", "memory"),
		PostgresHost: getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser: getEnvOrDefault("POSTGRES_USER", "polymarket"),
		PostgresPass: getEnvOrDefault("POSTGRES_PASSWORD", "polymarket123"),
		PostgresDB:   getEnvOrDefault("POSTGRES_DB", "polymarket_mirror"),
		PostgresSSL:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT cannot be empty")
	}

	if c.CLOBURL == "" {
		return fmt.Errorf("CLOB_HTTP_URL cannot be empty")
	}

	if c.Amplification <= 0 {
		return fmt.Errorf("MIRROR_AMPLIFICATION must be positive, got %f", c.Amplification)
	}

	if c.SlippageTolerance < 0 || c.SlippageTolerance >= 1.0 {
		return fmt.Errorf("SLIPPAGE_TOLERANCE must be between 0 and 1.0, got %f", c.SlippageTolerance)
	}

	if c.RetryLimit < 1 {
		return fmt.Errorf("RETRY_LIMIT must be at least 1, got %d", c.RetryLimit)
	}

	if c.FastAttempts < 0 {
		return fmt.Errorf("FAST_ATTEMPTS cannot be negative, got %d", c.FastAttempts)
	}

	if c.CallMaxAttempts < 1 || c.BuildMaxAttempts < 1 {
		return fmt.Errorf("CALL_MAX_ATTEMPTS and BUILD_MAX_ATTEMPTS must be at least 1")
	}

	if c.MinBalanceUSD < 0 {
		return fmt.Errorf("MIN_BALANCE_USD cannot be negative, got %f", c.MinBalanceUSD)
	}

	if c.BreakerTradeMultiplier < 0 || c.BreakerHysteresisRatio < 1.0 {
		return fmt.Errorf("BREAKER_TRADE_MULTIPLIER must be >= 0 and BREAKER_HYSTERESIS_RATIO >= 1.0")
	}

	if c.ExecutionMode != "paper" && c.ExecutionMode != "live" {
		return fmt.Errorf("EXECUTION_MODE must be 'paper' or 'live', got %q", c.ExecutionMode)
	}

	if c.StorageMode != "memory" && c.StorageMode != "postgres" {
		return fmt.Errorf("STORAGE_MODE must be 'memory' or 'postgres', got %q", c.StorageMode)
	}

	if c.ExecutionMode == "live" {
		if c.PrivateKey == "" {
			return fmt.Errorf("PRIVATE_KEY is required in live mode")
		}
		if c.PolymarketAPIKey == "" || c.PolymarketSecret == "" || c.PolymarketPassphrase == "" {
			return fmt.Errorf("POLYMARKET_API_KEY, POLYMARKET_SECRET and POLYMARKET_PASSPHRASE are required in live mode")
		}
	}

	return nil
}

// ValidateAccounts checks the addresses needed to mirror trades.
func (c *Config) ValidateAccounts() error {
	if c.TargetAddress == "" {
		return fmt.Errorf("USER_ADDRESS cannot be empty")
	}

	if c.FollowerAddress == "" {
		return fmt.Errorf("PROXY_WALLET cannot be empty")
	}

	return nil
}

// PostgresDSN builds the lib/pq connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPass, c.PostgresDB, c.PostgresSSL,
	)
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getFloat64OrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return floatVal
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}

// getListOrDefault collects the non-empty values of keys in order.
func getListOrDefault(keys []string, defaultValue []string) []string {
	values := make([]string, 0, len(keys))
	for _, key := range keys {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			values = append(values, value)
		}
	}

	if len(values) == 0 {
		return defaultValue
	}

	return values
}
