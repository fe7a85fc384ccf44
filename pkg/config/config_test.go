package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		HTTPPort:          "8080",
		CLOBURL:           "https://clob.test",
		Amplification:     1.0,
		SlippageTolerance: 0.05,
		RetryLimit:        3,
		FastAttempts:      2,
		CallMaxAttempts:   3,
		BuildMaxAttempts:  3,
		ExecutionMode:     "paper",
		StorageMode:       "memory",

		BreakerHysteresisRatio: 1.0,
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Amplification != 1.0 {
		t.Errorf("expected Amplification 1.0, got %f", cfg.Amplification)
	}
	if !cfg.MirrorSellFraction {
		t.Error("expected MirrorSellFraction to default to true")
	}
	if cfg.SlippageTolerance != 0.05 {
		t.Errorf("expected SlippageTolerance 0.05, got %f", cfg.SlippageTolerance)
	}
	if cfg.FastAttempts != 2 {
		t.Errorf("expected FastAttempts 2, got %d", cfg.FastAttempts)
	}
	if cfg.OrderbookDelay != 350*time.Millisecond {
		t.Errorf("expected OrderbookDelay 350ms, got %v", cfg.OrderbookDelay)
	}
	if cfg.RetryDelay != 1200*time.Millisecond {
		t.Errorf("expected RetryDelay 1.2s, got %v", cfg.RetryDelay)
	}
	if cfg.MakerWait != 200*time.Millisecond {
		t.Errorf("expected MakerWait 200ms, got %v", cfg.MakerWait)
	}
	if cfg.RetryLimit != 3 {
		t.Errorf("expected RetryLimit 3, got %d", cfg.RetryLimit)
	}
	if cfg.StorageMode != "memory" {
		t.Errorf("expected StorageMode memory, got %q", cfg.StorageMode)
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("MIRROR_AMPLIFICATION", "2.5")
	t.Setenv("MIRROR_SELL_FRACTION", "false")
	t.Setenv("RETRY_LIMIT", "5")
	t.Setenv("MAKER_WAIT", "50ms")
	t.Setenv("RPC_URL1", "https://rpc-one.test")
	t.Setenv("RPC_URL2", "https://rpc-two.test")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Amplification != 2.5 {
		t.Errorf("expected Amplification 2.5, got %f", cfg.Amplification)
	}
	if cfg.MirrorSellFraction {
		t.Error("expected MirrorSellFraction false")
	}
	if cfg.RetryLimit != 5 {
		t.Errorf("expected RetryLimit 5, got %d", cfg.RetryLimit)
	}
	if cfg.MakerWait != 50*time.Millisecond {
		t.Errorf("expected MakerWait 50ms, got %v", cfg.MakerWait)
	}
	if len(cfg.RPCURLs) != 2 || cfg.RPCURLs[0] != "https://rpc-one.test" || cfg.RPCURLs[1] != "https://rpc-two.test" {
		t.Errorf("unexpected RPC URLs: %v", cfg.RPCURLs)
	}
}

func TestLoadFromEnv_PrivateKeyPrefixStripped(t *testing.T) {
	t.Setenv("PRIVATE_KEY", " 0xabc123 ")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.PrivateKey != "abc123" {
		t.Errorf("expected stripped key, got %q", cfg.PrivateKey)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "empty-port", mutate: func(c *Config) { c.HTTPPort = "" }, wantErr: "HTTP_PORT"},
		{name: "zero-amplification", mutate: func(c *Config) { c.Amplification = 0 }, wantErr: "MIRROR_AMPLIFICATION"},
		{name: "slippage-too-large", mutate: func(c *Config) { c.SlippageTolerance = 1.5 }, wantErr: "SLIPPAGE_TOLERANCE"},
		{name: "zero-retry-limit", mutate: func(c *Config) { c.RetryLimit = 0 }, wantErr: "RETRY_LIMIT"},
		{name: "negative-fast-attempts", mutate: func(c *Config) { c.FastAttempts = -1 }, wantErr: "FAST_ATTEMPTS"},
		{name: "negative-min-balance", mutate: func(c *Config) { c.MinBalanceUSD = -1 }, wantErr: "MIN_BALANCE_USD"},
		{name: "low-hysteresis", mutate: func(c *Config) { c.BreakerHysteresisRatio = 0.5 }, wantErr: "BREAKER_HYSTERESIS_RATIO"},
		{name: "bad-mode", mutate: func(c *Config) { c.ExecutionMode = "yolo" }, wantErr: "EXECUTION_MODE"},
		{name: "bad-storage", mutate: func(c *Config) { c.StorageMode = "console" }, wantErr: "STORAGE_MODE"},
		{name: "live-without-key", mutate: func(c *Config) { c.ExecutionMode = "live" }, wantErr: "PRIVATE_KEY"},
		{
			name: "live-without-creds",
			mutate: func(c *Config) {
				c.ExecutionMode = "live"
				c.PrivateKey = "abc"
			},
			wantErr: "POLYMARKET_API_KEY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestValidateAccounts(t *testing.T) {
	cfg := validConfig()
	if err := cfg.ValidateAccounts(); err == nil {
		t.Fatal("expected error for missing addresses")
	}

	cfg.TargetAddress = "0xtarget"
	if err := cfg.ValidateAccounts(); err == nil || !strings.Contains(err.Error(), "PROXY_WALLET") {
		t.Fatalf("expected PROXY_WALLET error, got %v", err)
	}

	cfg.FollowerAddress = "0xfollower"
	if err := cfg.ValidateAccounts(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestGetFloat64OrDefault_Invalid(t *testing.T) {
	os.Setenv("TEST_FLOAT_VAR", "abc")
	t.Cleanup(func() { os.Unsetenv("TEST_FLOAT_VAR") })

	if got := getFloat64OrDefault("TEST_FLOAT_VAR", 1.5); got != 1.5 {
		t.Errorf("expected default 1.5, got %f", got)
	}
}

func TestGetBoolOrDefault(t *testing.T) {
	tests := []struct {
		envValue string
		want     bool
	}{
		{envValue: "true", want: true},
		{envValue: "0", want: false},
		{envValue: "nope", want: true},
		{envValue: "", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.envValue, func(t *testing.T) {
			t.Setenv("TEST_BOOL_VAR", tt.envValue)

			if got := getBoolOrDefault("TEST_BOOL_VAR", true); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestGetListOrDefault(t *testing.T) {
	t.Setenv("TEST_LIST_A", "")
	t.Setenv("TEST_LIST_B", "b")

	got := getListOrDefault([]string{"TEST_LIST_A", "TEST_LIST_B"}, []string{"default"})
	if len(got) != 1 || got[0] != "b" {
		t.Errorf("expected [b], got %v", got)
	}

	t.Setenv("TEST_LIST_B", "")
	got = getListOrDefault([]string{"TEST_LIST_A", "TEST_LIST_B"}, []string{"default"})
	if len(got) != 1 || got[0] != "default" {
		t.Errorf("expected [default], got %v", got)
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := validConfig()
	cfg.PostgresHost = "db"
	cfg.PostgresPort = "5433"
	cfg.PostgresUser = "u"
	cfg.PostgresPass = "p"
	cfg.PostgresDB = "mirror"
	cfg.PostgresSSL = "disable"

	want := "host=db port=5433 user=u password=p dbname=mirror sslmode=disable"
	if got := cfg.PostgresDSN(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
