package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config is loaded once at startup from the environment (with .env
// support for local runs).
type Config struct {
	// Upstreams
	TonAPIURL   string
	TonAPIKey   string
	GeckoURL    string
	TonAPIPause time.Duration
	GeckoPause  time.Duration

	// Telegram (optional; console reporting when unset)
	TelegramBotToken string
	TelegramChatID   string

	// Scanned-pool ledger
	LedgerPath   string
	RescanWindow time.Duration

	// Discovery funnel
	MinFDVUSD       decimal.Decimal
	MinReserveRatio decimal.Decimal

	// Scoring thresholds
	LockShareThreshold  float64
	CreatorShareLimit   float64
	AirdropPercentLimit float64
	PassRating          int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		TonAPIURL:   envOr("TONAPI_URL", "https://tonapi.io/v2"),
		TonAPIKey:   os.Getenv("TONAPI_KEY"),
		GeckoURL:    envOr("GECKO_URL", "https://api.geckoterminal.com/api/v2"),
		TonAPIPause: envDur("TONAPI_PAUSE", time.Second),
		GeckoPause:  envDur("GECKO_PAUSE", time.Second),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   os.Getenv("TELEGRAM_CHAT_ID"),

		LedgerPath:   envOr("LEDGER_PATH", "scanned_tokens.csv"),
		RescanWindow: envDur("RESCAN_WINDOW", 2*time.Hour),

		MinFDVUSD:       envDecimal("MIN_FDV_USD", decimal.NewFromInt(2000)),
		MinReserveRatio: envDecimal("MIN_RESERVE_RATIO", decimal.NewFromFloat(0.05)),

		LockShareThreshold:  envFloat("LOCK_SHARE_THRESHOLD", 0.70),
		CreatorShareLimit:   envFloat("CREATOR_SHARE_LIMIT", 0.10),
		AirdropPercentLimit: envFloat("AIRDROP_PERCENT_LIMIT", 20),
		PassRating:          envInt("PASS_RATING", 4),
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.TonAPIURL == "" || c.GeckoURL == "" {
		return fmt.Errorf("upstream URLs must not be empty")
	}
	if c.LockShareThreshold <= 0 || c.LockShareThreshold > 1 {
		return fmt.Errorf("LOCK_SHARE_THRESHOLD must be in (0,1], got %v", c.LockShareThreshold)
	}
	if c.PassRating < 0 || c.PassRating > 4 {
		return fmt.Errorf("PASS_RATING must be in [0,4], got %d", c.PassRating)
	}
	if c.TelegramBotToken != "" && c.TelegramChatID == "" {
		return fmt.Errorf("TELEGRAM_CHAT_ID required when TELEGRAM_BOT_TOKEN is set")
	}
	return nil
}

// TelegramEnabled reports whether discovery reports go to a chat instead
// of the console.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != ""
}

// helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDur(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	if v := os.Getenv(key); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
	}
	return fallback
}
