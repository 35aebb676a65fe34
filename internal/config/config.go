package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"telegraphbot/internal/shared"
)

// Config holds application configuration values.
type Config struct {
	Env      string `validate:"required,oneof=dev prod"`
	Telegram struct {
		Token         string `validate:"required"`
		WebhookURL    string `validate:"omitempty,url"`
		WebhookSecret string
		Workers       int           `validate:"min=1,max=256"`
		PollTimeout   time.Duration `validate:"min=1s"`
	}
	HTTP struct {
		Addr string `validate:"required"`
	}
	Log struct {
		ConsoleLevel string `validate:"required,oneof=debug info warn error"`
		FileLevel    string `validate:"required,oneof=debug info warn error"`
		File         string
	}
	AllowedIDs []int64
	RateLimit  time.Duration `validate:"min=0"`
}

var validate = validator.New()

// Load reads configuration from environment variables and optional .env file.
// Every returned error classifies as shared.KindValidation.
func Load() (Config, error) {
	_ = godotenv.Load()

	var c Config
	c.Env = getenv("ENV", "prod")
	c.Telegram.Token = os.Getenv("TELEGRAM_BOT_TOKEN")
	c.Telegram.WebhookURL = os.Getenv("TELEGRAM_WEBHOOK_URL")
	c.Telegram.WebhookSecret = os.Getenv("TELEGRAM_WEBHOOK_SECRET")
	c.HTTP.Addr = getenv("HTTP_ADDR", ":8080")
	c.Log.ConsoleLevel = strings.ToLower(getenv("LOG_CONSOLE_LEVEL", "info"))
	c.Log.FileLevel = strings.ToLower(getenv("LOG_FILE_LEVEL", "debug"))
	c.Log.File = getenv("LOG_FILE", "data/logs/bot.log")

	var err error
	if c.Telegram.Workers, err = strconv.Atoi(getenv("TELEGRAM_WORKERS", "8")); err != nil {
		return Config{}, invalid("TELEGRAM_WORKERS", err)
	}
	if c.Telegram.PollTimeout, err = time.ParseDuration(getenv("TELEGRAM_POLL_TIMEOUT", "1m")); err != nil {
		return Config{}, invalid("TELEGRAM_POLL_TIMEOUT", err)
	}
	if c.RateLimit, err = time.ParseDuration(getenv("RATE_LIMIT", "1s")); err != nil {
		return Config{}, invalid("RATE_LIMIT", err)
	}
	if c.AllowedIDs, err = ParseIDs(os.Getenv("ALLOWED_IDS")); err != nil {
		return Config{}, invalid("ALLOWED_IDS", err)
	}

	if err := validate.Struct(c); err != nil {
		return Config{}, shared.MarkKind(err, shared.KindValidation)
	}
	if c.Telegram.WebhookURL != "" && c.Telegram.WebhookSecret == "" {
		return Config{}, shared.MarkKind(
			errors.New("TELEGRAM_WEBHOOK_SECRET required when TELEGRAM_WEBHOOK_URL is set"),
			shared.KindValidation)
	}
	return c, nil
}

// Webhook reports whether updates arrive by webhook instead of long polling.
func (c Config) Webhook() bool { return c.Telegram.WebhookURL != "" }

// ParseIDs parses Telegram user IDs separated by commas or whitespace.
func ParseIDs(s string) ([]int64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t'
	})
	if len(fields) == 0 {
		return nil, nil
	}
	out := make([]int64, 0, len(fields))
	for _, f := range fields {
		id, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad user id %q: %w", f, err)
		}
		out = append(out, id)
	}
	return out, nil
}

func invalid(key string, err error) error {
	return shared.MarkKind(fmt.Errorf("%s: %w", key, err), shared.KindValidation)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
