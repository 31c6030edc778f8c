package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
	"gopkg.in/validator.v2"
)

// Row store backends
const (
	StoreSheets     = "sheets"
	StoreClickHouse = "clickhouse"
	StoreMock       = "mock"
)

// Session store backends
const (
	SessionsMemory = "memory"
	SessionsRedis  = "redis"
)

// Config holds the application configuration
type Config struct {
	TelegramToken string `envconfig:"TELEGRAM_BOT_TOKEN" validate:"nonzero"`
	GroupChatID   int64  `envconfig:"GROUP_CHAT_ID" validate:"nonzero"`
	GroupLanguage string `envconfig:"GROUP_LANGUAGE" default:"ru" validate:"nonzero"`

	// Bot mode configuration
	WebhookMode bool   `envconfig:"WEBHOOK_MODE"`
	WebhookURL  string `envconfig:"WEBHOOK_URL"`
	WebhookPath string `envconfig:"WEBHOOK_PATH" default:"/telegram-webhook" validate:"regexp=^/"`
	Port        string `envconfig:"PORT" default:"8080" validate:"nonzero"`

	StoreBackend string `envconfig:"STORE_BACKEND" default:"sheets" validate:"regexp=^(sheets|clickhouse|mock)$"`

	Sheets struct {
		CredentialsFile string `split_words:"true"`
		SpreadsheetID   string `split_words:"true"`
		Worksheet       string `default:"Sheet1"`
	}

	ClickHouse struct {
		Host     string
		Port     int    `default:"9000"`
		Database string `default:"default"`
		User     string `default:"default"`
		Password string
		UseTLS   bool `split_words:"true"`
	}

	Session struct {
		Backend       string        `default:"memory" validate:"regexp=^(memory|redis)$"`
		TTL           time.Duration `default:"30m"`
		SweepSchedule string        `split_words:"true" default:"@every 1m"`
	}

	Redis struct {
		Addr     string `default:"localhost:6379"`
		Password string
		DB       int
	}

	Form struct {
		AskEmail         bool   `split_words:"true"`
		Confirm          bool
		AllowBack        bool   `split_words:"true" default:"true"`
		PhoneCountryCode string `split_words:"true" default:"998"`
	}

	// SheetColumns is the row layout, empty means language followed by every field
	SheetColumns []string `envconfig:"SHEET_COLUMNS"`
	LocaleFile   string   `envconfig:"LOCALE_FILE"`

	LogFile  string `envconfig:"LOG_FILE"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := validator.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.check(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// check enforces the rules that span several fields
func (c *Config) check() error {
	var err error

	if c.WebhookMode && c.WebhookURL == "" {
		err = multierr.Append(err, errors.New("WEBHOOK_URL is required when WEBHOOK_MODE is true"))
	}

	switch c.StoreBackend {
	case StoreSheets:
		if c.Sheets.CredentialsFile == "" {
			err = multierr.Append(err, errors.New("SHEETS_CREDENTIALS_FILE is required for the sheets store"))
		}
		if c.Sheets.SpreadsheetID == "" {
			err = multierr.Append(err, errors.New("SHEETS_SPREADSHEET_ID is required for the sheets store"))
		}
	case StoreClickHouse:
		if c.ClickHouse.Host == "" {
			err = multierr.Append(err, errors.New("CLICKHOUSE_HOST is required for the clickhouse store"))
		}
	}

	if c.Session.Backend == SessionsRedis && c.Redis.Addr == "" {
		err = multierr.Append(err, errors.New("REDIS_ADDR is required for the redis session store"))
	}
	if c.Session.TTL < 0 {
		err = multierr.Append(err, errors.New("SESSION_TTL must not be negative"))
	}
	if _, perr := cron.ParseStandard(c.Session.SweepSchedule); perr != nil {
		err = multierr.Append(err, fmt.Errorf("invalid SESSION_SWEEP_SCHEDULE: %w", perr))
	}

	if _, lerr := c.ZapLevel(); lerr != nil {
		err = multierr.Append(err, lerr)
	}
	return err
}

// ZapLevel parses LOG_LEVEL
func (c *Config) ZapLevel() (zapcore.Level, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return level, fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// Mode names the update transport
func (c *Config) Mode() string {
	if c.WebhookMode {
		return "webhook"
	}
	return "polling"
}
