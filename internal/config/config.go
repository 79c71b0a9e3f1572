package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"SignalScanner/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	DataSource struct {
		Provider   string `yaml:"provider"`
		Proxy      string `yaml:"proxy"`
		MaxRetries int    `yaml:"max_retries"`
		Alpaca     struct {
			APIKey    string `yaml:"api_key"`
			APISecret string `yaml:"api_secret"`
			DataURL   string `yaml:"data_url"`
			Feed      string `yaml:"feed"`
		} `yaml:"alpaca"`
	} `yaml:"data_source"`
	Universe struct {
		Path string `yaml:"path"`
	} `yaml:"universe"`
	Schedule struct {
		EMADaily  string `yaml:"ema_daily"`
		EMAWeekly string `yaml:"ema_weekly"`
		SMA50     string `yaml:"sma50"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
}

// Data source provider names.
const (
	ProviderYahoo  = "yahoo"
	ProviderAlpaca = "alpaca"
	ProviderMock   = "mock"
)

// LoadDotEnv loads a .env file into the process environment if one exists.
// Variables already set are left untouched.
func LoadDotEnv(path string) {
	if err := godotenv.Load(path); err != nil {
		logrus.Debugf("no %s file loaded: %v", path, err)
	}
}

// Load reads config from a YAML file, then applies environment variable overrides
// and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		c.DataSource.Provider = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.DataSource.Proxy = v
	}
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		c.DataSource.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		c.DataSource.Alpaca.APISecret = v
	}
	if v := os.Getenv("SYMBOLS_FILE"); v != "" {
		c.Universe.Path = v
	}
	if v := os.Getenv("CRON_EMA_DAILY"); v != "" {
		c.Schedule.EMADaily = v
	}
	if v := os.Getenv("CRON_EMA_WEEKLY"); v != "" {
		c.Schedule.EMAWeekly = v
	}
	if v := os.Getenv("CRON_SMA50"); v != "" {
		c.Schedule.SMA50 = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = ProviderYahoo
		if c.DataSource.Alpaca.APIKey != "" && c.DataSource.Alpaca.APISecret != "" {
			c.DataSource.Provider = ProviderAlpaca
		}
	}
	if c.DataSource.MaxRetries == 0 {
		c.DataSource.MaxRetries = 3
	}
	if c.DataSource.Alpaca.Feed == "" {
		c.DataSource.Alpaca.Feed = "iex"
	}
	if c.Universe.Path == "" {
		c.Universe.Path = "top_indices_symbols.txt"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
}

// CronSpecs returns the schedule keyed by scan type. Empty entries are disabled.
func (c *Config) CronSpecs() map[model.ScanType]string {
	return map[model.ScanType]string{
		model.ScanEMADaily:  c.Schedule.EMADaily,
		model.ScanEMAWeekly: c.Schedule.EMAWeekly,
		model.ScanSMA50:     c.Schedule.SMA50,
	}
}

// TelegramEnabled reports whether both Telegram credentials are set.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch c.DataSource.Provider {
	case ProviderYahoo, ProviderMock:
	case ProviderAlpaca:
		if c.DataSource.Alpaca.APIKey == "" || c.DataSource.Alpaca.APISecret == "" {
			return fmt.Errorf("data_source.alpaca api_key and api_secret are required for the alpaca provider")
		}
	default:
		return fmt.Errorf("data_source.provider %q must be one of yahoo, alpaca, mock", c.DataSource.Provider)
	}
	if c.DataSource.MaxRetries < 0 {
		return fmt.Errorf("data_source.max_retries must not be negative")
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	for t, spec := range c.CronSpecs() {
		if spec == "" {
			continue
		}
		if _, err := parser.Parse(spec); err != nil {
			return fmt.Errorf("schedule.%s: %w", t, err)
		}
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}
