package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Log        LoggingConfig    `yaml:"log"`
	Gamma      GammaConfig      `yaml:"gamma"`
	Clob       ClobConfig       `yaml:"clob"`
	Trading    TradingConfig    `yaml:"trading"`
	Strategies StrategiesConfig `yaml:"strategies"`
	Journal    JournalConfig    `yaml:"journal"`
	Archive    ArchiveConfig    `yaml:"archive"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Watch      WatchConfig      `yaml:"watch"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// GammaConfig covers the read-only market data APIs.
type GammaConfig struct {
	BaseURL string        `yaml:"base_url"`
	DataURL string        `yaml:"data_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// ClobConfig covers the order API and its market websocket.
type ClobConfig struct {
	BaseURL        string        `yaml:"base_url"`
	WSURL          string        `yaml:"ws_url"`
	Timeout        time.Duration `yaml:"timeout"`
	ReconnectDelay time.Duration `yaml:"reconnect_delay"`
	PingInterval   time.Duration `yaml:"ping_interval"`
}

type TradingConfig struct {
	RequestsPerMinute int           `yaml:"requests_per_minute"`
	RequestBurst      int           `yaml:"request_burst"`
	InterOrderDelay   time.Duration `yaml:"inter_order_delay"`
	MaxAttempts       int           `yaml:"max_attempts"`
	RetryBackoff      time.Duration `yaml:"retry_backoff"`
	MaxLadderOrders   int           `yaml:"max_ladder_orders"`
	ConfirmTTL        time.Duration `yaml:"confirm_ttl"`
}

type StrategiesConfig struct {
	DryRun   bool          `yaml:"dry_run"`
	Interval time.Duration `yaml:"interval"`
	MaxRuns  int           `yaml:"max_runs"`
	Whale    WhaleConfig   `yaml:"whale"`
	Volume   VolumeConfig  `yaml:"volume"`
	Scan     ScanConfig    `yaml:"scan"`
}

type WhaleConfig struct {
	Enabled        bool    `yaml:"enabled"`
	MinUSD         float64 `yaml:"min_usd"`
	BetUSD         float64 `yaml:"bet_usd"`
	MaxTrades      int     `yaml:"max_trades"`
	OnlyProfitable bool    `yaml:"only_profitable"`
	MinProfitUSD   float64 `yaml:"min_profit_usd"`
}

type VolumeConfig struct {
	Enabled  bool     `yaml:"enabled"`
	BetUSD   float64  `yaml:"bet_usd"`
	Count    int      `yaml:"count"`
	Keywords []string `yaml:"keywords"`
}

type ScanConfig struct {
	Enabled      bool    `yaml:"enabled"`
	MinVolumeUSD float64 `yaml:"min_volume_usd"`
	MaxPrice     string  `yaml:"max_price"`
}

type JournalConfig struct {
	SQLitePath string `yaml:"sqlite_path"`
}

type ArchiveConfig struct {
	Enabled         bool          `yaml:"enabled"`
	DSN             string        `yaml:"dsn"`
	Schema          string        `yaml:"schema"`
	QueueSize       int           `yaml:"queue_size"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

type TelegramConfig struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
	ChatID  string `yaml:"chat_id"`
}

// WatchConfig drives the live price/whale watcher on the market websocket.
type WatchConfig struct {
	Enabled     bool     `yaml:"enabled"`
	TokenIDs    []string `yaml:"token_ids"`
	WhaleMinUSD float64  `yaml:"whale_min_usd"`
	PriceAbove  string   `yaml:"price_above"`
	PriceBelow  string   `yaml:"price_below"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, validate(&cfg)
}

func applyDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Gamma.BaseURL == "" {
		cfg.Gamma.BaseURL = "https://gamma-api.polymarket.com"
	}
	if cfg.Gamma.DataURL == "" {
		cfg.Gamma.DataURL = "https://data-api.polymarket.com"
	}
	if cfg.Gamma.Timeout == 0 {
		cfg.Gamma.Timeout = 15 * time.Second
	}
	if cfg.Clob.BaseURL == "" {
		cfg.Clob.BaseURL = "https://clob.polymarket.com"
	}
	if cfg.Clob.WSURL == "" {
		cfg.Clob.WSURL = "wss://ws-subscriptions-clob.polymarket.com/ws/market"
	}
	if cfg.Clob.Timeout == 0 {
		cfg.Clob.Timeout = 10 * time.Second
	}
	if cfg.Clob.ReconnectDelay == 0 {
		cfg.Clob.ReconnectDelay = 3 * time.Second
	}
	if cfg.Clob.PingInterval == 0 {
		cfg.Clob.PingInterval = 10 * time.Second
	}
	if cfg.Trading.RequestsPerMinute == 0 {
		cfg.Trading.RequestsPerMinute = 60
	}
	if cfg.Trading.RequestBurst == 0 {
		cfg.Trading.RequestBurst = 5
	}
	if cfg.Trading.InterOrderDelay == 0 {
		cfg.Trading.InterOrderDelay = 100 * time.Millisecond
	}
	if cfg.Trading.MaxAttempts == 0 {
		cfg.Trading.MaxAttempts = 3
	}
	if cfg.Trading.RetryBackoff == 0 {
		cfg.Trading.RetryBackoff = 200 * time.Millisecond
	}
	if cfg.Trading.MaxLadderOrders == 0 {
		cfg.Trading.MaxLadderOrders = 200
	}
	if cfg.Trading.ConfirmTTL == 0 {
		cfg.Trading.ConfirmTTL = 2 * time.Minute
	}
	if cfg.Strategies.Interval == 0 {
		cfg.Strategies.Interval = time.Hour
	}
	if cfg.Strategies.Whale.MinUSD == 0 {
		cfg.Strategies.Whale.MinUSD = 5000
	}
	if cfg.Strategies.Whale.BetUSD == 0 {
		cfg.Strategies.Whale.BetUSD = 5
	}
	if cfg.Strategies.Whale.MaxTrades == 0 {
		cfg.Strategies.Whale.MaxTrades = 5
	}
	if cfg.Strategies.Volume.BetUSD == 0 {
		cfg.Strategies.Volume.BetUSD = 5
	}
	if cfg.Strategies.Volume.Count == 0 {
		cfg.Strategies.Volume.Count = 3
	}
	if cfg.Strategies.Scan.MinVolumeUSD == 0 {
		cfg.Strategies.Scan.MinVolumeUSD = 100000
	}
	if cfg.Strategies.Scan.MaxPrice == "" {
		cfg.Strategies.Scan.MaxPrice = "0.30"
	}
	if cfg.Journal.SQLitePath == "" {
		cfg.Journal.SQLitePath = "data/claude-trader.db"
	}
	if cfg.Archive.Schema == "" {
		cfg.Archive.Schema = "public"
	}
	if cfg.Metrics.Listen == "" {
		cfg.Metrics.Listen = ":9190"
	}
}

func validate(cfg *Config) error {
	if cfg.Trading.RequestsPerMinute < 1 {
		return errors.New("trading.requests_per_minute must be >= 1")
	}
	if cfg.Trading.MaxAttempts < 1 {
		return errors.New("trading.max_attempts must be >= 1")
	}
	if cfg.Trading.MaxLadderOrders < 1 || cfg.Trading.MaxLadderOrders > 1000 {
		return errors.New("trading.max_ladder_orders must be in [1, 1000]")
	}
	if cfg.Trading.ConfirmTTL <= 0 {
		return errors.New("trading.confirm_ttl must be > 0")
	}
	if cfg.Strategies.Whale.Enabled && cfg.Strategies.Whale.BetUSD <= 0 {
		return errors.New("strategies.whale.bet_usd must be > 0")
	}
	if cfg.Strategies.Volume.Enabled && cfg.Strategies.Volume.BetUSD <= 0 {
		return errors.New("strategies.volume.bet_usd must be > 0")
	}
	if cfg.Archive.Enabled && cfg.Archive.DSN == "" {
		return errors.New("archive.dsn is required when archive is enabled")
	}
	if cfg.Telegram.Enabled && (cfg.Telegram.Token == "" || cfg.Telegram.ChatID == "") {
		return fmt.Errorf("telegram token and chat_id are required when telegram is enabled")
	}
	return nil
}
