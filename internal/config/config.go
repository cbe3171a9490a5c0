package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "GR"

type Config struct {
	App      AppConfig      `mapstructure:"app" yaml:"app"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	DB       DBConfig       `mapstructure:"db" yaml:"db"`
	Cron     CronConfig     `mapstructure:"cron" yaml:"cron"`
	Risk     RiskConfig     `mapstructure:"risk" yaml:"risk"`
	Governor GovernorConfig `mapstructure:"governor" yaml:"governor"`
	Redis    RedisConfig    `mapstructure:"redis" yaml:"redis"`
	Notify   NotifyConfig   `mapstructure:"notify" yaml:"notify"`
	Audit    AuditConfig    `mapstructure:"audit" yaml:"audit"`
	Auth     AuthConfig     `mapstructure:"auth" yaml:"auth"`
}

type AppConfig struct {
	Name string `mapstructure:"name" yaml:"name"`
	Env  string `mapstructure:"env" yaml:"env"`
}

type ServerConfig struct {
	HTTPAddr        string        `mapstructure:"http_addr" yaml:"http_addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

type LogConfig struct {
	Level             string `mapstructure:"level" yaml:"level"`
	Encoding          string `mapstructure:"encoding" yaml:"encoding"`
	Development       bool   `mapstructure:"development" yaml:"development"`
	Sampling          bool   `mapstructure:"sampling" yaml:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller" yaml:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace" yaml:"disable_stacktrace"`
}

type DBConfig struct {
	// Driver is "postgres" or "sqlite".
	Driver          string        `mapstructure:"driver" yaml:"driver"`
	DSN             string        `mapstructure:"dsn" yaml:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" yaml:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone" yaml:"timezone"`
}

type CronConfig struct {
	Enabled       bool   `mapstructure:"enabled" yaml:"enabled"`
	Heartbeat     string `mapstructure:"heartbeat" yaml:"heartbeat"`
	GovernorGauge string `mapstructure:"governor_gauge" yaml:"governor_gauge"`
}

// RiskConfig holds the guardrail thresholds. Values are fractions (0.1 = 10%).
type RiskConfig struct {
	MaxLossPct             float64 `mapstructure:"max_loss_pct" yaml:"max_loss_pct"`
	MaxLeverage            float64 `mapstructure:"max_leverage" yaml:"max_leverage"`
	MaxOpenPositions       int     `mapstructure:"max_open_positions" yaml:"max_open_positions"`
	MaxPositionsPerSymbol  int     `mapstructure:"max_positions_per_symbol" yaml:"max_positions_per_symbol"`
	MaxNetExposurePct      float64 `mapstructure:"max_net_exposure_pct" yaml:"max_net_exposure_pct"`
	MaxDailyLossPct        float64 `mapstructure:"max_daily_loss_pct" yaml:"max_daily_loss_pct"`
	MaxConsecutiveLosses   int     `mapstructure:"max_consecutive_losses" yaml:"max_consecutive_losses"`
	MaxDrawdownPct         float64 `mapstructure:"max_drawdown_pct" yaml:"max_drawdown_pct"`
	FeeBufferPct           float64 `mapstructure:"fee_buffer_pct" yaml:"fee_buffer_pct"`
	SlippageBufferPct      float64 `mapstructure:"slippage_buffer_pct" yaml:"slippage_buffer_pct"`
	VolatilityBufferMult   float64 `mapstructure:"volatility_buffer_mult" yaml:"volatility_buffer_mult"`
	LiquidationBufferRatio float64 `mapstructure:"liquidation_buffer_ratio" yaml:"liquidation_buffer_ratio"`
}

type GovernorConfig struct {
	// Lock is "local" (in-process) or "redis" (shared across processes).
	Lock        string        `mapstructure:"lock" yaml:"lock"`
	LockKey     string        `mapstructure:"lock_key" yaml:"lock_key"`
	LockTTL     time.Duration `mapstructure:"lock_ttl" yaml:"lock_ttl"`
	LockWait    time.Duration `mapstructure:"lock_wait" yaml:"lock_wait"`
	NotifyQueue int           `mapstructure:"notify_queue" yaml:"notify_queue"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db"`
}

type NotifyConfig struct {
	Timeout  time.Duration  `mapstructure:"timeout" yaml:"timeout"`
	Telegram TelegramConfig `mapstructure:"telegram" yaml:"telegram"`
	Webhook  WebhookConfig  `mapstructure:"webhook" yaml:"webhook"`
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token" yaml:"bot_token"`
	ChatID   string `mapstructure:"chat_id" yaml:"chat_id"`
}

type WebhookConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

// AuditConfig configures the optional remote audit-log sink.
type AuditConfig struct {
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	APIKey  string        `mapstructure:"api_key" yaml:"api_key"`
	Agent   string        `mapstructure:"agent" yaml:"agent"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type AuthConfig struct {
	Disabled  bool   `mapstructure:"disabled" yaml:"disabled"`
	APIToken  string `mapstructure:"api_token" yaml:"api_token"`
	JWTSecret string `mapstructure:"jwt_secret" yaml:"jwt_secret"`
}

// LoadDotEnv loads variables from path (or ".env") when the file exists.
// Variables already present in the environment win.
func LoadDotEnv(path string) error {
	if strings.TrimSpace(path) == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	setDefaults(v)

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "guardrail")
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.heartbeat", "@every 1m")
	v.SetDefault("cron.governor_gauge", "@every 30s")

	v.SetDefault("risk.max_loss_pct", 0.10)
	v.SetDefault("risk.max_leverage", 100)
	v.SetDefault("risk.max_open_positions", 3)
	v.SetDefault("risk.max_positions_per_symbol", 1)
	v.SetDefault("risk.max_net_exposure_pct", 0.6)
	v.SetDefault("risk.max_daily_loss_pct", 0.1)
	v.SetDefault("risk.max_consecutive_losses", 5)
	v.SetDefault("risk.max_drawdown_pct", 0.40)
	v.SetDefault("risk.fee_buffer_pct", 0.0005)
	v.SetDefault("risk.slippage_buffer_pct", 0.001)
	v.SetDefault("risk.volatility_buffer_mult", 2.0)
	v.SetDefault("risk.liquidation_buffer_ratio", 0.2)

	v.SetDefault("governor.lock", "local")
	v.SetDefault("governor.lock_key", "guardrail:governor")
	v.SetDefault("governor.lock_ttl", "10s")
	v.SetDefault("governor.lock_wait", "5s")
	v.SetDefault("governor.notify_queue", 64)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("notify.timeout", "5s")
	v.SetDefault("notify.telegram.bot_token", "")
	v.SetDefault("notify.telegram.chat_id", "")
	v.SetDefault("notify.webhook.url", "")

	v.SetDefault("audit.base_url", "")
	v.SetDefault("audit.api_key", "")
	v.SetDefault("audit.agent", "guardrail")
	v.SetDefault("audit.timeout", "2s")

	v.SetDefault("auth.disabled", false)
	v.SetDefault("auth.api_token", "")
	v.SetDefault("auth.jwt_secret", "")
}

// Validate rejects configurations the service cannot run with.
func (c Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.DB.Driver)) {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unsupported db.driver %q", c.DB.Driver)
	}
	switch strings.ToLower(strings.TrimSpace(c.Governor.Lock)) {
	case "", "local", "redis":
	default:
		return fmt.Errorf("config: unsupported governor.lock %q", c.Governor.Lock)
	}
	return c.Risk.Validate()
}

func (r RiskConfig) Validate() error {
	fractions := map[string]float64{
		"max_loss_pct":             r.MaxLossPct,
		"max_leverage":             r.MaxLeverage,
		"max_net_exposure_pct":     r.MaxNetExposurePct,
		"max_daily_loss_pct":       r.MaxDailyLossPct,
		"max_drawdown_pct":         r.MaxDrawdownPct,
		"fee_buffer_pct":           r.FeeBufferPct,
		"slippage_buffer_pct":      r.SlippageBufferPct,
		"liquidation_buffer_ratio": r.LiquidationBufferRatio,
	}
	for name, val := range fractions {
		if val < 0 {
			return fmt.Errorf("config: risk.%s must not be negative", name)
		}
	}
	if r.MaxOpenPositions < 0 || r.MaxPositionsPerSymbol < 0 || r.MaxConsecutiveLosses < 0 {
		return errors.New("config: risk position and loss-streak limits must not be negative")
	}
	if r.VolatilityBufferMult <= 0 {
		return errors.New("config: risk.volatility_buffer_mult must be positive")
	}
	return nil
}
