// Package config loads leadscout configuration from .env, config.yaml and
// LEADSCOUT_* environment variables.
package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram" mapstructure:"telegram"`
	Oracle    OracleConfig    `yaml:"oracle" mapstructure:"oracle"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Ollama    OllamaConfig    `yaml:"ollama" mapstructure:"ollama"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Ingest    IngestConfig    `yaml:"ingest" mapstructure:"ingest"`
	Metrics   MetricsConfig   `yaml:"metrics" mapstructure:"metrics"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// TelegramConfig configures the userbot account.
type TelegramConfig struct {
	APIID       int    `yaml:"api_id" mapstructure:"api_id"`
	APIHash     string `yaml:"api_hash" mapstructure:"api_hash"`
	Phone       string `yaml:"phone" mapstructure:"phone"`
	Password    string `yaml:"password" mapstructure:"password"`
	SessionFile string `yaml:"session_file" mapstructure:"session_file"`
}

// OracleConfig selects the classification oracle and bounds its calls.
type OracleConfig struct {
	Provider         string  `yaml:"provider" mapstructure:"provider"`
	TimeoutSecs      int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxAttempts      int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	BreakerThreshold int     `yaml:"breaker_threshold" mapstructure:"breaker_threshold"`
	BreakerResetSecs int     `yaml:"breaker_reset_secs" mapstructure:"breaker_reset_secs"`
	RPS              float64 `yaml:"rps" mapstructure:"rps"`
	Temperature      float64 `yaml:"temperature" mapstructure:"temperature"`
	MaxTokens        int     `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// AnthropicConfig configures the hosted oracle.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// OllamaConfig configures the local oracle.
type OllamaConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// StoreConfig configures lead storage.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// IngestConfig configures sources, backfill and pacing.
type IngestConfig struct {
	Channels              []string `yaml:"channels" mapstructure:"channels"`
	AnalyzeHistory        bool     `yaml:"analyze_history" mapstructure:"analyze_history"`
	HistoryLimit          int      `yaml:"history_limit" mapstructure:"history_limit"`
	MinMessageLength      int      `yaml:"min_message_length" mapstructure:"min_message_length"`
	HistoryDelayMs        int      `yaml:"history_delay_ms" mapstructure:"history_delay_ms"`
	ChannelDelayMs        int      `yaml:"channel_delay_ms" mapstructure:"channel_delay_ms"`
	JoinDelayMs           int      `yaml:"join_delay_ms" mapstructure:"join_delay_ms"`
	FloodWaitFallbackSecs int      `yaml:"flood_wait_fallback_secs" mapstructure:"flood_wait_fallback_secs"`
	LiveBuffer            int      `yaml:"live_buffer" mapstructure:"live_buffer"`
}

// MetricsConfig configures the Prometheus endpoint. Empty Addr disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ErrInvalid marks configuration that must stop the process before ingestion.
var ErrInvalid = eris.New("invalid configuration")

// legacyEnv maps keys to the unprefixed variable names used by older .env
// files.
var legacyEnv = map[string]string{
	"telegram.api_id":           "API_ID",
	"telegram.api_hash":         "API_HASH",
	"telegram.phone":            "PHONE_NUMBER",
	"ingest.channels":           "CHANNELS",
	"ingest.analyze_history":    "ANALYZE_HISTORY",
	"ingest.history_limit":      "HISTORY_LIMIT",
	"ingest.min_message_length": "MIN_MESSAGE_LENGTH",
	"ingest.history_delay_ms":   "HISTORY_DELAY",
	"ingest.channel_delay_ms":   "CHANNEL_DELAY",
}

// Load reads configuration from .env, config.yaml and the environment.
func Load() (*Config, error) {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load(".env")

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		prefixed := "LEADSCOUT_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, eris.Wrapf(err, "config: bind env %s", key)
		}
	}

	// Defaults
	v.SetDefault("telegram.api_id", 0)
	v.SetDefault("telegram.api_hash", "")
	v.SetDefault("telegram.phone", "")
	v.SetDefault("telegram.password", "")
	v.SetDefault("telegram.session_file", "userbot_session.json")
	v.SetDefault("oracle.provider", "ollama")
	v.SetDefault("oracle.timeout_secs", 60)
	v.SetDefault("oracle.max_attempts", 2)
	v.SetDefault("oracle.breaker_threshold", 5)
	v.SetDefault("oracle.breaker_reset_secs", 30)
	v.SetDefault("oracle.rps", 0)
	v.SetDefault("oracle.temperature", 0.3)
	v.SetDefault("oracle.max_tokens", 500)
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("ollama.base_url", "http://localhost:11434")
	v.SetDefault("ollama.model", "llama3.2")
	v.SetDefault("store.driver", "xlsx")
	v.SetDefault("store.path", "leads.xlsx")
	v.SetDefault("store.database_url", "")
	v.SetDefault("ingest.channels", []string{})
	v.SetDefault("ingest.analyze_history", false)
	v.SetDefault("ingest.history_limit", 50)
	v.SetDefault("ingest.min_message_length", 20)
	v.SetDefault("ingest.history_delay_ms", 1000)
	v.SetDefault("ingest.channel_delay_ms", 2000)
	v.SetDefault("ingest.join_delay_ms", 2000)
	v.SetDefault("ingest.flood_wait_fallback_secs", 60)
	v.SetDefault("ingest.live_buffer", 64)
	v.SetDefault("metrics.addr", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	cfg.Ingest.Channels = splitChannels(cfg.Ingest.Channels)

	return &cfg, nil
}

// splitChannels flattens comma-separated entries, trims them and drops
// blanks.
func splitChannels(in []string) []string {
	out := make([]string, 0, len(in))
	for _, entry := range in {
		for _, ch := range strings.Split(entry, ",") {
			if ch = strings.TrimSpace(ch); ch != "" {
				out = append(out, ch)
			}
		}
	}
	return out
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
