package config

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Validate checks the configuration needed by mode ("listen", "auth",
// "check" or "leads"). Every returned error wraps ErrInvalid.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "listen":
		problems = append(problems, c.validateTelegram()...)
		problems = append(problems, c.validateOracle()...)
		problems = append(problems, c.validateStore()...)
		problems = append(problems, c.validateIngest()...)
	case "auth":
		problems = append(problems, c.validateTelegram()...)
	case "check":
		problems = append(problems, c.validateOracle()...)
	case "leads":
		problems = append(problems, c.validateStore()...)
	default:
		return eris.Wrapf(ErrInvalid, "unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Wrap(ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) validateTelegram() []string {
	var out []string
	if c.Telegram.APIID <= 0 {
		out = append(out, "telegram.api_id must be a positive number")
	}
	if len(c.Telegram.APIHash) < 10 {
		out = append(out, "telegram.api_hash looks invalid")
	}
	if !strings.HasPrefix(c.Telegram.Phone, "+") {
		out = append(out, "telegram.phone must start with + (international format)")
	}
	if c.Telegram.SessionFile == "" {
		out = append(out, "telegram.session_file is required")
	}
	return out
}

func (c *Config) validateOracle() []string {
	var out []string
	switch c.Oracle.Provider {
	case "ollama":
		if c.Ollama.BaseURL == "" || c.Ollama.Model == "" {
			out = append(out, "ollama.base_url and ollama.model are required")
		}
	case "anthropic":
		if c.Anthropic.Key == "" {
			out = append(out, "anthropic.key is required for the anthropic provider")
		}
		if c.Anthropic.Model == "" {
			out = append(out, "anthropic.model is required")
		}
	default:
		out = append(out, "oracle.provider must be ollama or anthropic, got "+quote(c.Oracle.Provider))
	}
	if c.Oracle.TimeoutSecs <= 0 {
		out = append(out, "oracle.timeout_secs must be positive")
	}
	if c.Oracle.MaxAttempts < 1 {
		out = append(out, "oracle.max_attempts must be at least 1")
	}
	if c.Oracle.RPS < 0 {
		out = append(out, "oracle.rps must not be negative")
	}
	if c.Oracle.MaxTokens <= 0 {
		out = append(out, "oracle.max_tokens must be positive")
	}
	return out
}

func (c *Config) validateStore() []string {
	var out []string
	switch c.Store.Driver {
	case "xlsx", "sqlite":
		if c.Store.Path == "" {
			out = append(out, "store.path is required for the "+c.Store.Driver+" driver")
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			out = append(out, "store.database_url is required for the postgres driver")
		}
	default:
		out = append(out, "store.driver must be xlsx, sqlite or postgres, got "+quote(c.Store.Driver))
	}
	return out
}

func (c *Config) validateIngest() []string {
	var out []string
	in := c.Ingest
	if in.HistoryLimit <= 0 {
		out = append(out, "ingest.history_limit must be positive")
	}
	if in.MinMessageLength <= 0 {
		out = append(out, "ingest.min_message_length must be positive")
	}
	if in.LiveBuffer <= 0 {
		out = append(out, "ingest.live_buffer must be positive")
	}
	if in.HistoryDelayMs < 0 || in.ChannelDelayMs < 0 || in.JoinDelayMs < 0 || in.FloodWaitFallbackSecs < 0 {
		out = append(out, "ingest delays must not be negative")
	}
	return out
}

func quote(s string) string {
	return `"` + s + `"`
}
