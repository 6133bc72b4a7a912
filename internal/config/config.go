// Package config loads bridge configuration from the environment.
//
// All settings use the TELEGRAM_ prefix. A .env file in the working
// directory is honored when present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Limit constants, fixed here rather than decided ad hoc at call time.
const (
	// DefaultPageSize is used when a tool call omits limit.
	DefaultPageSize = 50
	// MaxPageSize caps any requested limit to bound response size and
	// the number of remote calls a single tool call can trigger.
	MaxPageSize = 200
	// DefaultTruncateAt is the message-body truncation threshold in runes.
	DefaultTruncateAt = 4000
	// SendMaxRunes is Telegram's own hard limit for a text message. Not
	// configurable: it belongs to the platform, not to this bridge.
	SendMaxRunes = 4096
	// DefaultRequestTimeout bounds each underlying platform call.
	DefaultRequestTimeout = 30 * time.Second
)

// Config holds everything needed to run the bridge.
type Config struct {
	APIID   int
	APIHash string

	// Exactly one of SessionFile / SessionString may be set. Both refer
	// to the same authorization artifact; the bridge never mutates it.
	SessionFile   string
	SessionString string

	// AuditDB is the path of the SQLite send-attempt log. Empty disables
	// auditing.
	AuditDB string

	// Transport is the default MCP transport: stdio, sse, or
	// streamable-http.
	Transport string
	// Addr is the listen address for the HTTP transports.
	Addr string

	RequestTimeout time.Duration
	PageSize       int
	MaxPage        int
	TruncateAt     int
}

// Load reads configuration from the environment (and .env, if present).
// Credential-source validation is separate — see ValidateCredential —
// because the login command legitimately starts without one.
func Load() (*Config, error) {
	// Missing .env is fine; a malformed one is not.
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	cfg := &Config{
		SessionFile:    os.Getenv("TELEGRAM_SESSION_FILE"),
		SessionString:  os.Getenv("TELEGRAM_SESSION_STRING"),
		AuditDB:        os.Getenv("TELEGRAM_AUDIT_DB"),
		Transport:      envDefault("TELEGRAM_DEFAULT_TRANSPORT", "stdio"),
		Addr:           envDefault("TELEGRAM_HTTP_ADDR", "127.0.0.1:8080"),
		RequestTimeout: DefaultRequestTimeout,
		PageSize:       DefaultPageSize,
		MaxPage:        MaxPageSize,
		TruncateAt:     DefaultTruncateAt,
	}

	var err error
	if cfg.APIID, err = envInt("TELEGRAM_API_ID", 0); err != nil {
		return nil, err
	}
	cfg.APIHash = os.Getenv("TELEGRAM_API_HASH")
	if cfg.APIID == 0 || cfg.APIHash == "" {
		return nil, fmt.Errorf("TELEGRAM_API_ID and TELEGRAM_API_HASH are required")
	}

	if secs, err := envInt("TELEGRAM_REQUEST_TIMEOUT", 0); err != nil {
		return nil, err
	} else if secs > 0 {
		cfg.RequestTimeout = time.Duration(secs) * time.Second
	}
	if cfg.PageSize, err = envInt("TELEGRAM_PAGE_SIZE", DefaultPageSize); err != nil {
		return nil, err
	}
	if cfg.MaxPage, err = envInt("TELEGRAM_MAX_PAGE_SIZE", MaxPageSize); err != nil {
		return nil, err
	}
	if cfg.TruncateAt, err = envInt("TELEGRAM_TRUNCATE_AT", DefaultTruncateAt); err != nil {
		return nil, err
	}
	if cfg.PageSize < 1 || cfg.MaxPage < cfg.PageSize || cfg.TruncateAt < 1 {
		return nil, fmt.Errorf("invalid limit configuration: page=%d max=%d truncate=%d",
			cfg.PageSize, cfg.MaxPage, cfg.TruncateAt)
	}

	switch cfg.Transport {
	case "stdio", "sse", "streamable-http":
	default:
		return nil, fmt.Errorf("TELEGRAM_DEFAULT_TRANSPORT must be stdio, sse, or streamable-http, got %q", cfg.Transport)
	}

	return cfg, nil
}

// ValidateCredential enforces the exactly-one-source rule: a session file
// path or a session string, never both, never neither.
func (c *Config) ValidateCredential() error {
	switch {
	case c.SessionFile != "" && c.SessionString != "":
		return fmt.Errorf("both TELEGRAM_SESSION_FILE and TELEGRAM_SESSION_STRING are set; configure exactly one")
	case c.SessionFile == "" && c.SessionString == "":
		return fmt.Errorf("no credential source: set TELEGRAM_SESSION_FILE or TELEGRAM_SESSION_STRING (run `tgbot login` first)")
	}
	return nil
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: expected integer, got %q", key, v)
	}
	return n, nil
}
