package config

import (
	"strings"
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_API_ID", "12345")
	t.Setenv("TELEGRAM_API_HASH", "abcdef")
	t.Setenv("TELEGRAM_SESSION_FILE", "")
	t.Setenv("TELEGRAM_SESSION_STRING", "")
	t.Setenv("TELEGRAM_AUDIT_DB", "")
	t.Setenv("TELEGRAM_DEFAULT_TRANSPORT", "")
	t.Setenv("TELEGRAM_REQUEST_TIMEOUT", "")
	t.Setenv("TELEGRAM_PAGE_SIZE", "")
	t.Setenv("TELEGRAM_MAX_PAGE_SIZE", "")
	t.Setenv("TELEGRAM_TRUNCATE_AT", "")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIID != 12345 || cfg.APIHash != "abcdef" {
		t.Fatalf("credentials not loaded: %+v", cfg)
	}
	if cfg.Transport != "stdio" {
		t.Fatalf("expected stdio default, got %q", cfg.Transport)
	}
	if cfg.PageSize != DefaultPageSize || cfg.MaxPage != MaxPageSize || cfg.TruncateAt != DefaultTruncateAt {
		t.Fatalf("unexpected limit defaults: %+v", cfg)
	}
	if cfg.RequestTimeout != DefaultRequestTimeout {
		t.Fatalf("expected %v timeout, got %v", DefaultRequestTimeout, cfg.RequestTimeout)
	}
}

func TestLoadRequiresAPICredentials(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("TELEGRAM_API_ID", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error without TELEGRAM_API_ID")
	}

	setBaseEnv(t)
	t.Setenv("TELEGRAM_API_HASH", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without TELEGRAM_API_HASH")
	}
}

func TestLoadRejectsUnknownTransport(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("TELEGRAM_DEFAULT_TRANSPORT", "websocket")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "TELEGRAM_DEFAULT_TRANSPORT") {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestLoadRejectsNonIntegerEnv(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("TELEGRAM_PAGE_SIZE", "fifty")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for non-integer page size")
	}
}

func TestLoadRejectsInconsistentLimits(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("TELEGRAM_PAGE_SIZE", "100")
	t.Setenv("TELEGRAM_MAX_PAGE_SIZE", "10")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when max < page size")
	}
}

func TestLoadHonorsOverrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("TELEGRAM_REQUEST_TIMEOUT", "5")
	t.Setenv("TELEGRAM_DEFAULT_TRANSPORT", "sse")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Fatalf("expected 5s timeout, got %v", cfg.RequestTimeout)
	}
	if cfg.Transport != "sse" {
		t.Fatalf("expected sse, got %q", cfg.Transport)
	}
}

func TestValidateCredentialExactlyOne(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		str     string
		wantErr bool
	}{
		{"file only", "tg.session", "", false},
		{"string only", "", "AAAA", false},
		{"both", "tg.session", "AAAA", true},
		{"neither", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{SessionFile: tt.file, SessionString: tt.str}
			err := cfg.ValidateCredential()
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateCredential() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
