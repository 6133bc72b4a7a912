package telegram

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/gotd/td/session"

	"github.com/RealHotChiliPepe/tgbot/internal/config"
	"github.com/RealHotChiliPepe/tgbot/internal/toolerr"
)

// sessionStorage builds the gotd session storage for the configured
// credential source. The bridge treats the credential as read-only; for
// string-backed sessions any key rotation the client performs stays in
// memory and is discarded at shutdown.
func sessionStorage(cfg *config.Config) (session.Storage, error) {
	if cfg.SessionString != "" {
		return stringStorage(cfg.SessionString)
	}

	if _, err := os.Stat(cfg.SessionFile); err != nil {
		return nil, toolerr.Sessionf(toolerr.DetailCredentialMissing,
			"session file %s not found (run `tgbot login` first)", cfg.SessionFile)
	}
	return &session.FileStorage{Path: cfg.SessionFile}, nil
}

// stringStorage loads an in-memory storage from a session string. Two
// formats are accepted, tried in order:
//
//  1. a Telethon StringSession, for interop with sessions exported from
//     Telethon-based tools;
//  2. base64-encoded gotd session JSON, as emitted by `tgbot login --string`.
func stringStorage(s string) (session.Storage, error) {
	storage := new(session.StorageMemory)

	if data, err := session.TelethonSession(s); err == nil {
		loader := session.Loader{Storage: storage}
		if err := loader.Save(context.Background(), data); err != nil {
			return nil, fmt.Errorf("import telethon session: %w", err)
		}
		return storage, nil
	}

	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, toolerr.Sessionf(toolerr.DetailCredentialMissing,
			"TELEGRAM_SESSION_STRING is neither a Telethon string session nor base64 session data")
	}
	if err := storage.StoreSession(context.Background(), raw); err != nil {
		return nil, fmt.Errorf("load session string: %w", err)
	}
	return storage, nil
}
