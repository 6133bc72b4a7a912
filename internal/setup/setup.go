// Package setup registers the bridge with MCP clients.
//
// Every supported client reads a JSON config with an mcpServers map; the
// installer merges a "tgbot" entry into it without touching anything else
// in the file.
package setup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Client is a supported MCP client.
type Client struct {
	Name        string
	Description string
	ConfigPath  string // resolved at runtime
}

// Result holds the outcome of an installation.
type Result struct {
	Client     string
	ConfigPath string
	Created    bool // true when the config file did not exist before
}

// ServerEntry is the mcpServers entry written for the bridge.
type ServerEntry struct {
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env,omitempty"`
}

// SupportedClients returns the clients the installer knows config paths for.
func SupportedClients() []Client {
	return []Client{
		{
			Name:        "claude-code",
			Description: "Claude Code — project or user scoped .mcp.json",
			ConfigPath:  filepath.Join(".", ".mcp.json"),
		},
		{
			Name:        "claude-desktop",
			Description: "Claude Desktop — claude_desktop_config.json",
			ConfigPath:  claudeDesktopConfigPath(),
		},
	}
}

// Entry builds the registration for the given binary path. Credentials are
// referenced, never embedded: the entry tells the client which variables
// the server reads, with placeholder values.
func Entry(binPath string) ServerEntry {
	return ServerEntry{
		Command: binPath,
		Args:    []string{"serve"},
		Env: map[string]string{
			"TELEGRAM_API_ID":       "<your api id>",
			"TELEGRAM_API_HASH":     "<your api hash>",
			"TELEGRAM_SESSION_FILE": "<path to tgbot.session>",
		},
	}
}

// Snippet renders the standalone mcpServers JSON block for manual setup.
func Snippet(binPath string) (string, error) {
	doc := map[string]any{
		"mcpServers": map[string]any{
			"tgbot": Entry(binPath),
		},
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("render snippet: %w", err)
	}
	return string(out), nil
}

// Install merges the tgbot entry into the named client's config file.
func Install(clientName, binPath string) (*Result, error) {
	var client *Client
	for _, c := range SupportedClients() {
		if c.Name == clientName {
			client = &c
			break
		}
	}
	if client == nil {
		return nil, fmt.Errorf("unknown client: %q (supported: claude-code, claude-desktop)", clientName)
	}

	cfg := map[string]json.RawMessage{}
	created := true
	if raw, err := os.ReadFile(client.ConfigPath); err == nil {
		created = false
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", client.ConfigPath, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read %s: %w", client.ConfigPath, err)
	}

	servers := map[string]json.RawMessage{}
	if raw, ok := cfg["mcpServers"]; ok {
		if err := json.Unmarshal(raw, &servers); err != nil {
			return nil, fmt.Errorf("parse mcpServers in %s: %w", client.ConfigPath, err)
		}
	}

	entry, err := json.Marshal(Entry(binPath))
	if err != nil {
		return nil, fmt.Errorf("encode server entry: %w", err)
	}
	servers["tgbot"] = entry

	if cfg["mcpServers"], err = json.Marshal(servers); err != nil {
		return nil, fmt.Errorf("encode mcpServers: %w", err)
	}
	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", client.ConfigPath, err)
	}

	if dir := filepath.Dir(client.ConfigPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create config dir %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(client.ConfigPath, append(out, '\n'), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", client.ConfigPath, err)
	}

	return &Result{
		Client:     clientName,
		ConfigPath: client.ConfigPath,
		Created:    created,
	}, nil
}

// ─── Platform paths ──────────────────────────────────────────────────────────

func claudeDesktopConfigPath() string {
	home, _ := os.UserHomeDir()

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Claude", "claude_desktop_config.json")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "Claude", "claude_desktop_config.json")
		}
		return filepath.Join(home, "AppData", "Roaming", "Claude", "claude_desktop_config.json")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "Claude", "claude_desktop_config.json")
		}
		return filepath.Join(home, ".config", "Claude", "claude_desktop_config.json")
	}
}
