package setup

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
)

func TestSnippetContainsServerEntry(t *testing.T) {
	snippet, err := Snippet("/usr/local/bin/tgbot")
	if err != nil {
		t.Fatalf("snippet: %v", err)
	}

	var doc map[string]map[string]ServerEntry
	if err := json.Unmarshal([]byte(snippet), &doc); err != nil {
		t.Fatalf("snippet is not valid JSON: %v", err)
	}
	entry, ok := doc["mcpServers"]["tgbot"]
	if !ok {
		t.Fatalf("snippet missing mcpServers.tgbot: %s", snippet)
	}
	if entry.Command != "/usr/local/bin/tgbot" {
		t.Fatalf("unexpected command: %q", entry.Command)
	}
	if len(entry.Args) != 1 || entry.Args[0] != "serve" {
		t.Fatalf("unexpected args: %v", entry.Args)
	}
	if _, ok := entry.Env["TELEGRAM_API_ID"]; !ok {
		t.Fatalf("entry must reference TELEGRAM_API_ID")
	}
}

func TestInstallCreatesConfig(t *testing.T) {
	t.Chdir(t.TempDir())

	res, err := Install("claude-code", "/opt/tgbot")
	if err != nil {
		t.Fatalf("install: %v", err)
	}
	if !res.Created {
		t.Fatalf("expected fresh config to be reported as created")
	}

	raw, err := os.ReadFile(".mcp.json")
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(raw), `"tgbot"`) {
		t.Fatalf("config missing tgbot entry: %s", raw)
	}
}

func TestInstallPreservesExistingServers(t *testing.T) {
	t.Chdir(t.TempDir())

	existing := `{"mcpServers":{"other":{"command":"other-bin","args":[]}},"unrelated":true}`
	if err := os.WriteFile(".mcp.json", []byte(existing), 0o644); err != nil {
		t.Fatalf("seed config: %v", err)
	}

	res, err := Install("claude-code", "/opt/tgbot")
	if err != nil {
		t.Fatalf("install: %v", err)
	}
	if res.Created {
		t.Fatalf("existing config must not be reported as created")
	}

	raw, err := os.ReadFile(".mcp.json")
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("merged config is not valid JSON: %v", err)
	}
	var servers map[string]ServerEntry
	if err := json.Unmarshal(doc["mcpServers"], &servers); err != nil {
		t.Fatalf("parse mcpServers: %v", err)
	}
	if _, ok := servers["other"]; !ok {
		t.Fatalf("install dropped the pre-existing server entry")
	}
	if _, ok := servers["tgbot"]; !ok {
		t.Fatalf("install did not add the tgbot entry")
	}
	if _, ok := doc["unrelated"]; !ok {
		t.Fatalf("install dropped unrelated top-level keys")
	}
}

func TestInstallRejectsUnknownClient(t *testing.T) {
	if _, err := Install("emacs", "/opt/tgbot"); err == nil {
		t.Fatalf("expected error for unknown client")
	}
}

func TestInstallRejectsCorruptConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	if err := os.WriteFile(".mcp.json", []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed config: %v", err)
	}

	if _, err := Install("claude-code", "/opt/tgbot"); err == nil {
		t.Fatalf("expected parse error for corrupt config")
	}
}
