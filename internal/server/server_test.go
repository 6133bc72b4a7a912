package server

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"
)

type stubListener struct{}

func (stubListener) Accept() (net.Conn, error) { return nil, errors.New("not used") }
func (stubListener) Close() error              { return nil }
func (stubListener) Addr() net.Addr            { return &net.TCPAddr{} }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	m := mcpserver.NewMCPServer("tgbot-test", "0.0.1")
	return New(m, nil, "127.0.0.1:0", "0.0.1")
}

func TestStartReturnsListenError(t *testing.T) {
	s := newTestServer(t)
	s.listen = func(network, address string) (net.Listener, error) {
		return nil, errors.New("listen failed")
	}

	if err := s.Start(); err == nil {
		t.Fatalf("expected start to fail on listen error")
	}
}

func TestStartUsesInjectedServe(t *testing.T) {
	s := newTestServer(t)
	s.listen = func(network, address string) (net.Listener, error) {
		return stubListener{}, nil
	}
	s.serve = func(ln net.Listener, h http.Handler) error {
		if ln == nil || h == nil {
			t.Fatalf("expected listener and handler to be provided")
		}
		return errors.New("serve stopped")
	}

	err := s.Start()
	if err == nil || err.Error() != "serve stopped" {
		t.Fatalf("expected propagated serve error, got %v", err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t).Handler())
	t.Cleanup(ts.Close)

	res, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request: %v", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	var body map[string]any
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode health body: %v", err)
	}
	if body["status"] != "ok" || body["service"] != "tgbot" {
		t.Fatalf("unexpected health payload: %v", body)
	}
}

func TestAuditEndpointDisabledWithoutLog(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t).Handler())
	t.Cleanup(ts.Close)

	res, err := http.Get(ts.URL + "/audit/sends")
	if err != nil {
		t.Fatalf("audit request: %v", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 without an audit log, got %d", res.StatusCode)
	}
}

func TestMCPEndpointIsMounted(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t).Handler())
	t.Cleanup(ts.Close)

	// A GET without a session is rejected by the transport, but the route
	// must exist; only an unmounted path returns 404.
	res, err := http.Get(ts.URL + "/mcp")
	if err != nil {
		t.Fatalf("mcp request: %v", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		t.Fatalf("/mcp is not mounted")
	}
}
