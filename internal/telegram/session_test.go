package telegram

import (
	"context"
	"errors"
	"testing"

	"github.com/RealHotChiliPepe/tgbot/internal/config"
	"github.com/RealHotChiliPepe/tgbot/internal/toolerr"
)

func liveConn(t *testing.T) (*Conn, chan error) {
	t.Helper()
	done := make(chan error, 1)
	return &Conn{done: done}, done
}

func dropConn(done chan error) {
	done <- errors.New("connection reset")
	close(done)
}

func TestEnsureReadyCachesLiveConnection(t *testing.T) {
	conn, _ := liveConn(t)
	connects := 0

	h := NewHolder(&config.Config{})
	h.connect = func(ctx context.Context, cfg *config.Config) (*Conn, error) {
		connects++
		return conn, nil
	}

	for range 3 {
		got, err := h.EnsureReady(context.Background())
		if err != nil {
			t.Fatalf("ensure ready: %v", err)
		}
		if got != conn {
			t.Fatalf("expected cached connection handle")
		}
	}
	if connects != 1 {
		t.Fatalf("expected a single connect, got %d", connects)
	}
	if h.State() != StateReady {
		t.Fatalf("expected ready state, got %s", h.State())
	}
}

func TestEnsureReadyFailsFastAfterConnectFailure(t *testing.T) {
	connects := 0
	h := NewHolder(&config.Config{})
	h.connect = func(ctx context.Context, cfg *config.Config) (*Conn, error) {
		connects++
		return nil, toolerr.Sessionf(toolerr.DetailNotAuthorized, "session revoked")
	}

	_, first := h.EnsureReady(context.Background())
	if !toolerr.IsKind(first, toolerr.Session) {
		t.Fatalf("expected SessionError, got %v", first)
	}

	_, second := h.EnsureReady(context.Background())
	if !errors.Is(second, first) && second.Error() != first.Error() {
		t.Fatalf("expected the sticky failure, got %v", second)
	}
	if connects != 1 {
		t.Fatalf("failed holder must not reconnect, got %d connects", connects)
	}
	if h.State() != StateFailed {
		t.Fatalf("expected failed state, got %s", h.State())
	}
}

func TestEnsureReadyReconnectsOnceAfterDrop(t *testing.T) {
	first, firstDone := liveConn(t)
	second, _ := liveConn(t)
	conns := []*Conn{first, second}
	connects := 0

	h := NewHolder(&config.Config{})
	h.connect = func(ctx context.Context, cfg *config.Config) (*Conn, error) {
		c := conns[connects]
		connects++
		return c, nil
	}

	if _, err := h.EnsureReady(context.Background()); err != nil {
		t.Fatalf("first ensure: %v", err)
	}

	dropConn(firstDone)

	got, err := h.EnsureReady(context.Background())
	if err != nil {
		t.Fatalf("ensure after drop: %v", err)
	}
	if got != second {
		t.Fatalf("expected the reconnected handle")
	}
	if connects != 2 {
		t.Fatalf("expected exactly one reconnect, got %d connects", connects)
	}
}

func TestEnsureReadyWrapsPlainConnectErrors(t *testing.T) {
	h := NewHolder(&config.Config{})
	h.connect = func(ctx context.Context, cfg *config.Config) (*Conn, error) {
		return nil, errors.New("dial tcp: network unreachable")
	}

	_, err := h.EnsureReady(context.Background())
	e, ok := toolerr.As(err)
	if !ok || e.Kind != toolerr.Session || e.Detail != toolerr.DetailConnectionLost {
		t.Fatalf("expected SessionError(ConnectionLost), got %v", err)
	}
}

func TestCloseLeavesFailedStateSticky(t *testing.T) {
	h := NewHolder(&config.Config{})
	h.connect = func(ctx context.Context, cfg *config.Config) (*Conn, error) {
		return nil, toolerr.Sessionf(toolerr.DetailNotAuthorized, "revoked")
	}

	_, _ = h.EnsureReady(context.Background())
	h.Close()

	if h.State() != StateFailed {
		t.Fatalf("close must not mask a failed session, got %s", h.State())
	}
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		StateDisconnected: "disconnected",
		StateConnecting:   "connecting",
		StateReady:        "ready",
		StateFailed:       "failed",
	}
	for state, want := range tests {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}
