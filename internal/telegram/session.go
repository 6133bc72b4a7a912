package telegram

import (
	"context"
	"sync"
	"time"

	tgclient "github.com/gotd/td/telegram"
	"github.com/gotd/td/tg"

	"github.com/RealHotChiliPepe/tgbot/internal/config"
	"github.com/RealHotChiliPepe/tgbot/internal/toolerr"
)

// State is the session lifecycle state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Conn is the live authenticated connection handle. Query translators
// borrow it per call; the Holder owns it.
type Conn struct {
	API  *tg.Client
	Self *tg.User

	stop context.CancelFunc
	done chan error
}

// alive reports whether the underlying client loop is still running.
func (c *Conn) alive() bool {
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

func (c *Conn) close() {
	if c.stop != nil {
		c.stop()
	}
	select {
	case <-c.done:
	case <-time.After(5 * time.Second):
	}
}

// Holder owns the process-wide session: one credential, at most one live
// connection. EnsureReady is the single initialization gate; it connects
// lazily on first use, verifies the session is actually authorized (not
// merely connected), and caches the Ready handle.
//
// If the connection drops, the next EnsureReady attempts exactly one
// reconnect. It never retries indefinitely: a failed reconnect flips the
// holder to Failed so a revoked session is not masked as a transient
// outage, and every later call short-circuits without network I/O.
type Holder struct {
	cfg *config.Config

	mu      sync.Mutex
	state   State
	conn    *Conn
	failure *toolerr.Error

	// connect is a seam for tests.
	connect func(ctx context.Context, cfg *config.Config) (*Conn, error)
}

func NewHolder(cfg *config.Config) *Holder {
	return &Holder{cfg: cfg, connect: dial}
}

// State returns the current lifecycle state.
func (h *Holder) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// EnsureReady returns the live connection handle, connecting or
// reconnecting as needed.
func (h *Holder) EnsureReady(ctx context.Context) (*Conn, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch h.state {
	case StateFailed:
		return nil, h.failure
	case StateReady:
		if h.conn.alive() {
			return h.conn, nil
		}
		// The connection dropped underneath us. One reconnect attempt.
		h.conn.close()
		h.conn = nil
		h.state = StateDisconnected
	}

	return h.connectLocked(ctx)
}

func (h *Holder) connectLocked(ctx context.Context) (*Conn, error) {
	h.state = StateConnecting
	conn, err := h.connect(ctx, h.cfg)
	if err != nil {
		e, ok := toolerr.As(err)
		if !ok || e.Kind != toolerr.Session {
			e = toolerr.Sessionf(toolerr.DetailConnectionLost, "connect to Telegram: %v", err)
		}
		h.state = StateFailed
		h.failure = e
		return nil, e
	}
	h.conn = conn
	h.state = StateReady
	return conn, nil
}

// Close tears the connection down. The holder is not reusable afterwards.
func (h *Holder) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conn != nil {
		h.conn.close()
		h.conn = nil
	}
	if h.state != StateFailed {
		h.state = StateDisconnected
	}
}

// dial opens the MTProto connection and verifies authorization with a
// lightweight self lookup. The client runs in its own goroutine until the
// Conn is closed; updates are disabled because the bridge only queries.
func dial(ctx context.Context, cfg *config.Config) (*Conn, error) {
	storage, err := sessionStorage(cfg)
	if err != nil {
		return nil, err
	}

	client := tgclient.NewClient(cfg.APIID, cfg.APIHash, tgclient.Options{
		SessionStorage: storage,
		NoUpdates:      true,
	})

	runCtx, stop := context.WithCancel(context.Background())
	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- client.Run(runCtx, func(cb context.Context) error {
			close(ready)
			<-cb.Done()
			return cb.Err()
		})
		// Closed so that alive() and close() both observe the exit even
		// after the buffered error has been drained.
		close(done)
	}()

	select {
	case <-ready:
	case err := <-done:
		stop()
		return nil, toolerr.Sessionf(toolerr.DetailConnectionLost, "connect: %v", err)
	case <-ctx.Done():
		stop()
		return nil, ctx.Err()
	}

	fail := func(err error) (*Conn, error) {
		stop()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
		}
		return nil, err
	}

	status, err := client.Auth().Status(ctx)
	if err != nil {
		return fail(classify(err))
	}
	if !status.Authorized {
		return fail(toolerr.Sessionf(toolerr.DetailNotAuthorized,
			"the Telegram session is not authorized; run `tgbot login` to sign in"))
	}

	self, err := client.Self(ctx)
	if err != nil {
		return fail(classify(err))
	}

	return &Conn{API: client.API(), Self: self, stop: stop, done: done}, nil
}
