// Package bridge is the core of the tool surface: it resolves chat
// references, translates tool arguments into platform queries, and shapes
// platform objects into the stable JSON records the tools return.
//
// The bridge holds no per-chat state. Every call resolves its reference
// fresh, runs against the shared session, and returns a self-contained
// result.
package bridge

import (
	"context"
	"log"
	"time"

	"github.com/RealHotChiliPepe/tgbot/internal/config"
	"github.com/RealHotChiliPepe/tgbot/internal/telegram"
	"github.com/RealHotChiliPepe/tgbot/internal/toolerr"
)

// Platform is the narrow surface the bridge needs from the Telegram layer.
// *telegram.Client implements it; tests substitute a fake.
type Platform interface {
	Dialogs(ctx context.Context, off telegram.DialogOffset, limit int) (*telegram.DialogPage, error)
	ResolveUsername(ctx context.Context, username string) (telegram.Peer, error)
	ResolveID(ctx context.Context, id int64) (telegram.Peer, error)
	ResolveInvite(ctx context.Context, hash string) (telegram.Peer, error)
	ChatInfo(ctx context.Context, peer telegram.Peer) (*telegram.ChatInfo, error)
	History(ctx context.Context, peer telegram.Peer, offsetID, limit int) (*telegram.HistoryPage, error)
	Search(ctx context.Context, peer telegram.Peer, query string, offsetID, limit int) (*telegram.HistoryPage, error)
	Send(ctx context.Context, peer telegram.Peer, text string) (*telegram.Message, error)
}

// SendAttempt is the audit record for one send, successful or not.
type SendAttempt struct {
	ChatRef   string
	PeerID    int64
	TextLen   int
	Status    string // "ok" or "error"
	ErrorKind string // empty on success
	MessageID int    // 0 on failure
}

// Auditor records send attempts. Implementations must not fail the send.
type Auditor interface {
	RecordSend(ctx context.Context, a SendAttempt) error
}

// Bridge wires the five tool operations to the platform.
type Bridge struct {
	platform Platform
	cfg      *config.Config
	audit    Auditor // nil when auditing is disabled
}

func New(p Platform, cfg *config.Config, audit Auditor) *Bridge {
	return &Bridge{platform: p, cfg: cfg, audit: audit}
}

// opCtx bounds one operation with the configured request timeout. The
// parent's cancellation is deliberately detached: a transport disconnect
// must not abandon a platform request that may already have taken effect.
func (b *Bridge) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), b.cfg.RequestTimeout)
}

// pageLimit normalizes a requested page size: zero means the default,
// anything above the cap is clamped, negatives are rejected.
func (b *Bridge) pageLimit(limit int) (int, error) {
	switch {
	case limit < 0:
		return 0, toolerr.Validationf("limit must be a positive integer, got %d", limit)
	case limit == 0:
		return b.cfg.PageSize, nil
	case limit > b.cfg.MaxPage:
		return b.cfg.MaxPage, nil
	}
	return limit, nil
}

// auditTimeout bounds one audit write, independently of the request
// timeout: a send whose operation context just expired is exactly the
// attempt that must still reach the log.
const auditTimeout = 5 * time.Second

func (b *Bridge) recordSend(ctx context.Context, a SendAttempt) {
	if b.audit == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()
	if err := b.audit.RecordSend(ctx, a); err != nil {
		log.Printf("[tgbot] audit: record send attempt: %v", err)
	}
}
