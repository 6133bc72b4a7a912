package bridge

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/RealHotChiliPepe/tgbot/internal/config"
	"github.com/RealHotChiliPepe/tgbot/internal/toolerr"
)

// Send delivers one text message. Text validation happens before any
// network traffic; a rejected call provably sent nothing. Delivery itself
// is not idempotent: an ambiguous failure (timeout mid-flight) is reported
// as-is and never retried, because a retry could double-send.
func (b *Bridge) Send(ctx context.Context, chatRef, text string) (*MessageRecord, error) {
	if strings.TrimSpace(text) == "" {
		return nil, toolerr.Validationf("text must not be empty")
	}
	if n := utf8.RuneCountInString(text); n > config.SendMaxRunes {
		return nil, toolerr.Validationf("text is %d characters, the limit is %d", n, config.SendMaxRunes)
	}

	ctx, cancel := b.opCtx(ctx)
	defer cancel()

	peer, err := b.resolve(ctx, chatRef)
	if err != nil {
		return nil, err
	}

	msg, err := b.platform.Send(ctx, peer, text)
	attempt := SendAttempt{
		ChatRef: chatRef,
		PeerID:  peer.ID,
		TextLen: utf8.RuneCountInString(text),
	}
	if err != nil {
		attempt.Status = "error"
		if e, ok := toolerr.As(err); ok {
			attempt.ErrorKind = string(e.Kind)
		}
		b.recordSend(ctx, attempt)
		return nil, err
	}
	attempt.Status = "ok"
	attempt.MessageID = msg.ID
	b.recordSend(ctx, attempt)

	rec := shapeMessage(*msg, b.cfg.TruncateAt)
	return &rec, nil
}
