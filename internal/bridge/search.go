package bridge

import (
	"context"
	"slices"
	"strings"

	"github.com/RealHotChiliPepe/tgbot/internal/toolerr"
)

// SearchArgs are the telegram_search_messages arguments.
type SearchArgs struct {
	ChatRef string
	Query   string
	Limit   int
	Cursor  string
}

// Search runs the platform's server-side full-text search within one chat.
// Matching is the platform's own (tokenized, not regex); zero matches is a
// normal empty page, not an error.
func (b *Bridge) Search(ctx context.Context, args SearchArgs) (*MessagePage, error) {
	query := strings.TrimSpace(args.Query)
	if query == "" {
		return nil, toolerr.Validationf("query must not be empty")
	}
	limit, err := b.pageLimit(args.Limit)
	if err != nil {
		return nil, err
	}
	var offsetID int
	if args.Cursor != "" {
		var c messageCursor
		if err := decodeCursor(args.Cursor, &c); err != nil {
			return nil, err
		}
		offsetID = c.OffsetID
	}

	ctx, cancel := b.opCtx(ctx)
	defer cancel()

	peer, err := b.resolve(ctx, args.ChatRef)
	if err != nil {
		return nil, err
	}
	hist, err := b.platform.Search(ctx, peer, query, offsetID, limit)
	if err != nil {
		return nil, err
	}

	msgs := hist.Messages
	slices.Reverse(msgs)
	page := &MessagePage{Items: shapeMessages(msgs, b.cfg.TruncateAt)}
	if hist.Fetched == limit && limit > 0 && hist.OldestID > 0 {
		c := encodeCursor(messageCursor{OffsetID: hist.OldestID})
		page.NextCursor = &c
	}
	return page, nil
}
