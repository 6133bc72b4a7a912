package bridge

import (
	"context"
	"slices"
)

// FetchRecentArgs are the telegram_fetch_recent_messages arguments.
type FetchRecentArgs struct {
	ChatRef string
	Limit   int
	Cursor  string
}

// FetchRecent returns a page of a chat's history. The platform serves
// history newest-first; the page is flipped so callers always read
// oldest-first. The cursor is the oldest raw message ID of the page,
// which is exactly the platform's offset for the next (older) slice.
// Pagination tracks the raw page size, so deleted messages within a page
// cannot end paging early.
func (b *Bridge) FetchRecent(ctx context.Context, args FetchRecentArgs) (*MessagePage, error) {
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
	hist, err := b.platform.History(ctx, peer, offsetID, limit)
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
