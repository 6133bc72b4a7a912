package bridge

import (
	"context"
	"strings"

	"github.com/RealHotChiliPepe/tgbot/internal/telegram"
	"github.com/RealHotChiliPepe/tgbot/internal/toolerr"
)

const (
	// dialogFetchSize is the platform page size used while filtering.
	dialogFetchSize = 100
	// maxDialogScans bounds how many platform pages one listing call may
	// consume, so a narrow filter over a huge account still terminates.
	maxDialogScans = 20
)

// ListDialogsArgs are the telegram_list_dialogs arguments.
type ListDialogsArgs struct {
	Kind       string
	NameFilter string
	Limit      int
	Cursor     string
}

// ListDialogs pages through the account's dialog list in the platform's
// most-recently-active-first order. Kind and name filtering happen
// client-side; the platform offers neither. The cursor always advances
// past every scanned dialog, matched or not, so pages never overlap.
func (b *Bridge) ListDialogs(ctx context.Context, args ListDialogsArgs) (*DialogPage, error) {
	switch telegram.ChatKind(args.Kind) {
	case "", telegram.KindUser, telegram.KindGroup, telegram.KindChannel:
	default:
		return nil, toolerr.Validationf("kind must be user, group, or channel, got %q", args.Kind)
	}
	filter := strings.ToLower(strings.TrimSpace(args.NameFilter))

	limit, err := b.pageLimit(args.Limit)
	if err != nil {
		return nil, err
	}

	var off telegram.DialogOffset
	if args.Cursor != "" {
		var c dialogCursor
		if err := decodeCursor(args.Cursor, &c); err != nil {
			return nil, err
		}
		off = telegram.DialogOffset{Date: c.Date, ID: c.ID}
	}

	ctx, cancel := b.opCtx(ctx)
	defer cancel()

	page := &DialogPage{Items: []DialogSummary{}}
	var more bool
scan:
	for scans := 1; ; scans++ {
		pp, err := b.platform.Dialogs(ctx, off, dialogFetchSize)
		if err != nil {
			return nil, err
		}
		if len(pp.Dialogs) == 0 {
			break
		}
		for i, d := range pp.Dialogs {
			// A dialog whose top message was absent from the response
			// has no usable offset; keep the previous one so a cursor
			// minted here cannot restart from the top.
			if d.OffsetDate != 0 {
				off = telegram.DialogOffset{Date: d.OffsetDate, ID: d.TopMessageID}
			}
			if !dialogMatches(d, args.Kind, filter) {
				continue
			}
			page.Items = append(page.Items, shapeDialog(d, b.cfg.TruncateAt))
			if len(page.Items) == limit {
				more = i < len(pp.Dialogs)-1 || pp.HasMore
				break scan
			}
		}
		if !pp.HasMore {
			break
		}
		if scans == maxDialogScans {
			// The scan budget ran out with platform pages left. Hand back
			// the resume point so matches beyond the scanned window stay
			// reachable on the next call.
			more = true
			break
		}
	}

	if more {
		c := encodeCursor(dialogCursor{Date: off.Date, ID: off.ID})
		page.NextCursor = &c
	}
	return page, nil
}

func dialogMatches(d telegram.Dialog, kind, filter string) bool {
	if kind != "" && string(d.Peer.Kind) != kind {
		return false
	}
	if filter == "" {
		return true
	}
	return strings.Contains(strings.ToLower(d.Peer.Title), filter) ||
		strings.Contains(strings.ToLower(d.Peer.Username), filter)
}
