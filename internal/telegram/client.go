package telegram

import (
	"context"
	"strings"
	"time"

	"github.com/gotd/td/telegram/message"
	"github.com/gotd/td/telegram/message/unpack"
	"github.com/gotd/td/tg"

	"github.com/RealHotChiliPepe/tgbot/internal/toolerr"
)

const (
	// dialogFetchSize is the page size used against the platform; the
	// dialogs query caps out at 100 entries per call.
	dialogFetchSize = 100
	// resolveScanPages bounds the dialog scan used for bare numeric IDs.
	resolveScanPages = 10
)

// Client executes high-level queries over the held session. Every method
// borrows the live connection via the Holder; nothing is cached between
// calls.
type Client struct {
	holder *Holder
}

func NewClient(h *Holder) *Client {
	return &Client{holder: h}
}

// Dialogs fetches one platform page of the dialog list in native order
// (most recently active first).
func (c *Client) Dialogs(ctx context.Context, off DialogOffset, limit int) (*DialogPage, error) {
	conn, err := c.holder.EnsureReady(ctx)
	if err != nil {
		return nil, err
	}

	res, err := conn.API.MessagesGetDialogs(ctx, &tg.MessagesGetDialogsRequest{
		OffsetDate: off.Date,
		OffsetID:   off.ID,
		OffsetPeer: &tg.InputPeerEmpty{},
		Limit:      limit,
	})
	if err != nil {
		return nil, classify(err)
	}

	var (
		dialogs  []tg.DialogClass
		messages []tg.MessageClass
		chats    []tg.ChatClass
		users    []tg.UserClass
		hasMore  bool
	)
	switch d := res.(type) {
	case *tg.MessagesDialogs:
		dialogs, messages, chats, users = d.Dialogs, d.Messages, d.Chats, d.Users
	case *tg.MessagesDialogsSlice:
		dialogs, messages, chats, users = d.Dialogs, d.Messages, d.Chats, d.Users
		hasMore = len(dialogs) > 0 && len(dialogs) < d.Count
	case *tg.MessagesDialogsNotModified:
		return &DialogPage{}, nil
	}

	ent := newEntities(users, chats)
	top := indexTopMessages(messages)

	page := &DialogPage{HasMore: hasMore && len(dialogs) == limit}
	for _, dc := range dialogs {
		d, ok := dc.(*tg.Dialog)
		if !ok {
			continue // dialog folders are not chats
		}
		peer, ok := ent.peerFor(d.Peer)
		if !ok {
			continue
		}

		entry := Dialog{
			Peer:         peer,
			UnreadCount:  d.UnreadCount,
			Pinned:       d.Pinned,
			TopMessageID: d.TopMessage,
		}
		if id, ok := peerBareID(d.Peer); ok {
			if m, ok := top[topKey{peer: id, msg: d.TopMessage}]; ok {
				entry.LastMessage = m.Message
				entry.LastDate = time.Unix(int64(m.Date), 0).UTC()
				entry.OffsetDate = m.Date
			}
		}
		page.Dialogs = append(page.Dialogs, entry)
	}
	return page, nil
}

type topKey struct {
	peer int64
	msg  int
}

func indexTopMessages(messages []tg.MessageClass) map[topKey]*tg.Message {
	top := make(map[topKey]*tg.Message, len(messages))
	for _, mc := range messages {
		m, ok := mc.(*tg.Message)
		if !ok {
			continue
		}
		if id, ok := peerBareID(m.PeerID); ok {
			top[topKey{peer: id, msg: m.ID}] = m
		}
	}
	return top
}

// ResolveUsername resolves a public @username to a peer.
func (c *Client) ResolveUsername(ctx context.Context, username string) (Peer, error) {
	conn, err := c.holder.EnsureReady(ctx)
	if err != nil {
		return Peer{}, err
	}

	res, err := conn.API.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{
		Username: username,
	})
	if err != nil {
		return Peer{}, classify(err)
	}

	ent := newEntities(res.Users, res.Chats)
	peer, ok := ent.peerFor(res.Peer)
	if !ok {
		return Peer{}, toolerr.NotFoundf("no entity found for username %q", username)
	}
	return peer, nil
}

// ResolveID resolves a bare numeric chat ID by scanning the dialog list.
// MTProto cannot address an entity by ID alone (it needs the session's
// access hash), and this bridge deliberately keeps no resolution cache,
// so the scan happens per call, bounded to resolveScanPages pages.
func (c *Client) ResolveID(ctx context.Context, id int64) (Peer, error) {
	want := normalizeChatID(id)

	var off DialogOffset
	for range resolveScanPages {
		page, err := c.Dialogs(ctx, off, dialogFetchSize)
		if err != nil {
			return Peer{}, err
		}
		for _, d := range page.Dialogs {
			if d.Peer.ID == want {
				return d.Peer, nil
			}
			// A dialog whose top message was absent from the response
			// has no usable offset; a zero date would restart the scan
			// from the top.
			if d.OffsetDate != 0 {
				off = DialogOffset{Date: d.OffsetDate, ID: d.TopMessageID}
			}
		}
		if !page.HasMore {
			break
		}
	}
	return Peer{}, toolerr.NotFoundf("no dialog with id %d", id)
}

// normalizeChatID accepts Bot-API style identifiers: -100xxxxxxxxxx for
// channels and plain negatives for basic groups map back to bare IDs.
func normalizeChatID(id int64) int64 {
	const channelPrefix = int64(1000000000000)
	if id < -channelPrefix {
		return -id - channelPrefix
	}
	if id < 0 {
		return -id
	}
	return id
}

// ResolveInvite resolves a t.me invite hash. The session must already be
// a member: joining a chat is a side effect this bridge refuses to have.
func (c *Client) ResolveInvite(ctx context.Context, hash string) (Peer, error) {
	conn, err := c.holder.EnsureReady(ctx)
	if err != nil {
		return Peer{}, err
	}

	res, err := conn.API.MessagesCheckChatInvite(ctx, hash)
	if err != nil {
		return Peer{}, classify(err)
	}

	switch invite := res.(type) {
	case *tg.ChatInviteAlready:
		if peer, ok := chatPeer(invite.Chat); ok {
			return peer, nil
		}
		return Peer{}, toolerr.Permissionf("invite resolves to a chat this session cannot address")
	case *tg.ChatInvitePeek:
		if peer, ok := chatPeer(invite.Chat); ok {
			return peer, nil
		}
		return Peer{}, toolerr.Permissionf("invite resolves to a chat this session cannot address")
	case *tg.ChatInvite:
		return Peer{}, toolerr.Permissionf("this session is not a member of the invited chat %q", invite.Title)
	}
	return Peer{}, toolerr.NotFoundf("invite hash did not resolve")
}

// ChatInfo fetches full metadata for a resolved peer via the per-kind
// full-entity query.
func (c *Client) ChatInfo(ctx context.Context, peer Peer) (*ChatInfo, error) {
	conn, err := c.holder.EnsureReady(ctx)
	if err != nil {
		return nil, err
	}

	info := &ChatInfo{Peer: peer}
	switch {
	case peer.Kind == KindUser:
		full, err := conn.API.UsersGetFullUser(ctx, &tg.InputUser{
			UserID:     peer.ID,
			AccessHash: peer.AccessHash,
		})
		if err != nil {
			return nil, classify(err)
		}
		info.Description, _ = full.FullUser.GetAbout()
		for _, uc := range full.Users {
			if u, ok := uc.(*tg.User); ok && u.ID == peer.ID {
				info.Verified = u.Verified
			}
		}
	case peer.AccessHash == 0:
		// Basic group.
		full, err := conn.API.MessagesGetFullChat(ctx, peer.ID)
		if err != nil {
			return nil, classify(err)
		}
		if fc, ok := full.FullChat.(*tg.ChatFull); ok {
			info.Description = fc.About
		}
		for _, cc := range full.Chats {
			if chat, ok := cc.(*tg.Chat); ok && chat.ID == peer.ID {
				info.Members = chat.ParticipantsCount
			}
		}
	default:
		// Megagroup or broadcast channel.
		full, err := conn.API.ChannelsGetFullChannel(ctx, &tg.InputChannel{
			ChannelID:  peer.ID,
			AccessHash: peer.AccessHash,
		})
		if err != nil {
			return nil, classify(err)
		}
		if cf, ok := full.FullChat.(*tg.ChannelFull); ok {
			info.Description = cf.About
			info.Members = cf.ParticipantsCount
		}
		for _, cc := range full.Chats {
			if ch, ok := cc.(*tg.Channel); ok && ch.ID == peer.ID {
				info.Verified = ch.Verified
			}
		}
	}
	return info, nil
}

// History fetches messages newest-first, starting below offsetID when it
// is non-zero.
func (c *Client) History(ctx context.Context, peer Peer, offsetID, limit int) (*HistoryPage, error) {
	conn, err := c.holder.EnsureReady(ctx)
	if err != nil {
		return nil, err
	}

	res, err := conn.API.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
		Peer:     inputPeer(peer),
		OffsetID: offsetID,
		Limit:    limit,
	})
	if err != nil {
		return nil, classify(err)
	}
	return collectMessages(res), nil
}

// Search runs the platform's server-side full-text search within a chat.
func (c *Client) Search(ctx context.Context, peer Peer, query string, offsetID, limit int) (*HistoryPage, error) {
	conn, err := c.holder.EnsureReady(ctx)
	if err != nil {
		return nil, err
	}

	res, err := conn.API.MessagesSearch(ctx, &tg.MessagesSearchRequest{
		Peer:     inputPeer(peer),
		Q:        query,
		Filter:   &tg.InputMessagesFilterEmpty{},
		OffsetID: offsetID,
		Limit:    limit,
	})
	if err != nil {
		return nil, classify(err)
	}
	return collectMessages(res), nil
}

func collectMessages(res tg.MessagesMessagesClass) *HistoryPage {
	var (
		messages []tg.MessageClass
		chats    []tg.ChatClass
		users    []tg.UserClass
	)
	switch m := res.(type) {
	case *tg.MessagesMessages:
		messages, chats, users = m.Messages, m.Chats, m.Users
	case *tg.MessagesMessagesSlice:
		messages, chats, users = m.Messages, m.Chats, m.Users
	case *tg.MessagesChannelMessages:
		messages, chats, users = m.Messages, m.Chats, m.Users
	default:
		return &HistoryPage{}
	}

	ent := newEntities(users, chats)
	page := &HistoryPage{
		Messages: make([]Message, 0, len(messages)),
		Fetched:  len(messages),
	}
	for _, mc := range messages {
		// Deleted messages arrive as MessageEmpty; they convert to
		// nothing but still occupy a slot in the page, and their IDs
		// still count for the resume offset.
		if id := rawMessageID(mc); id > 0 && (page.OldestID == 0 || id < page.OldestID) {
			page.OldestID = id
		}
		if msg, ok := convertMessage(mc, ent); ok {
			page.Messages = append(page.Messages, msg)
		}
	}
	return page
}

func rawMessageID(mc tg.MessageClass) int {
	switch m := mc.(type) {
	case *tg.Message:
		return m.ID
	case *tg.MessageService:
		return m.ID
	case *tg.MessageEmpty:
		return m.ID
	}
	return 0
}

// Send delivers a text message and returns the record of the message just
// sent, with the platform-assigned ID. Non-idempotent: no dedupe, no
// automatic retry on ambiguous failures.
func (c *Client) Send(ctx context.Context, peer Peer, text string) (*Message, error) {
	conn, err := c.holder.EnsureReady(ctx)
	if err != nil {
		return nil, err
	}

	sender := message.NewSender(conn.API)
	id, err := unpack.MessageID(sender.To(inputPeer(peer)).Text(ctx, text))
	if err != nil {
		return nil, classify(err)
	}

	return &Message{
		ID:         id,
		ChatID:     peer.ID,
		SenderID:   conn.Self.ID,
		SenderName: displayName(conn.Self),
		Date:       time.Now().UTC(),
		Text:       text,
		Outgoing:   true,
	}, nil
}

// Me returns the authorized account, verifying the session on the way.
func (c *Client) Me(ctx context.Context) (User, error) {
	conn, err := c.holder.EnsureReady(ctx)
	if err != nil {
		return User{}, err
	}
	username, _ := conn.Self.GetUsername()
	first, _ := conn.Self.GetFirstName()
	last, _ := conn.Self.GetLastName()
	return User{
		ID:        conn.Self.ID,
		Username:  username,
		FirstName: strings.TrimSpace(first),
		LastName:  strings.TrimSpace(last),
	}, nil
}
