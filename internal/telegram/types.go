// Package telegram owns the single authenticated MTProto session and the
// high-level queries the bridge core performs against it.
//
// The core never touches gotd types directly: this package converts
// platform-native objects into the neutral structs below, and classifies
// platform failures into the toolerr taxonomy.
package telegram

import "time"

// ChatKind is the coarse dialog classification used across the bridge.
// Telegram megagroups count as groups, broadcast channels as channels.
type ChatKind string

const (
	KindUser    ChatKind = "user"
	KindGroup   ChatKind = "group"
	KindChannel ChatKind = "channel"
)

// Peer is the canonical handle for a resolved chat. It is only valid for
// the duration of one tool call: access hashes are tied to the session's
// current resolution state and are never cached across calls.
type Peer struct {
	Kind       ChatKind
	ID         int64
	AccessHash int64
	Title      string
	Username   string
}

// Dialog is one entry of the account's dialog list, in the platform's
// native most-recently-active-first order.
type Dialog struct {
	Peer        Peer
	UnreadCount int
	Pinned      bool
	LastMessage string
	LastDate    time.Time

	// Offset fields of this dialog's top message, used to build the
	// resume point for the next page.
	TopMessageID int
	OffsetDate   int
}

// DialogOffset is the platform-level resume point for dialog paging.
// The zero value means "from the top".
type DialogOffset struct {
	Date int
	ID   int
}

// DialogPage is one platform page of dialogs.
type DialogPage struct {
	Dialogs []Dialog
	HasMore bool
}

// Message is a platform message with entity names already joined in.
type Message struct {
	ID         int
	ChatID     int64
	SenderID   int64
	SenderName string
	Date       time.Time
	Text       string
	Media      string // empty when the message has no media
	ReplyTo    int    // 0 when not a reply
	Outgoing   bool
}

// HistoryPage is one platform page of history or search results, newest
// first. Fetched counts the raw entries the platform returned, including
// deleted messages that convert to nothing, so pagination decisions use
// it rather than len(Messages). OldestID is the smallest raw message ID
// in the page, the offset for the next older slice.
type HistoryPage struct {
	Messages []Message
	Fetched  int
	OldestID int
}

// ChatInfo is the full metadata for one chat, as returned by the per-kind
// full-entity query.
type ChatInfo struct {
	Peer        Peer
	Description string
	Members     int // 0 when the platform does not expose a count
	Verified    bool
}

// User identifies the authorized account.
type User struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}
