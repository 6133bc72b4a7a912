package bridge

import (
	"time"

	"github.com/RealHotChiliPepe/tgbot/internal/telegram"
)

// truncationMarker is appended to bodies cut at the truncation limit, so
// a reader can tell a shortened message from one that simply ends there.
const truncationMarker = " [truncated]"

// MessageRecord is the stable message shape returned by the tools.
type MessageRecord struct {
	ID         int    `json:"id"`
	ChatID     int64  `json:"chatId"`
	SenderID   int64  `json:"senderId"`
	SenderName string `json:"senderName"`
	Date       string `json:"date"`
	Text       string `json:"text"`
	Truncated  bool   `json:"truncated"`
	Media      string `json:"media,omitempty"`
	ReplyTo    int    `json:"replyTo,omitempty"`
	Outgoing   bool   `json:"outgoing"`
}

// DialogSummary is one entry of a dialog listing.
type DialogSummary struct {
	ID          int64  `json:"id"`
	Kind        string `json:"kind"`
	Title       string `json:"title"`
	Username    string `json:"username,omitempty"`
	UnreadCount int    `json:"unreadCount"`
	Pinned      bool   `json:"pinned"`
	LastMessage string `json:"lastMessage,omitempty"`
	LastDate    string `json:"lastDate,omitempty"`
}

// ChatDetails is the full metadata returned by the chat inspector.
type ChatDetails struct {
	ID          int64  `json:"id"`
	Kind        string `json:"kind"`
	Title       string `json:"title"`
	Username    string `json:"username,omitempty"`
	Description string `json:"description,omitempty"`
	Members     int    `json:"members,omitempty"`
	Verified    bool   `json:"verified"`
}

// DialogPage and MessagePage pair a page of items with the cursor for the
// next one. A nil NextCursor marshals to null and means the listing is
// exhausted.
type DialogPage struct {
	Items      []DialogSummary `json:"items"`
	NextCursor *string         `json:"nextCursor"`
}

type MessagePage struct {
	Items      []MessageRecord `json:"items"`
	NextCursor *string         `json:"nextCursor"`
}

func shapeDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// shapeMessage converts a platform message, truncating the body at
// truncateAt runes.
func shapeMessage(m telegram.Message, truncateAt int) MessageRecord {
	rec := MessageRecord{
		ID:         m.ID,
		ChatID:     m.ChatID,
		SenderID:   m.SenderID,
		SenderName: m.SenderName,
		Date:       shapeDate(m.Date),
		Text:       m.Text,
		Media:      m.Media,
		ReplyTo:    m.ReplyTo,
		Outgoing:   m.Outgoing,
	}
	if runes := []rune(m.Text); len(runes) > truncateAt {
		rec.Text = string(runes[:truncateAt]) + truncationMarker
		rec.Truncated = true
	}
	return rec
}

func shapeMessages(msgs []telegram.Message, truncateAt int) []MessageRecord {
	out := make([]MessageRecord, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, shapeMessage(m, truncateAt))
	}
	return out
}

func shapeDialog(d telegram.Dialog, truncateAt int) DialogSummary {
	s := DialogSummary{
		ID:          d.Peer.ID,
		Kind:        string(d.Peer.Kind),
		Title:       d.Peer.Title,
		Username:    d.Peer.Username,
		UnreadCount: d.UnreadCount,
		Pinned:      d.Pinned,
		LastMessage: d.LastMessage,
		LastDate:    shapeDate(d.LastDate),
	}
	// Previews get the same truncation treatment as full records, just
	// without the flag: a summary is not a message read.
	if runes := []rune(s.LastMessage); len(runes) > truncateAt {
		s.LastMessage = string(runes[:truncateAt]) + truncationMarker
	}
	return s
}

func shapeChat(info *telegram.ChatInfo) *ChatDetails {
	return &ChatDetails{
		ID:          info.Peer.ID,
		Kind:        string(info.Peer.Kind),
		Title:       info.Peer.Title,
		Username:    info.Peer.Username,
		Description: info.Description,
		Members:     info.Members,
		Verified:    info.Verified,
	}
}
