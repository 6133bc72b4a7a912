package telegram

import (
	"strings"
	"time"

	"github.com/gotd/td/tg"
)

// entities indexes the User/Chat objects the platform attaches to every
// dialog or message page, so records can carry display names without
// extra round trips.
type entities struct {
	users map[int64]*tg.User
	chats map[int64]tg.ChatClass
}

func newEntities(users []tg.UserClass, chats []tg.ChatClass) *entities {
	e := &entities{
		users: make(map[int64]*tg.User, len(users)),
		chats: make(map[int64]tg.ChatClass, len(chats)),
	}
	for _, u := range users {
		if user, ok := u.(*tg.User); ok {
			e.users[user.ID] = user
		}
	}
	for _, c := range chats {
		e.chats[c.GetID()] = c
	}
	return e
}

// nameFor returns the entity ID and display name behind a peer.
func (e *entities) nameFor(p tg.PeerClass) (int64, string) {
	switch peer := p.(type) {
	case *tg.PeerUser:
		if u, ok := e.users[peer.UserID]; ok {
			return peer.UserID, displayName(u)
		}
		return peer.UserID, ""
	case *tg.PeerChat:
		if c, ok := e.chats[peer.ChatID]; ok {
			return peer.ChatID, chatTitle(c)
		}
		return peer.ChatID, ""
	case *tg.PeerChannel:
		if c, ok := e.chats[peer.ChannelID]; ok {
			return peer.ChannelID, chatTitle(c)
		}
		return peer.ChannelID, ""
	}
	return 0, ""
}

// peerFor builds a full Peer for the entity behind a dialog peer.
func (e *entities) peerFor(p tg.PeerClass) (Peer, bool) {
	switch peer := p.(type) {
	case *tg.PeerUser:
		if u, ok := e.users[peer.UserID]; ok {
			return userPeer(u), true
		}
	case *tg.PeerChat:
		if c, ok := e.chats[peer.ChatID]; ok {
			return chatPeer(c)
		}
	case *tg.PeerChannel:
		if c, ok := e.chats[peer.ChannelID]; ok {
			return chatPeer(c)
		}
	}
	return Peer{}, false
}

func userPeer(u *tg.User) Peer {
	hash, _ := u.GetAccessHash()
	username, _ := u.GetUsername()
	return Peer{
		Kind:       KindUser,
		ID:         u.ID,
		AccessHash: hash,
		Title:      displayName(u),
		Username:   username,
	}
}

func chatPeer(c tg.ChatClass) (Peer, bool) {
	switch chat := c.(type) {
	case *tg.Chat:
		return Peer{Kind: KindGroup, ID: chat.ID, Title: chat.Title}, true
	case *tg.Channel:
		kind := KindChannel
		if chat.Megagroup {
			kind = KindGroup
		}
		hash, _ := chat.GetAccessHash()
		username, _ := chat.GetUsername()
		return Peer{
			Kind:       kind,
			ID:         chat.ID,
			AccessHash: hash,
			Title:      chat.Title,
			Username:   username,
		}, true
	}
	// Forbidden variants: the chat exists but this session cannot
	// address it. Resolution handles that case explicitly.
	return Peer{}, false
}

func displayName(u *tg.User) string {
	first, _ := u.GetFirstName()
	last, _ := u.GetLastName()
	name := strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
	if name != "" {
		return name
	}
	if username, ok := u.GetUsername(); ok {
		return "@" + username
	}
	return ""
}

func chatTitle(c tg.ChatClass) string {
	switch chat := c.(type) {
	case *tg.Chat:
		return chat.Title
	case *tg.Channel:
		return chat.Title
	case *tg.ChatForbidden:
		return chat.Title
	case *tg.ChannelForbidden:
		return chat.Title
	}
	return ""
}

// convertMessage maps one platform message into a neutral Message.
// Empty placeholders are skipped; service messages (joins, pins, …) keep
// their slot with an empty body so pagination counts stay honest.
func convertMessage(m tg.MessageClass, ent *entities) (Message, bool) {
	switch msg := m.(type) {
	case *tg.Message:
		out := Message{
			ID:       msg.ID,
			Date:     time.Unix(int64(msg.Date), 0).UTC(),
			Text:     msg.Message,
			Outgoing: msg.Out,
		}
		out.ChatID, _ = peerBareID(msg.PeerID)
		if from, ok := msg.GetFromID(); ok {
			out.SenderID, out.SenderName = ent.nameFor(from)
		} else if !msg.Out {
			// Direct chats omit from_id; the sender is the dialog peer.
			out.SenderID, out.SenderName = ent.nameFor(msg.PeerID)
		}
		if media, ok := msg.GetMedia(); ok {
			out.Media = mediaKind(media)
		}
		if reply, ok := msg.GetReplyTo(); ok {
			if h, ok := reply.(*tg.MessageReplyHeader); ok {
				if id, ok := h.GetReplyToMsgID(); ok {
					out.ReplyTo = id
				}
			}
		}
		return out, true
	case *tg.MessageService:
		out := Message{
			ID:       msg.ID,
			Date:     time.Unix(int64(msg.Date), 0).UTC(),
			Media:    "service",
			Outgoing: msg.Out,
		}
		out.ChatID, _ = peerBareID(msg.PeerID)
		if from, ok := msg.GetFromID(); ok {
			out.SenderID, out.SenderName = ent.nameFor(from)
		}
		return out, true
	}
	return Message{}, false
}

func peerBareID(p tg.PeerClass) (int64, bool) {
	switch peer := p.(type) {
	case *tg.PeerUser:
		return peer.UserID, true
	case *tg.PeerChat:
		return peer.ChatID, true
	case *tg.PeerChannel:
		return peer.ChannelID, true
	}
	return 0, false
}

func mediaKind(m tg.MessageMediaClass) string {
	switch m.(type) {
	case *tg.MessageMediaEmpty:
		return ""
	case *tg.MessageMediaPhoto:
		return "photo"
	case *tg.MessageMediaDocument:
		return "document"
	case *tg.MessageMediaGeo, *tg.MessageMediaGeoLive:
		return "geo"
	case *tg.MessageMediaContact:
		return "contact"
	case *tg.MessageMediaPoll:
		return "poll"
	case *tg.MessageMediaWebPage:
		return "webpage"
	case *tg.MessageMediaVenue:
		return "venue"
	case *tg.MessageMediaGame:
		return "game"
	case *tg.MessageMediaInvoice:
		return "invoice"
	case *tg.MessageMediaDice:
		return "dice"
	case *tg.MessageMediaStory:
		return "story"
	}
	return "media"
}

func inputPeer(p Peer) tg.InputPeerClass {
	switch p.Kind {
	case KindUser:
		return &tg.InputPeerUser{UserID: p.ID, AccessHash: p.AccessHash}
	case KindGroup:
		if p.AccessHash != 0 {
			// Megagroups are channels on the wire.
			return &tg.InputPeerChannel{ChannelID: p.ID, AccessHash: p.AccessHash}
		}
		return &tg.InputPeerChat{ChatID: p.ID}
	case KindChannel:
		return &tg.InputPeerChannel{ChannelID: p.ID, AccessHash: p.AccessHash}
	}
	return &tg.InputPeerEmpty{}
}
