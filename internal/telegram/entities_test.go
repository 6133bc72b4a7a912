package telegram

import (
	"testing"
	"time"

	"github.com/gotd/td/tg"
)

func testUser(id int64, first, last, username string) *tg.User {
	u := &tg.User{ID: id}
	if first != "" {
		u.SetFirstName(first)
	}
	if last != "" {
		u.SetLastName(last)
	}
	if username != "" {
		u.SetUsername(username)
	}
	u.SetAccessHash(id * 1000)
	return u
}

func TestChatPeerKinds(t *testing.T) {
	basic := &tg.Chat{ID: 10, Title: "Basic Group"}
	mega := &tg.Channel{ID: 20, Title: "Mega", Megagroup: true}
	mega.SetAccessHash(2020)
	mega.SetUsername("mega")
	broadcast := &tg.Channel{ID: 30, Title: "News", Broadcast: true}
	broadcast.SetAccessHash(3030)

	if p, ok := chatPeer(basic); !ok || p.Kind != KindGroup || p.AccessHash != 0 {
		t.Fatalf("basic group: got %+v ok=%v", p, ok)
	}
	if p, ok := chatPeer(mega); !ok || p.Kind != KindGroup || p.AccessHash != 2020 || p.Username != "mega" {
		t.Fatalf("megagroup must be a group with a hash: got %+v ok=%v", p, ok)
	}
	if p, ok := chatPeer(broadcast); !ok || p.Kind != KindChannel {
		t.Fatalf("broadcast must be a channel: got %+v ok=%v", p, ok)
	}
	if _, ok := chatPeer(&tg.ChatForbidden{ID: 40, Title: "Gone"}); ok {
		t.Fatalf("forbidden chats must not yield a peer")
	}
}

func TestDisplayNameFallsBackToUsername(t *testing.T) {
	if got := displayName(testUser(1, "Ada", "Lovelace", "ada")); got != "Ada Lovelace" {
		t.Fatalf("full name: got %q", got)
	}
	if got := displayName(testUser(2, "Ada", "", "")); got != "Ada" {
		t.Fatalf("first only: got %q", got)
	}
	if got := displayName(testUser(3, "", "", "ghost")); got != "@ghost" {
		t.Fatalf("username fallback: got %q", got)
	}
	if got := displayName(&tg.User{ID: 4}); got != "" {
		t.Fatalf("nameless: got %q", got)
	}
}

func TestConvertMessageJoinsSenderNames(t *testing.T) {
	ada := testUser(7, "Ada", "Lovelace", "ada")
	ent := newEntities([]tg.UserClass{ada}, nil)

	msg := &tg.Message{
		ID:      101,
		PeerID:  &tg.PeerUser{UserID: 7},
		Date:    1700000000,
		Message: "hello",
	}
	msg.SetFromID(&tg.PeerUser{UserID: 7})

	got, ok := convertMessage(msg, ent)
	if !ok {
		t.Fatalf("expected conversion")
	}
	if got.SenderID != 7 || got.SenderName != "Ada Lovelace" {
		t.Fatalf("sender not joined: %+v", got)
	}
	if !got.Date.Equal(time.Unix(1700000000, 0)) {
		t.Fatalf("bad date: %v", got.Date)
	}
}

func TestConvertMessageIncomingDMUsesDialogPeer(t *testing.T) {
	ada := testUser(7, "Ada", "", "")
	ent := newEntities([]tg.UserClass{ada}, nil)

	// Direct chats omit from_id on incoming messages.
	msg := &tg.Message{
		ID:      102,
		PeerID:  &tg.PeerUser{UserID: 7},
		Date:    1700000100,
		Message: "ping",
	}

	got, ok := convertMessage(msg, ent)
	if !ok {
		t.Fatalf("expected conversion")
	}
	if got.SenderID != 7 || got.SenderName != "Ada" {
		t.Fatalf("incoming DM sender must be the dialog peer: %+v", got)
	}
	if got.Outgoing {
		t.Fatalf("message is incoming")
	}
}

func TestConvertMessageMediaAndReply(t *testing.T) {
	ent := newEntities(nil, nil)

	msg := &tg.Message{
		ID:     103,
		PeerID: &tg.PeerChannel{ChannelID: 9},
		Date:   1700000200,
	}
	msg.SetMedia(&tg.MessageMediaPhoto{})
	msg.SetReplyTo(func() tg.MessageReplyHeaderClass {
		h := &tg.MessageReplyHeader{}
		h.SetReplyToMsgID(55)
		return h
	}())

	got, ok := convertMessage(msg, ent)
	if !ok {
		t.Fatalf("expected conversion")
	}
	if got.Media != "photo" {
		t.Fatalf("expected photo media, got %q", got.Media)
	}
	if got.ReplyTo != 55 {
		t.Fatalf("expected replyTo 55, got %d", got.ReplyTo)
	}
	if got.ChatID != 9 {
		t.Fatalf("expected chat 9, got %d", got.ChatID)
	}
}

func TestConvertMessageServiceAndEmpty(t *testing.T) {
	ent := newEntities(nil, nil)

	svc := &tg.MessageService{ID: 104, PeerID: &tg.PeerChat{ChatID: 5}, Date: 1700000300}
	got, ok := convertMessage(svc, ent)
	if !ok || got.Media != "service" || got.Text != "" {
		t.Fatalf("service message: got %+v ok=%v", got, ok)
	}

	if _, ok := convertMessage(&tg.MessageEmpty{ID: 105}, ent); ok {
		t.Fatalf("empty placeholders must be skipped")
	}
}

func TestMediaKindCoversCommonTypes(t *testing.T) {
	tests := []struct {
		media tg.MessageMediaClass
		want  string
	}{
		{&tg.MessageMediaEmpty{}, ""},
		{&tg.MessageMediaPhoto{}, "photo"},
		{&tg.MessageMediaDocument{}, "document"},
		{&tg.MessageMediaGeo{}, "geo"},
		{&tg.MessageMediaContact{}, "contact"},
		{&tg.MessageMediaPoll{}, "poll"},
		{&tg.MessageMediaWebPage{}, "webpage"},
		{&tg.MessageMediaUnsupported{}, "media"},
	}
	for _, tt := range tests {
		if got := mediaKind(tt.media); got != tt.want {
			t.Errorf("mediaKind(%T) = %q, want %q", tt.media, got, tt.want)
		}
	}
}

func TestInputPeerMapping(t *testing.T) {
	user := inputPeer(Peer{Kind: KindUser, ID: 1, AccessHash: 11})
	if p, ok := user.(*tg.InputPeerUser); !ok || p.UserID != 1 || p.AccessHash != 11 {
		t.Fatalf("user peer: got %T %+v", user, user)
	}

	basic := inputPeer(Peer{Kind: KindGroup, ID: 2})
	if p, ok := basic.(*tg.InputPeerChat); !ok || p.ChatID != 2 {
		t.Fatalf("basic group peer: got %T", basic)
	}

	mega := inputPeer(Peer{Kind: KindGroup, ID: 3, AccessHash: 33})
	if p, ok := mega.(*tg.InputPeerChannel); !ok || p.ChannelID != 3 {
		t.Fatalf("megagroup must go over the channel peer: got %T", mega)
	}

	channel := inputPeer(Peer{Kind: KindChannel, ID: 4, AccessHash: 44})
	if _, ok := channel.(*tg.InputPeerChannel); !ok {
		t.Fatalf("channel peer: got %T", channel)
	}
}

func TestNormalizeChatID(t *testing.T) {
	tests := []struct {
		in   int64
		want int64
	}{
		{42, 42},
		{-42, 42},
		{-1001234567890, 1234567890},
	}
	for _, tt := range tests {
		if got := normalizeChatID(tt.in); got != tt.want {
			t.Errorf("normalizeChatID(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
