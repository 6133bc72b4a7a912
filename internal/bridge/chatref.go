package bridge

import (
	"context"
	"strconv"
	"strings"

	"github.com/RealHotChiliPepe/tgbot/internal/telegram"
	"github.com/RealHotChiliPepe/tgbot/internal/toolerr"
)

// chatRef is a parsed chat reference. Exactly one field group is set.
type chatRef struct {
	id         int64  // numeric reference
	username   string // public username, without the @
	inviteHash string // private invite hash
}

// parseChatRef classifies a raw chatRef argument into one of the three
// accepted forms: numeric ID, username, or invite handle.
//
// Accepted spellings:
//
//	-1001234567890, 1234567890        numeric (Bot-API style negatives ok)
//	@gophers, gophers                  username
//	https://t.me/+AbCd, t.me/joinchat/AbCd, +AbCd   invite
func parseChatRef(raw string) (chatRef, error) {
	ref := strings.TrimSpace(raw)
	if ref == "" {
		return chatRef{}, toolerr.Validationf("chatRef must not be empty")
	}

	for _, prefix := range []string{"https://t.me/", "http://t.me/", "t.me/"} {
		if rest, ok := strings.CutPrefix(ref, prefix); ok {
			return parseLinkPath(rest)
		}
	}

	if hash, ok := strings.CutPrefix(ref, "+"); ok {
		return inviteRef(hash)
	}

	if name, ok := strings.CutPrefix(ref, "@"); ok {
		return usernameRef(name)
	}

	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		if id == 0 {
			return chatRef{}, toolerr.Validationf("chatRef 0 is not a valid chat id")
		}
		return chatRef{id: id}, nil
	}

	return usernameRef(ref)
}

func parseLinkPath(path string) (chatRef, error) {
	path = strings.TrimSuffix(path, "/")
	if hash, ok := strings.CutPrefix(path, "+"); ok {
		return inviteRef(hash)
	}
	if hash, ok := strings.CutPrefix(path, "joinchat/"); ok {
		return inviteRef(hash)
	}
	return usernameRef(path)
}

func inviteRef(hash string) (chatRef, error) {
	if hash == "" {
		return chatRef{}, toolerr.Validationf("invite link is missing its hash")
	}
	return chatRef{inviteHash: hash}, nil
}

func usernameRef(name string) (chatRef, error) {
	if name == "" {
		return chatRef{}, toolerr.Validationf("username reference must not be empty")
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return chatRef{}, toolerr.Validationf("%q is not a valid chat reference", name)
		}
	}
	return chatRef{username: name}, nil
}

// resolve turns a raw chatRef into a peer handle for this call. The handle
// is never cached: access hashes belong to the session's current state.
func (b *Bridge) resolve(ctx context.Context, raw string) (telegram.Peer, error) {
	ref, err := parseChatRef(raw)
	if err != nil {
		return telegram.Peer{}, err
	}
	switch {
	case ref.inviteHash != "":
		return b.platform.ResolveInvite(ctx, ref.inviteHash)
	case ref.username != "":
		return b.platform.ResolveUsername(ctx, ref.username)
	default:
		return b.platform.ResolveID(ctx, ref.id)
	}
}
