package telegram

import (
	"context"
	"errors"

	"github.com/gotd/td/tgerr"

	"github.com/RealHotChiliPepe/tgbot/internal/toolerr"
)

// classify converts a platform or transport failure into the closed tool
// error taxonomy. Already-classified errors pass through unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if e, ok := toolerr.As(err); ok {
		return e
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return toolerr.Timeout("telegram request")
	}

	if wait, ok := tgerr.AsFloodWait(err); ok {
		return toolerr.RateLimited(int(wait.Seconds()))
	}

	var rpc *tgerr.Error
	if errors.As(err, &rpc) {
		switch rpc.Type {
		case "USERNAME_NOT_OCCUPIED", "USERNAME_INVALID", "PEER_ID_INVALID",
			"CHAT_ID_INVALID", "CHANNEL_INVALID", "MSG_ID_INVALID",
			"INVITE_HASH_INVALID", "INVITE_HASH_EXPIRED":
			return toolerr.NotFoundf("telegram: %s", rpc.Type)
		case "CHANNEL_PRIVATE", "CHAT_ADMIN_REQUIRED", "CHAT_WRITE_FORBIDDEN",
			"USER_BANNED_IN_CHANNEL", "USER_NOT_PARTICIPANT":
			return toolerr.Permissionf("telegram: %s", rpc.Type)
		case "AUTH_KEY_UNREGISTERED", "AUTH_KEY_INVALID", "AUTH_KEY_DUPLICATED",
			"SESSION_REVOKED", "SESSION_EXPIRED", "USER_DEACTIVATED":
			return toolerr.Sessionf(toolerr.DetailNotAuthorized, "telegram: %s", rpc.Type)
		}
		return toolerr.Upstreamf("telegram: %s (code %d)", rpc.Type, rpc.Code)
	}

	return toolerr.Upstreamf("telegram: %v", err)
}
