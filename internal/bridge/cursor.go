package bridge

import (
	"encoding/base64"
	"encoding/json"

	"github.com/RealHotChiliPepe/tgbot/internal/toolerr"
)

// Cursors are opaque to callers: base64url-encoded JSON carrying the
// platform resume point. A cursor minted by one tool is only meaningful to
// the same tool.

type dialogCursor struct {
	Date int `json:"d"`
	ID   int `json:"i"`
}

type messageCursor struct {
	OffsetID int `json:"o"`
}

func encodeCursor(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		// Cursor payloads are plain int structs; this cannot fail.
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

func decodeCursor(s string, v any) error {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return toolerr.Validationf("malformed cursor")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return toolerr.Validationf("malformed cursor")
	}
	return nil
}
