package bridge

import "context"

// GetChat resolves a chat reference and returns its full metadata. All
// three reference forms land on the same handle, so the result does not
// depend on how the chat was named.
func (b *Bridge) GetChat(ctx context.Context, chatRef string) (*ChatDetails, error) {
	ctx, cancel := b.opCtx(ctx)
	defer cancel()

	peer, err := b.resolve(ctx, chatRef)
	if err != nil {
		return nil, err
	}
	info, err := b.platform.ChatInfo(ctx, peer)
	if err != nil {
		return nil, err
	}
	return shapeChat(info), nil
}
