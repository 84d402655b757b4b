package reorder

import "context"

// Mover commits a single move, typically through the HTTP API client.
type Mover interface {
	MoveLink(ctx context.Context, linkID int64, index int) error
}

// MoveOnDrop returns a CompletionFunc issuing one MoveLink per settled drop.
// onErr may be nil.
func MoveOnDrop(ctx context.Context, mover Mover, onErr func(Drop, error)) CompletionFunc {
	return func(d Drop) {
		if !d.NeedsMove() {
			return
		}
		if err := mover.MoveLink(ctx, d.LinkID, *d.Destination); err != nil && onErr != nil {
			onErr(d, err)
		}
	}
}
