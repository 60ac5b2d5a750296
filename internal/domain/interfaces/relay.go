package interfaces

import (
	"context"

	domaintypes "securejoin/internal/domain/types"
)

// RelayClient is how we talk to the store-and-forward relay, all with context.
type RelayClient interface {
	SendMessage(ctx context.Context, envelope domaintypes.Envelope) error
	FetchMessages(
		ctx context.Context,
		username domaintypes.Username,
		limit int,
	) ([]domaintypes.Envelope, error)
	AckMessages(ctx context.Context, username domaintypes.Username, count int) error
}
