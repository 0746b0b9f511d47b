package worker

import (
	"context"

	"github.com/rs/zerolog"
)

// HandleMessage exposes the ack decision to tests.
func HandleMessage(ctx context.Context, d *Dispatcher, data []byte) bool {
	return handleMessage(ctx, d, zerolog.Nop(), data)
}
