package bus

import (
	"context"

	"github.com/yungbote/agilecoach-backend/internal/realtime"
)

// Bus carries learner events between API instances. Services publish to
// it; every instance runs one forwarder that hands received messages to
// its local SSE hub. Delivery is best effort and at most once.
type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}
