package realtime

import (
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/agilecoach-backend/internal/platform/logger"
)

// outboundBuffer is how many events a slow stream may fall behind before
// the hub starts dropping its messages.
const outboundBuffer = 16

// SSEClient is one open event stream. A learner with two tabs open has two.
type SSEClient struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Channels map[string]bool
	Outbound chan SSEMessage
	Logger   *logger.Logger

	done chan struct{}
	once sync.Once
}

// Done is closed once the client has been shut down.
func (c *SSEClient) Done() <-chan struct{} { return c.done }

// shutdown runs detach and then closes the client's channels, exactly once.
// detach must stop further sends on Outbound before it returns.
func (c *SSEClient) shutdown(detach func()) {
	c.once.Do(func() {
		close(c.done)
		if detach != nil {
			detach()
		}
		close(c.Outbound)
	})
}
