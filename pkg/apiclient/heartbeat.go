package apiclient

import (
	"context"
	"fmt"
	"time"

	"github.com/peerdex/peerdex/internal/logger"
)

// DefaultHeartbeatInterval keeps a session comfortably inside the
// tracker's two-minute idle window.
const DefaultHeartbeatInterval = 30 * time.Second

// RunHeartbeat keeps the session alive until ctx is cancelled.
//
// A rejected token is retried once through resumeSession; transport
// errors are logged and retried on the next tick, since the session
// survives short outages on the tracker side. RunHeartbeat returns nil
// on cancellation and an error only when the tracker has definitively
// rejected the session.
func (c *Client) RunHeartbeat(ctx context.Context, sess *Session, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultHeartbeatInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			err := c.Heartbeat(sess)
			if err == nil {
				continue
			}

			if IsCredentialError(err) {
				// The token may have rotated under us; resume settles it.
				if resumeErr := c.Resume(sess); resumeErr != nil {
					return fmt.Errorf("session lost: %w", resumeErr)
				}
				logger.Info("session resumed", logger.KeyUser, sess.Name)
				continue
			}

			logger.Warn("heartbeat failed, will retry",
				logger.KeyUser, sess.Name, logger.KeyError, err)
		}
	}
}
