package oauth

import (
	"context"
	"fmt"
	"time"
)

// Await blocks until the handshake behind popup reaches exactly one terminal
// outcome: a success message, a provider error message, manual closure of the
// popup, the absolute deadline, or cancellation of ctx. Messages from origins
// other than the client's own are skipped without settling anything. All bus
// and timer registrations are torn down before returning, on every path.
func (c *Client) Await(ctx context.Context, popup Popup, bus *Bus) (*OAuthResult, error) {
	if popup == nil {
		return nil, ErrPopupBlocked
	}

	msgs, unsubscribe := bus.Subscribe(c.origin)
	defer unsubscribe()

	poll := time.NewTicker(c.pollInterval)
	defer poll.Stop()

	deadline := time.NewTimer(c.timeout)
	defer deadline.Stop()

	for {
		select {
		case m := <-msgs:
			if m.Origin != c.origin {
				continue
			}

			switch m.Type {
			case MessageTypeSuccess:
				popup.Close()
				return m.Token, nil
			case MessageTypeError:
				popup.Close()
				return nil, fmt.Errorf("%w: %s", ErrProvider, m.Error)
			}

		case <-poll.C:
			if popup.Closed() {
				return nil, fmt.Errorf("%w: popup closed before completing authorization", ErrCancelled)
			}

		case <-deadline.C:
			if !popup.Closed() {
				popup.Close()
			}
			return nil, fmt.Errorf("%w: no response within %s", ErrTimeout, c.timeout)

		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
		}
	}
}
