package directory

import (
	"context"
	"fmt"
	"time"

	"go.dot.industries/bootvault/internal/ui"
)

const defaultPollInterval = time.Second

// Poller blocks until a client identity becomes searchable in the
// directory. Absence is never an error: the poller retries at a fixed
// interval without backoff or retry cap, since the bootstrap process is
// expected to eventually register the client. Only a search transport
// failure or context cancellation aborts the wait.
type Poller struct {
	searcher Searcher
	ui       ui.UI
	interval time.Duration
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithInterval overrides the fixed wait between search attempts. Values
// less than or equal to zero are ignored.
func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// NewPoller creates a Poller over the given searcher.
func NewPoller(searcher Searcher, u ui.UI, opts ...PollerOption) *Poller {
	p := &Poller{
		searcher: searcher,
		ui:       u,
		interval: defaultPollInterval,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// WaitForClient returns once a search for "name:<nodeName>" yields at
// least one match. Each empty result emits one informational message and
// sleeps one interval before the next attempt. Returns nil silently on
// success.
func (p *Poller) WaitForClient(ctx context.Context, nodeName string) error {
	filter := "name:" + nodeName

	for {
		matches, err := p.searcher.SearchClients(ctx, filter)
		if err != nil {
			return fmt.Errorf("searching directory for client %q: %w", nodeName, err)
		}

		if len(matches) > 0 {
			return nil
		}

		p.ui.Info(fmt.Sprintf("waiting for client %q to be registered with the directory", nodeName))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.interval):
		}
	}
}
