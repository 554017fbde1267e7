// Package janitor periodically removes expired keys from backends that keep
// them around until a purge.
package janitor

import (
	"context"
	"time"

	"github.com/dmitrijs2005/siegesync/internal/logging"
	"github.com/dmitrijs2005/siegesync/internal/server/repositories/kv"
)

// Janitor periodically purges expired keys.
type Janitor struct {
	purger   kv.Purger
	interval time.Duration
	logger   logging.Logger
}

// New builds a Janitor. A nil purger or non-positive interval disables it.
func New(purger kv.Purger, interval time.Duration, l logging.Logger) *Janitor {
	if l == nil {
		l = logging.Nop()
	}
	return &Janitor{purger: purger, interval: interval, logger: l.With("module", "janitor")}
}

// Run purges every interval until ctx is done. A non-positive interval
// disables purging. Purge failures are logged and retried on the next tick.
func (j *Janitor) Run(ctx context.Context) error {
	if j.interval <= 0 || j.purger == nil {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			j.purgeOnce(ctx)
		}
	}
}

func (j *Janitor) purgeOnce(ctx context.Context) {
	n, err := j.purger.Purge(ctx)
	if err != nil {
		if ctx.Err() == nil {
			j.logger.Error(ctx, "purge failed", "error", err)
		}
		return
	}
	if n > 0 {
		j.logger.Info(ctx, "expired keys purged", "count", n)
	}
}
