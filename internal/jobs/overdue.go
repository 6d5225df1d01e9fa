package jobs

import (
	"context"
	"log/slog"
	"time"
)

// overdueBatchSize caps how many tasks one pass notifies about
const overdueBatchSize = 500

// OverdueNotifier is satisfied by service.TimelineService
type OverdueNotifier interface {
	ProcessOverdue(ctx context.Context, limit int) (int, error)
}

// OverdueProcessor tells couples when timeline tasks pass their due date.
// Each task is announced once on the owner's event stream.
type OverdueProcessor struct {
	*periodic
	timeline OverdueNotifier
}

// NewOverdueProcessor creates the overdue task job
func NewOverdueProcessor(timeline OverdueNotifier, interval time.Duration) *OverdueProcessor {
	if interval == 0 {
		interval = time.Hour
	}
	p := &OverdueProcessor{timeline: timeline}
	p.periodic = newPeriodic("timeline_overdue", interval, p.RunOnce)
	return p
}

// RunOnce processes overdue tasks in batches until none remain
func (p *OverdueProcessor) RunOnce(ctx context.Context) error {
	total := 0
	for {
		sent, err := p.timeline.ProcessOverdue(ctx, overdueBatchSize)
		if err != nil {
			return err
		}
		total += sent
		if sent < overdueBatchSize {
			break
		}
	}
	if total > 0 {
		slog.Info("overdue tasks announced", slog.Int("count", total))
	}
	return nil
}
