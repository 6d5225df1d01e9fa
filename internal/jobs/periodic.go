package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/forgo/aisle/api/internal/metrics"
)

const (
	defaultStartDelay = 5 * time.Second
	runTimeout        = 5 * time.Minute
)

// periodic runs fn once after startDelay and then on every tick until stopped
type periodic struct {
	name       string
	interval   time.Duration
	startDelay time.Duration
	fn         func(ctx context.Context) error

	stopCh  chan struct{}
	wg      sync.WaitGroup
	running bool
	mu      sync.Mutex
}

func newPeriodic(name string, interval time.Duration, fn func(ctx context.Context) error) *periodic {
	return &periodic{
		name:       name,
		interval:   interval,
		startDelay: defaultStartDelay,
		fn:         fn,
	}
}

// Start begins the job loop. Calling it twice is a no-op.
func (p *periodic) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.mu.Unlock()

	p.wg.Add(1)
	go p.run()
	slog.Info("job started", slog.String("job", p.name), slog.Duration("interval", p.interval))
}

// Stop ends the loop and waits for an in-flight run to finish
func (p *periodic) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stopCh)
	p.mu.Unlock()

	p.wg.Wait()
	slog.Info("job stopped", slog.String("job", p.name))
}

// IsRunning returns whether the loop is active
func (p *periodic) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *periodic) run() {
	defer p.wg.Done()

	// Let the rest of the server come up before the first pass
	select {
	case <-time.After(p.startDelay):
		p.tick()
	case <-p.stopCh:
		return
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.tick()
		case <-p.stopCh:
			return
		}
	}
}

func (p *periodic) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	err := p.fn(ctx)
	metrics.RecordJobRun(p.name, err)
	if err != nil {
		slog.Error("job run failed", slog.String("job", p.name), slog.String("error", err.Error()))
	}
}
