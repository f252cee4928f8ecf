package notifier

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/newthinker/taengine/internal/analysis"
	"github.com/newthinker/taengine/internal/core"
)

// Dispatcher decides which reports are worth a notification and fans
// them out. A symbol that keeps the same verdict is notified at most once
// per cooldown.
type Dispatcher struct {
	registry *Registry
	actions  map[core.Action]bool
	cooldown time.Duration
	logger   *zap.Logger

	mu        sync.Mutex
	lastFired map[string]fired

	now func() time.Time
}

type fired struct {
	verdict core.Action
	at      time.Time
}

// NewDispatcher notifies reports whose verdict is in actions.
func NewDispatcher(registry *Registry, actions []core.Action, cooldown time.Duration, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	set := make(map[core.Action]bool, len(actions))
	for _, a := range actions {
		set[a] = true
	}
	return &Dispatcher{
		registry:  registry,
		actions:   set,
		cooldown:  cooldown,
		logger:    logger,
		lastFired: make(map[string]fired),
		now:       time.Now,
	}
}

// Dispatch notifies r if it qualifies. It reports whether a notification
// was attempted.
func (d *Dispatcher) Dispatch(ctx context.Context, r *analysis.Report) bool {
	if !d.claim(r.Symbol, r.Verdict.Verdict) {
		d.logger.Debug("report filtered out",
			zap.String("symbol", r.Symbol),
			zap.String("verdict", string(r.Verdict.Verdict)),
		)
		return false
	}

	errs := d.registry.NotifyAll(ctx, NewNotification(r))
	for name, err := range errs {
		d.logger.Error("notifier failed",
			zap.String("notifier", name),
			zap.String("report", r.ID),
			zap.Error(err),
		)
	}

	d.logger.Info("verdict notified",
		zap.String("symbol", r.Symbol),
		zap.String("verdict", string(r.Verdict.Verdict)),
		zap.Int("notifiers", d.registry.Len()),
		zap.Int("errors", len(errs)),
	)
	return true
}

// claim records a firing for symbol unless the verdict is filtered out or
// still in cooldown.
func (d *Dispatcher) claim(symbol string, verdict core.Action) bool {
	if !d.actions[verdict] || d.registry.Len() == 0 {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	last, ok := d.lastFired[symbol]
	if ok && last.verdict == verdict && now.Sub(last.at) < d.cooldown {
		return false
	}
	d.lastFired[symbol] = fired{verdict: verdict, at: now}
	return true
}
