// Package notifier pushes directional verdicts to external receivers.
package notifier

import (
	"context"
	"time"

	"github.com/newthinker/taengine/internal/analysis"
	"github.com/newthinker/taengine/internal/classifier"
	"github.com/newthinker/taengine/internal/core"
)

// Notification is the payload delivered for one report.
type Notification struct {
	ReportID    string             `json:"report_id"`
	Symbol      string             `json:"symbol"`
	AsOf        string             `json:"as_of"`
	GeneratedAt time.Time          `json:"generated_at"`
	Verdict     core.Verdict       `json:"verdict"`
	Headline    string             `json:"headline"`
	Signals     []core.Signal      `json:"signals"`
	Events      []classifier.Event `json:"events,omitempty"`
}

// NewNotification extracts the notification payload from r. Only events
// on the latest bar are carried.
func NewNotification(r *analysis.Report) Notification {
	n := Notification{
		ReportID:    r.ID,
		Symbol:      r.Symbol,
		AsOf:        r.AsOf,
		GeneratedAt: r.GeneratedAt,
		Verdict:     r.Verdict,
		Headline:    r.Headline,
		Signals:     append([]core.Signal{r.Signals.MA}, r.Signals.Voting()...),
	}
	last := len(r.Dates) - 1
	for _, e := range r.Events {
		if e.Index == last {
			n.Events = append(n.Events, e)
		}
	}
	return n
}

// Notifier delivers notifications to one receiver.
type Notifier interface {
	// Name returns the unique identifier for this notifier
	Name() string

	Notify(ctx context.Context, n Notification) error
}
