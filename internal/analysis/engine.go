// Package analysis runs the full indicator pipeline for one security: it
// computes every indicator family, classifies the latest bar, scans for
// crossover events and reduces the signals to a composite verdict.
package analysis

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/newthinker/taengine/internal/classifier"
	"github.com/newthinker/taengine/internal/composite"
	"github.com/newthinker/taengine/internal/core"
	"github.com/newthinker/taengine/internal/indicator"
	"github.com/newthinker/taengine/internal/series"
)

// Analysis outcome labels reported to the Recorder.
const (
	StatusOK      = "ok"
	StatusPartial = "partial"
	StatusInvalid = "invalid"
	StatusError   = "error"
)

// Recorder receives analysis metrics.
type Recorder interface {
	RecordAnalysis(status string, duration float64, bars int)
	RecordSignal(indicator, action string)
	RecordVerdict(verdict string)
}

// Request is one analysis input.
type Request struct {
	Symbol string
	Series series.Series
	// Params overrides the engine defaults when set.
	Params *Params
}

// Engine runs analyses. It holds no per-request state and is safe for
// concurrent use.
type Engine struct {
	params   Params
	logger   *zap.Logger
	recorder Recorder
	now      func() time.Time
}

// NewEngine creates an engine with default parameters p.
func NewEngine(p Params, logger *zap.Logger) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		params: p,
		logger: logger,
		now:    time.Now,
	}, nil
}

// SetRecorder attaches a metrics recorder. Must be called before use.
func (e *Engine) SetRecorder(r Recorder) {
	e.recorder = r
}

// Params returns the engine defaults.
func (e *Engine) Params() Params {
	return e.params
}

// AnalyzeRaw normalizes raw records and analyzes them.
func (e *Engine) AnalyzeRaw(ctx context.Context, symbol string, raw []series.RawBar, p *Params) (*Report, error) {
	s, err := series.Normalize(raw)
	if err != nil {
		e.record(StatusInvalid, 0, len(raw))
		return nil, err
	}
	return e.Analyze(ctx, Request{Symbol: symbol, Series: s, Params: p})
}

// Analyze runs the pipeline over req.Series. Short history is not an
// error: families without a value at the latest bar are listed in
// Report.Insufficient and their signals are hold.
func (e *Engine) Analyze(ctx context.Context, req Request) (*Report, error) {
	start := e.now()
	report, err := e.analyze(ctx, req)
	elapsed := e.now().Sub(start).Seconds()

	switch {
	case err == nil && len(report.Insufficient) > 0:
		e.record(StatusPartial, elapsed, req.Series.Len())
	case err == nil:
		e.record(StatusOK, elapsed, req.Series.Len())
	case errors.Is(err, core.ErrInvalidInput):
		e.record(StatusInvalid, elapsed, req.Series.Len())
	default:
		e.record(StatusError, elapsed, req.Series.Len())
	}

	if err != nil {
		e.logger.Warn("analysis failed",
			zap.String("symbol", req.Symbol),
			zap.Int("bars", req.Series.Len()),
			zap.Error(err),
		)
		return nil, err
	}

	if e.recorder != nil {
		for _, s := range report.Signals.Voting() {
			e.recorder.RecordSignal(s.Indicator, string(s.Action))
		}
		e.recorder.RecordVerdict(string(report.Verdict.Verdict))
	}

	e.logger.Debug("analysis complete",
		zap.String("symbol", req.Symbol),
		zap.String("id", report.ID),
		zap.Int("bars", len(report.Dates)),
		zap.String("verdict", string(report.Verdict.Verdict)),
		zap.Strings("insufficient", report.Insufficient),
	)
	return report, nil
}

func (e *Engine) analyze(ctx context.Context, req Request) (*Report, error) {
	p := e.params
	if req.Params != nil {
		p = *req.Params
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}
	if req.Series.Len() == 0 {
		return nil, core.Invalidf("series is empty")
	}

	set, err := indicator.Compute(req.Series, p.Indicators)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, core.WrapError(core.ErrAnalysisFailed, err)
	}

	dates := req.Series.Dates()
	closes := req.Series.Closes()
	asOf := req.Series.Last().Date

	signals := classify(set, closes, p)
	for _, s := range []*core.Signal{&signals.MA, &signals.MACD, &signals.RSI, &signals.KDJ, &signals.BOLL} {
		s.Date = asOf
	}
	if err := ctx.Err(); err != nil {
		return nil, core.WrapError(core.ErrAnalysisFailed, err)
	}

	events := detectEvents(dates, set, p)
	verdict := composite.Evaluate(signals.Voting()...)

	return &Report{
		ID:          uuid.NewString(),
		Symbol:      req.Symbol,
		GeneratedAt: e.now().UTC(),
		AsOf:        asOf.Format(DateLayout),
		Dates:       formatDates(dates),
		Bars:        newBars(req.Series),
		Indicators: Indicators{
			MA:       labelled(set.MA, indicator.NameMA),
			VolumeMA: labelled(set.VolumeMA, indicator.NameVolumeMA),
			MACD:     set.MACD,
			RSI:      set.RSI,
			KDJ:      set.KDJ,
			BOLL:     set.BOLL,
		},
		Signals:      signals,
		Events:       events,
		Verdict:      verdict,
		Headline:     composite.Headline(verdict),
		Warnings:     req.Series.Warnings(),
		Insufficient: set.Missing(),
		Params:       p,
	}, nil
}

func classify(set *indicator.Set, closes []float64, p Params) Signals {
	ma := core.Hold(indicator.NameMA, "fewer than two moving averages configured")
	if periods := p.Indicators.SortedMAPeriods(); len(periods) >= 2 {
		fast, slow := periods[0], periods[1]
		ma = classifier.ClassifyMA(set.MA[fast], set.MA[slow],
			maLabel("MA", fast), maLabel("MA", slow))
	}
	return Signals{
		MA:   ma,
		MACD: classifier.ClassifyMACD(set.MACD),
		RSI:  classifier.ClassifyRSI(set.RSI, p.Signals.RSI),
		KDJ:  classifier.ClassifyKDJ(set.KDJ, p.Signals.KDJ),
		BOLL: classifier.ClassifyBOLL(closes, set.BOLL),
	}
}

// detectEvents scans every adjacent MA pair plus RSI, MACD and KDJ, and
// orders the result by bar index.
func detectEvents(dates []time.Time, set *indicator.Set, p Params) []classifier.Event {
	events := []classifier.Event{}
	periods := p.Indicators.SortedMAPeriods()
	for i := 1; i < len(periods); i++ {
		fast, slow := periods[i-1], periods[i]
		events = append(events, classifier.DetectCrosses(dates, set.MA[fast], set.MA[slow],
			maLabel("MA", fast), maLabel("MA", slow))...)
	}
	events = append(events, classifier.DetectMACDCrosses(dates, set.MACD)...)
	events = append(events, classifier.DetectKDJCrosses(dates, set.KDJ)...)
	events = append(events, classifier.DetectRSIZones(dates, set.RSI, p.Signals.RSI)...)

	sort.SliceStable(events, func(i, j int) bool { return events[i].Index < events[j].Index })
	return events
}

func (e *Engine) record(status string, duration float64, bars int) {
	if e.recorder != nil {
		e.recorder.RecordAnalysis(status, duration, bars)
	}
}
