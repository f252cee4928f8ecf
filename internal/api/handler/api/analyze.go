package api

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/newthinker/taengine/internal/analysis"
	"github.com/newthinker/taengine/internal/api/response"
	"github.com/newthinker/taengine/internal/core"
	"github.com/newthinker/taengine/internal/notifier"
	"github.com/newthinker/taengine/internal/storage/report"
)

const (
	// ArchiveKeyHeader names the archive object written for a report.
	ArchiveKeyHeader = "X-Archive-Key"
	// PartialResultHeader carries INSUFFICIENT_HISTORY when some families
	// have no value at the latest bar. The status stays 200.
	PartialResultHeader = "X-Partial-Result"
)

// AnalyzeHandler runs the full pipeline over posted bars.
type AnalyzeHandler struct {
	engine   *analysis.Engine
	store    report.Store
	archiver *analysis.Archiver
	logger   *zap.Logger
	onStored func(n int)
	notify   *notifier.Dispatcher
}

// NewAnalyzeHandler creates an analyze handler. store and archiver may
// be nil.
func NewAnalyzeHandler(engine *analysis.Engine, store report.Store, archiver *analysis.Archiver, logger *zap.Logger) *AnalyzeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyzeHandler{engine: engine, store: store, archiver: archiver, logger: logger}
}

// SetStoredObserver registers a callback receiving the store size after
// every save.
func (h *AnalyzeHandler) SetStoredObserver(fn func(n int)) {
	h.onStored = fn
}

// SetDispatcher enables verdict notifications. Delivery runs in the
// background and never delays the response.
func (h *AnalyzeHandler) SetDispatcher(d *notifier.Dispatcher) {
	h.notify = d
}

// Analyze handles POST /api/v1/analyze.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req barsRequest
	if err := decodeJSON(r, &req); err != nil {
		response.FromError(w, err)
		return
	}
	if req.Symbol == "" {
		response.FromError(w, core.Invalidf("symbol is required"))
		return
	}

	params, err := overrideParams(h.engine.Params(), req.Params)
	if err != nil {
		response.FromError(w, err)
		return
	}

	ctx := r.Context()
	rep, err := h.engine.AnalyzeRaw(ctx, req.Symbol, req.Bars, params)
	if err != nil {
		response.FromError(w, err)
		return
	}

	if h.store != nil {
		if _, err := h.store.Save(ctx, rep); err != nil {
			h.logger.Warn("storing report failed", zap.String("id", rep.ID), zap.Error(err))
		} else if h.onStored != nil {
			if n, err := h.store.Count(ctx, report.ListFilter{}); err == nil {
				h.onStored(n)
			}
		}
	}

	if h.archiver != nil {
		if key, err := h.archiver.Archive(ctx, rep); err == nil {
			w.Header().Set(ArchiveKeyHeader, key)
		}
	}

	if len(rep.Insufficient) > 0 {
		w.Header().Set(PartialResultHeader, core.ErrInsufficientHistory.Code)
	}

	if h.notify != nil {
		go h.notify.Dispatch(context.WithoutCancel(ctx), rep)
	}

	response.JSON(w, http.StatusOK, rep)
}
