package api

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/newthinker/taengine/internal/api/response"
	"github.com/newthinker/taengine/internal/core"
	"github.com/newthinker/taengine/internal/similarity"
	"github.com/newthinker/taengine/internal/storage/report"
)

type similarityRequest struct {
	Curve []float64 `json:"curve"`
	similarity.Options
}

// SimilarityResult is the body of a similarity search response.
type SimilarityResult struct {
	Matches   []similarity.Match `json:"matches"`
	Indexed   int                `json:"indexed"`
	LatencyMS float64            `json:"latency_ms"`
}

// SimilarityHandler searches the latest stored curve of every symbol.
type SimilarityHandler struct {
	store  report.Store
	cfg    similarity.Config
	logger *zap.Logger
}

func NewSimilarityHandler(store report.Store, cfg similarity.Config, logger *zap.Logger) *SimilarityHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SimilarityHandler{store: store, cfg: cfg, logger: logger}
}

// Search handles POST /api/v1/similarity.
func (h *SimilarityHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req similarityRequest
	if err := decodeJSON(r, &req); err != nil {
		response.FromError(w, err)
		return
	}
	if len(req.Curve) == 0 {
		response.FromError(w, core.Invalidf("curve is required"))
		return
	}
	opts := req.Options
	if opts.TopK == 0 {
		opts.TopK = h.cfg.TopK
	}
	if opts.Candidates == 0 {
		opts.Candidates = h.cfg.Candidates
	}

	start := time.Now()
	ctx := r.Context()
	reports, err := h.store.List(ctx, report.ListFilter{})
	if err != nil {
		response.FromError(w, err)
		return
	}
	ix, err := similarity.NewIndex(h.cfg.Window, similarity.FromReports(reports), h.logger)
	if err != nil {
		response.FromError(w, err)
		return
	}
	matches, err := ix.Search(ctx, req.Curve, opts)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, SimilarityResult{
		Matches:   matches,
		Indexed:   ix.Len(),
		LatencyMS: float64(time.Since(start).Microseconds()) / 1000,
	})
}
