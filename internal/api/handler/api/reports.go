package api

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/newthinker/taengine/internal/analysis"
	"github.com/newthinker/taengine/internal/api/response"
	"github.com/newthinker/taengine/internal/core"
	"github.com/newthinker/taengine/internal/storage/report"
)

// DefaultListLimit applies when the client sends no limit.
const DefaultListLimit = 50

var errArchiveDisabled = errors.New("report archive is not configured")

// ReportsHandler serves stored and archived reports.
type ReportsHandler struct {
	store    report.Store
	archiver *analysis.Archiver
}

// NewReportsHandler creates a reports handler. archiver may be nil.
func NewReportsHandler(store report.Store, archiver *analysis.Archiver) *ReportsHandler {
	return &ReportsHandler{store: store, archiver: archiver}
}

// List handles GET /api/v1/reports.
func (h *ReportsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r.URL.Query())
	if err != nil {
		response.FromError(w, err)
		return
	}

	ctx := r.Context()
	reports, err := h.store.List(ctx, filter)
	if err != nil {
		response.FromError(w, err)
		return
	}
	total, err := h.store.Count(ctx, filter)
	if err != nil {
		response.FromError(w, err)
		return
	}

	summaries := make([]analysis.Summary, 0, len(reports))
	for _, rep := range reports {
		summaries = append(summaries, rep.Summary())
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"reports": summaries,
		"total":   total,
		"limit":   filter.Limit,
		"offset":  filter.Offset,
	})
}

// Get handles GET /api/v1/reports/{id}.
func (h *ReportsHandler) Get(w http.ResponseWriter, r *http.Request) {
	rep, err := h.store.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, rep)
}

// ArchiveKeys handles GET /api/v1/archive?symbol=.
func (h *ReportsHandler) ArchiveKeys(w http.ResponseWriter, r *http.Request) {
	if h.archiver == nil {
		response.FromError(w, core.WrapError(core.ErrNotFound, errArchiveDisabled))
		return
	}
	keys, err := h.archiver.Keys(r.Context(), r.URL.Query().Get("symbol"))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"keys": keys})
}

// ArchivedReport handles GET /api/v1/archive/{key...}.
func (h *ReportsHandler) ArchivedReport(w http.ResponseWriter, r *http.Request) {
	if h.archiver == nil {
		response.FromError(w, core.WrapError(core.ErrNotFound, errArchiveDisabled))
		return
	}
	rep, err := h.archiver.Load(r.Context(), r.PathValue("key"))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, rep)
}

func parseListFilter(q url.Values) (report.ListFilter, error) {
	filter := report.ListFilter{
		Symbol: q.Get("symbol"),
		Limit:  DefaultListLimit,
	}

	if v := q.Get("verdict"); v != "" {
		a := core.Action(v)
		if a != core.ActionBuy && a != core.ActionSell && a != core.ActionHold {
			return filter, core.Invalidf("verdict must be buy, sell or hold, got %q", v)
		}
		filter.Verdict = a
	}

	var err error
	if filter.From, err = parseTime(q.Get("from")); err != nil {
		return filter, core.Invalidf("from: %v", err)
	}
	if filter.To, err = parseTime(q.Get("to")); err != nil {
		return filter, core.Invalidf("to: %v", err)
	}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, core.Invalidf("limit must be a non-negative integer, got %q", v)
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, core.Invalidf("offset must be a non-negative integer, got %q", v)
		}
		filter.Offset = n
	}
	return filter, nil
}

// parseTime accepts RFC 3339 timestamps or plain dates.
func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(analysis.DateLayout, s)
}
