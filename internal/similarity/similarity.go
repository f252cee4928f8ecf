// Package similarity finds stored price curves shaped like a query curve.
// Candidates come from a k-d tree over coarse shape features and are
// re-ranked by dynamic time warping on z-normalized closes.
package similarity

import (
	"context"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/newthinker/taengine/internal/analysis"
	"github.com/newthinker/taengine/internal/core"
	"github.com/newthinker/taengine/internal/series"
)

// Config sizes the index and the search.
type Config struct {
	Window     int `mapstructure:"window" json:"window"`
	TopK       int `mapstructure:"top_k" json:"top_k"`
	Candidates int `mapstructure:"candidates" json:"candidates"`
}

func DefaultConfig() Config {
	return Config{Window: 20, TopK: 3, Candidates: 50}
}

func (c Config) Validate() error {
	if c.Window < 2 {
		return core.Invalidf("similarity window must be at least 2, got %d", c.Window)
	}
	return c.Options().Validate()
}

// Options returns the configured search options.
func (c Config) Options() Options {
	return Options{TopK: c.TopK, Candidates: c.Candidates}
}

// Options bound one search. Zero fields take the defaults.
type Options struct {
	TopK       int `json:"top_k"`
	Candidates int `json:"candidates"`
}

func (o Options) Validate() error {
	if o.TopK < 0 || o.Candidates < 0 {
		return core.Invalidf("top_k and candidates cannot be negative")
	}
	return nil
}

func (o Options) withDefaults() Options {
	d := DefaultConfig()
	if o.TopK == 0 {
		o.TopK = d.TopK
	}
	if o.Candidates == 0 {
		o.Candidates = d.Candidates
	}
	if o.Candidates < o.TopK {
		o.Candidates = o.TopK
	}
	return o
}

// Entry is one indexed curve.
type Entry struct {
	Symbol string    `json:"symbol"`
	AsOf   string    `json:"as_of,omitempty"`
	Closes []float64 `json:"closes"`
}

// Match is a search hit. Lower distance is closer.
type Match struct {
	Entry
	Distance float64 `json:"distance"`
}

// Index holds the most recent Window closes of each entry.
type Index struct {
	window  int
	entries []Entry
	norm    [][]float64
	tree    *featureTree
	logger  *zap.Logger
}

// NewIndex indexes entries. Entries shorter than window or holding values
// outside the series price range are skipped.
func NewIndex(window int, entries []Entry, logger *zap.Logger) (*Index, error) {
	if window < 2 {
		return nil, core.Invalidf("similarity window must be at least 2, got %d", window)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ix := &Index{window: window, logger: logger}
	var features [][]float64
	for _, e := range entries {
		if len(e.Closes) < window {
			logger.Debug("skipping short curve",
				zap.String("symbol", e.Symbol),
				zap.Int("closes", len(e.Closes)),
			)
			continue
		}
		tail := append([]float64(nil), e.Closes[len(e.Closes)-window:]...)
		if !inRange(tail) {
			logger.Warn("skipping out-of-range curve", zap.String("symbol", e.Symbol))
			continue
		}
		e.Closes = tail
		ix.entries = append(ix.entries, e)
		ix.norm = append(ix.norm, ZNormalize(tail))
		features = append(features, Features(tail))
	}
	if len(features) > 0 {
		ix.tree = newFeatureTree(features)
	}
	return ix, nil
}

// Len is the number of indexed entries.
func (ix *Index) Len() int { return len(ix.entries) }

// Window is the indexed curve length.
func (ix *Index) Window() int { return ix.window }

// Search ranks indexed curves by shape distance to query. A query of a
// different length is resampled to the window first.
func (ix *Index) Search(ctx context.Context, query []float64, opts Options) ([]Match, error) {
	if len(query) < 2 {
		return nil, core.Invalidf("query needs at least 2 points, got %d", len(query))
	}
	if !inRange(query) {
		return nil, core.Invalidf("query values must be finite and within %g", series.MaxPrice)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	matches := []Match{}
	if ix.tree == nil {
		return matches, nil
	}

	q := Resample(query, ix.window)
	ids := ix.tree.nearest(Features(q), opts.Candidates)
	normQ := ZNormalize(q)
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		matches = append(matches, Match{Entry: ix.entries[id], Distance: DTW(normQ, ix.norm[id])})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	if len(matches) > opts.TopK {
		matches = matches[:opts.TopK]
	}

	ix.logger.Debug("similarity search",
		zap.Int("query_points", len(query)),
		zap.Int("candidates", len(ids)),
		zap.Int("matches", len(matches)),
	)
	return matches, nil
}

// FromReports turns reports into entries, keeping the first report seen
// per symbol. Pass reports newest first to index the latest curves.
func FromReports(reports []*analysis.Report) []Entry {
	seen := make(map[string]bool, len(reports))
	var out []Entry
	for _, r := range reports {
		if r == nil || seen[r.Symbol] {
			continue
		}
		seen[r.Symbol] = true
		closes := make([]float64, len(r.Bars.Quads))
		for i, q := range r.Bars.Quads {
			closes[i] = q[1]
		}
		out = append(out, Entry{Symbol: r.Symbol, AsOf: r.AsOf, Closes: closes})
	}
	return out
}

func inRange(vs []float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.Abs(v) > series.MaxPrice {
			return false
		}
	}
	return true
}
