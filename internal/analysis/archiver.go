package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/newthinker/taengine/internal/core"
	"github.com/newthinker/taengine/internal/storage/archive"
)

// Archiver writes reports to cold storage as JSON.
type Archiver struct {
	store   archive.Storage
	logger  *zap.Logger
	onWrite func(status string)
}

// NewArchiver wraps store.
func NewArchiver(store archive.Storage, logger *zap.Logger) *Archiver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Archiver{store: store, logger: logger}
}

// SetObserver registers a callback invoked with "ok" or "error" after
// every write.
func (a *Archiver) SetObserver(fn func(status string)) {
	a.onWrite = fn
}

// Archive stores r and returns its key.
func (a *Archiver) Archive(ctx context.Context, r *Report) (string, error) {
	asOf, err := time.Parse(DateLayout, r.AsOf)
	if err != nil {
		return "", core.WrapError(core.ErrArchiveFailed, fmt.Errorf("report as_of %q: %w", r.AsOf, err))
	}
	key := archive.ReportKey(r.Symbol, asOf, r.ID)

	data, err := json.Marshal(r)
	if err != nil {
		a.observe("error")
		return "", core.WrapError(core.ErrArchiveFailed, err)
	}
	if err := a.store.Write(ctx, key, data); err != nil {
		a.observe("error")
		a.logger.Error("archiving report failed",
			zap.String("symbol", r.Symbol),
			zap.String("key", key),
			zap.Error(err),
		)
		return "", core.WrapError(core.ErrArchiveFailed, err)
	}

	a.observe("ok")
	a.logger.Debug("report archived", zap.String("key", key), zap.Int("bytes", len(data)))
	return key, nil
}

// Keys lists the archived report keys for symbol, oldest date first.
func (a *Archiver) Keys(ctx context.Context, symbol string) ([]string, error) {
	keys, err := a.store.List(ctx, archive.SymbolPrefix(symbol))
	if err != nil {
		return nil, core.WrapError(core.ErrArchiveFailed, err)
	}
	sort.Strings(keys)
	return keys, nil
}

// Load reads an archived report back.
func (a *Archiver) Load(ctx context.Context, key string) (*Report, error) {
	data, err := a.store.Read(ctx, key)
	if err != nil {
		return nil, err
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, core.WrapError(core.ErrArchiveFailed, fmt.Errorf("decoding %s: %w", key, err))
	}
	return &r, nil
}

func (a *Archiver) observe(status string) {
	if a.onWrite != nil {
		a.onWrite(status)
	}
}
