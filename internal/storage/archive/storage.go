// Package archive stores analysis reports in cold storage, either on the
// local filesystem or in an S3-compatible bucket.
package archive

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/newthinker/taengine/internal/core"
)

// Storage is a flat key/blob store. Keys use forward slashes.
type Storage interface {
	Write(ctx context.Context, key string, data []byte) error
	// Read returns core.ErrNotFound when key is absent.
	Read(ctx context.Context, key string) ([]byte, error)
	// List returns every key under prefix, relative to the store root.
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Backend names.
const (
	BackendLocalFS = "localfs"
	BackendS3      = "s3"
)

// Config selects and configures a backend.
type Config struct {
	Enabled bool     `mapstructure:"enabled"`
	Type    string   `mapstructure:"type"`
	Path    string   `mapstructure:"path"`
	S3      S3Config `mapstructure:"s3"`
}

func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	switch c.Type {
	case BackendLocalFS:
		if c.Path == "" {
			return core.WrapError(core.ErrConfigMissing, fmt.Errorf("archive path required for localfs"))
		}
	case BackendS3:
		if c.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing, fmt.Errorf("archive bucket required for s3"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown archive type %q", c.Type))
	}
	return nil
}

// New builds the configured backend.
func New(cfg Config) (Storage, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Type {
	case BackendS3:
		return NewS3(cfg.S3)
	default:
		return NewLocalFS(cfg.Path)
	}
}

// ReportKey is the archive key of a report:
// reports/<symbol>/<yyyy-mm-dd>/<id>.json.
func ReportKey(symbol string, asOf time.Time, id string) string {
	return fmt.Sprintf("reports/%s/%s/%s.json", keySegment(symbol), asOf.Format("2006-01-02"), keySegment(id))
}

// SymbolPrefix is the key prefix of every report for symbol.
func SymbolPrefix(symbol string) string {
	return "reports/" + keySegment(symbol) + "/"
}

func keySegment(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || s == "." || s == ".." {
		return "_"
	}
	return strings.NewReplacer("/", "_", "\\", "_").Replace(s)
}
