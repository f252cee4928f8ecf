package archive

import (
	"errors"
	"testing"
	"time"

	"github.com/newthinker/taengine/internal/core"
)

func TestReportKey(t *testing.T) {
	asOf := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		symbol string
		id     string
		want   string
	}{
		{"600519", "abc", "reports/600519/2024-03-01/abc.json"},
		{"BTC/USDT", "abc", "reports/BTC_USDT/2024-03-01/abc.json"},
		{"", "abc", "reports/_/2024-03-01/abc.json"},
		{"..", "../x", "reports/_/2024-03-01/.._x.json"},
	}
	for _, tt := range tests {
		if got := ReportKey(tt.symbol, asOf, tt.id); got != tt.want {
			t.Errorf("ReportKey(%q, %q) = %q, want %q", tt.symbol, tt.id, got, tt.want)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr *core.Error
	}{
		{"disabled", Config{}, nil},
		{"localfs", Config{Enabled: true, Type: BackendLocalFS, Path: "/tmp/x"}, nil},
		{"localfs without path", Config{Enabled: true, Type: BackendLocalFS}, core.ErrConfigMissing},
		{"s3 without bucket", Config{Enabled: true, Type: BackendS3}, core.ErrConfigMissing},
		{"unknown", Config{Enabled: true, Type: "ftp"}, core.ErrConfigInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNew_LocalFS(t *testing.T) {
	s, err := New(Config{Enabled: true, Type: BackendLocalFS, Path: t.TempDir()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := s.(*LocalFS); !ok {
		t.Errorf("expected *LocalFS, got %T", s)
	}
}
