package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/newthinker/taengine/internal/config"
	"github.com/newthinker/taengine/internal/notifier/webhook"
	"github.com/newthinker/taengine/internal/storage/archive"
)

func TestBuildDependencies_Defaults(t *testing.T) {
	cfg := config.Defaults()

	deps, err := buildDependencies(cfg, zap.NewNop())
	require.NoError(t, err)

	assert.NotNil(t, deps.Engine)
	assert.NotNil(t, deps.Store)
	assert.NotNil(t, deps.Metrics, "metrics enabled by default")
	assert.Nil(t, deps.Archiver)
	assert.Nil(t, deps.Notifier)
}

func TestBuildDependencies_Everything(t *testing.T) {
	cfg := config.Defaults()
	cfg.Storage.Archive = archive.Config{Enabled: true, Type: archive.BackendLocalFS, Path: t.TempDir()}
	cfg.Notify.Enabled = true
	cfg.Notify.Webhooks = []webhook.Config{{Name: "a", URL: "http://a.local"}, {Name: "b", URL: "http://b.local"}}

	deps, err := buildDependencies(cfg, zap.NewNop())
	require.NoError(t, err)

	assert.NotNil(t, deps.Archiver)
	assert.NotNil(t, deps.Notifier)
}

func TestBuildDependencies_DuplicateWebhook(t *testing.T) {
	cfg := config.Defaults()
	cfg.Notify.Enabled = true
	cfg.Notify.Webhooks = []webhook.Config{{URL: "http://a.local"}, {URL: "http://b.local"}}

	_, err := buildDependencies(cfg, zap.NewNop())
	assert.Error(t, err, "both default to the name webhook")
}

func TestBuildDependencies_InvalidParams(t *testing.T) {
	cfg := config.Defaults()
	cfg.Indicators.RSIPeriod = 0

	_, err := buildDependencies(cfg, zap.NewNop())
	assert.Error(t, err)
}
