// Package config loads taengine configuration from YAML files with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/newthinker/taengine/internal/analysis"
	"github.com/newthinker/taengine/internal/classifier"
	"github.com/newthinker/taengine/internal/core"
	"github.com/newthinker/taengine/internal/indicator"
	"github.com/newthinker/taengine/internal/notifier/webhook"
	"github.com/newthinker/taengine/internal/similarity"
	"github.com/newthinker/taengine/internal/storage/archive"
)

// EnvPrefix prefixes environment overrides, e.g. TAENGINE_SERVER_PORT.
const EnvPrefix = "TAENGINE"

type Config struct {
	Server     ServerConfig          `mapstructure:"server"`
	Log        LogConfig             `mapstructure:"log"`
	Indicators indicator.Params      `mapstructure:"indicators"`
	Signals    classifier.Thresholds `mapstructure:"signals"`
	Metrics    MetricsConfig         `mapstructure:"metrics"`
	Storage    StorageConfig         `mapstructure:"storage"`
	Notify     NotifyConfig          `mapstructure:"notify"`
	Similarity similarity.Config     `mapstructure:"similarity"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	APIKey          string        `mapstructure:"api_key"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LogConfig overrides the level implied by server mode when Level is set.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// StorageConfig holds the report store and archive settings.
type StorageConfig struct {
	Reports ReportsConfig  `mapstructure:"reports"`
	Archive archive.Config `mapstructure:"archive"`
}

// ReportsConfig sizes the in-memory report store.
type ReportsConfig struct {
	MaxSize int `mapstructure:"max_size"`
}

// NotifyConfig selects which verdicts are pushed to webhooks.
type NotifyConfig struct {
	Enabled  bool             `mapstructure:"enabled"`
	Actions  []string         `mapstructure:"actions"`
	Cooldown time.Duration    `mapstructure:"cooldown"`
	Webhooks []webhook.Config `mapstructure:"webhooks"`
}

// VerdictActions converts Actions to core actions.
func (n NotifyConfig) VerdictActions() []core.Action {
	out := make([]core.Action, len(n.Actions))
	for i, a := range n.Actions {
		out[i] = core.Action(a)
	}
	return out
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Mode:            "release",
			MaxBodyBytes:    4 << 20,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Indicators: indicator.DefaultParams(),
		Signals:    classifier.DefaultThresholds(),
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Storage: StorageConfig{
			Reports: ReportsConfig{MaxSize: 500},
			Archive: archive.Config{
				Type: archive.BackendLocalFS,
				Path: "./data/archive",
			},
		},
		Notify: NotifyConfig{
			Actions:  []string{string(core.ActionBuy), string(core.ActionSell)},
			Cooldown: time.Hour,
		},
		Similarity: similarity.DefaultConfig(),
	}
}

// setDefaults registers every default with viper so that partial files
// and environment overrides resolve against them.
func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.mode", d.Server.Mode)
	v.SetDefault("server.api_key", d.Server.APIKey)
	v.SetDefault("server.max_body_bytes", d.Server.MaxBodyBytes)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("log.level", d.Log.Level)

	v.SetDefault("indicators.ma_periods", d.Indicators.MAPeriods)
	v.SetDefault("indicators.volume_ma_periods", d.Indicators.VolumeMAPeriods)
	v.SetDefault("indicators.rsi_period", d.Indicators.RSIPeriod)
	v.SetDefault("indicators.macd.fast", d.Indicators.MACD.Fast)
	v.SetDefault("indicators.macd.slow", d.Indicators.MACD.Slow)
	v.SetDefault("indicators.macd.signal", d.Indicators.MACD.Signal)
	v.SetDefault("indicators.macd.seed", string(d.Indicators.MACD.Seed))
	v.SetDefault("indicators.kdj.period", d.Indicators.KDJ.Period)
	v.SetDefault("indicators.kdj.k_period", d.Indicators.KDJ.KPeriod)
	v.SetDefault("indicators.kdj.d_period", d.Indicators.KDJ.DPeriod)
	v.SetDefault("indicators.boll.period", d.Indicators.BOLL.Period)
	v.SetDefault("indicators.boll.multiplier", d.Indicators.BOLL.Multiplier)

	v.SetDefault("signals.rsi.overbought", d.Signals.RSI.Overbought)
	v.SetDefault("signals.rsi.oversold", d.Signals.RSI.Oversold)
	v.SetDefault("signals.rsi.center", d.Signals.RSI.Center)
	v.SetDefault("signals.kdj.overbought", d.Signals.KDJ.Overbought)
	v.SetDefault("signals.kdj.oversold", d.Signals.KDJ.Oversold)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.path", d.Metrics.Path)

	v.SetDefault("storage.reports.max_size", d.Storage.Reports.MaxSize)
	v.SetDefault("storage.archive.enabled", d.Storage.Archive.Enabled)
	v.SetDefault("storage.archive.type", d.Storage.Archive.Type)
	v.SetDefault("storage.archive.path", d.Storage.Archive.Path)
	for _, k := range []string{"bucket", "endpoint", "region", "access_key", "secret_key", "prefix"} {
		v.SetDefault("storage.archive.s3."+k, "")
	}

	v.SetDefault("notify.enabled", d.Notify.Enabled)
	v.SetDefault("notify.actions", d.Notify.Actions)
	v.SetDefault("notify.cooldown", d.Notify.Cooldown)

	v.SetDefault("similarity.window", d.Similarity.Window)
	v.SetDefault("similarity.top_k", d.Similarity.TopK)
	v.SetDefault("similarity.candidates", d.Similarity.Candidates)
}

// Load reads configuration from path. An empty path yields the defaults
// plus environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// AnalysisParams returns the engine parameters.
func (c *Config) AnalysisParams() analysis.Params {
	return analysis.Params{Indicators: c.Indicators, Signals: c.Signals}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}
	switch c.Server.Mode {
	case "", "release", "debug":
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("mode must be release or debug, got %q", c.Server.Mode))
	}
	if c.Server.MaxBodyBytes < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("max_body_bytes cannot be negative, got %d", c.Server.MaxBodyBytes))
	}

	if err := c.AnalysisParams().Validate(); err != nil {
		return core.WrapError(core.ErrConfigInvalid, err)
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("metrics path must start with /, got %q", c.Metrics.Path))
	}

	if c.Storage.Reports.MaxSize < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("storage.reports.max_size must be positive, got %d", c.Storage.Reports.MaxSize))
	}
	if err := c.Storage.Archive.Validate(); err != nil {
		return err
	}
	if err := c.Similarity.Validate(); err != nil {
		return core.WrapError(core.ErrConfigInvalid, err)
	}
	return c.Notify.Validate()
}

// Validate checks the notification settings when enabled.
func (n NotifyConfig) Validate() error {
	if !n.Enabled {
		return nil
	}
	if len(n.Webhooks) == 0 {
		return core.WrapError(core.ErrConfigMissing, fmt.Errorf("notify enabled without webhooks"))
	}
	for _, a := range n.VerdictActions() {
		if !a.IsDirectional() && a != core.ActionHold {
			return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown notify action %q", a))
		}
	}
	for i, w := range n.Webhooks {
		if w.URL == "" {
			return core.WrapError(core.ErrConfigMissing, fmt.Errorf("notify.webhooks[%d].url required", i))
		}
	}
	if n.Cooldown < 0 {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("notify.cooldown cannot be negative"))
	}
	return nil
}
