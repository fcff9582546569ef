package config

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// ReportingConfig controls how report date bounds are interpreted.
type ReportingConfig struct {
	// Timezone is the IANA zone whose calendar days bound report windows.
	Timezone string `mapstructure:"timezone"`
}

func DefaultReportingConfig() ReportingConfig {
	return ReportingConfig{Timezone: "UTC"}
}

type ReportingConfigHolder struct {
	current atomic.Value // holds reportingSnapshot
}

type reportingSnapshot struct {
	cfg      ReportingConfig
	location *time.Location
}

// NewReportingConfigHolder reads reporting.yml and keeps it hot-reloaded.
func NewReportingConfigHolder(log *zap.Logger) (*ReportingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("reporting")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/tourbill")
	v.AddConfigPath(".")

	v.SetEnvPrefix("TOURBILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultReportingConfig()
	v.SetDefault("reporting.timezone", defaults.Timezone)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg ReportingConfig
	if err := v.UnmarshalKey("reporting", &cfg); err != nil {
		return nil, err
	}

	holder := &ReportingConfigHolder{}
	if err := holder.Store(cfg); err != nil {
		return nil, err
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated ReportingConfig
		if err := v.UnmarshalKey("reporting", &updated); err != nil {
			log.Warn("reporting config reload failed", zap.Error(err))
			return
		}
		if err := holder.Store(updated); err != nil {
			log.Warn("invalid reporting config ignored", zap.Error(err))
			return
		}
		log.Info("reporting config reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

// NewStaticReportingConfig returns a holder that never reloads.
func NewStaticReportingConfig(cfg ReportingConfig) (*ReportingConfigHolder, error) {
	holder := &ReportingConfigHolder{}
	if err := holder.Store(cfg); err != nil {
		return nil, err
	}
	return holder, nil
}

// Store validates cfg and swaps it in.
func (h *ReportingConfigHolder) Store(cfg ReportingConfig) error {
	tz := strings.TrimSpace(cfg.Timezone)
	if tz == "" {
		tz = DefaultReportingConfig().Timezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("reporting.timezone %q: %w", tz, err)
	}
	cfg.Timezone = tz
	h.current.Store(reportingSnapshot{cfg: cfg, location: loc})
	return nil
}

func (h *ReportingConfigHolder) Get() ReportingConfig {
	return h.snapshot().cfg
}

// Location returns the time zone used for report day boundaries.
func (h *ReportingConfigHolder) Location() *time.Location {
	return h.snapshot().location
}

func (h *ReportingConfigHolder) snapshot() reportingSnapshot {
	if h == nil {
		return reportingSnapshot{cfg: DefaultReportingConfig(), location: time.UTC}
	}
	snap, ok := h.current.Load().(reportingSnapshot)
	if !ok {
		return reportingSnapshot{cfg: DefaultReportingConfig(), location: time.UTC}
	}
	return snap
}
