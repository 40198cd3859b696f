// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cfgx

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// VFDConfig configures internal/vfd.Table construction.
type VFDConfig struct {
	MaxFDs      SlotCount `mapstructure:"max-fds"`
	PreferMemfd bool      `mapstructure:"prefer-memfd"`
}

// LFITConfig configures internal/lfit.Cache's fast-path ceiling.
type LFITConfig struct {
	FastPathThreshold int `mapstructure:"fast-path-threshold"`
}

// LoggingConfig configures internal/loggerx: a severity plus a rotated
// file path.
type LoggingConfig struct {
	Severity LogSeverity `mapstructure:"severity"`
	FilePath string      `mapstructure:"file-path"`
	Format   string      `mapstructure:"format"`
}

// DebugConfig mirrors cfg.DebugConfig's narrow per-subsystem trace
// toggles.
type DebugConfig struct {
	LogVFDTable bool `mapstructure:"log-vfd-table"`
	LogLFIT     bool `mapstructure:"log-lfit"`
}

// MetricsConfig configures internal/metricsx's exporter selection.
type MetricsConfig struct {
	PrometheusPort int  `mapstructure:"prometheus-port"`
	EnableOTel     bool `mapstructure:"enable-otel"`
}

// Config is the root configuration object, decoded from a YAML file
// merged with flags and env vars by viper.
type Config struct {
	VFD     VFDConfig     `mapstructure:"vfd-table"`
	LFIT    LFITConfig    `mapstructure:"lock-free-iterator"`
	Logging LoggingConfig `mapstructure:"logging"`
	Debug   DebugConfig   `mapstructure:"debug"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// DefaultConfig returns the zero-config defaults, equal to what BindFlags
// registers as each flag's default value.
func DefaultConfig() Config {
	return Config{
		VFD: VFDConfig{
			MaxFDs:      SlotCount(0x8000),
			PreferMemfd: true,
		},
		LFIT: LFITConfig{
			FastPathThreshold: 256,
		},
		Logging: LoggingConfig{
			Severity: InfoLogSeverity,
			FilePath: "",
			Format:   "text",
		},
		Metrics: MetricsConfig{
			PrometheusPort: 9090,
			EnableOTel:     false,
		},
	}
}

// BindFlags registers every Config field onto flagSet and binds it into
// v via viper.
func BindFlags(flagSet *pflag.FlagSet, v *viper.Viper) error {
	def := DefaultConfig()

	flagSet.Int("vfd-table.max-fds", int(def.VFD.MaxFDs), "maximum number of concurrently open virtual file descriptors")
	flagSet.Bool("vfd-table.prefer-memfd", def.VFD.PreferMemfd, "prefer memfd_create over /dev/null for kernel placeholder fds")
	flagSet.Int("lock-free-iterator.fast-path-threshold", def.LFIT.FastPathThreshold, "largest read size (bytes) eligible for the lock-free fast path")
	flagSet.String("logging.severity", string(def.Logging.Severity), "log severity: TRACE, DEBUG, INFO, WARNING, ERROR, OFF")
	flagSet.String("logging.file-path", def.Logging.FilePath, "path to the rotated log file; empty logs to stderr")
	flagSet.String("logging.format", def.Logging.Format, "log encoding: text or json")
	flagSet.Bool("debug.log-vfd-table", def.Debug.LogVFDTable, "trace every vfd.Table operation")
	flagSet.Bool("debug.log-lfit", def.Debug.LogLFIT, "trace every lock-free iterator cache decision")
	flagSet.Int("metrics.prometheus-port", def.Metrics.PrometheusPort, "port to serve /metrics on, 0 disables")
	flagSet.Bool("metrics.enable-otel", def.Metrics.EnableOTel, "additionally export metrics via OpenTelemetry")

	for _, name := range []string{
		"vfd-table.max-fds", "vfd-table.prefer-memfd",
		"lock-free-iterator.fast-path-threshold",
		"logging.severity", "logging.file-path", "logging.format",
		"debug.log-vfd-table", "debug.log-lfit",
		"metrics.prometheus-port", "metrics.enable-otel",
	} {
		if err := v.BindPFlag(name, flagSet.Lookup(name)); err != nil {
			return fmt.Errorf("bind flag %q: %w", name, err)
		}
	}

	return nil
}

// Decode unmarshals v into a fresh Config via DecodeHook, then runs
// Rationalize.
func Decode(v *viper.Viper) (*Config, error) {
	c := DefaultConfig()

	if err := v.Unmarshal(&c, viper.DecodeHook(DecodeHook())); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := Rationalize(&c); err != nil {
		return nil, err
	}

	return &c, nil
}
