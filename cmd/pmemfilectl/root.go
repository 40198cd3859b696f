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

// Package main is pmemfilectl, the operator-facing CLI: it loads
// configuration via cobra/pflag/viper, then exercises
// internal/fsapi.FileSystem directly. A real deployment intercepts
// syscalls and routes PM-backed fds here; this binary stands in for
// that shim during manual testing and demos.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pmemfile-go/pmemfile/common"
	"github.com/pmemfile-go/pmemfile/internal/cfgx"
	"github.com/pmemfile-go/pmemfile/internal/loggerx"
)

var (
	cfgFile string
	v       = viper.New()
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pmemfilectl",
		Short: "Exercise the pmemfile virtual file-descriptor table and lock-free read path",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd)
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a YAML config file")
	if err := cfgx.BindFlags(cmd.PersistentFlags(), v); err != nil {
		panic(err) // flag registration only fails on a programming error
	}

	cmd.AddCommand(newDemoCmd())
	return cmd
}

func loadConfig(cmd *cobra.Command) error {
	v.SetEnvPrefix("PMEMFILE")
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	}

	cfg, err := cfgx.Decode(v)
	if err != nil {
		return err
	}

	if err := loggerx.InitLogFile(cfg.Logging); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	loggerx.Infof("pmemfilectl starting: %s", cfg.String())

	rootConfig = cfg
	return nil
}

var rootConfig *cfgx.Config

// shutdown tears down process-wide resources InitLogFile and the
// metrics exporters (internal/metricsx.New, wired in runDemo) acquired
// at startup, in the order main defers them.
var shutdown = common.JoinShutdownFunc(func(_ context.Context) error {
	return loggerx.Close()
})

func main() {
	defer func() { _ = shutdown(context.Background()) }()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
