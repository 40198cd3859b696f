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

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pmemfile-go/pmemfile/common"
	"github.com/pmemfile-go/pmemfile/internal/fsapi"
	"github.com/pmemfile-go/pmemfile/internal/loggerx"
	"github.com/pmemfile-go/pmemfile/internal/metricsx"
	"github.com/pmemfile-go/pmemfile/internal/pm"
	"github.com/pmemfile-go/pmemfile/internal/vfd"
)

func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Open a PM pool, write and read back a short message, and print the vfd assigned",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo()
		},
	}
}

func runDemo() error {
	metricHandle, promHandler, metricsShutdown, err := metricsx.New(rootConfig.Metrics)
	if err != nil {
		return err
	}
	shutdown = common.JoinShutdownFunc(shutdown, metricsShutdown)
	if promHandler != nil {
		loggerx.Infof("prometheus exporter created for port %d (the demo does not serve it)", rootConfig.Metrics.PrometheusPort)
	}

	ctx, span := metricsx.Tracer().Start(context.Background(), "pmemfilectl.demo")
	defer span.End()

	fs, err := fsapi.New(vfd.Options{
		MaxFDs:      int(rootConfig.VFD.MaxFDs),
		PreferMemfd: rootConfig.VFD.PreferMemfd,
		OnRingExhaustion: func() {
			metricHandle.RingExhaustion(ctx)
		},
	})
	if err != nil {
		return err
	}
	fs.LogAccessPattern = rootConfig.Debug.LogLFIT

	pool := pm.NewPool("demo-pool")
	vinode := pm.NewVinode(0)

	fd, err := fs.OpenPM(pool, vinode, "/demo")
	if err != nil {
		return err
	}
	defer fs.Close(fd)

	if _, err := fs.Write(fd, []byte("hello from pmemfile")); err != nil {
		return err
	}
	if _, err := fs.Seek(fd, 0, 0); err != nil {
		return err
	}

	buf := make([]byte, 64)
	n, err := fs.Read(fd, buf)
	if err != nil {
		return err
	}

	// The Seek above invalidated the read cache, so this read took the
	// locked slow path.
	metricHandle.FastPathDecline(ctx, metricsx.DeclineInvalid)
	fmt.Printf("vfd=%d read %d bytes: %q\n", fd, n, string(buf[:n]))

	info, err := fs.Stat(fd)
	if err != nil {
		return err
	}
	fmt.Printf("pool=%s (%s) size=%d modtime=%s\n", pool.Name(), pool.ID(), info.Size, info.ModTime.Format("2006-01-02T15:04:05"))
	return nil
}
