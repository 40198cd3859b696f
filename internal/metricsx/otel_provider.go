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

package metricsx

import (
	"context"

	"go.opentelemetry.io/otel"
	otelprometheus "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/pmemfile-go/pmemfile/common"
)

// bootstrapOTel installs a real SDK-backed MeterProvider and
// TracerProvider as the OpenTelemetry globals, so the instruments
// NewOTel registers (and the debug span pmemfilectl opens around a
// demo run, via Tracer) actually export somewhere instead of recording
// against otel's no-op default. The meter side exports through an OTel
// Prometheus exporter registered with the Prometheus client's default
// registry, which is not the OpenCensus exporter's registry behind the
// handler New returns; the trace side writes to stdout, the cheapest
// real exporter for local runs.
func bootstrapOTel() (common.ShutdownFn, error) {
	metricExporter, err := otelprometheus.New()
	if err != nil {
		return nil, err
	}
	meterProvider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(metricExporter))
	otel.SetMeterProvider(meterProvider)

	traceExporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}
	tracerProvider := sdktrace.NewTracerProvider(sdktrace.WithBatcher(traceExporter))
	otel.SetTracerProvider(tracerProvider)

	return common.JoinShutdownFunc(
		func(ctx context.Context) error { return meterProvider.Shutdown(ctx) },
		func(ctx context.Context) error { return tracerProvider.Shutdown(ctx) },
	), nil
}

// Tracer returns the pmemfile tracer off whatever TracerProvider
// bootstrapOTel installed (or otel's no-op default if OTel was never
// enabled), for wrapping a demo run in a span.
func Tracer() trace.Tracer {
	return otel.Tracer("pmemfile")
}
