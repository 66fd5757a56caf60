// Package metrics wires up otel counters/histograms for pipeline
// observability (SPEC_FULL.md §A.5): pages, revisions, tokens, and reverts
// processed, plus a per-page duration histogram. It is a thin shim over
// go.opentelemetry.io/otel/metric, exported to stdout under --verbose and a
// no-op otherwise.
package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "github.com/mediawiki-utilities/go-mwpersistence"

// Recorder is the set of instruments the driver and per-page pipelines
// record against.
type Recorder struct {
	Pages           metric.Int64Counter
	Revisions       metric.Int64Counter
	TokensPersisted metric.Int64Counter
	Reverts         metric.Int64Counter
	PageDuration    metric.Float64Histogram
}

// Configure installs a MeterProvider with a stdout exporter when verbose is
// true; otherwise it installs nothing, leaving otel's default no-op global
// provider in place. It returns the provider's shutdown func (a no-op when
// nothing was installed).
func Configure(verbose bool) func(context.Context) error {
	if !verbose {
		return func(context.Context) error { return nil }
	}

	exporter, err := stdoutmetric.New(stdoutmetric.WithoutTimestamps())
	if err != nil {
		return func(context.Context) error { return nil }
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(5*time.Second))),
	)
	otel.SetMeterProvider(provider)
	return provider.Shutdown
}

// NewRecorder builds a Recorder from the currently installed global
// MeterProvider (a no-op if Configure was called with verbose=false).
func NewRecorder() (*Recorder, error) {
	meter := otel.Meter(meterName)

	pages, err := meter.Int64Counter("mwpersist.pages_processed")
	if err != nil {
		return nil, err
	}
	revisions, err := meter.Int64Counter("mwpersist.revisions_processed")
	if err != nil {
		return nil, err
	}
	tokens, err := meter.Int64Counter("mwpersist.tokens_persisted")
	if err != nil {
		return nil, err
	}
	reverts, err := meter.Int64Counter("mwpersist.reverts_detected")
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("mwpersist.page_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &Recorder{
		Pages:           pages,
		Revisions:       revisions,
		TokensPersisted: tokens,
		Reverts:         reverts,
		PageDuration:    duration,
	}, nil
}
