// Package metrics collects per-run extraction counters with Prometheus.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ssargent/fsbx/pkg/codec"
)

// Record outcomes
const (
	OutcomeWritten  = "written"
	OutcomeSkipped  = "skipped"
	OutcomeDryRun   = "dry_run"
	OutcomeFiltered = "filtered"
	OutcomeError    = "error"
)

// Metrics holds the Prometheus collectors for one extraction run. Each
// instance owns its registry so runs and tests never share state.
type Metrics struct {
	registry *prometheus.Registry

	recordsTotal        *prometheus.CounterVec
	payloadBytesTotal   *prometheus.CounterVec
	decodeErrorsTotal   *prometheus.CounterVec
	materializeDuration *prometheus.HistogramVec
	decompressedBytes   prometheus.Gauge
	compressedBytes     prometheus.Gauge
}

// NewMetrics creates and registers all collectors
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		recordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fsbx_records_total",
				Help: "Total number of records processed, by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),

		payloadBytesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fsbx_payload_bytes_total",
				Help: "Total payload bytes written to disk",
			},
			[]string{"kind"},
		),

		decodeErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fsbx_decode_errors_total",
				Help: "Total number of fatal decode errors, by reason",
			},
			[]string{"reason"},
		),

		materializeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fsbx_materialize_duration_seconds",
				Help:    "Time spent writing one record to disk",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),

		decompressedBytes: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "fsbx_volume_decompressed_bytes",
				Help: "Size of the decompressed record stream",
			},
		),

		compressedBytes: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "fsbx_volume_compressed_bytes",
				Help: "Size of the gzip payload in the volume",
			},
		),
	}
}

// Registry exposes the collectors, mostly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordVolume records the sizes of an opened volume
func (m *Metrics) RecordVolume(compressed, decompressed int) {
	m.compressedBytes.Set(float64(compressed))
	m.decompressedBytes.Set(float64(decompressed))
}

// RecordOutcome records what happened to one record
func (m *Metrics) RecordOutcome(kind codec.Kind, outcome string, payloadBytes int, duration time.Duration) {
	m.recordsTotal.WithLabelValues(string(kind), outcome).Inc()
	if outcome == OutcomeWritten {
		m.payloadBytesTotal.WithLabelValues(string(kind)).Add(float64(payloadBytes))
	}
	if duration > 0 {
		m.materializeDuration.WithLabelValues(string(kind)).Observe(duration.Seconds())
	}
}

// RecordDecodeError classifies a fatal decode error
func (m *Metrics) RecordDecodeError(err error) {
	m.decodeErrorsTotal.WithLabelValues(Reason(err)).Inc()
}

// Reason maps an error onto a short, bounded label value
func Reason(err error) string {
	var fe *codec.FormatError
	switch {
	case errors.Is(err, codec.ErrChecksumMismatch):
		return "checksum_mismatch"
	case errors.As(err, &fe):
		switch fe.Kind {
		case codec.BadMagic:
			return "bad_magic"
		case codec.Decompression:
			return "decompression"
		case codec.UnknownRecordKind:
			return "unknown_record_kind"
		case codec.Truncated:
			return "truncated"
		case codec.MalformedHeader:
			return "malformed_header"
		}
	}
	return "other"
}

// WriteTextfile writes the current values in the Prometheus text format,
// suitable for the node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
