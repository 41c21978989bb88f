package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/fsbx/pkg/codec"
)

func TestRecordOutcome(t *testing.T) {
	m := NewMetrics()

	m.RecordOutcome(codec.KindFile, OutcomeWritten, 5, time.Millisecond)
	m.RecordOutcome(codec.KindFile, OutcomeWritten, 7, time.Millisecond)
	m.RecordOutcome(codec.KindTable, OutcomeSkipped, 100, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.recordsTotal.WithLabelValues("file", OutcomeWritten)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.recordsTotal.WithLabelValues("table", OutcomeSkipped)))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.payloadBytesTotal.WithLabelValues("file")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.payloadBytesTotal.WithLabelValues("table")))
}

func TestMetricsAreIsolated(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()

	a.RecordOutcome(codec.KindFile, OutcomeDryRun, 0, 0)
	assert.Equal(t, 1.0, testutil.ToFloat64(a.recordsTotal.WithLabelValues("file", OutcomeDryRun)))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.recordsTotal.WithLabelValues("file", OutcomeDryRun)))
}

func TestReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{codec.NewFormatError(codec.BadMagic, "x"), "bad_magic"},
		{codec.NewFormatError(codec.Decompression, "x"), "decompression"},
		{codec.NewFormatError(codec.UnknownRecordKind, "x").At(4, 1), "unknown_record_kind"},
		{fmt.Errorf("wrapped: %w", codec.NewFormatError(codec.Truncated, "x")), "truncated"},
		{codec.NewFormatError(codec.MalformedHeader, "x"), "malformed_header"},
		{&codec.IntegrityError{Index: 2}, "checksum_mismatch"},
		{os.ErrPermission, "other"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Reason(tt.err), "%v", tt.err)
	}
}

func TestWriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.RecordVolume(100, 400)
	m.RecordOutcome(codec.KindTable, OutcomeWritten, 3, time.Millisecond)
	m.RecordDecodeError(&codec.IntegrityError{})

	path := filepath.Join(t.TempDir(), "fsbx.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "fsbx_volume_compressed_bytes 100")
	assert.Contains(t, text, "fsbx_volume_decompressed_bytes 400")
	assert.Contains(t, text, `fsbx_records_total{kind="table",outcome="written"} 1`)
	assert.Contains(t, text, `fsbx_decode_errors_total{reason="checksum_mismatch"} 1`)
	assert.True(t, strings.Contains(text, "fsbx_materialize_duration_seconds_bucket"))
}
