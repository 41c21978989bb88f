package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ssargent/fsbx/pkg/codec"
	"github.com/ssargent/fsbx/pkg/metrics"
	"github.com/ssargent/fsbx/pkg/volume"
)

// Summary counts what a run did
type Summary struct {
	Records  int   // records decoded
	Filtered int   // records rejected by the filter
	Written  int   // records written to disk
	Skipped  int   // records whose destination already existed
	DryRun   int   // records that would have been written
	Bytes    int64 // payload bytes written
}

// Pipeline decodes a volume on the calling goroutine and hands records to a
// pool of writers. Records are routed by destination so that two records
// for the same path are written in stream order by the same worker.
type Pipeline struct {
	Materializer *Materializer
	Filter       volume.Filter
	Workers      int
	Metrics      *metrics.Metrics
	Logger       zerolog.Logger

	// OnRecord, when set, is called from the decoding goroutine for every
	// record that passes the filter, before it is queued for writing.
	OnRecord func(codec.Record)
}

type counters struct {
	written, skipped, dryRun atomic.Int64
	bytes                    atomic.Int64
}

// Run extracts every matching record of vol. The first decode or write error
// stops the run; files written before it stay on disk.
func (p *Pipeline) Run(ctx context.Context, vol *volume.Volume) (Summary, error) {
	workers := p.Workers
	if workers < 1 {
		workers = 1
	}
	if p.Metrics != nil {
		p.Metrics.RecordVolume(vol.CompressedLen(), vol.Len())
	}

	var c counters
	var summary Summary

	queues := make([]chan codec.Record, workers)
	for i := range queues {
		queues[i] = make(chan codec.Record, 16)
	}

	// a failed write cancels ctx before it is reported
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	for i := range queues {
		queue := queues[i]
		g.Go(func() error {
			for rec := range queue {
				if gctx.Err() != nil {
					// drain without writing
					continue
				}
				start := time.Now()
				if err := p.write(rec, &c); err != nil {
					cancel()
					if p.Metrics != nil {
						p.Metrics.RecordOutcome(rec.Kind(), metrics.OutcomeError, 0, time.Since(start))
					}
					return err
				}
			}
			return nil
		})
	}

	decodeErr := p.decode(gctx, vol.Records(), queues, &summary)
	for _, q := range queues {
		close(q)
	}
	writeErr := g.Wait()

	summary.Written = int(c.written.Load())
	summary.Skipped = int(c.skipped.Load())
	summary.DryRun = int(c.dryRun.Load())
	summary.Bytes = c.bytes.Load()

	// a write error cancels gctx, which surfaces in decode as a context error
	if writeErr != nil {
		return summary, writeErr
	}
	if decodeErr != nil {
		return summary, decodeErr
	}
	return summary, nil
}

func (p *Pipeline) decode(ctx context.Context, dec *volume.Decoder, queues []chan codec.Record, summary *Summary) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := dec.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			if p.Metrics != nil {
				p.Metrics.RecordDecodeError(err)
			}
			return err
		}
		summary.Records++

		if !p.Filter.Match(rec) {
			summary.Filtered++
			if p.Metrics != nil {
				p.Metrics.RecordOutcome(rec.Kind(), metrics.OutcomeFiltered, 0, 0)
			}
			continue
		}
		if p.OnRecord != nil {
			p.OnRecord(rec)
		}

		shard := xxhash.Sum64String(p.Materializer.Destination(rec)) % uint64(len(queues))
		select {
		case queues[shard] <- rec:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (p *Pipeline) write(rec codec.Record, c *counters) error {
	start := time.Now()
	outcome, err := p.Materializer.Materialize(rec)
	if err != nil {
		return fmt.Errorf("record %s: %w", rec, err)
	}

	label := metrics.OutcomeWritten
	switch outcome {
	case OutcomeWritten:
		c.written.Add(1)
		c.bytes.Add(int64(len(rec.Payload())))
	case OutcomeSkipped:
		c.skipped.Add(1)
		label = metrics.OutcomeSkipped
	case OutcomeDryRun:
		c.dryRun.Add(1)
		label = metrics.OutcomeDryRun
	}
	if p.Metrics != nil {
		p.Metrics.RecordOutcome(rec.Kind(), label, len(rec.Payload()), time.Since(start))
	}
	return nil
}

// IsFatalFormat reports whether err came from a malformed or corrupt volume
// rather than from the filesystem.
func IsFatalFormat(err error) bool {
	var fe *codec.FormatError
	return errors.As(err, &fe) || errors.Is(err, codec.ErrChecksumMismatch)
}
