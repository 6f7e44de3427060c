// Package sampler averages repeated raw signal readings into one measurement.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"trigator.klederson.com/internal/trilat"
)

var (
	// ErrRawSampleUnavailable means a single raw reading could not be taken.
	// Sources wrap it; the sampler skips that iteration.
	ErrRawSampleUnavailable = errors.New("raw sample unavailable")

	// ErrNoSamples means every iteration of a run failed.
	ErrNoSamples = errors.New("no raw samples collected")

	// ErrCancelled means the run was aborted through its context.
	ErrCancelled = errors.New("sampling cancelled")

	// ErrInvalidParams means the sample count or interval is not positive.
	ErrInvalidParams = errors.New("invalid sampling parameters")
)

// Reading is one raw observation from the active radio link.
type Reading struct {
	TxPowerDBm float64
	RxPowerDBm float64
}

// Source provides raw readings on demand.
type Source interface {
	// Read returns the current reading or an error wrapping ErrRawSampleUnavailable.
	Read(ctx context.Context) (Reading, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (Reading, error)

func (f SourceFunc) Read(ctx context.Context) (Reading, error) {
	return f(ctx)
}

// Progress is reported after every iteration of a run.
type Progress struct {
	Iteration int // 1-based
	Count     int
	Reading   Reading
	Err       error // non-nil when this iteration was skipped
}

// Sampler takes a series of readings from a Source and averages them.
// It keeps no state between runs.
type Sampler struct {
	source   Source
	logger   *slog.Logger
	observer func(Progress)
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithLogger sets the logger used to report skipped iterations.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sampler) {
		s.logger = logger
	}
}

// WithObserver registers a callback invoked after each iteration.
// It runs on the sampling goroutine.
func WithObserver(fn func(Progress)) Option {
	return func(s *Sampler) {
		s.observer = fn
	}
}

// New creates a Sampler reading from source.
func New(source Source, opts ...Option) *Sampler {
	s := &Sampler{
		source: source,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sample queries the source count times, pausing interval between queries,
// and returns the mean transmit and received power.
//
// Iterations whose read fails are logged and left out of the mean. If all of
// them fail the result is ErrNoSamples. Cancelling ctx aborts the run with an
// error matching both ErrCancelled and ctx.Err().
func (s *Sampler) Sample(ctx context.Context, count int, interval time.Duration) (trilat.Measurement, error) {
	if count < 1 || interval <= 0 {
		return trilat.Measurement{}, fmt.Errorf("%w: count=%d interval=%s", ErrInvalidParams, count, interval)
	}

	var txSum, rxSum float64
	ok := 0

	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for i := 1; i <= count; i++ {
		if err := ctx.Err(); err != nil {
			return trilat.Measurement{}, cancelled(err)
		}

		r, err := s.source.Read(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return trilat.Measurement{}, cancelled(ctxErr)
			}
			s.logger.Warn("skipping raw sample",
				slog.Int("iteration", i),
				slog.Int("count", count),
				slog.String("error", err.Error()))
		} else {
			txSum += r.TxPowerDBm
			rxSum += r.RxPowerDBm
			ok++
		}

		if s.observer != nil {
			s.observer(Progress{Iteration: i, Count: count, Reading: r, Err: err})
		}

		if i == count {
			break
		}
		timer.Reset(interval)
		select {
		case <-ctx.Done():
			return trilat.Measurement{}, cancelled(ctx.Err())
		case <-timer.C:
		}
	}

	if ok == 0 {
		s.logger.Error("sampling run produced no readings", slog.Int("count", count))
		return trilat.Measurement{}, fmt.Errorf("%w: all %d iterations failed", ErrNoSamples, count)
	}

	s.logger.Debug("sampling run complete",
		slog.Int("count", count),
		slog.Int("ok", ok),
		slog.Float64("tx_dbm", txSum/float64(ok)),
		slog.Float64("rx_dbm", rxSum/float64(ok)))

	return trilat.NewMeasurement(txSum/float64(ok), rxSum/float64(ok)), nil
}

// SampleInto runs Sample and stores the result on anchor. The anchor is left
// untouched if the run fails.
func (s *Sampler) SampleInto(ctx context.Context, anchor *trilat.AnchorPoint, count int, interval time.Duration) error {
	m, err := s.Sample(ctx, count, interval)
	if err != nil {
		return err
	}
	anchor.Measurement = &m
	return nil
}

// Duration is the minimum wall time of a run with the given parameters.
func Duration(count int, interval time.Duration) time.Duration {
	if count < 2 {
		return 0
	}
	return time.Duration(count-1) * interval
}

func cancelled(cause error) error {
	return fmt.Errorf("%w: %w", ErrCancelled, cause)
}
