// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package tracker ties a sensor, its calibration offsets and one orientation
// filter together into a head tracker.
package tracker

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/relabs-tech/headtracker/internal/calibration"
	"github.com/relabs-tech/headtracker/internal/imu"
	"github.com/relabs-tech/headtracker/internal/orientation"
)

// ErrClosed is returned by operations on a closed tracker.
var ErrClosed = errors.New("tracker: closed")

// State is the tracker lifecycle state.
type State int

const (
	Uninitialized State = iota
	Calibrating
	Tracking
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Calibrating:
		return "calibrating"
	case Tracking:
		return "tracking"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// progressEvery is how often Calibrate logs progress, in samples.
const progressEvery = 100

// Stats are cumulative counters for diagnostics.
type Stats struct {
	Updates      uint64 `json:"updates"`
	Rejected     uint64 `json:"rejected"` // updates ignored for a degenerate time step
	Calibrations uint64 `json:"calibrations"`
}

// HeadTracker reads samples from one source, applies calibration offsets and
// feeds one orientation filter.
//
// Every method takes the tracker lock, so a HeadTracker may be shared between
// goroutines, but operations never overlap: a Calibrate in progress blocks
// Orientation for its whole duration.
type HeadTracker struct {
	mu sync.Mutex

	src     imu.Source
	filter  orientation.Filter
	offsets calibration.Offsets
	state   State
	closed  bool

	lastCal    calibration.Result
	haveCal    bool
	lastSample imu.Sample

	clock  clock.Clock
	logger *zap.SugaredLogger

	stats               Stats
	rejectedBeforeReset uint64 // rejections counted by the filter before its last reset
}

// Option configures a HeadTracker.
type Option func(*HeadTracker)

// WithClock sets the time source used to stamp updates and pace calibration.
func WithClock(c clock.Clock) Option {
	return func(t *HeadTracker) { t.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(t *HeadTracker) { t.logger = l }
}

// New creates a tracker reading from src with the filter described by spec.
// The filter choice is fixed for the tracker's lifetime.
func New(src imu.Source, spec orientation.Spec, opts ...Option) *HeadTracker {
	t := &HeadTracker{
		src:    src,
		filter: orientation.New(spec),
		clock:  clock.New(),
		logger: zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = zap.NewNop().Sugar()
	}
	t.logger.Infof("tracker: initialized with %s filter (%s)", t.filter.Name(), spec)
	return t
}

// Calibrate reads sampleCount samples, pausing delay between reads, and
// replaces the offsets with their average. The device must rest flat and
// still, Z up, for about sampleCount*delay.
//
// On a read error the previous offsets and state are kept.
func (t *HeadTracker) Calibrate(sampleCount int, delay time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrClosed
	}
	if sampleCount <= 0 {
		return fmt.Errorf("tracker: calibrate with %d samples: %w", sampleCount, calibration.ErrNoSamples)
	}
	if sampleCount > calibration.MaxSamples {
		return fmt.Errorf("tracker: calibrate with %d samples: at most %d allowed", sampleCount, calibration.MaxSamples)
	}

	prev := t.state
	t.state = Calibrating
	t.logger.Infof("tracker: calibrating, keep the sensor still for %.1fs", (time.Duration(sampleCount) * delay).Seconds())

	samples := make([]imu.Sample, 0, sampleCount)
	for i := 0; i < sampleCount; i++ {
		s, err := t.src.Read()
		if err != nil {
			t.state = prev
			return fmt.Errorf("tracker: calibration read %d/%d: %w", i+1, sampleCount, err)
		}
		samples = append(samples, s)

		if delay > 0 {
			t.clock.Sleep(delay)
		}
		if (i+1)%progressEvery == 0 {
			t.logger.Infof("tracker: calibration progress %.0f%%", float64(i+1)/float64(sampleCount)*100)
		}
	}

	res, err := calibration.Compute(samples)
	if err != nil {
		t.state = prev
		return fmt.Errorf("tracker: %w", err)
	}
	if !res.Still(calibration.DefaultGyroTolerance, calibration.DefaultAccelTolerance) {
		t.logger.Warnf("tracker: sensor moved during calibration (gyro stddev %.3f/%.3f/%.3f °/s, accel stddev %.4f/%.4f/%.4f g)",
			res.GyroStdDev.X, res.GyroStdDev.Y, res.GyroStdDev.Z,
			res.AccelStdDev.X, res.AccelStdDev.Y, res.AccelStdDev.Z)
	}

	t.offsets = res.Offsets
	t.lastCal, t.haveCal = res, true
	t.state = Tracking
	t.stats.Calibrations++
	t.logger.Infof("tracker: calibration complete, accel offset X=%.4f Y=%.4f Z=%.4f, gyro offset X=%.4f Y=%.4f Z=%.4f",
		res.Accel.X, res.Accel.Y, res.Accel.Z, res.Gyro.X, res.Gyro.Y, res.Gyro.Z)
	return nil
}

// Orientation reads one sample, corrects it and returns the filtered
// orientation. Sensor errors are returned as-is (wrapped); nothing is retried.
//
// Tracking without a calibration is allowed and uses zero offsets.
func (t *HeadTracker) Orientation() (orientation.Pose, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return orientation.Pose{}, ErrClosed
	}

	raw, err := t.src.Read()
	if err != nil {
		return orientation.Pose{}, fmt.Errorf("tracker: read sample: %w", err)
	}

	t.lastSample = t.offsets.Apply(raw)
	before := t.filter.Rejected()
	pose := t.filter.Update(t.lastSample, t.clock.Now())
	t.stats.Updates++
	if t.filter.Rejected() != before {
		t.logger.Debugf("tracker: ignored update with degenerate time step, holding %+v", pose)
	}
	t.state = Tracking
	return pose, nil
}

// Reset clears the filter state. Calibration offsets are kept.
func (t *HeadTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rejectedBeforeReset += t.filter.Rejected()
	t.filter.Reset()
	t.logger.Infof("tracker: %s filter reset", t.filter.Name())
}

// RawSample reads one sample without offsets and without touching the filter.
func (t *HeadTracker) RawSample() (imu.Sample, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return imu.Sample{}, ErrClosed
	}
	s, err := t.src.Read()
	if err != nil {
		return imu.Sample{}, fmt.Errorf("tracker: read sample: %w", err)
	}
	return s, nil
}

// Offsets returns the current calibration offsets.
func (t *HeadTracker) Offsets() calibration.Offsets {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.offsets
}

// SetOffsets installs previously computed offsets, e.g. from a saved
// profile, and moves the tracker to Tracking.
func (t *HeadTracker) SetOffsets(o calibration.Offsets) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.offsets = o
	t.state = Tracking
}

// LastCalibration returns the statistics of the most recent successful
// Calibrate. ok is false until one has completed.
func (t *HeadTracker) LastCalibration() (res calibration.Result, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastCal, t.haveCal
}

// LastSample returns the offset-corrected sample behind the latest
// Orientation.
func (t *HeadTracker) LastSample() imu.Sample {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastSample
}

// State returns the lifecycle state.
func (t *HeadTracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// FilterName returns the active filter's name.
func (t *HeadTracker) FilterName() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.filter.Name()
}

// Stats returns the diagnostic counters.
func (t *HeadTracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.stats
	s.Rejected = t.rejectedBeforeReset + t.filter.Rejected()
	return s
}

// Close releases the source if it holds resources. Further reads fail with
// ErrClosed.
func (t *HeadTracker) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	if c, ok := t.src.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("tracker: close source: %w", err)
		}
	}
	return nil
}
