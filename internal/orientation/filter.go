// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"fmt"
	"time"

	"github.com/relabs-tech/headtracker/internal/imu"
)

// MaxStep is the longest interval a filter integrates across. Longer gaps
// (stalls, suspended process) and non-positive ones (clock going backwards)
// leave the estimate untouched.
const MaxStep = time.Second

// Filter is a stateful orientation estimator.
//
// A Filter is owned by exactly one caller; it is not safe for concurrent use.
type Filter interface {
	// Update folds one offset-corrected sample taken at now into the
	// estimate and returns it.
	Update(s imu.Sample, now time.Time) Pose
	// Reset returns the filter to its construction state.
	Reset()
	// Name is a human readable filter name for logs and status.
	Name() string
	// Rejected counts updates ignored because of a degenerate time step
	// since construction or the last Reset.
	Rejected() uint64
}

// Spec selects and parameterizes a filter. The set of implementations is
// closed: ComplementarySpec and KalmanSpec.
type Spec interface {
	newFilter() Filter
	fmt.Stringer
}

// ComplementarySpec configures a ComplementaryFilter.
type ComplementarySpec struct {
	// Alpha is the gyro weight in (0, 1). Higher follows fast motion more
	// closely but drifts more; lower is smoother and leans on gravity.
	Alpha float64
}

// KalmanSpec configures a KalmanFilter.
type KalmanSpec struct {
	ProcessNoise     float64 // Q
	MeasurementNoise float64 // R, must be > 0
}

// Default filter parameters.
const (
	DefaultAlpha            = 0.96
	DefaultProcessNoise     = 0.001
	DefaultMeasurementNoise = 0.03
)

// DefaultComplementary returns the default complementary configuration.
func DefaultComplementary() ComplementarySpec {
	return ComplementarySpec{Alpha: DefaultAlpha}
}

// DefaultKalman returns the default Kalman configuration.
func DefaultKalman() KalmanSpec {
	return KalmanSpec{ProcessNoise: DefaultProcessNoise, MeasurementNoise: DefaultMeasurementNoise}
}

func (s ComplementarySpec) newFilter() Filter { return NewComplementary(s.Alpha) }

func (s ComplementarySpec) String() string {
	return fmt.Sprintf("complementary(alpha=%.3f)", s.Alpha)
}

func (s KalmanSpec) newFilter() Filter { return NewKalman(s.ProcessNoise, s.MeasurementNoise) }

func (s KalmanSpec) String() string {
	return fmt.Sprintf("kalman(Q=%g, R=%g)", s.ProcessNoise, s.MeasurementNoise)
}

// New builds the filter described by spec.
func New(spec Spec) Filter {
	return spec.newFilter()
}

type stepResult int

const (
	stepSeed stepResult = iota
	stepOK
	stepRejected
)

// stepClock tracks the time of the previous update and decides whether the
// current one may integrate.
type stepClock struct {
	last     time.Time
	started  bool
	rejected uint64
}

// advance records now and returns the elapsed seconds. The previous time is
// replaced even when the step is rejected.
func (c *stepClock) advance(now time.Time) (float64, stepResult) {
	if !c.started {
		c.last = now
		c.started = true
		return 0, stepSeed
	}
	dt := now.Sub(c.last)
	c.last = now
	if dt <= 0 || dt > MaxStep {
		c.rejected++
		return 0, stepRejected
	}
	return dt.Seconds(), stepOK
}

func (c *stepClock) reset() {
	*c = stepClock{}
}
