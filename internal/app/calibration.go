// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/relabs-tech/headtracker/internal/calibration"
	"github.com/relabs-tech/headtracker/internal/config"
)

// RunCalibration calibrates the configured sensor once and writes the
// profile to out. samples <= 0 uses CALIBRATION_SAMPLES.
func RunCalibration(cfg *config.Config, samples int, out string, w io.Writer, logger *zap.SugaredLogger) error {
	if out == "" {
		return fmt.Errorf("calibration: no output file")
	}
	t, src, err := openTracker(cfg, logger)
	if err != nil {
		return err
	}
	defer t.Close()

	if err := calibrate(t, src, cfg, samples, out, logger); err != nil {
		return err
	}

	res, _ := t.LastCalibration()
	fmt.Fprintf(w, "samples:      %d\n", res.N)
	fmt.Fprintf(w, "accel offset: X=%+.4f Y=%+.4f Z=%+.4f g  (stddev %.4f %.4f %.4f)\n",
		res.Accel.X, res.Accel.Y, res.Accel.Z, res.AccelStdDev.X, res.AccelStdDev.Y, res.AccelStdDev.Z)
	fmt.Fprintf(w, "gyro offset:  X=%+.3f Y=%+.3f Z=%+.3f °/s (stddev %.3f %.3f %.3f)\n",
		res.Gyro.X, res.Gyro.Y, res.Gyro.Z, res.GyroStdDev.X, res.GyroStdDev.Y, res.GyroStdDev.Z)
	if !res.Still(calibration.DefaultGyroTolerance, calibration.DefaultAccelTolerance) {
		fmt.Fprintln(w, "WARNING: the sensor moved during calibration, consider running it again")
	}
	fmt.Fprintf(w, "written to:   %s\n", out)
	return nil
}
