// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"go.uber.org/zap"

	"github.com/relabs-tech/headtracker/internal/calibration"
	"github.com/relabs-tech/headtracker/internal/config"
	"github.com/relabs-tech/headtracker/internal/imu"
	"github.com/relabs-tech/headtracker/internal/sensors"
	"github.com/relabs-tech/headtracker/internal/tracker"
)

// stillable is implemented by sources that can be asked to hold still, such
// as the mock.
type stillable interface {
	SetMoving(bool)
}

// openTracker opens the configured sensor and wraps it in a tracker.
func openTracker(cfg *config.Config, logger *zap.SugaredLogger) (*tracker.HeadTracker, imu.Source, error) {
	src, err := sensors.Open(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return tracker.New(src, cfg.FilterSpec(), tracker.WithLogger(logger)), src, nil
}

// calibrate runs a calibration and, when path is set, stores the profile.
func calibrate(t *tracker.HeadTracker, src imu.Source, cfg *config.Config, samples int, path string, logger *zap.SugaredLogger) error {
	if s, ok := src.(stillable); ok {
		s.SetMoving(false)
		defer s.SetMoving(true)
	}
	if samples <= 0 {
		samples = cfg.CalibrationSamples
	}
	if err := t.Calibrate(samples, cfg.CalibrationDelay()); err != nil {
		return err
	}
	if path == "" {
		return nil
	}

	res, _ := t.LastCalibration()
	if err := calibration.SaveProfile(path, calibration.NewProfile(cfg.Sensor, res, time.Now())); err != nil {
		return err
	}
	logger.Infof("calibration: profile saved to %s", path)
	return nil
}

// loadOrCalibrate installs the offsets from CALIBRATION_FILE, or calibrates
// (and writes the file) when it does not exist yet.
func loadOrCalibrate(t *tracker.HeadTracker, src imu.Source, cfg *config.Config, logger *zap.SugaredLogger) error {
	if cfg.CalibrationFile != "" {
		p, err := calibration.LoadProfile(cfg.CalibrationFile)
		switch {
		case err == nil:
			if p.Sensor != cfg.Sensor {
				logger.Warnf("calibration: profile %s was recorded on %s, running %s", cfg.CalibrationFile, p.Sensor, cfg.Sensor)
			}
			t.SetOffsets(p.Offsets())
			logger.Infof("calibration: loaded %s (%d samples, %s)", cfg.CalibrationFile, p.Samples, p.CalibratedAt.Format(time.RFC3339))
			return nil
		case errors.Is(err, fs.ErrNotExist):
			logger.Infof("calibration: %s not found, calibrating", cfg.CalibrationFile)
		default:
			return err
		}
	}
	if err := calibrate(t, src, cfg, 0, cfg.CalibrationFile, logger); err != nil {
		return fmt.Errorf("initial calibration: %w", err)
	}
	return nil
}
