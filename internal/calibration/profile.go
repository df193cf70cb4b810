// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package calibration

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang/geo/r3"
	"gopkg.in/yaml.v3"
)

// ProfileVersion is the current profile schema version.
const ProfileVersion = 1

// Profile is a saved calibration, so a tracker can start without keeping the
// device still.
type Profile struct {
	Version      int       `yaml:"version"`
	CalibratedAt time.Time `yaml:"calibrated_at"`
	Sensor       string    `yaml:"sensor"`
	Samples      int       `yaml:"samples"`
	AccelOffset  vec       `yaml:"accel_offset"`
	GyroOffset   vec       `yaml:"gyro_offset"`
}

// vec keeps the YAML keys lowercase.
type vec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

func toVec(v r3.Vector) vec    { return vec{X: v.X, Y: v.Y, Z: v.Z} }
func (v vec) vector() r3.Vector { return r3.Vector{X: v.X, Y: v.Y, Z: v.Z} }

// NewProfile captures a calibration result.
func NewProfile(sensor string, res Result, at time.Time) Profile {
	return Profile{
		Version:      ProfileVersion,
		CalibratedAt: at.UTC(),
		Sensor:       sensor,
		Samples:      res.N,
		AccelOffset:  toVec(res.Accel),
		GyroOffset:   toVec(res.Gyro),
	}
}

// Offsets returns the stored offsets.
func (p Profile) Offsets() Offsets {
	return Offsets{Accel: p.AccelOffset.vector(), Gyro: p.GyroOffset.vector()}
}

// SaveProfile writes p as YAML, creating parent directories.
func SaveProfile(path string, p Profile) error {
	b, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("calibration: encode profile: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("calibration: create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("calibration: write profile: %w", err)
	}
	return nil
}

// LoadProfile reads a YAML profile written by SaveProfile.
func LoadProfile(path string) (Profile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("calibration: read profile: %w", err)
	}
	var p Profile
	if err := yaml.Unmarshal(b, &p); err != nil {
		return Profile{}, fmt.Errorf("calibration: decode profile %s: %w", path, err)
	}
	if p.Version != ProfileVersion {
		return Profile{}, fmt.Errorf("calibration: profile %s has version %d, want %d", path, p.Version, ProfileVersion)
	}
	return p, nil
}
