// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/relabs-tech/headtracker/internal/calibration"
	"github.com/relabs-tech/headtracker/internal/tracker"
)

// Command actions accepted on the command topic.
const (
	ActionReset     = "reset"
	ActionCalibrate = "calibrate"
)

// Command is a request to the producer, e.g. {"action":"calibrate","samples":500}.
type Command struct {
	Action string `json:"action"`
	// Samples overrides CALIBRATION_SAMPLES for a calibrate command.
	Samples int `json:"samples,omitempty"`
}

// ParseCommand decodes and validates a command payload.
func ParseCommand(payload []byte) (Command, error) {
	var c Command
	if err := json.Unmarshal(payload, &c); err != nil {
		return Command{}, fmt.Errorf("command: %w", err)
	}
	switch c.Action {
	case ActionReset, ActionCalibrate:
	default:
		return Command{}, fmt.Errorf("command: unknown action %q", c.Action)
	}
	if c.Samples < 0 {
		return Command{}, fmt.Errorf("command: negative sample count %d", c.Samples)
	}
	if c.Samples > calibration.MaxSamples {
		return Command{}, fmt.Errorf("command: sample count %d exceeds %d", c.Samples, calibration.MaxSamples)
	}
	return c, nil
}

// Status is published periodically on the status topic.
type Status struct {
	State   string              `json:"state"`
	Filter  string              `json:"filter"`
	Stats   tracker.Stats       `json:"stats"`
	Offsets calibration.Offsets `json:"offsets"`
	Time    time.Time           `json:"time"`
	// Error is the last read error, cleared by the next good read.
	Error string `json:"error,omitempty"`
}

func statusOf(t *tracker.HeadTracker, now time.Time, lastErr error) Status {
	s := Status{
		State:   t.State().String(),
		Filter:  t.FilterName(),
		Stats:   t.Stats(),
		Offsets: t.Offsets(),
		Time:    now.UTC(),
	}
	if lastErr != nil {
		s.Error = lastErr.Error()
	}
	return s
}
