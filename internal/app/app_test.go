// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap/zaptest"

	"github.com/relabs-tech/headtracker/internal/config"
	"github.com/relabs-tech/headtracker/internal/imu"
	"github.com/relabs-tech/headtracker/internal/tracker"
)

type published struct {
	topic    string
	retained bool
	payload  []byte
}

// fakePublisher records JSON payloads instead of sending them.
type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (f *fakePublisher) Publish(topic string, retained bool, v any) error {
	if f.err != nil {
		return f.err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, published{topic: topic, retained: retained, payload: b})
	return nil
}

func (f *fakePublisher) on(topic string) []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []published
	for _, m := range f.msgs {
		if m.topic == topic {
			out = append(out, m)
		}
	}
	return out
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Sensor = config.SensorMock
	cfg.CalibrationSamples = 20
	cfg.CalibrationDelayMS = 0
	return cfg
}

func newTestTracker(t *testing.T, src imu.Source, cfg *config.Config) (*tracker.HeadTracker, *clock.Mock) {
	t.Helper()
	mock := clock.NewMock()
	return tracker.New(src, cfg.FilterSpec(),
		tracker.WithClock(mock),
		tracker.WithLogger(zaptest.NewLogger(t).Sugar())), mock
}
