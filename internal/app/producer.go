// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/relabs-tech/headtracker/internal/config"
	"github.com/relabs-tech/headtracker/internal/imu"
	"github.com/relabs-tech/headtracker/internal/tracker"
)

// statusInterval is how often the producer publishes a Status.
const statusInterval = time.Second

// producer owns the tracker: every tracker call happens on the goroutine
// running loop.
type producer struct {
	cfg      *config.Config
	tracker  *tracker.HeadTracker
	src      imu.Source
	pub      publisher
	commands chan Command
	logger   *zap.SugaredLogger

	lastErr error
}

func newProducer(cfg *config.Config, t *tracker.HeadTracker, src imu.Source, pub publisher, logger *zap.SugaredLogger) *producer {
	return &producer{
		cfg:      cfg,
		tracker:  t,
		src:      src,
		pub:      pub,
		commands: make(chan Command, 4),
		logger:   logger,
	}
}

// onCommand is the MQTT callback for the command topic. It only queues.
func (p *producer) onCommand(payload []byte) {
	cmd, err := ParseCommand(payload)
	if err != nil {
		p.logger.Warnf("producer: ignoring command %q: %v", payload, err)
		return
	}
	select {
	case p.commands <- cmd:
	default:
		p.logger.Warnf("producer: command queue full, dropping %s", cmd.Action)
	}
}

func (p *producer) loop(ctx context.Context, ticks, status <-chan time.Time) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-p.commands:
			p.handle(cmd)
		case <-ticks:
			p.tick()
		case now := <-status:
			p.publishStatus(now)
		}
	}
}

// tick reads one orientation and publishes it with the corrected sample.
// Read errors are logged and the tick is skipped.
func (p *producer) tick() {
	pose, err := p.tracker.Orientation()
	if err != nil {
		if p.lastErr == nil || p.lastErr.Error() != err.Error() {
			p.logger.Warnf("producer: %v", err)
		}
		p.lastErr = err
		return
	}
	if p.lastErr != nil {
		p.logger.Infof("producer: sensor reads recovered")
		p.lastErr = nil
	}

	if err := p.pub.Publish(p.cfg.TopicPose, true, pose); err != nil {
		p.logger.Warnf("producer: %v", err)
		return
	}
	if err := p.pub.Publish(p.cfg.TopicIMU, false, p.tracker.LastSample()); err != nil {
		p.logger.Warnf("producer: %v", err)
	}
}

func (p *producer) handle(cmd Command) {
	p.logger.Infof("producer: command %s", cmd.Action)
	switch cmd.Action {
	case ActionReset:
		p.tracker.Reset()
	case ActionCalibrate:
		if err := calibrate(p.tracker, p.src, p.cfg, cmd.Samples, p.cfg.CalibrationFile, p.logger); err != nil {
			p.logger.Errorf("producer: calibration failed: %v", err)
			p.lastErr = err
		}
	}
	p.publishStatus(time.Now())
}

func (p *producer) publishStatus(now time.Time) {
	if err := p.pub.Publish(p.cfg.TopicStatus, true, statusOf(p.tracker, now, p.lastErr)); err != nil {
		p.logger.Warnf("producer: %v", err)
	}
}

// RunProducer reads the configured sensor every SAMPLE_INTERVAL and publishes
// the orientation over MQTT until SIGINT or SIGTERM.
func RunProducer(cfg *config.Config, logger *zap.SugaredLogger) error {
	t, src, err := openTracker(cfg, logger)
	if err != nil {
		return err
	}
	defer t.Close()

	if err := loadOrCalibrate(t, src, cfg, logger); err != nil {
		return err
	}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDProducer, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	p := newProducer(cfg, t, src, mqttPublisher{client: client}, logger)
	if err := subscribe(client, cfg.TopicCommand, p.onCommand, logger); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(cfg.SampleIntervalDuration())
	defer ticker.Stop()
	statusTicker := time.NewTicker(statusInterval)
	defer statusTicker.Stop()

	logger.Infof("producer: publishing %s every %s on %s", t.FilterName(), cfg.SampleIntervalDuration(), cfg.TopicPose)
	p.loop(ctx, ticker.C, statusTicker.C)
	logger.Infof("producer: shutting down")
	return nil
}
