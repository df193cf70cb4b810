package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/relabs-tech/headtracker/internal/config"
	"github.com/relabs-tech/headtracker/internal/imu"
	"github.com/relabs-tech/headtracker/internal/orientation"
)

func formatPose(p orientation.Pose) string {
	return fmt.Sprintf("[POSE]  ROLL=%6.2f  PITCH=%6.2f  YAW=%7.2f", p.Roll, p.Pitch, p.Yaw)
}

func formatSample(s imu.Sample) string {
	return fmt.Sprintf("[IMU ]  ax=%6.3f ay=%6.3f az=%6.3f  gx=%7.2f gy=%7.2f gz=%7.2f  t=%5.1f°C",
		s.Accel.X, s.Accel.Y, s.Accel.Z, s.Gyro.X, s.Gyro.Y, s.Gyro.Z, s.Temperature)
}

func formatStatus(s Status) string {
	line := fmt.Sprintf("[STAT]  %s %s  updates=%d rejected=%d calibrations=%d",
		s.State, s.Filter, s.Stats.Updates, s.Stats.Rejected, s.Stats.Calibrations)
	if s.Error != "" {
		line += "  error=" + s.Error
	}
	return line
}

// printer decodes a payload into T and prints it with format.
func printer[T any](w io.Writer, name string, format func(T) string, logger *zap.SugaredLogger) func([]byte) {
	return func(payload []byte) {
		var v T
		if err := json.Unmarshal(payload, &v); err != nil {
			logger.Warnf("console: %s unmarshal error: %v", name, err)
			return
		}
		fmt.Fprintln(w, format(v))
	}
}

// RunConsoleMQTT prints pose, sample and status messages until SIGINT or
// SIGTERM.
func RunConsoleMQTT(cfg *config.Config, logger *zap.SugaredLogger) error {
	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDConsole, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	subs := []struct {
		topic   string
		handler func([]byte)
	}{
		{cfg.TopicPose, printer(os.Stdout, "pose", formatPose, logger)},
		{cfg.TopicIMU, printer(os.Stdout, "imu", formatSample, logger)},
		{cfg.TopicStatus, printer(os.Stdout, "status", formatStatus, logger)},
	}
	for _, s := range subs {
		if err := subscribe(client, s.topic, s.handler, logger); err != nil {
			return err
		}
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Infof("console: shutting down")
	return nil
}
