// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// ./cmd/calibration/main.go
//
// Static calibration of the configured IMU. Keep the sensor flat, Z up and
// still while it runs. The accelerometer and gyro offsets are averaged over
// the samples and written as a YAML profile that the producer loads at
// startup (CALIBRATION_FILE).
//
// Run:
//
//	go run ./cmd/calibration -config headtracker_config.txt -samples 500
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/relabs-tech/headtracker/internal/app"
	"github.com/relabs-tech/headtracker/internal/config"
)

func main() {
	configPath := flag.String("config", "headtracker_config.txt", "Path to configuration file")
	samples := flag.Int("samples", 0, "Number of samples (default CALIBRATION_SAMPLES)")
	out := flag.String("out", "", "Profile output path (default CALIBRATION_FILE)")
	yes := flag.Bool("y", false, "Do not wait for Enter before sampling")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *out == "" {
		*out = cfg.CalibrationFile
	}
	if *out == "" {
		*out = "headtracker_calibration.yaml"
	}

	logger, err := app.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	fmt.Println("=== Static IMU calibration ===")
	fmt.Printf("Sensor: %s. Place it flat, Z axis up, and do not touch it.\n", cfg.Sensor)
	if !*yes {
		fmt.Print("Press Enter to start... ")
		bufio.NewReader(os.Stdin).ReadString('\n')
	}

	if err := app.RunCalibration(cfg, *samples, *out, os.Stdout, logger); err != nil {
		logger.Fatalf("calibration failed: %v", err)
	}
}
