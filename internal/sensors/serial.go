// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	nmea "github.com/adrianmo/go-nmea"
	"github.com/golang/geo/r3"
	serial "github.com/jacobsa/go-serial/serial"
	"go.uber.org/zap"

	"github.com/relabs-tech/headtracker/internal/imu"
)

// TypeIMU is the sentence type of the IMU bridge, sent with talker "HT":
//
//	$HTIMU,<ax g>,<ay g>,<az g>,<gx °/s>,<gy °/s>,<gz °/s>,<temp °C>*hh
const TypeIMU = "IMU"

// IMUSentence is one parsed $HTIMU sentence.
type IMUSentence struct {
	nmea.BaseSentence
	Accel       r3.Vector
	Gyro        r3.Vector
	Temperature float64
}

// Sample converts the sentence to an imu.Sample.
func (s IMUSentence) Sample() imu.Sample {
	return imu.Sample{Accel: s.Accel, Gyro: s.Gyro, Temperature: s.Temperature}
}

func parseIMUSentence(s nmea.BaseSentence) (nmea.Sentence, error) {
	p := nmea.NewParser(s)
	m := IMUSentence{
		BaseSentence: s,
		Accel: r3.Vector{
			X: p.Float64(0, "accel x"),
			Y: p.Float64(1, "accel y"),
			Z: p.Float64(2, "accel z"),
		},
		Gyro: r3.Vector{
			X: p.Float64(3, "gyro x"),
			Y: p.Float64(4, "gyro y"),
			Z: p.Float64(5, "gyro z"),
		},
		Temperature: p.Float64(6, "temperature"),
	}
	return m, p.Err()
}

// SerialSource reads IMU sentences streamed by a microcontroller bridge.
type SerialSource struct {
	rc     io.ReadCloser
	r      *bufio.Reader
	parser *nmea.SentenceParser
	logger *zap.SugaredLogger
}

// OpenSerial opens portName at baud 8N1 and returns a source reading from it.
func OpenSerial(portName string, baud int, logger *zap.SugaredLogger) (*SerialSource, error) {
	port, err := serial.Open(serial.OpenOptions{
		PortName:              portName,
		BaudRate:              uint(baud),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", portName, err)
	}
	src := NewSerialSource(port, logger)
	src.logger.Infof("serial: port opened on %s at %d baud", portName, baud)
	return src, nil
}

// NewSerialSource reads sentences from rc, which it owns.
func NewSerialSource(rc io.ReadCloser, logger *zap.SugaredLogger) *SerialSource {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &SerialSource{
		rc: rc,
		r:  bufio.NewReader(rc),
		parser: &nmea.SentenceParser{
			CustomParsers: map[string]nmea.ParserFunc{TypeIMU: parseIMUSentence},
		},
		logger: logger,
	}
}

// Read implements imu.Source. It blocks until the next valid IMU sentence.
// Other sentences and lines that fail to parse are skipped; read errors,
// including io.EOF, are returned.
func (s *SerialSource) Read() (imu.Sample, error) {
	for {
		line, err := s.r.ReadString('\n')
		if err != nil {
			return imu.Sample{}, fmt.Errorf("serial: read: %w", err)
		}

		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "$") {
			continue
		}

		sentence, err := s.parser.Parse(line)
		if err != nil {
			s.logger.Debugf("serial: skipping %q: %v", line, err)
			continue
		}
		m, ok := sentence.(IMUSentence)
		if !ok {
			s.logger.Debugf("serial: skipping %s sentence", sentence.DataType())
			continue
		}
		return m.Sample(), nil
	}
}

// Close closes the port.
func (s *SerialSource) Close() error {
	return s.rc.Close()
}
