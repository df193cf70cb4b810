package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/relabs-tech/headtracker/internal/calibration"
	"github.com/relabs-tech/headtracker/internal/orientation"
)

// Supported SENSOR values.
const (
	SensorMPU6050 = "mpu6050"
	SensorMPU9250 = "mpu9250"
	SensorSerial  = "serial"
	SensorMock    = "mock"
)

// Supported FILTER values.
const (
	FilterComplementary = "complementary"
	FilterKalman        = "kalman"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker           string
	MQTTClientIDProducer string
	MQTTClientIDWeb      string
	MQTTClientIDConsole  string

	// Topics
	TopicPose    string
	TopicIMU     string
	TopicCommand string
	TopicStatus  string

	// Sensor selection: mpu6050, mpu9250, serial or mock
	Sensor string

	// MPU-6050 over I2C
	MPU6050I2CBus  string
	MPU6050I2CAddr uint16

	// MPU-9250 over SPI
	MPU9250SPIDevice string
	MPU9250CSPin     string

	// IMU Sensor Ranges
	// Accelerometer: 0=±2g, 1=±4g, 2=±8g, 3=±16g
	IMUAccelRange byte
	// Gyroscope: 0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s
	IMUGyroRange byte

	// Serial IMU bridge
	SerialPort     string
	SerialBaudRate int

	// Orientation filter
	Filter                 string
	FilterAlpha            float64
	KalmanProcessNoise     float64
	KalmanMeasurementNoise float64

	// Calibration
	CalibrationSamples int
	CalibrationDelayMS int
	CalibrationFile    string

	// Timing
	SampleInterval     int // milliseconds
	ConsoleLogInterval int // milliseconds

	// Web Server
	WebServerPort int

	// Logging: debug, info, warn or error
	LogLevel string
}

// Default returns a Config populated with the values used for keys missing
// from the file.
func Default() *Config {
	return &Config{
		MQTTBroker:             "tcp://localhost:1883",
		MQTTClientIDProducer:   "headtracker-producer",
		MQTTClientIDWeb:        "headtracker-web",
		MQTTClientIDConsole:    "headtracker-console",
		TopicPose:              "headtracker/pose",
		TopicIMU:               "headtracker/imu",
		TopicCommand:           "headtracker/command",
		TopicStatus:            "headtracker/status",
		Sensor:                 SensorMPU6050,
		MPU6050I2CAddr:         0x68,
		SerialBaudRate:         115200,
		Filter:                 FilterComplementary,
		FilterAlpha:            orientation.DefaultAlpha,
		KalmanProcessNoise:     orientation.DefaultProcessNoise,
		KalmanMeasurementNoise: orientation.DefaultMeasurementNoise,
		CalibrationSamples:     300,
		CalibrationDelayMS:     5,
		SampleInterval:         20,
		ConsoleLogInterval:     500,
		WebServerPort:          8080,
		LogLevel:               "info",
	}
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: only reachable through InitGlobal and Get.
//   - configOnce: ensures InitGlobal() only runs once, even if called multiple times.
//   - configMu: RWMutex; write lock for initialization, read lock for Get().
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads the configuration file and returns a Config struct.
// Keys that are not present keep their Default value.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Default()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value

	// Topics
	case "TOPIC_POSE":
		c.TopicPose = value
	case "TOPIC_IMU":
		c.TopicIMU = value
	case "TOPIC_COMMAND":
		c.TopicCommand = value
	case "TOPIC_STATUS":
		c.TopicStatus = value

	// Sensor
	case "SENSOR":
		c.Sensor = strings.ToLower(value)
	case "MPU6050_I2C_BUS":
		c.MPU6050I2CBus = value
	case "MPU6050_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid MPU6050_I2C_ADDR %q: %w", value, err)
		}
		c.MPU6050I2CAddr = uint16(addr)
	case "MPU9250_SPI_DEVICE":
		c.MPU9250SPIDevice = value
	case "MPU9250_CS_PIN":
		c.MPU9250CSPin = value

	// IMU Sensor Ranges
	case "IMU_ACCEL_RANGE":
		rangeVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_ACCEL_RANGE %q: %w", value, err)
		}
		if rangeVal < 0 || rangeVal > 3 {
			return fmt.Errorf("IMU_ACCEL_RANGE must be 0-3 (0=±2g, 1=±4g, 2=±8g, 3=±16g), got %d", rangeVal)
		}
		c.IMUAccelRange = byte(rangeVal)
	case "IMU_GYRO_RANGE":
		rangeVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_GYRO_RANGE %q: %w", value, err)
		}
		if rangeVal < 0 || rangeVal > 3 {
			return fmt.Errorf("IMU_GYRO_RANGE must be 0-3 (0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s), got %d", rangeVal)
		}
		c.IMUGyroRange = byte(rangeVal)

	// Serial
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD_RATE":
		c.SerialBaudRate, err = parseInt(key, value)

	// Filter
	case "FILTER":
		c.Filter = strings.ToLower(value)
	case "FILTER_ALPHA":
		c.FilterAlpha, err = parseFloat(key, value)
	case "KALMAN_PROCESS_NOISE":
		c.KalmanProcessNoise, err = parseFloat(key, value)
	case "KALMAN_MEASUREMENT_NOISE":
		c.KalmanMeasurementNoise, err = parseFloat(key, value)

	// Calibration
	case "CALIBRATION_SAMPLES":
		c.CalibrationSamples, err = parseInt(key, value)
	case "CALIBRATION_DELAY_MS":
		c.CalibrationDelayMS, err = parseInt(key, value)
	case "CALIBRATION_FILE":
		c.CalibrationFile = value

	// Timing
	case "SAMPLE_INTERVAL":
		c.SampleInterval, err = parseInt(key, value)
	case "CONSOLE_LOG_INTERVAL":
		c.ConsoleLogInterval, err = parseInt(key, value)

	// Web Server
	case "WEB_SERVER_PORT":
		c.WebServerPort, err = parseInt(key, value)

	case "LOG_LEVEL":
		c.LogLevel = strings.ToLower(value)

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return err
}

func parseInt(key, value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return v, nil
}

func parseFloat(key, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return v, nil
}

// validate checks that all required fields are set and consistent.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}

	switch c.Sensor {
	case SensorMPU6050:
		if c.MPU6050I2CAddr == 0 || c.MPU6050I2CAddr > 0x7F {
			return fmt.Errorf("MPU6050_I2C_ADDR must be a 7-bit address, got %#x", c.MPU6050I2CAddr)
		}
	case SensorMPU9250:
		if c.MPU9250SPIDevice == "" {
			return fmt.Errorf("MPU9250_SPI_DEVICE is required for SENSOR=%s", c.Sensor)
		}
	case SensorSerial:
		if c.SerialPort == "" {
			return fmt.Errorf("SERIAL_PORT is required for SENSOR=%s", c.Sensor)
		}
		if c.SerialBaudRate <= 0 {
			return fmt.Errorf("SERIAL_BAUD_RATE must be positive, got %d", c.SerialBaudRate)
		}
	case SensorMock:
	default:
		return fmt.Errorf("SENSOR must be one of %s, %s, %s, %s, got %q",
			SensorMPU6050, SensorMPU9250, SensorSerial, SensorMock, c.Sensor)
	}

	switch c.Filter {
	case FilterComplementary:
		if c.FilterAlpha <= 0 || c.FilterAlpha >= 1 {
			return fmt.Errorf("FILTER_ALPHA must be in (0, 1), got %g", c.FilterAlpha)
		}
	case FilterKalman:
		if c.KalmanProcessNoise < 0 {
			return fmt.Errorf("KALMAN_PROCESS_NOISE must not be negative, got %g", c.KalmanProcessNoise)
		}
		if c.KalmanMeasurementNoise <= 0 {
			return fmt.Errorf("KALMAN_MEASUREMENT_NOISE must be positive, got %g", c.KalmanMeasurementNoise)
		}
	default:
		return fmt.Errorf("FILTER must be %s or %s, got %q", FilterComplementary, FilterKalman, c.Filter)
	}

	if c.CalibrationSamples <= 0 || c.CalibrationSamples > calibration.MaxSamples {
		return fmt.Errorf("CALIBRATION_SAMPLES must be in 1..%d, got %d", calibration.MaxSamples, c.CalibrationSamples)
	}
	if c.CalibrationDelayMS < 0 {
		return fmt.Errorf("CALIBRATION_DELAY_MS must not be negative, got %d", c.CalibrationDelayMS)
	}
	if c.SampleInterval <= 0 {
		return fmt.Errorf("SAMPLE_INTERVAL must be positive, got %d", c.SampleInterval)
	}
	if c.ConsoleLogInterval <= 0 {
		return fmt.Errorf("CONSOLE_LOG_INTERVAL must be positive, got %d", c.ConsoleLogInterval)
	}
	if c.WebServerPort <= 0 || c.WebServerPort > 65535 {
		return fmt.Errorf("WEB_SERVER_PORT out of range: %d", c.WebServerPort)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", c.LogLevel)
	}
	return nil
}

// FilterSpec returns the orientation filter selected by FILTER and its
// parameters.
func (c *Config) FilterSpec() orientation.Spec {
	if c.Filter == FilterKalman {
		return orientation.KalmanSpec{
			ProcessNoise:     c.KalmanProcessNoise,
			MeasurementNoise: c.KalmanMeasurementNoise,
		}
	}
	return orientation.ComplementarySpec{Alpha: c.FilterAlpha}
}

// CalibrationDelay is CALIBRATION_DELAY_MS as a duration.
func (c *Config) CalibrationDelay() time.Duration {
	return time.Duration(c.CalibrationDelayMS) * time.Millisecond
}

// SampleIntervalDuration is SAMPLE_INTERVAL as a duration.
func (c *Config) SampleIntervalDuration() time.Duration {
	return time.Duration(c.SampleInterval) * time.Millisecond
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
