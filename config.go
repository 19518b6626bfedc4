package dcmotorsim

import (
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v2"
)

// EnvPrefix prefixes every environment override, e.g. DCMOTORSIM_SERIAL_DEVICE.
const EnvPrefix = "DCMOTORSIM_"

// Transport kinds.
const (
	TransportSerial = "serial"
	TransportTCP    = "tcp"
)

// Config is everything the simulator binary needs. The motor model itself is fixed.
type Config struct {
	Transport    string       `yaml:"transport" env:"TRANSPORT"`
	Serial       SerialConfig `yaml:"serial" envPrefix:"SERIAL_"`
	TCP          TCPConfig    `yaml:"tcp" envPrefix:"TCP_"`
	Timing       TimingConfig `yaml:"timing" envPrefix:"TIMING_"`
	EchoCommands bool         `yaml:"echo_commands" env:"ECHO_COMMANDS"`
	StatusAddr   string       `yaml:"status_addr" env:"STATUS_ADDR"`
	Log          LogConfig    `yaml:"log" envPrefix:"LOG_"`
}

// SerialConfig selects the UART. The frame is always 8N1.
type SerialConfig struct {
	Device string `yaml:"device" env:"DEVICE"`
	Baud   int    `yaml:"baud" env:"BAUD"`
}

// TCPConfig exposes the link on a socket instead, one host at a time.
type TCPConfig struct {
	Listen string `yaml:"listen" env:"LISTEN"`
}

// TimingConfig holds the cadences of the periodic activities.
type TimingConfig struct {
	SimulationPeriod time.Duration `yaml:"simulation_period" env:"SIMULATION_PERIOD"`
	TelemetryPeriod  time.Duration `yaml:"telemetry_period" env:"TELEMETRY_PERIOD"`
	TelemetryPoll    time.Duration `yaml:"telemetry_poll" env:"TELEMETRY_POLL"`
	RxTimeout        time.Duration `yaml:"rx_timeout" env:"RX_TIMEOUT"`
}

// LogConfig controls the logger. File enables a rotated log next to the console output.
type LogConfig struct {
	Level      string `yaml:"level" env:"LEVEL"`
	File       string `yaml:"file" env:"FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb" env:"MAX_SIZE_MB"`
	MaxBackups int    `yaml:"max_backups" env:"MAX_BACKUPS"`
	MaxAgeDays int    `yaml:"max_age_days" env:"MAX_AGE_DAYS"`
	Compress   bool   `yaml:"compress" env:"COMPRESS"`
}

// DefaultConfig matches the bench setup: UART at 115200, 10ms physics, 100ms telemetry.
func DefaultConfig() *Config {
	return &Config{
		Transport: TransportSerial,
		Serial: SerialConfig{
			Device: "/dev/ttyUSB0",
			Baud:   115200,
		},
		TCP: TCPConfig{
			Listen: "127.0.0.1:5760",
		},
		Timing: TimingConfig{
			SimulationPeriod: 10 * time.Millisecond,
			TelemetryPeriod:  100 * time.Millisecond,
			TelemetryPoll:    10 * time.Millisecond,
			RxTimeout:        DefaultRxTimeout,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// LoadConfig layers the defaults, the YAML file at path (skipped when path is empty) and
// DCMOTORSIM_* environment variables, then validates the result.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "reading config")
		}
		if err := yaml.UnmarshalStrict(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parsing config %s", path)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, errors.Wrap(err, "parsing environment")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var err error

	switch c.Transport {
	case TransportSerial:
		if c.Serial.Device == "" {
			err = multierr.Append(err, errors.New("serial.device is required"))
		}
		if c.Serial.Baud <= 0 {
			err = multierr.Append(err, errors.Errorf("serial.baud must be positive, got %d", c.Serial.Baud))
		}
	case TransportTCP:
		if c.TCP.Listen == "" {
			err = multierr.Append(err, errors.New("tcp.listen is required"))
		}
	default:
		err = multierr.Append(err, errors.Errorf("unknown transport %q", c.Transport))
	}

	for name, d := range map[string]time.Duration{
		"timing.simulation_period": c.Timing.SimulationPeriod,
		"timing.telemetry_period":  c.Timing.TelemetryPeriod,
		"timing.telemetry_poll":    c.Timing.TelemetryPoll,
		"timing.rx_timeout":        c.Timing.RxTimeout,
	} {
		if d <= 0 {
			err = multierr.Append(err, errors.Errorf("%s must be positive, got %v", name, d))
		}
	}
	if c.Timing.RxTimeout > 0 && c.Timing.SimulationPeriod > c.Timing.RxTimeout {
		// the timeout check rides on the simulation tick
		err = multierr.Append(err, errors.Errorf(
			"timing.simulation_period %v must not exceed timing.rx_timeout %v",
			c.Timing.SimulationPeriod, c.Timing.RxTimeout))
	}

	if _, lerr := parseLevel(c.Log.Level); lerr != nil {
		err = multierr.Append(err, lerr)
	}
	return err
}
