package dcmotorsim

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/multierr"
	"go.viam.com/test"
)

func writeConfig(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sim.yaml")
	test.That(t, os.WriteFile(path, []byte(text), 0o600), test.ShouldBeNil)
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	test.That(t, cfg.Validate(), test.ShouldBeNil)
	test.That(t, cfg.Transport, test.ShouldEqual, TransportSerial)
	test.That(t, cfg.Timing.SimulationPeriod, test.ShouldEqual, 10*time.Millisecond)
	test.That(t, cfg.Timing.TelemetryPeriod, test.ShouldEqual, 100*time.Millisecond)
	test.That(t, cfg.Timing.RxTimeout, test.ShouldEqual, 200*time.Millisecond)
	test.That(t, cfg.EchoCommands, test.ShouldBeFalse)
}

func TestLoadConfigNoFile(t *testing.T) {
	cfg, err := LoadConfig("")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Serial.Baud, test.ShouldEqual, 115200)
}

func TestLoadConfigYAML(t *testing.T) {
	path := writeConfig(t, `
transport: tcp
tcp:
  listen: 0.0.0.0:6000
timing:
  telemetry_period: 50ms
echo_commands: true
log:
  level: debug
`)
	cfg, err := LoadConfig(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Transport, test.ShouldEqual, TransportTCP)
	test.That(t, cfg.TCP.Listen, test.ShouldEqual, "0.0.0.0:6000")
	test.That(t, cfg.Timing.TelemetryPeriod, test.ShouldEqual, 50*time.Millisecond)
	test.That(t, cfg.Timing.SimulationPeriod, test.ShouldEqual, 10*time.Millisecond)
	test.That(t, cfg.EchoCommands, test.ShouldBeTrue)
	test.That(t, cfg.Log.Level, test.ShouldEqual, "debug")
}

func TestLoadConfigUnknownField(t *testing.T) {
	path := writeConfig(t, "transport: serial\nmotor_gain: 2\n")
	_, err := LoadConfig(path)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "parsing config")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestLoadConfigEnv(t *testing.T) {
	path := writeConfig(t, "serial:\n  baud: 57600\n")
	t.Setenv("DCMOTORSIM_SERIAL_BAUD", "9600")
	t.Setenv("DCMOTORSIM_SERIAL_DEVICE", "/dev/ttyACM1")
	t.Setenv("DCMOTORSIM_TIMING_RX_TIMEOUT", "300ms")
	t.Setenv("DCMOTORSIM_ECHO_COMMANDS", "true")

	cfg, err := LoadConfig(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Serial.Baud, test.ShouldEqual, 9600)
	test.That(t, cfg.Serial.Device, test.ShouldEqual, "/dev/ttyACM1")
	test.That(t, cfg.Timing.RxTimeout, test.ShouldEqual, 300*time.Millisecond)
	test.That(t, cfg.EchoCommands, test.ShouldBeTrue)
}

func TestValidateCollectsEverything(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Transport = "udp"
	cfg.Timing.TelemetryPeriod = 0
	cfg.Log.Level = "loud"

	err := cfg.Validate()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, multierr.Errors(err), test.ShouldHaveLength, 3)
	test.That(t, err.Error(), test.ShouldContainSubstring, `unknown transport "udp"`)
	test.That(t, err.Error(), test.ShouldContainSubstring, "timing.telemetry_period")
	test.That(t, err.Error(), test.ShouldContainSubstring, "log.level")
}

func TestValidateTransportFields(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Serial.Device = ""
	cfg.Serial.Baud = 0
	test.That(t, multierr.Errors(cfg.Validate()), test.ShouldHaveLength, 2)

	cfg = DefaultConfig()
	cfg.Transport = TransportTCP
	cfg.TCP.Listen = ""
	test.That(t, multierr.Errors(cfg.Validate()), test.ShouldHaveLength, 1)
}

func TestValidateTimeoutOutrunsTick(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timing.SimulationPeriod = 300 * time.Millisecond
	err := cfg.Validate()
	test.That(t, multierr.Errors(err), test.ShouldHaveLength, 1)
	test.That(t, err.Error(), test.ShouldContainSubstring, "must not exceed")
}
