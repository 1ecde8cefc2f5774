package eyectl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mdouchement/eyectl/environment"
	"github.com/mdouchement/eyectl/eyes"
	"go.yaml.in/yaml/v4"
)

const (
	KeyConfigDir  = "EYECTL_CONFIG_DIR"
	KeyScriptsDir = "EYECTL_SCRIPTS_DIR"
)

type Config struct {
	Debug        bool             `yaml:"debug"`
	Port         string           `yaml:"port"` // Empty means auto-detect the USB serial port
	BaudRate     int              `yaml:"baud_rate"`
	ReadTimeout  Duration         `yaml:"read_timeout"`
	Handshake    bool             `yaml:"handshake"`
	Acknowledge  bool             `yaml:"acknowledge"`
	AutoReset    bool             `yaml:"auto_reset"`
	ResetYAML    string           `yaml:"reset"`
	Reset        eyes.Animation   `yaml:"-"`
	Pause        Duration         `yaml:"pause"`
	MinInterval  Duration         `yaml:"min_interval"`
	USB          USB              `yaml:"usb"`
	SequenceYAML []string         `yaml:"sequence"`
	Sequence     []eyes.Animation `yaml:"-"` // Empty means AllAnimations
	ScriptsDir   string           `yaml:"scripts_dir"`
	Schedules    []*Schedule      `yaml:"schedules"`
	MQTT         MQTT             `yaml:"mqtt"`
}

type USB struct {
	VID string `yaml:"vid"`
	PID string `yaml:"pid"`
}

type Schedule struct {
	Spec           string           `yaml:"spec"`
	AnimationsYAML []string         `yaml:"animations"`
	Animations     []eyes.Animation `yaml:"-"`
}

type MQTT struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"` // tcp://host:1883
	ClientID    string `yaml:"client_id"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	TopicPrefix string `yaml:"topic_prefix"`
}

// Default returns the settings of the display's reference sketch:
// wait for READY, read an acknowledgment after each command and reset the eyes between animations.
func Default() Config {
	return Config{
		BaudRate:    eyes.DefaultBaudRate,
		ReadTimeout: Duration{Duration: eyes.DefaultReadTimeout},
		Handshake:   true,
		Acknowledge: true,
		AutoReset:   true,
		ResetYAML:   eyes.Reset.String(),
		Reset:       eyes.Reset,
		Pause:       Millis(500),
		MQTT: MQTT{
			ClientID:    "eyectl",
			TopicPrefix: "eyectl",
		},
	}
}

func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "/etc"
	}

	return environment.GetEnvPath(KeyConfigDir, filepath.Join(home, ".config"), "eyectl", "eyectl.yml")
}

// Load reads the configuration at path on top of Default.
func Load(path string) (Config, error) {
	c := Default()

	f, err := os.Open(path)
	if err != nil {
		return c, err
	}
	defer f.Close()

	codec := yaml.NewDecoder(f)
	err = codec.Decode(&c)
	if err != nil && !errors.Is(err, io.EOF) {
		return c, fmt.Errorf("%s: %w", path, err)
	}

	return c, c.Resolve()
}

// Resolve validates the settings and parses the animation names.
func (c *Config) Resolve() error {
	if c.BaudRate <= 0 {
		return fmt.Errorf("baud_rate: must be positive (%d)", c.BaudRate)
	}
	if c.ReadTimeout.Duration < 0 {
		return errors.New("read_timeout: must not be negative")
	}
	if c.Pause.Duration < 0 {
		return errors.New("pause: must not be negative")
	}
	if c.MinInterval.Duration < 0 {
		return errors.New("min_interval: must not be negative")
	}

	var err error
	c.Reset, err = eyes.ParseAnimation(c.ResetYAML)
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	c.Sequence, err = parseAnimations(c.SequenceYAML)
	if err != nil {
		return fmt.Errorf("sequence: %w", err)
	}

	for i, s := range c.Schedules {
		if s.Spec == "" {
			return fmt.Errorf("schedules[%d]: no spec provided", i)
		}
		if len(s.AnimationsYAML) == 0 {
			return fmt.Errorf("schedules[%d]: no animations provided", i)
		}

		s.Animations, err = parseAnimations(s.AnimationsYAML)
		if err != nil {
			return fmt.Errorf("schedules[%d]: %w", i, err)
		}
	}

	c.ScriptsDir = environment.GetEnvPath(KeyScriptsDir, c.ScriptsDir)

	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		return errors.New("mqtt: no broker provided")
	}

	return nil
}

func (c Config) ControllerOptions() eyes.Options {
	return eyes.Options{
		BaudRate:    c.BaudRate,
		ReadTimeout: c.ReadTimeout.Duration,
		Acknowledge: c.Acknowledge,
		MinInterval: c.MinInterval.Duration,
		VID:         c.USB.VID,
		PID:         c.USB.PID,
	}
}

func parseAnimations(values []string) ([]eyes.Animation, error) {
	animations := make([]eyes.Animation, 0, len(values))
	for _, v := range values {
		a, err := eyes.ParseAnimation(v)
		if err != nil {
			return nil, err
		}
		animations = append(animations, a)
	}

	return animations, nil
}
