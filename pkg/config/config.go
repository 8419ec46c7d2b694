// Package config loads the robot configuration from YAML.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

const (
	DefaultPath = "/cfg/clawbot.yaml"

	DefaultJoystickDevice = "/dev/input/js0"
	DefaultI2CDevice      = "/dev/i2c-1"
	DefaultPCA9685Addr    = 0x40
	DefaultFramebuffer    = "/dev/fb1"
	DefaultSelectorState  = "/cfg/auton-selection.yaml"

	DefaultTeleopPeriod = 2 * time.Millisecond
	DefaultDrivePeriod  = 10 * time.Millisecond
)

type Config struct {
	LogLevel string `yaml:"log_level"`

	JoystickDevice string `yaml:"joystick_device"`

	Motors      MotorConfig       `yaml:"motors"`
	Inputs      map[string]string `yaml:"inputs"`
	Competition CompetitionConfig `yaml:"competition"`
	LCD         LCDConfig         `yaml:"lcd"`
	Sounds      SoundConfig       `yaml:"sounds"`

	ClawBot   ClawBotConfig   `yaml:"clawbot"`
	Templatez TemplatezConfig `yaml:"templatez"`
}

type MotorConfig struct {
	I2CDevice string `yaml:"i2c_device"`
	Address   uint8  `yaml:"address"`
	// Smart port number to PCA9685 channel.
	Channels map[int]int `yaml:"channels"`
	MinPulse float64     `yaml:"min_pulse"`
	MaxPulse float64     `yaml:"max_pulse"`
}

type CompetitionConfig struct {
	ConnectedPin  string `yaml:"connected_pin"`
	EnablePin     string `yaml:"enable_pin"`
	AutonomousPin string `yaml:"autonomous_pin"`
}

type LCDConfig struct {
	Framebuffer string `yaml:"framebuffer"`
	LeftPin     string `yaml:"left_pin"`
	CenterPin   string `yaml:"center_pin"`
	RightPin    string `yaml:"right_pin"`
}

type SoundConfig struct {
	Autonomous string `yaml:"autonomous"`
	OpControl  string `yaml:"opcontrol"`
}

type ClawBotConfig struct {
	Period time.Duration `yaml:"period"`
}

type TrackerConfig struct {
	Port     int     `yaml:"port"`
	Diameter float64 `yaml:"diameter"`
	Distance float64 `yaml:"distance"`
}

type TemplatezConfig struct {
	Period        time.Duration `yaml:"period"`
	LeftPorts     []int         `yaml:"left_ports"`
	RightPorts    []int         `yaml:"right_ports"`
	IMUPort       int           `yaml:"imu_port"`
	WheelDiameter float64       `yaml:"wheel_diameter"`
	WheelRPM      float64       `yaml:"wheel_rpm"`
	Horizontal    TrackerConfig `yaml:"horizontal_tracker"`
	Vertical      TrackerConfig `yaml:"vertical_tracker"`
	SelectorState string        `yaml:"selector_state"`
}

// Default returns the configuration of the reference robot.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads path and fills in defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	c := &Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	} else if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	c.applyDefaults()
	if jDev := os.Getenv("JOYSTICK_DEVICE"); jDev != "" {
		c.JoystickDevice = jDev
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Save writes the effective configuration, so the in-use values can be inspected.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config")
	}
	return errors.Wrapf(os.WriteFile(path, data, 0666), "write config %s", path)
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.JoystickDevice == "" {
		c.JoystickDevice = DefaultJoystickDevice
	}
	if c.Motors.I2CDevice == "" {
		c.Motors.I2CDevice = DefaultI2CDevice
	}
	if c.Motors.Address == 0 {
		c.Motors.Address = DefaultPCA9685Addr
	}
	if c.Motors.Channels == nil {
		// Channel n drives smart port n+1.
		c.Motors.Channels = map[int]int{}
		for port := 1; port <= 16; port++ {
			c.Motors.Channels[port] = port - 1
		}
	}
	if c.Inputs == nil {
		c.Inputs = map[string]string{
			"a": "GPIO5",
			"b": "GPIO6",
			"h": "GPIO13",
		}
	}
	if c.LCD.Framebuffer == "" {
		c.LCD.Framebuffer = DefaultFramebuffer
	}
	if c.ClawBot.Period <= 0 {
		c.ClawBot.Period = DefaultTeleopPeriod
	}
	t := &c.Templatez
	if t.Period <= 0 {
		t.Period = DefaultDrivePeriod
	}
	if len(t.LeftPorts) == 0 && len(t.RightPorts) == 0 {
		t.LeftPorts = []int{1, 2, 3}
		t.RightPorts = []int{-4, -5, -6}
	}
	if t.IMUPort == 0 {
		t.IMUPort = 7
	}
	if t.WheelDiameter == 0 {
		t.WheelDiameter = 4.125
	}
	if t.WheelRPM == 0 {
		t.WheelRPM = 343
	}
	if t.Horizontal.Port == 0 {
		t.Horizontal = TrackerConfig{Port: 8, Diameter: 2.75, Distance: 4}
	}
	if t.Vertical.Port == 0 {
		t.Vertical = TrackerConfig{Port: -9, Diameter: 2.75, Distance: 4}
	}
	if t.SelectorState == "" {
		t.SelectorState = DefaultSelectorState
	}
}

// Validate checks the fields that would otherwise fail deep inside the hardware layer.
func (c *Config) Validate() error {
	for port, ch := range c.Motors.Channels {
		if port < 1 || port > 21 {
			return errors.Errorf("motor port %d out of range 1-21", port)
		}
		if ch < 0 || ch > 15 {
			return errors.Errorf("port %d mapped to PCA9685 channel %d, want 0-15", port, ch)
		}
	}
	if c.Motors.MinPulse != 0 && c.Motors.MaxPulse <= c.Motors.MinPulse {
		return errors.Errorf("max pulse %v must exceed min pulse %v", c.Motors.MaxPulse, c.Motors.MinPulse)
	}
	for port := range c.Inputs {
		if len(port) != 1 || port[0] < 'a' || port[0] > 'h' {
			return errors.Errorf("digital input port %q must be a single letter a-h", port)
		}
	}
	t := c.Templatez
	for _, p := range append(append([]int{}, t.LeftPorts...), t.RightPorts...) {
		if p == 0 {
			return errors.New("drive port 0 is not a valid smart port")
		}
	}
	if t.WheelDiameter <= 0 || t.WheelRPM <= 0 {
		return errors.Errorf("wheel diameter %v and rpm %v must be positive", t.WheelDiameter, t.WheelRPM)
	}
	return nil
}
