package competition

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/tigerbot-team/clawbot/pkg/config"
	"github.com/tigerbot-team/clawbot/pkg/hardware"
)

// Static is a field whose status only changes when Set is called.
type Static struct {
	lock   sync.Mutex
	status Status
}

func NewStatic(s Status) *Static {
	return &Static{status: s}
}

func (f *Static) Status() Status {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.status
}

func (f *Static) Set(s Status) {
	f.lock.Lock()
	f.status = s
	f.lock.Unlock()
}

// Switch reads a competition switch wired to three GPIO inputs. Each line reads true
// when pulled to ground by the switch.
type Switch struct {
	Connected  hardware.DigitalIn
	Enabled    hardware.DigitalIn
	Autonomous hardware.DigitalIn
}

func (s *Switch) Status() Status {
	if !s.Connected.Get() {
		return Status{}
	}
	return Status{
		Connected:  true,
		Enabled:    s.Enabled.Get(),
		Autonomous: s.Autonomous.Get(),
	}
}

// NewField returns the GPIO switch if its pins are configured, or a disconnected field.
func NewField(cfg config.CompetitionConfig) (Field, error) {
	if cfg.ConnectedPin == "" {
		return NewStatic(Status{}), nil
	}
	connected, err := hardware.NewGPIOInput(cfg.ConnectedPin)
	if err != nil {
		return nil, errors.Wrap(err, "competition connected pin")
	}
	enabled, err := hardware.NewGPIOInput(cfg.EnablePin)
	if err != nil {
		return nil, errors.Wrap(err, "competition enable pin")
	}
	auton, err := hardware.NewGPIOInput(cfg.AutonomousPin)
	if err != nil {
		return nil, errors.Wrap(err, "competition autonomous pin")
	}
	return &Switch{Connected: connected, Enabled: enabled, Autonomous: auton}, nil
}
