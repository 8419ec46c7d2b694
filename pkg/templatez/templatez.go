// Package templatez is the template robot program built on the drive library: split arcade
// control, an LCD autonomous selector and an on-robot constant tuner for practice sessions.
package templatez

import (
	"context"
	"time"

	"github.com/tigerbot-team/clawbot/pkg/autonselector"
	"github.com/tigerbot-team/clawbot/pkg/competition"
	"github.com/tigerbot-team/clawbot/pkg/config"
	"github.com/tigerbot-team/clawbot/pkg/drive"
	"github.com/tigerbot-team/clawbot/pkg/hardware"
	"github.com/tigerbot-team/clawbot/pkg/joystick"
	"github.com/tigerbot-team/clawbot/pkg/lcd"
	"github.com/tigerbot-team/clawbot/pkg/logger"
)

// DefaultSettleDelay gives the sensors time to come up before the drive is configured.
const DefaultSettleDelay = 500 * time.Millisecond

type Robot struct {
	Chassis    drive.Chassis
	Selector   *autonselector.Selector
	Display    *lcd.LCD
	Controller joystick.Input
	// IsConnected reports whether competition control is attached. Tuning and manual
	// autonomous runs are only allowed without it.
	IsConnected func() bool

	Config      config.TemplatezConfig
	SettleDelay time.Duration
}

var _ competition.Robot = (*Robot)(nil)

func New(cfg config.TemplatezConfig, hw hardware.Interface, controller joystick.Input, display *lcd.LCD) *Robot {
	return &Robot{
		Chassis:     NewDrive(cfg, hw, controller, display),
		Selector:    autonselector.New(),
		Display:     display,
		Controller:  controller,
		Config:      cfg,
		SettleDelay: DefaultSettleDelay,
	}
}

// NewDrive builds the chassis described by cfg.
func NewDrive(cfg config.TemplatezConfig, hw hardware.Interface, controller joystick.Input, display drive.Display) *drive.Drive {
	return drive.New(drive.Config{
		LeftPorts:     cfg.LeftPorts,
		RightPorts:    cfg.RightPorts,
		IMUPort:       cfg.IMUPort,
		WheelDiameter: cfg.WheelDiameter,
		WheelRPM:      cfg.WheelRPM,
	}, hw, controller, display)
}

func tracker(c config.TrackerConfig) *drive.TrackingWheel {
	return &drive.TrackingWheel{Port: c.Port, Diameter: c.Diameter, Distance: c.Distance}
}

func (r *Robot) Initialize(ctx context.Context) {
	r.Display.Initialize()
	select {
	case <-ctx.Done():
		return
	case <-time.After(r.SettleDelay):
	}

	r.Chassis.SetCurveButtonsToggle(true)
	r.Chassis.SetActiveBrake(0)
	r.Chassis.SetCurveDefault(0, 0)
	r.Chassis.DefaultConstants()

	// Autonomous routines are registered here.
	r.Selector.Add()

	r.Chassis.Initialize(ctx)
	r.Selector.Initialize(r.Display, r.Config.SelectorState)

	r.Chassis.SetBackTracker(tracker(r.Config.Horizontal))
	r.Chassis.SetLeftTracker(tracker(r.Config.Vertical))
	logger.Info(ctx, "Template robot initialized")
}

func (r *Robot) Disabled(ctx context.Context) {}

func (r *Robot) CompetitionInitialize(ctx context.Context) {}

func (r *Robot) Autonomous(ctx context.Context) {
	r.Chassis.ResetPosition()
	r.Chassis.SetBrakeMode(hardware.BrakeHold)
	r.Selector.Call(ctx)
}

// Extras handles the practice-only controls: X toggles the tuner and holding B with down
// runs the selected autonomous. Once competition control is attached the tuner is shut off.
func (r *Robot) Extras(ctx context.Context) {
	if r.IsConnected != nil && r.IsConnected() {
		if r.Chassis.TunerEnabled() {
			r.Chassis.TunerDisable()
		}
		return
	}

	if r.Controller.NewPress(joystick.ButtonX) {
		r.Chassis.TunerToggle()
	}
	if r.Controller.Digital(joystick.ButtonB) && r.Controller.Digital(joystick.ButtonDown) {
		preference := r.Chassis.BrakeMode()
		logger.Info(ctx, "Running autonomous from the controller")
		r.Autonomous(ctx)
		r.Chassis.SetBrakeMode(preference)
	}
	r.Chassis.TunerIterate()
}

func (r *Robot) OpControl(ctx context.Context) {
	period := r.Config.Period
	if period <= 0 {
		period = config.DefaultDrivePeriod
	}
	r.Chassis.SetArcadeScaling(true)

	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		r.Chassis.ArcadeStandard(drive.ArcadeSplit)
		r.Extras(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
