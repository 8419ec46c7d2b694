// Package clawbot is the ClawBot robot program: tank style operator control with an arm and
// a claw, bumper switches that stop it reversing into things, and a short autonomous drive.
package clawbot

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/tigerbot-team/clawbot/pkg/competition"
	"github.com/tigerbot-team/clawbot/pkg/hardware"
	"github.com/tigerbot-team/clawbot/pkg/joystick"
	"github.com/tigerbot-team/clawbot/pkg/lcd"
	"github.com/tigerbot-team/clawbot/pkg/logger"
	"github.com/tigerbot-team/clawbot/pkg/teleop"
)

const (
	PortLeftWheels  = 1
	PortRightWheels = 10
	PortArm         = 8
	PortClaw        = 3
	// Second wheel port driven during autonomous.
	PortAutonRight = 2

	InputLeftBumper  = 'a'
	InputRightBumper = 'b'
	InputArmLimit    = 'h'

	// Autonomous drive distance in encoder degrees and speed in rpm.
	AutonDistance = 1000
	AutonSpeed    = 100
)

const (
	greetingLine = 1
	pressedLine  = 2
)

// centerPressed is flipped by the center LCD button and outlives any one Robot.
var centerPressed atomic.Bool

func onCenterButton(display *lcd.LCD) {
	// Only this callback writes centerPressed, and it is never run concurrently.
	pressed := !centerPressed.Load()
	centerPressed.Store(pressed)
	if pressed {
		display.SetText(pressedLine, "I was pressed!")
	} else {
		display.ClearLine(pressedLine)
	}
}

type Robot struct {
	hw         hardware.Interface
	controller joystick.Input
	display    *lcd.LCD
	period     time.Duration
}

var _ competition.Robot = (*Robot)(nil)

func New(hw hardware.Interface, controller joystick.Input, display *lcd.LCD, period time.Duration) *Robot {
	return &Robot{
		hw:         hw,
		controller: controller,
		display:    display,
		period:     period,
	}
}

func (r *Robot) Initialize(ctx context.Context) {
	r.display.Initialize()
	r.display.SetText(greetingLine, "Hello PROS User!")
	r.display.RegisterButton(lcd.ButtonCenter, func() { onCenterButton(r.display) })
	logger.Info(ctx, "ClawBot initialized")
}

func (r *Robot) Disabled(ctx context.Context) {}

func (r *Robot) CompetitionInitialize(ctx context.Context) {}

// Autonomous starts both wheel motors on a relative move and returns; the moves finish on
// their own.
func (r *Robot) Autonomous(ctx context.Context) {
	logger.Infof(ctx, "Driving %d degrees at %d rpm", AutonDistance, AutonSpeed)
	r.hw.Motor(PortLeftWheels).MoveRelative(AutonDistance, AutonSpeed)
	r.hw.Motor(PortAutonRight).MoveRelative(AutonDistance, AutonSpeed)
}

func (r *Robot) Mixer() *teleop.Mixer {
	arm := r.hw.Motor(PortArm)
	arm.SetGearing(hardware.Gearset36)
	claw := r.hw.Motor(PortClaw)
	claw.SetGearing(hardware.Gearset36)

	return &teleop.Mixer{
		Controller:  r.controller,
		LeftBumper:  r.hw.DigitalIn(InputLeftBumper),
		RightBumper: r.hw.DigitalIn(InputRightBumper),
		ArmLimit:    r.hw.DigitalIn(InputArmLimit),
		LeftWheels:  r.hw.Motor(PortLeftWheels),
		RightWheels: r.hw.Motor(PortRightWheels),
		Arm:         arm,
		Claw:        claw,
		Period:      r.period,
	}
}

func (r *Robot) OpControl(ctx context.Context) {
	err := r.Mixer().Run(ctx)
	if err != nil && err != context.Canceled {
		logger.Errorf(ctx, "Teleop loop failed: %v", err)
	}
}
