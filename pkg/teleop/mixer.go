package teleop

import (
	"context"
	"time"

	"github.com/tigerbot-team/clawbot/pkg/hardware"
	"github.com/tigerbot-team/clawbot/pkg/joystick"
	"github.com/tigerbot-team/clawbot/pkg/logger"
)

const DefaultPeriod = 2 * time.Millisecond

// Mixer is the operator control loop of the ClawBot.
type Mixer struct {
	Controller joystick.Input

	LeftBumper  hardware.DigitalIn
	RightBumper hardware.DigitalIn
	ArmLimit    hardware.DigitalIn

	LeftWheels  hardware.Motor
	RightWheels hardware.Motor
	Arm         hardware.Motor
	Claw        hardware.Motor

	Period time.Duration
}

// Sample reads the controller and switches for one cycle.
func (m *Mixer) Sample() (ControllerSample, BumperState) {
	c := m.Controller
	s := ControllerSample{
		Power: c.Analog(joystick.AxisLeftY),
		Steer: c.Analog(joystick.AxisRightX),
		R1:    c.Digital(joystick.ButtonR1),
		R2:    c.Digital(joystick.ButtonR2),
		L1:    c.Digital(joystick.ButtonL1),
		L2:    c.Digital(joystick.ButtonL2),
	}
	b := BumperState{
		Left:     m.LeftBumper.Get(),
		Right:    m.RightBumper.Get(),
		ArmLimit: m.ArmLimit.Get(),
	}
	return s, b
}

// Apply sends one cycle's commands to the motors.
func (m *Mixer) Apply(cmds Commands) {
	m.LeftWheels.Move(cmds.Drive.Left)
	m.RightWheels.Move(cmds.Drive.Right)
	m.Arm.MoveVelocity(cmds.Actuators.Arm)
	m.Claw.MoveVelocity(cmds.Actuators.Claw)
}

// Cycle runs a single sample/step/apply iteration.
func (m *Mixer) Cycle() Commands {
	cmds := Step(m.Sample())
	m.Apply(cmds)
	return cmds
}

// Run cycles until ctx is cancelled, then zeroes the outputs.
func (m *Mixer) Run(ctx context.Context) error {
	period := m.Period
	if period <= 0 {
		period = DefaultPeriod
	}
	defer m.Apply(Commands{})

	logger.Infof(ctx, "Teleop loop running every %v", period)
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	var last Commands
	for {
		cmds := m.Cycle()
		if cmds != last {
			logger.DebugKV(ctx, "Teleop commands changed",
				"left", cmds.Drive.Left, "right", cmds.Drive.Right,
				"arm", cmds.Actuators.Arm, "claw", cmds.Actuators.Claw)
			last = cmds
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
