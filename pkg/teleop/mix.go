// Package teleop turns the driver's controller and the bump switches into drive, arm and
// claw commands, once per control cycle.
package teleop

// ActuatorSpeed is the arm and claw velocity in rpm; the 36:1 cartridge tops out at 100.
const ActuatorSpeed = 100

type ControllerSample struct {
	// Power is the left stick Y axis and Steer the right stick X axis, -127..127.
	Power, Steer int

	R1, R2, L1, L2 bool
}

type BumperState struct {
	Left, Right bool
	ArmLimit    bool
}

type DriveCommand struct {
	Left, Right int
}

type ActuatorCommand struct {
	Arm, Claw int
}

type Commands struct {
	Drive     DriveCommand
	Actuators ActuatorCommand
}

// Mix is the arcade mix used by the ClawBot.
//
// The "normalization" below divides a side by itself, which leaves the larger side at 1
// rather than scaling it into range. It is kept as is so the robot drives the same as
// before; see DESIGN.md.
func Mix(power, steer int) DriveCommand {
	left := power - steer
	right := power + steer

	if left > 1 && left > right {
		left = selfDivide(left)
		right /= left
	} else if right > 1 && right > left {
		right = selfDivide(right)
		left = selfDivide(left)
	}
	return DriveCommand{Left: left, Right: right}
}

// selfDivide is v/v, except that 0/0 yields 0 as the integer divide on the robot
// controller does instead of trapping.
func selfDivide(v int) int {
	if v == 0 {
		return 0
	}
	return v / v
}

// Interlock stops either side driving backwards while a bumper is pressed.
func Interlock(cmd DriveCommand, b BumperState) DriveCommand {
	if !b.Left && !b.Right {
		return cmd
	}
	if cmd.Left < 0 {
		cmd.Left = 0
	}
	if cmd.Right < 0 {
		cmd.Right = 0
	}
	return cmd
}

// ArmVelocity runs the arm on R1 or R2. The limit switch only blocks R2.
func ArmVelocity(s ControllerSample, b BumperState) int {
	if s.R1 {
		return ActuatorSpeed
	}
	if s.R2 && !b.ArmLimit {
		return ActuatorSpeed
	}
	return 0
}

// ClawVelocity opens the claw on L1 and closes it on L2; L1 wins.
func ClawVelocity(s ControllerSample) int {
	if s.L1 {
		return ActuatorSpeed
	}
	if s.L2 {
		return -ActuatorSpeed
	}
	return 0
}

// Step computes one cycle's commands. It has no memory of earlier cycles.
func Step(s ControllerSample, b BumperState) Commands {
	return Commands{
		Drive: Interlock(Mix(s.Power, s.Steer), b),
		Actuators: ActuatorCommand{
			Arm:  ArmVelocity(s, b),
			Claw: ClawVelocity(s),
		},
	}
}
