package teleop

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMixPassThroughBelowThreshold(t *testing.T) {
	for _, tc := range []struct{ power, steer int }{
		{0, 0},
		{1, 0},
		{0, 1},
		{-100, 0},
		{-50, 30},
		{-127, -127},
	} {
		left, right := tc.power-tc.steer, tc.power+tc.steer
		require.Equal(t, DriveCommand{Left: left, Right: right}, Mix(tc.power, tc.steer), "%+v", tc)
	}
}

func TestMixEqualSidesAreNotDivided(t *testing.T) {
	require.Equal(t, DriveCommand{Left: 100, Right: 100}, Mix(100, 0))
	require.Equal(t, DriveCommand{Left: 127, Right: 127}, Mix(127, 0))
}

func TestMixCollapsesWhenRightIsLarger(t *testing.T) {
	// left=50, right=150: both sides end up at 1.
	require.Equal(t, DriveCommand{Left: 1, Right: 1}, Mix(100, 50))
	// left=-50, right=150: -50/-50 is 1 too.
	require.Equal(t, DriveCommand{Left: 1, Right: 1}, Mix(50, 100))
}

func TestMixRightLargerWithZeroLeft(t *testing.T) {
	require.Equal(t, DriveCommand{Left: 0, Right: 1}, Mix(50, 50))
}

func TestMixLeftLargerDividesRightByCollapsedLeft(t *testing.T) {
	// left=150, right=50: left becomes 1, then right is divided by the new left.
	require.Equal(t, DriveCommand{Left: 1, Right: 50}, Mix(100, -50))
	// Spinning in place: left=100, right=-100.
	require.Equal(t, DriveCommand{Left: 1, Right: -100}, Mix(0, -100))
}

func TestInterlock(t *testing.T) {
	cmd := DriveCommand{Left: -40, Right: 30}

	require.Equal(t, cmd, Interlock(cmd, BumperState{}))
	require.Equal(t, cmd, Interlock(cmd, BumperState{ArmLimit: true}), "arm limit is not a bumper")
	require.Equal(t, DriveCommand{Left: 0, Right: 30}, Interlock(cmd, BumperState{Left: true}))
	require.Equal(t, DriveCommand{Left: 0, Right: 30}, Interlock(cmd, BumperState{Right: true}))
	require.Equal(t, DriveCommand{Left: 0, Right: 0},
		Interlock(DriveCommand{Left: -1, Right: -127}, BumperState{Left: true, Right: true}))
	require.Equal(t, DriveCommand{Left: 5, Right: 0},
		Interlock(DriveCommand{Left: 5, Right: 0}, BumperState{Left: true}))
}

func TestInterlockAfterMix(t *testing.T) {
	bumped := BumperState{Right: true}
	require.Equal(t, DriveCommand{Left: 1, Right: 0}, Step(ControllerSample{Power: 0, Steer: -100}, bumped).Drive)
	require.Equal(t, DriveCommand{Left: 0, Right: 0}, Step(ControllerSample{Power: -100}, bumped).Drive)
}

func TestArmVelocity(t *testing.T) {
	limit := BumperState{ArmLimit: true}

	require.Equal(t, ActuatorSpeed, ArmVelocity(ControllerSample{R1: true}, limit))
	require.Equal(t, ActuatorSpeed, ArmVelocity(ControllerSample{R1: true, R2: true}, limit))
	require.Equal(t, ActuatorSpeed, ArmVelocity(ControllerSample{R2: true}, BumperState{}))
	require.Equal(t, 0, ArmVelocity(ControllerSample{R2: true}, limit))
	require.Equal(t, 0, ArmVelocity(ControllerSample{}, BumperState{}))
	require.Equal(t, 0, ArmVelocity(ControllerSample{}, limit))
}

func TestClawVelocity(t *testing.T) {
	require.Equal(t, ActuatorSpeed, ClawVelocity(ControllerSample{L1: true}))
	require.Equal(t, ActuatorSpeed, ClawVelocity(ControllerSample{L1: true, L2: true}))
	require.Equal(t, -ActuatorSpeed, ClawVelocity(ControllerSample{L2: true}))
	require.Equal(t, 0, ClawVelocity(ControllerSample{}))
}

func TestStepIsIdempotent(t *testing.T) {
	s := ControllerSample{Power: 100, Steer: 50, R2: true, L2: true}
	b := BumperState{Left: true}
	first := Step(s, b)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, Step(s, b))
	}
	require.Equal(t, Commands{
		Drive:     DriveCommand{Left: 1, Right: 1},
		Actuators: ActuatorCommand{Arm: ActuatorSpeed, Claw: -ActuatorSpeed},
	}, first)
}
