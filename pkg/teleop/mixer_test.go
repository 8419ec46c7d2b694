package teleop

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tigerbot-team/clawbot/pkg/hardware"
	"github.com/tigerbot-team/clawbot/pkg/joystick"
)

type fakeInput struct {
	analog  map[joystick.Axis]int
	digital map[joystick.Button]bool
}

func (f *fakeInput) Analog(a joystick.Axis) int { return f.analog[a] }
func (f *fakeInput) Digital(b joystick.Button) bool { return f.digital[b] }
func (f *fakeInput) NewPress(b joystick.Button) bool { return false }

func newTestMixer(hw *hardware.Dummy, in joystick.Input) *Mixer {
	arm := hw.Motor(8)
	arm.SetGearing(hardware.Gearset36)
	claw := hw.Motor(3)
	claw.SetGearing(hardware.Gearset36)
	return &Mixer{
		Controller:  in,
		LeftBumper:  hw.DigitalIn('a'),
		RightBumper: hw.DigitalIn('b'),
		ArmLimit:    hw.DigitalIn('h'),
		LeftWheels:  hw.Motor(1),
		RightWheels: hw.Motor(10),
		Arm:         arm,
		Claw:        claw,
		Period:      time.Millisecond,
	}
}

func TestCycleDrivesMotors(t *testing.T) {
	hw := hardware.NewDummy()
	in := &fakeInput{
		analog: map[joystick.Axis]int{joystick.AxisLeftY: -60, joystick.AxisRightX: 20},
		digital: map[joystick.Button]bool{
			joystick.ButtonR2: true,
			joystick.ButtonL2: true,
		},
	}
	m := newTestMixer(hw, in)

	m.Cycle()
	require.Equal(t, -80, hw.Power(1))
	require.Equal(t, -40, hw.Power(10))
	require.Equal(t, 127, hw.Power(8))
	require.Equal(t, -127, hw.Power(3))

	hw.SetDigital('a', true)
	hw.SetDigital('h', true)
	m.Cycle()
	require.Equal(t, 0, hw.Power(1))
	require.Equal(t, 0, hw.Power(10))
	require.Equal(t, 0, hw.Power(8), "limit switch blocks R2")
}

func TestRunStopsAndZeroesOnCancel(t *testing.T) {
	hw := hardware.NewDummy()
	in := &fakeInput{
		analog:  map[joystick.Axis]int{joystick.AxisLeftY: 100},
		digital: map[joystick.Button]bool{joystick.ButtonR1: true},
	}
	m := newTestMixer(hw, in)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- m.Run(ctx) }()

	require.Eventually(t, func() bool { return hw.Power(1) == 100 }, time.Second, time.Millisecond)
	require.Equal(t, 127, hw.Power(8))

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
	require.Equal(t, 0, hw.Power(1))
	require.Equal(t, 0, hw.Power(10))
	require.Equal(t, 0, hw.Power(8))
	require.Equal(t, 0, hw.Power(3))
}
