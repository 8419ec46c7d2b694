package clawbot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tigerbot-team/clawbot/pkg/hardware"
	"github.com/tigerbot-team/clawbot/pkg/joystick"
	"github.com/tigerbot-team/clawbot/pkg/lcd"
)

func newTestRobot() (*Robot, *hardware.Dummy, *joystick.Controller, *lcd.LCD) {
	hw := hardware.NewDummy()
	c := joystick.NewController()
	display := lcd.New()
	return New(hw, c, display, time.Millisecond), hw, c, display
}

func TestInitializeGreetsAndTogglesOnCenterButton(t *testing.T) {
	centerPressed.Store(false)
	r, _, _, display := newTestRobot()
	r.Initialize(context.Background())
	require.Equal(t, "Hello PROS User!", display.Line(1))
	require.Equal(t, "", display.Line(2))

	display.Press(lcd.ButtonCenter)
	require.Equal(t, "I was pressed!", display.Line(2))
	display.Press(lcd.ButtonCenter)
	require.Equal(t, "", display.Line(2))

	// Other buttons do nothing.
	display.Press(lcd.ButtonLeft)
	display.Press(lcd.ButtonRight)
	require.Equal(t, "", display.Line(2))
	require.Equal(t, "Hello PROS User!", display.Line(1))
}

func TestToggleStateIsShared(t *testing.T) {
	centerPressed.Store(false)
	first, _, _, firstDisplay := newTestRobot()
	first.Initialize(context.Background())
	firstDisplay.Press(lcd.ButtonCenter)

	second, _, _, secondDisplay := newTestRobot()
	second.Initialize(context.Background())
	secondDisplay.Press(lcd.ButtonCenter)
	require.Equal(t, "", secondDisplay.Line(2))
}

func TestAutonomousDrivesPortsOneAndTwo(t *testing.T) {
	r, hw, _, _ := newTestRobot()
	r.Autonomous(context.Background())

	// 100 rpm on the default 200 rpm gearset.
	require.Equal(t, 63, hw.Power(PortLeftWheels))
	require.Equal(t, 63, hw.Power(PortAutonRight))
	require.Equal(t, 0, hw.Power(PortRightWheels))

	// 1000 degrees at 600 degrees per second.
	require.Eventually(t, func() bool {
		return hw.Power(PortLeftWheels) == 0 && hw.Power(PortAutonRight) == 0
	}, 3*time.Second, 10*time.Millisecond)
}

func TestOpControlRunsMixer(t *testing.T) {
	r, hw, c, _ := newTestRobot()
	c.OnJoystickEvent(&joystick.Event{Type: joystick.EventTypeAxis, Number: joystick.RawAxisLStickY, Value: -32767})
	c.OnJoystickEvent(&joystick.Event{Type: joystick.EventTypeButton, Number: joystick.RawButtonL1, Value: 1})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.OpControl(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return hw.Power(PortLeftWheels) == 127 }, time.Second, time.Millisecond)
	require.Equal(t, 127, hw.Power(PortRightWheels))
	require.Equal(t, 127, hw.Power(PortClaw), "claw opens at full speed on the slow gearset")

	hw.SetDigital(InputLeftBumper, true)
	c.OnJoystickEvent(&joystick.Event{Type: joystick.EventTypeAxis, Number: joystick.RawAxisLStickY, Value: 32767})
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, 0, hw.Power(PortLeftWheels), "bumper blocks reversing")

	cancel()
	<-done
	require.Equal(t, 0, hw.Power(PortClaw))
}
