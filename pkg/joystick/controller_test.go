package joystick

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func axis(n uint8, v int16) *Event {
	return &Event{Type: EventTypeAxis, Number: n, Value: v}
}

func button(n uint8, down bool) *Event {
	e := &Event{Type: EventTypeButton, Number: n}
	if down {
		e.Value = 1
	}
	return e
}

func TestAnalogScalingAndDirection(t *testing.T) {
	c := NewController()

	c.OnJoystickEvent(axis(RawAxisLStickY, -32767))
	require.Equal(t, 127, c.Analog(AxisLeftY), "stick up should be positive")

	c.OnJoystickEvent(axis(RawAxisLStickY, -32768))
	require.Equal(t, 127, c.Analog(AxisLeftY))

	c.OnJoystickEvent(axis(RawAxisRStickX, -32767))
	require.Equal(t, -127, c.Analog(AxisRightX))

	c.OnJoystickEvent(axis(RawAxisRStickX, 16384))
	require.Equal(t, 63, c.Analog(AxisRightX))

	require.Equal(t, 0, c.Analog(Axis(42)))
}

func TestButtons(t *testing.T) {
	c := NewController()

	c.OnJoystickEvent(button(RawButtonR1, true))
	require.True(t, c.Digital(ButtonR1))
	require.False(t, c.Digital(ButtonR2))

	c.OnJoystickEvent(button(RawButtonR1, false))
	require.False(t, c.Digital(ButtonR1))

	c.OnJoystickEvent(button(RawButtonTriangle, true))
	require.True(t, c.Digital(ButtonX))
}

func TestNewPressFiresOncePerPress(t *testing.T) {
	c := NewController()
	require.False(t, c.NewPress(ButtonX))

	c.OnJoystickEvent(button(RawButtonTriangle, true))
	require.True(t, c.NewPress(ButtonX))
	require.False(t, c.NewPress(ButtonX), "held button is not a new press")

	// Repeated down events without a release don't count.
	c.OnJoystickEvent(button(RawButtonTriangle, true))
	require.False(t, c.NewPress(ButtonX))

	c.OnJoystickEvent(button(RawButtonTriangle, false))
	require.False(t, c.NewPress(ButtonX))
	c.OnJoystickEvent(button(RawButtonTriangle, true))
	require.True(t, c.NewPress(ButtonX))
}

func TestPressBetweenReadsIsNotLatched(t *testing.T) {
	c := NewController()
	require.False(t, c.NewPress(ButtonX))

	// Pressed and released while nobody was polling X.
	c.OnJoystickEvent(button(RawButtonTriangle, true))
	c.OnJoystickEvent(button(RawButtonTriangle, false))
	require.False(t, c.NewPress(ButtonX))

	// Still held when polling starts: counts once.
	c.OnJoystickEvent(button(RawButtonTriangle, true))
	require.True(t, c.NewPress(ButtonX))
	require.False(t, c.NewPress(ButtonX))
}

func TestDPad(t *testing.T) {
	c := NewController()

	c.OnJoystickEvent(axis(RawAxisDPadY, 32767))
	require.True(t, c.Digital(ButtonDown))
	require.False(t, c.Digital(ButtonUp))

	c.OnJoystickEvent(axis(RawAxisDPadY, 0))
	require.False(t, c.Digital(ButtonDown))

	c.OnJoystickEvent(axis(RawAxisDPadX, -32767))
	require.True(t, c.NewPress(ButtonLeft))
}

func TestReset(t *testing.T) {
	c := NewController()
	c.OnJoystickEvent(axis(RawAxisLStickY, -32767))
	c.OnJoystickEvent(button(RawButtonL1, true))
	c.Reset()
	require.Equal(t, 0, c.Analog(AxisLeftY))
	require.False(t, c.Digital(ButtonL1))
	require.False(t, c.NewPress(ButtonL1))
}

func TestLoopClosesDeviceOnReadError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "js0")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	c := NewController()
	before := runtime.NumGoroutine()

	for i := 0; i < 5; i++ {
		j, err := NewJoystick(path)
		require.NoError(t, err)
		require.ErrorIs(t, c.Loop(context.Background(), j), io.EOF)
		require.ErrorIs(t, j.Close(), os.ErrClosed, "device left open after Loop returned")
	}
	require.Eventually(t, func() bool { return runtime.NumGoroutine() <= before }, time.Second, 10*time.Millisecond)
}

func TestLoopStopsOnCancel(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer w.Close()
	j := &Joystick{device: r}
	c := NewController()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- c.Loop(ctx, j) }()

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Loop did not return after cancel")
	}
}
