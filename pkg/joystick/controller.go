package joystick

import (
	"context"
	"sync"

	"github.com/tigerbot-team/clawbot/pkg/logger"
)

// Axis and Button name the controls the way the competition controller labels them.
type Axis int

const (
	AxisLeftX Axis = iota
	AxisLeftY
	AxisRightX
	AxisRightY
	numAxes
)

type Button int

const (
	ButtonL1 Button = iota
	ButtonL2
	ButtonR1
	ButtonR2
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
	ButtonX
	ButtonB
	ButtonY
	ButtonA
	numButtons
)

var buttonNames = [numButtons]string{"L1", "L2", "R1", "R2", "Up", "Down", "Left", "Right", "X", "B", "Y", "A"}

func (b Button) String() string {
	if b < 0 || b >= numButtons {
		return "unknown"
	}
	return buttonNames[b]
}

// AnalogMax is the magnitude of a fully deflected stick.
const AnalogMax = 127

// dPadThreshold is how far the d-pad axis must move before it counts as a press.
const dPadThreshold = 16384

var rawButtons = map[uint8]Button{
	RawButtonL1:       ButtonL1,
	RawButtonL2:       ButtonL2,
	RawButtonR1:       ButtonR1,
	RawButtonR2:       ButtonR2,
	RawButtonTriangle: ButtonX,
	RawButtonCross:    ButtonB,
	RawButtonSquare:   ButtonY,
	RawButtonCircle:   ButtonA,
}

// Input is what the control loops poll once per cycle.
type Input interface {
	Analog(a Axis) int
	Digital(b Button) bool
	NewPress(b Button) bool
}

// Controller folds the joystick event stream into pollable state.
type Controller struct {
	lock     sync.Mutex
	axes     [numAxes]int16
	buttons  [numButtons]bool
	// Button state as of the last NewPress call for that button.
	lastRead [numButtons]bool
}

func NewController() *Controller {
	return &Controller{}
}

var _ Input = (*Controller)(nil)

// OnJoystickEvent updates the state from one event.
func (c *Controller) OnJoystickEvent(event *Event) {
	c.lock.Lock()
	defer c.lock.Unlock()

	switch event.Type {
	case EventTypeAxis:
		switch event.Number {
		case RawAxisLStickX:
			c.axes[AxisLeftX] = event.Value
		case RawAxisLStickY:
			c.axes[AxisLeftY] = -clampNeg(event.Value)
		case RawAxisRStickX:
			c.axes[AxisRightX] = event.Value
		case RawAxisRStickY:
			c.axes[AxisRightY] = -clampNeg(event.Value)
		case RawAxisDPadX:
			c.setButton(ButtonLeft, event.Value < -dPadThreshold)
			c.setButton(ButtonRight, event.Value > dPadThreshold)
		case RawAxisDPadY:
			c.setButton(ButtonUp, event.Value < -dPadThreshold)
			c.setButton(ButtonDown, event.Value > dPadThreshold)
		}
	case EventTypeButton:
		if b, ok := rawButtons[event.Number]; ok {
			c.setButton(b, event.Value != 0)
		}
	}
}

// clampNeg keeps -32768 from overflowing when the axis is inverted.
func clampNeg(v int16) int16 {
	if v < -32767 {
		return -32767
	}
	return v
}

func (c *Controller) setButton(b Button, down bool) {
	c.buttons[b] = down
}

// Analog returns the axis in the range -AnalogMax..AnalogMax with up and right positive.
func (c *Controller) Analog(a Axis) int {
	if a < 0 || a >= numAxes {
		return 0
	}
	c.lock.Lock()
	v := c.axes[a]
	c.lock.Unlock()
	return int(v) * AnalogMax / 32767
}

func (c *Controller) Digital(b Button) bool {
	if b < 0 || b >= numButtons {
		return false
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.buttons[b]
}

// NewPress reports whether b is down now and was up at the last call for that button.
// A press and release between two calls is not seen.
func (c *Controller) NewPress(b Button) bool {
	if b < 0 || b >= numButtons {
		return false
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	down := c.buttons[b]
	pressed := down && !c.lastRead[b]
	c.lastRead[b] = down
	return pressed
}

// Reset releases every control, e.g. after the joystick disconnects.
func (c *Controller) Reset() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.axes = [numAxes]int16{}
	c.buttons = [numButtons]bool{}
	c.lastRead = [numButtons]bool{}
}

// Loop feeds events from j into c until ctx is done or the device fails. j is closed on return.
func (c *Controller) Loop(ctx context.Context, j *Joystick) error {
	defer c.Reset()
	defer j.Close()
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			// Unblocks ReadEvent.
			_ = j.Close()
		case <-done:
		}
	}()
	for ctx.Err() == nil {
		event, err := j.ReadEvent()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Errorf(ctx, "Failed to read from joystick: %v", err)
			return err
		}
		logger.Debugf(ctx, "Joy: %s", event)
		c.OnJoystickEvent(event)
	}
	return ctx.Err()
}
