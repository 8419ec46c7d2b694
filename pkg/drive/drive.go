// Package drive is the drivetrain service used by the template program: arcade control
// with input curves and scaling, brake modes, pose bookkeeping and a tuner for the
// controller constants. Closed-loop motion (PID, odometry, IMU fusion) is not done here.
package drive

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/tigerbot-team/clawbot/pkg/hardware"
	"github.com/tigerbot-team/clawbot/pkg/joystick"
	"github.com/tigerbot-team/clawbot/pkg/logger"
	"github.com/tigerbot-team/clawbot/pkg/tunable"
)

type ArcadeType int

const (
	// ArcadeSplit drives with the left stick Y and turns with the right stick X.
	ArcadeSplit ArcadeType = iota
	// ArcadeSingle uses only the left stick.
	ArcadeSingle
)

// JoystickThreshold is the stick deflection below which input is treated as zero.
const JoystickThreshold = 5

const curveStep = 0.1

// Pose is a field position in inches and a heading in degrees.
type Pose struct {
	X, Y, Theta float64
}

type TrackingWheel struct {
	Port     int
	Diameter float64
	// Distance from the tracking center, in inches.
	Distance float64
}

type Config struct {
	LeftPorts     []int
	RightPorts    []int
	IMUPort       int
	WheelDiameter float64
	WheelRPM      float64
}

// Display is where the tuner shows the constant being edited.
type Display interface {
	SetText(line int, text string) bool
	ClearLine(line int) bool
}

// Chassis is the drivetrain capability the template program consumes.
type Chassis interface {
	SetCurveButtonsToggle(enabled bool)
	SetActiveBrake(kp float64)
	SetCurveDefault(left, right float64)
	SetArcadeScaling(enabled bool)
	DefaultConstants()
	SetBackTracker(w *TrackingWheel)
	SetLeftTracker(w *TrackingWheel)

	Initialize(ctx context.Context)
	ResetPosition()
	SetPose(p Pose)
	Pose() Pose
	ArcadeStandard(t ArcadeType)
	SetBrakeMode(m hardware.BrakeMode)
	BrakeMode() hardware.BrakeMode
	TunerToggle()
	TunerIterate()
	TunerEnabled() bool
	TunerDisable()
}

const (
	tunerLine      = 3
	tunerValueLine = 4
)

type Drive struct {
	cfg        Config
	controller joystick.Input
	display    Display

	left, right []hardware.Motor

	lock          sync.Mutex
	brake         hardware.BrakeMode
	arcadeScaling bool
	curveButtons  bool
	curveLeft     float64
	curveRight    float64
	activeBrakeKp float64
	pose          Pose
	backTracker   *TrackingWheel
	leftTracker   *TrackingWheel
	tunerEnabled  bool
	tunables      tunable.Tunables
	constants     map[string]*tunable.Tunable
}

var _ Chassis = (*Drive)(nil)

func New(cfg Config, hw hardware.Interface, controller joystick.Input, display Display) *Drive {
	d := &Drive{
		cfg:        cfg,
		controller: controller,
		display:    display,
		constants:  map[string]*tunable.Tunable{},
	}
	for _, p := range cfg.LeftPorts {
		d.left = append(d.left, hw.Motor(p))
	}
	for _, p := range cfg.RightPorts {
		d.right = append(d.right, hw.Motor(p))
	}
	for _, c := range constantNames {
		d.constants[c.name] = d.tunables.Create(c.name, 0, c.step)
	}
	return d
}

var constantNames = []struct {
	name string
	step float64
}{
	{"Drive kP", 0.5}, {"Drive kI", 0.05}, {"Drive kD", 0.5},
	{"Heading kP", 0.5}, {"Heading kI", 0.05}, {"Heading kD", 0.5},
	{"Turn kP", 0.5}, {"Turn kI", 0.05}, {"Turn kD", 0.5},
	{"Swing kP", 0.5}, {"Swing kI", 0.05}, {"Swing kD", 0.5},
}

// DefaultConstants loads the starting values of the controller constants.
func (d *Drive) DefaultConstants() {
	for name, v := range map[string]float64{
		"Drive kP": 20, "Drive kI": 0, "Drive kD": 100,
		"Heading kP": 11, "Heading kI": 0, "Heading kD": 20,
		"Turn kP": 3, "Turn kI": 0.05, "Turn kD": 20,
		"Swing kP": 6, "Swing kI": 0, "Swing kD": 65,
	} {
		d.constants[name].Set(v)
	}
}

// Constant returns the current value of a named constant such as "Drive kP".
func (d *Drive) Constant(name string) (float64, bool) {
	c, ok := d.constants[name]
	if !ok {
		return 0, false
	}
	return c.Get(), true
}

func (d *Drive) Initialize(ctx context.Context) {
	logger.InfoKV(ctx, "Initializing drive",
		"left", d.cfg.LeftPorts, "right", d.cfg.RightPorts, "imu", d.cfg.IMUPort,
		"wheel_diameter", d.cfg.WheelDiameter, "wheel_rpm", d.cfg.WheelRPM)
	d.SetBrakeMode(hardware.BrakeCoast)
	d.ResetPosition()
	d.setMotors(0, 0)
}

func (d *Drive) SetCurveButtonsToggle(enabled bool) {
	d.lock.Lock()
	d.curveButtons = enabled
	d.lock.Unlock()
}

func (d *Drive) SetCurveDefault(left, right float64) {
	d.lock.Lock()
	d.curveLeft, d.curveRight = left, right
	d.lock.Unlock()
}

func (d *Drive) Curves() (left, right float64) {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.curveLeft, d.curveRight
}

// SetActiveBrake stores the hold gain used when the sticks are released. Without drive
// encoders it has no effect beyond the brake mode.
func (d *Drive) SetActiveBrake(kp float64) {
	d.lock.Lock()
	d.activeBrakeKp = kp
	d.lock.Unlock()
}

func (d *Drive) SetArcadeScaling(enabled bool) {
	d.lock.Lock()
	d.arcadeScaling = enabled
	d.lock.Unlock()
}

func (d *Drive) SetBackTracker(w *TrackingWheel) {
	d.lock.Lock()
	d.backTracker = w
	d.lock.Unlock()
}

func (d *Drive) SetLeftTracker(w *TrackingWheel) {
	d.lock.Lock()
	d.leftTracker = w
	d.lock.Unlock()
}

func (d *Drive) Trackers() (back, left *TrackingWheel) {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.backTracker, d.leftTracker
}

// ResetPosition puts the robot back at the origin. There are no targets, heading or drive
// sensors to reset on an open-loop drive, so only the pose changes.
func (d *Drive) ResetPosition() {
	d.SetPose(Pose{})
}

func (d *Drive) SetPose(p Pose) {
	d.lock.Lock()
	d.pose = p
	d.lock.Unlock()
}

func (d *Drive) Pose() Pose {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.pose
}

func (d *Drive) SetBrakeMode(m hardware.BrakeMode) {
	d.lock.Lock()
	d.brake = m
	d.lock.Unlock()
	for _, mot := range append(append([]hardware.Motor{}, d.left...), d.right...) {
		mot.SetBrakeMode(m)
	}
}

func (d *Drive) BrakeMode() hardware.BrakeMode {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.brake
}

// ArcadeStandard reads the sticks and drives one cycle.
func (d *Drive) ArcadeStandard(t ArcadeType) {
	d.handleCurveButtons()

	fwdAxis, turnAxis := joystick.AxisLeftY, joystick.AxisRightX
	if t == ArcadeSingle {
		turnAxis = joystick.AxisLeftX
	}

	d.lock.Lock()
	curveL, curveR, scaling := d.curveLeft, d.curveRight, d.arcadeScaling
	d.lock.Unlock()

	fwd := Curve(threshold(d.controller.Analog(fwdAxis)), curveL)
	turn := Curve(threshold(d.controller.Analog(turnAxis)), curveR)
	l, r := ArcadeMix(fwd, turn, scaling)
	d.setMotors(l, r)
}

// ArcadeMix combines forward and turn. With scaling the larger side is brought back to
// full power and the other keeps its proportion; without, each side is clipped.
func ArcadeMix(fwd, turn float64, scaling bool) (left, right int) {
	l := fwd + turn
	r := fwd - turn
	if scaling {
		if m := math.Max(math.Abs(l), math.Abs(r)); m > hardware.MaxPower {
			l = l * hardware.MaxPower / m
			r = r * hardware.MaxPower / m
		}
	}
	return hardware.ClampPower(int(math.Round(l))), hardware.ClampPower(int(math.Round(r)))
}

// Curve applies the exponential input curve. A curve of 0 is linear; larger values give
// finer control near the center while keeping full deflection at full power.
func Curve(x, curve float64) float64 {
	if curve == 0 {
		return x
	}
	a := math.Exp(-curve / 10)
	return (a + math.Exp((math.Abs(x)-hardware.MaxPower)/10)*(1-a)) * x
}

func threshold(v int) float64 {
	if v > -JoystickThreshold && v < JoystickThreshold {
		return 0
	}
	return float64(v)
}

func (d *Drive) setMotors(l, r int) {
	for _, m := range d.left {
		m.Move(l)
	}
	for _, m := range d.right {
		m.Move(r)
	}
}

// handleCurveButtons lets the driver trim the curves: left/right arrows for the forward
// curve, Y/A for the turn curve. The tuner owns those buttons while it is enabled.
func (d *Drive) handleCurveButtons() {
	d.lock.Lock()
	active := d.curveButtons && !d.tunerEnabled
	d.lock.Unlock()
	if !active {
		return
	}
	c := d.controller
	var dl, dr float64
	if c.NewPress(joystick.ButtonLeft) {
		dl -= curveStep
	}
	if c.NewPress(joystick.ButtonRight) {
		dl += curveStep
	}
	if c.NewPress(joystick.ButtonY) {
		dr -= curveStep
	}
	if c.NewPress(joystick.ButtonA) {
		dr += curveStep
	}
	if dl == 0 && dr == 0 {
		return
	}
	d.lock.Lock()
	d.curveLeft = math.Max(0, d.curveLeft+dl)
	d.curveRight = math.Max(0, d.curveRight+dr)
	l, r := d.curveLeft, d.curveRight
	d.lock.Unlock()
	logger.Logger().Infof("Drive curves now %.1f / %.1f", l, r)
}

func (d *Drive) TunerToggle() {
	d.lock.Lock()
	d.tunerEnabled = !d.tunerEnabled
	enabled := d.tunerEnabled
	d.lock.Unlock()
	logger.Logger().Infof("PID tuner enabled: %v", enabled)
	if enabled {
		d.showTuner()
	} else {
		d.clearTuner()
	}
}

func (d *Drive) TunerEnabled() bool {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.tunerEnabled
}

func (d *Drive) TunerDisable() {
	d.lock.Lock()
	was := d.tunerEnabled
	d.tunerEnabled = false
	d.lock.Unlock()
	if was {
		logger.Logger().Info("PID tuner disabled")
		d.clearTuner()
	}
}

// TunerIterate handles one cycle of tuner input: arrows pick a constant, A and Y change it.
func (d *Drive) TunerIterate() {
	if !d.TunerEnabled() {
		return
	}
	c := d.controller
	changed := false
	if c.NewPress(joystick.ButtonRight) {
		d.tunables.SelectNext()
		changed = true
	}
	if c.NewPress(joystick.ButtonLeft) {
		d.tunables.SelectPrev()
		changed = true
	}
	if c.NewPress(joystick.ButtonA) {
		d.tunables.Current().Increment()
		changed = true
	}
	if c.NewPress(joystick.ButtonY) {
		d.tunables.Current().Decrement()
		changed = true
	}
	if changed {
		d.showTuner()
	}
}

// SelectedConstant is the constant the tuner is editing.
func (d *Drive) SelectedConstant() *tunable.Tunable {
	return d.tunables.Current()
}

func (d *Drive) showTuner() {
	if d.display == nil {
		return
	}
	cur := d.tunables.Current()
	d.display.SetText(tunerLine, "PID Tuner")
	d.display.SetText(tunerValueLine, fmt.Sprintf("%s: %.2f", cur.Name, cur.Get()))
}

func (d *Drive) clearTuner() {
	if d.display == nil {
		return
	}
	d.display.ClearLine(tunerLine)
	d.display.ClearLine(tunerValueLine)
}
