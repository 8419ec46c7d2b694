package hardware

import "context"

// Gearset is the internal cartridge of a motor; it fixes the top speed.
type Gearset int

const (
	Gearset36 Gearset = iota // 100 rpm
	Gearset18                // 200 rpm
	Gearset6                 // 600 rpm
)

func (g Gearset) MaxRPM() int {
	switch g {
	case Gearset36:
		return 100
	case Gearset6:
		return 600
	default:
		return 200
	}
}

type BrakeMode int

const (
	BrakeCoast BrakeMode = iota
	BrakeBrake
	BrakeHold
)

func (b BrakeMode) String() string {
	switch b {
	case BrakeBrake:
		return "brake"
	case BrakeHold:
		return "hold"
	default:
		return "coast"
	}
}

// MaxPower is the magnitude of a full-scale Move command.
const MaxPower = 127

type Motor interface {
	// Port is the signed port the motor was requested on; negative means reversed.
	Port() int
	// Move sets open-loop power, -127..127.
	Move(power int)
	// MoveVelocity sets a target speed in rpm of the output shaft.
	MoveVelocity(rpm int)
	// MoveRelative turns the shaft by position degrees at rpm and then stops.
	MoveRelative(position float64, rpm int)
	SetGearing(g Gearset)
	SetBrakeMode(m BrakeMode)
	BrakeMode() BrakeMode
}

type DigitalIn interface {
	Get() bool
}

type Interface interface {
	Start(ctx context.Context)
	// Motor returns the motor on the given smart port, creating it on first use.
	Motor(port int) Motor
	// DigitalIn returns the three-wire digital input on port 'a'..'h'.
	DigitalIn(port rune) DigitalIn
	// StopAll zeroes every motor output.
	StopAll()
	PlaySound(path string)
	Shutdown()
}

// output is where motors send their power; the real hardware batches these into the PCA9685 loop.
type output interface {
	SetPower(port int, power int)
}
