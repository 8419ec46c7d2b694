package hardware

import (
	"math"
	"sync"
	"time"
)

type motor struct {
	port int
	out  output

	lock      sync.Mutex
	gearset   Gearset
	brakeMode BrakeMode
	// Bumped by every command so a stale MoveRelative timer can't stop a newer command.
	generation uint64
	stopTimer  *time.Timer
}

func newMotor(port int, out output) *motor {
	return &motor{
		port:    port,
		out:     out,
		gearset: Gearset18,
	}
}

func (m *motor) Port() int {
	return m.port
}

func (m *motor) Move(power int) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.cancelPendingLocked()
	m.setPowerLocked(power)
}

func (m *motor) MoveVelocity(rpm int) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.cancelPendingLocked()
	m.setPowerLocked(velocityToPower(rpm, m.gearset))
}

func (m *motor) MoveRelative(position float64, rpm int) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.cancelPendingLocked()

	speed := absInt(rpm)
	if speed > m.gearset.MaxRPM() {
		speed = m.gearset.MaxRPM()
	}
	if speed == 0 || position == 0 {
		m.setPowerLocked(0)
		return
	}
	// One rpm is six degrees per second.
	d := time.Duration(math.Abs(position) / float64(speed*6) * float64(time.Second))
	power := velocityToPower(speed, m.gearset)
	if position < 0 {
		power = -power
	}
	m.setPowerLocked(power)

	gen := m.generation
	m.stopTimer = time.AfterFunc(d, func() {
		m.lock.Lock()
		defer m.lock.Unlock()
		if m.generation == gen {
			m.setPowerLocked(0)
		}
	})
}

func (m *motor) SetGearing(g Gearset) {
	m.lock.Lock()
	m.gearset = g
	m.lock.Unlock()
}

func (m *motor) SetBrakeMode(b BrakeMode) {
	m.lock.Lock()
	m.brakeMode = b
	m.lock.Unlock()
}

func (m *motor) BrakeMode() BrakeMode {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.brakeMode
}

func (m *motor) cancelPendingLocked() {
	m.generation++
	if m.stopTimer != nil {
		m.stopTimer.Stop()
		m.stopTimer = nil
	}
}

func (m *motor) setPowerLocked(power int) {
	power = ClampPower(power)
	if m.port < 0 {
		power = -power
	}
	m.out.SetPower(absInt(m.port), power)
}

// ClampPower limits power to -MaxPower..MaxPower.
func ClampPower(power int) int {
	if power > MaxPower {
		return MaxPower
	}
	if power < -MaxPower {
		return -MaxPower
	}
	return power
}

func velocityToPower(rpm int, g Gearset) int {
	return ClampPower(rpm * MaxPower / g.MaxRPM())
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
