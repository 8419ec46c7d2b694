package hardware

import (
	"context"
	"sync"

	"github.com/tigerbot-team/clawbot/pkg/logger"
)

// Dummy stands in for the robot when no hardware is attached. It records every motor power
// and lets tests drive the digital inputs.
type Dummy struct {
	lock    sync.Mutex
	powers  map[int]int
	inputs  map[rune]bool
	sounds  []string
	motorMu sync.Mutex
	motors  map[int]*motor
}

func NewDummy() *Dummy {
	return &Dummy{
		powers: map[int]int{},
		inputs: map[rune]bool{},
		motors: map[int]*motor{},
	}
}

var _ Interface = (*Dummy)(nil)

func (d *Dummy) Start(ctx context.Context) {
	logger.Info(ctx, "DHW: Start")
}

func (d *Dummy) Motor(port int) Motor {
	return motorFor(&d.motorMu, d.motors, port, d)
}

func (d *Dummy) SetPower(port int, power int) {
	d.lock.Lock()
	d.powers[port] = power
	d.lock.Unlock()
}

// Power returns the last power sent to the (unsigned) port.
func (d *Dummy) Power(port int) int {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.powers[port]
}

func (d *Dummy) DigitalIn(port rune) DigitalIn {
	return dummyInput{d: d, port: port}
}

func (d *Dummy) SetDigital(port rune, value bool) {
	d.lock.Lock()
	d.inputs[port] = value
	d.lock.Unlock()
}

type dummyInput struct {
	d    *Dummy
	port rune
}

func (i dummyInput) Get() bool {
	i.d.lock.Lock()
	defer i.d.lock.Unlock()
	return i.d.inputs[i.port]
}

func (d *Dummy) StopAll() {
	d.motorMu.Lock()
	for _, m := range d.motors {
		m.lock.Lock()
		m.cancelPendingLocked()
		m.lock.Unlock()
	}
	d.motorMu.Unlock()

	d.lock.Lock()
	for port := range d.powers {
		d.powers[port] = 0
	}
	d.lock.Unlock()
}

func (d *Dummy) PlaySound(path string) {
	d.lock.Lock()
	d.sounds = append(d.sounds, path)
	d.lock.Unlock()
}

func (d *Dummy) Sounds() []string {
	d.lock.Lock()
	defer d.lock.Unlock()
	return append([]string(nil), d.sounds...)
}

func (d *Dummy) Shutdown() {
	logger.Logger().Info("DHW: Shutdown")
	d.StopAll()
}
