// Package pca9685 drives PWM motor controllers (which take RC servo pulses)
// from a PCA9685 board.
package pca9685

import (
	"fmt"
	"io"
	"sync"

	i2c "github.com/googolgl/go-i2c"
	driver "github.com/googolgl/go-pca9685"
	"github.com/pkg/errors"
)

const (
	DefaultAddr = 0x40

	NumChannels = 16

	MaxPower = 127

	// Pulse widths in microseconds for full reverse and full forward.
	DefaultMinPulse = driver.ServoMinPulseDef
	DefaultMaxPulse = driver.ServoMaxPulseDef
)

type Interface interface {
	SetPower(channel int, power int) error
	Close() error
}

type PCA9685 struct {
	bus      io.Closer
	dev      *driver.PCA9685
	minPulse float32
	maxPulse float32

	lock     sync.Mutex
	channels map[int]*driver.Servo
}

func New(deviceFile string, addr uint8, minPulse, maxPulse float64) (Interface, error) {
	bus, err := i2c.New(addr, deviceFile)
	if err != nil {
		return nil, errors.Wrapf(err, "open i2c %s addr 0x%x", deviceFile, addr)
	}
	p, err := attach(bus, func() (*driver.PCA9685, error) { return driver.New(bus, nil) }, minPulse, maxPulse)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// attach initializes the board on an open bus. The bus is closed if that fails.
func attach(bus io.Closer, initBoard func() (*driver.PCA9685, error), minPulse, maxPulse float64) (*PCA9685, error) {
	dev, err := initBoard()
	if err != nil {
		_ = bus.Close()
		return nil, errors.Wrap(err, "init pca9685")
	}
	if minPulse == 0 || maxPulse == 0 {
		minPulse, maxPulse = float64(DefaultMinPulse), float64(DefaultMaxPulse)
	}
	return &PCA9685{
		bus:      bus,
		dev:      dev,
		minPulse: float32(minPulse),
		maxPulse: float32(maxPulse),
		channels: map[int]*driver.Servo{},
	}, nil
}

func (p *PCA9685) SetPower(channel int, power int) error {
	if channel < 0 || channel >= NumChannels {
		return fmt.Errorf("channel %d out of range", channel)
	}
	p.lock.Lock()
	ch, ok := p.channels[channel]
	if !ok {
		ch = p.dev.ServoNew(channel, &driver.ServOptions{
			AcRange:  driver.ServoRangeDef,
			MinPulse: p.minPulse,
			MaxPulse: p.maxPulse,
		})
		p.channels[channel] = ch
	}
	p.lock.Unlock()
	return ch.Fraction(PowerToFraction(power))
}

// Close parks every channel at neutral so the controllers stop driving, then releases the bus.
func (p *PCA9685) Close() error {
	var firstErr error
	p.lock.Lock()
	defer p.lock.Unlock()
	for _, ch := range p.channels {
		if err := ch.Fraction(0.5); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := p.bus.Close(); err != nil && firstErr == nil {
		firstErr = errors.Wrap(err, "close i2c")
	}
	return firstErr
}

// PowerToFraction maps -127..127 onto the 0..1 pulse range with 0.5 as neutral.
func PowerToFraction(power int) float32 {
	f := 0.5 + float32(power)/(2*MaxPower)
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func Dummy() *DummyBoard {
	return &DummyBoard{Powers: map[int]int{}}
}

// DummyBoard remembers the last power written to each channel.
type DummyBoard struct {
	lock   sync.Mutex
	Powers map[int]int
	Writes int
	Fail   error
}

func (d *DummyBoard) SetPower(channel int, power int) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.Fail != nil {
		return d.Fail
	}
	d.Powers[channel] = power
	d.Writes++
	return nil
}

func (d *DummyBoard) Power(channel int) int {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.Powers[channel]
}

func (d *DummyBoard) Close() error {
	return nil
}
