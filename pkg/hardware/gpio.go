package hardware

import (
	"sync"

	"github.com/pkg/errors"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/host"
)

var (
	periphOnce sync.Once
	periphErr  error
)

// InitPeriph loads the periph host drivers once per process.
func InitPeriph() error {
	periphOnce.Do(func() {
		_, periphErr = host.Init()
	})
	return periphErr
}

// GPIOInput is a switch wired between the pin and ground, so pressed reads low.
type GPIOInput struct {
	pin gpio.PinIO
}

func NewGPIOInput(name string) (*GPIOInput, error) {
	if err := InitPeriph(); err != nil {
		return nil, errors.Wrap(err, "init periph")
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, errors.Errorf("no such GPIO pin %q", name)
	}
	if err := pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, errors.Wrapf(err, "configure %s as input", name)
	}
	return &GPIOInput{pin: pin}, nil
}

func (g *GPIOInput) Get() bool {
	return g.pin.Read() == gpio.Low
}

// constantInput stands in for a switch that could not be opened.
type constantInput bool

func (c constantInput) Get() bool {
	return bool(c)
}
