package hardware

import (
	"context"
	"sync"
	"time"

	"github.com/tigerbot-team/clawbot/pkg/config"
	"github.com/tigerbot-team/clawbot/pkg/logger"
	"github.com/tigerbot-team/clawbot/pkg/sound"
)

type Hardware struct {
	motorCtl *MotorController
	inputPins map[string]string

	soundsToPlay chan string

	lock    sync.Mutex
	motors  map[int]*motor
	digital map[rune]DigitalIn
}

func New(cfg *config.Config) *Hardware {
	return &Hardware{
		motorCtl:     NewMotorController(cfg.Motors),
		inputPins:    cfg.Inputs,
		soundsToPlay: sound.InitSound(),
		motors:       map[int]*motor{},
		digital:      map[rune]DigitalIn{},
	}
}

var _ Interface = (*Hardware)(nil)

func (h *Hardware) Start(ctx context.Context) {
	var initDone sync.WaitGroup
	initDone.Add(1)
	go h.motorCtl.Loop(logger.WithName(ctx, "motors"), &initDone)
	initDone.Wait()
}

func (h *Hardware) Motor(port int) Motor {
	return motorFor(&h.lock, h.motors, port, h.motorCtl)
}

func (h *Hardware) DigitalIn(port rune) DigitalIn {
	h.lock.Lock()
	defer h.lock.Unlock()
	if in, ok := h.digital[port]; ok {
		return in
	}
	var in DigitalIn = constantInput(false)
	pinName, ok := h.inputPins[string(port)]
	if !ok {
		logger.Logger().Warnf("No GPIO pin configured for digital port %q; reading false", port)
	} else if gin, err := NewGPIOInput(pinName); err != nil {
		logger.Logger().Errorf("Failed to open digital port %q: %v; reading false", port, err)
	} else {
		in = gin
	}
	h.digital[port] = in
	return in
}

func (h *Hardware) StopAll() {
	h.lock.Lock()
	for _, m := range h.motors {
		m.lock.Lock()
		m.cancelPendingLocked()
		m.lock.Unlock()
	}
	h.lock.Unlock()
	h.motorCtl.StopAll()
}

func (h *Hardware) PlaySound(path string) {
	if path == "" {
		return
	}
	defer func() {
		recover() // Don't die if the channel is already closed.
	}()
	select {
	case h.soundsToPlay <- path:
		return
	case <-time.After(10 * time.Millisecond):
		logger.Logger().Warnf("Timed out trying to play sound: %s", path)
	}
}

func (h *Hardware) Shutdown() {
	h.StopAll()
	// Give the motor loop a tick to push the zeros.
	time.Sleep(2 * motorLoopInterval)
	close(h.soundsToPlay)
}

// motorFor returns the shared motor object for the signed port, creating it on first use.
func motorFor(lock *sync.Mutex, motors map[int]*motor, port int, out output) Motor {
	lock.Lock()
	defer lock.Unlock()
	if m, ok := motors[port]; ok {
		return m
	}
	m := newMotor(port, out)
	motors[port] = m
	return m
}
