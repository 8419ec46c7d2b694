package hardware

import (
	"context"
	"sync"
	"time"

	"github.com/tigerbot-team/clawbot/pkg/config"
	"github.com/tigerbot-team/clawbot/pkg/logger"
	"github.com/tigerbot-team/clawbot/pkg/pca9685"
)

const motorLoopInterval = 10 * time.Millisecond

// MotorController collects the desired power of every port and pushes changes to the
// PCA9685 from a single goroutine.
type MotorController struct {
	lock sync.Mutex

	// Desired values.  Stored off in case we need to re-initialise the hardware.
	powers   map[int]int
	channels map[int]int

	openBoard func() (pca9685.Interface, error)
}

func NewMotorController(cfg config.MotorConfig) *MotorController {
	return &MotorController{
		powers:   map[int]int{},
		channels: cfg.Channels,
		openBoard: func() (pca9685.Interface, error) {
			return pca9685.New(cfg.I2CDevice, cfg.Address, cfg.MinPulse, cfg.MaxPulse)
		},
	}
}

func (c *MotorController) SetPower(port int, power int) {
	c.lock.Lock()
	c.powers[port] = power
	c.lock.Unlock()
}

func (c *MotorController) Power(port int) int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.powers[port]
}

func (c *MotorController) StopAll() {
	c.lock.Lock()
	for port := range c.powers {
		c.powers[port] = 0
	}
	c.lock.Unlock()
}

func (c *MotorController) snapshot() map[int]int {
	c.lock.Lock()
	defer c.lock.Unlock()
	out := make(map[int]int, len(c.powers))
	for port, power := range c.powers {
		out[port] = power
	}
	return out
}

// Loop keeps the board in sync with the desired powers, reopening it after failures.
func (c *MotorController) Loop(ctx context.Context, initDone *sync.WaitGroup) {
	logger.Info(ctx, "Motor loop started")
	for {
		c.loopUntilSomethingBadHappens(ctx, initDone)
		if ctx.Err() != nil {
			return
		}
		logger.Errorf(ctx, "===== !!! WARNING !!! MOTOR BOARD FAILURE; TRYING TO RECOVER =====")
		initDone = nil
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}
	}
}

func (c *MotorController) loopUntilSomethingBadHappens(ctx context.Context, initDone *sync.WaitGroup) {
	defer func() {
		if initDone != nil {
			initDone.Done()
		}
	}()

	board, err := c.openBoard()
	if err != nil {
		logger.Errorf(ctx, "Failed to open motor board: %v", err)
		return
	}
	defer func() {
		if err := board.Close(); err != nil {
			logger.Warnf(ctx, "Failed to park motor board: %v", err)
		}
	}()

	if initDone != nil {
		initDone.Done()
		initDone = nil
	}

	// Unknown until first written, so everything gets pushed after a reopen.
	last := map[int]int{}
	ticker := time.NewTicker(motorLoopInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if err := c.push(board, last); err != nil {
			logger.Errorf(ctx, "Failed to update motor powers: %v", err)
			return
		}
	}
}

func (c *MotorController) push(board pca9685.Interface, last map[int]int) error {
	for port, power := range c.snapshot() {
		if prev, ok := last[port]; ok && prev == power {
			continue
		}
		ch, ok := c.channels[port]
		if !ok {
			// Nothing wired to this port; remember it so the warning isn't repeated.
			logger.Logger().Warnf("No PCA9685 channel configured for port %d", port)
			last[port] = power
			continue
		}
		if err := board.SetPower(ch, power); err != nil {
			return err
		}
		last[port] = power
	}
	return nil
}
