// Package program wires a robot program to the hardware, joystick, LCD and competition
// control. The cmd packages only choose which robot to build.
package program

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/tigerbot-team/clawbot/pkg/competition"
	"github.com/tigerbot-team/clawbot/pkg/config"
	"github.com/tigerbot-team/clawbot/pkg/hardware"
	"github.com/tigerbot-team/clawbot/pkg/joystick"
	"github.com/tigerbot-team/clawbot/pkg/lcd"
	"github.com/tigerbot-team/clawbot/pkg/logger"
)

type Options struct {
	Name       string
	ConfigPath string
	// Dummy runs without any hardware; the field is never connected.
	Dummy    bool
	LogLevel string
	// SaveConfigPath, if set, receives the configuration in use with every default filled in.
	SaveConfigPath string
}

// Env is what a robot program is built from.
type Env struct {
	Config     *config.Config
	HW         hardware.Interface
	Controller *joystick.Controller
	LCD        *lcd.LCD
	// IsConnected reports whether competition control is attached.
	IsConnected func() bool
}

type BuildFunc func(env *Env) competition.Robot

const joystickRetryInterval = time.Second

// Run loads the configuration, starts everything and runs the robot until ctx is done.
func Run(ctx context.Context, opts Options, build BuildFunc) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	levelName := opts.LogLevel
	if levelName == "" {
		levelName = cfg.LogLevel
	}
	level, ok := logger.ParseLogLevel(levelName)
	if !ok {
		return errors.Errorf("unknown log level %q", levelName)
	}
	logger.SetLevel(level)
	defer logger.Sync()

	ctx = logger.WithName(ctx, opts.Name)
	logger.InfoKV(ctx, "---- Starting ----", "config", opts.ConfigPath, "dummy", opts.Dummy)
	if opts.SaveConfigPath != "" {
		if err := cfg.Save(opts.SaveConfigPath); err != nil {
			logger.WarnKV(ctx, "Failed to save effective config", "path", opts.SaveConfigPath, "error", err)
		}
	}

	var hw hardware.Interface
	var field competition.Field
	if opts.Dummy {
		hw = hardware.NewDummy()
		field = competition.NewStatic(competition.Status{})
	} else {
		hw = hardware.New(cfg)
		field, err = competition.NewField(cfg.Competition)
		if err != nil {
			return errors.Wrap(err, "failed to open competition switch")
		}
	}
	defer func() {
		logger.Info(ctx, "Zeroing motors for shut down")
		hw.Shutdown()
	}()

	g, gctx := errgroup.WithContext(ctx)
	hw.Start(gctx)

	env := &Env{
		Config:     cfg,
		HW:         hw,
		Controller: joystick.NewController(),
		LCD:        lcd.New(),
	}
	runner := &competition.Runner{
		Field:   field,
		Outputs: hw,
		Sounds: map[competition.Task]string{
			competition.TaskAutonomous: cfg.Sounds.Autonomous,
			competition.TaskOpControl:  cfg.Sounds.OpControl,
		},
	}
	env.IsConnected = runner.IsConnected
	runner.Robot = build(env)

	g.Go(func() error {
		readJoystick(logger.WithName(gctx, "joystick"), cfg.JoystickDevice, env.Controller)
		return nil
	})
	if !opts.Dummy {
		g.Go(func() error {
			env.LCD.Render(logger.WithName(gctx, "lcd"), cfg.LCD.Framebuffer)
			return nil
		})
		buttons := openButtons(gctx, cfg.LCD)
		g.Go(func() error {
			env.LCD.WatchButtons(gctx, buttons)
			return nil
		})
	}
	g.Go(func() error {
		err := runner.Run(gctx)
		if err == context.Canceled {
			return nil
		}
		return err
	})

	err = g.Wait()
	if err != nil {
		logger.ErrorKV(ctx, "Robot program failed", "error", err)
	}
	logger.Info(ctx, "Shutting down")
	return err
}

// readJoystick keeps the controller fed, reopening the device whenever it goes away.
func readJoystick(ctx context.Context, device string, c *joystick.Controller) {
	for ctx.Err() == nil {
		j, err := joystick.NewJoystick(device)
		if err != nil {
			logger.Warnf(ctx, "Failed to open joystick: %v", err)
		} else {
			logger.Infof(ctx, "Opened joystick %s", device)
			if err := c.Loop(ctx, j); err != nil && ctx.Err() == nil {
				logger.Warnf(ctx, "Joystick failed: %v", err)
			}
		}
		select {
		case <-ctx.Done():
		case <-time.After(joystickRetryInterval):
		}
	}
}

func openButtons(ctx context.Context, cfg config.LCDConfig) [3]lcd.Switch {
	var switches [3]lcd.Switch
	for i, pin := range []string{cfg.LeftPin, cfg.CenterPin, cfg.RightPin} {
		if pin == "" {
			continue
		}
		in, err := hardware.NewGPIOInput(pin)
		if err != nil {
			logger.Warnf(ctx, "LCD %v button unavailable: %v", lcd.Button(i), err)
			continue
		}
		switches[i] = in
	}
	return switches
}
