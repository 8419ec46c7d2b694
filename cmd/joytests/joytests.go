package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tigerbot-team/clawbot/pkg/config"
	"github.com/tigerbot-team/clawbot/pkg/joystick"
)

var (
	configPath string

	rootCmd = &cobra.Command{
		Use:   "joytests",
		Short: "Print the controller state as the robot programs see it.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			j := waitForJoystick(ctx, cfg.JoystickDevice)
			if j == nil {
				return nil
			}
			fmt.Println("Opened joystick")

			c := joystick.NewController()
			go printChanges(ctx, c)
			return c.Loop(ctx, j)
		},
	}
)

func waitForJoystick(ctx context.Context, device string) *joystick.Joystick {
	firstLog := true
	for ctx.Err() == nil {
		j, err := joystick.NewJoystick(device)
		if err == nil {
			return j
		}
		if firstLog {
			fmt.Printf("Waiting for joystick: %v.\n", err)
			firstLog = false
		}
		time.Sleep(1 * time.Second)
	}
	return nil
}

var axes = []joystick.Axis{joystick.AxisLeftX, joystick.AxisLeftY, joystick.AxisRightX, joystick.AxisRightY}

var buttons = []joystick.Button{
	joystick.ButtonL1, joystick.ButtonL2, joystick.ButtonR1, joystick.ButtonR2,
	joystick.ButtonUp, joystick.ButtonDown, joystick.ButtonLeft, joystick.ButtonRight,
	joystick.ButtonX, joystick.ButtonB, joystick.ButtonY, joystick.ButtonA,
}

func describe(c joystick.Input) string {
	s := fmt.Sprintf("LX %4d LY %4d RX %4d RY %4d |",
		c.Analog(axes[0]), c.Analog(axes[1]), c.Analog(axes[2]), c.Analog(axes[3]))
	for _, b := range buttons {
		if c.Digital(b) {
			s += " " + b.String()
		}
	}
	return s
}

func printChanges(ctx context.Context, c joystick.Input) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	last := ""
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if s := describe(c); s != last {
			fmt.Println(s)
			last = s
		}
	}
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultPath, "path to configuration file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
