package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tigerbot-team/clawbot/pkg/config"
	"github.com/tigerbot-team/clawbot/pkg/hardware"
	"github.com/tigerbot-team/clawbot/pkg/lcd"
)

var (
	configPath string

	rootCmd = &cobra.Command{
		Use:   "screentests",
		Short: "Write LCD lines from the terminal and report button presses.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			display := lcd.New()
			go display.Render(ctx, cfg.LCD.Framebuffer)

			var switches [3]lcd.Switch
			for i, pin := range []string{cfg.LCD.LeftPin, cfg.LCD.CenterPin, cfg.LCD.RightPin} {
				b := lcd.Button(i)
				display.RegisterButton(b, func() { fmt.Printf("\n%v button pressed\n> ", b) })
				if pin == "" {
					continue
				}
				in, err := hardware.NewGPIOInput(pin)
				if err != nil {
					fmt.Printf("No %v button: %v\n", b, err)
					continue
				}
				switches[i] = in
			}
			go display.WatchButtons(ctx, switches)

			fmt.Println("Enter <line 0-7> <text>, or <line> alone to clear it")
			reader := bufio.NewReader(os.Stdin)
			for ctx.Err() == nil {
				fmt.Print("> ")
				line, err := reader.ReadString('\n')
				if err != nil {
					fmt.Println("\nFailed to read stdin: ", err)
					return nil
				}
				if !setLine(display, line) {
					fmt.Println("Expected a line number 0-7")
				}
			}
			return nil
		},
	}
)

func setLine(display *lcd.LCD, input string) bool {
	num, text, _ := strings.Cut(strings.TrimRight(input, "\r\n"), " ")
	n, err := strconv.Atoi(num)
	if err != nil {
		return false
	}
	if text == "" {
		return display.ClearLine(n)
	}
	return display.SetText(n, text)
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultPath, "path to configuration file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
