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
)

const help = `Commands:
    m <port> <power>          # Move, power -127..127
    v <port> <rpm>            # Move at velocity
    r <port> <degrees> <rpm>  # Relative move
    g <port> <36|18|6>        # Set gearing
    d <a-h>                   # Read digital input
    s                         # Stop all motors

<port>  Smart port 1-21; negative reverses the motor`

var (
	configPath string

	rootCmd = &cobra.Command{
		Use:   "motortests",
		Short: "Drive individual motors from the terminal.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			hw := hardware.New(cfg)
			hw.Start(ctx)
			defer hw.Shutdown()

			fmt.Println(help)
			lines := make(chan string)
			go func() {
				defer close(lines)
				reader := bufio.NewReader(os.Stdin)
				for {
					line, err := reader.ReadString('\n')
					if err != nil {
						fmt.Println("\nFailed to read stdin: ", err)
						return
					}
					lines <- line
				}
			}()
			for {
				fmt.Print("> ")
				select {
				case <-ctx.Done():
					return nil
				case line, ok := <-lines:
					if !ok {
						return nil
					}
					if err := runCommand(hw, strings.Fields(line)); err != nil {
						fmt.Println(err)
					}
				}
			}
		},
	}
)

func runCommand(hw hardware.Interface, parts []string) error {
	if len(parts) == 0 {
		return nil
	}
	ints := func(want int) ([]int, error) {
		if len(parts) < want+1 {
			return nil, fmt.Errorf("not enough parameters")
		}
		var out []int
		for _, p := range parts[1 : want+1] {
			n, err := strconv.Atoi(p)
			if err != nil {
				return nil, fmt.Errorf("expected int, not %q", p)
			}
			out = append(out, n)
		}
		return out, nil
	}

	switch parts[0] {
	case "m":
		args, err := ints(2)
		if err != nil {
			return err
		}
		fmt.Printf("Port %d power %d\n", args[0], args[1])
		hw.Motor(args[0]).Move(args[1])
	case "v":
		args, err := ints(2)
		if err != nil {
			return err
		}
		fmt.Printf("Port %d velocity %d rpm\n", args[0], args[1])
		hw.Motor(args[0]).MoveVelocity(args[1])
	case "r":
		args, err := ints(3)
		if err != nil {
			return err
		}
		fmt.Printf("Port %d moving %d degrees at %d rpm\n", args[0], args[1], args[2])
		hw.Motor(args[0]).MoveRelative(float64(args[1]), args[2])
	case "g":
		args, err := ints(2)
		if err != nil {
			return err
		}
		g := map[int]hardware.Gearset{36: hardware.Gearset36, 18: hardware.Gearset18, 6: hardware.Gearset6}
		gs, ok := g[args[1]]
		if !ok {
			return fmt.Errorf("unknown gearset %d", args[1])
		}
		hw.Motor(args[0]).SetGearing(gs)
	case "d":
		if len(parts) < 2 || len(parts[1]) != 1 {
			return fmt.Errorf("expected a single letter port")
		}
		fmt.Printf("Input %s: %v\n", parts[1], hw.DigitalIn(rune(parts[1][0])).Get())
	case "s":
		fmt.Println("Stopping all motors")
		hw.StopAll()
	default:
		fmt.Println(help)
	}
	return nil
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultPath, "path to configuration file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
