package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tigerbot-team/clawbot/pkg/clawbot"
	"github.com/tigerbot-team/clawbot/pkg/competition"
	"github.com/tigerbot-team/clawbot/pkg/config"
	"github.com/tigerbot-team/clawbot/pkg/program"
)

var (
	opts = program.Options{Name: "clawbot"}

	rootCmd = &cobra.Command{
		Use:   "clawbot",
		Short: "ClawBot robot controller.",
		Long: `Runs the ClawBot: arcade drive with power on the left stick and steering on
right stick X, arm on R1/R2, claw on L1/L2, with bumper switches that stop the drive
reversing into obstacles.

Follows the competition switch if one is wired up, otherwise goes straight to
operator control.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return program.Run(ctx, opts, func(env *program.Env) competition.Robot {
				return clawbot.New(env.HW, env.Controller, env.LCD, env.Config.ClawBot.Period)
			})
		},
	}
)

func init() {
	rootCmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", config.DefaultPath, "path to configuration file")
	rootCmd.Flags().BoolVar(&opts.Dummy, "dummy", false, "run without hardware")
	rootCmd.Flags().StringVar(&opts.LogLevel, "log-level", "", "debug, info, warn or error (overrides the config file)")
	rootCmd.Flags().StringVar(&opts.SaveConfigPath, "save-config", "", "write the configuration in use, defaults included, to this path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
