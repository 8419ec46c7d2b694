package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tigerbot-team/clawbot/pkg/competition"
	"github.com/tigerbot-team/clawbot/pkg/config"
	"github.com/tigerbot-team/clawbot/pkg/program"
	"github.com/tigerbot-team/clawbot/pkg/templatez"
)

var (
	opts = program.Options{Name: "templatez"}

	rootCmd = &cobra.Command{
		Use:   "templatez",
		Short: "Template robot controller on the drive library.",
		Long: `Runs the template robot: split arcade drive, an LCD autonomous selector and, when
no competition control is connected, the constant tuner (X) and a manual
autonomous run (hold B and down).`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return program.Run(ctx, opts, func(env *program.Env) competition.Robot {
				r := templatez.New(env.Config.Templatez, env.HW, env.Controller, env.LCD)
				r.IsConnected = env.IsConnected
				return r
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
