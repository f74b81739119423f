// Command warriorctl runs operator tasks against the same store as the server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mptwarrior/warrior/internal/app"
	"github.com/mptwarrior/warrior/internal/config"
	"github.com/mptwarrior/warrior/pkg/logging"
)

var Version = "dev"

func main() {
	var envFile string

	rootCmd := &cobra.Command{
		Use:           "warriorctl",
		Short:         "Operator tooling for the MPT Warrior backend",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	open := func(ctx context.Context) (*app.App, error) {
		cfg, err := config.Load(envFile)
		if err != nil {
			return nil, err
		}
		logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)
		return app.New(ctx, cfg, logger)
	}

	rootCmd.AddCommand(codesCmd(open))
	rootCmd.AddCommand(leaderboardCmd(open))
	rootCmd.AddCommand(quizCmd(open))
	rootCmd.AddCommand(usersCmd(open))

	if err := rootCmd.Execute(); err != nil {
		slog.Error("Command failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// opener loads configuration and builds the shared object graph.
type opener func(ctx context.Context) (*app.App, error)

// withApp opens the app for the duration of fn.
func withApp(cmd *cobra.Command, open opener, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}
