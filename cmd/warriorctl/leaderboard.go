package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mptwarrior/warrior/internal/app"
)

func leaderboardCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Leaderboard maintenance",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "recalculate",
		Short: "Recompute this week's rankings now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, open, func(ctx context.Context, a *app.App) error {
				res, err := a.Pipeline.Run(ctx, "cli")
				if err != nil {
					return err
				}
				fmt.Printf("week %s: processed %d, updated %d, removed %d in %s\n",
					res.Week, res.Processed, res.Updated, res.Removed, res.Duration)
				return nil
			})
		},
	})
	return cmd
}
