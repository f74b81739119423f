package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mptwarrior/warrior/internal/app"
	"github.com/mptwarrior/warrior/internal/invitation"
	"github.com/mptwarrior/warrior/internal/models"
)

func codesCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "codes",
		Short: "Manage invitation codes",
	}
	cmd.AddCommand(codesGenerateCmd(open), codesListCmd(open), codesDeactivateCmd(open))
	return cmd
}

func codesGenerateCmd(open opener) *cobra.Command {
	var (
		count  int
		params invitation.GenerateParams
		role   string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Mint one or more invitation codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params.Role = models.Role(role)
			return withApp(cmd, open, func(ctx context.Context, a *app.App) error {
				var codes []*models.InvitationCode
				if count > 1 {
					if params.Code != "" {
						return fmt.Errorf("--code cannot be combined with --count")
					}
					var err error
					if codes, err = a.Codes.BulkGenerate(ctx, count, params); err != nil {
						return err
					}
				} else {
					c, err := a.Codes.Generate(ctx, params)
					if err != nil {
						return err
					}
					codes = []*models.InvitationCode{c}
				}
				return printCodes(codes)
			})
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of random codes to mint")
	cmd.Flags().StringVar(&params.Code, "code", "", "Explicit code value")
	cmd.Flags().IntVar(&params.MaxUses, "max-uses", 1, "Registrations allowed per code")
	cmd.Flags().IntVar(&params.ExpiresInDays, "expires-in", invitation.DefaultExpiryDays, "Days until the code expires")
	cmd.Flags().StringVar(&role, "role", string(models.RoleWarrior), "Role granted on registration (WARRIOR or ADMIN)")
	cmd.Flags().StringVarP(&params.Description, "description", "d", "", "Free-form note")
	cmd.Flags().StringVar(&params.CreatedBy, "created-by", "", "User id recorded as the code's creator")
	return cmd
}

func codesListCmd(open opener) *cobra.Command {
	var activeOnly bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List invitation codes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, open, func(ctx context.Context, a *app.App) error {
				codes, err := a.Codes.List(ctx, activeOnly)
				if err != nil {
					return err
				}
				return printCodes(codes)
			})
		},
	}
	cmd.Flags().BoolVar(&activeOnly, "active", false, "Only list active codes")
	return cmd
}

func codesDeactivateCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <code>...",
		Short: "Deactivate invitation codes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, open, func(ctx context.Context, a *app.App) error {
				for _, code := range args {
					c, err := a.Codes.Deactivate(ctx, code)
					if err != nil {
						return fmt.Errorf("%s: %w", code, err)
					}
					fmt.Printf("deactivated %s (%d/%d used)\n", c.Code, c.UsedCount, c.MaxUses)
				}
				return nil
			})
		},
	}
}

func printCodes(codes []*models.InvitationCode) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tROLE\tUSED\tMAX\tACTIVE\tEXPIRES\tDESCRIPTION")
	for _, c := range codes {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%t\t%s\t%s\n",
			c.Code, c.Role, c.UsedCount, c.MaxUses, c.IsActive, c.ExpiresAt.Format("2006-01-02"), c.Description)
	}
	return w.Flush()
}
