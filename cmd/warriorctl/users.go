package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mptwarrior/warrior/internal/app"
	"github.com/mptwarrior/warrior/internal/auth"
	"github.com/mptwarrior/warrior/internal/models"
)

// adminPasswordEnv supplies the password when --password is omitted.
const adminPasswordEnv = "WARRIOR_ADMIN_PASSWORD"

func usersCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Account administration",
	}

	var (
		email, name, password string
		super                 bool
	)
	createAdmin := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an active admin account without an invitation code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv(adminPasswordEnv)
			}
			role := models.RoleAdmin
			if super {
				role = models.RoleSuperAdmin
			}
			return withApp(cmd, open, func(ctx context.Context, a *app.App) error {
				user, err := newAdmin(email, name, role, time.Now().UTC())
				if err != nil {
					return err
				}
				if err := a.Authenticator.Register(ctx, user, password); err != nil {
					return err
				}
				fmt.Printf("created %s %s (%s, id %s)\n", user.Role, user.Email, user.WarriorID, user.ID)
				return nil
			})
		},
	}
	createAdmin.Flags().StringVar(&email, "email", "", "Login email (required)")
	createAdmin.Flags().StringVar(&name, "name", "Administrator", "Display name")
	createAdmin.Flags().StringVar(&password, "password", "", "Password; defaults to $"+adminPasswordEnv)
	createAdmin.Flags().BoolVar(&super, "super", false, "Create a SUPER_ADMIN instead of an ADMIN")
	createAdmin.MarkFlagRequired("email")

	cmd.AddCommand(createAdmin)
	return cmd
}

func newAdmin(email, name string, role models.Role, now time.Time) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, errors.New("email is required")
	}
	warriorID, err := auth.NewWarriorID(now)
	if err != nil {
		return nil, err
	}
	return &models.User{
		ID:           uuid.New().String(),
		WarriorID:    warriorID,
		Email:        email,
		Name:         strings.TrimSpace(name),
		Role:         role,
		Status:       models.StatusActive,
		Settings:     models.DefaultUserSettings(),
		JoinDate:     now,
		ApprovedDate: &now,
		ApprovedBy:   "warriorctl",
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}
