package main

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"hrportal/internal/app"
	"hrportal/internal/config"
	"hrportal/internal/model"
	"hrportal/internal/service"
)

func newUserCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Provision and list portal users",
	}
	cmd.AddCommand(newUserCreateCmd(cfg, jsonOutput))
	cmd.AddCommand(newUserListCmd(cfg, jsonOutput))
	return cmd
}

func newUserCreateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		name  string
		admin bool
	)

	cmd := &cobra.Command{
		Use:   "create <identifier>",
		Short: "Create one user; the password is read from stdin",
		Args:  exactArgs(1, "identifier is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			passwordBytes, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return err
			}
			password := strings.TrimRight(string(passwordBytes), "\r\n")

			return withApp(cmd, cfg, func(a *app.App) error {
				user, err := a.Users.CreateUser(cmd.Context(), service.NewUser{
					Identifier: args[0],
					Name:       name,
					Password:   password,
					Admin:      admin,
				})
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if *jsonOutput {
					return writeJSON(out, user.Identity())
				}
				role := "employee"
				if user.IsAdmin() {
					role = "admin"
				}
				return writePlain(out, "created %s %s (%s)\n", role, user.Identifier, user.Name)
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().BoolVar(&admin, "admin", false, "grant administrator access")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newUserListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List provisioned users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, cfg, func(a *app.App) error {
				users, err := a.Users.ListUsers(cmd.Context())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if *jsonOutput {
					identities := make([]*model.Identity, 0, len(users))
					for i := range users {
						identities = append(identities, users[i].Identity())
					}
					return writeJSON(out, map[string]any{"count": len(users), "users": identities})
				}
				if len(users) == 0 {
					return writePlain(out, "no users provisioned\n")
				}
				if err := writePlain(out, "IDENTIFIER\tNAME\tADMIN\n"); err != nil {
					return err
				}
				for _, user := range users {
					if err := writePlain(out, "%s\t%s\t%t\n", user.Identifier, user.Name, user.IsAdmin()); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}
