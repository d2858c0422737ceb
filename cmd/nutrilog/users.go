package main

import (
	"errors"
	"fmt"

	"nutrilog/internal/app"

	"github.com/spf13/cobra"
)

func newCreateUserCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a password login",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" || password == "" {
				return errors.New("--username and --password are required")
			}
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := openStorage(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer func() { _ = store.close() }()

			user, err := app.NewAuthService(store.users, store.sessions).CreateUser(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			logger.Info("user created", "user_id", user.ID, "username", user.Username)
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (id %d)\n", user.Username, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "Login name")
	cmd.Flags().StringVar(&password, "password", "", "Password (at least 8 characters)")
	return cmd
}
