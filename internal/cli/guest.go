package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGuestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guest",
		Short: "Guest session commands",
	}

	cmd.AddCommand(newGuestInitCmd())
	cmd.AddCommand(newGuestEndCmd())
	cmd.AddCommand(newGuestUpgradeCmd())

	return cmd
}

func newGuestInitCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Start a guest session",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"display_name": name}
			var result GuestResult

			if err := client.Post("/api/v1/guests/init", req, &result); err != nil {
				return err
			}

			// The guest token is the bearer credential for play routes
			if result.Guest != nil {
				if err := cfg.SaveToken(result.Guest.Token); err != nil {
					return fmt.Errorf("failed to save token: %w", err)
				}
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")

	return cmd
}

func newGuestEndCmd() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "end",
		Short: "End a guest session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				token = cfg.Token
			}
			req := map[string]string{"guest_token": token}
			var result MessageResult

			if err := client.Post("/api/v1/guests/end", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "guest-token", "", "Guest token (defaults to saved token)")

	return cmd
}

func newGuestUpgradeCmd() *cobra.Command {
	var token, name, email, pass string

	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Upgrade a guest session to a durable account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				token = cfg.Token
			}
			req := map[string]string{
				"guest_token":  token,
				"display_name": name,
				"email":        email,
				"password":     pass,
			}
			var result AuthResult

			if err := client.Post("/api/v1/guests/upgrade", req, &result); err != nil {
				return err
			}

			if err := cfg.SaveToken(result.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "guest-token", "", "Guest token (defaults to saved token)")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}
