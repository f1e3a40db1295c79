package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run authoring commands",
	}

	cmd.AddCommand(newRunCreateCmd())
	cmd.AddCommand(newRunGetCmd())
	cmd.AddCommand(newRunPinCmd())
	cmd.AddCommand(newRunUpdateCmd())
	cmd.AddCommand(newRunDeleteCmd())

	return cmd
}

func newRunCreateCmd() *cobra.Command {
	var title, runType, pin string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a run (a unique pin is assigned if none is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"title": title,
				"type":  runType,
			}
			if pin != "" {
				req["pin"] = pin
			}
			var result RunResult

			if err := client.Post("/api/v1/runs", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Run title (required)")
	cmd.Flags().StringVar(&runType, "type", "scavenger", "Run type")
	cmd.Flags().StringVar(&pin, "pin", "", "Explicit 6-character pin")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newRunGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <run-id>",
		Short: "Show a run with its flags and questions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result RunResult

			if err := client.Get("/api/v1/runs/"+args[0], &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRunPinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pin <pin>",
		Short: "Look a run up by its join pin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result RunResult

			if err := client.Get("/api/v1/runs/pin/"+args[0], &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRunUpdateCmd() *cobra.Command {
	var title, runType string

	cmd := &cobra.Command{
		Use:   "update <run-id>",
		Short: "Update a run's title or type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if title == "" && runType == "" {
				return fmt.Errorf("nothing to update; pass --title or --type")
			}
			req := map[string]any{}
			if title != "" {
				req["title"] = title
			}
			if runType != "" {
				req["type"] = runType
			}
			var result RunResult

			if err := client.Put("/api/v1/runs/"+args[0], req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&runType, "type", "", "New type")

	return cmd
}

func newRunDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <run-id>",
		Short: "Delete a run and everything attached to it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result MessageResult

			if err := client.Delete("/api/v1/runs/"+args[0], nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
