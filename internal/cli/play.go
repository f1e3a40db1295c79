package cli

import (
	"github.com/spf13/cobra"
)

func newPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Attempt (history) commands",
	}

	cmd.AddCommand(newPlayStartCmd())
	cmd.AddCommand(newPlayEndCmd())
	cmd.AddCommand(newPlayReachCmd())
	cmd.AddCommand(newPlayListCmd())
	cmd.AddCommand(newPlayShowCmd())

	return cmd
}

func newPlayStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <run-id>",
		Short: "Start an attempt at a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result HistoryResult

			if err := client.Post("/api/v1/history/run/"+args[0]+"/start", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newPlayEndCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "end <history-id>",
		Short: "End an active attempt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result HistoryResult

			if err := client.Post("/api/v1/history/run/"+args[0]+"/end", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newPlayReachCmd() *cobra.Command {
	var point int
	var distance float64

	cmd := &cobra.Command{
		Use:   "reach <history-id> <flag-id>",
		Short: "Record reaching a flag in an attempt",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{"point": point}
			if cmd.Flags().Changed("distance") {
				req["distance"] = distance
			}
			var result map[string]any

			path := "/api/v1/history/run/" + args[0] + "/flag/" + args[1] + "/reach"
			if err := client.Post(path, req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&point, "point", 0, "Points awarded")
	cmd.Flags().Float64Var(&distance, "distance", 0, "Distance from the flag")

	return cmd
}

func newPlayListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your attempts",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result HistoriesResult

			if err := client.Get("/api/v1/history", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newPlayShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <history-id>",
		Short: "Show one attempt with its flag snapshots",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result HistoryResult

			if err := client.Get("/api/v1/history/"+args[0], &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
