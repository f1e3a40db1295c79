package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newFlagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flag",
		Short: "Flag authoring commands",
	}

	cmd.AddCommand(newFlagAddCmd())
	cmd.AddCommand(newFlagAddBulkCmd())
	cmd.AddCommand(newFlagMoveCmd())
	cmd.AddCommand(newFlagDeleteCmd())
	cmd.AddCommand(newFlagDeleteBulkCmd())

	return cmd
}

// parseLatLng parses a "lat,lng" pair
func parseLatLng(s string) (float64, float64, error) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected lat,lng but got %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad latitude %q", parts[0])
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad longitude %q", parts[1])
	}
	return lat, lng, nil
}

func newFlagAddCmd() *cobra.Command {
	var runID, at string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add one flag to a run (gets the next flag number)",
		RunE: func(cmd *cobra.Command, args []string) error {
			lat, lng, err := parseLatLng(at)
			if err != nil {
				return err
			}
			req := map[string]any{
				"run_id": runID,
				"lat":    lat,
				"lng":    lng,
			}
			var result FlagResult

			if err := client.Post("/api/v1/flags", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Run id (required)")
	cmd.Flags().StringVar(&at, "at", "", "Position as lat,lng (required)")
	_ = cmd.MarkFlagRequired("run")
	_ = cmd.MarkFlagRequired("at")

	return cmd
}

func newFlagAddBulkCmd() *cobra.Command {
	var runID string
	var at []string

	cmd := &cobra.Command{
		Use:   "add-bulk",
		Short: "Add several flags in one contiguous number block",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := make([]map[string]any, 0, len(at))
			for _, pos := range at {
				lat, lng, err := parseLatLng(pos)
				if err != nil {
					return err
				}
				flags = append(flags, map[string]any{"lat": lat, "lng": lng})
			}
			req := map[string]any{"flags": flags}
			var result FlagsResult

			if err := client.Post("/api/v1/runs/"+runID+"/flags/bulk", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Run id (required)")
	cmd.Flags().StringArrayVar(&at, "at", nil, "Position as lat,lng (repeatable, required)")
	_ = cmd.MarkFlagRequired("run")
	_ = cmd.MarkFlagRequired("at")

	return cmd
}

func newFlagMoveCmd() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "move <flag-id>",
		Short: "Move a flag; its number stays fixed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lat, lng, err := parseLatLng(at)
			if err != nil {
				return err
			}
			req := map[string]any{"lat": lat, "lng": lng}
			var result FlagResult

			if err := client.Put("/api/v1/flags/"+args[0], req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "New position as lat,lng (required)")
	_ = cmd.MarkFlagRequired("at")

	return cmd
}

func newFlagDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <flag-id>",
		Short: "Delete one flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result MessageResult

			if err := client.Delete("/api/v1/flags/"+args[0], nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newFlagDeleteBulkCmd() *cobra.Command {
	var runID string
	var ids []string

	cmd := &cobra.Command{
		Use:   "delete-bulk",
		Short: "Delete several flags from a run",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{"flag_ids": ids}
			var result DeletedResult

			if err := client.Delete("/api/v1/runs/"+runID+"/flags/bulk", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Run id (required)")
	cmd.Flags().StringArrayVar(&ids, "id", nil, "Flag id (repeatable, required)")
	_ = cmd.MarkFlagRequired("run")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}
