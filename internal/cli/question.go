package cli

import (
	"github.com/spf13/cobra"
)

func newQuestionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "question",
		Short: "Question authoring commands",
	}

	cmd.AddCommand(newQuestionAddCmd())
	cmd.AddCommand(newQuestionGetCmd())
	cmd.AddCommand(newQuestionOptionCmd())
	cmd.AddCommand(newQuestionDeleteBulkCmd())

	return cmd
}

func newQuestionAddCmd() *cobra.Command {
	var runID, flagID, text, questionType string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a question to a run, optionally tied to a flag",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"run_id": runID,
				"text":   text,
				"type":   questionType,
			}
			if flagID != "" {
				req["flag_id"] = flagID
			}
			var result map[string]any

			if err := client.Post("/api/v1/questions", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Run id (required)")
	cmd.Flags().StringVar(&flagID, "flag", "", "Flag id to attach the question to")
	cmd.Flags().StringVar(&text, "text", "", "Question text (required)")
	cmd.Flags().StringVar(&questionType, "type", "multiple_choice", "Question type")
	_ = cmd.MarkFlagRequired("run")
	_ = cmd.MarkFlagRequired("text")

	return cmd
}

func newQuestionGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <question-id>",
		Short: "Show a question with its options",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result map[string]any

			if err := client.Get("/api/v1/questions/"+args[0], &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newQuestionOptionCmd() *cobra.Command {
	var questionID, text string
	var correct bool

	cmd := &cobra.Command{
		Use:   "option",
		Short: "Add an answer option to a question",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"question_id": questionID,
				"text":        text,
				"correct":     correct,
			}
			var result map[string]any

			if err := client.Post("/api/v1/options", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&questionID, "question", "", "Question id (required)")
	cmd.Flags().StringVar(&text, "text", "", "Option text (required)")
	cmd.Flags().BoolVar(&correct, "correct", false, "Mark this option as correct")
	_ = cmd.MarkFlagRequired("question")
	_ = cmd.MarkFlagRequired("text")

	return cmd
}

func newQuestionDeleteBulkCmd() *cobra.Command {
	var runID string
	var ids []string

	cmd := &cobra.Command{
		Use:   "delete-bulk",
		Short: "Delete several questions from a run",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{"question_ids": ids}
			var result DeletedResult

			if err := client.Delete("/api/v1/runs/"+runID+"/questions/bulk", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Run id (required)")
	cmd.Flags().StringArrayVar(&ids, "id", nil, "Question id (repeatable, required)")
	_ = cmd.MarkFlagRequired("run")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}
