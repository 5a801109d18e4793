package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reelcheck/internal/stepcache"
)

func newWorkflowsCommand(configFlag *string) *cobra.Command {
	workflowsCmd := &cobra.Command{
		Use:   "workflows",
		Short: "Inspect and manage cached verification workflows",
	}

	workflowsCmd.AddCommand(newWorkflowsListCommand(configFlag))
	workflowsCmd.AddCommand(newWorkflowsClearCommand(configFlag))

	return workflowsCmd
}

func newWorkflowsListCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached workflows with their completed steps",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configFlag)
			if err != nil {
				return err
			}
			store, err := stepcache.Open(cfg)
			if err != nil {
				return fmt.Errorf("open step cache: %w", err)
			}
			defer store.Close()

			keys, err := store.Keys(cmd.Context())
			if err != nil {
				return fmt.Errorf("list workflows: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(keys) == 0 {
				fmt.Fprintln(out, "No cached workflows")
				return nil
			}

			rows := make([][]string, 0, len(keys))
			for _, key := range keys {
				record, err := store.Get(cmd.Context(), key)
				if err != nil {
					return fmt.Errorf("read workflow %q: %w", key, err)
				}
				rows = append(rows, []string{key, workflowStage(record)})
			}
			fmt.Fprintln(out, renderTable([]string{"Post URL", "Progress"}, rows))
			return nil
		},
	}
}

func newWorkflowsClearCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <post-url>",
		Short: "Drop one cached workflow so its next run starts from scratch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configFlag)
			if err != nil {
				return err
			}
			store, err := stepcache.Open(cfg)
			if err != nil {
				return fmt.Errorf("open step cache: %w", err)
			}
			defer store.Close()

			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("clear workflow: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared cached workflow for %s\n", args[0])
			return nil
		},
	}
}

// workflowStage names the furthest completed pipeline step for display.
func workflowStage(record *stepcache.Record) string {
	ordered := []string{
		stepcache.StepClaims,
		stepcache.StepTranscript,
		stepcache.StepMedia,
		stepcache.StepLink,
	}
	for _, step := range ordered {
		if record.HasOK(step) {
			return step
		}
	}
	for step := range record.Steps {
		return step + " (failed)"
	}
	return "empty"
}
