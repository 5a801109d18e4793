package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"reelcheck/internal/config"
)

func newConfigCommand(configFlag *string) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand(configFlag))
	configCmd.AddCommand(newConfigShowCommand(configFlag))

	return configCmd
}

func newConfigInitCommand(configFlag *string) *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a sample configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(*configFlag)
			if target == "" {
				target = config.DefaultPath()
			}

			if _, err := os.Stat(target); err == nil {
				if !overwrite {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				}
				if err := os.Remove(target); err != nil {
					return fmt.Errorf("remove existing config: %w", err)
				}
			} else if !os.IsNotExist(err) {
				return fmt.Errorf("check config path: %w", err)
			}

			if err := config.WriteSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set llm.api_key and embeddings.api_key before running a verification.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigShowCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, usedDefaults, err := config.Load(*configFlag)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if usedDefaults {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}

			rows := [][]string{
				{"data_dir", cfg.Paths.DataDir},
				{"media_dir", cfg.Paths.MediaDir},
				{"log_dir", cfg.Paths.LogDir},
				{"api_bind", cfg.Paths.APIBind},
				{"cache.backend", cfg.Cache.Backend},
				{"cache.evidence", fmt.Sprintf("%t", cfg.Cache.Evidence)},
				{"pipeline.transcript_policy", cfg.Pipeline.TranscriptPolicy},
				{"pipeline.claim_workers", fmt.Sprintf("%d", cfg.Pipeline.ClaimWorkers)},
				{"retrieval.searx_url", cfg.Retrieval.SearxURL},
				{"retrieval.region", cfg.Retrieval.Region},
				{"retrieval.fetch_workers", fmt.Sprintf("%d", cfg.Retrieval.FetchWorkers)},
				{"retrieval.max_results", fmt.Sprintf("%d", cfg.Retrieval.MaxResults)},
				{"retrieval.top_k", fmt.Sprintf("%d", cfg.Retrieval.TopK)},
				{"retrieval.llm_optimizer", fmt.Sprintf("%t", cfg.Retrieval.LLMOptimizer)},
				{"llm.model", cfg.LLM.Model},
				{"embeddings.model", cfg.Embeddings.Model},
				{"transcriber.url", cfg.Transcriber.URL},
			}
			fmt.Fprintln(out, renderTable([]string{"Setting", "Value"}, rows))
			return nil
		},
	}
}
