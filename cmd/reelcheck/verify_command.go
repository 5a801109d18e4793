package main

import (
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"reelcheck/internal/logging"
	"reelcheck/internal/pipeline"
	"reelcheck/internal/progress"
	"reelcheck/internal/services/factcheck"
	"reelcheck/internal/verify"
)

func newVerifyCommand(configFlag *string) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "verify <post-url>",
		Short: "Verify the claims made in an Instagram reel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configFlag)
			if err != nil {
				return err
			}
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			orchestrator, store, err := pipeline.Build(cfg, logger)
			if err != nil {
				return fmt.Errorf("build pipeline: %w", err)
			}
			defer store.Close()

			var reporter progress.Reporter = progress.Noop{}
			if !jsonOutput {
				reporter = progress.NewConsole(cmd.OutOrStdout())
			}
			report, err := orchestrator.Run(ctx, args[0], reporter)
			if err != nil {
				return err
			}
			return renderReport(cmd, report, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the report as JSON")
	return cmd
}

func renderReport(cmd *cobra.Command, report *verify.Report, jsonOutput bool) error {
	out := cmd.OutOrStdout()
	if jsonOutput || !stdoutIsTerminal() {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	}

	if !report.Success {
		fmt.Fprintf(out, "\nVerification failed: %s\n", report.Message)
		if len(report.Claims) > 0 {
			fmt.Fprintln(out)
			fmt.Fprintln(out, claimsTable(report.Claims))
		}
		return nil
	}

	fmt.Fprintf(out, "\nVerdict: %s\n\n", factcheck.VerdictLabel(report.Verdict))
	fmt.Fprintln(out, report.Verdict)
	if len(report.Claims) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, claimsTable(report.Claims))
	}
	return nil
}

func claimsTable(findings []verify.ClaimFinding) string {
	rows := make([][]string, 0, len(findings))
	for _, finding := range findings {
		status := factcheck.VerificationLabel(finding.Verification)
		if finding.Error != "" {
			status = "UNVERIFIED"
		} else if status == "" {
			status = "UNKNOWN"
		}
		rows = append(rows, []string{
			finding.Claim.Text,
			string(finding.Claim.Category),
			status,
			fmt.Sprintf("%d", len(finding.SourceURLs())),
		})
	}
	return renderTable([]string{"Claim", "Category", "Status", "Sources"}, rows)
}
