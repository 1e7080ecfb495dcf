package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"suimu/internal/csvimport"
	"suimu/internal/logging"
	"suimu/internal/maybemusic"
)

// checkFinding is one warning raised against a record.
type checkFinding struct {
	Record string `json:"record"`
	Hash   string `json:"hash"`
	Stage  string `json:"stage"`
	Reason string `json:"reason"`
}

// checkReport is the --json output of the check command.
type checkReport struct {
	Path     string                  `json:"path"`
	Entries  int                     `json:"entries"`
	Rows     int                     `json:"rows"`
	Skipped  []csvimport.SkippedRow  `json:"skipped"`
	Findings []checkFinding          `json:"findings"`
	Records  []maybemusic.MaybeMusic `json:"records"`
}

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var formatOnly bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "check <csv>",
		Short: "Validate a clip list",
		Long: "Validate a clip list. The format pass parses every row; unless " +
			"--format-only is set, each record is then checked for clip order " +
			"and platform support. Findings are warnings and do not fail the command.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			logger := ctx.logger(cmd)
			logger.Info("checking csv", logging.String(logging.FieldCSVPath, path))

			outcome, err := csvimport.Parse(path)
			if err != nil {
				return fmt.Errorf("CSV validation failed: %w", err)
			}
			report := checkReport{
				Path:     path,
				Entries:  len(outcome.Records),
				Rows:     outcome.Rows,
				Skipped:  outcome.Skipped,
				Findings: []checkFinding{},
				Records:  outcome.Records,
			}
			if !formatOnly {
				report.Findings = checkRecords(outcome.Records)
			}

			if jsonOutput {
				return writeJSON(cmd, report)
			}
			renderCheckReport(cmd, report, formatOnly)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&formatOnly, "format-only", "f", false, "Only check the file format")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the report as JSON")
	return cmd
}

// checkRecords runs the logic pass then the platform support pass.
func checkRecords(records []maybemusic.MaybeMusic) []checkFinding {
	findings := []checkFinding{}
	for _, m := range records {
		if err := maybemusic.CheckLogic(m); err != nil {
			findings = append(findings, newFinding(m, "logic", err.Error()))
		}
	}
	for _, m := range records {
		if strings.TrimSpace(m.VideoType) == "" {
			findings = append(findings, newFinding(m, "support", "empty video_type"))
			continue
		}
		if _, ok := maybemusic.ParsePlatform(strings.TrimSpace(m.VideoType)); !ok {
			reason := fmt.Sprintf("%v: %q", maybemusic.ErrUnsupportedPlatform, m.VideoType)
			findings = append(findings, newFinding(m, "support", reason))
		}
	}
	return findings
}

func newFinding(m maybemusic.MaybeMusic, stage, reason string) checkFinding {
	return checkFinding{Record: m.String(), Hash: m.Hash(), Stage: stage, Reason: reason}
}

func renderCheckReport(cmd *cobra.Command, report checkReport, formatOnly bool) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	for _, line := range renderSectionHeader("Format", colorize) {
		fmt.Fprintln(out, line)
	}
	kind := statusOK
	if len(report.Skipped) > 0 {
		kind = statusWarn
	}
	fmt.Fprintln(out, renderStatusLine("Entries", kind,
		fmt.Sprintf("%d of %d rows parsed", report.Entries, report.Rows), colorize))
	for _, row := range report.Skipped {
		fmt.Fprintln(out, renderStatusLine(fmt.Sprintf("Line %d", row.Line), statusWarn, row.Reason, colorize))
	}
	if formatOnly {
		return
	}

	fmt.Fprintln(out)
	for _, line := range renderSectionHeader("Records", colorize) {
		fmt.Fprintln(out, line)
	}
	if len(report.Findings) == 0 {
		fmt.Fprintln(out, renderStatusLine("Findings", statusOK, "none", colorize))
	}
	for _, f := range report.Findings {
		fmt.Fprintln(out, renderStatusLine(f.Stage, statusWarn, fmt.Sprintf("%s: %s", f.Record, f.Reason), colorize))
	}
	fmt.Fprintf(out, "\nCheck finished: %d entries, %d warnings\n", report.Entries, len(report.Findings))
}
