package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"suimu/internal/boundary"
	"suimu/internal/csvimport"
	"suimu/internal/maybemusic"
)

// stdinPath makes parse and hash read the CSV from standard input.
const stdinPath = "-"

func newParseCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var strict bool

	cmd := &cobra.Command{
		Use:   "parse <csv|->",
		Short: "Load a clip list and print its records",
		Long:  "Load a clip list and print its records. A path of - reads the CSV from standard input.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result boundary.MaybeMusicResult
			var outcome *csvimport.Outcome
			if args[0] == stdinPath {
				result, outcome = boundary.ReadMaybeMusic(cmd.InOrStdin())
			} else {
				svc := boundary.NewService(ctx.logger(cmd))
				result, outcome = svc.GetMaybeMusicByCSVPath(cmd.Context(), args[0])
			}

			if jsonOutput {
				if err := writeJSON(cmd, result); err != nil {
					return err
				}
			}
			records, ok := result.Value()
			if !ok {
				return result.Err()
			}

			if !jsonOutput {
				out := cmd.OutOrStdout()
				if len(records) > 0 {
					fmt.Fprintln(out, renderRecordTable(records))
				}
				fmt.Fprintf(out, "%d records from %d rows\n", len(records), outcome.Rows)
			}
			printSkippedRows(cmd, outcome.Skipped)

			if strict && len(outcome.Skipped) > 0 {
				return fmt.Errorf("%d of %d rows skipped (strict mode)", len(outcome.Skipped), outcome.Rows)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the result envelope as JSON")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when any row is skipped")
	return cmd
}

func newHashCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "hash <csv|->",
		Short: "Print the clip hash of every record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var outcome *csvimport.Outcome
			var err error
			if args[0] == stdinPath {
				outcome, err = csvimport.ParseReader(cmd.InOrStdin())
			} else {
				outcome, err = csvimport.Parse(args[0])
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, m := range outcome.Records {
				fmt.Fprintf(out, "%s  %s\n", m.Hash(), m)
			}
			printSkippedRows(cmd, outcome.Skipped)
			return nil
		},
	}
}

func printSkippedRows(cmd *cobra.Command, rows []csvimport.SkippedRow) {
	errOut := cmd.ErrOrStderr()
	for _, row := range rows {
		fmt.Fprintf(errOut, "skipped line %d: %s\n", row.Line, row.Reason)
	}
}

func renderRecordTable(records []maybemusic.MaybeMusic) string {
	headers := []string{"#", "Datetime", "Video", "Clip", "Status", "Title", "Artist"}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft}
	rows := make([][]string, 0, len(records))
	for i, m := range records {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			m.Datetime,
			m.VideoType + "/" + m.VideoID,
			formatClipRange(m.ClipStart, m.ClipEnd),
			formatStatus(m.Status),
			m.Title,
			m.Artist,
		})
	}
	return renderTable(headers, rows, aligns)
}

func formatClipRange(start, end maybemusic.Optional[float64]) string {
	if !start.Present() && !end.Present() {
		return "-"
	}
	return formatOffset(start) + "-" + formatOffset(end)
}

func formatOffset(v maybemusic.Optional[float64]) string {
	value, ok := v.Get()
	if !ok {
		return "?"
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func formatStatus(v maybemusic.Optional[uint16]) string {
	value, ok := v.Get()
	if !ok {
		return "-"
	}
	return strconv.FormatUint(uint64(value), 10)
}
