package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"suimu/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent invocations from the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, cmd, func(store *history.Store) error {
				entries, err := store.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, entries)
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "No invocations recorded")
					return nil
				}
				fmt.Fprintln(out, renderHistoryTable(entries))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print entries as JSON")

	cmd.AddCommand(newHistoryShowCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <request-id>",
		Short: "Show one invocation and its skipped rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, cmd, func(store *history.Store) error {
				entry, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if entry == nil {
					return fmt.Errorf("no invocation with request id %q", args[0])
				}
				skipped, err := store.SkippedRows(cmd.Context(), entry.RequestID)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Request:  %s\n", entry.RequestID)
				fmt.Fprintf(out, "Command:  %s\n", entry.Command)
				fmt.Fprintf(out, "CSV:      %s\n", entry.CSVPath)
				fmt.Fprintf(out, "Started:  %s (%s)\n", entry.StartedAt.Local().Format(time.DateTime), entry.Duration)
				fmt.Fprintf(out, "Outcome:  %s\n", entryOutcome(*entry))
				if !entry.OK {
					fmt.Fprintf(out, "Message:  %s\n", entry.Message)
					return nil
				}
				fmt.Fprintf(out, "Records:  %d of %d rows\n", entry.Records, entry.Rows)
				for _, row := range skipped {
					fmt.Fprintf(out, "  line %d: %s\n", row.Line, row.Reason)
				}
				return nil
			})
		},
	}
}

func withHistory(ctx *commandContext, cmd *cobra.Command, fn func(*history.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		return errors.New("history is disabled in the configuration")
	}
	store, err := history.Open(cfg.History.Path, ctx.logger(cmd))
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func renderHistoryTable(entries []history.Entry) string {
	headers := []string{"Started", "Request", "Outcome", "Records", "Skipped", "Duration", "CSV"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.StartedAt.Local().Format(time.DateTime),
			e.RequestID,
			entryOutcome(e),
			strconv.Itoa(e.Records),
			strconv.Itoa(e.Skipped),
			e.Duration.Round(time.Microsecond).String(),
			e.CSVPath,
		})
	}
	return renderTable(headers, rows, aligns)
}

func entryOutcome(e history.Entry) string {
	if e.OK {
		return "ok"
	}
	return e.Kind
}
