package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"suimu/internal/boundary"
	"suimu/internal/daemonrun"
	"suimu/internal/ipc"
)

func newDaemonCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newInvokeCommand(ctx),
		newStatusCommand(ctx),
		newServeCommand(ctx),
	}
}

func newInvokeCommand(ctx *commandContext) *cobra.Command {
	var command string

	cmd := &cobra.Command{
		Use:   "invoke <csv>",
		Short: "Load a clip list through the running daemon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			csvPath, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve csv path: %w", err)
			}
			return ctx.withClient(func(client *ipc.Client) error {
				raw, err := client.Invoke(command, boundary.GetMaybeMusicArgs{CSVPath: &csvPath})
				if err != nil {
					return fmt.Errorf("invoke %s: %w", command, err)
				}
				var indented bytes.Buffer
				if err := json.Indent(&indented, raw, "", "  "); err != nil {
					return fmt.Errorf("format result: %w", err)
				}
				indented.WriteByte('\n')
				_, err = cmd.OutOrStdout().Write(indented.Bytes())
				return err
			})
		},
	}

	cmd.Flags().StringVar(&command, "command", boundary.CommandGetMaybeMusicByCSVPath, "Boundary command to invoke")
	return cmd
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				status, err := client.Status()
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, status)
				}
				renderDaemonStatus(cmd, status)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print status as JSON")
	return cmd
}

func renderDaemonStatus(cmd *cobra.Command, status *ipc.StatusResponse) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	for _, line := range renderSectionHeader("Daemon", colorize) {
		fmt.Fprintln(out, line)
	}
	uptime := time.Since(status.StartedAt).Truncate(time.Second)
	fmt.Fprintln(out, renderStatusLine("Running", statusOK,
		fmt.Sprintf("pid %d, up %s", status.PID, uptime), colorize))
	fmt.Fprintln(out, renderStatusLine("Socket", statusInfo, status.Socket, colorize))
	if status.HTTPBind != "" {
		fmt.Fprintln(out, renderStatusLine("HTTP", statusInfo, status.HTTPBind, colorize))
	} else {
		fmt.Fprintln(out, renderStatusLine("HTTP", statusInfo, "disabled", colorize))
	}
	if status.HistoryPath != "" {
		fmt.Fprintln(out, renderStatusLine("History", statusInfo, status.HistoryPath, colorize))
	} else {
		fmt.Fprintln(out, renderStatusLine("History", statusInfo, "disabled", colorize))
	}
	if status.LogPath != "" {
		fmt.Fprintln(out, renderStatusLine("Log", statusInfo, status.LogPath, colorize))
	}

	fmt.Fprintln(out)
	for _, line := range renderSectionHeader("Invocations", colorize) {
		fmt.Fprintln(out, line)
	}
	kind := statusOK
	if status.Failures > 0 {
		kind = statusWarn
	}
	fmt.Fprintln(out, renderStatusLine("Served", kind,
		fmt.Sprintf("%s total, %s failed", strconv.FormatInt(status.Invocations, 10), strconv.FormatInt(status.Failures, 10)), colorize))
	fmt.Fprintln(out, renderStatusLine("Commands", statusInfo, strings.Join(status.Commands, ", "), colorize))
}

func newServeCommand(ctx *commandContext) *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if socket := strings.TrimSpace(*ctx.socketFlag); socket != "" {
				cfg.Paths.SocketPath = socket
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{LogLevel: logLevel})
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override the configured log level")
	return cmd
}
