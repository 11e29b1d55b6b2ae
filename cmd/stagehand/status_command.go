package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"stagehand/internal/ipc"
	"stagehand/internal/stage"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and pipeline status",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)

			return ctx.withClient(func(client *ipc.Client) error {
				status, err := client.Status()
				if err != nil {
					return fmt.Errorf("fetch daemon status: %w", err)
				}
				health, healthErr := client.DatabaseHealth()

				for _, line := range renderSectionHeader("Daemon", colorize) {
					fmt.Fprintln(stdout, line)
				}
				runningKind := statusWarn
				runningMsg := "Not running"
				if status.Running {
					runningKind = statusOK
					runningMsg = fmt.Sprintf("Running (pid %d)", status.PID)
				}
				fmt.Fprintln(stdout, renderStatusLine("Daemon", runningKind, runningMsg, colorize))
				fmt.Fprintln(stdout, renderStatusLine("Catalog", statusInfo, status.CatalogPath, colorize))
				fmt.Fprintln(stdout, renderStatusLine("Lock file", statusInfo, status.LockPath, colorize))
				fmt.Fprintln(stdout, databaseStatusLine(health, healthErr, colorize))
				fmt.Fprintln(stdout)

				for _, line := range renderSectionHeader("Pipeline", colorize) {
					fmt.Fprintln(stdout, line)
				}
				fmt.Fprintln(stdout, renderStatusLine("Songs", statusInfo, summarizePipeline(status), colorize))

				rows := buildStageCountRows(status.Pipeline.Counts)
				if len(rows) == 0 {
					fmt.Fprintln(stdout, "Catalog is empty")
					return nil
				}
				fmt.Fprintln(stdout, renderTable([]string{"Stage", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
				return nil
			})
		},
	}
}

func summarizePipeline(status *ipc.StatusResponse) string {
	p := status.Pipeline
	return fmt.Sprintf("%d total, %d active, %d released, %d archived, %d blocked",
		p.Total, p.Active, p.Released, p.Archived, p.Blocked)
}

func databaseStatusLine(health *ipc.DatabaseHealthResponse, err error, colorize bool) string {
	if err != nil {
		return renderStatusLine("Database", statusError, err.Error(), colorize)
	}
	if health.Error != "" {
		return renderStatusLine("Database", statusError, health.Error, colorize)
	}
	if !health.DatabaseReadable || !health.IntegrityCheck {
		return renderStatusLine("Database", statusWarn, "integrity check failed", colorize)
	}
	detail := fmt.Sprintf("Healthy (%d songs)", health.TotalSongs)
	return renderStatusLine("Database", statusOK, detail, colorize)
}

func buildStageCountRows(counts map[string]int) [][]string {
	if len(counts) == 0 {
		return nil
	}
	keys := append(stage.Sequence(), stage.KeyArchived)
	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		count := counts[string(key)]
		if count == 0 {
			continue
		}
		rows = append(rows, []string{stage.GetDefinition(key).Label, strconv.Itoa(count)})
	}
	return rows
}
