package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stagehand/internal/ipc"
	"stagehand/internal/textutil"
)

func newLogCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "log <id>",
		Short: "Show the transition history for a song, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "song id")
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.History(id)
				if err != nil {
					return err
				}
				records := resp.View.Transitions
				if len(records) == 0 {
					fmt.Fprintln(stdout, "No transitions recorded")
					return nil
				}

				rows := make([][]string, 0, len(records))
				for _, record := range records {
					rows = append(rows, []string{
						formatTimestamp(record.CreatedAt),
						record.FromStage,
						record.ToStage,
						dash(record.Actor),
						textutil.Truncate(textutil.CollapseWhitespace(record.Notes), 60),
					})
				}
				fmt.Fprintln(stdout, renderTable(
					[]string{"When", "From", "To", "Actor", "Notes"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
}
