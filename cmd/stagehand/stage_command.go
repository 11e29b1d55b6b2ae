package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stagehand/internal/ipc"
)

func newStageCommand(ctx *commandContext) *cobra.Command {
	var reason string
	var actor string

	cmd := &cobra.Command{
		Use:   "stage <id> <stage> <start|complete|block|resume|reopen>",
		Short: "Apply a status action to one pipeline stage of a song",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "song id")
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.StageAct(ipc.StageActRequest{
					SongID: id,
					Stage:  args[1],
					Action: args[2],
					Reason: reason,
					Actor:  actor,
				})
				if err != nil {
					return err
				}
				status := resp.Status
				fmt.Fprintf(stdout, "%s is now %s\n", status.Label, status.StatusDisplay)
				if status.BlockedReason != "" {
					fmt.Fprintf(stdout, "Reason: %s\n", status.BlockedReason)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "Blocking reason (required for block)")
	cmd.Flags().StringVar(&actor, "actor", "", "Acting user")
	return cmd
}
