package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stagehand/internal/ipc"
	"stagehand/internal/transition"
)

func newTransitionCommand(ctx *commandContext) *cobra.Command {
	var notes string
	var reject bool
	var category string
	var actor string

	cmd := &cobra.Command{
		Use:   "transition <id> <stage>",
		Short: "Move a song to another pipeline stage",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "song id")
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Transition(ipc.TransitionIPCRequest{
					SongID:            id,
					TargetStage:       args[1],
					Notes:             notes,
					IsRejection:       reject,
					RejectionCategory: category,
					Actor:             actor,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(stdout, "Moved %q from %s to %s\n",
					resp.Song.Title, resp.Transition.FromStage, resp.Transition.ToStage)
				for _, issue := range resp.Issues {
					if issue.Severity == transition.SeverityError {
						fmt.Fprintf(stdout, "Overridden: %s\n", issue.Message)
					} else {
						fmt.Fprintf(stdout, "Warning: %s\n", issue.Message)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&notes, "notes", "", "Transition notes (required)")
	cmd.Flags().BoolVar(&reject, "reject", false, "Mark the transition as a rejection")
	cmd.Flags().StringVar(&category, "category", "", "Rejection category (required with --reject)")
	cmd.Flags().StringVar(&actor, "actor", "", "Acting user")
	return cmd
}
