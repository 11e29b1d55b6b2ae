package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"stagehand/internal/ipc"
)

func newChecklistCommand(ctx *commandContext) *cobra.Command {
	checklistCmd := &cobra.Command{
		Use:   "checklist",
		Short: "Inspect and manage stage checklists",
	}

	checklistCmd.AddCommand(newChecklistShowCommand(ctx))
	checklistCmd.AddCommand(newChecklistAddCommand(ctx))
	checklistCmd.AddCommand(newChecklistCheckCommand(ctx, "check", true))
	checklistCmd.AddCommand(newChecklistCheckCommand(ctx, "uncheck", false))

	return checklistCmd
}

func newChecklistShowCommand(ctx *commandContext) *cobra.Command {
	var stageFilter string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show the checklist for a song",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "song id")
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Checklist(id)
				if err != nil {
					return err
				}
				view := resp.View

				items := view.Items
				if filter := strings.TrimSpace(stageFilter); filter != "" {
					filtered := items[:0:0]
					for _, item := range items {
						if item.Stage == filter {
							filtered = append(filtered, item)
						}
					}
					items = filtered
				}

				if len(items) == 0 {
					fmt.Fprintln(stdout, "No checklist items")
					return nil
				}

				rows := make([][]string, 0, len(items))
				for _, item := range items {
					rows = append(rows, []string{
						strconv.FormatInt(item.ID, 10),
						item.Stage,
						item.Label,
						yesNo(item.IsComplete),
					})
				}
				fmt.Fprintln(stdout, renderTable(
					[]string{"ID", "Stage", "Item", "Done"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
				))
				fmt.Fprintf(stdout, "Progress: %d/%d complete (%d%%)\n",
					view.Progress.Completed, view.Progress.Total, view.Progress.Percent)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&stageFilter, "stage", "", "Only show items for one stage")
	return cmd
}

func newChecklistAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <id> <stage> <label>",
		Short: "Add a checklist item to one stage of a song",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "song id")
			if err != nil {
				return err
			}
			label := strings.TrimSpace(strings.Join(args[2:], " "))
			if label == "" {
				return errors.New("checklist item label is required")
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ChecklistAdd(id, args[1], label)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added checklist item %d: %s\n", resp.Item.ID, resp.Item.Label)
				return nil
			})
		},
	}
}

func newChecklistCheckCommand(ctx *commandContext, verb string, complete bool) *cobra.Command {
	short := "Mark a checklist item complete"
	if !complete {
		short = "Mark a checklist item incomplete"
	}
	return &cobra.Command{
		Use:   verb + " <item-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := parseID(args[0], "checklist item id")
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ChecklistComplete(itemID, complete)
				if err != nil {
					return err
				}
				state := "complete"
				if !resp.Item.IsComplete {
					state = "incomplete"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Checklist item %d is now %s\n", resp.Item.ID, state)
				return nil
			})
		},
	}
}
