package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"stagehand/internal/api"
	"stagehand/internal/ipc"
)

func newSongsCommand(ctx *commandContext) *cobra.Command {
	songsCmd := &cobra.Command{
		Use:   "songs",
		Short: "Inspect and manage catalog songs",
	}

	songsCmd.AddCommand(newSongsListCommand(ctx))
	songsCmd.AddCommand(newSongsAddCommand(ctx))
	songsCmd.AddCommand(newSongsShowCommand(ctx))

	return songsCmd
}

func newSongsListCommand(ctx *commandContext) *cobra.Command {
	var stageFilters []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List songs in the pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SongList(stageFilters)
				if err != nil {
					return err
				}
				if len(resp.Songs) == 0 {
					fmt.Fprintln(stdout, "No songs found")
					return nil
				}

				staleDays := 0
				if cfg := ctx.configValue(); cfg != nil {
					staleDays = cfg.Workflow.StaleStageDays
				}

				rows := make([][]string, 0, len(resp.Songs))
				for _, song := range resp.Songs {
					rows = append(rows, []string{
						strconv.FormatInt(song.ID, 10),
						song.Title,
						dash(song.Artist),
						song.CurrentStageLabel,
						formatDays(song.DaysInStage) + staleMarker(song.DaysInStage, staleDays),
					})
				}
				fmt.Fprintln(stdout, renderTable(
					[]string{"ID", "Title", "Artist", "Stage", "In Stage"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&stageFilters, "stage", nil, "Filter by pipeline stage (repeatable)")
	return cmd
}

func newSongsAddCommand(ctx *commandContext) *cobra.Command {
	var artist string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a song to the pipeline in the draft stage",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(strings.Join(args, " "))
			if title == "" {
				return errors.New("song title is required")
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SongAdd(title, artist)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added song %d: %s\n", resp.Song.ID, resp.Song.Title)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&artist, "artist", "", "Performing artist")
	return cmd
}

func newSongsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show song detail with per-stage statuses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "song id")
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SongDescribe(id)
				if err != nil {
					return err
				}
				printSongDetail(stdout, resp.Detail, shouldColorize(stdout))
				return nil
			})
		},
	}
}

func printSongDetail(stdout io.Writer, detail api.SongDetail, colorize bool) {
	song := detail.Song
	for _, line := range renderSectionHeader(fmt.Sprintf("Song %d", song.ID), colorize) {
		fmt.Fprintln(stdout, line)
	}
	fmt.Fprintln(stdout, renderStatusLine("Title", statusInfo, song.Title, colorize))
	fmt.Fprintln(stdout, renderStatusLine("Artist", statusInfo, dash(song.Artist), colorize))
	fmt.Fprintln(stdout, renderStatusLine("Stage", statusInfo, song.CurrentStageLabel, colorize))
	fmt.Fprintln(stdout, renderStatusLine("In stage", statusInfo, formatDays(song.DaysInStage), colorize))
	fmt.Fprintln(stdout, renderStatusLine("Work", statusInfo, dash(song.WorkID), colorize))
	fmt.Fprintln(stdout, renderStatusLine("Recording", statusInfo, dash(song.RecordingID), colorize))
	fmt.Fprintln(stdout, renderStatusLine("Release", statusInfo, dash(song.ReleaseID), colorize))
	fmt.Fprintln(stdout, renderStatusLine("Checklist", statusInfo,
		fmt.Sprintf("%d/%d complete (%d%%)", detail.Checklist.Completed, detail.Checklist.Total, detail.Checklist.Percent), colorize))

	if len(detail.Stages) == 0 {
		return
	}
	fmt.Fprintln(stdout)
	rows := make([][]string, 0, len(detail.Stages))
	for _, status := range detail.Stages {
		rows = append(rows, []string{
			status.Label,
			status.StatusDisplay,
			dash(status.BlockedReason),
			strings.Join(status.AvailableActions, ", "),
		})
	}
	fmt.Fprintln(stdout, renderTable(
		[]string{"Stage", "Status", "Blocked Reason", "Actions"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
	))
}
