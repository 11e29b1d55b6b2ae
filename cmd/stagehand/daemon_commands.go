package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stagehand/internal/daemonrun"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the stagehand daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				SocketPath: ctx.socketPath(),
			})
		},
	}
}

func newStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the stagehand daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			client, err := ctx.dialClient()
			if err != nil {
				fmt.Fprintln(stdout, "Daemon is not running")
				return nil
			}
			defer client.Close()

			resp, err := client.Stop()
			if err != nil {
				return err
			}
			if resp.Stopped {
				fmt.Fprintln(stdout, "Daemon stopped")
			} else {
				fmt.Fprintln(stdout, "Stop request sent")
			}
			return nil
		},
	}
}
