// Command stagehandd runs the stagehand daemon: the catalog store, the
// workflow engine, the HTTP API, and the IPC socket for the CLI.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"stagehand/internal/config"
	"stagehand/internal/daemonrun"
)

func main() {
	configPath := flag.String("config", "", "Configuration file path")
	socketPath := flag.String("socket", "", "IPC socket path override")
	flag.Parse()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{
		SocketPath: *socketPath,
	}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
