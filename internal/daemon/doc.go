// Package daemon coordinates the long-running Stagehand process.
//
// It wires configuration, the catalog store, the workflow engine, and the
// HTTP API into a single lifecycle with flock-based locking to prevent
// multiple instances. Keep orchestration logic here: pipeline semantics live
// in the workflow package while the daemon focuses on startup, shutdown, and
// request handling at the transport boundary.
package daemon
