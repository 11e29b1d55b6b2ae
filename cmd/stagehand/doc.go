// Package main hosts the Stagehand CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into IPC
// calls against the daemon: song listing and creation, pipeline stage
// transitions, per-stage status actions, checklist maintenance, transition
// history, and configuration scaffolding. It centralizes configuration
// resolution, socket discovery, and dial-error wrapping so subcommands can
// focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
