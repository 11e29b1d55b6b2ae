// Package ipc provides daemon control over a Unix domain socket using
// JSON-RPC. The CLI is the primary consumer; requests and responses reuse
// the api package DTOs so socket and HTTP clients see the same shapes.
package ipc
