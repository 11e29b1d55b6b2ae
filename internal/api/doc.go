// Package api defines wire-format types and converters for the IPC and HTTP
// API layer. It translates internal catalog models into transport-friendly
// DTOs so clients never couple to storage types.
//
// DTOs use camelCase JSON tags. Internal enums (stage.Key, stage.Status) are
// exposed as lowercase strings alongside their display labels. Timestamps use
// RFC3339 with milliseconds.
package api
