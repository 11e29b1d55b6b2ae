// Package stage defines the production pipeline a song moves through and the
// per-stage status machine layered on top of it.
//
// The catalog is a fixed ordered sequence of stage definitions (archived sits
// outside the sequence as a terminal side branch) with adjacency helpers used
// by the transition workflow. Independently of the song's current-stage
// pointer, every stage carries its own status sub-state driven by a small
// closed action set.
//
// Everything here is pure data and table lookups; persistence and validation
// policy live in the catalog and transition packages.
package stage
