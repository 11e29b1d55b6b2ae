// Package workflow implements the mutating operations of the production
// pipeline: stage transitions between pipeline stages and per-stage status
// actions. Both validate their request against the stage catalog and the
// transition rules before touching the store, and invalidate the affected
// cached views after a committed change.
package workflow
