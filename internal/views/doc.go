// Package views maintains process-wide caches of the derived song views
// served by the API: the song detail view, the checklist view, and the
// transition history view. Mutating operations invalidate the affected
// views so readers never observe stale data after a write.
package views
