// Package checklist computes completion progress for stage checklists.
//
// An empty checklist counts as fully satisfied: with nothing required there
// is nothing left to gate on, so both stage cards and transition validation
// treat it as 100%.
package checklist

// Item is the slice of a checklist entry the gate cares about; display
// fields live on the catalog model.
type Item struct {
	ID         int64
	IsComplete bool
}

// Progress summarizes checklist completion for a stage.
type Progress struct {
	Completed int
	Total     int
	Percent   int
}

// Compute tallies completion across items. Percent is always within 0..100
// and rounds down, except that a finished checklist always reports 100.
func Compute(items []Item) Progress {
	progress := Progress{Total: len(items)}
	if len(items) == 0 {
		progress.Percent = 100
		return progress
	}
	for _, item := range items {
		if item.IsComplete {
			progress.Completed++
		}
	}
	progress.Percent = progress.Completed * 100 / progress.Total
	return progress
}
