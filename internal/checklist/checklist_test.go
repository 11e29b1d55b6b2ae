package checklist_test

import (
	"testing"

	"stagehand/internal/checklist"
)

func TestComputeEmptyChecklistIsSatisfied(t *testing.T) {
	progress := checklist.Compute(nil)
	if progress.Percent != 100 {
		t.Fatalf("empty checklist percent = %d, want 100", progress.Percent)
	}
	if progress.Completed != 0 || progress.Total != 0 {
		t.Fatalf("unexpected counts: %#v", progress)
	}
}

func TestComputeBoundsAndCounts(t *testing.T) {
	cases := []struct {
		name      string
		complete  int
		total     int
		expectPct int
	}{
		{"none complete", 0, 4, 0},
		{"half complete", 2, 4, 50},
		{"rounds down", 2, 3, 66},
		{"all complete", 3, 3, 100},
		{"single item", 1, 1, 100},
	}
	for _, tc := range cases {
		items := make([]checklist.Item, tc.total)
		for i := range items {
			items[i] = checklist.Item{ID: int64(i + 1), IsComplete: i < tc.complete}
		}
		progress := checklist.Compute(items)
		if progress.Percent != tc.expectPct {
			t.Fatalf("%s: percent = %d, want %d", tc.name, progress.Percent, tc.expectPct)
		}
		if progress.Percent < 0 || progress.Percent > 100 {
			t.Fatalf("%s: percent %d out of bounds", tc.name, progress.Percent)
		}
		if progress.Completed != tc.complete || progress.Total != tc.total {
			t.Fatalf("%s: counts = %d/%d, want %d/%d", tc.name, progress.Completed, progress.Total, tc.complete, tc.total)
		}
	}
}
