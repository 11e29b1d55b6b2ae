package catalog

import (
	"time"

	"stagehand/internal/checklist"
	"stagehand/internal/stage"
	"stagehand/internal/transition"
)

// Song is a catalog entry moving through the production pipeline.
//
// WorkID, RecordingID, and ReleaseID link the song to its registered work,
// master recording, and assembled release; NULL means the prerequisite does
// not exist yet. StageEnteredAt tracks when the song last changed stage.
type Song struct {
	ID             int64
	Title          string
	Artist         string
	CurrentStage   stage.Key
	StageEnteredAt time.Time
	WorkID         string
	RecordingID    string
	ReleaseID      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// StageStatus is the stored sub-state of one stage for one song. Missing
// rows read back as not_started with no blocked reason.
type StageStatus struct {
	SongID        int64
	Stage         stage.Key
	Status        stage.Status
	BlockedReason string
	UpdatedAt     time.Time
}

// ChecklistItem is a single gating item attached to a song's stage.
type ChecklistItem struct {
	ID         int64
	SongID     int64
	Stage      stage.Key
	Label      string
	IsComplete bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Transition is one immutable entry of a song's transition history.
type Transition struct {
	ID        string
	SongID    int64
	FromStage stage.Key
	ToStage   stage.Key
	Notes     string
	Category  string
	Actor     string
	CreatedAt time.Time
}

// PipelineHealth aggregates catalog counts for diagnostic output.
type PipelineHealth struct {
	Total    int
	Active   int
	Released int
	Archived int
	Blocked  int
}

// HasWork reports whether a registered work is linked.
func (s Song) HasWork() bool { return s.WorkID != "" }

// HasRecording reports whether a master recording is linked.
func (s Song) HasRecording() bool { return s.RecordingID != "" }

// HasRelease reports whether an assembled release is linked.
func (s Song) HasRelease() bool { return s.ReleaseID != "" }

// DaysInCurrentStage reports whole days elapsed since the song entered its
// current stage.
func (s Song) DaysInCurrentStage(now time.Time) int {
	if s.StageEnteredAt.IsZero() || now.Before(s.StageEnteredAt) {
		return 0
	}
	return int(now.Sub(s.StageEnteredAt).Hours() / 24)
}

// Facts projects the song into the read-only view transition validation
// consumes.
func (s Song) Facts() transition.Facts {
	return transition.Facts{
		CurrentStage: s.CurrentStage,
		HasWork:      s.HasWork(),
		HasRecording: s.HasRecording(),
		HasRelease:   s.HasRelease(),
	}
}

// GateItems converts stored checklist rows into the shape the checklist
// gate computes over.
func GateItems(items []*ChecklistItem) []checklist.Item {
	out := make([]checklist.Item, 0, len(items))
	for _, item := range items {
		out = append(out, checklist.Item{ID: item.ID, IsComplete: item.IsComplete})
	}
	return out
}
