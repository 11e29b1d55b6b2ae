package api

import "stagehand/internal/transition"

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// SongItem describes a catalog song in a transport-friendly format.
type SongItem struct {
	ID                int64  `json:"id"`
	Title             string `json:"title"`
	Artist            string `json:"artist,omitempty"`
	CurrentStage      string `json:"currentStage"`
	CurrentStageLabel string `json:"currentStageLabel"`
	StageEnteredAt    string `json:"stageEnteredAt,omitempty"`
	DaysInStage       int    `json:"daysInStage"`
	WorkID            string `json:"workId,omitempty"`
	RecordingID       string `json:"recordingId,omitempty"`
	ReleaseID         string `json:"releaseId,omitempty"`
	CreatedAt         string `json:"createdAt,omitempty"`
	UpdatedAt         string `json:"updatedAt,omitempty"`
}

// StageStatusItem captures the sub-state of one pipeline stage for a song.
type StageStatusItem struct {
	Stage            string   `json:"stage"`
	Label            string   `json:"label"`
	Status           string   `json:"status"`
	StatusDisplay    string   `json:"statusDisplay"`
	BlockedReason    string   `json:"blockedReason,omitempty"`
	AvailableActions []string `json:"availableActions"`
	UpdatedAt        string   `json:"updatedAt,omitempty"`
}

// ChecklistItem is the transport form of a stage checklist entry.
type ChecklistItem struct {
	ID         int64  `json:"id"`
	Stage      string `json:"stage"`
	Label      string `json:"label"`
	IsComplete bool   `json:"isComplete"`
	UpdatedAt  string `json:"updatedAt,omitempty"`
}

// ChecklistProgress summarizes checklist completion for gating decisions.
type ChecklistProgress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
	Percent   int `json:"percent"`
}

// SongDetail aggregates a song with its per-stage statuses and checklist
// progress for the detail view.
type SongDetail struct {
	Song      SongItem          `json:"song"`
	Stages    []StageStatusItem `json:"stages"`
	Checklist ChecklistProgress `json:"checklist"`
}

// ChecklistView is the checklist view for one song.
type ChecklistView struct {
	SongID   int64             `json:"songId"`
	Items    []ChecklistItem   `json:"items"`
	Progress ChecklistProgress `json:"progress"`
}

// TransitionRecord is one immutable history entry.
type TransitionRecord struct {
	ID        string `json:"id"`
	SongID    int64  `json:"songId"`
	FromStage string `json:"fromStage"`
	ToStage   string `json:"toStage"`
	Notes     string `json:"notes"`
	Category  string `json:"category,omitempty"`
	Actor     string `json:"actor,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// HistoryView is the transition history view for one song, newest first.
type HistoryView struct {
	SongID      int64              `json:"songId"`
	Transitions []TransitionRecord `json:"transitions"`
}

// TransitionOutcome reports an executed stage transition; Issues carries any
// warnings that were overridden.
type TransitionOutcome struct {
	Song       SongItem           `json:"song"`
	Transition TransitionRecord   `json:"transition"`
	Issues     []transition.Issue `json:"issues,omitempty"`
}

// PipelineStatus summarizes catalog health for status reporting.
type PipelineStatus struct {
	Counts   map[string]int `json:"counts"`
	Total    int            `json:"total"`
	Active   int            `json:"active"`
	Released int            `json:"released"`
	Archived int            `json:"archived"`
	Blocked  int            `json:"blocked"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool           `json:"running"`
	PID          int            `json:"pid"`
	CatalogPath  string         `json:"catalogPath"`
	LockFilePath string         `json:"lockFilePath"`
	Pipeline     PipelineStatus `json:"pipeline"`
}

// SongListResponse wraps a collection of songs for API responses.
type SongListResponse struct {
	Songs []SongItem `json:"songs"`
}
