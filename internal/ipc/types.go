package ipc

import (
	"stagehand/internal/api"
	"stagehand/internal/transition"
)

// StopRequest stops the daemon.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse represents combined daemon/pipeline status information.
type StatusResponse struct {
	Running     bool               `json:"running"`
	PID         int                `json:"pid"`
	CatalogPath string             `json:"catalog_path"`
	LockPath    string             `json:"lock_path"`
	Pipeline    api.PipelineStatus `json:"pipeline"`
}

// SongListRequest filters song listing by stage.
type SongListRequest struct {
	Stages []string `json:"stages"`
}

// SongListResponse contains catalog songs.
type SongListResponse struct {
	Songs []api.SongItem `json:"songs"`
}

// SongAddRequest creates a new song in the draft stage.
type SongAddRequest struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

// SongAddResponse returns the created song.
type SongAddResponse struct {
	Song api.SongItem `json:"song"`
}

// SongDescribeRequest fetches the detail view for one song.
type SongDescribeRequest struct {
	ID int64 `json:"id"`
}

// SongDescribeResponse contains the song detail view.
type SongDescribeResponse struct {
	Detail api.SongDetail `json:"detail"`
}

// TransitionIPCRequest executes a pipeline stage transition.
type TransitionIPCRequest struct {
	SongID            int64  `json:"song_id"`
	TargetStage       string `json:"target_stage"`
	Notes             string `json:"notes"`
	IsRejection       bool   `json:"is_rejection"`
	RejectionCategory string `json:"rejection_category"`
	Actor             string `json:"actor"`
}

// TransitionIPCResponse reports the committed transition.
type TransitionIPCResponse struct {
	Song       api.SongItem         `json:"song"`
	Transition api.TransitionRecord `json:"transition"`
	Issues     []transition.Issue   `json:"issues,omitempty"`
}

// StageActRequest applies a per-stage status action.
type StageActRequest struct {
	SongID int64  `json:"song_id"`
	Stage  string `json:"stage"`
	Action string `json:"action"`
	Reason string `json:"reason"`
	Actor  string `json:"actor"`
}

// StageActResponse returns the updated stage status.
type StageActResponse struct {
	Status api.StageStatusItem `json:"status"`
}

// ChecklistRequest fetches the checklist view for one song.
type ChecklistRequest struct {
	SongID int64 `json:"song_id"`
}

// ChecklistResponse contains the checklist view.
type ChecklistResponse struct {
	View api.ChecklistView `json:"view"`
}

// ChecklistAddRequest attaches a checklist item to a song's stage.
type ChecklistAddRequest struct {
	SongID int64  `json:"song_id"`
	Stage  string `json:"stage"`
	Label  string `json:"label"`
}

// ChecklistAddResponse returns the created item.
type ChecklistAddResponse struct {
	Item api.ChecklistItem `json:"item"`
}

// ChecklistCompleteRequest toggles completion on a checklist item.
type ChecklistCompleteRequest struct {
	ItemID     int64 `json:"item_id"`
	IsComplete bool  `json:"is_complete"`
}

// ChecklistCompleteResponse returns the updated item.
type ChecklistCompleteResponse struct {
	Item api.ChecklistItem `json:"item"`
}

// HistoryRequest fetches the transition history for one song.
type HistoryRequest struct {
	SongID int64 `json:"song_id"`
}

// HistoryResponse contains the history view, newest first.
type HistoryResponse struct {
	View api.HistoryView `json:"view"`
}

// AttachLinkRequest records a work, recording, or release reference.
type AttachLinkRequest struct {
	SongID int64  `json:"song_id"`
	Kind   string `json:"kind"`
	Ref    string `json:"ref"`
}

// AttachLinkResponse returns the updated song.
type AttachLinkResponse struct {
	Song api.SongItem `json:"song"`
}

// DatabaseHealthRequest fetches database diagnostics.
type DatabaseHealthRequest struct{}

// DatabaseHealthResponse carries database diagnostics.
type DatabaseHealthResponse struct {
	DBPath           string   `json:"db_path"`
	DatabaseExists   bool     `json:"database_exists"`
	DatabaseReadable bool     `json:"database_readable"`
	TablesPresent    []string `json:"tables_present"`
	MissingTables    []string `json:"missing_tables"`
	IntegrityCheck   bool     `json:"integrity_check"`
	TotalSongs       int      `json:"total_songs"`
	Error            string   `json:"error,omitempty"`
}

// TestNotificationRequest triggers a notification test.
type TestNotificationRequest struct{}

// TestNotificationResponse reports the notification test outcome.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
