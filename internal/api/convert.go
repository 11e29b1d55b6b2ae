package api

import (
	"time"

	"stagehand/internal/catalog"
	"stagehand/internal/checklist"
	"stagehand/internal/stage"
)

// FromSong converts a catalog song to its API representation.
func FromSong(song *catalog.Song, now time.Time) SongItem {
	if song == nil {
		return SongItem{}
	}

	dto := SongItem{
		ID:           song.ID,
		Title:        song.Title,
		Artist:       song.Artist,
		CurrentStage: string(song.CurrentStage),
		DaysInStage:  song.DaysInCurrentStage(now),
		WorkID:       song.WorkID,
		RecordingID:  song.RecordingID,
		ReleaseID:    song.ReleaseID,
	}
	if def, ok := stage.Lookup(song.CurrentStage); ok {
		dto.CurrentStageLabel = def.Label
	}
	if !song.StageEnteredAt.IsZero() {
		dto.StageEnteredAt = song.StageEnteredAt.UTC().Format(dateTimeFormat)
	}
	if !song.CreatedAt.IsZero() {
		dto.CreatedAt = song.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !song.UpdatedAt.IsZero() {
		dto.UpdatedAt = song.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromSongs converts a slice of catalog songs into API DTOs.
func FromSongs(songs []*catalog.Song, now time.Time) []SongItem {
	if len(songs) == 0 {
		return nil
	}
	out := make([]SongItem, 0, len(songs))
	for _, song := range songs {
		out = append(out, FromSong(song, now))
	}
	return out
}

// FromStageStatus converts a stored stage status, attaching the stage label
// and the FSM actions legal from the current status.
func FromStageStatus(status *catalog.StageStatus) StageStatusItem {
	if status == nil {
		return StageStatusItem{}
	}

	dto := StageStatusItem{
		Stage:         string(status.Stage),
		Status:        string(status.Status),
		StatusDisplay: status.Status.Display(),
		BlockedReason: status.BlockedReason,
	}
	if def, ok := stage.Lookup(status.Stage); ok {
		dto.Label = def.Label
	}
	for _, action := range stage.AvailableActions(status.Status) {
		dto.AvailableActions = append(dto.AvailableActions, string(action))
	}
	if !status.UpdatedAt.IsZero() {
		dto.UpdatedAt = status.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromStageStatuses converts stored stage statuses into API DTOs.
func FromStageStatuses(statuses []*catalog.StageStatus) []StageStatusItem {
	if len(statuses) == 0 {
		return nil
	}
	out := make([]StageStatusItem, 0, len(statuses))
	for _, status := range statuses {
		out = append(out, FromStageStatus(status))
	}
	return out
}

// FromChecklistItem converts a stored checklist row.
func FromChecklistItem(item *catalog.ChecklistItem) ChecklistItem {
	if item == nil {
		return ChecklistItem{}
	}
	dto := ChecklistItem{
		ID:         item.ID,
		Stage:      string(item.Stage),
		Label:      item.Label,
		IsComplete: item.IsComplete,
	}
	if !item.UpdatedAt.IsZero() {
		dto.UpdatedAt = item.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromChecklistItems converts stored checklist rows into API DTOs.
func FromChecklistItems(items []*catalog.ChecklistItem) []ChecklistItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]ChecklistItem, 0, len(items))
	for _, item := range items {
		out = append(out, FromChecklistItem(item))
	}
	return out
}

// FromProgress converts a checklist gate result.
func FromProgress(progress checklist.Progress) ChecklistProgress {
	return ChecklistProgress{
		Completed: progress.Completed,
		Total:     progress.Total,
		Percent:   progress.Percent,
	}
}

// FromTransition converts a stored transition record.
func FromTransition(record *catalog.Transition) TransitionRecord {
	if record == nil {
		return TransitionRecord{}
	}
	dto := TransitionRecord{
		ID:        record.ID,
		SongID:    record.SongID,
		FromStage: string(record.FromStage),
		ToStage:   string(record.ToStage),
		Notes:     record.Notes,
		Category:  record.Category,
		Actor:     record.Actor,
	}
	if !record.CreatedAt.IsZero() {
		dto.CreatedAt = record.CreatedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromTransitions converts stored transitions into API DTOs.
func FromTransitions(records []*catalog.Transition) []TransitionRecord {
	if len(records) == 0 {
		return nil
	}
	out := make([]TransitionRecord, 0, len(records))
	for _, record := range records {
		out = append(out, FromTransition(record))
	}
	return out
}

// FromPipelineHealth combines stage counts and catalog health into a status
// payload.
func FromPipelineHealth(counts map[stage.Key]int, health catalog.PipelineHealth) PipelineStatus {
	stats := make(map[string]int, len(counts))
	for key, count := range counts {
		stats[string(key)] = count
	}
	return PipelineStatus{
		Counts:   stats,
		Total:    health.Total,
		Active:   health.Active,
		Released: health.Released,
		Archived: health.Archived,
		Blocked:  health.Blocked,
	}
}
