package logging

// Standardized attribute keys used across components.
const (
	FieldComponent = "component"
	FieldSongID    = "song_id"
	FieldStage     = "stage"
	FieldFromStage = "from_stage"
	FieldToStage   = "to_stage"
	FieldActor     = "actor"
	FieldEventType = "event_type"
)
