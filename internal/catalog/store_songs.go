package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"stagehand/internal/stage"
)

const songColumns = "id, title, artist, current_stage, stage_entered_at, work_id, recording_id, release_id, created_at, updated_at"

// AddSong inserts a new song at the start of the pipeline.
func (s *Store) AddSong(ctx context.Context, title, artist string) (*Song, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("song title is required")
	}
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO songs (title, artist, current_stage, stage_entered_at, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		title,
		nullableString(strings.TrimSpace(artist)),
		stage.KeyDraft,
		timestamp,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert song: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetSong(ctx, id)
}

// GetSong fetches a song by identifier. A missing song returns nil without
// an error.
func (s *Store) GetSong(ctx context.Context, id int64) (*Song, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+songColumns+` FROM songs WHERE id = ?`, id)
	song, err := scanSong(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get song: %w", err)
	}
	return song, nil
}

// ListSongs returns songs filtered by current stage (or all songs when no
// stage is provided), ordered by creation time.
func (s *Store) ListSongs(ctx context.Context, stages ...stage.Key) ([]*Song, error) {
	baseQuery := `SELECT ` + songColumns + ` FROM songs`
	orderClause := ` ORDER BY created_at`

	var (
		rows *sql.Rows
		err  error
	)
	if len(stages) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(stages))
		args := make([]any, len(stages))
		for i, key := range stages {
			args[i] = key
		}
		rows, err = s.db.QueryContext(ctx, baseQuery+` WHERE current_stage IN (`+placeholders+`)`+orderClause, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}
	defer rows.Close()

	var songs []*Song
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}
	return songs, rows.Err()
}

// SetCurrentStage moves the song's current-stage pointer and resets the
// stage clock. Returns the updated song, or nil when the song is missing.
func (s *Store) SetCurrentStage(ctx context.Context, id int64, target stage.Key) (*Song, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`UPDATE songs SET current_stage = ?, stage_entered_at = ?, updated_at = ? WHERE id = ?`,
		target,
		timestamp,
		timestamp,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("set current stage: %w", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	} else if affected == 0 {
		return nil, nil
	}
	return s.GetSong(ctx, id)
}

// LinkKind names a prerequisite artifact attachable to a song.
type LinkKind string

const (
	LinkWork      LinkKind = "work"
	LinkRecording LinkKind = "recording"
	LinkRelease   LinkKind = "release"
)

// ParseLinkKind converts a string into a known link kind.
func ParseLinkKind(value string) (LinkKind, bool) {
	switch LinkKind(strings.ToLower(strings.TrimSpace(value))) {
	case LinkWork:
		return LinkWork, true
	case LinkRecording:
		return LinkRecording, true
	case LinkRelease:
		return LinkRelease, true
	default:
		return "", false
	}
}

// AttachLink records the identifier of a work, recording, or release on the
// song so downstream stage prerequisites are satisfied.
func (s *Store) AttachLink(ctx context.Context, id int64, kind LinkKind, ref string) (*Song, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%s reference is required", kind)
	}
	var column string
	switch kind {
	case LinkWork:
		column = "work_id"
	case LinkRecording:
		column = "recording_id"
	case LinkRelease:
		column = "release_id"
	default:
		return nil, fmt.Errorf("unknown link kind %q", kind)
	}

	res, err := s.execWithRetry(
		ctx,
		`UPDATE songs SET `+column+` = ?, updated_at = ? WHERE id = ?`,
		ref,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("attach %s: %w", kind, err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	} else if affected == 0 {
		return nil, nil
	}
	return s.GetSong(ctx, id)
}

// RemoveSong deletes a song and its dependent rows.
func (s *Store) RemoveSong(ctx context.Context, id int64) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM songs WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete song: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Stats returns a count of songs grouped by current stage.
func (s *Store) Stats(ctx context.Context) (map[stage.Key]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT current_stage, COUNT(1) FROM songs GROUP BY current_stage`)
	if err != nil {
		return nil, fmt.Errorf("catalog stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[stage.Key]int)
	for rows.Next() {
		var key stage.Key
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, err
		}
		stats[key] = count
	}
	return stats, rows.Err()
}

// Health aggregates pipeline state for diagnostic output.
func (s *Store) Health(ctx context.Context) (PipelineHealth, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return PipelineHealth{}, err
	}
	health := PipelineHealth{}
	for key, count := range stats {
		health.Total += count
		switch key {
		case stage.KeyReleased:
			health.Released += count
		case stage.KeyArchived:
			health.Archived += count
		default:
			health.Active += count
		}
	}

	row := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(DISTINCT song_id) FROM stage_statuses WHERE status = ?`,
		stage.StatusBlocked,
	)
	if err := row.Scan(&health.Blocked); err != nil {
		return PipelineHealth{}, fmt.Errorf("count blocked songs: %w", err)
	}
	return health, nil
}

func scanSong(scanner interface{ Scan(dest ...any) error }) (*Song, error) {
	var (
		id             int64
		title          string
		artist         sql.NullString
		currentStage   string
		stageEnteredAt sql.NullString
		workID         sql.NullString
		recordingID    sql.NullString
		releaseID      sql.NullString
		createdRaw     sql.NullString
		updatedRaw     sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&title,
		&artist,
		&currentStage,
		&stageEnteredAt,
		&workID,
		&recordingID,
		&releaseID,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	song := &Song{
		ID:           id,
		Title:        title,
		Artist:       artist.String,
		CurrentStage: stage.Key(currentStage),
		WorkID:       workID.String,
		RecordingID:  recordingID.String,
		ReleaseID:    releaseID.String,
	}
	if entered, err := parseTimeString(stageEnteredAt.String); err == nil {
		song.StageEnteredAt = entered
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		song.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		song.UpdatedAt = updated
	}
	return song, nil
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
