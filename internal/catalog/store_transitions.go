package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"stagehand/internal/stage"
)

const transitionColumns = "id, song_id, from_stage, to_stage, notes, rejection_category, actor, created_at"

// AppendTransition records one immutable history entry and moves the song's
// current-stage pointer in a single transaction. The returned song is nil
// when the song no longer exists.
func (s *Store) AppendTransition(ctx context.Context, songID int64, from, to stage.Key, notes, category, actor string) (*Song, *Transition, error) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return nil, nil, errors.New("transition notes are required")
	}

	record := &Transition{
		ID:        uuid.NewString(),
		SongID:    songID,
		FromStage: from,
		ToStage:   to,
		Notes:     notes,
		Category:  strings.TrimSpace(category),
		Actor:     strings.TrimSpace(actor),
		CreatedAt: time.Now().UTC(),
	}
	timestamp := record.CreatedAt.Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin transition tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(
		ctx,
		`UPDATE songs SET current_stage = ?, stage_entered_at = ?, updated_at = ? WHERE id = ?`,
		to,
		timestamp,
		timestamp,
		songID,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("update current stage: %w", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return nil, nil, fmt.Errorf("rows affected: %w", err)
	} else if affected == 0 {
		return nil, nil, nil
	}

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO transitions (id, song_id, from_stage, to_stage, notes, rejection_category, actor, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.SongID,
		record.FromStage,
		record.ToStage,
		record.Notes,
		nullableString(record.Category),
		nullableString(record.Actor),
		timestamp,
	); err != nil {
		return nil, nil, fmt.Errorf("insert transition: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit transition: %w", err)
	}

	song, err := s.GetSong(ctx, songID)
	if err != nil {
		return nil, nil, err
	}
	return song, record, nil
}

// Transitions returns a song's history, most recent first.
func (s *Store) Transitions(ctx context.Context, songID int64) ([]*Transition, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+transitionColumns+` FROM transitions WHERE song_id = ? ORDER BY created_at DESC, id`,
		songID,
	)
	if err != nil {
		return nil, fmt.Errorf("list transitions: %w", err)
	}
	defer rows.Close()

	var records []*Transition
	for rows.Next() {
		record, err := scanTransition(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func scanTransition(scanner interface{ Scan(dest ...any) error }) (*Transition, error) {
	var (
		id         string
		songID     int64
		fromStage  string
		toStage    string
		notes      string
		category   sql.NullString
		actor      sql.NullString
		createdRaw sql.NullString
	)
	if err := scanner.Scan(&id, &songID, &fromStage, &toStage, &notes, &category, &actor, &createdRaw); err != nil {
		return nil, err
	}
	record := &Transition{
		ID:        id,
		SongID:    songID,
		FromStage: stage.Key(fromStage),
		ToStage:   stage.Key(toStage),
		Notes:     notes,
		Category:  category.String,
		Actor:     actor.String,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		record.CreatedAt = created
	}
	return record, nil
}
