package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"stagehand/internal/stage"
)

// StageStatus returns the stored status row for one stage, or a synthesized
// not_started record when no row exists yet.
func (s *Store) StageStatus(ctx context.Context, songID int64, key stage.Key) (*StageStatus, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT song_id, stage, status, blocked_reason, updated_at FROM stage_statuses WHERE song_id = ? AND stage = ?`,
		songID,
		key,
	)
	status, err := scanStageStatus(row)
	if errors.Is(err, sql.ErrNoRows) {
		return &StageStatus{SongID: songID, Stage: key, Status: stage.StatusNotStarted}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get stage status: %w", err)
	}
	return status, nil
}

// StageStatuses returns every stored status row for a song in pipeline
// order. Stages without rows are absent; callers synthesize not_started.
func (s *Store) StageStatuses(ctx context.Context, songID int64) ([]*StageStatus, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT song_id, stage, status, blocked_reason, updated_at FROM stage_statuses WHERE song_id = ?`,
		songID,
	)
	if err != nil {
		return nil, fmt.Errorf("list stage statuses: %w", err)
	}
	defer rows.Close()

	byStage := make(map[stage.Key]*StageStatus)
	for rows.Next() {
		status, err := scanStageStatus(rows)
		if err != nil {
			return nil, err
		}
		byStage[status.Stage] = status
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ordered := make([]*StageStatus, 0, len(byStage))
	for _, key := range append(stage.Sequence(), stage.KeyArchived) {
		if status, ok := byStage[key]; ok {
			ordered = append(ordered, status)
		}
	}
	return ordered, nil
}

// UpsertStageStatus writes the status of one stage for one song, creating
// the row on first write. blockedReason must be set exactly when the status
// is blocked.
func (s *Store) UpsertStageStatus(ctx context.Context, songID int64, key stage.Key, status stage.Status, blockedReason string) (*StageStatus, error) {
	if (status == stage.StatusBlocked) != (blockedReason != "") {
		return nil, fmt.Errorf("blocked reason must be set exactly when status is %s", stage.StatusBlocked)
	}
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO stage_statuses (song_id, stage, status, blocked_reason, updated_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT (song_id, stage) DO UPDATE
         SET status = excluded.status, blocked_reason = excluded.blocked_reason, updated_at = excluded.updated_at`,
		songID,
		key,
		status,
		nullableString(blockedReason),
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert stage status: %w", err)
	}
	return s.StageStatus(ctx, songID, key)
}

func scanStageStatus(scanner interface{ Scan(dest ...any) error }) (*StageStatus, error) {
	var (
		songID        int64
		stageKey      string
		statusStr     string
		blockedReason sql.NullString
		updatedRaw    sql.NullString
	)
	if err := scanner.Scan(&songID, &stageKey, &statusStr, &blockedReason, &updatedRaw); err != nil {
		return nil, err
	}
	status := &StageStatus{
		SongID:        songID,
		Stage:         stage.Key(stageKey),
		Status:        stage.Status(statusStr),
		BlockedReason: blockedReason.String,
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		status.UpdatedAt = updated
	}
	return status, nil
}
