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

const checklistColumns = "id, song_id, stage, label, is_complete, created_at, updated_at"

// AddChecklistItem attaches a gating item to a song's stage.
func (s *Store) AddChecklistItem(ctx context.Context, songID int64, key stage.Key, label string) (*ChecklistItem, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, errors.New("checklist item label is required")
	}
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO checklist_items (song_id, stage, label, is_complete, created_at, updated_at)
         VALUES (?, ?, ?, 0, ?, ?)`,
		songID,
		key,
		label,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert checklist item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.checklistItemByID(ctx, id)
}

// SetChecklistItemComplete toggles completion on a checklist item.
func (s *Store) SetChecklistItemComplete(ctx context.Context, id int64, complete bool) (*ChecklistItem, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE checklist_items SET is_complete = ?, updated_at = ? WHERE id = ?`,
		boolToInt(complete),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("update checklist item: %w", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	} else if affected == 0 {
		return nil, nil
	}
	return s.checklistItemByID(ctx, id)
}

// ChecklistItems returns a song's checklist rows, optionally filtered to one
// stage, ordered by creation time.
func (s *Store) ChecklistItems(ctx context.Context, songID int64, key stage.Key) ([]*ChecklistItem, error) {
	query := `SELECT ` + checklistColumns + ` FROM checklist_items WHERE song_id = ?`
	args := []any{songID}
	if key != "" {
		query += ` AND stage = ?`
		args = append(args, key)
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list checklist items: %w", err)
	}
	defer rows.Close()

	var items []*ChecklistItem
	for rows.Next() {
		item, err := scanChecklistItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) checklistItemByID(ctx context.Context, id int64) (*ChecklistItem, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+checklistColumns+` FROM checklist_items WHERE id = ?`, id)
	item, err := scanChecklistItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get checklist item: %w", err)
	}
	return item, nil
}

func scanChecklistItem(scanner interface{ Scan(dest ...any) error }) (*ChecklistItem, error) {
	var (
		id         int64
		songID     int64
		stageKey   string
		label      string
		isComplete sql.NullInt64
		createdRaw sql.NullString
		updatedRaw sql.NullString
	)
	if err := scanner.Scan(&id, &songID, &stageKey, &label, &isComplete, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	item := &ChecklistItem{
		ID:     id,
		SongID: songID,
		Stage:  stage.Key(stageKey),
		Label:  label,
	}
	if isComplete.Valid {
		item.IsComplete = isComplete.Int64 != 0
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		item.UpdatedAt = updated
	}
	return item, nil
}
