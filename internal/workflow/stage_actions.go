package workflow

import (
	"context"
	"strings"

	"stagehand/internal/catalog"
	"stagehand/internal/logging"
	"stagehand/internal/services"
	"stagehand/internal/stage"
	"stagehand/internal/views"
)

// StageActionRequest describes a per-stage status action for one song.
// Reason is required when the action is block and ignored otherwise.
type StageActionRequest struct {
	SongID int64
	Stage  stage.Key
	Action stage.Action
	Reason string
	Actor  string
}

// Act validates and applies a per-stage status action. On success only the
// song detail view is invalidated; pipeline-level fields do not change.
func (e *Engine) Act(ctx context.Context, req StageActionRequest) (*catalog.StageStatus, error) {
	if _, ok := stage.Lookup(req.Stage); !ok {
		return nil, services.Wrap(services.ErrInvalidStatusTransition, "stage action", "Unknown stage", nil)
	}

	reason := strings.TrimSpace(req.Reason)
	if req.Action == stage.ActionBlock && reason == "" {
		return nil, services.Wrap(services.ErrMissingRequiredField, "stage action", "A reason is required to block a stage", nil)
	}
	if req.Action != stage.ActionBlock {
		reason = ""
	}

	song, err := e.store.GetSong(ctx, req.SongID)
	if err != nil {
		return nil, services.Wrap(services.ErrRemoteOperationFailed, "stage action", "Failed to update stage status", err)
	}
	if song == nil {
		return nil, services.Wrap(services.ErrNotFound, "stage action", "Song not found", nil)
	}

	current, err := e.store.StageStatus(ctx, song.ID, req.Stage)
	if err != nil {
		return nil, services.Wrap(services.ErrRemoteOperationFailed, "stage action", "Failed to update stage status", err)
	}

	next, ok := stage.ApplyAction(current.Status, req.Action)
	if !ok {
		return nil, services.Wrap(services.ErrInvalidStatusTransition, "stage action",
			"Action "+string(req.Action)+" is not available from status "+string(current.Status), nil)
	}

	updated, err := e.store.UpsertStageStatus(ctx, song.ID, req.Stage, next, reason)
	if err != nil {
		return nil, services.Wrap(services.ErrRemoteOperationFailed, "stage action", "Failed to update stage status", err)
	}

	e.cache.Invalidate(song.ID, views.KindDetail)

	e.logger.Info("stage status updated",
		logging.Int64(logging.FieldSongID, song.ID),
		logging.String(logging.FieldStage, string(req.Stage)),
		logging.String("action", string(req.Action)),
		logging.String("status", string(updated.Status)),
		logging.String(logging.FieldActor, req.Actor))

	if req.Action == stage.ActionBlock {
		label := string(req.Stage)
		if def, ok := stage.Lookup(req.Stage); ok {
			label = def.Label
		}
		if err := e.notifier.NotifyStageBlocked(ctx, song.Title, label, reason); err != nil {
			e.logger.Warn("blocked notification failed", logging.Error(err))
		}
	}

	return updated, nil
}

// SetStageStatus resolves a requested status into the action that reaches it
// from the current status, then applies it. This backs API clients that send
// a desired status instead of an action.
func (e *Engine) SetStageStatus(ctx context.Context, songID int64, key stage.Key, requested stage.Status, reason, actor string) (*catalog.StageStatus, error) {
	if _, ok := stage.Lookup(key); !ok {
		return nil, services.Wrap(services.ErrInvalidStatusTransition, "stage action", "Unknown stage", nil)
	}

	current, err := e.store.StageStatus(ctx, songID, key)
	if err != nil {
		return nil, services.Wrap(services.ErrRemoteOperationFailed, "stage action", "Failed to update stage status", err)
	}

	action, ok := stage.ActionForStatus(current.Status, requested)
	if !ok {
		return nil, services.Wrap(services.ErrInvalidStatusTransition, "stage action",
			"No action moves status "+string(current.Status)+" to "+string(requested), nil)
	}

	return e.Act(ctx, StageActionRequest{
		SongID: songID,
		Stage:  key,
		Action: action,
		Reason: reason,
		Actor:  actor,
	})
}
