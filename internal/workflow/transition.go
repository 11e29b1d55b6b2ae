package workflow

import (
	"context"
	"strings"

	"stagehand/internal/catalog"
	"stagehand/internal/logging"
	"stagehand/internal/services"
	"stagehand/internal/stage"
	"stagehand/internal/transition"
)

// TransitionRequest describes a pipeline stage change for one song.
// Rejections are backward moves sent with a category explaining the
// send-back; the category is folded into the history notes.
type TransitionRequest struct {
	SongID            int64
	Target            stage.Key
	Notes             string
	IsRejection       bool
	RejectionCategory string
	Actor             string
}

// TransitionResult reports a committed transition. Issues carries the
// validator output that was present at commit time, so admin overrides keep
// a record of what they overrode.
type TransitionResult struct {
	Song   *catalog.Song
	Record *catalog.Transition
	Issues []transition.Issue
}

// Transition validates and executes a pipeline stage change. On success the
// stage change and its history record are committed atomically and every
// cached view of the song is invalidated.
func (e *Engine) Transition(ctx context.Context, req TransitionRequest) (*TransitionResult, error) {
	notes := strings.TrimSpace(req.Notes)
	if notes == "" {
		return nil, services.Wrap(services.ErrMissingRequiredField, "transition", "Notes are required for a stage transition", nil)
	}
	category := strings.TrimSpace(req.RejectionCategory)
	if req.IsRejection && category == "" {
		return nil, services.Wrap(services.ErrMissingRequiredField, "transition", "Rejection category is required", nil)
	}
	if _, ok := stage.Lookup(req.Target); !ok {
		return nil, services.Wrap(services.ErrInvalidStatusTransition, "transition", "Unknown target stage", nil)
	}

	song, err := e.store.GetSong(ctx, req.SongID)
	if err != nil {
		return nil, services.Wrap(services.ErrRemoteOperationFailed, "transition", "Failed to transition song stage", err)
	}
	if song == nil {
		return nil, services.Wrap(services.ErrNotFound, "transition", "Song not found", nil)
	}

	if req.Target == song.CurrentStage {
		return nil, services.Wrap(services.ErrInvalidStatusTransition, "transition", "Song is already in the target stage", nil)
	}
	// Archived is reachable from any stage; everything else moves one
	// pipeline step at a time.
	if req.Target != stage.KeyArchived && !stage.Adjacent(song.CurrentStage, req.Target) {
		return nil, services.Wrap(services.ErrInvalidStatusTransition, "transition", "Target stage is not adjacent to the current stage", nil)
	}

	isAdmin := e.cfg.IsAdminActor(req.Actor)

	items, err := e.store.ChecklistItems(ctx, song.ID, song.CurrentStage)
	if err != nil {
		return nil, services.Wrap(services.ErrRemoteOperationFailed, "transition", "Failed to transition song stage", err)
	}

	verdict := transition.Validate(song.Facts(), req.Target, catalog.GateItems(items), isAdmin)
	if !verdict.CanProceed {
		return nil, &ValidationError{Issues: verdict.Issues}
	}

	if req.IsRejection {
		notes = "[" + category + "] " + notes
	}

	fromStage := song.CurrentStage
	updated, record, err := e.store.AppendTransition(ctx, song.ID, fromStage, req.Target, notes, category, req.Actor)
	if err != nil {
		return nil, services.Wrap(services.ErrRemoteOperationFailed, "transition", "Failed to transition song stage", err)
	}
	if updated == nil || record == nil {
		return nil, services.Wrap(services.ErrNotFound, "transition", "Song not found", nil)
	}

	e.cache.Invalidate(song.ID)

	e.logger.Info("song transitioned",
		logging.Int64(logging.FieldSongID, song.ID),
		logging.String(logging.FieldFromStage, string(fromStage)),
		logging.String(logging.FieldToStage, string(req.Target)),
		logging.String(logging.FieldActor, req.Actor),
		logging.Bool("rejection", req.IsRejection),
		logging.Int("issues", len(verdict.Issues)))

	e.notifyTransition(ctx, updated, fromStage, req.Target, req.Actor)

	return &TransitionResult{
		Song:   updated,
		Record: record,
		Issues: verdict.Issues,
	}, nil
}

func (e *Engine) notifyTransition(ctx context.Context, song *catalog.Song, from, to stage.Key, actor string) {
	fromLabel := string(from)
	toLabel := string(to)
	if def, ok := stage.Lookup(from); ok {
		fromLabel = def.Label
	}
	if def, ok := stage.Lookup(to); ok {
		toLabel = def.Label
	}

	if err := e.notifier.NotifyTransition(ctx, song.Title, fromLabel, toLabel, actor); err != nil {
		e.logger.Warn("transition notification failed", logging.Error(err))
	}
	if to == stage.KeyReleased {
		if err := e.notifier.NotifyReleased(ctx, song.Title); err != nil {
			e.logger.Warn("release notification failed", logging.Error(err))
		}
	}
}
