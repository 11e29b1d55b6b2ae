package api

import (
	"context"
	"time"

	"stagehand/internal/catalog"
	"stagehand/internal/checklist"
	"stagehand/internal/stage"
	"stagehand/internal/views"
)

// CatalogReader abstracts catalog persistence interactions needed for API
// queries.
type CatalogReader interface {
	ListSongs(ctx context.Context, stages ...stage.Key) ([]*catalog.Song, error)
	GetSong(ctx context.Context, id int64) (*catalog.Song, error)
	StageStatuses(ctx context.Context, songID int64) ([]*catalog.StageStatus, error)
	ChecklistItems(ctx context.Context, songID int64, key stage.Key) ([]*catalog.ChecklistItem, error)
	Transitions(ctx context.Context, songID int64) ([]*catalog.Transition, error)
	Stats(ctx context.Context) (map[stage.Key]int, error)
	Health(ctx context.Context) (catalog.PipelineHealth, error)
}

// SongService exposes read-only catalog operations returning API DTOs. The
// detail, checklist, and history views are cached per song; mutating
// workflow operations invalidate the affected entries.
type SongService struct {
	store CatalogReader
	cache *views.Cache
	now   func() time.Time
}

// NewSongService constructs a SongService around the provided reader. A nil
// cache disables view caching.
func NewSongService(store CatalogReader, cache *views.Cache) *SongService {
	if store == nil {
		return nil
	}
	return &SongService{store: store, cache: cache, now: time.Now}
}

// List returns songs filtered by stage.
func (s *SongService) List(ctx context.Context, stages ...stage.Key) ([]SongItem, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	songs, err := s.store.ListSongs(ctx, stages...)
	if err != nil {
		return nil, err
	}
	return FromSongs(songs, s.now()), nil
}

// Detail assembles the song detail view: the song, its per-stage statuses,
// and checklist progress for the current stage.
func (s *SongService) Detail(ctx context.Context, songID int64) (*SongDetail, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	if cached, ok := s.cacheLookup(songID, views.KindDetail); ok {
		if detail, ok := cached.(*SongDetail); ok {
			return detail, nil
		}
	}

	song, err := s.store.GetSong(ctx, songID)
	if err != nil || song == nil {
		return nil, err
	}

	statuses, err := s.store.StageStatuses(ctx, songID)
	if err != nil {
		return nil, err
	}
	items, err := s.store.ChecklistItems(ctx, songID, song.CurrentStage)
	if err != nil {
		return nil, err
	}

	detail := &SongDetail{
		Song:      FromSong(song, s.now()),
		Stages:    FromStageStatuses(statuses),
		Checklist: FromProgress(checklist.Compute(catalog.GateItems(items))),
	}
	s.cacheStore(songID, views.KindDetail, detail)
	return detail, nil
}

// Checklist assembles the checklist view for a song, covering every stage.
func (s *SongService) Checklist(ctx context.Context, songID int64) (*ChecklistView, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	if cached, ok := s.cacheLookup(songID, views.KindChecklist); ok {
		if view, ok := cached.(*ChecklistView); ok {
			return view, nil
		}
	}

	song, err := s.store.GetSong(ctx, songID)
	if err != nil || song == nil {
		return nil, err
	}
	items, err := s.store.ChecklistItems(ctx, songID, "")
	if err != nil {
		return nil, err
	}

	view := &ChecklistView{
		SongID:   songID,
		Items:    FromChecklistItems(items),
		Progress: FromProgress(checklist.Compute(catalog.GateItems(items))),
	}
	s.cacheStore(songID, views.KindChecklist, view)
	return view, nil
}

// History assembles the transition history view, newest first.
func (s *SongService) History(ctx context.Context, songID int64) (*HistoryView, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	if cached, ok := s.cacheLookup(songID, views.KindHistory); ok {
		if view, ok := cached.(*HistoryView); ok {
			return view, nil
		}
	}

	song, err := s.store.GetSong(ctx, songID)
	if err != nil || song == nil {
		return nil, err
	}
	records, err := s.store.Transitions(ctx, songID)
	if err != nil {
		return nil, err
	}

	view := &HistoryView{
		SongID:      songID,
		Transitions: FromTransitions(records),
	}
	s.cacheStore(songID, views.KindHistory, view)
	return view, nil
}

// Status returns aggregated pipeline counts and health.
func (s *SongService) Status(ctx context.Context) (PipelineStatus, error) {
	if s == nil || s.store == nil {
		return PipelineStatus{}, nil
	}
	counts, err := s.store.Stats(ctx)
	if err != nil {
		return PipelineStatus{}, err
	}
	health, err := s.store.Health(ctx)
	if err != nil {
		return PipelineStatus{}, err
	}
	return FromPipelineHealth(counts, health), nil
}

func (s *SongService) cacheLookup(songID int64, kind views.Kind) (any, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Lookup(songID, kind)
}

func (s *SongService) cacheStore(songID int64, kind views.Kind, value any) {
	if s.cache == nil {
		return
	}
	s.cache.Store(songID, kind, value)
}
