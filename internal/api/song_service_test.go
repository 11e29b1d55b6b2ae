package api_test

import (
	"context"
	"testing"

	"stagehand/internal/api"
	"stagehand/internal/stage"
	"stagehand/internal/testsupport"
	"stagehand/internal/views"
)

func TestSongServiceListFiltersByStage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.NewSong(t, store, "First Light", "Mara Vane")
	second := testsupport.NewSong(t, store, "Undertow", "Mara Vane")
	if _, _, err := store.AppendTransition(ctx, second.ID, stage.KeyDraft, stage.KeyPublishing, "work registered", "", "avery"); err != nil {
		t.Fatalf("AppendTransition: %v", err)
	}

	svc := api.NewSongService(store, nil)

	all, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 songs, got %d", len(all))
	}

	published, err := svc.List(ctx, stage.KeyPublishing)
	if err != nil {
		t.Fatalf("List filtered: %v", err)
	}
	if len(published) != 1 || published[0].Title != "Undertow" {
		t.Fatalf("unexpected filtered result: %+v", published)
	}
	if published[0].CurrentStageLabel != "Publishing" {
		t.Fatalf("stage label = %q", published[0].CurrentStageLabel)
	}
}

func TestSongServiceDetailIncludesStagesAndChecklist(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	song := testsupport.NewSong(t, store, "First Light", "Mara Vane")
	item, err := store.AddChecklistItem(ctx, song.ID, stage.KeyDraft, "Lyrics finalized")
	if err != nil {
		t.Fatalf("AddChecklistItem: %v", err)
	}
	if _, err := store.AddChecklistItem(ctx, song.ID, stage.KeyDraft, "Demo recorded"); err != nil {
		t.Fatalf("AddChecklistItem: %v", err)
	}
	if _, err := store.SetChecklistItemComplete(ctx, item.ID, true); err != nil {
		t.Fatalf("SetChecklistItemComplete: %v", err)
	}

	svc := api.NewSongService(store, nil)
	detail, err := svc.Detail(ctx, song.ID)
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}
	if detail == nil {
		t.Fatal("expected detail, got nil")
	}
	if detail.Song.CurrentStage != string(stage.KeyDraft) {
		t.Fatalf("current stage = %q", detail.Song.CurrentStage)
	}
	if detail.Checklist.Completed != 1 || detail.Checklist.Total != 2 || detail.Checklist.Percent != 50 {
		t.Fatalf("checklist progress = %+v", detail.Checklist)
	}
}

func TestSongServiceDetailMissingSongReturnsNil(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	svc := api.NewSongService(store, nil)
	detail, err := svc.Detail(context.Background(), 9999)
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}
	if detail != nil {
		t.Fatalf("expected nil detail for missing song, got %+v", detail)
	}
}

func TestSongServiceCachesViewsUntilInvalidated(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	song := testsupport.NewSong(t, store, "Undertow", "Mara Vane")
	cache := views.NewCache(nil)
	svc := api.NewSongService(store, cache)

	first, err := svc.Detail(ctx, song.ID)
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}
	if cache.Len() == 0 {
		t.Fatal("detail view was not cached")
	}

	// A write behind the cache is invisible until invalidation.
	if _, _, err := store.AppendTransition(ctx, song.ID, stage.KeyDraft, stage.KeyPublishing, "work registered", "", "avery"); err != nil {
		t.Fatalf("AppendTransition: %v", err)
	}
	stale, err := svc.Detail(ctx, song.ID)
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}
	if stale != first {
		t.Fatal("expected cached detail instance")
	}

	cache.Invalidate(song.ID)
	fresh, err := svc.Detail(ctx, song.ID)
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}
	if fresh.Song.CurrentStage != string(stage.KeyPublishing) {
		t.Fatalf("stage after invalidation = %q", fresh.Song.CurrentStage)
	}
}

func TestSongServiceHistoryNewestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	song := testsupport.NewSong(t, store, "Undertow", "Mara Vane")
	if _, _, err := store.AppendTransition(ctx, song.ID, stage.KeyDraft, stage.KeyPublishing, "work registered", "", "avery"); err != nil {
		t.Fatalf("AppendTransition: %v", err)
	}
	if _, _, err := store.AppendTransition(ctx, song.ID, stage.KeyPublishing, stage.KeyLabelRecording, "session booked", "", "avery"); err != nil {
		t.Fatalf("AppendTransition: %v", err)
	}

	svc := api.NewSongService(store, nil)
	history, err := svc.History(ctx, song.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history.Transitions) != 2 {
		t.Fatalf("expected 2 transitions, got %d", len(history.Transitions))
	}
	if history.Transitions[0].ToStage != string(stage.KeyLabelRecording) {
		t.Fatalf("newest transition = %+v", history.Transitions[0])
	}
}

func TestSongServiceStatusCounts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.NewSong(t, store, "First Light", "Mara Vane")
	testsupport.NewSong(t, store, "Undertow", "Mara Vane")

	svc := api.NewSongService(store, nil)
	status, err := svc.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.Total != 2 {
		t.Fatalf("total = %d", status.Total)
	}
	if status.Counts[string(stage.KeyDraft)] != 2 {
		t.Fatalf("draft count = %d", status.Counts[string(stage.KeyDraft)])
	}
}
