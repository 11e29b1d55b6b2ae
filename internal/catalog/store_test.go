package catalog_test

import (
	"context"
	"testing"

	"stagehand/internal/catalog"
	"stagehand/internal/stage"
	"stagehand/internal/testsupport"
)

func TestAddSongRequiresTitle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if _, err := store.AddSong(context.Background(), "   ", "The Night Owls"); err == nil {
		t.Fatal("expected error for blank title")
	}
}

func TestAddSongStartsInDraft(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	song := testsupport.NewSong(t, store, "Midnight Run", "The Night Owls")
	if song.CurrentStage != stage.KeyDraft {
		t.Fatalf("current stage = %s, want draft", song.CurrentStage)
	}
	if song.StageEnteredAt.IsZero() {
		t.Fatal("stage entered timestamp should be set")
	}
}

func TestGetSongMissingReturnsNil(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	song, err := store.GetSong(context.Background(), 999)
	if err != nil {
		t.Fatalf("GetSong: %v", err)
	}
	if song != nil {
		t.Fatalf("expected nil for missing song, got %+v", song)
	}
}

func TestListSongsFiltersByStage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first := testsupport.NewSong(t, store, "Midnight Run", "")
	testsupport.NewSong(t, store, "Second Song", "")

	if _, err := store.SetCurrentStage(ctx, first.ID, stage.KeyPublishing); err != nil {
		t.Fatalf("SetCurrentStage: %v", err)
	}

	all, err := store.ListSongs(ctx)
	if err != nil {
		t.Fatalf("ListSongs: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("all songs = %d, want 2", len(all))
	}

	drafts, err := store.ListSongs(ctx, stage.KeyDraft)
	if err != nil {
		t.Fatalf("ListSongs draft: %v", err)
	}
	if len(drafts) != 1 || drafts[0].Title != "Second Song" {
		t.Fatalf("draft filter returned %d songs", len(drafts))
	}
}

func TestAttachLink(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	song := testsupport.NewSong(t, store, "Midnight Run", "")

	updated, err := store.AttachLink(ctx, song.ID, catalog.LinkWork, "W-1001")
	if err != nil {
		t.Fatalf("AttachLink work: %v", err)
	}
	if updated.WorkID != "W-1001" {
		t.Fatalf("work id = %q", updated.WorkID)
	}
	if !updated.HasWork() {
		t.Fatal("HasWork should report true")
	}

	updated, err = store.AttachLink(ctx, song.ID, catalog.LinkRecording, "R-2001")
	if err != nil {
		t.Fatalf("AttachLink recording: %v", err)
	}
	if updated.RecordingID != "R-2001" || updated.WorkID != "W-1001" {
		t.Fatalf("links = %q/%q", updated.WorkID, updated.RecordingID)
	}

	missing, err := store.AttachLink(ctx, 999, catalog.LinkRelease, "X")
	if err != nil {
		t.Fatalf("AttachLink missing: %v", err)
	}
	if missing != nil {
		t.Fatal("expected nil for missing song")
	}
}

func TestUpsertStageStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	song := testsupport.NewSong(t, store, "Midnight Run", "")

	status, err := store.UpsertStageStatus(ctx, song.ID, stage.KeyDraft, stage.StatusInProgress, "")
	if err != nil {
		t.Fatalf("UpsertStageStatus: %v", err)
	}
	if status.Status != stage.StatusInProgress {
		t.Fatalf("status = %s", status.Status)
	}

	status, err = store.UpsertStageStatus(ctx, song.ID, stage.KeyDraft, stage.StatusBlocked, "missing contract")
	if err != nil {
		t.Fatalf("UpsertStageStatus blocked: %v", err)
	}
	if status.BlockedReason != "missing contract" {
		t.Fatalf("blocked reason = %q", status.BlockedReason)
	}

	statuses, err := store.StageStatuses(ctx, song.ID)
	if err != nil {
		t.Fatalf("StageStatuses: %v", err)
	}
	if len(statuses) != 1 {
		t.Fatalf("status rows = %d, want 1 (upsert, not insert)", len(statuses))
	}
}

func TestUpsertStageStatusBlockedReasonInvariant(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	song := testsupport.NewSong(t, store, "Midnight Run", "")

	if _, err := store.UpsertStageStatus(ctx, song.ID, stage.KeyDraft, stage.StatusBlocked, ""); err == nil {
		t.Fatal("blocked status without reason should fail")
	}
	if _, err := store.UpsertStageStatus(ctx, song.ID, stage.KeyDraft, stage.StatusInProgress, "reason"); err == nil {
		t.Fatal("non-blocked status with reason should fail")
	}
}

func TestChecklistItems(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	song := testsupport.NewSong(t, store, "Midnight Run", "")

	first, err := store.AddChecklistItem(ctx, song.ID, stage.KeyDraft, "Confirm writer splits")
	if err != nil {
		t.Fatalf("AddChecklistItem: %v", err)
	}
	if first.IsComplete {
		t.Fatal("new item should start incomplete")
	}
	if _, err := store.AddChecklistItem(ctx, song.ID, stage.KeyPublishing, "Register work"); err != nil {
		t.Fatalf("AddChecklistItem publishing: %v", err)
	}

	updated, err := store.SetChecklistItemComplete(ctx, first.ID, true)
	if err != nil {
		t.Fatalf("SetChecklistItemComplete: %v", err)
	}
	if !updated.IsComplete {
		t.Fatal("item should be complete")
	}

	draftItems, err := store.ChecklistItems(ctx, song.ID, stage.KeyDraft)
	if err != nil {
		t.Fatalf("ChecklistItems draft: %v", err)
	}
	if len(draftItems) != 1 || !draftItems[0].IsComplete {
		t.Fatalf("draft items = %d", len(draftItems))
	}

	allItems, err := store.ChecklistItems(ctx, song.ID, "")
	if err != nil {
		t.Fatalf("ChecklistItems all: %v", err)
	}
	if len(allItems) != 2 {
		t.Fatalf("all items = %d, want 2", len(allItems))
	}

	missing, err := store.SetChecklistItemComplete(ctx, 999, true)
	if err != nil {
		t.Fatalf("SetChecklistItemComplete missing: %v", err)
	}
	if missing != nil {
		t.Fatal("expected nil for missing item")
	}
}

func TestAppendTransitionMovesSongAndRecordsHistory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	song := testsupport.NewSong(t, store, "Midnight Run", "")

	moved, record, err := store.AppendTransition(ctx, song.ID, stage.KeyDraft, stage.KeyPublishing, "splits confirmed", "", "avery")
	if err != nil {
		t.Fatalf("AppendTransition: %v", err)
	}
	if moved.CurrentStage != stage.KeyPublishing {
		t.Fatalf("current stage = %s", moved.CurrentStage)
	}
	if record.ID == "" {
		t.Fatal("transition record should carry an id")
	}
	if !moved.StageEnteredAt.After(song.StageEnteredAt) && !moved.StageEnteredAt.Equal(song.StageEnteredAt) {
		t.Fatal("stage entered timestamp should advance")
	}

	if _, _, err := store.AppendTransition(ctx, song.ID, stage.KeyPublishing, stage.KeyLabelRecording, "session booked", "", "avery"); err != nil {
		t.Fatalf("second AppendTransition: %v", err)
	}

	records, err := store.Transitions(ctx, song.ID)
	if err != nil {
		t.Fatalf("Transitions: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("history length = %d, want 2", len(records))
	}
	if records[0].ToStage != stage.KeyLabelRecording {
		t.Fatalf("newest record to = %s, want label_recording", records[0].ToStage)
	}
}

func TestAppendTransitionMissingSong(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	song, record, err := store.AppendTransition(context.Background(), 999, stage.KeyDraft, stage.KeyPublishing, "notes", "", "")
	if err != nil {
		t.Fatalf("AppendTransition: %v", err)
	}
	if song != nil || record != nil {
		t.Fatal("expected nil results for missing song")
	}
}

func TestAppendTransitionRequiresNotes(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	song := testsupport.NewSong(t, store, "Midnight Run", "")

	if _, _, err := store.AppendTransition(context.Background(), song.ID, stage.KeyDraft, stage.KeyPublishing, "  ", "", ""); err == nil {
		t.Fatal("expected error for blank notes")
	}
}

func TestRemoveSong(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	song := testsupport.NewSong(t, store, "Midnight Run", "")

	removed, err := store.RemoveSong(ctx, song.ID)
	if err != nil {
		t.Fatalf("RemoveSong: %v", err)
	}
	if !removed {
		t.Fatal("expected removal")
	}

	removed, err = store.RemoveSong(ctx, song.ID)
	if err != nil {
		t.Fatalf("RemoveSong second: %v", err)
	}
	if removed {
		t.Fatal("second removal should report false")
	}
}

func TestStatsAndHealth(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first := testsupport.NewSong(t, store, "Midnight Run", "")
	testsupport.NewSong(t, store, "Second Song", "")
	if _, err := store.SetCurrentStage(ctx, first.ID, stage.KeyReleased); err != nil {
		t.Fatalf("SetCurrentStage: %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats[stage.KeyDraft] != 1 || stats[stage.KeyReleased] != 1 {
		t.Fatalf("stats = %v", stats)
	}

	health, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if health.Total != 2 || health.Released != 1 {
		t.Fatalf("health = %+v", health)
	}
}

func TestCheckHealth(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	testsupport.NewSong(t, store, "Midnight Run", "")

	health, err := store.CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("CheckHealth: %v", err)
	}
	if !health.DatabaseExists || !health.DatabaseReadable {
		t.Fatalf("health = %+v", health)
	}
	if len(health.MissingTables) != 0 {
		t.Fatalf("missing tables = %v", health.MissingTables)
	}
	if !health.IntegrityCheck {
		t.Fatal("integrity check should pass")
	}
	if health.TotalSongs != 1 {
		t.Fatalf("total songs = %d", health.TotalSongs)
	}
}
