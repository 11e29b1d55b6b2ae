package ipc

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"stagehand/internal/daemon"
	"stagehand/internal/logging"
	"stagehand/internal/stage"
	"stagehand/internal/testsupport"
)

func newTestClient(t *testing.T) (*Client, *daemon.Daemon) {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	d, err := daemon.New(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { d.Stop() })

	socketPath := filepath.Join(t.TempDir(), "stagehandd.sock")
	server, err := NewServer(context.Background(), socketPath, d, logging.NewNop())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	server.Serve()
	t.Cleanup(server.Close)

	client, err := Dial(socketPath)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client, d
}

func TestSongLifecycleOverSocket(t *testing.T) {
	client, _ := newTestClient(t)

	added, err := client.SongAdd("Midnight Run", "The Night Owls")
	if err != nil {
		t.Fatalf("SongAdd: %v", err)
	}
	if added.Song.CurrentStage != string(stage.KeyDraft) {
		t.Fatalf("new song stage = %q, want draft", added.Song.CurrentStage)
	}

	list, err := client.SongList(nil)
	if err != nil {
		t.Fatalf("SongList: %v", err)
	}
	if len(list.Songs) != 1 {
		t.Fatalf("song count = %d, want 1", len(list.Songs))
	}

	filtered, err := client.SongList([]string{"released"})
	if err != nil {
		t.Fatalf("SongList filtered: %v", err)
	}
	if len(filtered.Songs) != 0 {
		t.Fatalf("released count = %d, want 0", len(filtered.Songs))
	}

	detail, err := client.SongDescribe(added.Song.ID)
	if err != nil {
		t.Fatalf("SongDescribe: %v", err)
	}
	if detail.Detail.Song.Title != "Midnight Run" {
		t.Fatalf("detail title = %q", detail.Detail.Song.Title)
	}
	if detail.Detail.Checklist.Percent != 100 {
		t.Fatalf("empty checklist percent = %d, want 100", detail.Detail.Checklist.Percent)
	}
}

func TestTransitionOverSocket(t *testing.T) {
	client, _ := newTestClient(t)

	added, err := client.SongAdd("Midnight Run", "The Night Owls")
	if err != nil {
		t.Fatalf("SongAdd: %v", err)
	}

	_, err = client.Transition(TransitionIPCRequest{
		SongID:      added.Song.ID,
		TargetStage: "publishing",
		Notes:       "splits confirmed",
		Actor:       "avery",
	})
	if err == nil {
		t.Fatal("expected transition without work link to fail")
	}
	if !strings.Contains(err.Error(), "Work must be created before moving to Publishing stage") {
		t.Fatalf("error = %q, want prerequisite message", err.Error())
	}

	if _, err := client.AttachLink(added.Song.ID, "work", "W-1001"); err != nil {
		t.Fatalf("AttachLink: %v", err)
	}

	result, err := client.Transition(TransitionIPCRequest{
		SongID:      added.Song.ID,
		TargetStage: "publishing",
		Notes:       "splits confirmed",
		Actor:       "avery",
	})
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if result.Song.CurrentStage != "publishing" {
		t.Fatalf("stage after transition = %q", result.Song.CurrentStage)
	}
	if result.Transition.FromStage != "draft" || result.Transition.ToStage != "publishing" {
		t.Fatalf("transition record %s -> %s", result.Transition.FromStage, result.Transition.ToStage)
	}

	history, err := client.History(added.Song.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history.View.Transitions) != 1 {
		t.Fatalf("history length = %d, want 1", len(history.View.Transitions))
	}
}

func TestStageActOverSocket(t *testing.T) {
	client, _ := newTestClient(t)

	added, err := client.SongAdd("Midnight Run", "The Night Owls")
	if err != nil {
		t.Fatalf("SongAdd: %v", err)
	}

	status, err := client.StageAct(StageActRequest{
		SongID: added.Song.ID,
		Stage:  "draft",
		Action: "start",
		Actor:  "avery",
	})
	if err != nil {
		t.Fatalf("StageAct start: %v", err)
	}
	if status.Status.Status != string(stage.StatusInProgress) {
		t.Fatalf("status after start = %q", status.Status.Status)
	}

	_, err = client.StageAct(StageActRequest{
		SongID: added.Song.ID,
		Stage:  "draft",
		Action: "block",
		Actor:  "avery",
	})
	if err == nil {
		t.Fatal("expected block without reason to fail")
	}
	if !strings.Contains(err.Error(), "A reason is required to block a stage") {
		t.Fatalf("error = %q", err.Error())
	}
}

func TestChecklistOverSocket(t *testing.T) {
	client, _ := newTestClient(t)

	added, err := client.SongAdd("Midnight Run", "The Night Owls")
	if err != nil {
		t.Fatalf("SongAdd: %v", err)
	}

	item, err := client.ChecklistAdd(added.Song.ID, "draft", "Confirm writer splits")
	if err != nil {
		t.Fatalf("ChecklistAdd: %v", err)
	}
	if item.Item.IsComplete {
		t.Fatal("new item should start incomplete")
	}

	updated, err := client.ChecklistComplete(item.Item.ID, true)
	if err != nil {
		t.Fatalf("ChecklistComplete: %v", err)
	}
	if !updated.Item.IsComplete {
		t.Fatal("item should be complete")
	}

	view, err := client.Checklist(added.Song.ID)
	if err != nil {
		t.Fatalf("Checklist: %v", err)
	}
	if view.View.Progress.Percent != 100 {
		t.Fatalf("progress = %d, want 100", view.View.Progress.Percent)
	}
}

func TestStatusAndHealthOverSocket(t *testing.T) {
	client, d := newTestClient(t)

	if _, err := client.SongAdd("Midnight Run", "The Night Owls"); err != nil {
		t.Fatalf("SongAdd: %v", err)
	}

	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.PID != d.PID() {
		t.Fatalf("pid = %d, want %d", status.PID, d.PID())
	}
	if status.Pipeline.Total != 1 {
		t.Fatalf("pipeline total = %d, want 1", status.Pipeline.Total)
	}

	health, err := client.DatabaseHealth()
	if err != nil {
		t.Fatalf("DatabaseHealth: %v", err)
	}
	if !health.DatabaseReadable {
		t.Fatal("database should be readable")
	}
	if health.TotalSongs != 1 {
		t.Fatalf("total songs = %d, want 1", health.TotalSongs)
	}
}

func TestNotificationTestWithoutTopic(t *testing.T) {
	client, _ := newTestClient(t)

	resp, err := client.TestNotification()
	if err != nil {
		t.Fatalf("TestNotification: %v", err)
	}
	if resp.Sent {
		t.Fatal("notification should not send without a topic")
	}
	if resp.Message != "ntfy topic not configured" {
		t.Fatalf("message = %q", resp.Message)
	}
}
