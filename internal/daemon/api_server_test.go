package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"stagehand/internal/api"
	"stagehand/internal/stage"
	"stagehand/internal/testsupport"
)

func newTestServer(t *testing.T, opts ...testsupport.ConfigOption) (*httptest.Server, *Daemon) {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	store := testsupport.MustOpenStore(t, cfg)

	d, err := New(cfg, store, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	server := httptest.NewServer(d.apiSrv.server.Handler)
	t.Cleanup(server.Close)
	return server, d
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, buf.Bytes()
}

func TestCreateAndListSongs(t *testing.T) {
	server, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/songs", map[string]string{
		"title": "First Light", "artist": "Mara Vane",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d: %s", resp.StatusCode, body)
	}
	var created api.SongItem
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.CurrentStage != string(stage.KeyDraft) {
		t.Fatalf("new song stage = %q", created.CurrentStage)
	}

	resp, body = doJSON(t, http.MethodGet, server.URL+"/api/songs", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	var list api.SongListResponse
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Songs) != 1 || list.Songs[0].Title != "First Light" {
		t.Fatalf("unexpected list: %+v", list.Songs)
	}
}

func TestSongDetailNotFound(t *testing.T) {
	server, _ := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, server.URL+"/api/songs/999", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestTransitionBlockedReturnsIssues(t *testing.T) {
	server, d := newTestServer(t)
	song := testsupport.NewSong(t, d.store, "First Light", "Mara Vane")

	resp, body := doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/songs/%d/transition", server.URL, song.ID), map[string]any{
		"target_stage": "publishing",
		"notes":        "moving on",
		"actor":        "jo",
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	var payload struct {
		Error  string `json:"error"`
		Issues []struct {
			Severity string `json:"severity"`
			Message  string `json:"message"`
		} `json:"issues"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode error payload: %v", err)
	}
	if len(payload.Issues) != 1 || payload.Issues[0].Message != "Work must be created before moving to Publishing stage" {
		t.Fatalf("issues = %+v", payload.Issues)
	}
}

func TestTransitionFlowWithLinks(t *testing.T) {
	server, d := newTestServer(t)
	song := testsupport.NewSong(t, d.store, "First Light", "Mara Vane")

	resp, body := doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/songs/%d/links", server.URL, song.ID), map[string]string{
		"kind": "work", "ref": "W-100",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("attach link status = %d: %s", resp.StatusCode, body)
	}

	resp, body = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/songs/%d/transition", server.URL, song.ID), map[string]any{
		"target_stage": "publishing",
		"notes":        "work registered",
		"actor":        "jo",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("transition status = %d: %s", resp.StatusCode, body)
	}
	var outcome api.TransitionOutcome
	if err := json.Unmarshal(body, &outcome); err != nil {
		t.Fatalf("decode outcome: %v", err)
	}
	if outcome.Song.CurrentStage != "publishing" {
		t.Fatalf("stage = %q", outcome.Song.CurrentStage)
	}

	resp, body = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/songs/%d/transitions", server.URL, song.ID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("history status = %d", resp.StatusCode)
	}
	var history api.HistoryView
	if err := json.Unmarshal(body, &history); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(history.Transitions) != 1 || history.Transitions[0].Notes != "work registered" {
		t.Fatalf("history = %+v", history.Transitions)
	}
}

func TestTransitionWithoutNotesIsBadRequest(t *testing.T) {
	server, d := newTestServer(t)
	song := testsupport.NewSong(t, d.store, "First Light", "Mara Vane")

	resp, _ := doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/songs/%d/transition", server.URL, song.ID), map[string]any{
		"target_stage": "publishing",
		"notes":        "",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestStageActionEndpoint(t *testing.T) {
	server, d := newTestServer(t)
	song := testsupport.NewSong(t, d.store, "First Light", "Mara Vane")
	url := fmt.Sprintf("%s/api/songs/%d/stages/draft", server.URL, song.ID)

	resp, body := doJSON(t, http.MethodPatch, url, map[string]string{"action": "start"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start status = %d: %s", resp.StatusCode, body)
	}
	var status api.StageStatusItem
	if err := json.Unmarshal(body, &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.Status != "in_progress" {
		t.Fatalf("status = %q", status.Status)
	}

	resp, body = doJSON(t, http.MethodPatch, url, map[string]string{
		"action": "block", "blocked_reason": "Legal hold",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("block status = %d: %s", resp.StatusCode, body)
	}

	resp, _ = doJSON(t, http.MethodPatch, url, map[string]string{"action": "complete"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("complete from blocked status = %d", resp.StatusCode)
	}
}

func TestStageStatusByRequestedStatus(t *testing.T) {
	server, d := newTestServer(t)
	song := testsupport.NewSong(t, d.store, "First Light", "Mara Vane")
	url := fmt.Sprintf("%s/api/songs/%d/stages/draft", server.URL, song.ID)

	resp, body := doJSON(t, http.MethodPatch, url, map[string]string{"status": "in_progress"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	var status api.StageStatusItem
	if err := json.Unmarshal(body, &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.Status != "in_progress" {
		t.Fatalf("status = %q", status.Status)
	}
}

func TestChecklistEndpoints(t *testing.T) {
	server, d := newTestServer(t)
	song := testsupport.NewSong(t, d.store, "First Light", "Mara Vane")
	base := fmt.Sprintf("%s/api/songs/%d/checklist", server.URL, song.ID)

	resp, body := doJSON(t, http.MethodPost, base, map[string]string{
		"stage": "draft", "label": "Lyrics finalized",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add item status = %d: %s", resp.StatusCode, body)
	}
	var item api.ChecklistItem
	if err := json.Unmarshal(body, &item); err != nil {
		t.Fatalf("decode item: %v", err)
	}

	resp, body = doJSON(t, http.MethodPatch, fmt.Sprintf("%s/%d", base, item.ID), map[string]bool{
		"isComplete": true,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("patch item status = %d: %s", resp.StatusCode, body)
	}

	resp, body = doJSON(t, http.MethodGet, base, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get checklist status = %d", resp.StatusCode)
	}
	var view api.ChecklistView
	if err := json.Unmarshal(body, &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if view.Progress.Percent != 100 || len(view.Items) != 1 || !view.Items[0].IsComplete {
		t.Fatalf("view = %+v", view)
	}
}

func TestStatusEndpoint(t *testing.T) {
	server, d := newTestServer(t)
	testsupport.NewSong(t, d.store, "First Light", "Mara Vane")

	resp, body := doJSON(t, http.MethodGet, server.URL+"/api/status", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var payload api.DaemonStatus
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if payload.Pipeline.Total != 1 {
		t.Fatalf("pipeline total = %d", payload.Pipeline.Total)
	}
	if payload.CatalogPath == "" {
		t.Fatal("catalog path missing")
	}
}

func TestDeleteSong(t *testing.T) {
	server, d := newTestServer(t)
	song := testsupport.NewSong(t, d.store, "First Light", "Mara Vane")

	resp, _ := doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/songs/%d", server.URL, song.ID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}

	got, err := d.store.GetSong(context.Background(), song.ID)
	if err != nil {
		t.Fatalf("GetSong: %v", err)
	}
	if got != nil {
		t.Fatalf("song still present: %+v", got)
	}
}
