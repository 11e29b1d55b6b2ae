package stage_test

import (
	"reflect"
	"testing"

	"stagehand/internal/stage"
)

func TestAvailableActionsClosedSet(t *testing.T) {
	cases := []struct {
		status   stage.Status
		expected []stage.Action
	}{
		{stage.StatusNotStarted, []stage.Action{stage.ActionStart}},
		{stage.StatusInProgress, []stage.Action{stage.ActionComplete, stage.ActionBlock}},
		{stage.StatusBlocked, []stage.Action{stage.ActionResume}},
		{stage.StatusCompleted, []stage.Action{stage.ActionReopen}},
	}
	for _, tc := range cases {
		got := stage.AvailableActions(tc.status)
		if !reflect.DeepEqual(got, tc.expected) {
			t.Fatalf("AvailableActions(%s) = %v, want %v", tc.status, got, tc.expected)
		}
	}
}

func TestApplyActionEdges(t *testing.T) {
	cases := []struct {
		from   stage.Status
		action stage.Action
		to     stage.Status
	}{
		{stage.StatusNotStarted, stage.ActionStart, stage.StatusInProgress},
		{stage.StatusInProgress, stage.ActionComplete, stage.StatusCompleted},
		{stage.StatusInProgress, stage.ActionBlock, stage.StatusBlocked},
		{stage.StatusBlocked, stage.ActionResume, stage.StatusInProgress},
		{stage.StatusCompleted, stage.ActionReopen, stage.StatusInProgress},
	}
	for _, tc := range cases {
		got, ok := stage.ApplyAction(tc.from, tc.action)
		if !ok || got != tc.to {
			t.Fatalf("ApplyAction(%s, %s) = %s, %v, want %s", tc.from, tc.action, got, ok, tc.to)
		}
	}
}

func TestApplyActionRejectsUndefinedEdges(t *testing.T) {
	invalid := []struct {
		from   stage.Status
		action stage.Action
	}{
		{stage.StatusNotStarted, stage.ActionComplete},
		{stage.StatusNotStarted, stage.ActionBlock},
		{stage.StatusBlocked, stage.ActionComplete},
		{stage.StatusBlocked, stage.ActionBlock},
		{stage.StatusCompleted, stage.ActionComplete},
		{stage.StatusCompleted, stage.ActionStart},
		{stage.StatusInProgress, stage.ActionStart},
	}
	for _, tc := range invalid {
		got, ok := stage.ApplyAction(tc.from, tc.action)
		if ok {
			t.Fatalf("ApplyAction(%s, %s) unexpectedly succeeded", tc.from, tc.action)
		}
		if got != tc.from {
			t.Fatalf("ApplyAction(%s, %s) changed status to %s", tc.from, tc.action, got)
		}
	}
}

func TestActionForStatus(t *testing.T) {
	action, ok := stage.ActionForStatus(stage.StatusInProgress, stage.StatusBlocked)
	if !ok || action != stage.ActionBlock {
		t.Fatalf("ActionForStatus(in_progress, blocked) = %s, %v", action, ok)
	}
	if _, ok := stage.ActionForStatus(stage.StatusNotStarted, stage.StatusCompleted); ok {
		t.Fatal("expected no direct edge from not_started to completed")
	}
	if _, ok := stage.ActionForStatus(stage.StatusCompleted, stage.StatusCompleted); ok {
		t.Fatal("expected no self edge")
	}
}

func TestStatusDisplay(t *testing.T) {
	cases := map[stage.Status]string{
		stage.StatusNotStarted: "Not Started",
		stage.StatusInProgress: "In Progress",
		stage.StatusBlocked:    "Blocked",
		stage.StatusCompleted:  "Completed",
	}
	for status, expected := range cases {
		if got := status.Display(); got != expected {
			t.Fatalf("Display(%s) = %q, want %q", status, got, expected)
		}
	}
}

func TestParseStatusAndAction(t *testing.T) {
	if status, ok := stage.ParseStatus(" In_Progress "); !ok || status != stage.StatusInProgress {
		t.Fatalf("ParseStatus = %s, %v", status, ok)
	}
	if _, ok := stage.ParseStatus("paused"); ok {
		t.Fatal("expected unknown status to fail parsing")
	}
	if action, ok := stage.ParseAction("BLOCK"); !ok || action != stage.ActionBlock {
		t.Fatalf("ParseAction = %s, %v", action, ok)
	}
	if _, ok := stage.ParseAction("skip"); ok {
		t.Fatal("expected unknown action to fail parsing")
	}
}
