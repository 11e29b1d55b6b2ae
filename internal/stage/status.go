package stage

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Status is the sub-state of a single stage, independent of the song's
// current-stage pointer.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusBlocked    Status = "blocked"
	StatusCompleted  Status = "completed"
)

// Action drives the per-stage status machine.
type Action string

const (
	ActionStart    Action = "start"
	ActionComplete Action = "complete"
	ActionBlock    Action = "block"
	ActionResume   Action = "resume"
	ActionReopen   Action = "reopen"
)

var allStatuses = []Status{
	StatusNotStarted,
	StatusInProgress,
	StatusBlocked,
	StatusCompleted,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// actionTable enumerates every legal edge of the per-stage machine. A stage
// can only leave a status along one of these edges; everything else is
// rejected upstream as an invalid transition.
var actionTable = map[Status]map[Action]Status{
	StatusNotStarted: {
		ActionStart: StatusInProgress,
	},
	StatusInProgress: {
		ActionComplete: StatusCompleted,
		ActionBlock:    StatusBlocked,
	},
	StatusBlocked: {
		ActionResume: StatusInProgress,
	},
	StatusCompleted: {
		ActionReopen: StatusInProgress,
	},
}

// actionOrder keeps AvailableActions deterministic for display.
var actionOrder = []Action{ActionStart, ActionComplete, ActionBlock, ActionResume, ActionReopen}

var titleCaser = cases.Title(language.English)

// AllStatuses returns the known status values in lifecycle order.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// ParseAction converts a string into a known Action.
func ParseAction(value string) (Action, bool) {
	normalized := Action(strings.ToLower(strings.TrimSpace(value)))
	for _, action := range actionOrder {
		if action == normalized {
			return action, true
		}
	}
	return "", false
}

// AvailableActions returns the actions permitted from status. The set is
// closed: an empty result means no action applies.
func AvailableActions(status Status) []Action {
	edges, ok := actionTable[status]
	if !ok {
		return nil
	}
	out := make([]Action, 0, len(edges))
	for _, action := range actionOrder {
		if _, ok := edges[action]; ok {
			out = append(out, action)
		}
	}
	return out
}

// ApplyAction returns the status reached by taking action from status. The
// second return is false when the edge does not exist; callers surface that
// as an invalid status transition and leave the stage unchanged.
func ApplyAction(status Status, action Action) (Status, bool) {
	edges, ok := actionTable[status]
	if !ok {
		return status, false
	}
	next, ok := edges[action]
	if !ok {
		return status, false
	}
	return next, true
}

// ActionForStatus resolves the action that moves a stage from current to
// requested, when one exists. Used by API callers that submit a target
// status rather than an action name.
func ActionForStatus(current, requested Status) (Action, bool) {
	edges, ok := actionTable[current]
	if !ok {
		return "", false
	}
	for _, action := range actionOrder {
		if next, ok := edges[action]; ok && next == requested {
			return action, true
		}
	}
	return "", false
}

// Display renders a status value for humans, e.g. "in_progress" becomes
// "In Progress".
func (s Status) Display() string {
	return titleCaser.String(strings.ReplaceAll(string(s), "_", " "))
}
