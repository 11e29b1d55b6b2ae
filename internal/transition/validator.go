// Package transition validates requested pipeline moves before they are
// committed.
//
// Validation is pure: callers hand in the song facts, the target stage, the
// current checklist, and whether the actor holds admin rights. The result is
// an itemized issue list plus a single can-proceed decision. Admin actors can
// proceed past any error-severity issue; this is the manual-correction escape
// hatch, so it deliberately covers domain prerequisites as well as the
// checklist gate.
package transition

import (
	"fmt"

	"stagehand/internal/checklist"
	"stagehand/internal/stage"
)

// Severity classifies a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a single validation finding. Issues are transient; they are
// surfaced to the caller and never persisted.
type Issue struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Facts are the read-only song attributes validation consumes.
type Facts struct {
	CurrentStage stage.Key
	HasWork      bool
	HasRecording bool
	HasRelease   bool
}

// Result is the outcome of validating a single transition request.
type Result struct {
	Issues     []Issue `json:"issues"`
	CanProceed bool    `json:"canProceed"`
}

// prerequisite is one row of the stage-entry rule table.
type prerequisite struct {
	satisfied func(Facts) bool
	message   string
}

var prerequisites = map[stage.Key]prerequisite{
	stage.KeyPublishing: {
		satisfied: func(f Facts) bool { return f.HasWork },
		message:   "Work must be created before moving to Publishing stage",
	},
	stage.KeyLabelRecording: {
		satisfied: func(f Facts) bool { return f.HasWork },
		message:   "Work must exist before recording",
	},
	stage.KeyMarketingAssets: {
		satisfied: func(f Facts) bool { return f.HasRecording },
		message:   "Recording must be created before marketing assets",
	},
	stage.KeyReadyForDigital: {
		satisfied: func(f Facts) bool { return f.HasRelease },
		message:   "Release must be created before digital distribution",
	},
}

// Validate evaluates a move to target against the stage-entry prerequisite
// table and the checklist gate.
func Validate(facts Facts, target stage.Key, items []checklist.Item, isAdmin bool) Result {
	var issues []Issue

	if rule, ok := prerequisites[target]; ok && !rule.satisfied(facts) {
		issues = append(issues, Issue{Severity: SeverityError, Message: rule.message})
	}

	if progress := checklist.Compute(items); progress.Percent < 100 {
		severity := SeverityError
		if isAdmin {
			severity = SeverityWarning
		}
		issues = append(issues, Issue{
			Severity: severity,
			Message:  fmt.Sprintf("Checklist is %d%% complete. Complete all items before proceeding.", progress.Percent),
		})
	}

	return Result{Issues: issues, CanProceed: isAdmin || !hasError(issues)}
}

func hasError(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}
