package stage

import (
	"fmt"
	"strings"
)

// Key identifies one stage of the production pipeline.
type Key string

const (
	KeyDraft               Key = "draft"
	KeyPublishing          Key = "publishing"
	KeyLabelRecording      Key = "label_recording"
	KeyMarketingAssets     Key = "marketing_assets"
	KeyLabelReview         Key = "label_review"
	KeyReadyForDigital     Key = "ready_for_digital"
	KeyDigitalDistribution Key = "digital_distribution"
	KeyReleased            Key = "released"
	KeyArchived            Key = "archived"
)

// Definition describes a catalog entry for a single stage.
type Definition struct {
	Key           Key
	Label         string
	Description   string
	EstimatedDays int
}

// sequence is the linear pipeline order. Archived is deliberately absent: it
// is reachable from any stage but has no neighbours.
var sequence = []Key{
	KeyDraft,
	KeyPublishing,
	KeyLabelRecording,
	KeyMarketingAssets,
	KeyLabelReview,
	KeyReadyForDigital,
	KeyDigitalDistribution,
	KeyReleased,
}

var definitions = map[Key]Definition{
	KeyDraft:               {Key: KeyDraft, Label: "Draft", Description: "Songwriting and demo work", EstimatedDays: 14},
	KeyPublishing:          {Key: KeyPublishing, Label: "Publishing", Description: "Split agreements and work registration", EstimatedDays: 7},
	KeyLabelRecording:      {Key: KeyLabelRecording, Label: "Label Recording", Description: "Master recording under the label", EstimatedDays: 21},
	KeyMarketingAssets:     {Key: KeyMarketingAssets, Label: "Marketing Assets", Description: "Artwork, video, and promotional assets", EstimatedDays: 10},
	KeyLabelReview:         {Key: KeyLabelReview, Label: "Label Review", Description: "Internal review and release approval", EstimatedDays: 5},
	KeyReadyForDigital:     {Key: KeyReadyForDigital, Label: "Ready for Digital", Description: "Release assembled for digital delivery", EstimatedDays: 3},
	KeyDigitalDistribution: {Key: KeyDigitalDistribution, Label: "Digital Distribution", Description: "Delivery to digital service providers", EstimatedDays: 7},
	KeyReleased:            {Key: KeyReleased, Label: "Released", Description: "Live on digital service providers", EstimatedDays: 0},
	KeyArchived:            {Key: KeyArchived, Label: "Archived", Description: "Removed from the active pipeline", EstimatedDays: 0},
}

var sequenceIndex = func() map[Key]int {
	idx := make(map[Key]int, len(sequence))
	for i, key := range sequence {
		idx[key] = i
	}
	return idx
}()

// Sequence returns the ordered pipeline stages, excluding archived.
func Sequence() []Key {
	cp := make([]Key, len(sequence))
	copy(cp, sequence)
	return cp
}

// Definitions returns every catalog entry in pipeline order, archived last.
func Definitions() []Definition {
	out := make([]Definition, 0, len(sequence)+1)
	for _, key := range sequence {
		out = append(out, definitions[key])
	}
	out = append(out, definitions[KeyArchived])
	return out
}

// Definition returns the catalog entry for a stage. Unknown keys are a
// programmer error and panic rather than being guarded at runtime.
func GetDefinition(key Key) Definition {
	def, ok := definitions[key]
	if !ok {
		panic(fmt.Sprintf("stage: unknown key %q", key))
	}
	return def
}

// Lookup returns the catalog entry for a stage when the key is known. Use it
// for values read back from storage or the wire.
func Lookup(key Key) (Definition, bool) {
	def, ok := definitions[key]
	return def, ok
}

// Next returns the stage following key in the pipeline, or "" at the end and
// for archived.
func Next(key Key) Key {
	idx, ok := sequenceIndex[key]
	if !ok || idx == len(sequence)-1 {
		return ""
	}
	return sequence[idx+1]
}

// Previous returns the stage preceding key in the pipeline, or "" at the
// start and for archived.
func Previous(key Key) Key {
	idx, ok := sequenceIndex[key]
	if !ok || idx == 0 {
		return ""
	}
	return sequence[idx-1]
}

// Adjacent reports whether target is one pipeline step away from current in
// either direction.
func Adjacent(current, target Key) bool {
	return target != "" && (Next(current) == target || Previous(current) == target)
}

// ParseKey converts a string into a known stage key.
func ParseKey(value string) (Key, bool) {
	normalized := Key(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := definitions[normalized]
	return normalized, ok
}
