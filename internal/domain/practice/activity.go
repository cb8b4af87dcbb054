package practice

import (
	"encoding/json"
	"fmt"
	"strings"
)

type ActivityKind string

const (
	KindWarmup     ActivityKind = "warmup"
	KindNewPiece   ActivityKind = "newPiece"
	KindTechnique  ActivityKind = "technique"
	KindListening  ActivityKind = "listening"
	KindRepertoire ActivityKind = "repertoire"
	KindExercise   ActivityKind = "exercise"
)

var activityKinds = []ActivityKind{KindWarmup, KindNewPiece, KindTechnique, KindListening, KindRepertoire, KindExercise}

func (k ActivityKind) Valid() bool {
	for _, v := range activityKinds {
		if k == v {
			return true
		}
	}
	return false
}

func ActivityKinds() []ActivityKind {
	out := make([]ActivityKind, len(activityKinds))
	copy(out, activityKinds)
	return out
}

// Activity is one timed practice item. Source* fields are weak
// back-references used for lookup only.
type Activity struct {
	ID               string       `json:"id"`
	Kind             ActivityKind `json:"kind"`
	SourceExerciseID string       `json:"sourceExerciseId,omitempty"`
	SourcePieceID    string       `json:"sourcePieceId,omitempty"`
	SourceGoalID     string       `json:"sourceGoalId,omitempty"`
	Title            string       `json:"title"`
	Description      string       `json:"description"`
	Duration         int          `json:"duration"`
	Suggestions      []string     `json:"suggestions"`
	Achieved         *bool        `json:"achieved,omitempty"`
}

// Clone returns a deep copy so drafts and sessions never share slices.
func (a Activity) Clone() Activity {
	out := a
	if a.Suggestions != nil {
		out.Suggestions = append([]string(nil), a.Suggestions...)
	}
	if a.Achieved != nil {
		v := *a.Achieved
		out.Achieved = &v
	}
	return out
}

func CloneActivities(in []Activity) []Activity {
	if in == nil {
		return nil
	}
	out := make([]Activity, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

func TotalDuration(acts []Activity) int {
	total := 0
	for _, a := range acts {
		total += a.Duration
	}
	return total
}

// Validate checks the per-activity invariants: known kind, a title and a
// positive duration.
func (a Activity) Validate(index int) error {
	if !a.Kind.Valid() {
		return &ValidationError{Index: index, Field: "kind", Reason: fmt.Sprintf("unknown kind %q", a.Kind)}
	}
	if strings.TrimSpace(a.Title) == "" {
		return &ValidationError{Index: index, Field: "title", Reason: "missing"}
	}
	if a.Duration <= 0 {
		return &ValidationError{Index: index, Field: "duration", Reason: fmt.Sprintf("must be positive, got %d", a.Duration)}
	}
	return nil
}

// ValidateActivities enforces the draft invariants: non-empty, valid
// activities, unique ids.
func ValidateActivities(acts []Activity) error {
	if len(acts) == 0 {
		return &ValidationError{Index: -1, Field: "activities", Reason: "empty"}
	}
	seen := make(map[string]struct{}, len(acts))
	for i, a := range acts {
		if err := a.Validate(i); err != nil {
			return err
		}
		if _, dup := seen[a.ID]; dup {
			return &ValidationError{Index: i, Field: "id", Reason: fmt.Sprintf("duplicate id %q", a.ID)}
		}
		seen[a.ID] = struct{}{}
	}
	return nil
}

// ValidateGenerated applies ValidateActivities plus the per-activity
// duration ceiling to a list produced by the remote generator. Fallback
// output is exempt: it is scaled to the whole session and may exceed it.
func ValidateGenerated(acts []Activity) error {
	if err := ValidateActivities(acts); err != nil {
		return err
	}
	for i, a := range acts {
		if a.Duration > MaxActivityDuration {
			return &ValidationError{Index: i, Field: "duration", Reason: fmt.Sprintf("exceeds %d minutes, got %d", MaxActivityDuration, a.Duration)}
		}
	}
	return nil
}

// MarshalActivities is the JSON form used by the session log and cache.
func MarshalActivities(acts []Activity) ([]byte, error) {
	if acts == nil {
		acts = []Activity{}
	}
	return json.Marshal(acts)
}
