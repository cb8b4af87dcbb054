package sessiongen

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrNoJSONArray = errors.New("no JSON array in model output")

// Activity is one activity as the model produced it. Nothing beyond the
// JSON shape is checked here; the API validates what it receives.
type Activity struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Duration    *float64 `json:"duration,omitempty"`
	Kind        string   `json:"kind,omitempty"`
	Type        string   `json:"type,omitempty"`
	Suggestions []string `json:"suggestions"`
}

// ExtractActivities pulls the JSON array out of text, taking everything from
// the first '[' to the last ']', and stamps ids of the form
// activity-<unix ms>-<index>.
func ExtractActivities(text string, now time.Time) ([]Activity, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil, ErrNoJSONArray
	}
	var acts []Activity
	if err := json.Unmarshal([]byte(text[start:end+1]), &acts); err != nil {
		return nil, fmt.Errorf("parse activities: %w", err)
	}

	ms := now.UnixMilli()
	for i := range acts {
		acts[i].ID = fmt.Sprintf("activity-%d-%d", ms, i)
		if acts[i].Kind == "" {
			acts[i].Kind = strings.TrimSpace(acts[i].Type)
		}
		if acts[i].Suggestions == nil {
			acts[i].Suggestions = []string{}
		}
	}
	return acts, nil
}
