package normalize

import (
	"math"

	"github.com/yungbote/practicecoach-backend/internal/domain/practice"
)

// Durations rescales every activity after the first so the list sums to
// roughly target minutes. The first activity (the warm-up) keeps its
// duration. Rounding drift is accepted, but no duration drops below one
// minute.
//
// When nothing but the warm-up carries time the scale factor is undefined:
// the input is returned unchanged together with practice.ErrNothingToScale.
// The returned slice is always a fresh copy.
func Durations(acts []practice.Activity, target int) ([]practice.Activity, error) {
	out := practice.CloneActivities(acts)
	if len(out) == 0 {
		return out, practice.ErrNothingToScale
	}
	warmup := out[0].Duration
	total := practice.TotalDuration(out)
	if len(out) == 1 || total-warmup <= 0 {
		return out, practice.ErrNothingToScale
	}

	factor := float64(target-warmup) / float64(total-warmup)
	for i := 1; i < len(out); i++ {
		d := int(math.Round(float64(out[i].Duration) * factor))
		out[i].Duration = max(1, d)
	}
	return out, nil
}
