package summary

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/yungbote/practicecoach-backend/internal/domain/practice"
)

const (
	day  = 24 * time.Hour
	week = 7 * day

	masteredBPM     = 120
	goodProgressBPM = 100
)

// Input is the read-only snapshot a brief is built from. Every field may be
// empty.
type Input struct {
	Goals        []practice.Goal
	PracticeGoal *practice.PracticeGoal
	Repertoire   []practice.RepertoirePiece
	ScaleSkills  []practice.ScaleSkill
	EarTraining  *practice.EarTrainingSkills
}

type RepertoireEntry struct {
	Name         string     `json:"name"`
	PieceID      string     `json:"pieceId,omitempty"`
	LastReviewed *time.Time `json:"lastReviewed,omitempty"`
	// DaysSinceReview is nil for a piece that was never reviewed.
	DaysSinceReview *int `json:"daysSinceReview,omitempty"`
}

type ScaleAnalysis struct {
	Overall string   `json:"overall"`
	Details []string `json:"details"`
}

type EarTrainingAnalysis struct {
	Intervals string `json:"intervals"`
	Chords    string `json:"chords"`
}

type Summary struct {
	GeneratedAt  time.Time              `json:"generatedAt"`
	PracticeGoal *practice.PracticeGoal `json:"practiceGoal,omitempty"`
	Goals        []practice.Goal        `json:"-"`
	Repertoire   []RepertoireEntry      `json:"repertoire"`
	ScaleSkills  ScaleAnalysis          `json:"scaleSkills"`
	EarTraining  EarTrainingAnalysis    `json:"earTraining"`
}

// Build is pure apart from now, which drives the days-since-review math.
func Build(in Input, now time.Time) Summary {
	ordered := OrderRepertoire(in.Repertoire, now)
	rep := make([]RepertoireEntry, 0, len(ordered))
	for _, p := range ordered {
		e := RepertoireEntry{Name: p.Name, PieceID: p.ID, LastReviewed: p.LastReviewed}
		if d, ok := daysSince(p, now); ok {
			e.DaysSinceReview = &d
		}
		rep = append(rep, e)
	}
	return Summary{
		GeneratedAt:  now,
		PracticeGoal: in.PracticeGoal,
		Goals:        in.Goals,
		Repertoire:   rep,
		ScaleSkills:  AnalyzeScaleSkills(in.ScaleSkills),
		EarTraining:  AnalyzeEarTraining(in.EarTraining),
	}
}

// Brief builds the summary and renders it in one step.
func Brief(in Input, now time.Time) string {
	return Build(in, now).Text()
}

// OrderRepertoire returns a copy of pieces ordered least recently reviewed
// first. Never-reviewed pieces lead; ties keep input order.
func OrderRepertoire(pieces []practice.RepertoirePiece, now time.Time) []practice.RepertoirePiece {
	out := make([]practice.RepertoirePiece, len(pieces))
	copy(out, pieces)
	sort.SliceStable(out, func(i, j int) bool {
		di, iok := daysSince(out[i], now)
		dj, jok := daysSince(out[j], now)
		switch {
		case !iok && !jok:
			return false
		case !iok:
			return true
		case !jok:
			return false
		default:
			return di > dj
		}
	})
	return out
}

func daysSince(p practice.RepertoirePiece, now time.Time) (int, bool) {
	if p.LastReviewed == nil || p.LastReviewed.IsZero() {
		return 0, false
	}
	return int(math.Floor(float64(now.Sub(*p.LastReviewed)) / float64(day))), true
}

func AnalyzeScaleSkills(skills []practice.ScaleSkill) ScaleAnalysis {
	if len(skills) == 0 {
		return ScaleAnalysis{Overall: "No scale skills data recorded yet", Details: []string{}}
	}

	techniques := []struct {
		label string
		bpm   func(practice.ScaleSkill) int
	}{
		{"scales", func(s practice.ScaleSkill) int { return s.Scales }},
		{"chords", func(s practice.ScaleSkill) int { return s.Chords }},
		{"arpeggios", func(s practice.ScaleSkill) int { return s.Arpeggios }},
	}

	keys := len(practice.Scales)
	details := []string{}
	populated := 0
	for _, tech := range techniques {
		var values []int
		for _, s := range skills {
			if v := tech.bpm(s); v > 0 {
				values = append(values, v)
			}
		}
		populated += len(values)
		if len(values) == 0 {
			continue
		}
		sum, lo, hi, mastered := 0, values[0], values[0], 0
		for _, v := range values {
			sum += v
			lo = min(lo, v)
			hi = max(hi, v)
			if v >= masteredBPM {
				mastered++
			}
		}
		avg := int(math.Round(float64(sum) / float64(len(values))))

		switch {
		case mastered*2 > keys:
			details = append(details, fmt.Sprintf("Has mastered %s for most keys (average %d BPM)", tech.label, avg))
		case avg >= goodProgressBPM:
			details = append(details, fmt.Sprintf("Working on %s with good progress (average %d BPM, range %d-%d)", tech.label, avg, lo, hi))
		case len(values)*2 >= keys:
			details = append(details, fmt.Sprintf("Developing %s across multiple keys (average %d BPM)", tech.label, avg))
		default:
			details = append(details, fmt.Sprintf("Beginning work on %s (%d keys practiced, %d-%d BPM)", tech.label, len(values), lo, hi))
		}
	}

	coverage := float64(populated) / float64(keys*len(techniques)) * 100
	var overall string
	switch {
	case coverage < 10:
		overall = "Just beginning scale work"
	case coverage < 30:
		overall = "Early stage of technical development"
	case coverage < 60:
		overall = "Intermediate technical skills"
	default:
		overall = "Advanced technical foundation"
	}
	return ScaleAnalysis{Overall: overall, Details: details}
}

func AnalyzeEarTraining(et *practice.EarTrainingSkills) EarTrainingAnalysis {
	if et == nil {
		return EarTrainingAnalysis{
			Intervals: "No interval recognition data yet",
			Chords:    "No chord recognition data yet",
		}
	}

	known := mastered(et.Intervals, practice.Intervals)
	total := len(practice.Intervals)
	var intervals string
	switch n := len(known); {
	case n == 0:
		intervals = "Just starting interval recognition"
	case n < 4:
		intervals = fmt.Sprintf("Can identify basic intervals (%d/%d)", n, total)
	case n < 8:
		intervals = fmt.Sprintf("Developing interval recognition (%d/%d mastered)", n, total)
	case n < total:
		var next []string
		for _, iv := range practice.Intervals {
			if _, ok := known[iv]; !ok {
				next = append(next, iv)
			}
			if len(next) == 2 {
				break
			}
		}
		intervals = fmt.Sprintf("Strong interval recognition (%d/%d), working on advanced intervals like %s", n, total, strings.Join(next, " and "))
	default:
		intervals = fmt.Sprintf("Mastered all %d intervals", total)
	}

	knownChords := mastered(et.Chords, practice.ChordQualities)
	totalChords := len(practice.ChordQualities)
	var chords string
	switch n := len(knownChords); {
	case n == 0:
		chords = "Just starting chord recognition"
	case n < 4:
		chords = fmt.Sprintf("Can identify basic chords (%d/%d)", n, totalChords)
	case n < 8:
		chords = fmt.Sprintf("Developing chord recognition (%d/%d mastered)", n, totalChords)
	case n < totalChords:
		chords = fmt.Sprintf("Strong chord recognition (%d/%d), working on advanced chords", n, totalChords)
	default:
		chords = fmt.Sprintf("Mastered all %d chord types", totalChords)
	}

	return EarTrainingAnalysis{Intervals: intervals, Chords: chords}
}

// mastered dedupes entries and keeps only names from the reference list.
func mastered(entries, reference []string) map[string]struct{} {
	ref := make(map[string]struct{}, len(reference))
	for _, r := range reference {
		ref[r] = struct{}{}
	}
	out := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if _, ok := ref[e]; ok {
			out[e] = struct{}{}
		}
	}
	return out
}
