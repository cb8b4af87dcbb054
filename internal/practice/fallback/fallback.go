package fallback

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/yungbote/practicecoach-backend/internal/domain/practice"
	"github.com/yungbote/practicecoach-backend/internal/practice/catalog"
	"github.com/yungbote/practicecoach-backend/internal/practice/normalize"
	"github.com/yungbote/practicecoach-backend/internal/practice/summary"
)

const (
	warmupDuration       = 5
	repertoireDuration   = 15
	newPieceDuration     = 15
	techniqueDuration    = 10
	listeningDuration    = 8
	goalRepertoireLength = 10

	maxRepertoirePieces = 2
	maxSections         = 3
	maxFocusAreas       = 2
	targetActivities    = 4
)

var genericCategories = []practice.ExerciseCategory{
	practice.CategoryScales,
	practice.CategoryArpeggios,
	practice.CategoryFingerIndependence,
	practice.CategorySightReading,
}

var warmupSuggestions = []string{
	"Hanon exercises #1-5",
	"C major scale, 2 octaves, hands together",
	"Simple chord progressions (I-IV-V-I)",
}

var repertoireSuggestions = []string{
	"Play through once at performance tempo",
	"Focus on previously difficult sections",
	"Practice with expression and dynamics",
	"Record yourself and listen back",
	"Practice performing (imagine an audience)",
}

var listeningSuggestions = []string{
	"Use musictheory.net trainer",
	"Practice with teoria.com exercises",
	"Play intervals/chords on piano and identify",
	"Use ear training app for 5-10 minutes",
}

// Generator assembles a session locally when the remote service is
// unavailable. Only exercise selection is random.
type Generator struct {
	catalog *catalog.Catalog
	now     func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

type Option func(*Generator)

func WithRand(r *rand.Rand) Option {
	return func(g *Generator) { g.rng = r }
}

func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

func New(cat *catalog.Catalog, opts ...Option) *Generator {
	g := &Generator{
		catalog: cat,
		now:     time.Now,
		rng:     rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed)),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Generate returns a warm-up followed by goal or repertoire activities,
// rescaled to sessionLength. practice.ErrFallbackExhausted is returned when
// the catalog is unusable. When only the warm-up could be assembled the
// list is still returned, alongside practice.ErrNothingToScale.
func (g *Generator) Generate(goals []practice.Goal, repertoire []practice.RepertoirePiece, sessionLength int) ([]practice.Activity, error) {
	if g == nil || g.catalog.Len() == 0 {
		return nil, practice.ErrFallbackExhausted
	}
	now := g.now()
	ids := idSource{prefix: fmt.Sprintf("activity-%d", now.UnixMilli())}

	acts := []practice.Activity{warmup(ids.next("warmup"))}
	if len(goals) == 0 {
		acts = append(acts, g.withoutGoals(ids, repertoire, now)...)
	} else {
		for gi, goal := range goals {
			acts = append(acts, forGoal(ids, gi, goal)...)
		}
	}

	out, err := normalize.Durations(acts, sessionLength)
	if err != nil && !errors.Is(err, practice.ErrNothingToScale) {
		return nil, err
	}
	return out, err
}

func warmup(id string) practice.Activity {
	return practice.Activity{
		ID:          id,
		Kind:        practice.KindWarmup,
		Title:       "Warm Up",
		Description: "Finger exercises and stretches",
		Duration:    warmupDuration,
		Suggestions: clone(warmupSuggestions),
	}
}

func (g *Generator) withoutGoals(ids idSource, repertoire []practice.RepertoirePiece, now time.Time) []practice.Activity {
	var out []practice.Activity
	ordered := summary.OrderRepertoire(repertoire, now)
	for i, p := range ordered[:min(maxRepertoirePieces, len(ordered))] {
		out = append(out, practice.Activity{
			ID:            ids.next(fmt.Sprintf("repertoire-%d", i)),
			Kind:          practice.KindRepertoire,
			SourcePieceID: p.ID,
			Title:         p.Name,
			Description:   "Review " + p.Name,
			Duration:      repertoireDuration,
			Suggestions:   clone(repertoireSuggestions),
		})
	}

	slots := max(0, targetActivities-len(out))
	for i, cat := range genericCategories[:min(slots, len(genericCategories))] {
		ex, ok := g.pick(cat)
		if !ok {
			continue
		}
		out = append(out, ex.ToActivity(ids.next(fmt.Sprintf("exercise-%d", i))))
	}
	return out
}

func (g *Generator) pick(cat practice.ExerciseCategory) (practice.Exercise, bool) {
	pool := g.catalog.ByCategory(cat)
	if len(pool) == 0 {
		return practice.Exercise{}, false
	}
	g.mu.Lock()
	i := g.rng.IntN(len(pool))
	g.mu.Unlock()
	return pool[i], true
}

func forGoal(ids idSource, gi int, goal practice.Goal) []practice.Activity {
	var out []practice.Activity
	switch v := goal.(type) {
	case practice.NewPieceGoal:
		sections := v.Sections
		if sections <= 0 {
			sections = 1
		}
		for i := 0; i < min(sections, maxSections); i++ {
			label := string(rune('A' + i))
			out = append(out, practice.Activity{
				ID:           ids.next(fmt.Sprintf("goal%d-section-%d", gi, i)),
				Kind:         practice.KindNewPiece,
				SourceGoalID: v.GoalID(),
				Title:        fmt.Sprintf("%s - Section %s", v.Name, label),
				Description:  "Work on Section " + label,
				Duration:     newPieceDuration,
				Suggestions: []string{
					"Practice left hand alone in Section " + label,
					"Practice right hand alone in Section " + label,
					"Hands together slowly in Section " + label,
					"Focus on difficult measures in Section " + label,
					"Work on tempo transitions in Section " + label,
					"Practice with metronome, gradually increasing speed",
				},
			})
		}
	case practice.TechniqueGoal:
		for i, focus := range v.Focus[:min(maxFocusAreas, len(v.Focus))] {
			out = append(out, practice.Activity{
				ID:           ids.next(fmt.Sprintf("goal%d-%d", gi, i)),
				Kind:         practice.KindTechnique,
				SourceGoalID: v.GoalID(),
				Title:        focus,
				Description:  "Practice " + strings.ToLower(focus),
				Duration:     techniqueDuration,
				Suggestions:  TechniqueSuggestions(focus),
			})
		}
	case practice.ListeningGoal:
		for i, skill := range v.Skills[:min(maxFocusAreas, len(v.Skills))] {
			out = append(out, practice.Activity{
				ID:           ids.next(fmt.Sprintf("goal%d-%d", gi, i)),
				Kind:         practice.KindListening,
				SourceGoalID: v.GoalID(),
				Title:        skill,
				Description:  "Practice " + strings.ToLower(skill),
				Duration:     listeningDuration,
				Suggestions:  clone(listeningSuggestions),
			})
		}
	case practice.RepertoireGoal:
		for i, piece := range v.Pieces[:min(maxRepertoirePieces, len(v.Pieces))] {
			out = append(out, practice.Activity{
				ID:           ids.next(fmt.Sprintf("goal%d-%d", gi, i)),
				Kind:         practice.KindRepertoire,
				SourceGoalID: v.GoalID(),
				Title:        piece,
				Description:  "Maintain " + piece,
				Duration:     goalRepertoireLength,
				Suggestions:  clone(repertoireSuggestions),
			})
		}
	}
	return out
}

var techniqueSuggestions = map[string][]string{
	"Scales": {
		"C major scale, all octaves",
		"A minor scale (natural, harmonic, melodic)",
		"Major scales with 1-2 sharps/flats",
		"Scale in contrary motion",
	},
	"Arpeggios": {
		"Major arpeggios (C, G, F)",
		"Minor arpeggios (A, D, E)",
		"Dominant 7th arpeggios",
		"Broken chords in various inversions",
	},
	"Sight Reading": {
		"Read new piece at easy level",
		"Practice 5 new short pieces",
		"Sight read hymns or simple songs",
		"Read one hand at a time first",
	},
	"Hand Independence": {
		"Contrary motion exercises",
		"Different rhythms each hand",
		"Hanon exercises focusing on evenness",
		"Play melody with one hand, chords with other",
	},
	"Fingering": {
		"Practice problematic passages with marked fingering",
		"Exercises for finger strength (Hanon)",
		"Practice thumb-under technique",
		"Slow practice with perfect fingering",
	},
	"Dynamics": {
		"Practice crescendo/diminuendo",
		"Contrast forte and piano sections",
		"Control soft playing (pp)",
		"Practice sudden dynamic changes",
	},
	"Rhythm": {
		"Practice with metronome",
		"Clap complex rhythms",
		"Practice dotted rhythms",
		"Work on syncopation",
	},
}

// TechniqueSuggestions looks up the practice ideas for a focus area, with a
// generic set for unknown foci.
func TechniqueSuggestions(focus string) []string {
	if s, ok := techniqueSuggestions[focus]; ok {
		return clone(s)
	}
	return []string{
		fmt.Sprintf("Practice %s fundamentals", focus),
		fmt.Sprintf("Work on %s technique", focus),
		fmt.Sprintf("Focus on improving %s", focus),
	}
}

type idSource struct{ prefix string }

func (s idSource) next(suffix string) string { return s.prefix + "-" + suffix }

func clone(in []string) []string { return append([]string(nil), in...) }
