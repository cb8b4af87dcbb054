package fallback

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/yungbote/practicecoach-backend/internal/domain/practice"
	"github.com/yungbote/practicecoach-backend/internal/practice/catalog"
)

var fixedNow = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func newGenerator(t *testing.T) *Generator {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return New(cat,
		WithRand(rand.New(rand.NewPCG(1, 2))),
		WithClock(func() time.Time { return fixedNow }),
	)
}

func assertWarmupFirst(t *testing.T, acts []practice.Activity) {
	t.Helper()
	if len(acts) == 0 {
		t.Fatalf("no activities")
	}
	w := acts[0]
	if w.Kind != practice.KindWarmup || w.Title != "Warm Up" || w.Duration != 5 || len(w.Suggestions) != 3 {
		t.Fatalf("first activity is not the fixed warm-up: %+v", w)
	}
	if err := practice.ValidateActivities(acts); err != nil {
		t.Fatalf("invalid activities: %v", err)
	}
}

func TestGenerateNoGoalsFillsCategories(t *testing.T) {
	g := newGenerator(t)
	acts, err := g.Generate(nil, nil, 45)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	assertWarmupFirst(t, acts)
	if len(acts) != 5 {
		t.Fatalf("len=%d, want 5", len(acts))
	}
	cat, _ := catalog.Default()
	wantCats := []practice.ExerciseCategory{
		practice.CategoryScales, practice.CategoryArpeggios,
		practice.CategoryFingerIndependence, practice.CategorySightReading,
	}
	for i, a := range acts[1:] {
		ex, ok := cat.ByID(a.SourceExerciseID)
		if !ok || ex.Category != wantCats[i] {
			t.Fatalf("activity %d from %q, want category %s", i+1, a.SourceExerciseID, wantCats[i])
		}
		if len(a.Suggestions) != 0 {
			t.Fatalf("exercise activity has suggestions: %v", a.Suggestions)
		}
	}
}

func TestGenerateNoGoalsPrefersStaleRepertoire(t *testing.T) {
	g := newGenerator(t)
	recent := fixedNow.Add(-24 * time.Hour)
	older := fixedNow.Add(-20 * 24 * time.Hour)
	rep := []practice.RepertoirePiece{
		{ID: "p1", Name: "Recent", LastReviewed: &recent},
		{ID: "p2", Name: "Never"},
		{ID: "p3", Name: "Older", LastReviewed: &older},
	}
	acts, err := g.Generate(nil, rep, 60)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	assertWarmupFirst(t, acts)
	if len(acts) != 5 {
		t.Fatalf("len=%d, want 5", len(acts))
	}
	if acts[1].SourcePieceID != "p2" || acts[2].SourcePieceID != "p3" {
		t.Fatalf("repertoire order %q,%q", acts[1].SourcePieceID, acts[2].SourcePieceID)
	}
	if acts[1].Description != "Review Never" || len(acts[1].Suggestions) != 5 {
		t.Fatalf("unexpected repertoire activity %+v", acts[1])
	}
}

func TestGenerateWithGoals(t *testing.T) {
	cases := []struct {
		name      string
		goal      practice.Goal
		wantKinds []practice.ActivityKind
		wantTitle string
	}{
		{
			name:      "new_piece_capped_at_three",
			goal:      practice.NewPieceGoal{GoalMeta: practice.GoalMeta{ID: "g1"}, Name: "Clair de Lune", Sections: 5},
			wantKinds: []practice.ActivityKind{practice.KindNewPiece, practice.KindNewPiece, practice.KindNewPiece},
			wantTitle: "Clair de Lune - Section A",
		},
		{
			name:      "new_piece_defaults_one_section",
			goal:      practice.NewPieceGoal{GoalMeta: practice.GoalMeta{ID: "g1"}, Name: "Prelude"},
			wantKinds: []practice.ActivityKind{practice.KindNewPiece},
			wantTitle: "Prelude - Section A",
		},
		{
			name:      "technique",
			goal:      practice.TechniqueGoal{GoalMeta: practice.GoalMeta{ID: "g2"}, Focus: []string{"Scales", "Pedaling", "Rhythm"}},
			wantKinds: []practice.ActivityKind{practice.KindTechnique, practice.KindTechnique},
			wantTitle: "Scales",
		},
		{
			name:      "listening",
			goal:      practice.ListeningGoal{GoalMeta: practice.GoalMeta{ID: "g3"}, Skills: []string{"Intervals"}},
			wantKinds: []practice.ActivityKind{practice.KindListening},
			wantTitle: "Intervals",
		},
		{
			name:      "repertoire",
			goal:      practice.RepertoireGoal{GoalMeta: practice.GoalMeta{ID: "g4"}, Pieces: []string{"Gymnopedie", "Minuet", "Waltz"}},
			wantKinds: []practice.ActivityKind{practice.KindRepertoire, practice.KindRepertoire},
			wantTitle: "Gymnopedie",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			acts, err := newGenerator(t).Generate([]practice.Goal{tc.goal}, nil, 60)
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			assertWarmupFirst(t, acts)
			if len(acts) < 2 {
				t.Fatalf("len=%d, want >= 2", len(acts))
			}
			if len(acts)-1 != len(tc.wantKinds) {
				t.Fatalf("got %d goal activities, want %d", len(acts)-1, len(tc.wantKinds))
			}
			for i, k := range tc.wantKinds {
				if acts[i+1].Kind != k || acts[i+1].SourceGoalID != tc.goal.GoalID() {
					t.Fatalf("activity %d=%+v", i+1, acts[i+1])
				}
			}
			if acts[1].Title != tc.wantTitle {
				t.Fatalf("title=%q, want %q", acts[1].Title, tc.wantTitle)
			}
		})
	}
}

func TestGenerateNormalizesToLength(t *testing.T) {
	goal := practice.TechniqueGoal{GoalMeta: practice.GoalMeta{ID: "g"}, Focus: []string{"Scales", "Rhythm"}}
	acts, err := newGenerator(t).Generate([]practice.Goal{goal}, nil, 45)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if acts[1].Duration != 20 || acts[2].Duration != 20 {
		t.Fatalf("durations %d,%d, want 20,20", acts[1].Duration, acts[2].Duration)
	}
}

func TestGenerateWarmupOnlyTripsGuard(t *testing.T) {
	goal := practice.TechniqueGoal{GoalMeta: practice.GoalMeta{ID: "g"}}
	acts, err := newGenerator(t).Generate([]practice.Goal{goal}, nil, 30)
	if !errors.Is(err, practice.ErrNothingToScale) {
		t.Fatalf("err=%v, want ErrNothingToScale", err)
	}
	if len(acts) != 1 || acts[0].Kind != practice.KindWarmup {
		t.Fatalf("acts=%+v", acts)
	}
}

func TestGenerateEmptyCatalog(t *testing.T) {
	empty, err := catalog.New(nil)
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	if _, err := New(empty).Generate(nil, nil, 30); !errors.Is(err, practice.ErrFallbackExhausted) {
		t.Fatalf("err=%v, want ErrFallbackExhausted", err)
	}
	if _, err := New(nil).Generate(nil, nil, 30); !errors.Is(err, practice.ErrFallbackExhausted) {
		t.Fatalf("nil catalog err=%v", err)
	}
}

func TestTechniqueSuggestions(t *testing.T) {
	if got := TechniqueSuggestions("Dynamics"); len(got) != 4 || got[0] != "Practice crescendo/diminuendo" {
		t.Fatalf("Dynamics=%v", got)
	}
	got := TechniqueSuggestions("Pedaling")
	if len(got) != 3 || got[0] != "Practice Pedaling fundamentals" {
		t.Fatalf("Pedaling=%v", got)
	}
}
