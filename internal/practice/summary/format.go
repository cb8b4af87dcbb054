package summary

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/yungbote/practicecoach-backend/internal/domain/practice"
)

const dateLayout = "Jan 2, 2006"

// Text renders the summary as the natural-language brief sent to the
// generation service.
func (s Summary) Text() string {
	var b strings.Builder

	if g := s.PracticeGoal; g != nil {
		total := ceilWeeks(g.EndDate.Sub(g.StartDate))
		remaining := max(0, ceilWeeks(g.EndDate.Sub(s.GeneratedAt)))

		b.WriteString("Current Practice Goal:\n")
		if g.Title != "" {
			fmt.Fprintf(&b, "  Title: %s\n", g.Title)
		}
		fmt.Fprintf(&b, "  Type: %s\n", g.GoalType.Label())
		if d := strings.TrimSpace(g.SpecificDetails); d != "" {
			fmt.Fprintf(&b, "  Details: %s\n", d)
		}
		fmt.Fprintf(&b, "  Timeline: %d of %d weeks remaining\n", remaining, total)
		fmt.Fprintf(&b, "  Started: %s\n", g.StartDate.Format(dateLayout))
		fmt.Fprintf(&b, "  Target End: %s\n\n", g.EndDate.Format(dateLayout))
		b.WriteString("IMPORTANT: Weight your practice session recommendations to support this goal.\n\n")
	} else {
		b.WriteString("No specific practice goal set.\n\n")
	}

	if len(s.Goals) > 0 {
		b.WriteString("Active Goals:\n")
		for _, g := range s.Goals {
			fmt.Fprintf(&b, "- %s\n", describeGoal(g))
		}
		b.WriteString("\n")
	}

	if len(s.Repertoire) > 0 {
		b.WriteString("Repertoire (Learned Pieces):\n")
		for _, p := range s.Repertoire {
			if p.DaysSinceReview != nil {
				fmt.Fprintf(&b, "- %s (last reviewed %d days ago)\n", p.Name, *p.DaysSinceReview)
			} else {
				fmt.Fprintf(&b, "- %s (never reviewed)\n", p.Name)
			}
		}
		b.WriteString("\nNote: Prioritize pieces that haven't been reviewed recently to maintain the repertoire.\n\n")
	}

	b.WriteString("Technical Skills (Scales):\n")
	b.WriteString(s.ScaleSkills.Overall + "\n")
	for _, d := range s.ScaleSkills.Details {
		fmt.Fprintf(&b, "- %s\n", d)
	}
	b.WriteString("\n")

	b.WriteString("Ear Training:\n")
	fmt.Fprintf(&b, "- Intervals: %s\n", s.EarTraining.Intervals)
	fmt.Fprintf(&b, "- Chords: %s\n", s.EarTraining.Chords)

	return b.String()
}

func describeGoal(g practice.Goal) string {
	switch v := g.(type) {
	case practice.NewPieceGoal:
		out := "Learn new piece: " + v.Name
		if v.Sections > 0 {
			out += fmt.Sprintf(" (%d sections)", v.Sections)
		}
		if c := strings.TrimSpace(v.Challenges); c != "" {
			out += "; challenges: " + c
		}
		return out
	case practice.TechniqueGoal:
		out := "Technique focus: " + joinOr(v.Focus, "general technique")
		if d := strings.TrimSpace(v.Details); d != "" {
			out += "; " + d
		}
		return out
	case practice.ListeningGoal:
		out := "Listening skills: " + joinOr(v.Skills, "general listening")
		if d := strings.TrimSpace(v.Details); d != "" {
			out += "; " + d
		}
		return out
	case practice.RepertoireGoal:
		return "Maintain repertoire: " + joinOr(v.Pieces, "all pieces")
	default:
		return string(g.Type())
	}
}

func joinOr(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return strings.Join(items, ", ")
}

func ceilWeeks(d time.Duration) int {
	return int(math.Ceil(float64(d) / float64(week)))
}
