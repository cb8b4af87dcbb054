package sessiongen

import (
	"fmt"
	"math"
	"strings"

	"github.com/yungbote/practicecoach-backend/internal/domain/practice"
)

const systemPrompt = "You are a piano practice coach that designs focused, realistic practice sessions. You answer with JSON only."

// ActivityRange is the activity count the model is asked for: roughly one
// activity per 15 minutes at the low end and one per 6 at the high end.
func ActivityRange(sessionLength int) (lo, hi int) {
	lo = int(math.Round(float64(sessionLength) / 15))
	hi = int(math.Round(float64(sessionLength) / 6))
	if lo < 1 {
		lo = 1
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// BuildPrompt renders the user turn for one generation request.
func BuildPrompt(skillSummary string, sessionLength int) string {
	lo, hi := ActivityRange(sessionLength)
	kinds := practice.ActivityKinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}

	var b strings.Builder
	b.WriteString("Create a personalized piano practice session for this student.\n\n")
	b.WriteString("User Profile:\n")
	b.WriteString(strings.TrimSpace(skillSummary))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Session Length: %d minutes\n\n", sessionLength)
	fmt.Fprintf(&b, "Plan %d-%d activities. Each activity needs:\n", lo, hi)
	b.WriteString("- a short title\n")
	b.WriteString("- a one or two sentence description of what to do\n")
	fmt.Fprintf(&b, "- a duration in whole minutes; durations must add up to exactly %d\n", sessionLength)
	fmt.Fprintf(&b, "- a \"type\", one of: %s\n", strings.Join(names, ", "))
	b.WriteString("- 2-3 concrete practice suggestions\n\n")
	b.WriteString("IMPORTANT: if the profile lists repertoire that has not been reviewed recently, include a repertoire activity for it before anything else from the repertoire.\n\n")
	b.WriteString("Format the response as a JSON array like this:\n")
	b.WriteString(`[
  {
    "title": "Warm Up",
    "description": "Loosen the hands with slow five-finger patterns.",
    "duration": 5,
    "type": "warmup",
    "suggestions": ["Keep the wrist relaxed", "Play hands separately first"]
  }
]`)
	b.WriteString("\n\nImportant:\n")
	b.WriteString("- Start with a warmup activity\n")
	b.WriteString("- Match the difficulty to the profile\n")
	b.WriteString("- Return ONLY the JSON array, with no extra text\n")
	return b.String()
}
