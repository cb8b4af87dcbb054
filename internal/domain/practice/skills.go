package practice

import "time"

type RepertoirePiece struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	Name         string     `json:"name"`
	AddedAt      time.Time  `json:"addedAt"`
	LastReviewed *time.Time `json:"lastReviewed,omitempty"`
}

// ScaleSkill holds the best recorded BPM per technique for one key. Zero
// means nothing recorded.
type ScaleSkill struct {
	Key       string `json:"key"`
	Scales    int    `json:"scales"`
	Chords    int    `json:"chords"`
	Arpeggios int    `json:"arpeggios"`
}

type EarTrainingSkills struct {
	Intervals []string `json:"intervals"`
	Chords    []string `json:"chords"`
}

type UserPreferences struct {
	DefaultSessionLength int `json:"defaultSessionLength"`
}

// All 24 major and minor keys.
var Scales = []string{
	"C Major", "G Major", "D Major", "A Major", "E Major", "B Major",
	"F♯ Major", "C♯ Major", "F Major", "B♭ Major", "E♭ Major", "A♭ Major",
	"A Minor", "E Minor", "B Minor", "F♯ Minor", "C♯ Minor", "G♯ Minor",
	"D♯ Minor", "A♯ Minor", "D Minor", "G Minor", "C Minor", "F Minor",
}

var Intervals = []string{
	"Minor 2nd", "Major 2nd", "Minor 3rd", "Major 3rd", "Perfect 4th", "Tritone",
	"Perfect 5th", "Minor 6th", "Major 6th", "Minor 7th", "Major 7th", "Octave",
}

var ChordQualities = []string{
	"Major Triad", "Minor Triad", "Diminished Triad", "Augmented Triad",
	"Major 7th", "Minor 7th", "Dominant 7th", "Minor 7th ♭5 (Half-Diminished)",
	"Diminished 7th", "Major 6th", "Minor 6th", "Suspended 2nd", "Suspended 4th",
}
