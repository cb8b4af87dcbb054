package practice

type ExerciseCategory string

const (
	CategoryFingerIndependence ExerciseCategory = "Finger Independence & Strength"
	CategoryScales             ExerciseCategory = "Scales"
	CategoryArpeggios          ExerciseCategory = "Arpeggios"
	CategoryChordWork          ExerciseCategory = "Chord Work"
	CategoryRhythm             ExerciseCategory = "Rhythm & Coordination"
	CategoryHandPosition       ExerciseCategory = "Hand Position & Technique"
	CategorySpeed              ExerciseCategory = "Speed Development"
	CategorySightReading       ExerciseCategory = "Sight Reading"
	CategoryEarTraining        ExerciseCategory = "Ear Training"
	CategoryAdvanced           ExerciseCategory = "Advanced Techniques"
	CategoryWarmup             ExerciseCategory = "Warm-up Exercises"
	CategoryExpression         ExerciseCategory = "Expression & Musicality"
	CategoryContemporary       ExerciseCategory = "Contemporary Techniques"
	CategoryMemory             ExerciseCategory = "Memory & Mental Practice"
)

var exerciseCategories = []ExerciseCategory{
	CategoryFingerIndependence, CategoryScales, CategoryArpeggios, CategoryChordWork,
	CategoryRhythm, CategoryHandPosition, CategorySpeed, CategorySightReading,
	CategoryEarTraining, CategoryAdvanced, CategoryWarmup, CategoryExpression,
	CategoryContemporary, CategoryMemory,
}

// ExerciseCategories returns the 14 fixed categories in display order.
func ExerciseCategories() []ExerciseCategory {
	out := make([]ExerciseCategory, len(exerciseCategories))
	copy(out, exerciseCategories)
	return out
}

func (c ExerciseCategory) Valid() bool {
	for _, v := range exerciseCategories {
		if c == v {
			return true
		}
	}
	return false
}

type Exercise struct {
	ID              string           `json:"id" yaml:"id"`
	Name            string           `json:"name" yaml:"name"`
	Category        ExerciseCategory `json:"category" yaml:"category"`
	Description     string           `json:"description" yaml:"description"`
	DefaultDuration int              `json:"defaultDuration" yaml:"default_duration"`
}

// ToActivity converts a catalog entry into an exercise activity at its
// default duration.
func (e Exercise) ToActivity(id string) Activity {
	return Activity{
		ID:               id,
		Kind:             KindExercise,
		SourceExerciseID: e.ID,
		Title:            e.Name,
		Description:      e.Description,
		Duration:         e.DefaultDuration,
		Suggestions:      []string{},
	}
}
