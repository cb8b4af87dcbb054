package practice

import "time"

type GoalType string

const (
	GoalNewPiece   GoalType = "newPiece"
	GoalTechnique  GoalType = "technique"
	GoalListening  GoalType = "listening"
	GoalRepertoire GoalType = "repertoire"
)

// Goal is a closed sum type; only the four variants in this package
// implement it.
type Goal interface {
	GoalID() string
	Type() GoalType
	sealedGoal()
}

type GoalMeta struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (m GoalMeta) GoalID() string { return m.ID }

type NewPieceGoal struct {
	GoalMeta
	Name       string `json:"name"`
	PieceType  string `json:"pieceType,omitempty"` // traditional | leadSheet
	Sections   int    `json:"sections,omitempty"`
	Challenges string `json:"challenges,omitempty"`
}

type TechniqueGoal struct {
	GoalMeta
	Focus   []string `json:"focus"`
	Details string   `json:"details,omitempty"`
}

type ListeningGoal struct {
	GoalMeta
	Skills  []string `json:"skills"`
	Details string   `json:"details,omitempty"`
}

type RepertoireGoal struct {
	GoalMeta
	Pieces []string `json:"pieces"`
}

func (NewPieceGoal) Type() GoalType   { return GoalNewPiece }
func (TechniqueGoal) Type() GoalType  { return GoalTechnique }
func (ListeningGoal) Type() GoalType  { return GoalListening }
func (RepertoireGoal) Type() GoalType { return GoalRepertoire }

func (NewPieceGoal) sealedGoal()   {}
func (TechniqueGoal) sealedGoal()  {}
func (ListeningGoal) sealedGoal()  {}
func (RepertoireGoal) sealedGoal() {}

// PracticeGoalType is the user's overall objective, distinct from the
// per-item goals above.
type PracticeGoalType string

const (
	PracticeGoalPerformance   PracticeGoalType = "performance"
	PracticeGoalSpecificPiece PracticeGoalType = "specificPiece"
	PracticeGoalExam          PracticeGoalType = "exam"
	PracticeGoalSightReading  PracticeGoalType = "sightReading"
	PracticeGoalImprovisation PracticeGoalType = "improvisation"
	PracticeGoalEarTraining   PracticeGoalType = "earTrainingGoal"
	PracticeGoalTechnique     PracticeGoalType = "technique"
	PracticeGoalGeneral       PracticeGoalType = "general"
	PracticeGoalOther         PracticeGoalType = "other"
)

var practiceGoalLabels = map[PracticeGoalType]string{
	PracticeGoalPerformance:   "Performance/Recital",
	PracticeGoalSpecificPiece: "Learning a Specific Piece",
	PracticeGoalExam:          "Exam/Audition",
	PracticeGoalSightReading:  "Improve Sight-Reading",
	PracticeGoalImprovisation: "Build Improvisation Skills",
	PracticeGoalEarTraining:   "Ear Training",
	PracticeGoalTechnique:     "Master Technique",
	PracticeGoalGeneral:       "General Improvement",
	PracticeGoalOther:         "Other",
}

func (t PracticeGoalType) Label() string {
	if l, ok := practiceGoalLabels[t]; ok {
		return l
	}
	return string(t)
}

type PracticeGoal struct {
	ID              string           `json:"id"`
	UserID          string           `json:"userId"`
	Title           string           `json:"title"`
	GoalType        PracticeGoalType `json:"goalType"`
	SpecificDetails string           `json:"specificDetails,omitempty"`
	StartDate       time.Time        `json:"startDate"`
	EndDate         time.Time        `json:"endDate"`
	Status          string           `json:"status"` // active | completed | abandoned
}
