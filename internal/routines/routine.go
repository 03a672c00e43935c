package routines

import "time"

// Technique is the training method tag of a prescribed or performed set.
type Technique string

const (
	TechniqueNormal    Technique = "normal"
	TechniqueDropset   Technique = "dropset"
	TechniqueMyoReps   Technique = "myo-reps"
	TechniqueFailure   Technique = "failure"
	TechniqueRestPause Technique = "rest-pause"
)

var Techniques = []Technique{
	TechniqueNormal,
	TechniqueDropset,
	TechniqueMyoReps,
	TechniqueFailure,
	TechniqueRestPause,
}

func (t Technique) Valid() bool {
	for _, known := range Techniques {
		if t == known {
			return true
		}
	}
	return false
}

// RoutineExercise is one prescription of a routine. ExerciseName is a snapshot taken
// when the routine was saved, it is not updated when the catalog entry is renamed.
type RoutineExercise struct {
	ID           int       `json:"id"`
	ExerciseID   int       `json:"exerciseId"`
	ExerciseName string    `json:"exerciseName"`
	Position     int       `json:"position"`
	Sets         int       `json:"sets"`
	RepRangeMin  *int      `json:"repRangeMin,omitempty"`
	RepRangeMax  *int      `json:"repRangeMax,omitempty"`
	Technique    Technique `json:"technique"`
	RestSeconds  *int      `json:"restSeconds,omitempty"`
}

type Routine struct {
	ID          int               `json:"id"`
	UserID      int               `json:"userId"`
	Name        string            `json:"name"`
	Description *string           `json:"description,omitempty"`
	Exercises   []RoutineExercise `json:"exercises"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}
