package workouts

import (
	"math"
	"time"

	"github.com/2beens/gymlog/internal/routines"
)

// Upper bounds of the stored columns. Weight is NUMERIC(7,2), the rest are INTEGER.
const (
	MaxWeight  = 99999.99
	MaxReps    = math.MaxInt32
	MaxSeconds = math.MaxInt32
)

// NewWorkoutSet is one performed set as submitted by a client. SetNumber is 1-based and
// restarts for every exercise.
type NewWorkoutSet struct {
	ExerciseID   int                `json:"exerciseId"`
	ExerciseName string             `json:"exerciseName"`
	SetNumber    int                `json:"setNumber"`
	Weight       *float64           `json:"weight,omitempty"`
	Reps         int                `json:"reps"`
	Technique    routines.Technique `json:"technique"`
	RestSeconds  *int               `json:"restSeconds,omitempty"`
	CompletedAt  *time.Time         `json:"completedAt,omitempty"`
}

// NewWorkout is the create payload of a logged session. RoutineName is a snapshot of the
// routine name at logging time.
type NewWorkout struct {
	RoutineID       int             `json:"routineId"`
	RoutineName     string          `json:"routineName"`
	StartedAt       time.Time       `json:"startedAt"`
	CompletedAt     *time.Time      `json:"completedAt,omitempty"`
	DurationSeconds *int            `json:"durationSeconds,omitempty"`
	Notes           *string         `json:"notes,omitempty"`
	Sets            []NewWorkoutSet `json:"sets"`
}

type WorkoutSet struct {
	ID           int                `json:"id"`
	WorkoutID    int                `json:"workoutId"`
	ExerciseID   int                `json:"exerciseId"`
	ExerciseName string             `json:"exerciseName"`
	SetNumber    int                `json:"setNumber"`
	Weight       *float64           `json:"weight,omitempty"`
	Reps         int                `json:"reps"`
	Technique    routines.Technique `json:"technique"`
	RestSeconds  *int               `json:"restSeconds,omitempty"`
	CompletedAt  time.Time          `json:"completedAt"`
}

// Volume is weight times reps, zero when no weight was logged.
func (s WorkoutSet) Volume() float64 {
	if s.Weight == nil {
		return 0
	}
	return *s.Weight * float64(s.Reps)
}

type Workout struct {
	ID              int          `json:"id"`
	UserID          int          `json:"userId"`
	RoutineID       int          `json:"routineId"`
	RoutineName     string       `json:"routineName"`
	StartedAt       time.Time    `json:"startedAt"`
	CompletedAt     *time.Time   `json:"completedAt,omitempty"`
	DurationSeconds *int         `json:"durationSeconds,omitempty"`
	Notes           *string      `json:"notes,omitempty"`
	Sets            []WorkoutSet `json:"sets"`
	CreatedAt       time.Time    `json:"createdAt"`
}

type ListParams struct {
	Page int
	Size int
}

type ListResponse struct {
	Workouts []Workout `json:"workouts"`
	Total    int       `json:"total"`
}
