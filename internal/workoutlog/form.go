// Package workoutlog turns a routine into an editable set-by-set log and validates the
// logged values into a workout create payload.
package workoutlog

import (
	"fmt"
	"strconv"

	"github.com/2beens/gymlog/internal/routines"
)

const defaultReps = 10

// SetForm holds one set as typed by the user. Numeric fields stay strings until submission.
type SetForm struct {
	Weight      string             `json:"weight"`
	Reps        string             `json:"reps"`
	Technique   routines.Technique `json:"technique"`
	RestSeconds string             `json:"restSeconds"`
}

// ExerciseForm is the log of one routine entry. Defaults seeds sets added to an empty list.
type ExerciseForm struct {
	ExerciseID   int       `json:"exerciseId"`
	ExerciseName string    `json:"exerciseName"`
	TargetLabel  string    `json:"targetLabel,omitempty"`
	Defaults     SetForm   `json:"defaults"`
	Sets         []SetForm `json:"sets"`
}

type LogForm struct {
	RoutineID   int            `json:"routineId"`
	RoutineName string         `json:"routineName"`
	Exercises   []ExerciseForm `json:"exercises"`
}

// TotalSets counts the sets across all exercises.
func (f LogForm) TotalSets() int {
	total := 0
	for _, e := range f.Exercises {
		total += len(e.Sets)
	}
	return total
}

func (f LogForm) clone() LogForm {
	c := f
	c.Exercises = make([]ExerciseForm, len(f.Exercises))
	for i, e := range f.Exercises {
		c.Exercises[i] = e
		c.Exercises[i].Sets = append([]SetForm(nil), e.Sets...)
	}
	return c
}

// TargetLabel renders the rep range of a routine entry, empty when there is none.
func TargetLabel(repRangeMin, repRangeMax *int) string {
	switch {
	case repRangeMin != nil && repRangeMax != nil:
		if *repRangeMin == *repRangeMax {
			return fmt.Sprintf("%d repeticiones", *repRangeMin)
		}
		return fmt.Sprintf("%d–%d repeticiones", *repRangeMin, *repRangeMax)
	case repRangeMin != nil:
		return fmt.Sprintf("≥%d", *repRangeMin)
	case repRangeMax != nil:
		return fmt.Sprintf("≤%d", *repRangeMax)
	default:
		return ""
	}
}

func entryDefaults(entry routines.RoutineExercise) SetForm {
	reps := defaultReps
	if entry.RepRangeMin != nil {
		reps = *entry.RepRangeMin
	} else if entry.RepRangeMax != nil {
		reps = *entry.RepRangeMax
	}

	defaults := SetForm{
		Reps:      strconv.Itoa(reps),
		Technique: entry.Technique,
	}
	if entry.RestSeconds != nil {
		defaults.RestSeconds = strconv.Itoa(*entry.RestSeconds)
	}
	return defaults
}

// Materialize builds the initial log of a routine: one exercise form per entry, in routine
// order, each pre-seeded with exactly the prescribed number of sets.
func Materialize(routine routines.Routine) LogForm {
	form := LogForm{
		RoutineID:   routine.ID,
		RoutineName: routine.Name,
		Exercises:   make([]ExerciseForm, 0, len(routine.Exercises)),
	}

	for _, entry := range routine.Exercises {
		defaults := entryDefaults(entry)
		sets := make([]SetForm, entry.Sets)
		for i := range sets {
			sets[i] = defaults
		}
		form.Exercises = append(form.Exercises, ExerciseForm{
			ExerciseID:   entry.ExerciseID,
			ExerciseName: entry.ExerciseName,
			TargetLabel:  TargetLabel(entry.RepRangeMin, entry.RepRangeMax),
			Defaults:     defaults,
			Sets:         sets,
		})
	}

	return form
}
