package workoutlog

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/2beens/gymlog/internal/routines"
	"github.com/2beens/gymlog/internal/workouts"
)

// LocalTimeLayout is the minute precision, offset free layout of the start and completion
// input fields.
const LocalTimeLayout = "2006-01-02T15:04"

// Submission holds the session level inputs of a log, as typed.
type Submission struct {
	StartedAt       string `json:"startedAt"`
	MarkCompleted   bool   `json:"markCompleted"`
	CompletedAt     string `json:"completedAt"`
	DurationMinutes string `json:"durationMinutes"`
	Notes           string `json:"notes"`
}

// FormatLocalTime renders t in the layout of the time input fields.
func FormatLocalTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(LocalTimeLayout)
}

// parseTime accepts the input field layout in loc, and RFC 3339 from API clients.
func parseTime(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if t, err := time.ParseInLocation(LocalTimeLayout, value, loc); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func parseNumber(value string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// completedBeforeStart is the single completion order rule.
func completedBeforeStart(startedAt, completedAt time.Time) bool {
	return completedAt.Before(startedAt)
}

func setLabel(exercise ExerciseForm, setNumber int) string {
	name := exercise.ExerciseName
	if name == "" {
		name = fmt.Sprintf("exercise %d", exercise.ExerciseID)
	}
	return fmt.Sprintf("%s, set %d", name, setNumber)
}

// BuildPayload validates a filled in log and assembles the workout create payload.
// Checks run in a fixed order and the first failure is returned as a *ValidationError.
// Neither the routine nor the form is modified.
func BuildPayload(routine *routines.Routine, form LogForm, sub Submission, loc *time.Location) (workouts.NewWorkout, error) {
	if loc == nil {
		loc = time.UTC
	}

	if routine == nil || routine.ID <= 0 {
		return workouts.NewWorkout{}, formError(KindMissingRoutine, "cannot identify the selected routine")
	}

	if strings.TrimSpace(sub.StartedAt) == "" {
		return workouts.NewWorkout{}, formError(KindInvalidStart, "the start time is required")
	}
	startedAt, ok := parseTime(sub.StartedAt, loc)
	if !ok {
		return workouts.NewWorkout{}, formError(KindInvalidStart, "the start time is not a valid date")
	}

	if len(form.Exercises) == 0 {
		return workouts.NewWorkout{}, formError(KindNoExercises, "the routine has no exercises to log")
	}

	var sets []workouts.NewWorkoutSet
	for exerciseIdx, exercise := range form.Exercises {
		for setIdx, set := range exercise.Sets {
			setNumber := setIdx + 1
			label := setLabel(exercise, setNumber)

			reps, ok := parseNumber(set.Reps)
			if !ok || reps < 1 {
				return workouts.NewWorkout{}, setError(KindInvalidReps, exerciseIdx, setIdx,
					label+": reps must be a number of at least 1")
			}
			if math.Round(reps) > workouts.MaxReps {
				return workouts.NewWorkout{}, setError(KindInvalidReps, exerciseIdx, setIdx,
					fmt.Sprintf("%s: reps cannot be more than %d", label, workouts.MaxReps))
			}

			var weight *float64
			if strings.TrimSpace(set.Weight) != "" {
				w, ok := parseNumber(set.Weight)
				if !ok || w < 0 {
					return workouts.NewWorkout{}, setError(KindInvalidWeight, exerciseIdx, setIdx,
						label+": weight must be a non-negative number")
				}
				if w > workouts.MaxWeight {
					return workouts.NewWorkout{}, setError(KindInvalidWeight, exerciseIdx, setIdx,
						fmt.Sprintf("%s: weight cannot be more than %.2f", label, workouts.MaxWeight))
				}
				weight = &w
			}

			var rest *int
			if strings.TrimSpace(set.RestSeconds) != "" {
				r, ok := parseNumber(set.RestSeconds)
				if !ok || r < 0 {
					return workouts.NewWorkout{}, setError(KindInvalidRest, exerciseIdx, setIdx,
						label+": rest time must be a non-negative number of seconds")
				}
				if math.Round(r) > workouts.MaxSeconds {
					return workouts.NewWorkout{}, setError(KindInvalidRest, exerciseIdx, setIdx,
						fmt.Sprintf("%s: rest time cannot be more than %d seconds", label, workouts.MaxSeconds))
				}
				rounded := int(math.Round(r))
				rest = &rounded
			}

			technique := set.Technique
			if technique == "" {
				technique = routines.TechniqueNormal
			}

			sets = append(sets, workouts.NewWorkoutSet{
				ExerciseID:   exercise.ExerciseID,
				ExerciseName: exercise.ExerciseName,
				SetNumber:    setNumber,
				Weight:       weight,
				Reps:         int(math.Round(reps)),
				Technique:    technique,
				RestSeconds:  rest,
			})
		}
	}

	if len(sets) == 0 {
		return workouts.NewWorkout{}, formError(KindNoSets, "add at least one set before saving")
	}

	var completedAt *time.Time
	if sub.MarkCompleted && strings.TrimSpace(sub.CompletedAt) != "" {
		t, ok := parseTime(sub.CompletedAt, loc)
		if !ok {
			return workouts.NewWorkout{}, formError(KindInvalidCompletion, "the completion time is not a valid date")
		}
		if completedBeforeStart(startedAt, t) {
			return workouts.NewWorkout{}, formError(KindCompletedBeforeStart,
				"the completion time cannot be earlier than the start time")
		}
		completedAt = &t
	}

	var duration *int
	if strings.TrimSpace(sub.DurationMinutes) != "" {
		minutes, ok := parseNumber(sub.DurationMinutes)
		// fractions that round down to zero seconds are not a positive duration either
		if !ok || minutes <= 0 || math.Round(minutes*60) < 1 {
			return workouts.NewWorkout{}, formError(KindInvalidDuration, "the duration must be a positive number of minutes")
		}
		if math.Round(minutes*60) > workouts.MaxSeconds {
			return workouts.NewWorkout{}, formError(KindInvalidDuration, "the duration is too long")
		}
		seconds := int(math.Round(minutes * 60))
		duration = &seconds
	} else if completedAt != nil {
		elapsed := math.Round(completedAt.Sub(startedAt).Seconds())
		if elapsed > workouts.MaxSeconds {
			return workouts.NewWorkout{}, formError(KindInvalidDuration, "the workout is too long, check the completion time")
		}
		if elapsed > 0 {
			seconds := int(elapsed)
			duration = &seconds
		}
	}

	var notes *string
	if trimmed := strings.TrimSpace(sub.Notes); trimmed != "" {
		notes = &trimmed
	}

	payload := workouts.NewWorkout{
		RoutineID:       routine.ID,
		RoutineName:     routine.Name,
		StartedAt:       startedAt.UTC(),
		DurationSeconds: duration,
		Notes:           notes,
		Sets:            sets,
	}
	if completedAt != nil {
		utc := completedAt.UTC()
		payload.CompletedAt = &utc
	}

	return payload, nil
}
