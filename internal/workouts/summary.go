package workouts

import (
	"sort"
	"time"
)

// ExerciseGroup holds the sets of one exercise, ordered by set number.
type ExerciseGroup struct {
	ExerciseID   int          `json:"exerciseId"`
	ExerciseName string       `json:"exerciseName"`
	Sets         []WorkoutSet `json:"sets"`
	Volume       float64      `json:"volume"`
}

type Summary struct {
	WorkoutID       int             `json:"workoutId"`
	RoutineName     string          `json:"routineName"`
	TotalSets       int             `json:"totalSets"`
	TotalVolume     float64         `json:"totalVolume"`
	DurationSeconds *int            `json:"durationSeconds,omitempty"`
	Exercises       []ExerciseGroup `json:"exercises"`
}

// Summarize derives the display metrics of a stored workout.
// Groups follow the order in which each exercise first appears in the set list.
func Summarize(workout Workout) Summary {
	summary := Summary{
		WorkoutID:       workout.ID,
		RoutineName:     workout.RoutineName,
		TotalSets:       len(workout.Sets),
		DurationSeconds: DisplayDuration(workout),
		Exercises:       []ExerciseGroup{},
	}

	groupIdx := make(map[int]int)
	for _, set := range workout.Sets {
		summary.TotalVolume += set.Volume()

		idx, ok := groupIdx[set.ExerciseID]
		if !ok {
			idx = len(summary.Exercises)
			groupIdx[set.ExerciseID] = idx
			summary.Exercises = append(summary.Exercises, ExerciseGroup{
				ExerciseID:   set.ExerciseID,
				ExerciseName: set.ExerciseName,
			})
		}
		summary.Exercises[idx].Sets = append(summary.Exercises[idx].Sets, set)
		summary.Exercises[idx].Volume += set.Volume()
	}

	for i := range summary.Exercises {
		sets := summary.Exercises[i].Sets
		sort.SliceStable(sets, func(a, b int) bool {
			return sets[a].SetNumber < sets[b].SetNumber
		})
	}

	return summary
}

// DisplayDuration returns the stored duration, or the one derived from the timestamps when
// the workout was completed. Nil means not available.
func DisplayDuration(workout Workout) *int {
	if workout.DurationSeconds != nil {
		d := *workout.DurationSeconds
		return &d
	}
	if workout.CompletedAt == nil || workout.CompletedAt.Before(workout.StartedAt) {
		return nil
	}
	d := int(workout.CompletedAt.Sub(workout.StartedAt).Round(time.Second) / time.Second)
	return &d
}
