package workoutlog

import (
	"github.com/2beens/gymlog/internal/routines"
)

type Field string

const (
	FieldWeight      Field = "weight"
	FieldReps        Field = "reps"
	FieldTechnique   Field = "technique"
	FieldRestSeconds Field = "restSeconds"
)

func (f LogForm) validSet(exerciseIdx, setIdx int) bool {
	if exerciseIdx < 0 || exerciseIdx >= len(f.Exercises) {
		return false
	}
	return setIdx >= 0 && setIdx < len(f.Exercises[exerciseIdx].Sets)
}

// EditSet returns a copy of the form with one field of one set replaced.
// Out of range indices, unknown fields and unknown techniques leave the form as is.
func EditSet(form LogForm, exerciseIdx, setIdx int, field Field, value string) LogForm {
	if !form.validSet(exerciseIdx, setIdx) {
		return form
	}

	edited := form.clone()
	set := &edited.Exercises[exerciseIdx].Sets[setIdx]
	switch field {
	case FieldWeight:
		set.Weight = value
	case FieldReps:
		set.Reps = value
	case FieldRestSeconds:
		set.RestSeconds = value
	case FieldTechnique:
		technique := routines.Technique(value)
		if !technique.Valid() {
			return form
		}
		set.Technique = technique
	default:
		return form
	}

	return edited
}

// AddSet appends a set to one exercise, copying reps, technique and rest from the last set.
// Weight always starts empty.
func AddSet(form LogForm, exerciseIdx int) LogForm {
	if exerciseIdx < 0 || exerciseIdx >= len(form.Exercises) {
		return form
	}

	edited := form.clone()
	exercise := &edited.Exercises[exerciseIdx]
	next := exercise.Defaults
	if n := len(exercise.Sets); n > 0 {
		next = exercise.Sets[n-1]
	}
	next.Weight = ""
	exercise.Sets = append(exercise.Sets, next)

	return edited
}

// RemoveSet drops one set. The last remaining set of an exercise is never removed.
func RemoveSet(form LogForm, exerciseIdx, setIdx int) LogForm {
	if !form.validSet(exerciseIdx, setIdx) {
		return form
	}
	if len(form.Exercises[exerciseIdx].Sets) <= 1 {
		return form
	}

	edited := form.clone()
	exercise := &edited.Exercises[exerciseIdx]
	exercise.Sets = append(exercise.Sets[:setIdx], exercise.Sets[setIdx+1:]...)

	return edited
}
