package workoutlog

import (
	"fmt"
)

type ErrorKind string

const (
	KindMissingRoutine       ErrorKind = "missing_routine"
	KindInvalidStart         ErrorKind = "invalid_start"
	KindNoExercises          ErrorKind = "no_exercises"
	KindInvalidReps          ErrorKind = "invalid_reps"
	KindInvalidWeight        ErrorKind = "invalid_weight"
	KindInvalidRest          ErrorKind = "invalid_rest"
	KindNoSets               ErrorKind = "no_sets"
	KindInvalidCompletion    ErrorKind = "invalid_completion"
	KindCompletedBeforeStart ErrorKind = "completed_before_start"
	KindInvalidDuration      ErrorKind = "invalid_duration"
)

// ValidationError blocks a submission. ExerciseIndex and SetIndex point at the offending set
// and are -1 for form level problems.
type ValidationError struct {
	Kind          ErrorKind `json:"kind"`
	ExerciseIndex int       `json:"exerciseIndex"`
	SetIndex      int       `json:"setIndex"`
	Message       string    `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

func formError(kind ErrorKind, message string) *ValidationError {
	return &ValidationError{
		Kind:          kind,
		ExerciseIndex: -1,
		SetIndex:      -1,
		Message:       message,
	}
}

func setError(kind ErrorKind, exerciseIdx, setIdx int, message string) *ValidationError {
	return &ValidationError{
		Kind:          kind,
		ExerciseIndex: exerciseIdx,
		SetIndex:      setIdx,
		Message:       message,
	}
}

// GenericSubmitMessage is shown when a failed submission carries no message of its own.
const GenericSubmitMessage = "No se pudo guardar el entrenamiento. Inténtalo de nuevo."

// SubmitError is a rejected create call. The form that produced it is still valid input
// for a retry.
type SubmitError struct {
	Message string
	Err     error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("submit workout: %s", e.Message)
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// ServiceError is a non-2xx answer of a REST service. Message is the response body.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("service error [%d]: %s", e.StatusCode, e.Message)
}
