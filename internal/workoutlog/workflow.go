package workoutlog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/gymlog/internal/auth"
	"github.com/2beens/gymlog/internal/routines"
	"github.com/2beens/gymlog/internal/telemetry/metrics"
	"github.com/2beens/gymlog/internal/telemetry/tracing"
	"github.com/2beens/gymlog/internal/workouts"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=workflow_mocks_test.go -package=workoutlog_test

type RoutineSource interface {
	Routine(ctx context.Context, identity auth.Identity, id int) (*routines.Routine, error)
}

type WorkoutCreator interface {
	CreateWorkout(ctx context.Context, identity auth.Identity, nw workouts.NewWorkout) (*workouts.Workout, error)
}

type routineGetter interface {
	Get(ctx context.Context, identity auth.Identity, id int) (*routines.Routine, error)
}

type workoutCreator interface {
	Create(ctx context.Context, identity auth.Identity, nw workouts.NewWorkout) (*workouts.Workout, error)
}

// Local serves the workflow from the in-process routine and workout services.
type Local struct {
	Routines routineGetter
	Workouts workoutCreator
}

func (l Local) Routine(ctx context.Context, identity auth.Identity, id int) (*routines.Routine, error) {
	return l.Routines.Get(ctx, identity, id)
}

func (l Local) CreateWorkout(ctx context.Context, identity auth.Identity, nw workouts.NewWorkout) (*workouts.Workout, error) {
	return l.Workouts.Create(ctx, identity, nw)
}

type Workflow struct {
	routines       RoutineSource
	workouts       WorkoutCreator
	location       *time.Location
	metricsManager *metrics.Manager
}

func NewWorkflow(
	routineSource RoutineSource,
	creator WorkoutCreator,
	location *time.Location,
	metricsManager *metrics.Manager,
) *Workflow {
	if location == nil {
		location = time.UTC
	}
	return &Workflow{
		routines:       routineSource,
		workouts:       creator,
		location:       location,
		metricsManager: metricsManager,
	}
}

func (w *Workflow) Location() *time.Location {
	return w.location
}

// Load fetches the routine and materializes its log form.
func (w *Workflow) Load(ctx context.Context, identity auth.Identity, routineID int) (_ *routines.Routine, _ LogForm, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workoutlog.load")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("routine.id", routineID))

	routine, err := w.routines.Routine(ctx, identity, routineID)
	if err != nil {
		return nil, LogForm{}, fmt.Errorf("load routine %d: %w", routineID, err)
	}

	return routine, Materialize(*routine), nil
}

// Submit validates the log and hands the payload to the workout service in one call.
// Validation failures come back as *ValidationError, rejected creates as *SubmitError.
// No retries are made.
func (w *Workflow) Submit(
	ctx context.Context,
	identity auth.Identity,
	routine *routines.Routine,
	form LogForm,
	sub Submission,
) (_ *workouts.Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workoutlog.submit")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	payload, err := BuildPayload(routine, form, sub, w.location)
	if err != nil {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			w.metricsManager.CounterLogValidationErrors.WithLabelValues(string(validationErr.Kind)).Inc()
		}
		return nil, err
	}
	span.SetAttributes(attribute.Int("routine.id", payload.RoutineID))
	span.SetAttributes(attribute.Int("sets", len(payload.Sets)))

	workout, err := w.workouts.CreateWorkout(ctx, identity, payload)
	if err != nil {
		w.metricsManager.CounterLogSubmitFailures.Inc()
		log.Errorf("submit workout, routine %d, user %d: %s", payload.RoutineID, identity.UserID, err)
		return nil, &SubmitError{
			Message: submitMessage(err),
			Err:     err,
		}
	}

	return workout, nil
}

// submitMessage picks the message shown for a rejected create call.
func submitMessage(err error) string {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		if serviceErr.Message != "" {
			return serviceErr.Message
		}
		return GenericSubmitMessage
	}
	if errors.Is(err, workouts.ErrInvalidWorkout) || errors.Is(err, workouts.ErrForbidden) {
		return err.Error()
	}
	return GenericSubmitMessage
}
