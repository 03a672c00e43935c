package workouts

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/2beens/gymlog/internal/auth"
	"github.com/2beens/gymlog/internal/routines"
	"github.com/2beens/gymlog/internal/telemetry/metrics"
	"github.com/2beens/gymlog/internal/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrForbidden      = errors.New("workout belongs to another user")
	ErrInvalidWorkout = errors.New("invalid workout")
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=workouts_test

type workoutsRepo interface {
	Create(ctx context.Context, workout Workout) (*Workout, error)
	Get(ctx context.Context, id int) (*Workout, error)
	List(ctx context.Context, userID *int, params ListParams) ([]Workout, int, error)
	Delete(ctx context.Context, id int) error
}

type routinesReader interface {
	Get(ctx context.Context, identity auth.Identity, id int) (*routines.Routine, error)
}

type Service struct {
	repo            workoutsRepo
	routinesService routinesReader
	metricsManager  *metrics.Manager
	Now             func() time.Time
}

func NewService(repo workoutsRepo, routinesService routinesReader, metricsManager *metrics.Manager) *Service {
	return &Service{
		repo:            repo,
		routinesService: routinesService,
		metricsManager:  metricsManager,
		Now:             time.Now,
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidWorkout, fmt.Sprintf(format, args...))
}

// check enforces the stored aggregate invariants on a create payload. Clients going through
// the logging workflow never trip these, others might.
func check(nw NewWorkout) error {
	if nw.RoutineID <= 0 {
		return invalid("routine id is required")
	}
	if strings.TrimSpace(nw.RoutineName) == "" {
		return invalid("routine name is required")
	}
	if nw.StartedAt.IsZero() {
		return invalid("start time is required")
	}
	if nw.CompletedAt != nil && nw.CompletedAt.Before(nw.StartedAt) {
		return invalid("completion time is before start time")
	}
	if nw.DurationSeconds != nil && (*nw.DurationSeconds <= 0 || *nw.DurationSeconds > MaxSeconds) {
		return invalid("duration must be positive and at most %d seconds", MaxSeconds)
	}
	if len(nw.Sets) == 0 {
		return invalid("a workout needs at least one set")
	}

	for i, s := range nw.Sets {
		if s.ExerciseID <= 0 {
			return invalid("set #%d: exercise id is required", i+1)
		}
		if s.SetNumber < 1 {
			return invalid("set #%d: set number must be at least 1", i+1)
		}
		if s.Reps < 1 || s.Reps > MaxReps {
			return invalid("set #%d: reps must be between 1 and %d", i+1, MaxReps)
		}
		if s.Weight != nil && (math.IsNaN(*s.Weight) || *s.Weight < 0 || *s.Weight > MaxWeight) {
			return invalid("set #%d: weight must be between 0 and %.2f", i+1, MaxWeight)
		}
		if s.RestSeconds != nil && (*s.RestSeconds < 0 || *s.RestSeconds > MaxSeconds) {
			return invalid("set #%d: rest time must be between 0 and %d seconds", i+1, MaxSeconds)
		}
		if s.Technique != "" && !s.Technique.Valid() {
			return invalid("set #%d: unknown technique %q", i+1, s.Technique)
		}
	}

	return nil
}

// Create persists a workout for the caller. Sets without a completion time get the workout's
// completion time, or the current time for unfinished sessions.
func (s *Service) Create(ctx context.Context, identity auth.Identity, nw NewWorkout) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := check(nw); err != nil {
		return nil, err
	}

	// workouts can only be logged against routines the caller may read
	if _, err := s.routinesService.Get(ctx, identity, nw.RoutineID); err != nil {
		switch {
		case errors.Is(err, routines.ErrForbidden):
			return nil, fmt.Errorf("%w: routine %d", ErrForbidden, nw.RoutineID)
		case errors.Is(err, routines.ErrRoutineNotFound):
			return nil, invalid("routine %d does not exist", nw.RoutineID)
		}
		return nil, fmt.Errorf("get routine: %w", err)
	}

	workout := Workout{
		UserID:          identity.UserID,
		RoutineID:       nw.RoutineID,
		RoutineName:     strings.TrimSpace(nw.RoutineName),
		StartedAt:       nw.StartedAt,
		CompletedAt:     nw.CompletedAt,
		DurationSeconds: nw.DurationSeconds,
		Sets:            make([]WorkoutSet, 0, len(nw.Sets)),
	}
	if nw.Notes != nil {
		if notes := strings.TrimSpace(*nw.Notes); notes != "" {
			workout.Notes = &notes
		}
	}

	defaultCompletedAt := s.Now()
	if nw.CompletedAt != nil {
		defaultCompletedAt = *nw.CompletedAt
	}
	for _, ns := range nw.Sets {
		set := WorkoutSet{
			ExerciseID:   ns.ExerciseID,
			ExerciseName: ns.ExerciseName,
			SetNumber:    ns.SetNumber,
			Weight:       ns.Weight,
			Reps:         ns.Reps,
			Technique:    ns.Technique,
			RestSeconds:  ns.RestSeconds,
			CompletedAt:  defaultCompletedAt,
		}
		if set.Technique == "" {
			set.Technique = routines.TechniqueNormal
		}
		if ns.CompletedAt != nil {
			set.CompletedAt = *ns.CompletedAt
		}
		workout.Sets = append(workout.Sets, set)
	}

	created, err := s.repo.Create(ctx, workout)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("workout.id", created.ID))

	summary := Summarize(*created)
	s.metricsManager.CounterWorkoutsLogged.Inc()
	s.metricsManager.CounterSetsLogged.Add(float64(summary.TotalSets))
	s.metricsManager.HistogramWorkoutVolume.Observe(summary.TotalVolume)

	return created, nil
}

func (s *Service) Get(ctx context.Context, identity auth.Identity, id int) (*Workout, error) {
	workout, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !identity.CanAccess(workout.UserID) {
		return nil, ErrForbidden
	}
	return workout, nil
}

// List pages through the caller's workouts, newest first. Admins see everybody's.
func (s *Service) List(ctx context.Context, identity auth.Identity, params ListParams) ([]Workout, int, error) {
	if params.Page < 1 || params.Size < 1 {
		return nil, 0, invalid("page and size must be positive")
	}

	var userID *int
	if !identity.IsAdmin() {
		userID = &identity.UserID
	}
	return s.repo.List(ctx, userID, params)
}

func (s *Service) Delete(ctx context.Context, identity auth.Identity, id int) error {
	if _, err := s.Get(ctx, identity, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) Summary(ctx context.Context, identity auth.Identity, id int) (*Summary, error) {
	workout, err := s.Get(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	summary := Summarize(*workout)
	return &summary, nil
}
