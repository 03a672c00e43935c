package routines

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/2beens/gymlog/internal/auth"
	"github.com/2beens/gymlog/internal/catalog"
	"github.com/2beens/gymlog/internal/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrForbidden       = errors.New("routine belongs to another user")
	ErrInvalidRoutine  = errors.New("invalid routine")
	ErrUnknownExercise = errors.New("unknown exercise")
)

// MaxSets bounds the planned sets of a single routine entry.
const MaxSets = 50

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=routines_test

type routinesRepo interface {
	Create(ctx context.Context, routine Routine) (*Routine, error)
	Get(ctx context.Context, id int) (*Routine, error)
	List(ctx context.Context, userID *int) ([]Routine, error)
	Update(ctx context.Context, routine *Routine) error
	Delete(ctx context.Context, id int) error
}

type exerciseCatalog interface {
	Get(ctx context.Context, id int) (*catalog.Exercise, error)
}

type Service struct {
	repo    routinesRepo
	catalog exerciseCatalog
}

func NewService(repo routinesRepo, catalog exerciseCatalog) *Service {
	return &Service{
		repo:    repo,
		catalog: catalog,
	}
}

// prepare validates the routine, renumbers entry positions in the given order
// and snapshots the exercise names from the catalog.
func (s *Service) prepare(ctx context.Context, routine *Routine) error {
	routine.Name = strings.TrimSpace(routine.Name)
	if routine.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRoutine)
	}
	if routine.Description != nil {
		desc := strings.TrimSpace(*routine.Description)
		routine.Description = &desc
		if desc == "" {
			routine.Description = nil
		}
	}

	for i := range routine.Exercises {
		e := &routine.Exercises[i]
		if e.Sets < 1 || e.Sets > MaxSets {
			return fmt.Errorf("%w: exercise #%d: sets must be between 1 and %d", ErrInvalidRoutine, i+1, MaxSets)
		}
		if e.RepRangeMin != nil && *e.RepRangeMin < 1 {
			return fmt.Errorf("%w: exercise #%d: rep range min must be at least 1", ErrInvalidRoutine, i+1)
		}
		if e.RepRangeMax != nil && *e.RepRangeMax < 1 {
			return fmt.Errorf("%w: exercise #%d: rep range max must be at least 1", ErrInvalidRoutine, i+1)
		}
		if e.RepRangeMin != nil && e.RepRangeMax != nil && *e.RepRangeMin > *e.RepRangeMax {
			return fmt.Errorf("%w: exercise #%d: rep range min is greater than max", ErrInvalidRoutine, i+1)
		}
		if e.RestSeconds != nil && *e.RestSeconds < 0 {
			return fmt.Errorf("%w: exercise #%d: rest time cannot be negative", ErrInvalidRoutine, i+1)
		}
		if e.Technique == "" {
			e.Technique = TechniqueNormal
		}
		if !e.Technique.Valid() {
			return fmt.Errorf("%w: exercise #%d: unknown technique %q", ErrInvalidRoutine, i+1, e.Technique)
		}

		exercise, err := s.catalog.Get(ctx, e.ExerciseID)
		if err != nil {
			if errors.Is(err, catalog.ErrExerciseNotFound) {
				return fmt.Errorf("%w: %d", ErrUnknownExercise, e.ExerciseID)
			}
			return fmt.Errorf("get exercise %d: %w", e.ExerciseID, err)
		}

		e.ID = 0
		e.ExerciseName = exercise.Name
		e.Position = i
	}
	if routine.Exercises == nil {
		routine.Exercises = []RoutineExercise{}
	}

	return nil
}

func (s *Service) Create(ctx context.Context, identity auth.Identity, routine Routine) (_ *Routine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.routines.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	routine.UserID = identity.UserID
	if err := s.prepare(ctx, &routine); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("routine.exercises", len(routine.Exercises)))

	return s.repo.Create(ctx, routine)
}

// Get returns the routine with its entries ordered by position. Only the owner or an admin may read it.
func (s *Service) Get(ctx context.Context, identity auth.Identity, id int) (*Routine, error) {
	routine, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !identity.CanAccess(routine.UserID) {
		return nil, ErrForbidden
	}
	return routine, nil
}

// List returns the caller's routines. Admins may ask for another user's routines,
// or for all of them with a nil forUserID.
func (s *Service) List(ctx context.Context, identity auth.Identity, forUserID *int) ([]Routine, error) {
	if !identity.IsAdmin() {
		if forUserID != nil && *forUserID != identity.UserID {
			return nil, ErrForbidden
		}
		forUserID = &identity.UserID
	}
	return s.repo.List(ctx, forUserID)
}

func (s *Service) Update(ctx context.Context, identity auth.Identity, routine *Routine) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.routines.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	existing, err := s.Get(ctx, identity, routine.ID)
	if err != nil {
		return err
	}

	routine.UserID = existing.UserID
	routine.CreatedAt = existing.CreatedAt
	if err := s.prepare(ctx, routine); err != nil {
		return err
	}

	return s.repo.Update(ctx, routine)
}

func (s *Service) Delete(ctx context.Context, identity auth.Identity, id int) error {
	if _, err := s.Get(ctx, identity, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
