package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/gymlog/internal/auth"
	"github.com/2beens/gymlog/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrForbidden    = errors.New("only admins can change the exercise catalog")
	ErrInvalidInput = errors.New("invalid exercise")
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=catalog_test

type exercisesRepo interface {
	Search(ctx context.Context, query string) ([]Exercise, error)
	List(ctx context.Context, params ListParams) (_ []Exercise, total int, err error)
	Get(ctx context.Context, id int) (*Exercise, error)
	Create(ctx context.Context, exercise Exercise) (*Exercise, error)
	Update(ctx context.Context, exercise *Exercise) error
	Delete(ctx context.Context, id int) error
}

type Service struct {
	repo  exercisesRepo
	cache *Cache
}

func NewService(repo exercisesRepo, cache *Cache) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
	}
}

func (s *Service) Search(ctx context.Context, query string) ([]Exercise, error) {
	return s.repo.Search(ctx, query)
}

func (s *Service) List(ctx context.Context, params ListParams) ([]Exercise, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) Get(ctx context.Context, id int) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.catalog.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	if e, ok := s.cache.Get(id); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		log.Tracef("exercise %d found in cache", id)
		return e, nil
	}

	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(e)

	return e, nil
}

func (s *Service) Create(ctx context.Context, identity auth.Identity, exercise Exercise) (*Exercise, error) {
	if !identity.IsAdmin() {
		return nil, ErrForbidden
	}

	exercise.normalize()
	if exercise.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	return s.repo.Create(ctx, exercise)
}

func (s *Service) Update(ctx context.Context, identity auth.Identity, exercise *Exercise) error {
	if !identity.IsAdmin() {
		return ErrForbidden
	}

	exercise.normalize()
	if exercise.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	defer s.cache.Invalidate(exercise.ID)
	return s.repo.Update(ctx, exercise)
}

func (s *Service) Delete(ctx context.Context, identity auth.Identity, id int) error {
	if !identity.IsAdmin() {
		return ErrForbidden
	}

	defer s.cache.Invalidate(id)
	return s.repo.Delete(ctx, id)
}
