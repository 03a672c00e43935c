package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/2beens/gymlog/internal/auth"
	"github.com/2beens/gymlog/internal/telemetry/tracing"
	"github.com/2beens/gymlog/internal/validation"
	"github.com/2beens/gymlog/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=catalog_test

type catalogService interface {
	Search(ctx context.Context, query string) ([]Exercise, error)
	List(ctx context.Context, params ListParams) ([]Exercise, int, error)
	Get(ctx context.Context, id int) (*Exercise, error)
	Create(ctx context.Context, identity auth.Identity, exercise Exercise) (*Exercise, error)
	Update(ctx context.Context, identity auth.Identity, exercise *Exercise) error
	Delete(ctx context.Context, identity auth.Identity, id int) error
}

type exerciseRequest struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=2000"`
	VideoURL    *string  `json:"videoUrl,omitempty" validate:"omitempty,url"`
	Aliases     []string `json:"aliases" validate:"max=20,dive,max=100"`
}

func (req exerciseRequest) toExercise() Exercise {
	return Exercise{
		Name:        req.Name,
		Description: req.Description,
		VideoURL:    req.VideoURL,
		Aliases:     req.Aliases,
	}
}

type DeleteExerciseResponse struct {
	DeletedID int `json:"deletedId"`
}

type UpdateExerciseResponse struct {
	UpdatedID int `json:"updatedId"`
}

type Handler struct {
	service   catalogService
	validator *validation.Validator
}

func NewHandler(service catalogService) *Handler {
	return &Handler{
		service:   service,
		validator: validation.New(),
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/exercises", handler.HandleSearch).Methods("GET").Name("exercises-search")
	router.HandleFunc("/exercises/page/{page}/size/{size}", handler.HandleList).Methods("GET").Name("exercises-list")
	router.HandleFunc("/exercises/{id}", handler.HandleGet).Methods("GET").Name("exercises-get")
	router.HandleFunc("/exercises", handler.HandleAdd).Methods("POST").Name("exercises-new")
	router.HandleFunc("/exercises/{id}", handler.HandleUpdate).Methods("PUT").Name("exercises-update")
	router.HandleFunc("/exercises/{id}", handler.HandleDelete).Methods("DELETE").Name("exercises-delete")
}

func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrExerciseNotFound):
		http.Error(w, "exercise not found", http.StatusNotFound)
	case errors.Is(err, ErrExerciseExists):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, fallback, http.StatusInternalServerError)
	}
}

func (handler *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.catalog.search")
	defer span.End()

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	exercises, err := handler.service.Search(ctx, query)
	if err != nil {
		log.Errorf("search exercises [%s]: %s", query, err)
		http.Error(w, "failed to search exercises", http.StatusInternalServerError)
		return
	}
	if exercises == nil {
		exercises = []Exercise{}
	}

	exercisesJson, err := json.Marshal(exercises)
	if err != nil {
		log.Errorf("marshal exercises: %s", err)
		http.Error(w, "failed to search exercises", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, exercisesJson, http.StatusOK)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.catalog.list")
	defer span.End()

	page, err := pkg.IntVar(r, "page")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	size, err := pkg.IntVar(r, "size")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	exercises, total, err := handler.service.List(ctx, ListParams{Page: page, Size: size})
	if err != nil {
		log.Errorf("list exercises error: %s", err)
		http.Error(w, "failed to get exercises", http.StatusInternalServerError)
		return
	}
	if exercises == nil {
		exercises = []Exercise{}
	}

	listJson, err := json.Marshal(ListResponse{
		Exercises: exercises,
		Total:     total,
	})
	if err != nil {
		log.Errorf("marshal exercises error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, listJson, http.StatusOK)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.catalog.get")
	defer span.End()

	id, err := pkg.IntVar(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	e, err := handler.service.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrExerciseNotFound) {
			log.Errorf("failed to get exercise %d: %s", id, err)
		}
		writeServiceError(w, err, "failed to get exercise")
		return
	}

	exJson, err := json.Marshal(e)
	if err != nil {
		log.Errorf("failed to marshal exercise: %s", err)
		http.Error(w, "failed to marshal exercise", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, exJson, http.StatusOK)
}

func (handler *Handler) decodeExercise(w http.ResponseWriter, r *http.Request) (Exercise, bool) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return Exercise{}, false
	}

	var req exerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("exercise, unmarshal json params: %s", err)
		http.Error(w, "invalid exercise data", http.StatusBadRequest)
		return Exercise{}, false
	}
	if err := handler.validator.Validate(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return Exercise{}, false
	}

	return req.toExercise(), true
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.catalog.new")
	defer span.End()

	identity, ok := auth.RequestIdentity(w, r)
	if !ok {
		return
	}

	exercise, ok := handler.decodeExercise(w, r)
	if !ok {
		return
	}

	added, err := handler.service.Create(ctx, identity, exercise)
	if err != nil {
		log.Errorf("failed to add new exercise [%s]: %s", exercise.Name, err)
		writeServiceError(w, err, "error, failed to add new exercise")
		return
	}

	log.Debugf("new exercise added: [%s]: %d", added.Name, added.ID)

	addedJson, err := json.Marshal(added)
	if err != nil {
		log.Errorf("failed to marshal new exercise: %s", err)
		http.Error(w, "error, failed to add new exercise", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, addedJson, http.StatusCreated)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.catalog.update")
	defer span.End()

	identity, ok := auth.RequestIdentity(w, r)
	if !ok {
		return
	}

	id, err := pkg.IntVar(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	exercise, ok := handler.decodeExercise(w, r)
	if !ok {
		return
	}
	exercise.ID = id

	if err := handler.service.Update(ctx, identity, &exercise); err != nil {
		log.Errorf("failed to update exercise %d: %s", id, err)
		writeServiceError(w, err, "exercise not updated")
		return
	}

	updateRespJson, err := json.Marshal(UpdateExerciseResponse{UpdatedID: id})
	if err != nil {
		log.Errorf("marshal update exercise response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, updateRespJson, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.catalog.delete")
	defer span.End()

	identity, ok := auth.RequestIdentity(w, r)
	if !ok {
		return
	}

	id, err := pkg.IntVar(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := handler.service.Delete(ctx, identity, id); err != nil {
		log.Errorf("failed to delete exercise %d: %s", id, err)
		writeServiceError(w, err, "exercise not deleted")
		return
	}

	deleteRespJson, err := json.Marshal(DeleteExerciseResponse{DeletedID: id})
	if err != nil {
		log.Errorf("marshal delete exercise response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSONResponseOK(w, string(deleteRespJson))
}
