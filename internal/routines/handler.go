package routines

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/2beens/gymlog/internal/auth"
	"github.com/2beens/gymlog/internal/telemetry/tracing"
	"github.com/2beens/gymlog/internal/validation"
	"github.com/2beens/gymlog/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=routines_test

type routinesService interface {
	Create(ctx context.Context, identity auth.Identity, routine Routine) (*Routine, error)
	Get(ctx context.Context, identity auth.Identity, id int) (*Routine, error)
	List(ctx context.Context, identity auth.Identity, forUserID *int) ([]Routine, error)
	Update(ctx context.Context, identity auth.Identity, routine *Routine) error
	Delete(ctx context.Context, identity auth.Identity, id int) error
}

type routineExerciseRequest struct {
	ExerciseID  int    `json:"exerciseId" validate:"gte=1"`
	Sets        int    `json:"sets" validate:"gte=1,lte=50"`
	RepRangeMin *int   `json:"repRangeMin,omitempty" validate:"omitempty,gte=1"`
	RepRangeMax *int   `json:"repRangeMax,omitempty" validate:"omitempty,gte=1"`
	Technique   string `json:"technique" validate:"omitempty,oneof=normal dropset myo-reps failure rest-pause"`
	RestSeconds *int   `json:"restSeconds,omitempty" validate:"omitempty,gte=0"`
}

type routineRequest struct {
	Name        string                   `json:"name" validate:"required,max=200"`
	Description *string                  `json:"description,omitempty" validate:"omitempty,max=2000"`
	Exercises   []routineExerciseRequest `json:"exercises" validate:"max=100,dive"`
}

func (req routineRequest) toRoutine() Routine {
	routine := Routine{
		Name:        req.Name,
		Description: req.Description,
		Exercises:   make([]RoutineExercise, 0, len(req.Exercises)),
	}
	for _, e := range req.Exercises {
		routine.Exercises = append(routine.Exercises, RoutineExercise{
			ExerciseID:  e.ExerciseID,
			Sets:        e.Sets,
			RepRangeMin: e.RepRangeMin,
			RepRangeMax: e.RepRangeMax,
			Technique:   Technique(e.Technique),
			RestSeconds: e.RestSeconds,
		})
	}
	return routine
}

type DeleteRoutineResponse struct {
	DeletedID int `json:"deletedId"`
}

type Handler struct {
	service   routinesService
	validator *validation.Validator
}

func NewHandler(service routinesService) *Handler {
	return &Handler{
		service:   service,
		validator: validation.New(),
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/routines", handler.HandleList).Methods("GET").Name("routines-list")
	router.HandleFunc("/routines", handler.HandleAdd).Methods("POST").Name("routines-new")
	router.HandleFunc("/routines/{id}", handler.HandleGet).Methods("GET").Name("routines-get")
	router.HandleFunc("/routines/{id}", handler.HandleUpdate).Methods("PUT").Name("routines-update")
	router.HandleFunc("/routines/{id}", handler.HandleDelete).Methods("DELETE").Name("routines-delete")
}

func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrRoutineNotFound):
		http.Error(w, "routine not found", http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrInvalidRoutine), errors.Is(err, ErrUnknownExercise):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, fallback, http.StatusInternalServerError)
	}
}

func (handler *Handler) decodeRoutine(w http.ResponseWriter, r *http.Request) (Routine, bool) {
	var req routineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("routine, unmarshal json params: %s", err)
		http.Error(w, "invalid routine data", http.StatusBadRequest)
		return Routine{}, false
	}
	if err := handler.validator.Validate(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return Routine{}, false
	}
	return req.toRoutine(), true
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	respJson, err := json.Marshal(v)
	if err != nil {
		log.Errorf("marshal routines response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, status)
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.new")
	defer span.End()

	identity, ok := auth.RequestIdentity(w, r)
	if !ok {
		return
	}

	routine, ok := handler.decodeRoutine(w, r)
	if !ok {
		return
	}

	created, err := handler.service.Create(ctx, identity, routine)
	if err != nil {
		log.Errorf("create routine [%s]: %s", routine.Name, err)
		writeServiceError(w, err, "failed to create routine")
		return
	}

	log.Debugf("new routine added: [%s]: %d", created.Name, created.ID)
	writeJSON(w, created, http.StatusCreated)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.get")
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

	routine, err := handler.service.Get(ctx, identity, id)
	if err != nil {
		log.Tracef("get routine %d: %s", id, err)
		writeServiceError(w, err, "failed to get routine")
		return
	}

	writeJSON(w, routine, http.StatusOK)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.list")
	defer span.End()

	identity, ok := auth.RequestIdentity(w, r)
	if !ok {
		return
	}

	var forUserID *int
	if userIDStr := r.URL.Query().Get("user_id"); userIDStr != "" {
		userID, err := strconv.Atoi(userIDStr)
		if err != nil {
			http.Error(w, "error, user_id NaN", http.StatusBadRequest)
			return
		}
		forUserID = &userID
	}

	routines, err := handler.service.List(ctx, identity, forUserID)
	if err != nil {
		log.Errorf("list routines: %s", err)
		writeServiceError(w, err, "failed to get routines")
		return
	}
	if routines == nil {
		routines = []Routine{}
	}

	writeJSON(w, routines, http.StatusOK)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.update")
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

	routine, ok := handler.decodeRoutine(w, r)
	if !ok {
		return
	}
	routine.ID = id

	if err := handler.service.Update(ctx, identity, &routine); err != nil {
		log.Errorf("update routine %d: %s", id, err)
		writeServiceError(w, err, "failed to update routine")
		return
	}

	writeJSON(w, routine, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.delete")
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
		log.Errorf("delete routine %d: %s", id, err)
		writeServiceError(w, err, "routine not deleted")
		return
	}

	writeJSON(w, DeleteRoutineResponse{DeletedID: id}, http.StatusOK)
}
