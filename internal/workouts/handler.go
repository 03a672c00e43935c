package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2beens/gymlog/internal/auth"
	"github.com/2beens/gymlog/internal/telemetry/tracing"
	"github.com/2beens/gymlog/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=workouts_test

type workoutsService interface {
	Create(ctx context.Context, identity auth.Identity, nw NewWorkout) (*Workout, error)
	Get(ctx context.Context, identity auth.Identity, id int) (*Workout, error)
	List(ctx context.Context, identity auth.Identity, params ListParams) ([]Workout, int, error)
	Delete(ctx context.Context, identity auth.Identity, id int) error
	Summary(ctx context.Context, identity auth.Identity, id int) (*Summary, error)
}

type DeleteWorkoutResponse struct {
	DeletedID int `json:"deletedId"`
}

type Handler struct {
	service workoutsService
}

func NewHandler(service workoutsService) *Handler {
	return &Handler{
		service: service,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/workouts", handler.HandleAdd).Methods("POST").Name("workouts-new")
	router.HandleFunc("/workouts/page/{page}/size/{size}", handler.HandleList).Methods("GET").Name("workouts-list")
	router.HandleFunc("/workouts/{id}", handler.HandleGet).Methods("GET").Name("workouts-get")
	router.HandleFunc("/workouts/{id}/summary", handler.HandleSummary).Methods("GET").Name("workouts-summary")
	router.HandleFunc("/workouts/{id}", handler.HandleDelete).Methods("DELETE").Name("workouts-delete")
}

func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrWorkoutNotFound):
		http.Error(w, "workout not found", http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrInvalidWorkout):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, fallback, http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	respJson, err := json.Marshal(v)
	if err != nil {
		log.Errorf("marshal workouts response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, status)
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.new")
	defer span.End()

	identity, ok := auth.RequestIdentity(w, r)
	if !ok {
		return
	}

	var nw NewWorkout
	if err := json.NewDecoder(r.Body).Decode(&nw); err != nil {
		log.Tracef("workout, unmarshal json params: %s", err)
		http.Error(w, "invalid workout data", http.StatusBadRequest)
		return
	}

	workout, err := handler.service.Create(ctx, identity, nw)
	if err != nil {
		log.Errorf("create workout for routine %d: %s", nw.RoutineID, err)
		writeServiceError(w, err, "failed to save workout")
		return
	}

	log.Debugf("new workout logged: %d, user %d, %d sets", workout.ID, workout.UserID, len(workout.Sets))
	writeJSON(w, workout, http.StatusCreated)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.get")
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

	workout, err := handler.service.Get(ctx, identity, id)
	if err != nil {
		log.Tracef("get workout %d: %s", id, err)
		writeServiceError(w, err, "failed to get workout")
		return
	}

	writeJSON(w, workout, http.StatusOK)
}

func (handler *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.summary")
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

	summary, err := handler.service.Summary(ctx, identity, id)
	if err != nil {
		log.Tracef("workout summary %d: %s", id, err)
		writeServiceError(w, err, "failed to get workout summary")
		return
	}

	writeJSON(w, summary, http.StatusOK)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.list")
	defer span.End()

	identity, ok := auth.RequestIdentity(w, r)
	if !ok {
		return
	}
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
	if page < 1 || size < 1 {
		http.Error(w, "invalid page / size", http.StatusBadRequest)
		return
	}

	workouts, total, err := handler.service.List(ctx, identity, ListParams{Page: page, Size: size})
	if err != nil {
		log.Errorf("list workouts: %s", err)
		writeServiceError(w, err, "failed to get workouts")
		return
	}
	if workouts == nil {
		workouts = []Workout{}
	}

	writeJSON(w, ListResponse{Workouts: workouts, Total: total}, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.delete")
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
		log.Errorf("delete workout %d: %s", id, err)
		writeServiceError(w, err, "workout not deleted")
		return
	}

	writeJSON(w, DeleteWorkoutResponse{DeletedID: id}, http.StatusOK)
}
