package workoutlog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/2beens/gymlog/internal/auth"
	"github.com/2beens/gymlog/internal/routines"
	"github.com/2beens/gymlog/internal/telemetry/tracing"
	"github.com/2beens/gymlog/internal/validation"
	"github.com/2beens/gymlog/internal/workouts"
	"github.com/2beens/gymlog/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=workoutlog_test

type logWorkflow interface {
	Load(ctx context.Context, identity auth.Identity, routineID int) (*routines.Routine, LogForm, error)
	Submit(ctx context.Context, identity auth.Identity, routine *routines.Routine, form LogForm, sub Submission) (*workouts.Workout, error)
	Location() *time.Location
}

type FormResponse struct {
	Routine    *routines.Routine `json:"routine"`
	Form       LogForm           `json:"form"`
	Submission Submission        `json:"submission"`
}

type formOpRequest struct {
	Form          LogForm `json:"form"`
	Op            string  `json:"op" validate:"required,oneof=edit add remove"`
	ExerciseIndex int     `json:"exerciseIndex"`
	SetIndex      int     `json:"setIndex"`
	Field         Field   `json:"field" validate:"omitempty,oneof=weight reps technique restSeconds"`
	Value         string  `json:"value"`
}

type submitRequest struct {
	RoutineID  int        `json:"routineId"`
	Form       LogForm    `json:"form"`
	Submission Submission `json:"submission"`
}

// SubmitFailure is returned when a submission is blocked or rejected. It echoes the form
// and submission back untouched so the client can retry.
type SubmitFailure struct {
	Message    string           `json:"message"`
	Validation *ValidationError `json:"validation,omitempty"`
	Form       LogForm          `json:"form"`
	Submission Submission       `json:"submission"`
}

type Handler struct {
	workflow  logWorkflow
	validator *validation.Validator
	Now       func() time.Time
}

func NewHandler(workflow logWorkflow) *Handler {
	return &Handler{
		workflow:  workflow,
		validator: validation.New(),
		Now:       time.Now,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/log/routines/{id}/form", handler.HandleForm).Methods("GET").Name("log-form")
	router.HandleFunc("/log/form/ops", handler.HandleFormOp).Methods("POST").Name("log-form-ops")
	router.HandleFunc("/log/submit", handler.HandleSubmit).Methods("POST").Name("log-submit")
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	respJson, err := json.Marshal(v)
	if err != nil {
		log.Errorf("marshal log response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, status)
}

func writeLoadError(w http.ResponseWriter, err error) {
	var serviceErr *ServiceError
	switch {
	case errors.Is(err, routines.ErrRoutineNotFound):
		http.Error(w, "routine not found", http.StatusNotFound)
	case errors.Is(err, routines.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.As(err, &serviceErr):
		http.Error(w, serviceErr.Message, serviceErr.StatusCode)
	default:
		http.Error(w, "failed to load routine", http.StatusInternalServerError)
	}
}

func (handler *Handler) HandleForm(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.log.form")
	defer span.End()

	identity, ok := auth.RequestIdentity(w, r)
	if !ok {
		return
	}
	routineID, err := pkg.IntVar(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	routine, form, err := handler.workflow.Load(ctx, identity, routineID)
	if err != nil {
		log.Errorf("log form, %s", err)
		writeLoadError(w, err)
		return
	}

	writeJSON(w, FormResponse{
		Routine: routine,
		Form:    form,
		Submission: Submission{
			StartedAt: FormatLocalTime(handler.Now(), handler.workflow.Location()),
		},
	}, http.StatusOK)
}

func (handler *Handler) HandleFormOp(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.log.formOp")
	defer span.End()

	if _, ok := auth.RequestIdentity(w, r); !ok {
		return
	}

	var req formOpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("form op, unmarshal json params: %s", err)
		http.Error(w, "invalid form operation", http.StatusBadRequest)
		return
	}
	if err := handler.validator.Validate(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var form LogForm
	switch req.Op {
	case "edit":
		form = EditSet(req.Form, req.ExerciseIndex, req.SetIndex, req.Field, req.Value)
	case "add":
		form = AddSet(req.Form, req.ExerciseIndex)
	case "remove":
		form = RemoveSet(req.Form, req.ExerciseIndex, req.SetIndex)
	}

	writeJSON(w, form, http.StatusOK)
}

func (handler *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.log.submit")
	defer span.End()

	identity, ok := auth.RequestIdentity(w, r)
	if !ok {
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("log submit, unmarshal json params: %s", err)
		http.Error(w, "invalid submission", http.StatusBadRequest)
		return
	}

	// an unknown routine id is left to the workflow, which refuses it
	var routine *routines.Routine
	if req.RoutineID > 0 {
		loaded, _, err := handler.workflow.Load(ctx, identity, req.RoutineID)
		if err != nil {
			log.Errorf("log submit, %s", err)
			writeLoadError(w, err)
			return
		}
		routine = loaded
	}

	workout, err := handler.workflow.Submit(ctx, identity, routine, req.Form, req.Submission)
	if err == nil {
		log.Debugf("workout %d logged for routine %d", workout.ID, workout.RoutineID)
		writeJSON(w, workout, http.StatusCreated)
		return
	}

	failure := SubmitFailure{
		Message:    err.Error(),
		Form:       req.Form,
		Submission: req.Submission,
	}

	var (
		validationErr *ValidationError
		submitErr     *SubmitError
	)
	switch {
	case errors.As(err, &validationErr):
		failure.Validation = validationErr
		writeJSON(w, failure, http.StatusBadRequest)
	case errors.As(err, &submitErr):
		failure.Message = submitErr.Message
		status := http.StatusBadGateway
		if errors.Is(err, workouts.ErrInvalidWorkout) {
			status = http.StatusBadRequest
		} else if errors.Is(err, workouts.ErrForbidden) {
			status = http.StatusForbidden
		}
		writeJSON(w, failure, status)
	default:
		log.Errorf("log submit: %s", err)
		failure.Message = GenericSubmitMessage
		writeJSON(w, failure, http.StatusInternalServerError)
	}
}
