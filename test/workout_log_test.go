//go:build integration_test || all_tests

package test

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/2beens/gymlog/internal/auth"
	"github.com/2beens/gymlog/internal/catalog"
	"github.com/2beens/gymlog/internal/routines"
	"github.com/2beens/gymlog/internal/telemetry/metrics"
	"github.com/2beens/gymlog/internal/workoutlog"
	"github.com/2beens/gymlog/internal/workouts"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type newUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// createLifter makes a regular user through the admin account and returns its credentials.
func (s *IntegrationTestSuite) createLifter(ctx context.Context, t *testing.T, adminToken string) (string, string) {
	t.Helper()

	username := "lifter" + strings.ToLower(gofakeit.LetterN(8))
	password := gofakeit.Password(true, true, true, false, false, 12)
	status := s.doJSON(ctx, t, http.MethodPost, "/a/users", adminToken, newUserRequest{
		Username: username,
		Password: password,
	}, nil)
	require.Equal(t, http.StatusCreated, status)

	return username, password
}

func (s *IntegrationTestSuite) createExercise(ctx context.Context, t *testing.T, adminToken, name string) catalog.Exercise {
	t.Helper()

	var exercise catalog.Exercise
	status := s.doJSON(ctx, t, http.MethodPost, "/exercises", adminToken, map[string]any{
		"name":    name,
		"aliases": []string{},
	}, &exercise)
	require.Equal(t, http.StatusCreated, status)
	require.Positive(t, exercise.ID)

	return exercise
}

func (s *IntegrationTestSuite) TestWorkoutLog_EndToEnd() {
	t := s.T()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	admin := s.loggedInClient(ctx, t, testUsername, testPassword)
	squat := s.createExercise(ctx, t, admin.Token(), "Sentadilla "+gofakeit.LetterN(5))
	press := s.createExercise(ctx, t, admin.Token(), "Press banca "+gofakeit.LetterN(5))

	username, password := s.createLifter(ctx, t, admin.Token())
	lifter := s.loggedInClient(ctx, t, username, password)

	repsMin, repsMax := 8, 12
	var routine routines.Routine
	status := s.doJSON(ctx, t, http.MethodPost, "/routines", lifter.Token(), map[string]any{
		"name": "Pierna y pecho",
		"exercises": []map[string]any{
			{"exerciseId": squat.ID, "sets": 2, "repRangeMin": repsMin, "repRangeMax": repsMax},
			{"exerciseId": press.ID, "sets": 1, "technique": "dropset"},
		},
	}, &routine)
	require.Equal(t, http.StatusCreated, status)
	require.Len(t, routine.Exercises, 2)

	lifterIdentity := auth.Identity{UserID: routine.UserID, Role: auth.RoleUser}
	loc, err := time.LoadLocation("Europe/Madrid")
	require.NoError(t, err)
	metricsManager := metrics.NewTestManager()
	workflow := workoutlog.NewWorkflow(lifter, lifter, loc, metricsManager)

	// identity travels in the bearer token
	loaded, form, err := workflow.Load(ctx, lifterIdentity, routine.ID)
	require.NoError(t, err)
	require.Equal(t, 3, form.TotalSets())
	assert.Equal(t, "8–12 repeticiones", form.Exercises[0].TargetLabel)
	assert.Equal(t, "8", form.Exercises[0].Sets[0].Reps)

	form = workoutlog.EditSet(form, 0, 0, workoutlog.FieldWeight, "100")
	form = workoutlog.EditSet(form, 0, 1, workoutlog.FieldWeight, "102.5")
	form = workoutlog.EditSet(form, 0, 1, workoutlog.FieldReps, "7")
	form = workoutlog.EditSet(form, 1, 0, workoutlog.FieldWeight, "60")

	sub := workoutlog.Submission{
		StartedAt:     "2026-03-02T18:00",
		MarkCompleted: true,
		CompletedAt:   "2026-03-02T19:05",
		Notes:         gofakeit.Sentence(6),
	}

	// a bad value blocks the submission before any request is made
	badForm := workoutlog.EditSet(form, 1, 0, workoutlog.FieldReps, "0")
	_, err = workflow.Submit(ctx, lifterIdentity, loaded, badForm, sub)
	var validationErr *workoutlog.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, workoutlog.KindInvalidReps, validationErr.Kind)
	assert.Equal(t, 0, s.countWorkouts(t, routine.ID))

	workout, err := workflow.Submit(ctx, lifterIdentity, loaded, form, sub)
	require.NoError(t, err)
	require.Positive(t, workout.ID)
	assert.Equal(t, "Pierna y pecho", workout.RoutineName)
	assert.Equal(t, time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC), workout.StartedAt.UTC())
	require.NotNil(t, workout.DurationSeconds)
	assert.Equal(t, 65*60, *workout.DurationSeconds)
	require.Len(t, workout.Sets, 3)
	assert.Equal(t, routines.TechniqueDropset, workout.Sets[2].Technique)

	summary, err := lifter.WorkoutSummary(ctx, workout.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalSets)
	require.NotNil(t, summary.DurationSeconds)
	assert.Equal(t, 65*60, *summary.DurationSeconds)
	assert.InDelta(t, 100*8+102.5*7+60*10, summary.TotalVolume, 0.001)
	require.Len(t, summary.Exercises, 2)
	assert.Equal(t, squat.Name, summary.Exercises[0].ExerciseName)

	assert.Equal(t, 1, s.countWorkouts(t, routine.ID))
	assert.Equal(t, 3, s.countSets(t, workout.ID))

	// another lifter cannot log against this routine
	otherUsername, otherPassword := s.createLifter(ctx, t, admin.Token())
	other := s.loggedInClient(ctx, t, otherUsername, otherPassword)
	_, _, err = workoutlog.NewWorkflow(other, other, loc, metricsManager).Load(ctx, lifterIdentity, routine.ID)
	var serviceErr *workoutlog.ServiceError
	require.True(t, errors.As(err, &serviceErr))
	assert.Equal(t, http.StatusForbidden, serviceErr.StatusCode)

	payload, err := workoutlog.BuildPayload(loaded, form, sub, loc)
	require.NoError(t, err)
	_, err = other.CreateWorkout(ctx, auth.Identity{}, payload)
	require.True(t, errors.As(err, &serviceErr))
	assert.Equal(t, http.StatusForbidden, serviceErr.StatusCode)
	assert.Equal(t, 1, s.countWorkouts(t, routine.ID))

	var list workouts.ListResponse
	status = s.doJSON(ctx, t, http.MethodGet, "/workouts/page/1/size/10", other.Token(), nil, &list)
	require.Equal(t, http.StatusOK, status)
	assert.Zero(t, list.Total)
}

func (s *IntegrationTestSuite) TestWorkoutLog_HTTPSurface() {
	t := s.T()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	admin := s.loggedInClient(ctx, t, testUsername, testPassword)
	row := s.createExercise(ctx, t, admin.Token(), "Remo "+gofakeit.LetterN(5))

	var routine routines.Routine
	status := s.doJSON(ctx, t, http.MethodPost, "/routines", admin.Token(), map[string]any{
		"name":      "Espalda",
		"exercises": []map[string]any{{"exerciseId": row.ID, "sets": 1}},
	}, &routine)
	require.Equal(t, http.StatusCreated, status)

	var formResp workoutlog.FormResponse
	status = s.doJSON(ctx, t, http.MethodGet, "/log/routines/"+strconv.Itoa(routine.ID)+"/form", admin.Token(), nil, &formResp)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 1, formResp.Form.TotalSets())
	assert.NotEmpty(t, formResp.Submission.StartedAt)

	var form workoutlog.LogForm
	status = s.doJSON(ctx, t, http.MethodPost, "/log/form/ops", admin.Token(), map[string]any{
		"form":          formResp.Form,
		"op":            "add",
		"exerciseIndex": 0,
	}, &form)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 2, form.TotalSets())

	var failure workoutlog.SubmitFailure
	badForm := workoutlog.EditSet(form, 0, 1, workoutlog.FieldReps, "muchas")
	status = s.doJSON(ctx, t, http.MethodPost, "/log/submit", admin.Token(), map[string]any{
		"routineId": routine.ID,
		"form":      badForm,
		"submission": workoutlog.Submission{
			StartedAt:       "2026-03-03T08:00",
			DurationMinutes: "45",
		},
	}, &failure)
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, failure.Validation)
	assert.Equal(t, workoutlog.KindInvalidReps, failure.Validation.Kind)
	assert.Equal(t, 1, failure.Validation.SetIndex)

	form = workoutlog.EditSet(form, 0, 0, workoutlog.FieldWeight, "50")
	form = workoutlog.EditSet(form, 0, 1, workoutlog.FieldWeight, "55")

	var workout workouts.Workout
	status = s.doJSON(ctx, t, http.MethodPost, "/log/submit", admin.Token(), map[string]any{
		"routineId": routine.ID,
		"form":      form,
		"submission": workoutlog.Submission{
			StartedAt:       "2026-03-03T08:00",
			DurationMinutes: "45",
		},
	}, &workout)
	require.Equal(t, http.StatusCreated, status)
	assert.Nil(t, workout.CompletedAt)
	require.NotNil(t, workout.DurationSeconds)
	assert.Equal(t, 45*60, *workout.DurationSeconds)
	assert.Equal(t, 2, s.countSets(t, workout.ID))
}

func (s *IntegrationTestSuite) countWorkouts(t *testing.T, routineID int) int {
	t.Helper()
	var count int
	require.NoError(t, s.DB.QueryRow(`SELECT COUNT(*) FROM workout WHERE routine_id = $1`, routineID).Scan(&count))
	return count
}

func (s *IntegrationTestSuite) countSets(t *testing.T, workoutID int) int {
	t.Helper()
	var count int
	require.NoError(t, s.DB.QueryRow(`SELECT COUNT(*) FROM workout_set WHERE workout_id = $1`, workoutID).Scan(&count))
	return count
}
