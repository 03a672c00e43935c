package workouts

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/gymlog/internal/telemetry/tracing"
	"github.com/2beens/gymlog/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var ErrWorkoutNotFound = errors.New("workout not found")

const selectWorkouts = `SELECT
		id, user_id, routine_id, routine_name, started_at, completed_at, duration_seconds, notes, created_at
	FROM workout`

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// Create stores the workout and all of its sets in a single transaction.
func (r *Repo) Create(ctx context.Context, workout Workout) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", workout.UserID))
	span.SetAttributes(attribute.Int("sets", len(workout.Sets)))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		err = tx.Commit(ctx)
	}()

	if err := tx.QueryRow(
		ctx,
		`INSERT INTO workout (user_id, routine_id, routine_name, started_at, completed_at, duration_seconds, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at;`,
		workout.UserID, workout.RoutineID, workout.RoutineName,
		workout.StartedAt, workout.CompletedAt, workout.DurationSeconds, workout.Notes,
	).Scan(&workout.ID, &workout.CreatedAt); err != nil {
		return nil, storeError("insert workout", err)
	}
	span.SetAttributes(attribute.Int("workout.id", workout.ID))

	if len(workout.Sets) == 0 {
		return &workout, nil
	}

	batch := &pgx.Batch{}
	for i := range workout.Sets {
		s := &workout.Sets[i]
		s.WorkoutID = workout.ID
		batch.Queue(
			`INSERT INTO workout_set
				(workout_id, exercise_id, exercise_name, set_number, weight, reps, technique, rest_seconds, completed_at)
				VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8, $9)
				RETURNING id, weight::float8;`,
			s.WorkoutID, s.ExerciseID, s.ExerciseName, s.SetNumber, s.Weight,
			s.Reps, s.Technique, s.RestSeconds, s.CompletedAt,
		).QueryRow(func(row pgx.Row) error {
			// weight comes back rounded to the column precision
			return row.Scan(&s.ID, &s.Weight)
		})
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return nil, storeError("insert workout sets", err)
	}

	return &workout, nil
}

func (r *Repo) Get(ctx context.Context, id int) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	workout, err := scanWorkout(r.db.QueryRow(ctx, selectWorkouts+` WHERE id = $1;`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWorkoutNotFound
		}
		return nil, fmt.Errorf("get workout: %w", err)
	}

	sets, err := r.sets(ctx, []int{id})
	if err != nil {
		return nil, err
	}
	workout.Sets = sets[id]
	if workout.Sets == nil {
		workout.Sets = []WorkoutSet{}
	}

	return &workout, nil
}

// List returns one page of workouts, newest first, together with the total count.
// A nil userID lists the workouts of all users.
func (r *Repo) List(ctx context.Context, userID *int, params ListParams) (_ []Workout, _ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("page", params.Page))
	span.SetAttributes(attribute.Int("size", params.Size))

	var total int
	if err := r.db.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM workout WHERE ($1::integer IS NULL OR user_id = $1);`,
		userID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count workouts: %w", err)
	}

	rows, err := r.db.Query(
		ctx,
		selectWorkouts+`
			WHERE ($1::integer IS NULL OR user_id = $1)
			ORDER BY started_at DESC, id DESC
			LIMIT $2 OFFSET $3;`,
		userID, params.Size, (params.Page-1)*params.Size,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var (
		workouts []Workout
		ids      []int
	)
	for rows.Next() {
		workout, err := scanWorkout(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("rows scan: %w", err)
		}
		workouts = append(workouts, workout)
		ids = append(ids, workout.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows: %w", err)
	}
	rows.Close()

	if len(workouts) == 0 {
		return []Workout{}, total, nil
	}

	sets, err := r.sets(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range workouts {
		workouts[i].Sets = sets[workouts[i].ID]
		if workouts[i].Sets == nil {
			workouts[i].Sets = []WorkoutSet{}
		}
	}

	return workouts, total, nil
}

func (r *Repo) Delete(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(ctx, `DELETE FROM workout WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrWorkoutNotFound
	}
	return nil
}

func (r *Repo) sets(ctx context.Context, workoutIDs []int) (map[int][]WorkoutSet, error) {
	rows, err := r.db.Query(
		ctx,
		`SELECT
				id, workout_id, exercise_id, exercise_name, set_number,
				weight::float8, reps, technique, rest_seconds, completed_at
			FROM workout_set
			WHERE workout_id = ANY($1)
			ORDER BY workout_id, id;`,
		workoutIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("query sets: %w", err)
	}
	defer rows.Close()

	sets := make(map[int][]WorkoutSet, len(workoutIDs))
	for rows.Next() {
		var s WorkoutSet
		if err := rows.Scan(
			&s.ID, &s.WorkoutID, &s.ExerciseID, &s.ExerciseName, &s.SetNumber,
			&s.Weight, &s.Reps, &s.Technique, &s.RestSeconds, &s.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("sets scan: %w", err)
		}
		sets[s.WorkoutID] = append(sets[s.WorkoutID], s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sets rows: %w", err)
	}

	return sets, nil
}

// storeError turns values rejected by the schema into ErrInvalidWorkout.
func storeError(op string, err error) error {
	if reason, ok := pkg.ConstraintViolation(err); ok {
		return fmt.Errorf("%w: %s", ErrInvalidWorkout, reason)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func scanWorkout(row pgx.Row) (Workout, error) {
	var w Workout
	err := row.Scan(
		&w.ID, &w.UserID, &w.RoutineID, &w.RoutineName,
		&w.StartedAt, &w.CompletedAt, &w.DurationSeconds, &w.Notes, &w.CreatedAt,
	)
	return w, err
}
