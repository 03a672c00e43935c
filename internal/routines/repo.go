package routines

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

var ErrRoutineNotFound = errors.New("routine not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Create(ctx context.Context, routine Routine) (_ *Routine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", routine.UserID))

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
		`INSERT INTO routine (user_id, name, description)
			VALUES ($1, $2, $3)
			RETURNING id, created_at, updated_at;`,
		routine.UserID, routine.Name, routine.Description,
	).Scan(&routine.ID, &routine.CreatedAt, &routine.UpdatedAt); err != nil {
		return nil, storeError("insert routine", err)
	}
	span.SetAttributes(attribute.Int("routine.id", routine.ID))

	if err := insertEntries(ctx, tx, routine.ID, routine.Exercises); err != nil {
		return nil, err
	}

	return &routine, nil
}

func (r *Repo) Get(ctx context.Context, id int) (_ *Routine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	var routine Routine
	if err := r.db.QueryRow(
		ctx,
		`SELECT id, user_id, name, description, created_at, updated_at FROM routine WHERE id = $1;`,
		id,
	).Scan(
		&routine.ID, &routine.UserID, &routine.Name, &routine.Description, &routine.CreatedAt, &routine.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoutineNotFound
		}
		return nil, fmt.Errorf("get routine: %w", err)
	}

	entries, err := r.entries(ctx, []int{id})
	if err != nil {
		return nil, err
	}
	routine.Exercises = entries[id]
	if routine.Exercises == nil {
		routine.Exercises = []RoutineExercise{}
	}

	return &routine, nil
}

// List returns the routines of the user with their entries, or all routines when userID is nil.
func (r *Repo) List(ctx context.Context, userID *int) (_ []Routine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	if userID != nil {
		span.SetAttributes(attribute.Int("user.id", *userID))
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, name, description, created_at, updated_at
			FROM routine
			WHERE ($1::integer IS NULL OR user_id = $1)
			ORDER BY name, id;`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var (
		routines []Routine
		ids      []int
	)
	for rows.Next() {
		var routine Routine
		if err := rows.Scan(
			&routine.ID, &routine.UserID, &routine.Name, &routine.Description, &routine.CreatedAt, &routine.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		routines = append(routines, routine)
		ids = append(ids, routine.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	rows.Close()

	if len(routines) == 0 {
		return []Routine{}, nil
	}

	entries, err := r.entries(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range routines {
		routines[i].Exercises = entries[routines[i].ID]
		if routines[i].Exercises == nil {
			routines[i].Exercises = []RoutineExercise{}
		}
	}

	return routines, nil
}

// Update overwrites the routine row and replaces all of its entries in one transaction.
func (r *Repo) Update(ctx context.Context, routine *Routine) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", routine.ID))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
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
		`UPDATE routine SET name = $1, description = $2, updated_at = now()
			WHERE id = $3
			RETURNING updated_at;`,
		routine.Name, routine.Description, routine.ID,
	).Scan(&routine.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrRoutineNotFound
		}
		return storeError("update routine", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM routine_exercise WHERE routine_id = $1;`, routine.ID); err != nil {
		return fmt.Errorf("delete routine entries: %w", err)
	}

	return insertEntries(ctx, tx, routine.ID, routine.Exercises)
}

func (r *Repo) Delete(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(ctx, `DELETE FROM routine WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRoutineNotFound
	}
	return nil
}

func (r *Repo) entries(ctx context.Context, routineIDs []int) (map[int][]RoutineExercise, error) {
	rows, err := r.db.Query(
		ctx,
		`SELECT
				routine_id, id, exercise_id, exercise_name, position, sets,
				rep_range_min, rep_range_max, technique, rest_seconds
			FROM routine_exercise
			WHERE routine_id = ANY($1)
			ORDER BY routine_id, position;`,
		routineIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	entries := make(map[int][]RoutineExercise, len(routineIDs))
	for rows.Next() {
		var (
			routineID int
			e         RoutineExercise
		)
		if err := rows.Scan(
			&routineID, &e.ID, &e.ExerciseID, &e.ExerciseName, &e.Position, &e.Sets,
			&e.RepRangeMin, &e.RepRangeMax, &e.Technique, &e.RestSeconds,
		); err != nil {
			return nil, fmt.Errorf("entries scan: %w", err)
		}
		entries[routineID] = append(entries[routineID], e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("entries rows: %w", err)
	}

	return entries, nil
}

func insertEntries(ctx context.Context, tx pgx.Tx, routineID int, entries []RoutineExercise) error {
	if len(entries) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i := range entries {
		e := &entries[i]
		batch.Queue(
			`INSERT INTO routine_exercise
				(routine_id, exercise_id, exercise_name, position, sets, rep_range_min, rep_range_max, technique, rest_seconds)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
				RETURNING id;`,
			routineID, e.ExerciseID, e.ExerciseName, e.Position, e.Sets,
			e.RepRangeMin, e.RepRangeMax, e.Technique, e.RestSeconds,
		).QueryRow(func(row pgx.Row) error {
			return row.Scan(&e.ID)
		})
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return storeError("insert routine entries", err)
	}
	return nil
}

// storeError turns values rejected by the schema into ErrInvalidRoutine.
func storeError(op string, err error) error {
	if reason, ok := pkg.ConstraintViolation(err); ok {
		return fmt.Errorf("%w: %s", ErrInvalidRoutine, reason)
	}
	return fmt.Errorf("%s: %w", op, err)
}
