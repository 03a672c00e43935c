package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/2beens/gymlog/internal/telemetry/tracing"
	"github.com/2beens/gymlog/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrExerciseExists   = errors.New("exercise with the same name already exists")
)

const selectExercises = `
	SELECT
		e.id, e.name, e.description, e.video_url, e.created_at,
		COALESCE(array_agg(a.alias ORDER BY a.id) FILTER (WHERE a.alias IS NOT NULL), '{}') AS aliases
	FROM exercise e
	LEFT JOIN exercise_alias a ON a.exercise_id = e.id`

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// likePattern escapes ILIKE wildcards in the user query and wraps it for a substring match.
func likePattern(query string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(query) + "%"
}

// Search matches the query against exercise names and aliases, case-insensitively.
// An empty query returns all exercises.
func (r *Repo) Search(ctx context.Context, query string) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.search")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("query", query))

	rows, err := r.db.Query(
		ctx,
		selectExercises+`
		WHERE $1::text = ''
			OR e.name ILIKE $2
			OR EXISTS (
				SELECT 1 FROM exercise_alias sa WHERE sa.exercise_id = e.id AND sa.alias ILIKE $2
			)
		GROUP BY e.id
		ORDER BY e.name;`,
		query, likePattern(query),
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	return r.rows2exercises(rows)
}

func (r *Repo) List(ctx context.Context, params ListParams) (_ []Exercise, total int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("page", params.Page))
	span.SetAttributes(attribute.Int("size", params.Size))

	if params.Page < 1 {
		return nil, -1, errors.New("page must be greater than 0")
	}
	if params.Size < 1 {
		return nil, -1, errors.New("size must be greater than 0")
	}

	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM exercise;`).Scan(&total); err != nil {
		return nil, -1, fmt.Errorf("count: %w", err)
	}
	span.SetAttributes(attribute.Int("count_all", total))

	rows, err := r.db.Query(
		ctx,
		selectExercises+`
		GROUP BY e.id
		ORDER BY e.name
		LIMIT $1
		OFFSET $2;`,
		params.Size, (params.Page-1)*params.Size,
	)
	if err != nil {
		return nil, -1, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	exercises, err := r.rows2exercises(rows)
	if err != nil {
		return nil, -1, err
	}
	return exercises, total, nil
}

func (r *Repo) Get(ctx context.Context, id int) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	rows, err := r.db.Query(
		ctx,
		selectExercises+`
		WHERE e.id = $1
		GROUP BY e.id;`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	exercises, err := r.rows2exercises(rows)
	if err != nil {
		return nil, err
	}
	if len(exercises) != 1 {
		return nil, ErrExerciseNotFound
	}

	return &exercises[0], nil
}

func (r *Repo) Create(ctx context.Context, exercise Exercise) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

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
		`INSERT INTO exercise (name, description, video_url)
			VALUES ($1, $2, $3)
			RETURNING id, created_at;`,
		exercise.Name, exercise.Description, exercise.VideoURL,
	).Scan(&exercise.ID, &exercise.CreatedAt); err != nil {
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrExerciseExists
		}
		return nil, fmt.Errorf("insert exercise: %w", err)
	}
	span.SetAttributes(attribute.Int("exercise.id", exercise.ID))

	if err := insertAliases(ctx, tx, exercise.ID, exercise.Aliases); err != nil {
		return nil, err
	}

	return &exercise, nil
}

// Update replaces the exercise fields and its whole alias set in one transaction.
func (r *Repo) Update(ctx context.Context, exercise *Exercise) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", exercise.ID))

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

	tag, err := tx.Exec(
		ctx,
		`UPDATE exercise SET name = $1, description = $2, video_url = $3 WHERE id = $4;`,
		exercise.Name, exercise.Description, exercise.VideoURL, exercise.ID,
	)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return ErrExerciseExists
		}
		return fmt.Errorf("update exercise: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrExerciseNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM exercise_alias WHERE exercise_id = $1;`, exercise.ID); err != nil {
		return fmt.Errorf("delete aliases: %w", err)
	}

	return insertAliases(ctx, tx, exercise.ID, exercise.Aliases)
}

// Delete removes the exercise, aliases go with it (on delete cascade).
func (r *Repo) Delete(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM exercise WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrExerciseNotFound
	}
	return nil
}

func insertAliases(ctx context.Context, tx pgx.Tx, exerciseID int, aliases []string) error {
	if len(aliases) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, alias := range aliases {
		batch.Queue(
			`INSERT INTO exercise_alias (exercise_id, alias) VALUES ($1, $2);`,
			exerciseID, alias,
		)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert aliases: %w", err)
	}
	return nil
}

func (r *Repo) rows2exercises(rows pgx.Rows) ([]Exercise, error) {
	var exercises []Exercise
	for rows.Next() {
		var e Exercise
		if err := rows.Scan(
			&e.ID, &e.Name, &e.Description, &e.VideoURL, &e.CreatedAt, &e.Aliases,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		exercises = append(exercises, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return exercises, nil
}
