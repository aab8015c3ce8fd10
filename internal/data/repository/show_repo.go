package repository

import (
	"context"
	"fmt"
	"time"

	"quickshow/internal/data/entity"
	"quickshow/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ShowRepository interface {
	Create(ctx context.Context, show *entity.Show) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Show, error)
	FindUpcoming(ctx context.Context, limit, offset int) ([]*entity.Show, error)
	CountUpcoming(ctx context.Context) (int64, error)

	// FindStartingBetween returns shows whose start time falls inside the
	// window. Used by the reminder scan against the authoritative show_time.
	FindStartingBetween(ctx context.Context, from, to time.Time) ([]*entity.Show, error)
}

type showRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewShowRepository(db database.PgxIface, log *zap.Logger) ShowRepository {
	return &showRepository{
		db:  db,
		log: log.With(zap.String("repository", "show")),
	}
}

func (r *showRepository) Create(ctx context.Context, show *entity.Show) error {
	query := `
		INSERT INTO shows (id, movie_title, show_time, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		show.ID,
		show.MovieTitle,
		show.ShowTime,
		show.Price,
		show.CreatedAt,
		show.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create show",
			zap.Error(err),
			zap.String("movie_title", show.MovieTitle),
		)
		return fmt.Errorf("create show %s: %w", show.ID.String(), err)
	}

	return nil
}

func (r *showRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Show, error) {
	query := `
		SELECT id, movie_title, show_time, price, created_at, updated_at
		FROM shows
		WHERE id = $1
	`

	var show entity.Show
	err := r.db.QueryRow(ctx, query, id).Scan(
		&show.ID,
		&show.MovieTitle,
		&show.ShowTime,
		&show.Price,
		&show.CreatedAt,
		&show.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find show by ID",
			zap.Error(err),
			zap.String("show_id", id.String()),
		)
		return nil, fmt.Errorf("find show by ID %s: %w", id.String(), err)
	}

	return &show, nil
}

func (r *showRepository) FindUpcoming(ctx context.Context, limit, offset int) ([]*entity.Show, error) {
	query := `
		SELECT id, movie_title, show_time, price, created_at, updated_at
		FROM shows
		WHERE show_time > NOW()
		ORDER BY show_time
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		r.log.Error("Failed to find upcoming shows", zap.Error(err))
		return nil, fmt.Errorf("find upcoming shows: %w", err)
	}
	defer rows.Close()

	return scanShows(rows)
}

func (r *showRepository) CountUpcoming(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM shows WHERE show_time > NOW()`

	var count int64
	if err := r.db.QueryRow(ctx, query).Scan(&count); err != nil {
		r.log.Error("Failed to count upcoming shows", zap.Error(err))
		return 0, fmt.Errorf("count upcoming shows: %w", err)
	}

	return count, nil
}

func (r *showRepository) FindStartingBetween(ctx context.Context, from, to time.Time) ([]*entity.Show, error) {
	query := `
		SELECT id, movie_title, show_time, price, created_at, updated_at
		FROM shows
		WHERE show_time >= $1 AND show_time <= $2
		ORDER BY show_time
	`

	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		r.log.Error("Failed to find shows in window",
			zap.Error(err),
			zap.Time("from", from),
			zap.Time("to", to),
		)
		return nil, fmt.Errorf("find shows between %s and %s: %w", from, to, err)
	}
	defer rows.Close()

	return scanShows(rows)
}

func scanShows(rows pgx.Rows) ([]*entity.Show, error) {
	var shows []*entity.Show
	for rows.Next() {
		var show entity.Show
		err := rows.Scan(
			&show.ID,
			&show.MovieTitle,
			&show.ShowTime,
			&show.Price,
			&show.CreatedAt,
			&show.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan show row: %w", err)
		}
		shows = append(shows, &show)
	}

	return shows, nil
}
