package repository

import (
	"context"

	"github.com/sabirama/tutorial-hub-sub000/internal/models"
)

type RatingRepository struct {
	db DBTX
}

func NewRatingRepository(db DBTX) *RatingRepository {
	return &RatingRepository{db: db}
}

const ratingColumns = "id, parent_id, tutor_id, direction, score, comment, created_at, updated_at"

type UpsertRatingInput struct {
	ParentID  int64
	TutorID   int64
	Direction string
	Score     int
	Comment   *string
}

// Upsert writes a rating in one statement. The unique constraint on
// (parent_id, tutor_id, direction) means concurrent identical submissions
// settle on a single row instead of racing into duplicates.
func (r *RatingRepository) Upsert(ctx context.Context, input UpsertRatingInput) (*models.Rating, error) {
	sql := `
		INSERT INTO ratings (parent_id, tutor_id, direction, score, comment)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (parent_id, tutor_id, direction)
		DO UPDATE SET score = EXCLUDED.score, comment = EXCLUDED.comment, updated_at = NOW()
		RETURNING ` + ratingColumns
	return r.scanRating(r.db.QueryRow(ctx, sql,
		input.ParentID,
		input.TutorID,
		input.Direction,
		input.Score,
		input.Comment,
	))
}

func (r *RatingRepository) ListForTutor(ctx context.Context, tutorID int64) ([]models.Rating, error) {
	sql := `
		SELECT ` + ratingColumns + `
		FROM ratings
		WHERE tutor_id = $1 AND direction = 'parent_to_tutor'
		ORDER BY updated_at DESC, id DESC
	`
	return r.listRatings(ctx, sql, tutorID)
}

func (r *RatingRepository) ListForParent(ctx context.Context, parentID int64) ([]models.Rating, error) {
	sql := `
		SELECT ` + ratingColumns + `
		FROM ratings
		WHERE parent_id = $1 AND direction = 'tutor_to_parent'
		ORDER BY updated_at DESC, id DESC
	`
	return r.listRatings(ctx, sql, parentID)
}

// AverageForTutor returns the parent-to-tutor mean score, or false when the
// tutor has no ratings yet.
func (r *RatingRepository) AverageForTutor(ctx context.Context, tutorID int64) (float64, bool, error) {
	sql := `
		SELECT COALESCE(AVG(score), 0), COUNT(*)
		FROM ratings
		WHERE tutor_id = $1 AND direction = 'parent_to_tutor'
	`
	var average float64
	var count int
	if err := r.db.QueryRow(ctx, sql, tutorID).Scan(&average, &count); err != nil {
		return 0, false, err
	}
	return average, count > 0, nil
}

func (r *RatingRepository) listRatings(ctx context.Context, sql string, arg any) ([]models.Rating, error) {
	rows, err := r.db.Query(ctx, sql, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ratings := make([]models.Rating, 0)
	for rows.Next() {
		rating, err := r.scanRating(rows)
		if err != nil {
			return nil, err
		}
		ratings = append(ratings, *rating)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ratings, nil
}

func (r *RatingRepository) scanRating(row interface{ Scan(dest ...any) error }) (*models.Rating, error) {
	var rating models.Rating
	err := row.Scan(
		&rating.ID,
		&rating.ParentID,
		&rating.TutorID,
		&rating.Direction,
		&rating.Score,
		&rating.Comment,
		&rating.CreatedAt,
		&rating.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rating, nil
}
