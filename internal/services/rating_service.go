package services

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sabirama/tutorial-hub-sub000/internal/models"
	"github.com/sabirama/tutorial-hub-sub000/internal/repository"
)

type RatingService struct {
	db          *pgxpool.Pool
	ratingRepo  *repository.RatingRepository
	accountRepo accountReader
}

func NewRatingService(db *pgxpool.Pool, ratingRepo *repository.RatingRepository, accountRepo accountReader) *RatingService {
	return &RatingService{
		db:          db,
		ratingRepo:  ratingRepo,
		accountRepo: accountRepo,
	}
}

type SubmitRatingInput struct {
	SubjectAccountID int64
	Score            int
	Comment          *string
}

// SubmitRating records the actor's rating of the account on the other side.
// The write is a single upsert, and for parent-to-tutor ratings the tutor's
// aggregate is recomputed in the same transaction.
func (s *RatingService) SubmitRating(ctx context.Context, actorID int64, role string, input SubmitRatingInput) (*models.Rating, error) {
	if input.Score < 1 || input.Score > 5 {
		return nil, ErrInvalidInput
	}
	if input.SubjectAccountID <= 0 || input.SubjectAccountID == actorID {
		return nil, ErrInvalidInput
	}
	if input.Comment != nil && strings.TrimSpace(*input.Comment) == "" {
		input.Comment = nil
	}

	var direction string
	var parentID, tutorID int64
	switch role {
	case models.RoleParent:
		direction = models.RatingParentToTutor
		parentID, tutorID = actorID, input.SubjectAccountID
	case models.RoleTutor:
		direction = models.RatingTutorToParent
		parentID, tutorID = input.SubjectAccountID, actorID
	default:
		return nil, ErrForbidden
	}

	other, err := s.accountRepo.GetByID(ctx, input.SubjectAccountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, counterpartNotFound(role)
		}
		return nil, err
	}
	if role == models.RoleParent && other.Role != models.RoleTutor {
		return nil, ErrInvalidInput
	}
	if role == models.RoleTutor && other.Role != models.RoleParent {
		return nil, ErrInvalidInput
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txRatingRepo := repository.NewRatingRepository(tx)

	rating, err := txRatingRepo.Upsert(ctx, repository.UpsertRatingInput{
		ParentID:  parentID,
		TutorID:   tutorID,
		Direction: direction,
		Score:     input.Score,
		Comment:   input.Comment,
	})
	if err != nil {
		return nil, err
	}

	if direction == models.RatingParentToTutor {
		average, hasRatings, err := txRatingRepo.AverageForTutor(ctx, tutorID)
		if err != nil {
			return nil, err
		}
		if hasRatings {
			txTutorRepo := repository.NewTutorProfileRepository(tx)
			if err := txTutorRepo.SetRating(ctx, tutorID, average); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return rating, nil
}

func (s *RatingService) ListTutorRatings(ctx context.Context, tutorID int64) ([]models.Rating, error) {
	if tutorID <= 0 {
		return nil, ErrInvalidInput
	}
	return s.ratingRepo.ListForTutor(ctx, tutorID)
}

func (s *RatingService) ListParentRatings(ctx context.Context, parentID int64) ([]models.Rating, error) {
	if parentID <= 0 {
		return nil, ErrInvalidInput
	}
	return s.ratingRepo.ListForParent(ctx, parentID)
}
