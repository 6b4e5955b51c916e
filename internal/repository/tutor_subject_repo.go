package repository

import (
	"context"

	"github.com/sabirama/tutorial-hub-sub000/internal/models"
)

// TutorSubjectRepository manages the subjects a tutor offers to teach.
type TutorSubjectRepository struct {
	db DBTX
}

func NewTutorSubjectRepository(db DBTX) *TutorSubjectRepository {
	return &TutorSubjectRepository{db: db}
}

func (r *TutorSubjectRepository) Add(ctx context.Context, tutorID, subjectID int64) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO tutor_subjects (tutor_id, subject_id)
		VALUES ($1, $2)
		ON CONFLICT (tutor_id, subject_id) DO NOTHING
	`, tutorID, subjectID)
	return err
}

func (r *TutorSubjectRepository) Remove(ctx context.Context, tutorID, subjectID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM tutor_subjects
		WHERE tutor_id = $1 AND subject_id = $2
	`, tutorID, subjectID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *TutorSubjectRepository) ListForTutor(ctx context.Context, tutorID int64) ([]models.Subject, error) {
	sql := `
		SELECT s.id, s.name, s.description, s.category, s.created_at
		FROM tutor_subjects ts
		JOIN subjects s ON s.id = ts.subject_id
		WHERE ts.tutor_id = $1
		ORDER BY s.name ASC
	`

	rows, err := r.db.Query(ctx, sql, tutorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subjects := make([]models.Subject, 0)
	for rows.Next() {
		var subject models.Subject
		if err := rows.Scan(
			&subject.ID,
			&subject.Name,
			&subject.Description,
			&subject.Category,
			&subject.CreatedAt,
		); err != nil {
			return nil, err
		}
		subjects = append(subjects, subject)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return subjects, nil
}

// SubjectIDsByTutor returns the offered subject ids for every tutor that has
// any, keyed by tutor account id. Feeds the recommendation scoring.
func (r *TutorSubjectRepository) SubjectIDsByTutor(ctx context.Context) (map[int64][]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT tutor_id, subject_id FROM tutor_subjects`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byTutor := make(map[int64][]int64)
	for rows.Next() {
		var tutorID, subjectID int64
		if err := rows.Scan(&tutorID, &subjectID); err != nil {
			return nil, err
		}
		byTutor[tutorID] = append(byTutor[tutorID], subjectID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return byTutor, nil
}

// SubjectIDsOfInterestForParent collects the subjects appearing in the
// parent's sessions and active relationships.
func (r *TutorSubjectRepository) SubjectIDsOfInterestForParent(ctx context.Context, parentID int64) ([]int64, error) {
	sql := `
		SELECT DISTINCT subject_id FROM (
			SELECT subject_id FROM sessions WHERE parent_id = $1
			UNION
			SELECT subject_id FROM relationships WHERE parent_id = $1 AND status = 'active'
		) interest
	`

	rows, err := r.db.Query(ctx, sql, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}
