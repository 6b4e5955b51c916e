package repository

import (
	"context"

	"github.com/sabirama/tutorial-hub-sub000/internal/models"
)

type RelationshipRepository struct {
	db DBTX
}

func NewRelationshipRepository(db DBTX) *RelationshipRepository {
	return &RelationshipRepository{db: db}
}

const relationshipColumns = "id, parent_id, tutor_id, subject_id, status, created_at, updated_at"

// CreateOrReactivate inserts the link or flips an inactive one back to active.
// One statement, so concurrent identical requests converge on the same row.
func (r *RelationshipRepository) CreateOrReactivate(ctx context.Context, parentID, tutorID, subjectID int64) (*models.Relationship, error) {
	sql := `
		INSERT INTO relationships (parent_id, tutor_id, subject_id, status)
		VALUES ($1, $2, $3, 'active')
		ON CONFLICT (parent_id, tutor_id, subject_id)
		DO UPDATE SET status = 'active', updated_at = NOW()
		RETURNING ` + relationshipColumns
	return r.scanRelationship(r.db.QueryRow(ctx, sql, parentID, tutorID, subjectID))
}

func (r *RelationshipRepository) GetByID(ctx context.Context, id int64) (*models.Relationship, error) {
	sql := `SELECT ` + relationshipColumns + ` FROM relationships WHERE id = $1`
	return r.scanRelationship(r.db.QueryRow(ctx, sql, id))
}

func (r *RelationshipRepository) UpdateStatus(ctx context.Context, id int64, status string) (*models.Relationship, error) {
	sql := `
		UPDATE relationships
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + relationshipColumns
	return r.scanRelationship(r.db.QueryRow(ctx, sql, id, status))
}

func (r *RelationshipRepository) ListForAccount(ctx context.Context, accountID int64, role string) ([]models.Relationship, error) {
	actorColumn := "parent_id"
	if role == models.RoleTutor {
		actorColumn = "tutor_id"
	}

	sql := `
		SELECT ` + relationshipColumns + `
		FROM relationships
		WHERE ` + actorColumn + ` = $1
		ORDER BY updated_at DESC, id DESC
	`

	rows, err := r.db.Query(ctx, sql, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	relationships := make([]models.Relationship, 0)
	for rows.Next() {
		relationship, err := r.scanRelationship(rows)
		if err != nil {
			return nil, err
		}
		relationships = append(relationships, *relationship)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return relationships, nil
}

func (r *RelationshipRepository) scanRelationship(row interface{ Scan(dest ...any) error }) (*models.Relationship, error) {
	var relationship models.Relationship
	err := row.Scan(
		&relationship.ID,
		&relationship.ParentID,
		&relationship.TutorID,
		&relationship.SubjectID,
		&relationship.Status,
		&relationship.CreatedAt,
		&relationship.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &relationship, nil
}
