package repository

import (
	"context"

	"github.com/sabirama/tutorial-hub-sub000/internal/models"
	"github.com/sabirama/tutorial-hub-sub000/internal/query"
)

type ChildRepository struct {
	db DBTX
}

func NewChildRepository(db DBTX) *ChildRepository {
	return &ChildRepository{db: db}
}

const childColumns = "id, parent_id, full_name, grade_level, age, created_at, updated_at"

func (r *ChildRepository) Create(ctx context.Context, child *models.Child) error {
	sql := `
		INSERT INTO children (parent_id, full_name, grade_level, age)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRow(ctx, sql,
		child.ParentID,
		child.FullName,
		child.GradeLevel,
		child.Age,
	).Scan(&child.ID, &child.CreatedAt, &child.UpdatedAt)
}

func (r *ChildRepository) GetByID(ctx context.Context, id int64) (*models.Child, error) {
	sql := `SELECT ` + childColumns + ` FROM children WHERE id = $1`
	return r.scanChild(r.db.QueryRow(ctx, sql, id))
}

func (r *ChildRepository) ListByParent(ctx context.Context, parentID int64) ([]models.Child, error) {
	sql, args, err := query.Statement{
		Action:   query.Read,
		Table:    "children",
		Columns:  []string{"id", "parent_id", "full_name", "grade_level", "age", "created_at", "updated_at"},
		Where:    map[string]any{"parent_id": parentID},
		OrderBy:  "full_name",
		Sortable: []string{"full_name", "created_at"},
	}.Build()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	children := make([]models.Child, 0)
	for rows.Next() {
		child, err := r.scanChild(rows)
		if err != nil {
			return nil, err
		}
		children = append(children, *child)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return children, nil
}

type UpdateChildInput struct {
	FullName   *string
	GradeLevel *string
	Age        *int
}

func (r *ChildRepository) Update(ctx context.Context, id, parentID int64, input UpdateChildInput) (*models.Child, error) {
	sql := `
		UPDATE children
		SET full_name = COALESCE($1, full_name),
			grade_level = COALESCE($2, grade_level),
			age = COALESCE($3, age),
			updated_at = NOW()
		WHERE id = $4 AND parent_id = $5
		RETURNING ` + childColumns
	return r.scanChild(r.db.QueryRow(ctx, sql, input.FullName, input.GradeLevel, input.Age, id, parentID))
}

// Delete removes the row only when it belongs to the given parent.
func (r *ChildRepository) Delete(ctx context.Context, id, parentID int64) (bool, error) {
	sql, args, err := query.Statement{
		Action: query.Destroy,
		Table:  "children",
		Where:  map[string]any{"id": id, "parent_id": parentID},
	}.Build()
	if err != nil {
		return false, err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ChildRepository) scanChild(row interface{ Scan(dest ...any) error }) (*models.Child, error) {
	var child models.Child
	err := row.Scan(
		&child.ID,
		&child.ParentID,
		&child.FullName,
		&child.GradeLevel,
		&child.Age,
		&child.CreatedAt,
		&child.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &child, nil
}
