package repository

import (
	"context"

	"github.com/sabirama/tutorial-hub-sub000/internal/models"
	"github.com/sabirama/tutorial-hub-sub000/internal/query"
)

type SubjectRepository struct {
	db DBTX
}

func NewSubjectRepository(db DBTX) *SubjectRepository {
	return &SubjectRepository{db: db}
}

func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	sql, args, err := query.Statement{
		Action: query.Create,
		Table:  "subjects",
		Data: map[string]any{
			"name":        subject.Name,
			"description": subject.Description,
			"category":    subject.Category,
		},
	}.Build()
	if err != nil {
		return err
	}
	return r.db.QueryRow(ctx, sql, args...).Scan(&subject.ID)
}

func (r *SubjectRepository) GetByID(ctx context.Context, id int64) (*models.Subject, error) {
	sql := `SELECT id, name, description, category, created_at FROM subjects WHERE id = $1`
	return r.scanSubject(r.db.QueryRow(ctx, sql, id))
}

func (r *SubjectRepository) List(ctx context.Context, category string) ([]models.Subject, error) {
	where := map[string]any{}
	if category != "" {
		where["category"] = category
	}

	sql, args, err := query.Statement{
		Action:   query.Read,
		Table:    "subjects",
		Columns:  []string{"id", "name", "description", "category", "created_at"},
		Where:    where,
		OrderBy:  "name",
		Sortable: []string{"name", "category"},
	}.Build()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subjects := make([]models.Subject, 0)
	for rows.Next() {
		subject, err := r.scanSubject(rows)
		if err != nil {
			return nil, err
		}
		subjects = append(subjects, *subject)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return subjects, nil
}

type UpdateSubjectInput struct {
	Name        *string
	Description *string
	Category    *string
}

func (r *SubjectRepository) Update(ctx context.Context, id int64, input UpdateSubjectInput) (*models.Subject, error) {
	sql := `
		UPDATE subjects
		SET name = COALESCE($1, name),
			description = COALESCE($2, description),
			category = COALESCE($3, category)
		WHERE id = $4
		RETURNING id, name, description, category, created_at
	`
	return r.scanSubject(r.db.QueryRow(ctx, sql, input.Name, input.Description, input.Category, id))
}

// Delete fails with a foreign-key violation when sessions or relationships
// still reference the subject; callers map that to a conflict response.
func (r *SubjectRepository) Delete(ctx context.Context, id int64) (bool, error) {
	sql, args, err := query.Statement{
		Action: query.Destroy,
		Table:  "subjects",
		Where:  map[string]any{"id": id},
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

func (r *SubjectRepository) scanSubject(row interface{ Scan(dest ...any) error }) (*models.Subject, error) {
	var subject models.Subject
	err := row.Scan(
		&subject.ID,
		&subject.Name,
		&subject.Description,
		&subject.Category,
		&subject.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &subject, nil
}
