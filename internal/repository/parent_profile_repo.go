package repository

import (
	"context"

	"github.com/sabirama/tutorial-hub-sub000/internal/models"
)

type ParentProfileRepository struct {
	db DBTX
}

func NewParentProfileRepository(db DBTX) *ParentProfileRepository {
	return &ParentProfileRepository{db: db}
}

const parentProfileColumns = "id, account_id, full_name, contact_number, location, bio, avatar_url, created_at, updated_at"

func (r *ParentProfileRepository) Create(ctx context.Context, accountID int64, fullName, contactNumber *string) error {
	sql := `INSERT INTO parent_profiles (account_id, full_name, contact_number) VALUES ($1, $2, $3)`
	_, err := r.db.Exec(ctx, sql, accountID, fullName, contactNumber)
	return err
}

func (r *ParentProfileRepository) GetByAccountID(ctx context.Context, accountID int64) (*models.ParentProfile, error) {
	sql := `SELECT ` + parentProfileColumns + ` FROM parent_profiles WHERE account_id = $1`
	return r.scanProfile(r.db.QueryRow(ctx, sql, accountID))
}

type UpdateParentProfileInput struct {
	FullName      *string
	ContactNumber *string
	Location      *string
	Bio           *string
	AvatarURL     *string
}

func (r *ParentProfileRepository) UpdatePartial(ctx context.Context, accountID int64, input UpdateParentProfileInput) (*models.ParentProfile, error) {
	sql := `
		UPDATE parent_profiles
		SET full_name = COALESCE($1, full_name),
			contact_number = COALESCE($2, contact_number),
			location = COALESCE($3, location),
			bio = COALESCE($4, bio),
			avatar_url = COALESCE($5, avatar_url),
			updated_at = NOW()
		WHERE account_id = $6
		RETURNING ` + parentProfileColumns
	return r.scanProfile(r.db.QueryRow(ctx, sql,
		input.FullName,
		input.ContactNumber,
		input.Location,
		input.Bio,
		input.AvatarURL,
		accountID,
	))
}

func (r *ParentProfileRepository) scanProfile(row interface{ Scan(dest ...any) error }) (*models.ParentProfile, error) {
	var profile models.ParentProfile
	err := row.Scan(
		&profile.ID,
		&profile.AccountID,
		&profile.FullName,
		&profile.ContactNumber,
		&profile.Location,
		&profile.Bio,
		&profile.AvatarURL,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
