package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/sabirama/tutorial-hub-sub000/internal/models"
)

type TutorProfileRepository struct {
	db DBTX
}

func NewTutorProfileRepository(db DBTX) *TutorProfileRepository {
	return &TutorProfileRepository{db: db}
}

const tutorProfileColumns = "id, account_id, full_name, contact_number, location, bio, avatar_url, course_of_study, hourly_rate, rating, created_at, updated_at"

func (r *TutorProfileRepository) Create(ctx context.Context, accountID int64, fullName, contactNumber *string) error {
	sql := `INSERT INTO tutor_profiles (account_id, full_name, contact_number) VALUES ($1, $2, $3)`
	_, err := r.db.Exec(ctx, sql, accountID, fullName, contactNumber)
	return err
}

func (r *TutorProfileRepository) GetByAccountID(ctx context.Context, accountID int64) (*models.TutorProfile, error) {
	sql := `SELECT ` + tutorProfileColumns + ` FROM tutor_profiles WHERE account_id = $1`
	return r.scanProfile(r.db.QueryRow(ctx, sql, accountID))
}

type UpdateTutorProfileInput struct {
	FullName      *string
	ContactNumber *string
	Location      *string
	Bio           *string
	AvatarURL     *string
	CourseOfStudy *string
	HourlyRate    *float64
}

func (r *TutorProfileRepository) UpdatePartial(ctx context.Context, accountID int64, input UpdateTutorProfileInput) (*models.TutorProfile, error) {
	sql := `
		UPDATE tutor_profiles
		SET full_name = COALESCE($1, full_name),
			contact_number = COALESCE($2, contact_number),
			location = COALESCE($3, location),
			bio = COALESCE($4, bio),
			avatar_url = COALESCE($5, avatar_url),
			course_of_study = COALESCE($6, course_of_study),
			hourly_rate = COALESCE($7, hourly_rate),
			updated_at = NOW()
		WHERE account_id = $8
		RETURNING ` + tutorProfileColumns
	return r.scanProfile(r.db.QueryRow(ctx, sql,
		input.FullName,
		input.ContactNumber,
		input.Location,
		input.Bio,
		input.AvatarURL,
		input.CourseOfStudy,
		input.HourlyRate,
		accountID,
	))
}

// SetRating stores the recomputed aggregate rating. Called inside the rating
// upsert transaction so the aggregate never drifts from the rows it summarizes.
func (r *TutorProfileRepository) SetRating(ctx context.Context, accountID int64, rating float64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE tutor_profiles
		SET rating = $2, updated_at = NOW()
		WHERE account_id = $1
	`, accountID, rating)
	return err
}

type TutorListFilter struct {
	SubjectID  int64
	MinRating  float64
	MaxRate    float64
	Location   string
	SearchName string
	Offset     int
	Limit      int
}

const tutorListingSelect = `
	SELECT tp.id, tp.account_id, tp.full_name, tp.contact_number, tp.location, tp.bio,
		   tp.avatar_url, tp.course_of_study, tp.hourly_rate, tp.rating, tp.created_at, tp.updated_at,
		   a.verified,
		   (SELECT COUNT(*) FROM ratings rt
			 WHERE rt.tutor_id = tp.account_id AND rt.direction = 'parent_to_tutor') AS total_ratings
	FROM tutor_profiles tp
	JOIN accounts a ON a.id = tp.account_id
`

// List returns active tutors for the directory. The WHERE clause is assembled
// from whichever filters are set, every value bound as a parameter.
func (r *TutorProfileRepository) List(ctx context.Context, filter TutorListFilter) ([]models.TutorListing, int, error) {
	args := []any{}
	whereParts := []string{"a.status = 'active'", "a.role = 'tutor'"}

	if filter.SubjectID > 0 {
		args = append(args, filter.SubjectID)
		whereParts = append(whereParts, fmt.Sprintf(
			`EXISTS (SELECT 1 FROM tutor_subjects ts
				WHERE ts.tutor_id = tp.account_id AND ts.subject_id = $%d)`,
			len(args)))
	}
	if filter.MinRating > 0 {
		args = append(args, filter.MinRating)
		whereParts = append(whereParts, fmt.Sprintf("tp.rating >= $%d", len(args)))
	}
	if filter.MaxRate > 0 {
		args = append(args, filter.MaxRate)
		whereParts = append(whereParts, fmt.Sprintf("tp.hourly_rate <= $%d", len(args)))
	}
	if location := strings.TrimSpace(filter.Location); location != "" {
		args = append(args, "%"+location+"%")
		whereParts = append(whereParts, fmt.Sprintf("tp.location ILIKE $%d", len(args)))
	}
	if name := strings.TrimSpace(filter.SearchName); name != "" {
		args = append(args, "%"+name+"%")
		whereParts = append(whereParts, fmt.Sprintf("tp.full_name ILIKE $%d", len(args)))
	}

	whereClause := strings.Join(whereParts, " AND ")

	var total int
	countSQL := fmt.Sprintf(
		`SELECT COUNT(*) FROM tutor_profiles tp JOIN accounts a ON a.id = tp.account_id WHERE %s`,
		whereClause)
	if err := r.db.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit)
	limitPos := len(args)
	args = append(args, filter.Offset)
	offsetPos := len(args)

	listSQL := fmt.Sprintf(
		`%s WHERE %s ORDER BY tp.rating DESC NULLS LAST, tp.id ASC LIMIT $%d OFFSET $%d`,
		tutorListingSelect, whereClause, limitPos, offsetPos)

	rows, err := r.db.Query(ctx, listSQL, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	listings := make([]models.TutorListing, 0)
	for rows.Next() {
		listing, err := scanTutorListing(rows)
		if err != nil {
			return nil, 0, err
		}
		listings = append(listings, *listing)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return listings, total, nil
}

func (r *TutorProfileRepository) GetListingByAccountID(ctx context.Context, accountID int64) (*models.TutorListing, error) {
	sql := tutorListingSelect + ` WHERE tp.account_id = $1 AND a.role = 'tutor'`
	return scanTutorListing(r.db.QueryRow(ctx, sql, accountID))
}

func scanTutorListing(row interface{ Scan(dest ...any) error }) (*models.TutorListing, error) {
	var listing models.TutorListing
	err := row.Scan(
		&listing.ID,
		&listing.AccountID,
		&listing.FullName,
		&listing.ContactNumber,
		&listing.Location,
		&listing.Bio,
		&listing.AvatarURL,
		&listing.CourseOfStudy,
		&listing.HourlyRate,
		&listing.Rating,
		&listing.CreatedAt,
		&listing.UpdatedAt,
		&listing.Verified,
		&listing.TotalRatings,
	)
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *TutorProfileRepository) scanProfile(row interface{ Scan(dest ...any) error }) (*models.TutorProfile, error) {
	var profile models.TutorProfile
	err := row.Scan(
		&profile.ID,
		&profile.AccountID,
		&profile.FullName,
		&profile.ContactNumber,
		&profile.Location,
		&profile.Bio,
		&profile.AvatarURL,
		&profile.CourseOfStudy,
		&profile.HourlyRate,
		&profile.Rating,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
