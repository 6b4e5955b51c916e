package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sabirama/tutorial-hub-sub000/internal/models"
)

type CreateSessionInput struct {
	ParentID        int64
	TutorID         int64
	ChildID         int64
	SubjectID       int64
	ScheduledAt     time.Time
	DurationMinutes int
	Location        *string
	Notes           *string
}

type SessionListFilter struct {
	ActorID   int64
	Role      string
	Status    string
	Timeframe string
}

type SessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = "id, parent_id, tutor_id, child_id, subject_id, scheduled_at, duration_min, status, location, notes, created_at, updated_at"

func (r *SessionRepository) Create(ctx context.Context, input CreateSessionInput) (*models.Session, error) {
	sql := `
		INSERT INTO sessions (parent_id, tutor_id, child_id, subject_id, scheduled_at, duration_min, status, location, notes)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending', $7, $8)
		RETURNING ` + sessionColumns
	return r.scanSession(r.db.QueryRow(ctx, sql,
		input.ParentID,
		input.TutorID,
		input.ChildID,
		input.SubjectID,
		input.ScheduledAt,
		input.DurationMinutes,
		input.Location,
		input.Notes,
	))
}

func (r *SessionRepository) GetByID(ctx context.Context, sessionID int64) (*models.Session, error) {
	sql := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	return r.scanSession(r.db.QueryRow(ctx, sql, sessionID))
}

func (r *SessionRepository) GetByIDForUpdate(ctx context.Context, sessionID int64) (*models.Session, error) {
	sql := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1 FOR UPDATE`
	return r.scanSession(r.db.QueryRow(ctx, sql, sessionID))
}

func (r *SessionRepository) List(ctx context.Context, filter SessionListFilter) ([]models.Session, error) {
	actorColumn := "parent_id"
	if filter.Role == models.RoleTutor {
		actorColumn = "tutor_id"
	}

	args := []any{filter.ActorID}
	whereParts := []string{fmt.Sprintf("%s = $1", actorColumn)}

	if status := strings.TrimSpace(filter.Status); status != "" {
		args = append(args, status)
		whereParts = append(whereParts, fmt.Sprintf("status = $%d", len(args)))
	}

	switch strings.TrimSpace(filter.Timeframe) {
	case "upcoming":
		whereParts = append(
			whereParts,
			"(scheduled_at + (duration_min * INTERVAL '1 minute')) > NOW()",
		)
	case "past":
		whereParts = append(
			whereParts,
			"(scheduled_at + (duration_min * INTERVAL '1 minute')) <= NOW()",
		)
	}

	sql := fmt.Sprintf(`
		SELECT %s
		FROM sessions
		WHERE %s
		ORDER BY scheduled_at ASC, id ASC
	`, sessionColumns, strings.Join(whereParts, " AND "))

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]models.Session, 0)
	for rows.Next() {
		session, err := r.scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// UpdateStatusIfCurrent is a compare-and-set: it only moves the row when the
// status still matches what the caller read, so concurrent transitions lose
// cleanly with no rows returned.
func (r *SessionRepository) UpdateStatusIfCurrent(ctx context.Context, sessionID int64, currentStatus, nextStatus string) (*models.Session, error) {
	sql := `
		UPDATE sessions
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + sessionColumns
	return r.scanSession(r.db.QueryRow(ctx, sql, sessionID, currentStatus, nextStatus))
}

func (r *SessionRepository) Reschedule(ctx context.Context, sessionID int64, currentStatus string, scheduledAt time.Time, durationMinutes int) (*models.Session, error) {
	sql := `
		UPDATE sessions
		SET scheduled_at = $3, duration_min = $4, status = 'rescheduled', updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + sessionColumns
	return r.scanSession(r.db.QueryRow(ctx, sql, sessionID, currentStatus, scheduledAt, durationMinutes))
}

func (r *SessionRepository) HasConflict(ctx context.Context, tutorID int64, requestedTime time.Time, durationMinutes int) (bool, error) {
	return r.hasConflict(ctx, tutorID, requestedTime, durationMinutes, 0)
}

func (r *SessionRepository) HasConflictExcludingSession(ctx context.Context, tutorID int64, requestedTime time.Time, durationMinutes int, excludedSessionID int64) (bool, error) {
	return r.hasConflict(ctx, tutorID, requestedTime, durationMinutes, excludedSessionID)
}

func (r *SessionRepository) hasConflict(ctx context.Context, tutorID int64, requestedTime time.Time, durationMinutes int, excludedSessionID int64) (bool, error) {
	sql := `
		SELECT EXISTS (
			SELECT 1
			FROM sessions
			WHERE tutor_id = $1
			  AND id <> $4
			  AND status NOT IN ('cancelled', 'completed')
			  AND scheduled_at < ($2::timestamptz + ($3::int * INTERVAL '1 minute'))
			  AND (scheduled_at + (duration_min * INTERVAL '1 minute')) > $2::timestamptz
		)
	`
	var hasConflict bool
	if err := r.db.QueryRow(ctx, sql, tutorID, requestedTime, durationMinutes, excludedSessionID).Scan(&hasConflict); err != nil {
		return false, err
	}
	return hasConflict, nil
}

func (r *SessionRepository) scanSession(row interface{ Scan(dest ...any) error }) (*models.Session, error) {
	var session models.Session
	err := row.Scan(
		&session.ID,
		&session.ParentID,
		&session.TutorID,
		&session.ChildID,
		&session.SubjectID,
		&session.ScheduledAt,
		&session.DurationMinutes,
		&session.Status,
		&session.Location,
		&session.Notes,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}
