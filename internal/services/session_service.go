package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sabirama/tutorial-hub-sub000/internal/models"
	"github.com/sabirama/tutorial-hub-sub000/internal/repository"
)

var (
	ErrForbidden              = errors.New("forbidden")
	ErrConflict               = errors.New("conflict")
	ErrInvalidStatus          = errors.New("invalid status")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrInvalidInput           = errors.New("invalid input")
	ErrTutorNotFound          = errors.New("tutor not found")
	ErrParentNotFound         = errors.New("parent not found")
	ErrChildNotFound          = errors.New("child not found")
	ErrSubjectNotFound        = errors.New("subject not found")
)

type accountReader interface {
	GetByID(ctx context.Context, id int64) (*models.Account, error)
}

type childReader interface {
	GetByID(ctx context.Context, id int64) (*models.Child, error)
}

type subjectReader interface {
	GetByID(ctx context.Context, id int64) (*models.Subject, error)
}

type SessionService struct {
	db          *pgxpool.Pool
	sessionRepo *repository.SessionRepository
	accountRepo accountReader
	childRepo   childReader
	subjectRepo subjectReader
}

func NewSessionService(
	db *pgxpool.Pool,
	sessionRepo *repository.SessionRepository,
	accountRepo accountReader,
	childRepo childReader,
	subjectRepo subjectReader,
) *SessionService {
	return &SessionService{
		db:          db,
		sessionRepo: sessionRepo,
		accountRepo: accountRepo,
		childRepo:   childRepo,
		subjectRepo: subjectRepo,
	}
}

type RequestSessionInput struct {
	TutorID         int64
	ChildID         int64
	SubjectID       int64
	ScheduledAt     time.Time
	DurationMinutes int
	Location        *string
	Notes           *string
}

// RequestSession creates a pending session for the parent. The tutor's
// calendar is guarded by an advisory lock so two parents cannot book the same
// slot between the overlap check and the insert.
func (s *SessionService) RequestSession(ctx context.Context, parentID int64, input RequestSessionInput) (*models.Session, error) {
	if input.TutorID <= 0 || input.ChildID <= 0 || input.SubjectID <= 0 || input.DurationMinutes <= 0 {
		return nil, ErrInvalidInput
	}
	if input.ScheduledAt.Before(time.Now().Add(-1 * time.Minute)) {
		return nil, ErrInvalidInput
	}
	if parentID == input.TutorID {
		return nil, ErrInvalidInput
	}

	tutor, err := s.accountRepo.GetByID(ctx, input.TutorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTutorNotFound
		}
		return nil, err
	}
	if tutor.Role != models.RoleTutor || tutor.Status != models.AccountStatusActive {
		return nil, ErrTutorNotFound
	}

	child, err := s.childRepo.GetByID(ctx, input.ChildID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrChildNotFound
		}
		return nil, err
	}
	if child.ParentID != parentID {
		return nil, ErrForbidden
	}

	if _, err := s.subjectRepo.GetByID(ctx, input.SubjectID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubjectNotFound
		}
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txSessionRepo := repository.NewSessionRepository(tx)

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", input.TutorID); err != nil {
		return nil, err
	}

	hasConflict, err := txSessionRepo.HasConflict(ctx, input.TutorID, input.ScheduledAt.UTC(), input.DurationMinutes)
	if err != nil {
		return nil, err
	}
	if hasConflict {
		return nil, ErrConflict
	}

	session, err := txSessionRepo.Create(ctx, repository.CreateSessionInput{
		ParentID:        parentID,
		TutorID:         input.TutorID,
		ChildID:         input.ChildID,
		SubjectID:       input.SubjectID,
		ScheduledAt:     input.ScheduledAt.UTC(),
		DurationMinutes: input.DurationMinutes,
		Location:        input.Location,
		Notes:           input.Notes,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return session, nil
}

func (s *SessionService) ListSessions(ctx context.Context, actorID int64, role string, filter repository.SessionListFilter) ([]models.Session, error) {
	return s.sessionRepo.List(ctx, repository.SessionListFilter{
		ActorID:   actorID,
		Role:      role,
		Status:    filter.Status,
		Timeframe: filter.Timeframe,
	})
}

func (s *SessionService) GetSession(ctx context.Context, actorID int64, role string, sessionID int64) (*models.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !canAccessSession(role, actorID, session) {
		return nil, ErrForbidden
	}
	return session, nil
}

func (s *SessionService) UpdateStatus(ctx context.Context, actorID int64, role string, sessionID int64, requestedStatus string) (*models.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !canAccessSession(role, actorID, session) {
		return nil, ErrForbidden
	}

	nextStatus, err := normalizeRequestedStatus(requestedStatus)
	if err != nil {
		return nil, err
	}
	if err := validateStatusTransition(role, actorID, session, nextStatus); err != nil {
		return nil, err
	}

	updated, err := s.sessionRepo.UpdateStatusIfCurrent(ctx, sessionID, session.Status, nextStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}
	return updated, nil
}

type RescheduleInput struct {
	ScheduledAt     time.Time
	DurationMinutes int
}

// Reschedule moves a not-yet-final session to a new slot. The row lands in
// 'rescheduled' until the tutor accepts it back to 'upcoming'.
func (s *SessionService) Reschedule(ctx context.Context, actorID int64, role string, sessionID int64, input RescheduleInput) (*models.Session, error) {
	if input.DurationMinutes <= 0 || input.ScheduledAt.Before(time.Now().Add(-1*time.Minute)) {
		return nil, ErrInvalidInput
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txSessionRepo := repository.NewSessionRepository(tx)

	session, err := txSessionRepo.GetByIDForUpdate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !canAccessSession(role, actorID, session) {
		return nil, ErrForbidden
	}
	switch session.Status {
	case models.SessionStatusPending, models.SessionStatusUpcoming, models.SessionStatusRescheduled:
	default:
		return nil, ErrInvalidStateTransition
	}

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", session.TutorID); err != nil {
		return nil, err
	}

	hasConflict, err := txSessionRepo.HasConflictExcludingSession(
		ctx, session.TutorID, input.ScheduledAt.UTC(), input.DurationMinutes, sessionID)
	if err != nil {
		return nil, err
	}
	if hasConflict {
		return nil, ErrConflict
	}

	updated, err := txSessionRepo.Reschedule(ctx, sessionID, session.Status, input.ScheduledAt.UTC(), input.DurationMinutes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return updated, nil
}

func canAccessSession(role string, actorID int64, session *models.Session) bool {
	if role == models.RoleParent {
		return session.ParentID == actorID
	}
	if role == models.RoleTutor {
		return session.TutorID == actorID
	}
	return false
}

func normalizeRequestedStatus(status string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "accept", "accepted", "upcoming":
		return models.SessionStatusUpcoming, nil
	case "complete", "completed":
		return models.SessionStatusCompleted, nil
	case "cancel", "cancelled", "canceled":
		return models.SessionStatusCancelled, nil
	default:
		return "", ErrInvalidStatus
	}
}

// validateStatusTransition is the session state machine: parents may cancel,
// tutors accept pending or rescheduled requests, complete finished sessions,
// or cancel. Completed and cancelled are terminal.
func validateStatusTransition(role string, actorID int64, session *models.Session, nextStatus string) error {
	switch role {
	case models.RoleParent:
		if session.ParentID != actorID || nextStatus != models.SessionStatusCancelled {
			return ErrForbidden
		}
		if session.Status == models.SessionStatusCompleted || session.Status == models.SessionStatusCancelled {
			return ErrInvalidStateTransition
		}
		return nil
	case models.RoleTutor:
		if session.TutorID != actorID {
			return ErrForbidden
		}
		switch nextStatus {
		case models.SessionStatusUpcoming:
			if session.Status != models.SessionStatusPending && session.Status != models.SessionStatusRescheduled {
				return ErrInvalidStateTransition
			}
		case models.SessionStatusCompleted:
			if session.Status != models.SessionStatusUpcoming {
				return ErrInvalidStateTransition
			}
			sessionEnd := session.ScheduledAt.UTC().Add(time.Duration(session.DurationMinutes) * time.Minute)
			if sessionEnd.After(time.Now().UTC()) {
				return ErrInvalidStateTransition
			}
		case models.SessionStatusCancelled:
			if session.Status == models.SessionStatusCompleted || session.Status == models.SessionStatusCancelled {
				return ErrInvalidStateTransition
			}
		default:
			return ErrInvalidStatus
		}
		return nil
	default:
		return ErrForbidden
	}
}
