package services

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/sabirama/tutorial-hub-sub000/internal/models"
	"github.com/sabirama/tutorial-hub-sub000/internal/repository"
)

type RelationshipService struct {
	relationshipRepo *repository.RelationshipRepository
	accountRepo      accountReader
	subjectRepo      subjectReader
}

func NewRelationshipService(
	relationshipRepo *repository.RelationshipRepository,
	accountRepo accountReader,
	subjectRepo subjectReader,
) *RelationshipService {
	return &RelationshipService{
		relationshipRepo: relationshipRepo,
		accountRepo:      accountRepo,
		subjectRepo:      subjectRepo,
	}
}

// Create establishes (or reactivates) the parent's standing link to a tutor
// for one subject.
func (s *RelationshipService) Create(ctx context.Context, parentID, tutorID, subjectID int64) (*models.Relationship, error) {
	if tutorID <= 0 || subjectID <= 0 || tutorID == parentID {
		return nil, ErrInvalidInput
	}

	tutor, err := s.accountRepo.GetByID(ctx, tutorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTutorNotFound
		}
		return nil, err
	}
	if tutor.Role != models.RoleTutor || tutor.Status != models.AccountStatusActive {
		return nil, ErrTutorNotFound
	}

	if _, err := s.subjectRepo.GetByID(ctx, subjectID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubjectNotFound
		}
		return nil, err
	}

	return s.relationshipRepo.CreateOrReactivate(ctx, parentID, tutorID, subjectID)
}

func (s *RelationshipService) List(ctx context.Context, actorID int64, role string) ([]models.Relationship, error) {
	if role != models.RoleParent && role != models.RoleTutor {
		return nil, ErrForbidden
	}
	return s.relationshipRepo.ListForAccount(ctx, actorID, role)
}

// UpdateStatus flips a relationship between active and inactive. Either
// participant may do it; nothing else is a valid status.
func (s *RelationshipService) UpdateStatus(ctx context.Context, actorID int64, role string, relationshipID int64, requestedStatus string) (*models.Relationship, error) {
	var status string
	switch strings.ToLower(strings.TrimSpace(requestedStatus)) {
	case models.RelationshipStatusActive:
		status = models.RelationshipStatusActive
	case models.RelationshipStatusInactive:
		status = models.RelationshipStatusInactive
	default:
		return nil, ErrInvalidStatus
	}

	relationship, err := s.relationshipRepo.GetByID(ctx, relationshipID)
	if err != nil {
		return nil, err
	}

	isParticipant := (role == models.RoleParent && relationship.ParentID == actorID) ||
		(role == models.RoleTutor && relationship.TutorID == actorID)
	if !isParticipant {
		return nil, ErrForbidden
	}

	if relationship.Status == status {
		return relationship, nil
	}
	return s.relationshipRepo.UpdateStatus(ctx, relationshipID, status)
}
