package services

import (
	"context"
	"sort"

	"github.com/sabirama/tutorial-hub-sub000/internal/models"
	"github.com/sabirama/tutorial-hub-sub000/internal/repository"
)

type tutorLister interface {
	List(ctx context.Context, filter repository.TutorListFilter) ([]models.TutorListing, int, error)
	GetListingByAccountID(ctx context.Context, accountID int64) (*models.TutorListing, error)
}

type tutorSubjectReader interface {
	SubjectIDsByTutor(ctx context.Context) (map[int64][]int64, error)
	SubjectIDsOfInterestForParent(ctx context.Context, parentID int64) ([]int64, error)
}

// DirectoryService is the parent-facing view of the tutor pool: filtered
// listings, a detail page, and a recommendation ranking.
type DirectoryService struct {
	tutorRepo        tutorLister
	tutorSubjectRepo tutorSubjectReader
}

func NewDirectoryService(tutorRepo tutorLister, tutorSubjectRepo tutorSubjectReader) *DirectoryService {
	return &DirectoryService{
		tutorRepo:        tutorRepo,
		tutorSubjectRepo: tutorSubjectRepo,
	}
}

func (s *DirectoryService) ListTutors(ctx context.Context, filter repository.TutorListFilter) ([]models.TutorListing, int, error) {
	return s.tutorRepo.List(ctx, filter)
}

func (s *DirectoryService) GetTutor(ctx context.Context, tutorID int64) (*models.TutorListing, error) {
	return s.tutorRepo.GetListingByAccountID(ctx, tutorID)
}

// GetRecommendedTutors ranks active tutors for one parent. Subject overlap
// with the parent's sessions and relationships dominates the score; rating,
// verification, and review volume break ties.
func (s *DirectoryService) GetRecommendedTutors(ctx context.Context, parentID int64, limit int) ([]models.TutorWithScore, error) {
	tutors, _, err := s.tutorRepo.List(ctx, repository.TutorListFilter{Limit: 200})
	if err != nil {
		return nil, err
	}

	interests, err := s.tutorSubjectRepo.SubjectIDsOfInterestForParent(ctx, parentID)
	if err != nil {
		return nil, err
	}
	subjectsByTutor, err := s.tutorSubjectRepo.SubjectIDsByTutor(ctx)
	if err != nil {
		return nil, err
	}

	interestSet := make(map[int64]struct{}, len(interests))
	for _, id := range interests {
		interestSet[id] = struct{}{}
	}

	scored := make([]models.TutorWithScore, 0, len(tutors))
	for _, tutor := range tutors {
		scored = append(scored, models.TutorWithScore{
			TutorListing: tutor,
			MatchScore:   calculateMatchScore(tutor, subjectsByTutor[tutor.AccountID], interestSet),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].MatchScore == scored[j].MatchScore {
			return ratingValue(scored[i].Rating) > ratingValue(scored[j].Rating)
		}
		return scored[i].MatchScore > scored[j].MatchScore
	})

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}

	return scored, nil
}

func calculateMatchScore(tutor models.TutorListing, tutorSubjects []int64, interests map[int64]struct{}) int {
	score := 0

	for _, subjectID := range tutorSubjects {
		if _, ok := interests[subjectID]; ok {
			score += 40
		}
	}

	if ratingValue(tutor.Rating) > 4.0 {
		score += 20
	}
	if tutor.Verified {
		score += 15
	}
	if tutor.TotalRatings >= 5 {
		score += 10
	}

	return score
}

func ratingValue(rating *float64) float64 {
	if rating == nil {
		return 0
	}
	return *rating
}
