package services

import (
	"context"
	"testing"

	"github.com/sabirama/tutorial-hub-sub000/internal/models"
	"github.com/sabirama/tutorial-hub-sub000/internal/repository"
)

type stubTutorLister struct {
	tutors     []models.TutorListing
	lastFilter repository.TutorListFilter
}

func (s *stubTutorLister) List(_ context.Context, filter repository.TutorListFilter) ([]models.TutorListing, int, error) {
	s.lastFilter = filter
	return s.tutors, len(s.tutors), nil
}

func (s *stubTutorLister) GetListingByAccountID(_ context.Context, accountID int64) (*models.TutorListing, error) {
	for i := range s.tutors {
		if s.tutors[i].AccountID == accountID {
			return &s.tutors[i], nil
		}
	}
	return nil, context.Canceled
}

type stubTutorSubjects struct {
	byTutor   map[int64][]int64
	interests []int64
}

func (s *stubTutorSubjects) SubjectIDsByTutor(_ context.Context) (map[int64][]int64, error) {
	return s.byTutor, nil
}

func (s *stubTutorSubjects) SubjectIDsOfInterestForParent(_ context.Context, _ int64) ([]int64, error) {
	return s.interests, nil
}

func buildTutorListing(accountID int64, rating float64, totalRatings int, verified bool) models.TutorListing {
	listing := models.TutorListing{
		Verified:     verified,
		TotalRatings: totalRatings,
	}
	listing.AccountID = accountID
	if rating > 0 {
		listing.Rating = &rating
	}
	return listing
}

func TestGetRecommendedTutorsSortsByScoreThenRating(t *testing.T) {
	service := NewDirectoryService(
		&stubTutorLister{
			tutors: []models.TutorListing{
				// subject overlap 40 + rating 20 + verified 15 + volume 10 = 85
				buildTutorListing(11, 4.8, 6, true),
				// two overlaps = 80, nothing else
				buildTutorListing(12, 0, 0, false),
				// no overlap, rating 20 + verified 15 = 35
				buildTutorListing(13, 4.9, 2, true),
			},
		},
		&stubTutorSubjects{
			byTutor: map[int64][]int64{
				11: {1},
				12: {1, 2},
				13: {9},
			},
			interests: []int64{1, 2},
		},
	)

	recommended, err := service.GetRecommendedTutors(context.Background(), 42, 3)
	if err != nil {
		t.Fatalf("GetRecommendedTutors: %v", err)
	}

	if got := len(recommended); got != 3 {
		t.Fatalf("expected 3 tutors, got %d", got)
	}
	if recommended[0].AccountID != 11 || recommended[0].MatchScore != 85 {
		t.Fatalf("expected tutor 11 with score 85 first, got tutor %d with score %d", recommended[0].AccountID, recommended[0].MatchScore)
	}
	if recommended[1].AccountID != 12 || recommended[1].MatchScore != 80 {
		t.Fatalf("expected tutor 12 with score 80 second, got tutor %d with score %d", recommended[1].AccountID, recommended[1].MatchScore)
	}
	if recommended[2].AccountID != 13 || recommended[2].MatchScore != 35 {
		t.Fatalf("expected tutor 13 with score 35 third, got tutor %d with score %d", recommended[2].AccountID, recommended[2].MatchScore)
	}
}

func TestGetRecommendedTutorsBreaksTiesByRating(t *testing.T) {
	service := NewDirectoryService(
		&stubTutorLister{
			tutors: []models.TutorListing{
				buildTutorListing(21, 3.5, 0, false),
				buildTutorListing(22, 3.9, 0, false),
			},
		},
		&stubTutorSubjects{byTutor: map[int64][]int64{}},
	)

	recommended, err := service.GetRecommendedTutors(context.Background(), 42, 2)
	if err != nil {
		t.Fatalf("GetRecommendedTutors: %v", err)
	}

	if recommended[0].AccountID != 22 {
		t.Fatalf("expected higher-rated tutor 22 first, got %d", recommended[0].AccountID)
	}
}

func TestGetRecommendedTutorsHonorsLimit(t *testing.T) {
	service := NewDirectoryService(
		&stubTutorLister{
			tutors: []models.TutorListing{
				buildTutorListing(31, 4.5, 5, true),
				buildTutorListing(32, 4.1, 5, true),
				buildTutorListing(33, 4.0, 5, true),
			},
		},
		&stubTutorSubjects{byTutor: map[int64][]int64{}},
	)

	recommended, err := service.GetRecommendedTutors(context.Background(), 42, 2)
	if err != nil {
		t.Fatalf("GetRecommendedTutors: %v", err)
	}

	if got := len(recommended); got != 2 {
		t.Fatalf("expected 2 tutors, got %d", got)
	}
}
