package handlers

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sabirama/tutorial-hub-sub000/internal/repository"
	"github.com/sabirama/tutorial-hub-sub000/internal/services"
)

const maxAvatarSize = 5 * 1024 * 1024

var allowedAvatarExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

type ProfileHandler struct {
	parentRepo       *repository.ParentProfileRepository
	tutorRepo        *repository.TutorProfileRepository
	tutorSubjectRepo *repository.TutorSubjectRepository
	storage          services.StorageService
}

func NewProfileHandler(
	parentRepo *repository.ParentProfileRepository,
	tutorRepo *repository.TutorProfileRepository,
	tutorSubjectRepo *repository.TutorSubjectRepository,
	storage services.StorageService,
) *ProfileHandler {
	return &ProfileHandler{
		parentRepo:       parentRepo,
		tutorRepo:        tutorRepo,
		tutorSubjectRepo: tutorSubjectRepo,
		storage:          storage,
	}
}

func (h *ProfileHandler) GetParentProfile(c *fiber.Ctx) error {
	accountID, err := authAccountID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	profile, err := h.parentRepo.GetByAccountID(c.Context(), accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return respondError(c, fiber.StatusNotFound, "Profile not found")
		}
		return respondError(c, fiber.StatusInternalServerError, "Failed to fetch profile")
	}

	return respondData(c, fiber.StatusOK, fiber.Map{"profile": profile}, "OK")
}

type updateParentProfileRequest struct {
	FullName      *string `json:"full_name"`
	ContactNumber *string `json:"contact_number"`
	Location      *string `json:"location"`
	Bio           *string `json:"bio"`
}

func (h *ProfileHandler) UpdateParentProfile(c *fiber.Ctx) error {
	accountID, err := authAccountID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	var req updateParentProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.FullName != nil && strings.TrimSpace(*req.FullName) == "" {
		return respondError(c, fiber.StatusBadRequest, "full_name cannot be empty")
	}

	profile, err := h.parentRepo.UpdatePartial(c.Context(), accountID, repository.UpdateParentProfileInput{
		FullName:      req.FullName,
		ContactNumber: req.ContactNumber,
		Location:      req.Location,
		Bio:           req.Bio,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return respondError(c, fiber.StatusNotFound, "Profile not found")
		}
		return respondError(c, fiber.StatusInternalServerError, "Failed to update profile")
	}

	return respondData(c, fiber.StatusOK, fiber.Map{"profile": profile}, "Profile updated")
}

func (h *ProfileHandler) GetTutorProfile(c *fiber.Ctx) error {
	accountID, err := authAccountID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	profile, err := h.tutorRepo.GetByAccountID(c.Context(), accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return respondError(c, fiber.StatusNotFound, "Profile not found")
		}
		return respondError(c, fiber.StatusInternalServerError, "Failed to fetch profile")
	}

	subjects, err := h.tutorSubjectRepo.ListForTutor(c.Context(), accountID)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to fetch subjects")
	}

	return respondData(c, fiber.StatusOK, fiber.Map{"profile": profile, "subjects": subjects}, "OK")
}

type updateTutorProfileRequest struct {
	FullName      *string  `json:"full_name"`
	ContactNumber *string  `json:"contact_number"`
	Location      *string  `json:"location"`
	Bio           *string  `json:"bio"`
	CourseOfStudy *string  `json:"course_of_study"`
	HourlyRate    *float64 `json:"hourly_rate"`
}

func (h *ProfileHandler) UpdateTutorProfile(c *fiber.Ctx) error {
	accountID, err := authAccountID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	var req updateTutorProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.FullName != nil && strings.TrimSpace(*req.FullName) == "" {
		return respondError(c, fiber.StatusBadRequest, "full_name cannot be empty")
	}
	if req.HourlyRate != nil && *req.HourlyRate < 0 {
		return respondError(c, fiber.StatusBadRequest, "hourly_rate cannot be negative")
	}

	profile, err := h.tutorRepo.UpdatePartial(c.Context(), accountID, repository.UpdateTutorProfileInput{
		FullName:      req.FullName,
		ContactNumber: req.ContactNumber,
		Location:      req.Location,
		Bio:           req.Bio,
		CourseOfStudy: req.CourseOfStudy,
		HourlyRate:    req.HourlyRate,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return respondError(c, fiber.StatusNotFound, "Profile not found")
		}
		return respondError(c, fiber.StatusInternalServerError, "Failed to update profile")
	}

	return respondData(c, fiber.StatusOK, fiber.Map{"profile": profile}, "Profile updated")
}

// UploadParentAvatar and UploadTutorAvatar accept a multipart "avatar" file,
// store it under the role folder and persist the resulting URL.
func (h *ProfileHandler) UploadParentAvatar(c *fiber.Ctx) error {
	return h.uploadAvatar(c, "parents", func(ctx *fiber.Ctx, accountID int64, url string) (any, error) {
		return h.parentRepo.UpdatePartial(ctx.Context(), accountID, repository.UpdateParentProfileInput{AvatarURL: &url})
	})
}

func (h *ProfileHandler) UploadTutorAvatar(c *fiber.Ctx) error {
	return h.uploadAvatar(c, "tutors", func(ctx *fiber.Ctx, accountID int64, url string) (any, error) {
		return h.tutorRepo.UpdatePartial(ctx.Context(), accountID, repository.UpdateTutorProfileInput{AvatarURL: &url})
	})
}

func (h *ProfileHandler) uploadAvatar(c *fiber.Ctx, folder string, persist func(*fiber.Ctx, int64, string) (any, error)) error {
	accountID, err := authAccountID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "avatar file is required")
	}
	if fileHeader.Size > maxAvatarSize {
		return respondError(c, fiber.StatusBadRequest, "File exceeds the 5MB limit")
	}
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedAvatarExts[ext] {
		return respondError(c, fiber.StatusBadRequest, "Unsupported file type")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to read upload")
	}
	defer file.Close()

	url, err := h.storage.UploadFile(c.Context(), file, fileHeader.Filename, "avatars/"+folder)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to store file")
	}

	profile, err := persist(c, accountID, url)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return respondError(c, fiber.StatusNotFound, "Profile not found")
		}
		return respondError(c, fiber.StatusInternalServerError, "Failed to update profile")
	}

	return respondData(c, fiber.StatusOK, fiber.Map{"profile": profile, "avatar_url": url}, "Avatar uploaded")
}

type tutorSubjectRequest struct {
	SubjectID int64 `json:"subject_id"`
}

func (h *ProfileHandler) AddTutorSubject(c *fiber.Ctx) error {
	accountID, err := authAccountID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	var req tutorSubjectRequest
	if err := c.BodyParser(&req); err != nil || req.SubjectID <= 0 {
		return respondError(c, fiber.StatusBadRequest, "subject_id is required")
	}

	if err := h.tutorSubjectRepo.Add(c.Context(), accountID, req.SubjectID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return respondError(c, fiber.StatusNotFound, "Subject not found")
		}
		return respondError(c, fiber.StatusInternalServerError, "Failed to add subject")
	}

	subjects, err := h.tutorSubjectRepo.ListForTutor(c.Context(), accountID)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to fetch subjects")
	}

	return respondData(c, fiber.StatusOK, fiber.Map{"subjects": subjects}, "Subject added")
}

func (h *ProfileHandler) RemoveTutorSubject(c *fiber.Ctx) error {
	accountID, err := authAccountID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	subjectID, err := c.ParamsInt("subjectId")
	if err != nil || subjectID <= 0 {
		return respondError(c, fiber.StatusBadRequest, "Invalid subject id")
	}

	removed, err := h.tutorSubjectRepo.Remove(c.Context(), accountID, int64(subjectID))
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to remove subject")
	}
	if !removed {
		return respondError(c, fiber.StatusNotFound, "Subject not linked to this tutor")
	}

	return respondData(c, fiber.StatusOK, nil, "Subject removed")
}
