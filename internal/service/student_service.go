package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/campusflow/compass-backend/internal/apperrors"
	"github.com/campusflow/compass-backend/internal/model"
	"github.com/campusflow/compass-backend/internal/repository"
)

// StudentService manages stored planning profiles. Profiles come from an
// external producer (registrar feed or manual entry); the service only
// checks shape, the planner normalizes aliases at compute time.
type StudentService struct {
	studentRepo *repository.StudentRepository
	log         zerolog.Logger
}

func NewStudentService(studentRepo *repository.StudentRepository, log zerolog.Logger) *StudentService {
	return &StudentService{
		studentRepo: studentRepo,
		log:         log.With().Str("component", "student_service").Logger(),
	}
}

// GetProfile returns a stored profile, or nil when unknown.
func (s *StudentService) GetProfile(ctx context.Context, studentID string) (*model.StudentProfile, error) {
	return s.studentRepo.GetProfile(ctx, studentID)
}

// SaveProfile validates and stores a profile.
func (s *StudentService) SaveProfile(ctx context.Context, profile model.StudentProfile) error {
	if profile.StudentID == "" {
		return apperrors.NewValidationError("student_id", "student id is required")
	}
	if profile.StartTerm.IsZero() || !profile.StartTerm.Season.Valid() {
		return apperrors.NewValidationError("start_term", "start term %q is not a valid term", profile.StartTerm.Code())
	}
	for courseID, result := range profile.Completed {
		if result.Grade != "" && !result.Grade.Valid() {
			return apperrors.NewValidationError("completed", "unknown grade %q for course %s", result.Grade, courseID)
		}
	}

	if err := s.studentRepo.SaveProfile(ctx, profile); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	s.log.Info().
		Str("student_id", profile.StudentID).
		Int("completed", len(profile.Completed)).
		Int("in_progress", len(profile.InProgress)).
		Msg("Profile saved")
	return nil
}

// DeleteProfile removes a stored profile.
func (s *StudentService) DeleteProfile(ctx context.Context, studentID string) error {
	return s.studentRepo.DeleteProfile(ctx, studentID)
}
