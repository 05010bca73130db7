package planner

import (
	"github.com/campusflow/compass-backend/internal/apperrors"
	"github.com/campusflow/compass-backend/internal/catalog"
	"github.com/campusflow/compass-backend/internal/model"
)

// NormalizeProfile resolves every course code in the profile to its
// canonical id and validates grades and terms. An unknown code or a
// malformed grade is a ValidationError, never coerced to a default.
func NormalizeProfile(snap *catalog.Snapshot, profile model.StudentProfile) (model.StudentProfile, error) {
	out := profile
	out.Completed = make(map[string]model.CourseResult, len(profile.Completed))
	out.InProgress = make([]string, 0, len(profile.InProgress))

	for code, res := range profile.Completed {
		id, ok := snap.Catalog.Resolve(code)
		if !ok {
			return model.StudentProfile{}, apperrors.NewValidationError("completed", "unknown course code %q", code)
		}
		if !res.Grade.Valid() {
			return model.StudentProfile{}, apperrors.NewValidationError("completed", "malformed grade %q for course %q", res.Grade, code)
		}
		if _, dup := out.Completed[id]; dup {
			return model.StudentProfile{}, apperrors.NewValidationError("completed", "course %q listed twice", id)
		}
		out.Completed[id] = res
	}

	seen := make(map[string]bool, len(profile.InProgress))
	for _, code := range profile.InProgress {
		id, ok := snap.Catalog.Resolve(code)
		if !ok {
			return model.StudentProfile{}, apperrors.NewValidationError("in_progress", "unknown course code %q", code)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out.InProgress = append(out.InProgress, id)
	}

	if profile.DeclaredTrack != nil {
		if _, ok := snap.Tracks[*profile.DeclaredTrack]; !ok {
			return model.StudentProfile{}, apperrors.NewValidationError("declared_track", "unknown track %q", *profile.DeclaredTrack)
		}
	}
	if profile.StartTerm.IsZero() {
		return model.StudentProfile{}, apperrors.NewValidationError("start_term", "start term is required")
	}
	if !profile.StartTerm.Season.Valid() {
		return model.StudentProfile{}, apperrors.NewValidationError("start_term", "invalid season %q", profile.StartTerm.Season)
	}
	return out, nil
}

// ValidateConstraints checks request constraints against the snapshot
// policy without mutating them.
func ValidateConstraints(snap *catalog.Snapshot, cons model.Constraints) error {
	if !cons.Pace.Valid() {
		return apperrors.NewValidationError("pace", "unknown pace %q", cons.Pace)
	}
	if cons.MaxCredits < 0 {
		return apperrors.NewValidationError("max_credits", "must not be negative")
	}
	if !cons.TargetGradTerm.IsZero() && !cons.TargetGradTerm.Season.Valid() {
		return apperrors.NewValidationError("target_grad_term", "invalid season %q", cons.TargetGradTerm.Season)
	}
	return nil
}
