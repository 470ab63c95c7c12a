package workflow

import "JobPortal-backend/internal/apperror"

// Errors returned by Service. Compare with errors.Is.
var (
	ErrDuplicateApplication = apperror.New(apperror.CodeConflict, "application already submitted for this position", nil)
	ErrPositionClosed       = apperror.New(apperror.CodeClosed, "position is not accepting applications", nil)
	ErrForbidden            = apperror.New(apperror.CodeForbidden, "application belongs to another employer", nil)
	ErrAlreadyDecided       = apperror.New(apperror.CodeConflict, "application has already been decided", nil)
	ErrStaleVersion         = apperror.New(apperror.CodeConflict, "application was modified by someone else", nil)
	ErrApplicationNotFound  = apperror.New(apperror.CodeNotFound, "application not found", nil)
	ErrPositionNotFound     = apperror.New(apperror.CodeNotFound, "position not found", nil)
	ErrProfileNotFound      = apperror.New(apperror.CodeNotFound, "applicant profile not found", nil)
	ErrCompanyNotFound      = apperror.New(apperror.CodeNotFound, "company not found", nil)
)
