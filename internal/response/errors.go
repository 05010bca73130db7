package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden ErrCode = "FORBIDDEN"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Planning ──────────────────────────────────────────────────────
	ErrSnapshotUnavailable ErrCode = "SNAPSHOT_UNAVAILABLE"
	ErrSnapshotRejected    ErrCode = "SNAPSHOT_REJECTED"
	ErrProfileInvalid      ErrCode = "PROFILE_INVALID"

	// ─── Query ─────────────────────────────────────────────────────────
	ErrQueryRejected ErrCode = "QUERY_REJECTED"
	ErrQueryTimeout  ErrCode = "QUERY_TIMEOUT"
	ErrDBUnavailable ErrCode = "DATABASE_UNAVAILABLE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Account name or secret is incorrect."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrTokenExpired:
		return "The authentication token has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid identifier format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."

	// ─── Planning ──────────────────────────────────────────────────────
	case ErrSnapshotUnavailable:
		return "No catalog snapshot has been published yet."
	case ErrSnapshotRejected:
		return "The catalog configuration was rejected; the previous snapshot remains active."
	case ErrProfileInvalid:
		return "The student profile could not be validated."

	// ─── Query ─────────────────────────────────────────────────────────
	case ErrQueryRejected:
		return "The query references tables, columns or operators outside the allowed surface."
	case ErrQueryTimeout:
		return "The query did not complete within the allowed time."
	case ErrDBUnavailable:
		return "The database is temporarily unavailable. Please try again."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
