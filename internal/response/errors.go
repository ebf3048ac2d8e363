package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrOutOfRange     ErrCode = "OUT_OF_RANGE"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrTooManyLectures  ErrCode = "TOO_MANY_LECTURES"
	ErrCatalogUnsupport ErrCode = "CATALOG_UNSUPPORTED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Request validation failed."
	case ErrInvalidPayload:
		return "Request payload is malformed."
	case ErrOutOfRange:
		return "A value is outside the range the catalog covers."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "The requested lecture was not found."
	case ErrTooManyLectures:
		return "Too many lectures in one request."
	case ErrCatalogUnsupport:
		return "No catalog is available for this university."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."

	default:
		return "An unknown error occurred."
	}
}
