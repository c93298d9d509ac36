package errors

import "fmt"

// Error codes
const (
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeInternal         = "INTERNAL_ERROR"
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeGameNotActive    = "GAME_NOT_ACTIVE"
	ErrCodeNotYourTurn      = "NOT_YOUR_TURN"
	ErrCodeIllegalMove      = "ILLEGAL_MOVE"
	ErrCodeMalformedHistory = "MALFORMED_HISTORY"
	ErrCodeStaleTransition  = "STALE_TRANSITION"
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	Code    string // Error code (e.g., "NOT_FOUND", "ILLEGAL_MOVE")
	Message string // Human-readable error message
	Status  int    // HTTP status code
	Err     error  // Wrapped underlying error (optional)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error wrapping support
func (e *AppError) Unwrap() error {
	return e.Err
}

// IsCode reports whether err is an AppError with the given code.
func IsCode(err error, code string) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Code == code
}

// NewNotFoundError creates a new NOT_FOUND error
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  404,
	}
}

// NewValidationError creates a new VALIDATION_ERROR
func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  400,
	}
}

// NewUnauthorizedError creates a new UNAUTHORIZED error
func NewUnauthorizedError(reason string) *AppError {
	return &AppError{
		Code:    ErrCodeUnauthorized,
		Message: reason,
		Status:  401,
	}
}

// NewInternalError creates a new INTERNAL_ERROR
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Status:  500,
		Err:     err,
	}
}

// NewBadRequestError creates a new BAD_REQUEST error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  400,
	}
}

// NewGameNotActiveError reports a move against a finished game.
func NewGameNotActiveError(gameID int64) *AppError {
	return &AppError{
		Code:    ErrCodeGameNotActive,
		Message: fmt.Sprintf("game %d is already over", gameID),
		Status:  409,
	}
}

// NewNotYourTurnError reports a move by a player who is not to move.
func NewNotYourTurnError(gameID, userID int64) *AppError {
	return &AppError{
		Code:    ErrCodeNotYourTurn,
		Message: fmt.Sprintf("it is not the turn of user %d in game %d", userID, gameID),
		Status:  403,
	}
}

// NewIllegalMoveError reports a move that failed parsing or legality checks.
func NewIllegalMoveError(moveText string) *AppError {
	return &AppError{
		Code:    ErrCodeIllegalMove,
		Message: fmt.Sprintf("illegal move: %q", moveText),
		Status:  422,
	}
}

// NewMalformedHistoryError reports a stored transcript that failed to replay.
// This indicates storage corruption or an engine mismatch and is never
// recovered silently.
func NewMalformedHistoryError(detail string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeMalformedHistory,
		Message: fmt.Sprintf("stored move history failed to replay: %s", detail),
		Status:  500,
		Err:     err,
	}
}

// NewStaleTransitionError reports a conditional write that found the record no
// longer in its expected pre-state. Callers treat it as a no-op rejection.
func NewStaleTransitionError(gameID int64) *AppError {
	return &AppError{
		Code:    ErrCodeStaleTransition,
		Message: fmt.Sprintf("game %d changed concurrently, transition discarded", gameID),
		Status:  409,
	}
}
