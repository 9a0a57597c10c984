package apperrors

import (
	"net/http"
)

// Kind classifies an AppError independently of its message.
type Kind string

const (
	KindValidation         Kind = "validation"
	KindInvalidRequest     Kind = "invalid_request"
	KindConflict           Kind = "conflict"
	KindNotFound           Kind = "not_found"
	KindUnauthenticated    Kind = "unauthenticated"
	KindForbidden          Kind = "forbidden"
	KindExhaustedRetries   Kind = "exhausted_retries"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindInternal           Kind = "internal"
)

// Sentinels for errors.Is; any AppError of the same Kind matches.
var (
	ErrValidation         = &AppError{Kind: KindValidation}
	ErrInvalidRequest     = &AppError{Kind: KindInvalidRequest}
	ErrConflict           = &AppError{Kind: KindConflict}
	ErrNotFound           = &AppError{Kind: KindNotFound}
	ErrUnauthenticated    = &AppError{Kind: KindUnauthenticated}
	ErrForbidden          = &AppError{Kind: KindForbidden}
	ErrExhaustedRetries   = &AppError{Kind: KindExhaustedRetries}
	ErrInvalidCredentials = &AppError{Kind: KindInvalidCredentials}
	ErrInternal           = &AppError{Kind: KindInternal}
)

// AppError is the error type every service returns to the API layer. Message is the English
// fallback; MessageID selects the localized text.
type AppError struct {
	Code      int
	Kind      Kind
	MessageID string
	Message   string
	Cause     error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// WithCode builds an error carrying an explicit status code.
func WithCode(code int, kind Kind, messageID, message string) *AppError {
	return &AppError{
		Code:      code,
		Kind:      kind,
		MessageID: messageID,
		Message:   message,
	}
}

// Wrap attaches the underlying cause; it never reaches the response body.
func (e *AppError) Wrap(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

func ValidationError(messageID, message string) *AppError {
	return WithCode(http.StatusUnprocessableEntity, KindValidation, messageID, message)
}

func InvalidRequestError(message string) *AppError {
	return WithCode(http.StatusBadRequest, KindInvalidRequest, "error.invalid_request", message)
}

func InvalidRequestErrorDefault() *AppError {
	return InvalidRequestError("Parameter verification failed")
}

func ConflictError(messageID, message string) *AppError {
	return WithCode(http.StatusBadRequest, KindConflict, messageID, message)
}

func NotFoundError(messageID, message string) *AppError {
	return WithCode(http.StatusNotFound, KindNotFound, messageID, message)
}

func UnauthenticatedError() *AppError {
	return WithCode(http.StatusUnauthorized, KindUnauthenticated, "error.not_authenticated", "Not authenticated")
}

func ForbiddenError(messageID, message string) *AppError {
	return WithCode(http.StatusForbidden, KindForbidden, messageID, message)
}

func ExhaustedRetriesError() *AppError {
	return WithCode(http.StatusInternalServerError, KindExhaustedRetries,
		"error.short_code_exhausted", "Could not generate a unique short code, please try again")
}

func InvalidCredentialsError() *AppError {
	return WithCode(http.StatusUnauthorized, KindInvalidCredentials,
		"error.invalid_credentials", "Incorrect email or password")
}

func SystemError(message string) *AppError {
	return WithCode(http.StatusInternalServerError, KindInternal, "error.system", message)
}

func SystemErrorDefault() *AppError {
	return SystemError("System error")
}
