package domain

import "fmt"

// Error taxonomy shared by the API layer and the client package. Every error
// surfaced to a caller is one of these five kinds; nothing is retried
// automatically.

// ValidationError marks bad input; the operation was never attempted.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ConflictError marks a business-rule violation, such as opening a second
// pending closing for the same register and day.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

func Conflictf(format string, args ...any) error {
	return &ConflictError{Msg: fmt.Sprintf(format, args...)}
}

// UnauthorizedReason distinguishes the user-facing message on a 401; the
// control flow is identical for all three.
type UnauthorizedReason string

const (
	ReasonNoToken      UnauthorizedReason = "NO_TOKEN"
	ReasonTokenExpired UnauthorizedReason = "TOKEN_EXPIRED"
	ReasonTokenInvalid UnauthorizedReason = "TOKEN_INVALID"
)

type UnauthorizedError struct {
	Reason UnauthorizedReason
}

func (e *UnauthorizedError) Error() string {
	return "unauthorized: " + string(e.Reason)
}

// NetworkError wraps a transport failure with no server response.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "network error: " + e.Err.Error() }

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError carries a non-2xx response with the server's message verbatim.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.Status, e.Message)
}
