package clienterrors

import "errors"

// Transport-level errors
var (
	ErrNetwork = errors.New("network unreachable")
	ErrTimeout = errors.New("request timed out")
)

// HTTP status errors, one per status class the backend uses
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrServer       = errors.New("server error")
)

// Client-side errors
var (
	ErrValidation        = errors.New("validation failed")
	ErrNeedsVerification = errors.New("account pending verification")
	ErrNoSession         = errors.New("no active session")
)

// userFacing attaches an operation-specific message intended for display,
// while keeping the underlying sentinel matchable with errors.Is.
type userFacing struct {
	msg string
	err error
}

func (e *userFacing) Error() string { return e.msg + ": " + e.err.Error() }
func (e *userFacing) Unwrap() error { return e.err }

// WithUserMessage wraps err with a message suitable for showing to the user.
func WithUserMessage(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &userFacing{msg: msg, err: err}
}

// UserMessage returns the display string for err: the innermost attached
// user-facing message if any, otherwise a generic string per sentinel.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var uf *userFacing
	if errors.As(err, &uf) {
		return uf.msg
	}
	switch {
	case errors.Is(err, ErrNetwork):
		return "Could not reach the server. Check your connection."
	case errors.Is(err, ErrTimeout):
		return "The request took too long. Please try again."
	case errors.Is(err, ErrUnauthorized):
		return "You are not authorized to do that."
	case errors.Is(err, ErrNotFound):
		return "The requested item could not be found."
	case errors.Is(err, ErrConflict):
		return "That conflicts with existing data."
	case errors.Is(err, ErrValidation):
		return "Some of the entered values are invalid."
	case errors.Is(err, ErrNeedsVerification):
		return "Please verify your account first."
	default:
		return "Something went wrong. Please try again."
	}
}
