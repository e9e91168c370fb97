package errcodes

import (
	"fmt"
	"net/http"
)

type Error struct {
	HTTPCode int
	Message  string
	Code     string
}

func (err *Error) Error() string {
	return err.Message
}

func (err *Error) As(target interface{}) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	te.HTTPCode = err.HTTPCode
	te.Message = err.Message
	te.Code = err.Code
	return true
}

func (err *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return te.HTTPCode == err.HTTPCode &&
		te.Code == err.Code
}

// Unauthorized returns a 401 error for requests without a valid identity.
func Unauthorized(msg string) error {
	return &Error{
		http.StatusUnauthorized,
		msg,
		"unauthorized",
	}
}

// Forbidden returns a 403 error with a message indicating the action is
// forbidden.
func Forbidden(action string) error {
	return &Error{
		http.StatusForbidden,
		action + " is not allowed.",
		"forbidden",
	}
}

// NotFound returns a 404 error with a message indicating the given resource.
func NotFound(resource string) error {
	return &Error{
		http.StatusNotFound,
		resource + " not found.",
		"not_found",
	}
}

// OutOfScope is returned when a librarian acts on a library they are not
// assigned to.
func OutOfScope() error {
	return &Error{
		http.StatusUnauthorized,
		"Librarian doesn't have access to this Library!",
		"out_of_scope",
	}
}

// NotOwner is returned when a non-staff account acts on a loan that isn't
// theirs.
func NotOwner() error {
	return &Error{
		http.StatusUnauthorized,
		"User is not the owner of this loan!",
		"not_owner",
	}
}

// StateConflict returns a 400 error for an operation that is not valid in the
// current state of the entity. No mutation has been applied.
func StateConflict(code, msg string) error {
	return &Error{
		http.StatusBadRequest,
		msg,
		code,
	}
}

func AlreadyDelivered() error {
	return StateConflict("already_delivered", "Order already delivered!")
}

func AlreadyConfirmed() error {
	return StateConflict("already_confirmed", "Loan already confirmed!")
}

func AlreadyReturned() error {
	return StateConflict("already_returned", "Loan already returned!")
}

func BookUnavailable() error {
	return StateConflict("book_unavailable", "Some of the books are already loaned to someone else!")
}

func AlreadyExtended() error {
	return StateConflict("already_extended", "Loan was already extended!")
}

func AlreadyVoted() error {
	return StateConflict("already_voted", "User already voted!")
}

func VotingClosed() error {
	return StateConflict("voting_closed", "Voting is not available anymore!")
}

func AlreadyRated() error {
	return StateConflict("already_rated", "User already rated this publication!")
}

func CrossLibraryRequest() error {
	return &Error{
		http.StatusBadRequest,
		"All books must belong to the same library!",
		"cross_library_request",
	}
}

func ExceedsMaxExtension(max int) error {
	return &Error{
		http.StatusBadRequest,
		fmt.Sprintf("Loan can be extended by at most %d days!", max),
		"exceeds_max_extension",
	}
}

func UnassignedLibrarian() error {
	return &Error{
		http.StatusBadRequest,
		"Librarian is not assigned to any library!",
		"unassigned_librarian",
	}
}

func NotLibrarian() error {
	return &Error{
		http.StatusBadRequest,
		"User is not a Librarian!",
		"not_librarian",
	}
}

func UnsupportedMediaType() error {
	return &Error{
		http.StatusUnsupportedMediaType,
		"Unsupported Media Type",
		"unsupported_media_type",
	}
}

func UnknownParameter(param string) error {
	return &Error{
		http.StatusBadRequest,
		fmt.Sprintf("Unknown Parameter %q", param),
		"unknown_parameter",
	}
}

func ValidationTypeError(msg string) error {
	return &Error{
		http.StatusBadRequest,
		msg,
		"validation_type_error",
	}
}

func ValidationError(msg string) error {
	return &Error{
		http.StatusBadRequest,
		msg,
		"validation_error",
	}
}

func MalformedPayload() error {
	return &Error{
		http.StatusBadRequest,
		"Malformed Payload",
		"malformed_payload",
	}
}

func EmptyRequestBody() error {
	return &Error{
		http.StatusBadRequest,
		"Request body can't be empty.",
		"empty_request_body",
	}
}
