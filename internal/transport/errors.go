package transport

// notFoundError signals the backend no longer knows the target; callers
// treat it as idempotent success.
type notFoundError struct{ msg string }

func (e notFoundError) Error() string { return e.msg }

// ErrNotFound constructs a not-found transport error.
func ErrNotFound(msg string) error {
	if msg == "" {
		msg = "not found"
	}
	return notFoundError{msg: msg}
}

// IsNotFound reports whether err indicates the target was already gone.
func IsNotFound(err error) bool {
	_, ok := err.(notFoundError)
	return ok
}

// conflictError signals the backend already performed the operation.
type conflictError struct{ msg string }

func (e conflictError) Error() string { return e.msg }

// ErrConflict constructs a conflict transport error.
func ErrConflict(msg string) error {
	if msg == "" {
		msg = "conflict"
	}
	return conflictError{msg: msg}
}

// IsConflict reports whether err indicates a duplicate application.
func IsConflict(err error) bool {
	_, ok := err.(conflictError)
	return ok
}

// IsIdempotent reports whether err can be treated as success: the
// operation's intended end state already holds.
func IsIdempotent(err error) bool {
	return IsNotFound(err) || IsConflict(err)
}

// unknownCommandError is returned by the channel transport when no
// command handler is registered.
type unknownCommandError struct{ command string }

func (e unknownCommandError) Error() string { return "unknown command: " + e.command }

// IsUnknownCommand reports whether err indicates an unregistered command.
func IsUnknownCommand(err error) bool {
	_, ok := err.(unknownCommandError)
	return ok
}
