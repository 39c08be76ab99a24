package wire

import "errors"

// Model layer errors.
var (
	// ErrInsufficientResources indicates a buffer could not be allocated.
	// It is always returned to the caller; nothing retries internally.
	ErrInsufficientResources = errors.New("insufficient resources")

	// ErrInvalidParam indicates an out-of-range selector, type or value.
	// Operations failing with it have no side effect.
	ErrInvalidParam = errors.New("invalid parameter")

	// ErrInvalidOpcode indicates the routing layer rejected an opcode.
	// Messages failing with it are dropped silently.
	ErrInvalidOpcode = errors.New("invalid opcode")

	// ErrMalformed indicates a message whose parameter length matches none of
	// the documented forms. It belongs to the invalid opcode class:
	// errors.Is(ErrMalformed, ErrInvalidOpcode) is true.
	ErrMalformed error = &dropError{msg: "malformed message"}
)

// dropError is an error that is handled like an invalid opcode.
type dropError struct {
	msg string
}

func (e *dropError) Error() string { return e.msg }

// Is makes drop errors match ErrInvalidOpcode.
func (e *dropError) Is(target error) bool {
	return target == ErrInvalidOpcode
}

// IsDropped reports whether err means the message must be dropped without
// surfacing an error to the application.
func IsDropped(err error) bool {
	return errors.Is(err, ErrInvalidOpcode)
}
