package fatvol

import "errors"

// Error conditions reported by volume operations and by Engine
// implementations. End of a directory enumeration is io.EOF, not an
// error condition.
var (
	ErrNotMounted = errors.New("volume not mounted")
	ErrNotExist   = errors.New("entry does not exist")
	ErrExist      = errors.New("entry already exists")
	ErrNotDir     = errors.New("not a directory")
	ErrIsDir      = errors.New("is a directory")
	ErrNotEmpty   = errors.New("directory not empty")
	ErrReadOnly   = errors.New("entry is read-only")
	ErrClosed     = errors.New("handle is closed")
	ErrBadPos     = errors.New("invalid directory position")
	ErrPerm       = errors.New("operation not permitted")
)
