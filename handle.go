package fatvol

import (
	"io"
	"time"
)

// A Handle is an open directory entry: one file or directory on a
// mounted volume. A Handle on a directory carries an enumeration
// cursor used by OpenNext, Position and Seek.
//
// Handles are not safe for concurrent use, and a Handle must not be
// used after the entry it refers to is removed or renamed through
// another Handle.
type Handle interface {
	io.Reader
	io.Writer
	io.Closer

	// Name returns the entry's name within its directory.
	Name() string
	// Size returns the file size in bytes; zero for directories.
	Size() int64
	ModTime() time.Time
	Attr() DirectoryAttr
	// SetAttr sets or clears one of the settable attribute bits
	// (read-only, hidden, system).
	SetAttr(attr DirectoryAttr, state bool) error
	IsDir() bool
	IsFile() bool
	// IsRoot reports whether this handle is the volume root directory.
	IsRoot() bool

	// Open resolves path relative to this directory and opens the
	// entry it names. Path components are separated by '/' and match
	// case-insensitively.
	Open(path string, mode OpenMode) (Handle, error)
	// OpenNext opens the entry after the cursor position and advances
	// the cursor past it. It returns io.EOF when the directory is
	// exhausted.
	OpenNext(mode OpenMode) (Handle, error)
	// Mkdir creates the directory named by path relative to this
	// directory, creating missing ancestors when parents is true.
	Mkdir(path string, parents bool) (Handle, error)
	// Rename moves this entry to newPath resolved relative to start.
	// newPath must not exist.
	Rename(start Handle, newPath string) error
	// Remove unlinks this entry; it must be a writable regular file.
	Remove() error
	// Rmdir unlinks this entry; it must be an empty, non-root
	// directory.
	Rmdir() error
	Truncate(size int64) error

	// Position returns the enumeration cursor, opaque except as an
	// argument to Seek.
	Position() uint32
	Seek(pos uint32) error
}
