package fatvol

// OpenMode is the bitwise-inclusive OR of open flags for a directory
// entry handle.
type OpenMode uint8

const (
	ModeRead OpenMode = 1 << iota
	ModeWrite
	ModeCreate
	ModeExcl
	ModeTrunc
	ModeAppend
)

const ModeRDWR = ModeRead | ModeWrite

// CanRead reports whether the mode permits reads.
func (m OpenMode) CanRead() bool { return m&ModeRead != 0 }

// CanWrite reports whether the mode permits writes.
func (m OpenMode) CanWrite() bool { return m&ModeWrite != 0 }
