package fatvol

import "io"

// A BlockDevice is the sector-addressable storage a volume is mounted
// on.
type BlockDevice interface {
	io.ReaderAt
	io.WriterAt
	io.Closer

	// Len returns the device capacity in bytes.
	Len() int64
	// SectorSize returns the size of a single device sector in bytes.
	SectorSize() int
}

// An Engine is the block/partition machinery a Volume is layered on:
// it binds a partition on a block device and hands out directory entry
// handles, starting from the root directory.
type Engine interface {
	// Init binds the engine to one partition of a block device.
	// Partition 0 addresses a device formatted without a partition
	// table.
	Init(dev BlockDevice, partition int) error
	// OpenRoot opens a handle on the root directory.
	OpenRoot() (Handle, error)
}
