// Package memfat is an in-memory implementation of the fatvol engine
// contracts with FAT directory semantics: case-insensitive name
// matching, 32-byte directory slots, and tombstoned deletion so that
// enumeration positions stay valid while entries are removed.
package memfat

import (
	"errors"
	"fmt"

	"github.com/rstms/fatvol"
)

// Engine holds one in-memory directory tree per mounted partition.
type Engine struct {
	dev     fatvol.BlockDevice
	root    *node
	mounted bool
}

// ensure Engine implements fatvol.Engine
var _ fatvol.Engine = (*Engine)(nil)

func New() *Engine {
	return &Engine{}
}

// Init binds the engine to dev and starts an empty tree. Partition
// numbers follow the MBR convention: 0 for an unpartitioned device,
// 1-4 for primary partitions.
func (e *Engine) Init(dev fatvol.BlockDevice, partition int) error {
	if dev == nil {
		return errors.New("nil block device")
	}
	if partition < 0 || partition > 4 {
		return fmt.Errorf("invalid partition %d", partition)
	}
	e.dev = dev
	e.root = newDir("/", nil)
	e.mounted = true
	return nil
}

func (e *Engine) OpenRoot() (fatvol.Handle, error) {
	if !e.mounted {
		return nil, fatvol.ErrNotMounted
	}
	return &handle{eng: e, n: e.root, mode: fatvol.ModeRDWR}, nil
}
