// Package hostfs exposes a directory tree on the host filesystem
// through the fatvol engine contracts, so volume operations and the
// fatvol command line can run against real directories. Name matching
// follows the host filesystem, not FAT.
package hostfs

import (
	"os"
	"path/filepath"

	"github.com/rstms/fatvol"
)

// Engine serves directory entry handles rooted at one host directory.
type Engine struct {
	root    string
	mounted bool
}

// ensure Engine implements fatvol.Engine
var _ fatvol.Engine = (*Engine)(nil)

// New creates an engine rooted at dir. The directory must exist at
// Init time.
func New(dir string) *Engine {
	return &Engine{root: filepath.Clean(dir)}
}

// Init verifies the root directory. The block device and partition
// are unused: the host kernel is the block layer here.
func (e *Engine) Init(_ fatvol.BlockDevice, _ int) error {
	info, err := os.Stat(e.root)
	if err != nil {
		return Fatal(err)
	}
	if !info.IsDir() {
		return Fatalf("%s: not a directory", e.root)
	}
	e.mounted = true
	return nil
}

func (e *Engine) OpenRoot() (fatvol.Handle, error) {
	if !e.mounted {
		return nil, fatvol.ErrNotMounted
	}
	return &handle{eng: e, path: e.root, mode: fatvol.ModeRDWR, dir: true}, nil
}

// contains reports whether path stays inside the engine root; paths
// that climb out via ".." are refused rather than clamped.
func (e *Engine) contains(path string) bool {
	rel, err := filepath.Rel(e.root, path)
	if err != nil {
		return false
	}
	return rel == "." || filepath.IsLocal(rel)
}
