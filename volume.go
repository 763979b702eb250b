package fatvol

import (
	"fmt"
	"io"
	"log/slog"
)

// A Volume is a mounted, usable unit of the filesystem: one partition
// on one block device, extended with a working-directory cursor and
// path-string operations. Operations on a Volume are strictly
// sequential; a Volume is not safe for concurrent use.
type Volume struct {
	engine  Engine
	reg     *Registry
	wd      Handle
	lastErr error
	log     *slog.Logger
}

// New creates an unmounted volume over engine. A nil registry selects
// DefaultRegistry.
func New(engine Engine, reg *Registry) *Volume {
	if reg == nil {
		reg = DefaultRegistry
	}
	return &Volume{
		engine: engine,
		reg:    reg,
		log:    slog.New(slog.DiscardHandler),
	}
}

// SetLogger sets the logger used for debug traces. The default
// discards everything.
func (v *Volume) SetLogger(log *slog.Logger) {
	if log != nil {
		v.log = log
	}
}

// Mount binds the volume to the first partition of dev and makes it
// the current working volume.
func (v *Volume) Mount(dev BlockDevice) error {
	return v.MountPartition(dev, 1, true)
}

// MountPartition binds the volume to one partition of dev, with the
// working directory at the root. The volume claims its registry when
// activate is true, or when no volume has claimed it yet. On failure
// no state is registered and the working directory stays closed.
func (v *Volume) MountPartition(dev BlockDevice, partition int, activate bool) error {
	if err := v.engine.Init(dev, partition); err != nil {
		return fmt.Errorf("init partition %d: %w", partition, err)
	}
	if err := v.ResetToRoot(); err != nil {
		return err
	}
	if activate || !v.reg.claimed() {
		v.reg.claim(v)
	}
	v.log.Debug("volume mounted", "partition", partition, "active", v.reg.Current() == v)
	return nil
}

// Activate makes this volume the current working volume of its
// registry.
func (v *Volume) Activate() {
	v.reg.claim(v)
}

// ResetToRoot closes the working-directory cursor and reopens it at
// the volume root. On failure the cursor is left closed.
func (v *Volume) ResetToRoot() error {
	if v.wd != nil {
		v.wd.Close()
		v.wd = nil
	}
	root, err := v.engine.OpenRoot()
	if err != nil {
		return fmt.Errorf("open root directory: %w", err)
	}
	v.wd = root
	return nil
}

// Chdir sets the working directory to path, resolved relative to the
// current working directory.
func (v *Volume) Chdir(path string) error {
	dir, err := v.resolve(false, path, ModeRead)
	if err != nil {
		return err
	}
	if !dir.IsDir() {
		dir.Close()
		return fmt.Errorf("chdir %s: %w", path, ErrNotDir)
	}
	v.wd.Close()
	v.wd = dir
	return nil
}

// resolve opens path either from the volume root or from the working
// directory. All path dispatch funnels through here so that every
// operation acquires and releases its start-point handle the same way.
func (v *Volume) resolve(fromRoot bool, path string, mode OpenMode) (Handle, error) {
	if v.wd == nil {
		return nil, ErrNotMounted
	}
	if !fromRoot {
		return v.wd.Open(path, mode)
	}
	root, err := v.engine.OpenRoot()
	if err != nil {
		return nil, err
	}
	defer root.Close()
	return root.Open(path, mode)
}

// Exists reports whether an entry exists at path, resolved from the
// volume root.
func (v *Volume) Exists(path string) bool {
	return v.exists(true, path)
}

// RelExists reports whether an entry exists at path, resolved from the
// working directory.
func (v *Volume) RelExists(path string) bool {
	return v.exists(false, path)
}

func (v *Volume) exists(fromRoot bool, path string) bool {
	h, err := v.resolve(fromRoot, path, ModeRead)
	if err != nil {
		return false
	}
	h.Close()
	return true
}

// Mkdir creates the directory at path, resolved from the volume root,
// creating missing ancestor directories when parents is true. It fails
// with ErrExist if the leaf already exists.
func (v *Volume) Mkdir(path string, parents bool) error {
	if v.wd == nil {
		return ErrNotMounted
	}
	root, err := v.engine.OpenRoot()
	if err != nil {
		return err
	}
	defer root.Close()
	sub, err := root.Mkdir(path, parents)
	if err != nil {
		return err
	}
	return sub.Close()
}

// Open opens the entry at path, resolved from the volume root. The
// caller owns the returned handle and must close it.
func (v *Volume) Open(path string, mode OpenMode) (Handle, error) {
	return v.resolve(true, path, mode)
}

// Remove unlinks the file at path, resolved from the volume root.
func (v *Volume) Remove(path string) error {
	return v.remove(true, path)
}

// RelRemove unlinks the file at path, resolved from the working
// directory.
func (v *Volume) RelRemove(path string) error {
	return v.remove(false, path)
}

func (v *Volume) remove(fromRoot bool, path string) error {
	h, err := v.resolve(fromRoot, path, ModeWrite)
	if err != nil {
		return err
	}
	defer h.Close()
	return h.Remove()
}

// Rename moves the entry at oldPath to newPath, both resolved from
// the volume root. newPath must not exist. A handle opened on the
// entry before the rename must not be used afterwards.
func (v *Volume) Rename(oldPath, newPath string) error {
	if v.wd == nil {
		return ErrNotMounted
	}
	root, err := v.engine.OpenRoot()
	if err != nil {
		return err
	}
	defer root.Close()
	h, err := root.Open(oldPath, ModeRead)
	if err != nil {
		return err
	}
	defer h.Close()
	return h.Rename(root, newPath)
}

// Rmdir removes the empty directory at path, resolved from the volume
// root.
func (v *Volume) Rmdir(path string) error {
	return v.rmdir(true, path)
}

// RelRmdir removes the empty directory at path, resolved from the
// working directory.
func (v *Volume) RelRmdir(path string) error {
	return v.rmdir(false, path)
}

func (v *Volume) rmdir(fromRoot bool, path string) error {
	h, err := v.resolve(fromRoot, path, ModeRead)
	if err != nil {
		return err
	}
	defer h.Close()
	return h.Rmdir()
}

// Truncate resizes the file at path, resolved from the volume root.
func (v *Volume) Truncate(path string, size int64) error {
	h, err := v.resolve(true, path, ModeWrite)
	if err != nil {
		return err
	}
	defer h.Close()
	return h.Truncate(size)
}

// IsDir reports whether path, resolved from the working directory,
// names a directory.
func (v *Volume) IsDir(path string) bool {
	h, err := v.resolve(false, path, ModeRead)
	if err != nil {
		return false
	}
	defer h.Close()
	return h.IsDir()
}

// IsFile reports whether path, resolved from the working directory,
// names a regular file.
func (v *Volume) IsFile(path string) bool {
	h, err := v.resolve(false, path, ModeRead)
	if err != nil {
		return false
	}
	defer h.Close()
	return h.IsFile()
}

// Rewind sets the working directory's enumeration cursor to the
// start.
func (v *Volume) Rewind() {
	if v.wd == nil {
		v.lastErr = ErrNotMounted
		return
	}
	v.lastErr = v.wd.Seek(0)
}

// Position returns the working directory's enumeration cursor, opaque
// except as an argument to Seek.
func (v *Volume) Position() uint32 {
	if v.wd == nil {
		return 0
	}
	return v.wd.Position()
}

// Seek restores a cursor position previously obtained from Position.
func (v *Volume) Seek(pos uint32) error {
	if v.wd == nil {
		return ErrNotMounted
	}
	v.lastErr = v.wd.Seek(pos)
	return v.lastErr
}

// OpenNext opens the next entry in the working directory and advances
// the cursor. It returns io.EOF, not recorded by LastError, when the
// directory is exhausted.
func (v *Volume) OpenNext(mode OpenMode) (Handle, error) {
	if v.wd == nil {
		return nil, ErrNotMounted
	}
	h, err := v.wd.OpenNext(mode)
	if err == io.EOF {
		v.lastErr = nil
	} else {
		v.lastErr = err
	}
	return h, err
}

// LastError returns the error of the most recent cursor operation, or
// nil if it succeeded.
func (v *Volume) LastError() error {
	return v.lastErr
}
