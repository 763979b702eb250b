package hostfs

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rstms/fatvol"
)

// entrySize keeps enumeration positions in the same 32-byte units as
// a FAT directory.
const entrySize = 32

// handle is an open host file or directory. File I/O opens the
// underlying os.File lazily so that enumeration can hand out handles
// on entries the process cannot write.
type handle struct {
	eng     *Engine
	path    string
	mode    fatvol.OpenMode
	dir     bool
	file    *os.File
	pos     uint32
	names   []string
	loaded  bool
	closed  bool
	removed bool
}

// ensure handle implements fatvol.Handle
var _ fatvol.Handle = (*handle)(nil)

// translate maps host filesystem errors onto the fatvol taxonomy.
func translate(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fatvol.ErrNotExist
	case errors.Is(err, fs.ErrExist):
		return fatvol.ErrExist
	case errors.Is(err, fs.ErrPermission):
		return fatvol.ErrPerm
	}
	return Fatal(err)
}

func osFlags(mode fatvol.OpenMode) int {
	var flags int
	switch {
	case mode.CanRead() && mode.CanWrite():
		flags = os.O_RDWR
	case mode.CanWrite():
		flags = os.O_WRONLY
	default:
		flags = os.O_RDONLY
	}
	if mode&fatvol.ModeAppend != 0 {
		flags |= os.O_APPEND
	}
	return flags
}

func readOnlyPerm(info os.FileInfo) bool {
	return info.Mode().Perm()&0200 == 0
}

// openFrom resolves path against the host directory start.
func (e *Engine) openFrom(start, path string, mode fatvol.OpenMode) (*handle, error) {
	full := filepath.Join(start, filepath.FromSlash(path))
	if !e.contains(full) {
		return nil, fatvol.ErrPerm
	}
	info, err := os.Stat(full)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, translate(err)
		}
		if mode&fatvol.ModeCreate == 0 {
			return nil, fatvol.ErrNotExist
		}
		f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err != nil {
			return nil, translate(err)
		}
		f.Close()
		return &handle{eng: e, path: full, mode: mode}, nil
	}
	if mode&fatvol.ModeCreate != 0 && mode&fatvol.ModeExcl != 0 {
		return nil, fatvol.ErrExist
	}
	if info.IsDir() {
		if mode.CanWrite() {
			return nil, fatvol.ErrIsDir
		}
		return &handle{eng: e, path: full, mode: mode, dir: true}, nil
	}
	h := &handle{eng: e, path: full, mode: mode}
	if mode&fatvol.ModeTrunc != 0 {
		if !mode.CanWrite() {
			return nil, fatvol.ErrPerm
		}
		if readOnlyPerm(info) {
			return nil, fatvol.ErrReadOnly
		}
		if err := os.Truncate(full, 0); err != nil {
			return nil, translate(err)
		}
	}
	return h, nil
}

func (h *handle) ok() error {
	if h.closed || h.removed {
		return fatvol.ErrClosed
	}
	return nil
}

func (h *handle) ensureFile() error {
	if h.file != nil {
		return nil
	}
	f, err := os.OpenFile(h.path, osFlags(h.mode), 0644)
	if err != nil {
		return translate(err)
	}
	h.file = f
	return nil
}

func (h *handle) Read(p []byte) (int, error) {
	if err := h.ok(); err != nil {
		return 0, err
	}
	if h.dir {
		return 0, fatvol.ErrIsDir
	}
	if !h.mode.CanRead() {
		return 0, fatvol.ErrPerm
	}
	if err := h.ensureFile(); err != nil {
		return 0, err
	}
	return h.file.Read(p)
}

func (h *handle) Write(p []byte) (int, error) {
	if err := h.ok(); err != nil {
		return 0, err
	}
	if h.dir {
		return 0, fatvol.ErrIsDir
	}
	if !h.mode.CanWrite() {
		return 0, fatvol.ErrPerm
	}
	if info, err := os.Stat(h.path); err == nil && readOnlyPerm(info) {
		return 0, fatvol.ErrReadOnly
	}
	if err := h.ensureFile(); err != nil {
		return 0, err
	}
	return h.file.Write(p)
}

func (h *handle) Close() error {
	h.closed = true
	if h.file != nil {
		f := h.file
		h.file = nil
		return f.Close()
	}
	return nil
}

func (h *handle) Name() string {
	if h.IsRoot() {
		return "/"
	}
	return filepath.Base(h.path)
}

func (h *handle) Size() int64 {
	if h.dir {
		return 0
	}
	info, err := os.Stat(h.path)
	if err != nil {
		return 0
	}
	return info.Size()
}

func (h *handle) ModTime() time.Time {
	info, err := os.Stat(h.path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

func (h *handle) Attr() fatvol.DirectoryAttr {
	var attr fatvol.DirectoryAttr
	if h.dir {
		attr |= fatvol.AttrDirectory
	}
	info, err := os.Stat(h.path)
	if err == nil && readOnlyPerm(info) {
		attr |= fatvol.AttrReadOnly
	}
	return attr
}

// SetAttr supports the read-only bit, mapped to the owner write
// permission. Hidden and system have no host equivalent.
func (h *handle) SetAttr(attr fatvol.DirectoryAttr, state bool) error {
	if err := h.ok(); err != nil {
		return err
	}
	if attr != fatvol.AttrReadOnly {
		return Fatalf("unsettable attribute")
	}
	info, err := os.Stat(h.path)
	if err != nil {
		return translate(err)
	}
	perm := info.Mode().Perm()
	if state {
		perm &^= 0222
	} else {
		perm |= 0200
	}
	if err := os.Chmod(h.path, perm); err != nil {
		return translate(err)
	}
	return nil
}

func (h *handle) IsDir() bool {
	return h.dir
}

func (h *handle) IsFile() bool {
	return !h.dir
}

func (h *handle) IsRoot() bool {
	return filepath.Clean(h.path) == h.eng.root
}

func (h *handle) Open(path string, mode fatvol.OpenMode) (fatvol.Handle, error) {
	if err := h.ok(); err != nil {
		return nil, err
	}
	if !h.dir {
		return nil, fatvol.ErrNotDir
	}
	return h.eng.openFrom(h.path, path, mode)
}

// load snapshots the directory listing. The snapshot is kept for the
// life of the handle so positions stay stable while entries are
// removed; Seek(0) refreshes it.
func (h *handle) load() error {
	if h.loaded {
		return nil
	}
	entries, err := os.ReadDir(h.path)
	if err != nil {
		return translate(err)
	}
	h.names = h.names[:0]
	for _, entry := range entries {
		h.names = append(h.names, entry.Name())
	}
	h.loaded = true
	return nil
}

func (h *handle) OpenNext(mode fatvol.OpenMode) (fatvol.Handle, error) {
	if err := h.ok(); err != nil {
		return nil, err
	}
	if !h.dir {
		return nil, fatvol.ErrNotDir
	}
	if err := h.load(); err != nil {
		return nil, err
	}
	for idx := int(h.pos) / entrySize; idx < len(h.names); idx++ {
		full := filepath.Join(h.path, h.names[idx])
		info, err := os.Stat(full)
		if err != nil {
			// entry removed since the snapshot; skip like a free slot
			continue
		}
		h.pos = uint32((idx + 1) * entrySize)
		return &handle{eng: h.eng, path: full, mode: mode, dir: info.IsDir()}, nil
	}
	h.pos = uint32(len(h.names) * entrySize)
	return nil, io.EOF
}

func (h *handle) Mkdir(path string, parents bool) (fatvol.Handle, error) {
	if err := h.ok(); err != nil {
		return nil, err
	}
	if !h.dir {
		return nil, fatvol.ErrNotDir
	}
	full := filepath.Join(h.path, filepath.FromSlash(path))
	if !h.eng.contains(full) {
		return nil, fatvol.ErrPerm
	}
	if _, err := os.Stat(full); err == nil {
		return nil, fatvol.ErrExist
	}
	var err error
	if parents {
		err = os.MkdirAll(full, 0755)
	} else {
		err = os.Mkdir(full, 0755)
	}
	if err != nil {
		return nil, translate(err)
	}
	return &handle{eng: h.eng, path: full, mode: fatvol.ModeRead, dir: true}, nil
}

func (h *handle) Rename(start fatvol.Handle, newPath string) error {
	if err := h.ok(); err != nil {
		return err
	}
	if h.IsRoot() {
		return fatvol.ErrPerm
	}
	s, valid := start.(*handle)
	if !valid || s.eng != h.eng {
		return Fatalf("rename start is not a handle on this engine")
	}
	if !s.dir {
		return fatvol.ErrNotDir
	}
	full := filepath.Join(s.path, filepath.FromSlash(newPath))
	if !h.eng.contains(full) {
		return fatvol.ErrPerm
	}
	if _, err := os.Stat(full); err == nil {
		return fatvol.ErrExist
	}
	if err := os.Rename(h.path, full); err != nil {
		return translate(err)
	}
	h.path = full
	return nil
}

func (h *handle) Remove() error {
	if err := h.ok(); err != nil {
		return err
	}
	if h.dir {
		return fatvol.ErrIsDir
	}
	if !h.mode.CanWrite() {
		return fatvol.ErrPerm
	}
	info, err := os.Stat(h.path)
	if err != nil {
		return translate(err)
	}
	if readOnlyPerm(info) {
		return fatvol.ErrReadOnly
	}
	if h.file != nil {
		h.file.Close()
		h.file = nil
	}
	if err := os.Remove(h.path); err != nil {
		return translate(err)
	}
	h.removed = true
	h.closed = true
	return nil
}

func (h *handle) Rmdir() error {
	if err := h.ok(); err != nil {
		return err
	}
	if !h.dir {
		return fatvol.ErrNotDir
	}
	if h.IsRoot() {
		return fatvol.ErrPerm
	}
	entries, err := os.ReadDir(h.path)
	if err != nil {
		return translate(err)
	}
	if len(entries) > 0 {
		return fatvol.ErrNotEmpty
	}
	if err := os.Remove(h.path); err != nil {
		return translate(err)
	}
	h.removed = true
	h.closed = true
	return nil
}

func (h *handle) Truncate(size int64) error {
	if err := h.ok(); err != nil {
		return err
	}
	if h.dir {
		return fatvol.ErrIsDir
	}
	if !h.mode.CanWrite() {
		return fatvol.ErrPerm
	}
	info, err := os.Stat(h.path)
	if err != nil {
		return translate(err)
	}
	if readOnlyPerm(info) {
		return fatvol.ErrReadOnly
	}
	if err := os.Truncate(h.path, size); err != nil {
		return translate(err)
	}
	if h.file != nil {
		if _, err := h.file.Seek(size, io.SeekStart); err != nil {
			return Fatal(err)
		}
	}
	return nil
}

func (h *handle) Position() uint32 {
	if h.dir {
		return h.pos
	}
	if h.file == nil {
		return 0
	}
	off, err := h.file.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0
	}
	return uint32(off)
}

func (h *handle) Seek(pos uint32) error {
	if err := h.ok(); err != nil {
		return err
	}
	if h.dir {
		if pos == 0 {
			h.loaded = false
			h.pos = 0
			return nil
		}
		if err := h.load(); err != nil {
			return err
		}
		if pos%entrySize != 0 || int(pos)/entrySize > len(h.names) {
			return fatvol.ErrBadPos
		}
		h.pos = pos
		return nil
	}
	if err := h.ensureFile(); err != nil {
		return err
	}
	if _, err := h.file.Seek(int64(pos), io.SeekStart); err != nil {
		return fatvol.ErrBadPos
	}
	return nil
}
