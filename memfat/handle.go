package memfat

import (
	"errors"
	"io"
	"time"

	"github.com/rstms/fatvol"
)

// handle is an open entry in the tree. Directory handles carry the
// enumeration cursor in pos; file handles carry the I/O offset in off.
type handle struct {
	eng    *Engine
	n      *node
	mode   fatvol.OpenMode
	pos    uint32
	off    int64
	closed bool
}

// ensure handle implements fatvol.Handle
var _ fatvol.Handle = (*handle)(nil)

// ok fails once the handle is closed or its entry has been unlinked.
func (h *handle) ok() error {
	if h.closed || h.n.removed {
		return fatvol.ErrClosed
	}
	return nil
}

// openFrom resolves path against start and opens the entry it names.
func (e *Engine) openFrom(start *node, path string, mode fatvol.OpenMode) (*handle, error) {
	components := splitPath(path)
	if len(components) == 0 {
		return &handle{eng: e, n: start, mode: mode}, nil
	}
	leaf := components[len(components)-1]
	if leaf == "." || leaf == ".." {
		dir, err := walkDir(start, components)
		if err != nil {
			return nil, err
		}
		return &handle{eng: e, n: dir, mode: mode}, nil
	}
	parent, err := walkDir(start, components[:len(components)-1])
	if err != nil {
		return nil, err
	}
	s := parent.find(leaf)
	if s == nil {
		if mode&fatvol.ModeCreate == 0 {
			return nil, fatvol.ErrNotExist
		}
		child := newFile(leaf, parent)
		parent.addChild(child)
		return &handle{eng: e, n: child, mode: mode}, nil
	}
	if mode&fatvol.ModeCreate != 0 && mode&fatvol.ModeExcl != 0 {
		return nil, fatvol.ErrExist
	}
	n := s.node
	if n.isDir() && mode.CanWrite() {
		return nil, fatvol.ErrIsDir
	}
	h := &handle{eng: e, n: n, mode: mode}
	if !n.isDir() {
		if mode&fatvol.ModeTrunc != 0 {
			if !mode.CanWrite() {
				return nil, fatvol.ErrPerm
			}
			if n.attr&fatvol.AttrReadOnly != 0 {
				return nil, fatvol.ErrReadOnly
			}
			n.data = n.data[:0]
			n.mtime = time.Now()
		}
		if mode&fatvol.ModeAppend != 0 {
			h.off = int64(len(n.data))
		}
	}
	return h, nil
}

func (h *handle) Read(p []byte) (int, error) {
	if err := h.ok(); err != nil {
		return 0, err
	}
	if h.n.isDir() {
		return 0, fatvol.ErrIsDir
	}
	if !h.mode.CanRead() {
		return 0, fatvol.ErrPerm
	}
	if h.off >= int64(len(h.n.data)) {
		return 0, io.EOF
	}
	n := copy(p, h.n.data[h.off:])
	h.off += int64(n)
	return n, nil
}

func (h *handle) Write(p []byte) (int, error) {
	if err := h.ok(); err != nil {
		return 0, err
	}
	if h.n.isDir() {
		return 0, fatvol.ErrIsDir
	}
	if !h.mode.CanWrite() {
		return 0, fatvol.ErrPerm
	}
	if h.n.attr&fatvol.AttrReadOnly != 0 {
		return 0, fatvol.ErrReadOnly
	}
	end := h.off + int64(len(p))
	if end > int64(len(h.n.data)) {
		grown := make([]byte, end)
		copy(grown, h.n.data)
		h.n.data = grown
	}
	copy(h.n.data[h.off:], p)
	h.off = end
	h.n.mtime = time.Now()
	return len(p), nil
}

func (h *handle) Close() error {
	h.closed = true
	return nil
}

func (h *handle) Name() string {
	return h.n.name
}

func (h *handle) Size() int64 {
	if h.n.isDir() {
		return 0
	}
	return int64(len(h.n.data))
}

func (h *handle) ModTime() time.Time {
	return h.n.mtime
}

func (h *handle) Attr() fatvol.DirectoryAttr {
	return h.n.attr
}

func (h *handle) SetAttr(attr fatvol.DirectoryAttr, state bool) error {
	if err := h.ok(); err != nil {
		return err
	}
	switch attr {
	case fatvol.AttrReadOnly:
	case fatvol.AttrHidden:
	case fatvol.AttrSystem:
	default:
		return errors.New("unsettable attribute")
	}
	if state {
		h.n.attr |= attr
	} else {
		h.n.attr &= ^attr
	}
	return nil
}

func (h *handle) IsDir() bool {
	return h.n.isDir()
}

func (h *handle) IsFile() bool {
	return !h.n.isDir()
}

func (h *handle) IsRoot() bool {
	return h.n == h.eng.root
}

func (h *handle) Open(path string, mode fatvol.OpenMode) (fatvol.Handle, error) {
	if err := h.ok(); err != nil {
		return nil, err
	}
	if !h.n.isDir() {
		return nil, fatvol.ErrNotDir
	}
	return h.eng.openFrom(h.n, path, mode)
}

func (h *handle) OpenNext(mode fatvol.OpenMode) (fatvol.Handle, error) {
	if err := h.ok(); err != nil {
		return nil, err
	}
	if !h.n.isDir() {
		return nil, fatvol.ErrNotDir
	}
	for idx := int(h.pos) / entrySize; idx < len(h.n.slots); idx++ {
		s := h.n.slots[idx]
		if s.deleted {
			continue
		}
		h.pos = uint32((idx + 1) * entrySize)
		return &handle{eng: h.eng, n: s.node, mode: mode}, nil
	}
	h.pos = uint32(len(h.n.slots) * entrySize)
	return nil, io.EOF
}

func (h *handle) Mkdir(path string, parents bool) (fatvol.Handle, error) {
	if err := h.ok(); err != nil {
		return nil, err
	}
	if !h.n.isDir() {
		return nil, fatvol.ErrNotDir
	}
	components := splitPath(path)
	if len(components) == 0 {
		return nil, fatvol.ErrExist
	}
	dir := h.n
	for i, c := range components {
		last := i == len(components)-1
		if c == "." || c == ".." {
			if last {
				return nil, fatvol.ErrExist
			}
			next, err := walkDir(dir, []string{c})
			if err != nil {
				return nil, err
			}
			dir = next
			continue
		}
		if s := dir.find(c); s != nil {
			if !s.node.isDir() {
				return nil, fatvol.ErrNotDir
			}
			if last {
				return nil, fatvol.ErrExist
			}
			dir = s.node
			continue
		}
		if !last && !parents {
			return nil, fatvol.ErrNotExist
		}
		child := newDir(c, dir)
		dir.addChild(child)
		dir = child
	}
	return &handle{eng: h.eng, n: dir, mode: fatvol.ModeRead}, nil
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
		return errors.New("rename start is not a handle on this engine")
	}
	if !s.n.isDir() {
		return fatvol.ErrNotDir
	}
	components := splitPath(newPath)
	if len(components) == 0 {
		return fatvol.ErrExist
	}
	leaf := components[len(components)-1]
	if leaf == "." || leaf == ".." {
		return fatvol.ErrExist
	}
	parent, err := walkDir(s.n, components[:len(components)-1])
	if err != nil {
		return err
	}
	if parent.find(leaf) != nil {
		return fatvol.ErrExist
	}
	h.n.parent.unlink(h.n)
	h.n.name = leaf
	parent.addChild(h.n)
	return nil
}

func (h *handle) Remove() error {
	if err := h.ok(); err != nil {
		return err
	}
	if h.n.isDir() {
		return fatvol.ErrIsDir
	}
	if !h.mode.CanWrite() {
		return fatvol.ErrPerm
	}
	if h.n.attr&fatvol.AttrReadOnly != 0 {
		return fatvol.ErrReadOnly
	}
	h.n.parent.unlink(h.n)
	h.n.removed = true
	h.closed = true
	return nil
}

func (h *handle) Rmdir() error {
	if err := h.ok(); err != nil {
		return err
	}
	if !h.n.isDir() {
		return fatvol.ErrNotDir
	}
	if h.IsRoot() {
		return fatvol.ErrPerm
	}
	if h.n.attr&fatvol.AttrReadOnly != 0 {
		return fatvol.ErrReadOnly
	}
	if h.n.liveCount() > 0 {
		return fatvol.ErrNotEmpty
	}
	h.n.parent.unlink(h.n)
	h.n.removed = true
	h.closed = true
	return nil
}

func (h *handle) Truncate(size int64) error {
	if err := h.ok(); err != nil {
		return err
	}
	if h.n.isDir() {
		return fatvol.ErrIsDir
	}
	if !h.mode.CanWrite() {
		return fatvol.ErrPerm
	}
	if h.n.attr&fatvol.AttrReadOnly != 0 {
		return fatvol.ErrReadOnly
	}
	if size < 0 {
		return errors.New("negative size")
	}
	if size <= int64(len(h.n.data)) {
		h.n.data = h.n.data[:size]
	} else {
		grown := make([]byte, size)
		copy(grown, h.n.data)
		h.n.data = grown
	}
	h.off = size
	h.n.mtime = time.Now()
	return nil
}

func (h *handle) Position() uint32 {
	if h.n.isDir() {
		return h.pos
	}
	return uint32(h.off)
}

func (h *handle) Seek(pos uint32) error {
	if err := h.ok(); err != nil {
		return err
	}
	if h.n.isDir() {
		if pos%entrySize != 0 || int(pos)/entrySize > len(h.n.slots) {
			return fatvol.ErrBadPos
		}
		h.pos = pos
		return nil
	}
	if int64(pos) > int64(len(h.n.data)) {
		return fatvol.ErrBadPos
	}
	h.off = int64(pos)
	return nil
}
