package memfat

import (
	"strings"
	"time"

	"github.com/rstms/fatvol"
)

// entrySize is the on-disk size of a FAT directory entry; enumeration
// positions are multiples of it.
const entrySize = 32

// node is one file or directory in the tree.
type node struct {
	name    string
	attr    fatvol.DirectoryAttr
	mtime   time.Time
	parent  *node
	data    []byte  // file contents
	slots   []*slot // directory entries, tombstones included
	removed bool
}

// slot is one directory entry position. Removal tombstones the slot
// rather than compacting, matching FAT directory behavior, and a later
// create reuses the first free slot.
type slot struct {
	node    *node
	deleted bool
}

func newDir(name string, parent *node) *node {
	return &node{
		name:   name,
		attr:   fatvol.AttrDirectory,
		mtime:  time.Now(),
		parent: parent,
	}
}

func newFile(name string, parent *node) *node {
	return &node{
		name:   name,
		mtime:  time.Now(),
		parent: parent,
	}
}

func (n *node) isDir() bool {
	return n.attr&fatvol.AttrDirectory != 0
}

// find returns the live slot whose node matches name
// case-insensitively, or nil.
func (n *node) find(name string) *slot {
	name = strings.ToUpper(name)
	for _, s := range n.slots {
		if !s.deleted && strings.ToUpper(s.node.name) == name {
			return s
		}
	}
	return nil
}

func (n *node) liveCount() int {
	count := 0
	for _, s := range n.slots {
		if !s.deleted {
			count++
		}
	}
	return count
}

func (n *node) addChild(child *node) {
	child.parent = n
	n.mtime = time.Now()
	for _, s := range n.slots {
		if s.deleted {
			s.node = child
			s.deleted = false
			return
		}
	}
	n.slots = append(n.slots, &slot{node: child})
}

// unlink tombstones child's slot in this directory.
func (n *node) unlink(child *node) {
	for _, s := range n.slots {
		if !s.deleted && s.node == child {
			s.deleted = true
			n.mtime = time.Now()
			return
		}
	}
}

// splitPath breaks a slash-separated path into components, dropping
// empty ones so "/a//b/" and "a/b" resolve identically.
func splitPath(path string) []string {
	parts := strings.Split(path, "/")
	components := parts[:0]
	for _, p := range parts {
		if p != "" {
			components = append(components, p)
		}
	}
	return components
}

// walkDir resolves components against dir, which must name existing
// directories all the way down. "." and ".." resolve in place; the
// root is its own parent.
func walkDir(dir *node, components []string) (*node, error) {
	for _, c := range components {
		switch c {
		case ".":
			continue
		case "..":
			if dir.parent != nil {
				dir = dir.parent
			}
			continue
		}
		s := dir.find(c)
		if s == nil {
			return nil, fatvol.ErrNotExist
		}
		if !s.node.isDir() {
			return nil, fatvol.ErrNotDir
		}
		dir = s.node
	}
	return dir, nil
}
