package fatvol

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
)

// LS is the bitwise-inclusive OR of directory listing flags.
type LS uint8

const (
	// LSDate includes the modification date in the listing.
	LSDate LS = 1 << iota
	// LSSize includes the file size in the listing.
	LSSize
	// LSRecurse lists subdirectories recursively, indented.
	LSRecurse
)

// Ls writes a listing of the working directory to w.
func (v *Volume) Ls(w io.Writer, flags LS) error {
	if v.wd == nil {
		return ErrNotMounted
	}
	return v.lsDir(w, v.wd, flags, 0)
}

// LsPath writes a listing of the directory at path, resolved from the
// volume root, to w.
func (v *Volume) LsPath(w io.Writer, path string, flags LS) error {
	dir, err := v.resolve(true, path, ModeRead)
	if err != nil {
		return err
	}
	defer dir.Close()
	if !dir.IsDir() {
		return fmt.Errorf("ls %s: %w", path, ErrNotDir)
	}
	return v.lsDir(w, dir, flags, 0)
}

func (v *Volume) lsDir(w io.Writer, dir Handle, flags LS, indent int) error {
	if err := dir.Seek(0); err != nil {
		return err
	}
	for {
		f, err := dir.OpenNext(ModeRead)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		err = lsEntry(w, f, flags, indent)
		if err == nil && f.IsDir() && flags&LSRecurse != 0 {
			pos := dir.Position()
			err = v.lsDir(w, f, flags, indent+2)
			if err == nil {
				err = dir.Seek(pos)
			}
		}
		cerr := f.Close()
		if err != nil {
			return err
		}
		if cerr != nil {
			return cerr
		}
	}
}

func lsEntry(w io.Writer, f Handle, flags LS, indent int) error {
	var b strings.Builder
	for range indent {
		b.WriteByte(' ')
	}
	if flags&LSDate != 0 {
		b.WriteString(f.ModTime().Format("2006-01-02 15:04"))
		b.WriteByte(' ')
	}
	if flags&LSSize != 0 {
		fmt.Fprintf(&b, "%10s ", humanize.Comma(f.Size()))
	}
	b.WriteString(f.Name())
	if f.IsDir() {
		b.WriteByte('/')
	}
	b.WriteByte('\n')
	_, err := io.WriteString(w, b.String())
	return err
}
