package fatvol

import "io"

// RemoveWorkingDir removes the directory the working-directory cursor
// refers to, which must be empty and not the root, then resets the
// cursor to the root. The reset is attempted even if the removal
// fails, and both must succeed.
func (v *Volume) RemoveWorkingDir() error {
	if v.wd == nil {
		return ErrNotMounted
	}
	err := v.wd.Rmdir()
	if rerr := v.ResetToRoot(); err == nil {
		err = rerr
	}
	return err
}

// RemoveAll recursively deletes every entry reachable from the working
// directory, ignoring the read-only attribute on files, removes the
// working directory itself unless it is the root, and resets the
// cursor to the root. The reset is attempted regardless of the
// delete's outcome, and both must succeed.
//
// Do not use RemoveAll on a directory opened through the short alias
// of a long name; remove such directories entry by entry with Remove
// and Rmdir instead.
func (v *Volume) RemoveAll() error {
	if v.wd == nil {
		return ErrNotMounted
	}
	v.log.Debug("recursive delete", "dir", v.wd.Name())
	err := v.removeAll(v.wd)
	if err == nil && !v.wd.IsRoot() {
		err = v.wd.Rmdir()
	}
	if rerr := v.ResetToRoot(); err == nil {
		err = rerr
	}
	return err
}

// removeAll deletes the contents of dir, leaving dir itself in place.
// The cursor position is re-seeked after each unlink so enumeration
// continues correctly as slots are freed.
func (v *Volume) removeAll(dir Handle) error {
	if err := dir.Seek(0); err != nil {
		return err
	}
	for {
		f, err := dir.OpenNext(ModeRDWR)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		pos := dir.Position()
		if f.IsDir() {
			err = v.removeAll(f)
			if err == nil {
				err = f.Rmdir()
			}
		} else {
			if f.Attr()&AttrReadOnly != 0 {
				err = f.SetAttr(AttrReadOnly, false)
			}
			if err == nil {
				err = f.Remove()
			}
		}
		cerr := f.Close()
		if err != nil {
			return err
		}
		if cerr != nil {
			return cerr
		}
		if err := dir.Seek(pos); err != nil {
			return err
		}
	}
}
