package fatvol_test

import (
	"io"
	"strings"
	"testing"

	"github.com/rstms/fatvol"
	"github.com/rstms/fatvol/memfat"
	"github.com/stretchr/testify/require"
)

func mount(t *testing.T) (*fatvol.Volume, *fatvol.Registry) {
	reg := fatvol.NewRegistry()
	v := fatvol.New(memfat.New(), reg)
	err := v.Mount(fatvol.NewRAMDisk(2880))
	require.Nil(t, err)
	return v, reg
}

func writeFile(t *testing.T, v *fatvol.Volume, path, content string) {
	f, err := v.Open(path, fatvol.ModeCreate|fatvol.ModeWrite)
	require.Nil(t, err)
	_, err = f.Write([]byte(content))
	require.Nil(t, err)
	require.Nil(t, f.Close())
}

func TestMountActivates(t *testing.T) {
	reg := fatvol.NewRegistry()
	require.Nil(t, reg.Current())

	v := fatvol.New(memfat.New(), reg)
	require.Nil(t, v.Mount(fatvol.NewRAMDisk(2880)))
	require.Equal(t, v, reg.Current())
}

func TestMountWithoutActivateClaimsEmptyRegistry(t *testing.T) {
	reg := fatvol.NewRegistry()

	// first mount claims the register even when not asked to
	a := fatvol.New(memfat.New(), reg)
	require.Nil(t, a.MountPartition(fatvol.NewRAMDisk(2880), 1, false))
	require.Equal(t, a, reg.Current())

	// second mount without activate leaves it alone
	b := fatvol.New(memfat.New(), reg)
	require.Nil(t, b.MountPartition(fatvol.NewRAMDisk(2880), 1, false))
	require.Equal(t, a, reg.Current())
}

func TestMountFailureRegistersNothing(t *testing.T) {
	reg := fatvol.NewRegistry()
	v := fatvol.New(memfat.New(), reg)
	err := v.MountPartition(fatvol.NewRAMDisk(2880), 9, true)
	require.NotNil(t, err)
	require.Nil(t, reg.Current())
	require.False(t, v.Exists("anything"))
}

func TestActivateOrdering(t *testing.T) {
	a, reg := mount(t)
	b := fatvol.New(memfat.New(), reg)
	require.Nil(t, b.Mount(fatvol.NewRAMDisk(2880)))

	a.Activate()
	b.Activate()
	require.Equal(t, b, reg.Current())
	a.Activate()
	require.Equal(t, a, reg.Current())
}

func TestResetToRootMatchesRootRelative(t *testing.T) {
	v, _ := mount(t)
	require.Nil(t, v.Mkdir("a/b", true))
	writeFile(t, v, "a/b/f.txt", "x")

	require.Nil(t, v.ResetToRoot())
	require.Equal(t, v.Exists("a/b/f.txt"), v.RelExists("a/b/f.txt"))
	require.True(t, v.RelExists("a/b/f.txt"))
	require.Equal(t, v.Exists("missing"), v.RelExists("missing"))
}

func TestChdir(t *testing.T) {
	v, _ := mount(t)
	require.Nil(t, v.Mkdir("a/b", true))
	writeFile(t, v, "a/b/f.txt", "x")

	require.Nil(t, v.Chdir("a"))
	require.True(t, v.RelExists("b/f.txt"))
	require.False(t, v.RelExists("a/b/f.txt"))
	require.True(t, v.Exists("a/b/f.txt"))

	require.Nil(t, v.Chdir("b"))
	require.True(t, v.IsFile("f.txt"))

	err := v.Chdir("f.txt")
	require.ErrorIs(t, err, fatvol.ErrNotDir)

	require.Nil(t, v.Chdir(".."))
	require.True(t, v.IsDir("b"))
}

func TestMkdirParents(t *testing.T) {
	v, _ := mount(t)

	err := v.Mkdir("a/b/c", false)
	require.ErrorIs(t, err, fatvol.ErrNotExist)

	require.Nil(t, v.Mkdir("a/b/c", true))
	require.True(t, v.IsDir("a"))
	require.True(t, v.IsDir("a/b"))
	require.True(t, v.IsDir("a/b/c"))

	err = v.Mkdir("a/b/c", true)
	require.ErrorIs(t, err, fatvol.ErrExist)
}

func TestRoundTrip(t *testing.T) {
	v, _ := mount(t)

	writeFile(t, v, "f.txt", "contents")
	require.True(t, v.Exists("f.txt"))

	f, err := v.Open("f.txt", fatvol.ModeRead)
	require.Nil(t, err)
	data, err := io.ReadAll(f)
	require.Nil(t, err)
	require.Equal(t, "contents", string(data))
	require.Nil(t, f.Close())

	require.Nil(t, v.Remove("f.txt"))
	require.False(t, v.Exists("f.txt"))
}

func TestRemoveRefusesDirectory(t *testing.T) {
	v, _ := mount(t)
	require.Nil(t, v.Mkdir("d", true))
	require.NotNil(t, v.Remove("d"))
	require.True(t, v.Exists("d"))
}

func TestRename(t *testing.T) {
	v, _ := mount(t)
	writeFile(t, v, "old.txt", "data")

	writeFile(t, v, "new.txt", "occupied")
	require.ErrorIs(t, v.Rename("old.txt", "new.txt"), fatvol.ErrExist)

	require.Nil(t, v.Remove("new.txt"))
	require.Nil(t, v.Rename("old.txt", "new.txt"))
	require.False(t, v.Exists("old.txt"))
	require.True(t, v.Exists("new.txt"))
}

func TestRmdir(t *testing.T) {
	v, _ := mount(t)
	require.Nil(t, v.Mkdir("d", true))
	writeFile(t, v, "d/f", "x")

	require.ErrorIs(t, v.Rmdir("d"), fatvol.ErrNotEmpty)
	require.Nil(t, v.Remove("d/f"))
	require.Nil(t, v.Rmdir("d"))
	require.False(t, v.Exists("d"))
}

func TestTruncate(t *testing.T) {
	v, _ := mount(t)
	writeFile(t, v, "f", "0123456789")

	require.Nil(t, v.Truncate("f", 3))
	f, err := v.Open("f", fatvol.ModeRead)
	require.Nil(t, err)
	data, err := io.ReadAll(f)
	require.Nil(t, err)
	require.Equal(t, "012", string(data))
	f.Close()

	require.ErrorIs(t, v.Truncate("missing", 0), fatvol.ErrNotExist)
}

func TestRelativeFamilyFollowsWorkingDirectory(t *testing.T) {
	v, _ := mount(t)
	require.Nil(t, v.Mkdir("sub", true))
	writeFile(t, v, "sub/f", "x")
	require.Nil(t, v.Mkdir("sub/d", true))

	require.Nil(t, v.Chdir("sub"))
	require.True(t, v.RelExists("f"))
	require.Nil(t, v.RelRemove("f"))
	require.False(t, v.Exists("sub/f"))
	require.Nil(t, v.RelRmdir("d"))
	require.False(t, v.Exists("sub/d"))
}

func TestEnumerationResume(t *testing.T) {
	v, _ := mount(t)
	names := []string{"a", "b", "c", "d", "e"}
	for _, name := range names {
		writeFile(t, v, name, name)
	}

	v.Rewind()
	require.Nil(t, v.LastError())

	// read two entries, capture the cursor
	for range 2 {
		f, err := v.OpenNext(fatvol.ModeRead)
		require.Nil(t, err)
		f.Close()
	}
	pos := v.Position()

	// drain the rest
	var uninterrupted []string
	for {
		f, err := v.OpenNext(fatvol.ModeRead)
		if err == io.EOF {
			break
		}
		require.Nil(t, err)
		uninterrupted = append(uninterrupted, f.Name())
		f.Close()
	}
	require.Equal(t, []string{"c", "d", "e"}, uninterrupted)

	// resume from the captured position
	require.Nil(t, v.Seek(pos))
	f, err := v.OpenNext(fatvol.ModeRead)
	require.Nil(t, err)
	require.Equal(t, "c", f.Name())
	f.Close()
}

func TestSeekInvalidRecordsLastError(t *testing.T) {
	v, _ := mount(t)
	err := v.Seek(7)
	require.ErrorIs(t, err, fatvol.ErrBadPos)
	require.ErrorIs(t, v.LastError(), fatvol.ErrBadPos)

	v.Rewind()
	require.Nil(t, v.LastError())

	// exhausting the directory is not an error condition
	_, err = v.OpenNext(fatvol.ModeRead)
	require.Equal(t, io.EOF, err)
	require.Nil(t, v.LastError())
}

func TestRemoveWorkingDir(t *testing.T) {
	v, _ := mount(t)
	require.Nil(t, v.Mkdir("d", true))
	require.Nil(t, v.Chdir("d"))

	require.Nil(t, v.RemoveWorkingDir())
	require.False(t, v.Exists("d"))

	// cursor is back at root
	require.True(t, v.IsDir("."))
	writeFile(t, v, "f", "x")
	require.True(t, v.RelExists("f"))
}

func TestRemoveWorkingDirRefusesNonEmpty(t *testing.T) {
	v, _ := mount(t)
	require.Nil(t, v.Mkdir("d", true))
	writeFile(t, v, "d/f", "x")
	require.Nil(t, v.Chdir("d"))

	require.ErrorIs(t, v.RemoveWorkingDir(), fatvol.ErrNotEmpty)
	// the reset to root still happened
	require.True(t, v.RelExists("d/f"))
}

func TestRemoveAll(t *testing.T) {
	v, _ := mount(t)
	require.Nil(t, v.Mkdir("top/mid/deep", true))
	writeFile(t, v, "top/a", "x")
	writeFile(t, v, "top/mid/b", "x")
	writeFile(t, v, "top/mid/deep/c", "x")

	// a read-only file must not stop the recursion
	f, err := v.Open("top/mid/b", fatvol.ModeRead)
	require.Nil(t, err)
	require.Nil(t, f.SetAttr(fatvol.AttrReadOnly, true))
	f.Close()

	require.Nil(t, v.Chdir("top"))
	require.Nil(t, v.RemoveAll())

	require.False(t, v.Exists("top"))
	// cursor is back at the empty root
	var listing strings.Builder
	require.Nil(t, v.Ls(&listing, 0))
	require.Equal(t, "", listing.String())
}

func TestRemoveAllOnRootKeepsRoot(t *testing.T) {
	v, _ := mount(t)
	writeFile(t, v, "f", "x")
	require.Nil(t, v.Mkdir("d", true))

	require.Nil(t, v.RemoveAll())
	require.False(t, v.Exists("f"))
	require.False(t, v.Exists("d"))
	writeFile(t, v, "again", "x")
	require.True(t, v.Exists("again"))
}

func TestLs(t *testing.T) {
	v, _ := mount(t)
	require.Nil(t, v.Mkdir("sub", true))
	writeFile(t, v, "sub/inner.txt", "abc")
	writeFile(t, v, "top.txt", "0123456789")

	var plain strings.Builder
	require.Nil(t, v.Ls(&plain, 0))
	require.Equal(t, "sub/\ntop.txt\n", plain.String())

	var recursive strings.Builder
	require.Nil(t, v.Ls(&recursive, fatvol.LSRecurse))
	require.Equal(t, "sub/\n  inner.txt\ntop.txt\n", recursive.String())

	var sized strings.Builder
	require.Nil(t, v.LsPath(&sized, "sub", fatvol.LSSize))
	require.Contains(t, sized.String(), "3 inner.txt")

	var dated strings.Builder
	require.Nil(t, v.Ls(&dated, fatvol.LSDate))
	require.Contains(t, dated.String(), "top.txt")

	require.ErrorIs(t, v.LsPath(&plain, "top.txt", 0), fatvol.ErrNotDir)
	require.ErrorIs(t, v.LsPath(&plain, "missing", 0), fatvol.ErrNotExist)
}

func TestIsDirIsFileCloseHandles(t *testing.T) {
	v, _ := mount(t)
	require.Nil(t, v.Mkdir("d", true))
	writeFile(t, v, "f", "x")

	require.True(t, v.IsDir("d"))
	require.False(t, v.IsDir("f"))
	require.True(t, v.IsFile("f"))
	require.False(t, v.IsFile("d"))
	require.False(t, v.IsDir("missing"))
	require.False(t, v.IsFile("missing"))
}

func TestUnmountedVolume(t *testing.T) {
	v := fatvol.New(memfat.New(), fatvol.NewRegistry())
	require.False(t, v.Exists("x"))
	require.ErrorIs(t, v.Mkdir("x", true), fatvol.ErrNotMounted)
	require.ErrorIs(t, v.RemoveAll(), fatvol.ErrNotMounted)
	_, err := v.OpenNext(fatvol.ModeRead)
	require.ErrorIs(t, err, fatvol.ErrNotMounted)
}

func TestDefaultRegistry(t *testing.T) {
	v := fatvol.New(memfat.New(), nil)
	require.Nil(t, v.Mount(fatvol.NewRAMDisk(2880)))
	require.Equal(t, v, fatvol.CurrentVolume())
}
