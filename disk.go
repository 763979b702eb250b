package fatvol

import (
	"fmt"
	"io"
	"os"
)

const defaultSectorSize = 512

// FileDisk is a BlockDevice backed by a file on the host filesystem,
// such as a floppy or SD card image.
type FileDisk struct {
	file       *os.File
	size       int64
	sectorSize int
}

var _ BlockDevice = (*FileDisk)(nil)

// NewFileDisk wraps an open file as a block device. The file size must
// be a multiple of the sector size.
func NewFileDisk(f *os.File) (*FileDisk, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size()%defaultSectorSize != 0 {
		return nil, fmt.Errorf("file size %d is not a multiple of %d", info.Size(), defaultSectorSize)
	}
	return &FileDisk{
		file:       f,
		size:       info.Size(),
		sectorSize: defaultSectorSize,
	}, nil
}

func (d *FileDisk) ReadAt(p []byte, off int64) (int, error) {
	return d.file.ReadAt(p, off)
}

func (d *FileDisk) WriteAt(p []byte, off int64) (int, error) {
	return d.file.WriteAt(p, off)
}

func (d *FileDisk) Close() error {
	return d.file.Close()
}

func (d *FileDisk) Len() int64 {
	return d.size
}

func (d *FileDisk) SectorSize() int {
	return d.sectorSize
}

// RAMDisk is a BlockDevice held entirely in memory.
type RAMDisk struct {
	data       []byte
	sectorSize int
}

var _ BlockDevice = (*RAMDisk)(nil)

// NewRAMDisk allocates an in-memory block device of the given number
// of 512-byte sectors.
func NewRAMDisk(sectors int) *RAMDisk {
	return &RAMDisk{
		data:       make([]byte, sectors*defaultSectorSize),
		sectorSize: defaultSectorSize,
	}
}

func (d *RAMDisk) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(d.data)) {
		return 0, fmt.Errorf("read offset %d out of range", off)
	}
	n := copy(p, d.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (d *RAMDisk) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(d.data)) {
		return 0, fmt.Errorf("write offset %d out of range", off)
	}
	n := copy(d.data[off:], p)
	if n < len(p) {
		return n, io.ErrShortWrite
	}
	return n, nil
}

func (d *RAMDisk) Close() error {
	return nil
}

func (d *RAMDisk) Len() int64 {
	return int64(len(d.data))
}

func (d *RAMDisk) SectorSize() int {
	return d.sectorSize
}
