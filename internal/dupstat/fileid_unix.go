//go:build unix

package dupstat

import "golang.org/x/sys/unix"

// fileID identifies a file by device and inode.
type fileID struct {
	dev uint64
	ino uint64
}

// statID resolves path, following symlinks, to its device and inode.
//
//nolint:unconvert // Dev and Ino widths differ between platforms
func statID(path string) (fileID, bool) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return fileID{}, false
	}

	return fileID{dev: uint64(st.Dev), ino: uint64(st.Ino)}, true //nolint:gosec // Dev is never negative
}
