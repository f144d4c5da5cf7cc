//go:build !unix

package dupstat

// fileID identifies a file by device and inode.
type fileID struct {
	dev uint64
	ino uint64
}

// statID is unsupported here; symlink aliases are kept as separate files.
func statID(string) (fileID, bool) {
	return fileID{}, false
}
