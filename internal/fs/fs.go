// Package fs provides a filesystem abstraction rooted at a single base directory.
package fs

import (
	"errors"
	"time"
)

// ErrOutsideRoot is returned when a path resolves outside the filesystem root.
var ErrOutsideRoot = errors.New("path escapes base directory")

// FileInfo holds file metadata.
type FileInfo struct {
	Name    string
	IsDir   bool
	Size    int64
	ModTime time.Time
}

// FileSystem abstracts the file operations filedesk needs so the file
// manager can be exercised against the local disk or a test double.
// Paths are relative to the root.
type FileSystem interface {
	Root() string
	ReadFile(path string) ([]byte, error)
	// CreateFile writes data to a new file. It fails with fs.ErrExist if
	// anything already exists at path.
	CreateFile(path string, data []byte) error
	Remove(path string) error
	Stat(path string) (FileInfo, error)
	// ReadDir returns the metadata of every direct child of the directory,
	// in the order the operating system enumerates them.
	ReadDir(path string) ([]FileInfo, error)
}
