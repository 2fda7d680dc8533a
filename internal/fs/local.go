package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalFS implements FileSystem using the local filesystem.
type LocalFS struct {
	root string
}

// NewLocalFS creates a LocalFS rooted at the given directory, creating the
// directory if it does not exist. created reports whether it had to.
func NewLocalFS(root string) (l *LocalFS, created bool, err error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, false, err
	}
	info, err := os.Stat(abs)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(abs, 0o755); err != nil {
			return nil, false, err
		}
		created = true
	case err != nil:
		return nil, false, err
	case !info.IsDir():
		return nil, false, fmt.Errorf("%s is not a directory", abs)
	}
	return &LocalFS{root: abs}, created, nil
}

// Root returns the absolute base directory.
func (l *LocalFS) Root() string {
	return l.root
}

// Resolve joins path onto the root and rejects anything that lands outside
// it. The root itself is not a valid file path.
func (l *LocalFS) Resolve(path string) (string, error) {
	full := filepath.Join(l.root, path)
	rel, err := filepath.Rel(l.root, full)
	if err != nil {
		return "", err
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	return full, nil
}

// ReadFile reads the contents of the file at the given path relative to the root.
func (l *LocalFS) ReadFile(path string) ([]byte, error) {
	full, err := l.Resolve(path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(full)
}

// CreateFile creates a new file relative to the root holding data.
func (l *LocalFS) CreateFile(path string, data []byte) error {
	full, err := l.Resolve(path)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Remove deletes the file or empty directory at path.
func (l *LocalFS) Remove(path string) error {
	full, err := l.Resolve(path)
	if err != nil {
		return err
	}
	return os.Remove(full)
}

// Stat returns metadata for the file or directory at the given path relative to the root.
func (l *LocalFS) Stat(path string) (FileInfo, error) {
	full, err := l.Resolve(path)
	if err != nil {
		return FileInfo{}, err
	}
	return stat(full)
}

// ReadDir lists the immediate children of the directory at the given path
// relative to the root. An empty path lists the root itself.
func (l *LocalFS) ReadDir(path string) ([]FileInfo, error) {
	dir := l.root
	if path != "" && path != "." {
		full, err := l.Resolve(path)
		if err != nil {
			return nil, err
		}
		dir = full
	}

	// os.ReadDir sorts by name; File.ReadDir keeps directory order.
	d, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer func() { _ = d.Close() }()

	entries, err := d.ReadDir(-1)
	if err != nil {
		return nil, err
	}
	result := make([]FileInfo, 0, len(entries))
	for _, e := range entries {
		info, err := stat(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		result = append(result, info)
	}
	return result, nil
}

func stat(full string) (FileInfo, error) {
	info, err := os.Stat(full)
	if err != nil {
		return FileInfo{}, err
	}
	return FileInfo{
		Name:    info.Name(),
		IsDir:   info.IsDir(),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}
