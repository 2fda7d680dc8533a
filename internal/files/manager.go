// Package files implements create, read, delete and list operations confined
// to a single base directory. Every operation reports its outcome as a result
// value; none of them return errors or panic.
package files

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"path/filepath"
	"strings"

	mfs "github.com/CageChen/filedesk/internal/fs"
	"github.com/CageChen/filedesk/internal/util"
	"github.com/rs/zerolog"
)

// Manager performs file operations inside its base directory.
type Manager struct {
	fs  mfs.FileSystem
	log zerolog.Logger
}

// New creates a Manager over a local base directory, creating the directory
// if it is absent.
func New(baseDir string) (*Manager, error) {
	local, created, err := mfs.NewLocalFS(baseDir)
	if err != nil {
		return nil, fmt.Errorf("prepare base directory %s: %w", baseDir, err)
	}
	m := NewWithFS(local)
	if created {
		m.log.Info().Str("dir", local.Root()).Msg("Created base directory")
	}
	return m, nil
}

// NewWithFS creates a Manager over an existing FileSystem.
func NewWithFS(fsys mfs.FileSystem) *Manager {
	return &Manager{
		fs:  fsys,
		log: util.GetLogger("files"),
	}
}

// BaseDir returns the directory all operations are confined to.
func (m *Manager) BaseDir() string {
	return m.fs.Root()
}

// Create writes content to a new file called name.
func (m *Manager) Create(name, content string) Result {
	if err := m.checkName(name); err != nil {
		return fail(KindInvalidName, fmt.Sprintf("Error creating file: %v", err), err)
	}
	if _, err := m.fs.Stat(name); err == nil {
		return fail(KindAlreadyExists, fmt.Sprintf("File '%s' already exists", name), nil)
	} else if !errors.Is(err, iofs.ErrNotExist) {
		return m.ioFailure("create", name, "Error creating file", err)
	}

	if err := m.fs.CreateFile(name, []byte(content)); err != nil {
		// Lost a race with another writer.
		if errors.Is(err, iofs.ErrExist) {
			return fail(KindAlreadyExists, fmt.Sprintf("File '%s' already exists", name), err)
		}
		return m.ioFailure("create", name, "Error creating file", err)
	}

	m.log.Debug().Str("name", name).Int("bytes", len(content)).Msg("file created")
	return ok(fmt.Sprintf("File '%s' created successfully", name))
}

// Read returns the full contents of the file called name.
func (m *Manager) Read(name string) ReadResult {
	if err := m.checkName(name); err != nil {
		return ReadResult{Result: fail(KindInvalidName, fmt.Sprintf("Error reading file: %v", err), err)}
	}
	info, err := m.fs.Stat(name)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return ReadResult{Result: notFound(name, err)}
		}
		return ReadResult{Result: m.ioFailure("read", name, "Error reading file", err)}
	}
	if info.IsDir {
		return ReadResult{Result: fail(KindIsDirectory, fmt.Sprintf("Error reading file: '%s' is a directory", name), nil)}
	}

	data, err := m.fs.ReadFile(name)
	if err != nil {
		return ReadResult{Result: m.ioFailure("read", name, "Error reading file", err)}
	}
	return ReadResult{
		Result:  ok(fmt.Sprintf("File '%s' read successfully", name)),
		Content: string(data),
	}
}

// Delete removes the single file called name. Directories are rejected.
func (m *Manager) Delete(name string) Result {
	if err := m.checkName(name); err != nil {
		return fail(KindInvalidName, fmt.Sprintf("Error deleting file: %v", err), err)
	}
	info, err := m.fs.Stat(name)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return notFound(name, err)
		}
		return m.ioFailure("delete", name, "Error deleting file", err)
	}
	if info.IsDir {
		return fail(KindIsDirectory, fmt.Sprintf("Error deleting file: '%s' is a directory", name), nil)
	}

	if err := m.fs.Remove(name); err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return notFound(name, err)
		}
		return m.ioFailure("delete", name, "Error deleting file", err)
	}

	m.log.Debug().Str("name", name).Msg("file deleted")
	return ok(fmt.Sprintf("File '%s' deleted successfully", name))
}

// List describes every direct child of the base directory in enumeration order.
func (m *Manager) List() ListResult {
	infos, err := m.fs.ReadDir("")
	if err != nil {
		return ListResult{Result: m.ioFailure("list", "", "Error listing files", err)}
	}

	entries := make([]FileEntry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, FileEntry{
			Name:        info.Name,
			Size:        info.Size,
			Modified:    info.ModTime,
			IsDirectory: info.IsDir,
		})
	}
	return ListResult{Result: ok(fmt.Sprintf("%d file(s) listed", len(entries))), Files: entries}
}

var errNameRequired = errors.New("filename is required")

// checkName rejects names that cannot denote a regular file. A trailing
// separator would otherwise be cleaned away by the path join.
func (m *Manager) checkName(name string) error {
	if name == "" {
		return errNameRequired
	}
	if strings.HasSuffix(name, "/") || strings.HasSuffix(name, string(filepath.Separator)) {
		return fmt.Errorf("invalid filename '%s': trailing path separator", name)
	}
	return nil
}

// ioFailure reports err as an IOFailure, or as InvalidName when the name
// resolved outside the base directory.
func (m *Manager) ioFailure(op, name, prefix string, err error) Result {
	if errors.Is(err, mfs.ErrOutsideRoot) {
		return fail(KindInvalidName, fmt.Sprintf("%s: invalid filename '%s': %v", prefix, name, err), err)
	}
	m.log.Warn().Err(err).Str("op", op).Str("name", name).Msg("file operation failed")
	return fail(KindIOFailure, fmt.Sprintf("%s: %v", prefix, err), err)
}

func notFound(name string, cause error) Result {
	return fail(KindNotFound, fmt.Sprintf("File '%s' not found", name), cause)
}
