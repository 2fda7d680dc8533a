package files

import (
	"encoding/json"
	"errors"
	"time"
)

// TimestampLayout renders modification times in UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Kind classifies a failed operation.
type Kind int

// Failure kinds. KindNone marks a successful result.
const (
	KindNone Kind = iota
	KindAlreadyExists
	KindNotFound
	KindIsDirectory
	KindInvalidName
	KindIOFailure
)

// Sentinel errors matching each failure kind, for use with errors.Is.
var (
	ErrAlreadyExists = errors.New("already exists")
	ErrNotFound      = errors.New("not found")
	ErrIsDirectory   = errors.New("is a directory")
	ErrInvalidName   = errors.New("invalid file name")
	ErrIOFailure     = errors.New("i/o failure")
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindAlreadyExists:
		return "already_exists"
	case KindNotFound:
		return "not_found"
	case KindIsDirectory:
		return "is_directory"
	case KindInvalidName:
		return "invalid_name"
	case KindIOFailure:
		return "io_failure"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindAlreadyExists:
		return ErrAlreadyExists
	case KindNotFound:
		return ErrNotFound
	case KindIsDirectory:
		return ErrIsDirectory
	case KindInvalidName:
		return ErrInvalidName
	case KindIOFailure:
		return ErrIOFailure
	default:
		return nil
	}
}

// Error is the error carried by a failed Result.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string { return e.Message }

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func (e *Error) Unwrap() error { return e.Cause }

// Result is the outcome of a create or delete.
type Result struct {
	Success bool
	Message string
	Kind    Kind
	cause   error
}

// Err returns nil on success, otherwise an *Error describing the failure.
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	return &Error{Kind: r.Kind, Message: r.Message, Cause: r.cause}
}

// ReadResult is the outcome of a read.
type ReadResult struct {
	Result
	Content string
}

// FileEntry is a single listing record.
type FileEntry struct {
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	Modified    time.Time `json:"modified"`
	IsDirectory bool      `json:"isDirectory"`
}

// MarshalJSON encodes Modified with TimestampLayout.
func (e FileEntry) MarshalJSON() ([]byte, error) {
	type entry FileEntry
	return json.Marshal(struct {
		entry
		Modified string `json:"modified"`
	}{
		entry:    entry(e),
		Modified: e.Modified.UTC().Format(TimestampLayout),
	})
}

// ListResult is the outcome of a list.
type ListResult struct {
	Result
	Files []FileEntry
}

func ok(msg string) Result {
	return Result{Success: true, Message: msg}
}

func fail(kind Kind, msg string, cause error) Result {
	return Result{Kind: kind, Message: msg, cause: cause}
}
