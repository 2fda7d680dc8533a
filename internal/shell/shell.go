// Package shell implements the numbered-menu interactive front end.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/CageChen/filedesk/internal/config"
	"github.com/CageChen/filedesk/internal/files"
)

// DefaultPort is offered when the user starts the server without a port.
const DefaultPort = 3000

const (
	colorReset = "\033[0m"
	colorGreen = "\033[32m"
	colorRed   = "\033[31m"
)

// FileService is the set of file operations the shell calls.
type FileService interface {
	Create(name, content string) files.Result
	Read(name string) files.ReadResult
	Delete(name string) files.Result
	List() files.ListResult
}

// ServeFunc runs the HTTP server on port until ctx is cancelled.
type ServeFunc func(ctx context.Context, port int) error

// StopSignal derives the context that stops a server started from the menu.
type StopSignal func(parent context.Context) (context.Context, context.CancelFunc)

// Option customizes a Shell.
type Option func(*Shell)

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(s *Shell) {
		s.in = bufio.NewReader(in)
		s.out = out
	}
}

// WithColor enables ANSI colouring of operation results.
func WithColor(enabled bool) Option {
	return func(s *Shell) { s.color = enabled }
}

// WithStopSignal replaces the interrupt-based stop signal.
func WithStopSignal(fn StopSignal) Option {
	return func(s *Shell) { s.stopSignal = fn }
}

// Shell runs one menu flow at a time until the user exits.
type Shell struct {
	files      FileService
	serve      ServeFunc
	in         *bufio.Reader
	out        io.Writer
	color      bool
	stopSignal StopSignal
}

// New creates a shell reading stdin and writing stdout.
func New(svc FileService, serve ServeFunc, opts ...Option) *Shell {
	s := &Shell{
		files: svc,
		serve: serve,
		in:    bufio.NewReader(os.Stdin),
		out:   os.Stdout,
		stopSignal: func(parent context.Context) (context.Context, context.CancelFunc) {
			return signal.NotifyContext(parent, os.Interrupt)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run loops over the menu until the user chooses Exit or input ends.
func (s *Shell) Run(ctx context.Context) error {
	for {
		s.showMenu()
		choice, err := s.prompt("Enter your choice (1-6): ")
		if err != nil {
			return s.finish(err)
		}

		switch choice {
		case "1":
			err = s.createFlow()
		case "2":
			err = s.readFlow()
		case "3":
			err = s.deleteFlow()
		case "4":
			s.listFlow()
		case "5":
			err = s.serverFlow(ctx)
		case "6":
			s.println("Goodbye!")
			return nil
		default:
			s.println("Invalid choice. Please try again.")
		}
		if err != nil {
			return s.finish(err)
		}
	}
}

// finish treats end of input as Exit.
func (s *Shell) finish(err error) error {
	if errors.Is(err, io.EOF) {
		s.println("\nGoodbye!")
		return nil
	}
	return err
}

func (s *Shell) showMenu() {
	s.println("\n=== File Manager CLI ===")
	s.println("1. Create file")
	s.println("2. Read file")
	s.println("3. Delete file")
	s.println("4. List files")
	s.println("5. Start HTTP server")
	s.println("6. Exit")
	s.println("========================")
}

func (s *Shell) createFlow() error {
	name, err := s.prompt("Enter filename: ")
	if err != nil {
		return err
	}
	content, err := s.prompt("Enter file content (press Enter for empty): ")
	if err != nil {
		return err
	}

	s.report(s.files.Create(name, content))
	return nil
}

func (s *Shell) readFlow() error {
	name, err := s.prompt("Enter filename to read: ")
	if err != nil {
		return err
	}

	res := s.files.Read(name)
	if !res.Success {
		s.report(res.Result)
		return nil
	}
	s.println(fmt.Sprintf("\nContent of '%s':", name))
	s.println("---")
	s.println(res.Content)
	s.println("---")
	return nil
}

func (s *Shell) deleteFlow() error {
	name, err := s.prompt("Enter filename to delete: ")
	if err != nil {
		return err
	}

	s.report(s.files.Delete(name))
	return nil
}

func (s *Shell) listFlow() {
	res := s.files.List()
	if !res.Success {
		s.report(res.Result)
		return
	}

	s.println("\nFiles in directory:")
	s.println("---")
	if len(res.Files) == 0 {
		s.println("No files found.")
	}
	for _, f := range res.Files {
		s.println(formatEntry(f))
	}
	s.println("---")
}

func (s *Shell) serverFlow(ctx context.Context) error {
	answer, err := s.prompt(fmt.Sprintf("Enter port (default %d): ", DefaultPort))
	if err != nil {
		return err
	}
	port := DefaultPort
	if answer != "" {
		if port, err = config.ParsePort(answer); err != nil {
			s.println(s.paint(colorRed, fmt.Sprintf("Error: %v", err)))
			return nil
		}
	}

	serveCtx, stop := s.stopSignal(ctx)
	defer stop()

	s.println("\nPress Ctrl+C to stop the server and return to CLI")
	if err := s.serve(serveCtx, port); err != nil {
		s.println(s.paint(colorRed, fmt.Sprintf("Server error: %v", err)))
		return nil
	}
	s.println("\nReturning to CLI...")
	return nil
}

func formatEntry(f files.FileEntry) string {
	kind := "[FILE]"
	if f.IsDirectory {
		kind = "[DIR]"
	}
	return fmt.Sprintf("%s %s (%d bytes, modified: %s)",
		kind, f.Name, f.Size, f.Modified.UTC().Format(files.TimestampLayout))
}

// prompt prints label and returns the trimmed answer. A final line without
// a newline is still returned; io.EOF is only reported when nothing was read.
func (s *Shell) prompt(label string) (string, error) {
	fmt.Fprint(s.out, label)
	line, err := s.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (s *Shell) report(res files.Result) {
	if res.Success {
		s.println(s.paint(colorGreen, res.Message))
	} else {
		s.println(s.paint(colorRed, res.Message))
	}
}

func (s *Shell) paint(color, msg string) string {
	if !s.color {
		return msg
	}
	return color + msg + colorReset
}

func (s *Shell) println(msg string) {
	fmt.Fprintln(s.out, msg)
}
