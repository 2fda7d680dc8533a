// Package watcher monitors the base directory and broadcasts changes via callbacks.
package watcher

import (
	"path/filepath"
	"sync"

	"github.com/CageChen/filedesk/internal/util"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// EventType represents the type of file system event
type EventType int

// File system event types.
const (
	EventCreate EventType = iota
	EventWrite
	EventRemove
	EventRename
)

func (t EventType) String() string {
	switch t {
	case EventCreate:
		return "create"
	case EventWrite:
		return "update"
	case EventRemove:
		return "remove"
	case EventRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Event represents a change to a direct child of the watched directory
type Event struct {
	Type EventType
	Name string
}

// Callback is a function called when file changes occur
type Callback func(Event)

// Watcher monitors a single directory, non-recursively.
type Watcher struct {
	watcher   *fsnotify.Watcher
	dir       string
	callbacks []Callback
	mu        sync.RWMutex
	done      chan struct{}
	loopDone  chan struct{}
	stopOnce  sync.Once
	log       zerolog.Logger
}

// New creates a watcher for dir. Call Start to begin receiving events.
func New(dir string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher: w,
		dir:     dir,
		done:    make(chan struct{}),
		log:     util.GetLogger("watcher"),
	}, nil
}

// OnChange registers a callback for file change events
func (w *Watcher) OnChange(cb Callback) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, cb)
}

// Start begins watching the directory
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.dir); err != nil {
		return err
	}
	w.loopDone = make(chan struct{})
	go w.eventLoop()
	return nil
}

// Stop stops the watcher and waits for any running callback to return. It is
// safe to call more than once, but not from inside a callback.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		if w.loopDone != nil {
			<-w.loopDone
		}
	})
	return err
}

func (w *Watcher) eventLoop() {
	defer close(w.loopDone)
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("watcher error")
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	var eventType EventType
	switch {
	case event.Has(fsnotify.Create):
		eventType = EventCreate
	case event.Has(fsnotify.Write):
		eventType = EventWrite
	case event.Has(fsnotify.Remove):
		eventType = EventRemove
	case event.Has(fsnotify.Rename):
		eventType = EventRename
	default:
		return
	}

	e := Event{
		Type: eventType,
		Name: filepath.Base(event.Name),
	}
	w.log.Debug().Str("event", e.Type.String()).Str("name", e.Name).Msg("change detected")

	w.mu.RLock()
	callbacks := make([]Callback, len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.RUnlock()

	for _, cb := range callbacks {
		cb(e)
	}
}
