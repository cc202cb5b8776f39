package backend

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/olivoil/mvu/internal/mvu"
)

// Sender can receive messages (matches *mvu.Program).
type Sender interface {
	Send(msg mvu.Msg)
}

// Watcher follows a file via fsnotify and sends appended lines as LinesMsg.
type Watcher struct {
	w      *fsnotify.Watcher
	sender Sender
	log    *slog.Logger

	mu      sync.Mutex
	path    string
	offset  int64
	partial string
	done    chan struct{}

	// replaced is set when the file went away; the next read starts over.
	replaced bool
}

// NewWatcher creates a watcher that reports to sender.
func NewWatcher(sender Sender, log *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	w := &Watcher{
		w:      fw,
		sender: sender,
		log:    log,
		done:   make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Follow starts following path, replacing any previous file. The last
// backlog lines are sent right away as a LinesMsg with Reset set.
func (w *Watcher) Follow(path string, backlog int) error {
	path = filepath.Clean(expandHome(path))

	w.mu.Lock()
	defer w.mu.Unlock()

	// Watch the directory so creates and replacements are seen too.
	if w.path != "" {
		_ = w.w.Remove(filepath.Dir(w.path))
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	if err := w.w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	lines, off, err := ReadLastLines(path, backlog)
	if err != nil {
		return err
	}
	w.path = path
	w.offset = off
	w.partial = ""
	w.replaced = false
	w.sender.Send(LinesMsg{Path: path, Lines: lines, Reset: true})
	return nil
}

// Path returns the followed file.
func (w *Watcher) Path() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.path
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	err := w.w.Close()
	<-w.done
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.w.Events:
			if !ok {
				return
			}
			w.handle(event)

		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher error", "err", err)
			w.sender.Send(WatchErrorMsg{Path: w.Path(), Err: err})
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.path == "" || filepath.Clean(event.Name) != w.path {
		return
	}
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.offset = 0
		w.partial = ""
		w.replaced = true
	case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
		msg, err := w.readNew()
		if err != nil {
			w.log.Warn("read followed file", "path", w.path, "err", err)
			w.sender.Send(WatchErrorMsg{Path: w.path, Err: err})
			return
		}
		if len(msg.Lines) > 0 || msg.Reset {
			w.sender.Send(msg)
		}
	}
}

// readNew reads what was appended since the last read. Must hold mu.
func (w *Watcher) readNew() (LinesMsg, error) {
	msg := LinesMsg{Path: w.path}

	f, err := os.Open(w.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return msg, nil
		}
		return msg, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return msg, err
	}
	if w.replaced || info.Size() < w.offset {
		msg.Reset = true
		w.replaced = false
		w.offset = 0
		w.partial = ""
	}
	if _, err := f.Seek(w.offset, io.SeekStart); err != nil {
		return msg, err
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return msg, err
	}
	w.offset += int64(len(data))

	text := w.partial + string(data)
	parts := strings.Split(text, "\n")
	w.partial = parts[len(parts)-1]
	for _, p := range parts[:len(parts)-1] {
		msg.Lines = append(msg.Lines, strings.TrimSuffix(p, "\r"))
	}
	return msg, nil
}
