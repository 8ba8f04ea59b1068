// Package tailer follows a single growing log file by byte offset.
package tailer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/nxadm/tail/watch"
	"gopkg.in/tomb.v1"
)

// DefaultMaxChunk bounds a single Read. A larger backlog is delivered over
// several reads and the tailer re-notifies itself until it catches up.
const DefaultMaxChunk = 4 << 20

// ErrClosed is returned by Read after Close.
var ErrClosed = errors.New("tailer closed")

// Config holds configuration for tailing.
type Config struct {
	// Poll uses a polling watcher instead of inotify (more compatible but less efficient).
	Poll bool

	// FromStart reads the existing content of the file instead of starting at its end.
	FromStart bool

	// MaxChunk caps the bytes returned by one Read. 0 uses DefaultMaxChunk.
	MaxChunk int64
}

// DefaultConfig returns the default configuration for chat logs.
func DefaultConfig() Config {
	return Config{
		Poll:      false, // Use inotify/ReadDirectoryChangesW when available
		FromStart: true,
		MaxChunk:  DefaultMaxChunk,
	}
}

// Chunk is a contiguous range of newly appended bytes.
type Chunk struct {
	// Offset is the file offset of Data[0].
	Offset int64

	Data []byte

	// Truncated is set when the file shrank or was replaced since the
	// previous read. Offset is then 0 and Data is the new file's content.
	Truncated bool
}

// Tailer tracks a read offset into one file. Read is not safe for
// concurrent use; Changes and Close are.
type Tailer struct {
	path string
	cfg  Config

	offset int64
	ident  os.FileInfo

	changes chan struct{}
	armed   atomic.Bool

	mu     sync.Mutex
	tomb   *tomb.Tomb
	closed bool
}

// New creates a Tailer for the specified file. The file must exist.
func New(path string, cfg Config) (*Tailer, error) {
	path = filepath.Clean(path)
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("opening tail: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("opening tail: %s is a directory", path)
	}
	if cfg.MaxChunk <= 0 {
		cfg.MaxChunk = DefaultMaxChunk
	}

	t := &Tailer{
		path:    path,
		cfg:     cfg,
		ident:   info,
		changes: make(chan struct{}, 1),
	}
	if !cfg.FromStart {
		t.offset = info.Size()
	}
	if err := t.arm(); err != nil {
		return nil, fmt.Errorf("watching %s: %w", path, err)
	}
	return t, nil
}

// Path returns the tailed file path.
func (t *Tailer) Path() string { return t.path }

// Offset returns the offset the next Read starts from.
func (t *Tailer) Offset() int64 { return t.offset }

// Changes returns a channel that receives a value whenever the file may have
// changed. Notifications are coalesced; a receive means "call Read".
func (t *Tailer) Changes() <-chan struct{} {
	return t.changes
}

// Read returns the bytes appended since the last successful Read.
// On error the offset is left untouched so the next call retries.
func (t *Tailer) Read() (Chunk, error) {
	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return Chunk{}, ErrClosed
	}

	f, err := os.Open(t.path)
	if err != nil {
		return Chunk{}, fmt.Errorf("opening %s: %w", t.path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Chunk{}, fmt.Errorf("stat %s: %w", t.path, err)
	}

	start := t.offset
	truncated := false
	if info.Size() < start || !os.SameFile(t.ident, info) {
		start = 0
		truncated = true
	}

	n := info.Size() - start
	more := false
	if n > t.cfg.MaxChunk {
		n = t.cfg.MaxChunk
		more = true
	}

	data := make([]byte, n)
	if n > 0 {
		read, err := f.ReadAt(data, start)
		if err != nil && !errors.Is(err, io.EOF) {
			return Chunk{}, fmt.Errorf("reading %s at %d: %w", t.path, start, err)
		}
		data = data[:read]
	}

	t.offset = start + int64(len(data))
	t.ident = info

	if !t.armed.Load() {
		// The previous watcher exited on delete/rename; the file is back.
		_ = t.arm()
	}
	if more {
		t.notify()
	}

	return Chunk{Offset: start, Data: data, Truncated: truncated}, nil
}

// Close stops watching the file.
// Safe to call multiple times.
func (t *Tailer) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	if t.tomb != nil {
		t.tomb.Kill(nil)
		t.tomb = nil
	}
	return nil
}

func (t *Tailer) arm() error {
	var fw watch.FileWatcher
	if t.cfg.Poll {
		fw = watch.NewPollingFileWatcher(t.path)
	} else {
		fw = watch.NewInotifyFileWatcher(t.path)
	}

	tb := new(tomb.Tomb)
	fc, err := fw.ChangeEvents(tb, t.offset)
	if err != nil {
		tb.Kill(nil)
		return err
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		tb.Kill(nil)
		return ErrClosed
	}
	if t.tomb != nil {
		t.tomb.Kill(nil)
	}
	t.tomb = tb
	t.mu.Unlock()

	t.armed.Store(true)
	go t.relay(tb, fc)
	return nil
}

// relay forwards watcher notifications until the watcher dies.
func (t *Tailer) relay(tb *tomb.Tomb, fc *watch.FileChanges) {
	for {
		select {
		case <-tb.Dying():
			return
		case <-fc.Modified:
			t.notify()
		case <-fc.Truncated:
			t.notify()
		case <-fc.Deleted:
			// The watcher goroutine has exited. Read re-arms once the
			// file exists again.
			t.armed.Store(false)
			t.notify()
			return
		}
	}
}

func (t *Tailer) notify() {
	select {
	case t.changes <- struct{}{}:
	default:
	}
}
