// Package batcher turns raw byte chunks into debounced batches of lines.
package batcher

import (
	"bytes"
	"time"
)

// DefaultDebounce is the quiet period after the last appended line before
// the pending lines are flushed as one batch.
const DefaultDebounce = 250 * time.Millisecond

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// RawLine is one decoded, non-blank log line.
type RawLine struct {
	Text   string
	Offset int64
}

// Batcher accumulates lines and signals on C when a batch is due.
// It is not safe for concurrent use; it is owned by a single event loop.
type Batcher struct {
	debounce time.Duration

	pending []RawLine

	// frag holds bytes after the last newline of the previous chunk.
	frag       []byte
	fragOffset int64

	timer *time.Timer
	armed bool
}

// New creates a Batcher. A non-positive debounce uses DefaultDebounce.
func New(debounce time.Duration) *Batcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	t := time.NewTimer(debounce)
	t.Stop()
	return &Batcher{debounce: debounce, timer: t}
}

// Add splits data (read at the given file offset) into lines and appends
// the non-blank ones. A trailing partial line is held back until the next
// chunk completes it. It returns the number of lines appended.
func (b *Batcher) Add(data []byte, offset int64) int {
	if len(data) == 0 {
		return 0
	}

	buf := data
	start := offset
	if len(b.frag) > 0 {
		buf = append(b.frag, data...)
		start = b.fragOffset
		b.frag = nil
	}

	added := 0
	for len(buf) > 0 {
		i := bytes.IndexByte(buf, '\n')
		if i < 0 {
			b.frag = append([]byte(nil), buf...)
			b.fragOffset = start
			break
		}
		if b.appendLine(buf[:i], start) {
			added++
		}
		start += int64(i + 1)
		buf = buf[i+1:]
	}

	if added > 0 {
		b.arm()
	}
	return added
}

// C fires when the debounce window has elapsed since the last appended
// line. It returns nil while nothing is pending, so selecting on it blocks.
func (b *Batcher) C() <-chan time.Time {
	if !b.armed {
		return nil
	}
	return b.timer.C
}

// Pending returns the number of lines waiting to be flushed.
func (b *Batcher) Pending() int { return len(b.pending) }

// Flush returns the pending lines in arrival order and clears the buffer.
// Flushing an empty buffer returns nil.
func (b *Batcher) Flush() []RawLine {
	b.disarm()
	if len(b.pending) == 0 {
		return nil
	}
	out := b.pending
	b.pending = nil
	return out
}

// Drain is Flush plus any held partial line. Used when the stream ends
// (stop or truncation) and the fragment will never be completed.
func (b *Batcher) Drain() []RawLine {
	if len(b.frag) > 0 {
		b.appendLine(b.frag, b.fragOffset)
		b.frag = nil
	}
	return b.Flush()
}

// Reset drops pending lines and the held fragment.
func (b *Batcher) Reset() {
	b.disarm()
	b.pending = nil
	b.frag = nil
}

// Stop cancels the debounce timer.
func (b *Batcher) Stop() {
	b.disarm()
}

func (b *Batcher) appendLine(line []byte, offset int64) bool {
	if offset == 0 {
		line = bytes.TrimPrefix(line, utf8BOM)
	}
	line = bytes.TrimSuffix(line, []byte{'\r'})
	if len(bytes.TrimSpace(line)) == 0 {
		return false
	}
	b.pending = append(b.pending, RawLine{Text: string(line), Offset: offset})
	return true
}

func (b *Batcher) arm() {
	// Since Go 1.23 Reset discards any stale tick, so no drain is needed.
	b.timer.Reset(b.debounce)
	b.armed = true
}

func (b *Batcher) disarm() {
	if b.armed {
		b.timer.Stop()
		b.armed = false
	}
}
