package tailer

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func appendFile(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		t.Fatal(err)
	}
}

func newTailer(t *testing.T, path string, cfg Config) *Tailer {
	t.Helper()
	tl, err := New(path, cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = tl.Close() })
	return tl
}

func TestTailer_FromStart(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "chat.log")
	writeFile(t, logFile, "existing1\nexisting2\n")

	tl := newTailer(t, logFile, DefaultConfig())

	chunk, err := tl.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got := string(chunk.Data); got != "existing1\nexisting2\n" {
		t.Errorf("Read() data = %q", got)
	}
	if chunk.Offset != 0 || chunk.Truncated {
		t.Errorf("Read() offset = %d truncated = %v, want 0 false", chunk.Offset, chunk.Truncated)
	}
	if tl.Offset() != int64(len("existing1\nexisting2\n")) {
		t.Errorf("Offset() = %d", tl.Offset())
	}
}

func TestTailer_FromEnd(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "chat.log")
	writeFile(t, logFile, "old\n")

	cfg := DefaultConfig()
	cfg.FromStart = false
	tl := newTailer(t, logFile, cfg)

	appendFile(t, logFile, "new\n")
	chunk, err := tl.Read()
	if err != nil {
		t.Fatal(err)
	}
	if string(chunk.Data) != "new\n" || chunk.Offset != 4 {
		t.Errorf("Read() = %q at %d, want %q at 4", chunk.Data, chunk.Offset, "new\n")
	}
}

func TestTailer_ReadsOnlyDelta(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "chat.log")
	writeFile(t, logFile, "a\n")

	tl := newTailer(t, logFile, DefaultConfig())
	if _, err := tl.Read(); err != nil {
		t.Fatal(err)
	}

	chunk, err := tl.Read()
	if err != nil {
		t.Fatal(err)
	}
	if len(chunk.Data) != 0 {
		t.Errorf("second Read() returned %q, want nothing", chunk.Data)
	}

	appendFile(t, logFile, "b\nc\n")
	chunk, err = tl.Read()
	if err != nil {
		t.Fatal(err)
	}
	if string(chunk.Data) != "b\nc\n" || chunk.Offset != 2 {
		t.Errorf("Read() = %q at %d", chunk.Data, chunk.Offset)
	}
}

func TestTailer_Truncation(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "chat.log")
	writeFile(t, logFile, "line one\nline two\n")

	tl := newTailer(t, logFile, DefaultConfig())
	if _, err := tl.Read(); err != nil {
		t.Fatal(err)
	}

	if err := os.Truncate(logFile, 0); err != nil {
		t.Fatal(err)
	}
	appendFile(t, logFile, "fresh\n")

	chunk, err := tl.Read()
	if err != nil {
		t.Fatal(err)
	}
	if !chunk.Truncated {
		t.Error("Read() after truncation: Truncated = false")
	}
	if chunk.Offset != 0 {
		t.Errorf("Read() after truncation: Offset = %d, want 0", chunk.Offset)
	}
	if string(chunk.Data) != "fresh\n" {
		t.Errorf("Read() after truncation: data = %q, want %q", chunk.Data, "fresh\n")
	}
	if tl.Offset() != int64(len("fresh\n")) {
		t.Errorf("Offset() = %d", tl.Offset())
	}
}

func TestTailer_MaxChunk(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "chat.log")
	writeFile(t, logFile, "0123456789")

	cfg := DefaultConfig()
	cfg.MaxChunk = 4
	tl := newTailer(t, logFile, cfg)

	var got []byte
	for i := 0; i < 3; i++ {
		chunk, err := tl.Read()
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, chunk.Data...)
	}
	if string(got) != "0123456789" {
		t.Errorf("chunks = %q", got)
	}

	// A capped read leaves a pending notification behind.
	select {
	case <-tl.Changes():
	default:
		t.Error("expected self-notification after capped read")
	}
}

func TestTailer_ReadErrorKeepsOffset(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "chat.log")
	writeFile(t, logFile, "abc\n")

	tl := newTailer(t, logFile, DefaultConfig())
	if _, err := tl.Read(); err != nil {
		t.Fatal(err)
	}

	if err := os.Remove(logFile); err != nil {
		t.Fatal(err)
	}
	if _, err := tl.Read(); err == nil {
		t.Fatal("Read() of removed file: expected error")
	}
	if tl.Offset() != 4 {
		t.Errorf("Offset() after failed read = %d, want 4", tl.Offset())
	}
}

func TestTailer_ChangeNotification(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "chat.log")
	writeFile(t, logFile, "")

	tl := newTailer(t, logFile, DefaultConfig())

	// Give the watcher a moment to start
	time.Sleep(100 * time.Millisecond)
	appendFile(t, logFile, "line1\n")

	select {
	case <-tl.Changes():
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for change notification")
	}
}

func TestTailer_CloseMultipleTimes(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "chat.log")
	writeFile(t, logFile, "")

	tl, err := New(logFile, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := tl.Close(); err != nil {
		t.Errorf("first Close() error = %v", err)
	}
	if err := tl.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, err := tl.Read(); err != ErrClosed {
		t.Errorf("Read() after Close() error = %v, want ErrClosed", err)
	}
}

func TestTailer_FileNotExists(t *testing.T) {
	if _, err := New("/nonexistent/path/chat.log", DefaultConfig()); err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestTailer_Directory(t *testing.T) {
	if _, err := New(t.TempDir(), DefaultConfig()); err == nil {
		t.Error("expected error for directory path")
	}
}
