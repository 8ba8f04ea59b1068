package artemis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Saver persists session snapshots. The engine calls Save from its event
// loop, so implementations should return promptly and honor ctx.
type Saver interface {
	Save(ctx context.Context, s *Session) error
}

// SaverFunc adapts a function to Saver.
type SaverFunc func(ctx context.Context, s *Session) error

func (f SaverFunc) Save(ctx context.Context, s *Session) error { return f(ctx, s) }

// FileSaver writes each session to <dir>/<session id>.json, replacing the
// previous snapshot atomically.
type FileSaver struct {
	dir string
}

// NewFileSaver returns a FileSaver writing to dir. The directory is created
// on first save.
func NewFileSaver(dir string) *FileSaver {
	return &FileSaver{dir: dir}
}

// Path returns the file a session with the given ID is saved to.
func (f *FileSaver) Path(id string) string {
	return filepath.Join(f.dir, id+".json")
}

// Save writes s as indented JSON.
func (f *FileSaver) Save(ctx context.Context, s *Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.ID == "" {
		return fmt.Errorf("saving session: empty id")
	}
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", s.ID, err)
	}

	tmp, err := os.CreateTemp(f.dir, s.ID+".*.tmp")
	if err != nil {
		return fmt.Errorf("saving session %s: %w", s.ID, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("saving session %s: %w", s.ID, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("saving session %s: %w", s.ID, err)
	}
	if err := os.Rename(tmp.Name(), f.Path(s.ID)); err != nil {
		return fmt.Errorf("saving session %s: %w", s.ID, err)
	}
	return nil
}
