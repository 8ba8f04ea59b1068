package logfinder

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeChatLog(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, ChatLogName)
	if err := os.WriteFile(path, []byte("test\n"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// resolved returns path with symlinks evaluated (e.g. /var -> /private/var on macOS).
func resolved(path string) string {
	if r, err := filepath.EvalSymlinks(path); err == nil {
		return r
	}
	return path
}

func TestFindLogPath_Explicit(t *testing.T) {
	path := writeChatLog(t, t.TempDir())
	t.Setenv(EnvChatLog, "/some/other/path")

	got, err := FindLogPath(path)
	if err != nil {
		t.Fatalf("FindLogPath() error = %v", err)
	}
	if want := resolved(path); got != want {
		t.Errorf("FindLogPath() = %v, want %v", got, want)
	}
}

func TestFindLogPath_ExplicitDirectory(t *testing.T) {
	dir := t.TempDir()
	path := writeChatLog(t, dir)

	got, err := FindLogPath(dir)
	if err != nil {
		t.Fatalf("FindLogPath() error = %v", err)
	}
	if want := resolved(path); got != want {
		t.Errorf("FindLogPath() = %v, want %v", got, want)
	}
}

func TestFindLogPath_ExplicitInvalid(t *testing.T) {
	_, err := FindLogPath("/nonexistent/chat.log")
	if !errors.Is(err, ErrLogPathNotFound) {
		t.Errorf("FindLogPath() error = %v, want %v", err, ErrLogPathNotFound)
	}
}

func TestFindLogPath_DirectoryWithoutChatLog(t *testing.T) {
	_, err := FindLogPath(t.TempDir())
	if !errors.Is(err, ErrLogPathNotFound) {
		t.Errorf("FindLogPath() error = %v, want %v", err, ErrLogPathNotFound)
	}
}

func TestFindLogPath_EnvVar(t *testing.T) {
	path := writeChatLog(t, t.TempDir())
	t.Setenv(EnvChatLog, path)

	got, err := FindLogPath("")
	if err != nil {
		t.Fatalf("FindLogPath() error = %v", err)
	}
	if want := resolved(path); got != want {
		t.Errorf("FindLogPath() = %v, want %v", got, want)
	}
}

func TestFindLogPath_EnvVarInvalid(t *testing.T) {
	t.Setenv(EnvChatLog, "/nonexistent/chat.log")

	_, err := FindLogPath("")
	if !errors.Is(err, ErrLogPathNotFound) {
		t.Errorf("FindLogPath() error = %v, want %v", err, ErrLogPathNotFound)
	}
}

func TestFindLogPath_DefaultLocation(t *testing.T) {
	home := t.TempDir()
	dir := filepath.Join(home, "Documents", "Entropia Universe")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	path := writeChatLog(t, dir)

	t.Setenv(EnvChatLog, "")
	t.Setenv("USERPROFILE", "")
	t.Setenv("HOME", home)

	got, err := FindLogPath("")
	if err != nil {
		t.Fatalf("FindLogPath() error = %v", err)
	}
	if want := resolved(path); got != want {
		t.Errorf("FindLogPath() = %v, want %v", got, want)
	}
}

func TestFindLogPath_NothingFound(t *testing.T) {
	t.Setenv(EnvChatLog, "")
	t.Setenv("USERPROFILE", "")
	t.Setenv("HOME", t.TempDir())

	_, err := FindLogPath("")
	if !errors.Is(err, ErrLogPathNotFound) {
		t.Errorf("FindLogPath() error = %v, want %v", err, ErrLogPathNotFound)
	}
}

func TestDefaultLogPaths(t *testing.T) {
	t.Setenv("USERPROFILE", `C:\Users\hunter`)
	t.Setenv("HOME", "")

	paths := DefaultLogPaths()
	if len(paths) != 2 {
		t.Fatalf("DefaultLogPaths() = %v, want 2 entries", paths)
	}
	for _, p := range paths {
		if filepath.Base(p) != ChatLogName {
			t.Errorf("DefaultLogPaths() entry %q does not end in %s", p, ChatLogName)
		}
	}
}
