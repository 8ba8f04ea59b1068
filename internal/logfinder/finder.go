// Package logfinder resolves the Entropia Universe chat log path.
package logfinder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// EnvChatLog is the environment variable name for specifying the chat log.
const EnvChatLog = "ARTEMIS_CHATLOG"

// ChatLogName is the file the game client appends chat to.
const ChatLogName = "chat.log"

// ErrLogPathNotFound is returned when no readable chat log can be found.
var ErrLogPathNotFound = errors.New("chat log not found")

// DefaultLogPaths returns candidate chat log locations in priority order.
func DefaultLogPaths() []string {
	var homes []string
	for _, env := range []string{"USERPROFILE", "HOME"} {
		if v := os.Getenv(env); v != "" {
			homes = append(homes, v)
		}
	}

	var paths []string
	for _, home := range homes {
		paths = append(paths,
			filepath.Join(home, "Documents", "Entropia Universe", ChatLogName),
			filepath.Join(home, "OneDrive", "Documents", "Entropia Universe", ChatLogName),
		)
	}
	return paths
}

// FindLogPath returns the chat log to follow.
//
// Priority:
//  1. explicit (if non-empty)
//  2. ARTEMIS_CHATLOG environment variable
//  3. Auto-detect from DefaultLogPaths()
//
// A directory is accepted in place of a file when it contains chat.log.
// Returns ErrLogPathNotFound if no valid file is found.
// The returned path has symlinks resolved.
func FindLogPath(explicit string) (string, error) {
	if explicit != "" {
		if resolved := resolveLogPath(explicit); resolved != "" {
			return resolved, nil
		}
		return "", fmt.Errorf("%w: %s", ErrLogPathNotFound, explicit)
	}

	if env := os.Getenv(EnvChatLog); env != "" {
		if resolved := resolveLogPath(env); resolved != "" {
			return resolved, nil
		}
		return "", fmt.Errorf("%w: %s environment variable points to %s", ErrLogPathNotFound, EnvChatLog, env)
	}

	for _, p := range DefaultLogPaths() {
		if resolved := resolveLogPath(p); resolved != "" {
			return resolved, nil
		}
	}

	return "", ErrLogPathNotFound
}

// resolveLogPath resolves symlinks and checks that path is a regular file,
// or a directory holding one named chat.log. It returns "" otherwise.
func resolveLogPath(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return ""
	}
	if info.IsDir() {
		path = filepath.Join(path, ChatLogName)
		if info, err = os.Stat(path); err != nil {
			return ""
		}
	}
	if !info.Mode().IsRegular() {
		return ""
	}

	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		// Permission issues or broken links: keep the original path.
		resolved = path
	}
	return resolved
}
