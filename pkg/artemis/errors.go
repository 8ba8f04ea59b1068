package artemis

import (
	"errors"
	"fmt"

	"github.com/artemis-hunt/artemis-go/internal/logfinder"
	"github.com/artemis-hunt/artemis-go/pkg/artemis/session"
)

// Sentinel errors returned by this package.
var (
	// ErrLogPathNotFound is returned by NewEngine when no chat log can be
	// resolved. Nothing is processed.
	ErrLogPathNotFound = logfinder.ErrLogPathNotFound

	// ErrSessionFinalized is returned when events reach a stopped session.
	ErrSessionFinalized = session.ErrSessionFinalized

	// ErrEngineStopped is returned by requests made after Stop.
	ErrEngineStopped = errors.New("engine stopped")

	// ErrEngineStarted is returned by a second call to Start.
	ErrEngineStarted = errors.New("engine already started")
)

// ParseError is returned by ParseFile with WithParseStopOnError when a line
// matches a grammar but its fields cannot be parsed.
type ParseError struct {
	Line string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %v: %q", e.Err, e.Line)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Stage names the pipeline step a StageError came from.
type Stage string

const (
	StageRead Stage = "read"
	StageSave Stage = "save"
)

// StageError is sent on the engine's error channel for failures that do not
// stop the pipeline.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
