package reconcile

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTwinNotFound is returned by a lookup-only twin step when nothing matches.
var ErrTwinNotFound = errors.New("no twin matches the row identifiers")

// AmbiguousTwinError means more than one shell carries the row's identifier set.
type AmbiguousTwinError struct {
	ShellIDs []string
}

func (e *AmbiguousTwinError) Error() string {
	return fmt.Sprintf("%d twins match the row identifiers: %s", len(e.ShellIDs), strings.Join(e.ShellIDs, ", "))
}

// ServiceError is a non-404 failure from the twin registry or asset catalog.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *ServiceError) Unwrap() error { return e.Err }

func serviceErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *ServiceError
	if errors.As(err, &se) {
		return err
	}
	return &ServiceError{Op: op, Err: err}
}

// RowError wraps a failure with the row number and workflow stage.
type RowError struct {
	Row   int
	Stage Stage
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %s: %v", e.Row, e.Stage, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Wrap returns err as a *RowError for row and stage. An error that already is
// a RowError is returned unchanged.
func Wrap(row int, stage Stage, err error) error {
	if err == nil {
		return nil
	}
	var re *RowError
	if errors.As(err, &re) {
		return err
	}
	return &RowError{Row: row, Stage: stage, Err: err}
}

// StageOf returns the stage recorded on err, or "" when err is not a RowError.
func StageOf(err error) Stage {
	var re *RowError
	if errors.As(err, &re) {
		return re.Stage
	}
	return ""
}

func trim(s string) string {
	return strings.TrimSpace(s)
}
