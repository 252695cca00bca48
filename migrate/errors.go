package migrate

import (
	"errors"
	"fmt"
	"strings"
)

// ErrPatternNotFound is the sentinel wrapped by PatternNotFoundError.
var ErrPatternNotFound = errors.New("pattern not found")

// ErrBackupNotFound is returned when a run reads from a backup that does not exist.
var ErrBackupNotFound = errors.New("backup not found")

// PatternNotFoundError reports a selector or marker that is absent from the source.
type PatternNotFoundError struct {
	Pass    string
	Pattern string
}

func (e *PatternNotFoundError) Error() string {
	return fmt.Sprintf("%s: %q not found", e.Pass, e.Pattern)
}

func (e *PatternNotFoundError) Unwrap() error { return ErrPatternNotFound }

// AmbiguousPatternError reports a start marker that occurs more than once.
type AmbiguousPatternError struct {
	Pass    string
	Pattern string
	Count   int
}

func (e *AmbiguousPatternError) Error() string {
	return fmt.Sprintf("%s: %q occurs %d times, expected exactly once", e.Pass, e.Pattern, e.Count)
}

// StrictError is returned by a strict run that produced warning or error findings.
// Nothing is written when it is returned.
type StrictError struct {
	Findings []Finding
}

func (e *StrictError) Error() string {
	var msgs []string
	for _, f := range e.Findings {
		msgs = append(msgs, f.String())
	}
	return fmt.Sprintf("strict mode: %d finding(s):\n  %s", len(e.Findings), strings.Join(msgs, "\n  "))
}

// Unwrap exposes the typed causes of the findings to errors.Is and errors.As.
func (e *StrictError) Unwrap() []error {
	var errs []error
	for _, f := range e.Findings {
		if f.Err != nil {
			errs = append(errs, f.Err)
		}
	}
	return errs
}
