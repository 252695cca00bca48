package migrate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/martinemde/scssmigrate/scssparser"
)

// Options configures a run.
type Options struct {
	Plan    *Plan
	DryRun  bool // compute the result but write nothing
	Strict  bool // fail on warning findings; combined with Plan.Strict
	Emitter *EventEmitter
}

// Result is the outcome of a run.
type Result struct {
	RunID      string
	Path       string // file being migrated
	SourcePath string // file the original text was read from
	Original   []byte // target file before the run; empty if it did not exist
	Output     []byte
	Changed    bool
	Written    bool
	BackupPath string // set when this run created the backup
	Stats      Stats
	Findings   []Finding
	StartedAt  time.Time
	FinishedAt time.Time
}

// Diff returns a unified diff between the original and the output.
func (r *Result) Diff() (string, error) {
	return UnifiedDiff(r.Path, r.Original, r.Output)
}

// Run executes a migration: read, apply the plan's passes in order, check the
// output still parses, and write it back. The source is read from the backup
// copy when Plan.FromBackup is set. A strict run with findings, or an output
// that fails to parse, writes nothing.
func Run(ctx context.Context, opts Options) (*Result, error) {
	plan := opts.Plan
	if plan == nil {
		plan = DefaultPlan()
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	res := &Result{
		RunID:     uuid.New().String(),
		Path:      plan.File,
		StartedAt: time.Now(),
	}
	emitter := opts.Emitter

	fail := func(err error) (*Result, error) {
		res.FinishedAt = time.Now()
		emitter.Emit(MigrationFailedEvent(err.Error(), res.FinishedAt.Sub(res.StartedAt)))
		return res, err
	}

	res.SourcePath = plan.File
	if plan.FromBackup {
		res.SourcePath = plan.BackupPath()
	}
	emitter.Emit(MigrationStartedEvent(res.Path, res.SourcePath, res.RunID))

	src, err := os.ReadFile(res.SourcePath)
	if err != nil {
		if plan.FromBackup && errors.Is(err, os.ErrNotExist) {
			return fail(fmt.Errorf("%w: %s", ErrBackupNotFound, res.SourcePath))
		}
		return fail(fmt.Errorf("reading %s: %w", res.SourcePath, err))
	}
	res.Original = src
	if plan.FromBackup {
		// Changes are measured against the file being overwritten.
		current, err := os.ReadFile(plan.File)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fail(fmt.Errorf("reading %s: %w", plan.File, err))
		}
		res.Original = current
	}

	doc := NewDocument(res.Path, src, emitter)
	if _, err := doc.Parse(); err != nil {
		return fail(err)
	}

	for i, pass := range plan.Passes() {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}
		started := time.Now()
		before := doc.Stats.Edits()
		emitter.Emit(PassStartedEvent(pass.Name(), i))
		if err := pass.Apply(doc); err != nil {
			return fail(fmt.Errorf("%s: %w", pass.Name(), err))
		}
		emitter.Emit(PassCompletedEvent(pass.Name(), i, doc.Stats.Edits()-before, time.Since(started)))
	}

	res.Output = doc.Src
	res.Stats = doc.Stats
	res.Changed = string(res.Output) != string(res.Original)

	verify := PassFunc{PassName: "verify", Fn: verifyOutput}
	if err := verify.Apply(doc); err != nil {
		return fail(err)
	}
	res.Findings = doc.Findings

	if opts.Strict || plan.Strict {
		if blocking := blockingFindings(res.Findings); len(blocking) > 0 {
			return fail(&StrictError{Findings: blocking})
		}
	}

	if !opts.DryRun && res.Changed {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}
		if err := writeResult(plan, res, emitter); err != nil {
			return fail(err)
		}
	}

	res.FinishedAt = time.Now()
	emitter.Emit(MigrationCompletedEvent(res.Path, res.FinishedAt.Sub(res.StartedAt), res.Changed, res.Written))
	return res, nil
}

// verifyOutput checks that the migrated text still parses and reports lint
// problems the passes left behind, e.g. a block no rule reordered.
func verifyOutput(doc *Document) error {
	sheet, err := scssparser.Parse(doc.Src)
	if err != nil {
		return fmt.Errorf("migrated output does not parse: %w", err)
	}
	for _, d := range scssparser.Validate(sheet) {
		if d.Severity <= scssparser.Warning {
			doc.Report(Finding{Diagnostic: d, Pass: "verify"})
		}
	}
	return nil
}

// blockingFindings returns the findings a strict run refuses to ignore.
func blockingFindings(findings []Finding) []Finding {
	var out []Finding
	for _, f := range findings {
		if f.Severity <= scssparser.Warning {
			out = append(out, f)
		}
	}
	return out
}

func writeResult(plan *Plan, res *Result, emitter *EventEmitter) error {
	info, err := os.Stat(plan.File)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", plan.File, err)
	}
	mode := os.FileMode(0o644)
	if info != nil {
		mode = info.Mode().Perm()
	}

	if plan.Backup && info != nil {
		backup := plan.BackupPath()
		if _, err := os.Stat(backup); errors.Is(err, os.ErrNotExist) {
			current, err := os.ReadFile(plan.File)
			if err != nil {
				return fmt.Errorf("reading %s: %w", plan.File, err)
			}
			if err := writeFileAtomic(backup, current, mode); err != nil {
				return fmt.Errorf("creating backup: %w", err)
			}
			res.BackupPath = backup
			emitter.Emit(BackupCreatedEvent(backup))
		}
	}

	if err := writeFileAtomic(plan.File, res.Output, mode); err != nil {
		return fmt.Errorf("writing %s: %w", plan.File, err)
	}
	res.Written = true
	emitter.Emit(FileWrittenEvent(plan.File, len(res.Output)))
	return nil
}

// writeFileAtomic writes data to a temporary file in the target directory and
// renames it over path.
func writeFileAtomic(path string, data []byte, mode os.FileMode) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
