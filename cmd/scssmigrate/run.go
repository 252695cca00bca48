package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/martinemde/scssmigrate/migrate"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Migrate a stylesheet",
	Long: `Rewrite deprecated rgba() calls, reorder the plan's selector blocks and
apply its whole-block replacements. The file defaults to the plan's file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMigration,
}

func init() {
	runCmd.Flags().Bool("from-backup", false, "Read the source from <file>.backup")
	runCmd.Flags().Bool("no-backup", false, "Do not create <file>.backup before writing")
	runCmd.Flags().Bool("dry-run", false, "Compute the migration but do not write")
	runCmd.Flags().Bool("diff", false, "Print a unified diff of the changes")
	runCmd.Flags().Bool("strict", false, "Fail without writing if any pattern is skipped")
	runCmd.Flags().String("report", "", "Write a JSON run report to this path")
	runCmd.Flags().String("preset", "", "Opacity rewrite preset (default, sass)")

	_ = viper.BindPFlag("from_backup", runCmd.Flags().Lookup("from-backup"))
	_ = viper.BindPFlag("no_backup", runCmd.Flags().Lookup("no-backup"))
	_ = viper.BindPFlag("strict", runCmd.Flags().Lookup("strict"))
	_ = viper.BindPFlag("report", runCmd.Flags().Lookup("report"))
	_ = viper.BindPFlag("preset", runCmd.Flags().Lookup("preset"))

	rootCmd.AddCommand(runCmd)
}

// runOptions are the run settings that do not belong in a plan.
type runOptions struct {
	DryRun     bool
	Diff       bool
	Verbose    bool
	ReportPath string
}

func runMigration(cmd *cobra.Command, args []string) error {
	plan, err := resolvePlan(args)
	if err != nil {
		return err
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	showDiff, _ := cmd.Flags().GetBool("diff")

	opts := runOptions{
		DryRun:     dryRun,
		Diff:       showDiff,
		Verbose:    viper.GetBool("verbose"),
		ReportPath: viper.GetString("report"),
	}
	return migrateFile(cmd.Context(), plan, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// migrateFile runs the plan, printing progress to stderr and the diff and
// completion message to stdout.
func migrateFile(ctx context.Context, plan *migrate.Plan, opts runOptions, stdout, stderr io.Writer) error {
	emitter := migrate.NewEventEmitter()
	emitter.On(terminalEventListener(stderr, opts.Verbose))

	result, err := migrate.Run(ctx, migrate.Options{
		Plan:    plan,
		DryRun:  opts.DryRun,
		Emitter: emitter,
	})
	if result != nil && opts.ReportPath != "" {
		if saveErr := migrate.SaveReport(migrate.NewReport(result), opts.ReportPath); saveErr != nil {
			fmt.Fprintf(stderr, "[report] %v\n", saveErr)
		} else {
			fmt.Fprintf(stderr, "[report] %s\n", opts.ReportPath)
		}
	}
	if err != nil {
		return err
	}

	if opts.Diff {
		diff, err := result.Diff()
		if err != nil {
			return err
		}
		fmt.Fprint(stdout, diff)
	}

	printRunSummary(stderr, result, opts.DryRun)
	if !opts.DryRun {
		fmt.Fprintf(stdout, "Fixed SASS deprecation warnings in %s\n", plan.File)
	}
	return nil
}

// terminalEventListener returns an event listener that prints migration progress.
func terminalEventListener(w io.Writer, verbose bool) func(migrate.Event) {
	// A pass line is left open until the pass completes; anything printed
	// in between starts on a fresh line.
	open := false
	closeLine := func() {
		if open {
			fmt.Fprintln(w)
			open = false
		}
	}
	printLine := func(format string, args ...any) {
		closeLine()
		fmt.Fprintf(w, format+"\n", args...)
	}

	return func(e migrate.Event) {
		switch e.Type {
		case migrate.EventMigrationStarted:
			path, _ := e.Data["path"].(string)
			source, _ := e.Data["source"].(string)
			if source != "" && source != path {
				printLine("[migrate] Starting: %s (from %s)", path, source)
			} else {
				printLine("[migrate] Starting: %s", path)
			}

		case migrate.EventPassStarted:
			name, _ := e.Data["name"].(string)
			index, _ := e.Data["index"].(int)
			closeLine()
			fmt.Fprintf(w, "[pass %d] %s...", index+1, name)
			open = true

		case migrate.EventPassCompleted:
			edits, _ := e.Data["edits"].(int)
			durationMs, _ := e.Data["duration_ms"].(int64)
			duration := time.Duration(durationMs) * time.Millisecond
			if open {
				fmt.Fprintf(w, " done (%d edits, %.1fs)\n", edits, duration.Seconds())
				open = false
			} else {
				name, _ := e.Data["name"].(string)
				printLine("[pass] %s done (%d edits, %.1fs)", name, edits, duration.Seconds())
			}

		case migrate.EventCallRewritten:
			if verbose {
				line, _ := e.Data["line"].(int)
				from, _ := e.Data["from"].(string)
				to, _ := e.Data["to"].(string)
				printLine("  [rewrite] line %d: %s -> %s", line, from, to)
			}

		case migrate.EventBlockReordered:
			if verbose {
				selector, _ := e.Data["selector"].(string)
				line, _ := e.Data["line"].(int)
				order, _ := e.Data["order"].([]string)
				printLine("  [reorder] %s (line %d): %s", selector, line, strings.Join(order, ", "))
			}

		case migrate.EventBlockReplaced:
			if verbose {
				name, _ := e.Data["name"].(string)
				start, _ := e.Data["start_line"].(int)
				end, _ := e.Data["end_line"].(int)
				printLine("  [replace] %s (lines %d-%d)", name, start, end)
			}

		case migrate.EventFinding:
			severity, _ := e.Data["severity"].(string)
			rule, _ := e.Data["rule"].(string)
			msg, _ := e.Data["message"].(string)
			if line, _ := e.Data["line"].(int); line > 0 {
				printLine("  [%s] %s: %s (line %d)", strings.ToLower(severity), rule, msg, line)
			} else {
				printLine("  [%s] %s: %s", strings.ToLower(severity), rule, msg)
			}

		case migrate.EventBackupCreated:
			path, _ := e.Data["path"].(string)
			printLine("[backup] %s", path)

		case migrate.EventFileWritten:
			if verbose {
				path, _ := e.Data["path"].(string)
				n, _ := e.Data["bytes"].(int)
				printLine("[write] %s (%d bytes)", path, n)
			}

		case migrate.EventMigrationCompleted:
			durationMs, _ := e.Data["duration_ms"].(int64)
			duration := time.Duration(durationMs) * time.Millisecond
			printLine("[migrate] Completed in %.1fs", duration.Seconds())

		case migrate.EventMigrationFailed:
			errMsg, _ := e.Data["error"].(string)
			printLine("[migrate] Failed: %s", errMsg)

		default:
			if verbose {
				printLine("[event] %s", e.Type)
			}
		}
	}
}

// printRunSummary prints the result of a migration run.
func printRunSummary(w io.Writer, result *migrate.Result, dryRun bool) {
	fmt.Fprintf(w, "\n[summary]\n")
	fmt.Fprintf(w, "  Run: %s\n", result.RunID)
	fmt.Fprintf(w, "  Calls rewritten: %d\n", result.Stats.CallsRewritten)
	fmt.Fprintf(w, "  Blocks reordered: %d\n", result.Stats.BlocksReordered)
	fmt.Fprintf(w, "  Blocks replaced: %d\n", result.Stats.BlocksReplaced)
	if result.Stats.UsesInserted > 0 {
		fmt.Fprintf(w, "  @use lines added: %d\n", result.Stats.UsesInserted)
	}
	fmt.Fprintf(w, "  Findings: %d\n", len(result.Findings))

	switch {
	case dryRun:
		fmt.Fprintf(w, "  Dry run: nothing written\n")
	case !result.Changed:
		fmt.Fprintf(w, "  Already migrated: nothing to write\n")
	case result.BackupPath != "":
		fmt.Fprintf(w, "  Backup: %s\n", result.BackupPath)
	}
}
