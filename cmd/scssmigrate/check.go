package main

import (
	"fmt"
	"io"
	"os"

	"github.com/martinemde/scssmigrate/scssparser"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Lint a stylesheet for the problems a run fixes",
	Long: `Parse the stylesheet and report mixed declarations, declarations after
@include and remaining calls to the deprecated color function. Exits non-zero
on errors, or on warnings with --strict.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().Bool("strict", false, "Treat warnings as failures")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	plan, err := resolvePlan(args)
	if err != nil {
		return err
	}
	strict, _ := cmd.Flags().GetBool("strict")

	rule := scssparser.DeprecatedFunctionRule{
		Function:    plan.Opacity.Source,
		Replacement: plan.Opacity.Target,
	}
	return checkFile(plan.File, rule, strict, cmd.OutOrStdout())
}

// checkFile prints the diagnostics for one stylesheet and returns an error
// when the file fails the check.
func checkFile(path string, rule scssparser.LintRule, strict bool, w io.Writer) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	sheet, err := scssparser.Parse(src)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	diags, validationErr := scssparser.ValidateOrError(sheet, rule)
	var errs, warnings int
	for _, d := range diags {
		fmt.Fprintf(w, "%s: %s\n", path, d)
		switch d.Severity {
		case scssparser.Error:
			errs++
		case scssparser.Warning:
			warnings++
		}
	}

	if validationErr != nil {
		return fmt.Errorf("%s: %w", path, validationErr)
	}
	if strict && warnings > 0 {
		return fmt.Errorf("%s: %d error(s), %d warning(s)", path, errs, warnings)
	}
	fmt.Fprintf(w, "%s: ok (%d warning(s), %d note(s))\n", path, warnings, len(diags)-errs-warnings)
	return nil
}
