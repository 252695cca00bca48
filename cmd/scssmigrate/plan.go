package main

import (
	"github.com/martinemde/scssmigrate/migrate"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var planCmd = &cobra.Command{
	Use:   "plan [file]",
	Short: "Print the effective migration plan",
	Long:  "Print the plan a run would use, after applying --plan, environment and flag overrides, as YAML.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, err := resolvePlan(args)
		if err != nil {
			return err
		}
		return plan.WriteYAML(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
}

// resolvePlan loads the plan named by --plan (or the built-in plan) and
// applies the file argument and any overrides set by flag or environment.
func resolvePlan(args []string) (*migrate.Plan, error) {
	plan := migrate.DefaultPlan()
	if path := viper.GetString("plan"); path != "" {
		loaded, err := migrate.LoadPlan(path)
		if err != nil {
			return nil, err
		}
		plan = loaded
	}

	if len(args) > 0 {
		plan.File = args[0]
	}
	if viper.IsSet("from_backup") {
		plan.FromBackup = viper.GetBool("from_backup")
	}
	if viper.GetBool("no_backup") {
		plan.Backup = false
	}
	if viper.IsSet("strict") {
		plan.Strict = viper.GetBool("strict")
	}
	if preset := viper.GetString("preset"); preset != "" {
		if err := plan.Opacity.ApplyPreset(preset); err != nil {
			return nil, err
		}
	}

	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}
