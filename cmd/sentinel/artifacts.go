package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/sla-sentinel/internal/cli"
	"github.com/spf13/cobra"
)

// DefaultImportanceCount is how many feature importances are shown.
const DefaultImportanceCount = 10

func artifactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "artifacts",
		Short: "Inspect the trained model artifacts",
	}

	validate := &cobra.Command{
		Use:   "validate",
		Short: "Check that the artifact bundle loads and is consistent",
		RunE:  runArtifactsValidate,
	}

	importance := &cobra.Command{
		Use:   "importance",
		Short: "Show the most important model features",
		RunE:  runArtifactsImportance,
	}
	importance.Flags().IntP("top", "n", DefaultImportanceCount, "Number of features to show (0 for all)")

	cmd.AddCommand(validate, importance)
	return cmd
}

func runArtifactsValidate(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	predictor, err := initPredictor(settings, nil)
	if err != nil {
		return err
	}
	bundle := predictor.Bundle()
	resolver := loadCalendar(settings)

	var b strings.Builder
	fmt.Fprintf(&b, "Directory:          %s\n", bundle.Dir)
	fmt.Fprintf(&b, "Features:           %s\n", strings.Join(bundle.FeatureNames, ", "))
	fmt.Fprintf(&b, "Trees:              %d\n", len(bundle.Model.Trees))
	fmt.Fprintf(&b, "Threshold:          %.4f\n", predictor.Threshold())
	fmt.Fprintf(&b, "Override priority:  %s\n", predictor.OverridePriority())
	for _, column := range sortedKeys(bundle.Encoders) {
		fmt.Fprintf(&b, "Encoder %-11s %d classes\n", column+":", len(bundle.Encoders[column]))
	}
	fmt.Fprintf(&b, "Scaled columns:     %s\n", strings.Join(bundle.Scaler.FeatureNames, ", "))
	if resolver.Degraded() {
		fmt.Fprintf(&b, "Holidays:           %s", cli.WarningStyle.Render("unavailable (weekends only)"))
	} else {
		fmt.Fprintf(&b, "Holidays:           %d known for %s", resolver.HolidayCount(), resolver.Country())
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox(cli.SuccessIcon+" Artifacts OK", b.String()))
	return err
}

func runArtifactsImportance(cmd *cobra.Command, _ []string) error {
	top, _ := cmd.Flags().GetInt("top")

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	bundle, err := loadBundle(settings)
	if err != nil {
		return err
	}

	importances := bundle.TopImportances(top)
	if len(importances) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning("The bundle has no feature importance file"))
		return err
	}
	return cli.WriteImportanceTable(cmd.OutOrStdout(), importances)
}
