package main

import (
	"fmt"

	"github.com/jonathan/xliff-fixer/internal/ingestion"
	"github.com/jonathan/xliff-fixer/internal/observability"
	"github.com/jonathan/xliff-fixer/internal/validation"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate FILE|GLOB...",
	Short: "Check XLIFF/XML files for well-formedness",
	Long:  "Parses each file and reports whether it is well-formed XML. Exits with an error when any file is invalid.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	files, err := ingestion.ExpandPaths(args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printer := observability.NewPrinter(out)
	invalid := 0
	for _, path := range files {
		content, _, err := ingestion.ReadFile(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		outcome := validation.Validate(content)
		if !outcome.IsValid {
			invalid++
		}

		if cfg.Verbose {
			printer.PrintValidation(path, &outcome)
			continue
		}
		if outcome.IsValid {
			_, _ = fmt.Fprintf(out, "%s %s: valid XML\n", okMark(), path)
		} else {
			_, _ = fmt.Fprintf(out, "%s %s: %s\n", failMark(), path, outcome.Errors[0])
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d file(s) are not valid XML", invalid, len(files))
	}
	return nil
}
