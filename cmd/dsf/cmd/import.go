package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"golang-dsf-service/internal/declaration"
	"golang-dsf-service/internal/importer"
	"golang-dsf-service/internal/parsers"
	"golang-dsf-service/internal/report"
	"golang-dsf-service/pkg/errors"
)

var (
	importFile    string
	importFolder  string
	importApply   bool
	importUser    string
	importSession string
	importEntry   string
	importField   string
	importReject  bool
	importReason  string
)

// importCmd reconciles a legacy DSF workbook against the field catalog
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import values from a legacy DSF workbook",
	Long: `Import reads every sheet of a DSF workbook produced by another tool,
classifies sheets by name and matches each data row to a declaration field
using the sheet, the row label, the account number and the row position.
The session is stored so that matches can be reviewed with 'import confirm'
and written into the folder's declaration with 'import apply'.

Examples:
  dsf import --folder F001 --file dsf_2023.xlsx
  dsf import --folder F001 --file dsf_2023.xlsx --apply --user u1
  dsf import confirm --session 3f2a... --entry 91bd... --field bilan.actif.AJ.net --user u1
  dsf import apply --session 3f2a... --user u1`,

	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := validateFileExists(importFile, "legacy workbook"); err != nil {
			return err
		}
		if importApply && importUser == "" {
			return errors.ValidationError(errors.CodeMissingField, "user", nil, nil).
				WithSuggestion("Add --user when applying an import")
		}
		return validateOutputFlags()
	},
	RunE: runImport,
}

var importConfirmCmd = &cobra.Command{
	Use:   "confirm",
	Short: "Confirm, correct or reject the match of an import entry",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if importReject == (importField != "") {
			return errors.ValidationError(errors.CodeMissingField, "field", nil,
				fmt.Errorf("exactly one of --field and --reject is required"))
		}
		if importField != "" {
			if _, ok := report.LookupField(importField); !ok {
				return errors.ImportError(errors.CodeUnknownField, importField, nil).
					WithSuggestion("Use 'dsf mappings fields' to list field identifiers")
			}
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApplication()
		if err != nil {
			return err
		}
		defer app.close()

		entry, err := app.service.ConfirmMatch(context.Background(), importSession, importer.Confirmation{
			EntryID: importEntry,
			FieldID: importField,
			User:    importUser,
			Reason:  importReason,
		})
		if err != nil {
			return err
		}

		match := entry.MatchedFieldID
		if match == "" {
			match = "(rejected)"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Entry %s (%s row %d, %q) -> %s\n",
			entry.ID, entry.SheetName, entry.RowNumber, entry.Label, match)
		return nil
	},
}

var importApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Write the eligible entries of an import session into the declaration",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApplication()
		if err != nil {
			return err
		}
		defer app.close()

		outcome, err := app.service.ApplyImport(context.Background(), importSession, importFolder, importUser)
		if err != nil {
			return err
		}
		printApplyOutcome(cmd, outcome)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.AddCommand(importConfirmCmd)
	importCmd.AddCommand(importApplyCmd)

	importCmd.Flags().StringVar(&importFile, "file", "", "path to the legacy DSF workbook (required)")
	importCmd.Flags().StringVar(&importFolder, "folder", "", "folder identifier (required)")
	importCmd.Flags().BoolVar(&importApply, "apply", false, "apply entries above the confidence threshold right away")
	importCmd.Flags().StringVar(&importUser, "user", "", "user applying the import")
	addOutputFlags(importCmd)
	importCmd.MarkFlagRequired("file")
	importCmd.MarkFlagRequired("folder")

	importConfirmCmd.Flags().StringVar(&importSession, "session", "", "import session identifier (required)")
	importConfirmCmd.Flags().StringVar(&importEntry, "entry", "", "entry identifier (required)")
	importConfirmCmd.Flags().StringVar(&importField, "field", "", "field identifier to match the entry to")
	importConfirmCmd.Flags().BoolVar(&importReject, "reject", false, "reject the proposed match")
	importConfirmCmd.Flags().StringVar(&importReason, "reason", "", "reason recorded with the correction")
	importConfirmCmd.Flags().StringVar(&importUser, "user", "", "user confirming the match (required)")
	importConfirmCmd.MarkFlagRequired("session")
	importConfirmCmd.MarkFlagRequired("entry")
	importConfirmCmd.MarkFlagRequired("user")

	importApplyCmd.Flags().StringVar(&importSession, "session", "", "import session identifier (required)")
	importApplyCmd.Flags().StringVar(&importFolder, "folder", "", "folder identifier (default: the session's folder)")
	importApplyCmd.Flags().StringVar(&importUser, "user", "", "user applying the import (required)")
	importApplyCmd.MarkFlagRequired("session")
	importApplyCmd.MarkFlagRequired("user")
}

func runImport(cmd *cobra.Command, args []string) error {
	app, err := newApplication()
	if err != nil {
		return err
	}
	defer app.close()

	wb, err := parsers.ReadWorkbook(importFile)
	if err != nil {
		return err
	}

	ctx := context.Background()
	session, err := app.service.ImportLegacy(ctx, importFolder, wb)
	if err != nil {
		return err
	}

	exp, err := app.exporter(outputFormat)
	if err != nil {
		return err
	}
	threshold := app.config.Import.AutoApplyThreshold

	if outputFile != "" {
		if err := writeImportFile(exp.Exporter, session, threshold, outputFile); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Import session %s written to %s\n", session.ID, outputFile)
	} else if err := exp.ExportImport(session, threshold, cmd.OutOrStdout()); err != nil {
		return err
	}

	if !importApply {
		return nil
	}
	outcome, err := app.service.ApplyImport(ctx, session.ID, importFolder, importUser)
	if err != nil {
		return err
	}
	printApplyOutcome(cmd, outcome)
	return nil
}

func printApplyOutcome(cmd *cobra.Command, outcome *declaration.ApplyOutcome) {
	w := cmd.OutOrStdout()
	d := outcome.Declaration
	fmt.Fprintf(w, "\nApplied %d entries, skipped %d\n", outcome.Result.Applied, outcome.Result.Skipped)
	for _, warning := range outcome.Result.Warnings {
		fmt.Fprintf(w, "  - %s\n", warning)
	}
	fmt.Fprintf(w, "Declaration %s is %s (version %d, %d coherence issues)\n",
		d.ID, d.Status, d.Version, len(d.Coherence))
}
