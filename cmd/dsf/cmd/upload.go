package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"golang-dsf-service/cmd/dsf/config"
	"golang-dsf-service/internal/declaration"
	"golang-dsf-service/internal/models"
	"golang-dsf-service/internal/parsers"
	"golang-dsf-service/pkg/errors"
)

// Flags for the upload command
var (
	uploadFile     string
	uploadFolder   string
	uploadExercise string
	uploadPeriod   string
	uploadSheet    string
)

// uploadCmd represents the upload command
var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload and validate a trial balance",
	Long: `Upload reads a trial balance (CSV or XLSX), validates every row, checks
the equilibrium of debit and credit totals and classifies accounts that need
attention. The result is stored as the folder's balance for the period,
replacing any earlier upload. Resolved account issues carry over.

Examples:
  dsf upload --folder F001 --file balance_2024.xlsx
  dsf upload --folder F001 --file balance_2023.csv --period PREVIOUS_YEAR
  dsf upload --folder F001 --file export.xlsx --sheet "Balance generale"`,

	PreRunE: validateUploadFlags,
	RunE:    runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)

	uploadCmd.Flags().StringVarP(&uploadFile, "file", "f", "", "path to the trial balance file (required)")
	uploadCmd.Flags().StringVar(&uploadFolder, "folder", "", "folder identifier (required)")
	uploadCmd.Flags().StringVar(&uploadExercise, "exercise", "", "exercise identifier")
	uploadCmd.Flags().StringVar(&uploadPeriod, "period", string(models.PeriodCurrentYear), "period: CURRENT_YEAR, PREVIOUS_YEAR")
	uploadCmd.Flags().StringVar(&uploadSheet, "sheet", "", "workbook sheet holding the balance (default: first sheet)")

	uploadCmd.MarkFlagRequired("file")
	uploadCmd.MarkFlagRequired("folder")
}

func validateUploadFlags(cmd *cobra.Command, args []string) error {
	if err := validateFileExists(uploadFile, "trial balance file"); err != nil {
		return err
	}
	if strings.TrimSpace(uploadFolder) == "" {
		return errors.ValidationError(errors.CodeMissingField, "folder", nil, nil)
	}
	period := models.PeriodType(strings.ToUpper(uploadPeriod))
	if !period.IsValid() {
		return errors.ValidationError(errors.CodeInvalidData, "period", uploadPeriod,
			fmt.Errorf("unknown period")).
			WithSuggestion("Use CURRENT_YEAR or PREVIOUS_YEAR")
	}
	uploadPeriod = string(period)
	return nil
}

func runUpload(cmd *cobra.Command, args []string) error {
	app, err := newApplication()
	if err != nil {
		return err
	}
	defer app.close()

	parserConfig, err := config.CreateParserConfig(app.config)
	if err != nil {
		return err
	}
	if uploadSheet != "" {
		parserConfig.Sheet = uploadSheet
	}
	parser, err := parsers.NewTrialBalanceParser(parserConfig)
	if err != nil {
		return err
	}

	rows, stats, err := parser.ParseFile(uploadFile)
	if err != nil {
		return err
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Parsed %s\n", stats.String())
	}
	if stats.HasErrors() {
		fmt.Fprintf(os.Stderr, "%s\n\n", errors.FormatRowErrorsForUser(stats.Errors))
	}

	b, err := app.service.ProcessBalance(context.Background(), declaration.BalanceUpload{
		FolderID:   uploadFolder,
		ExerciseID: uploadExercise,
		PeriodType: models.PeriodType(uploadPeriod),
		FileName:   filepath.Base(uploadFile),
		Rows:       rows,
	})
	if err != nil {
		return err
	}

	printBalance(cmd.OutOrStdout(), b)
	if b.Status == models.BalanceStatusInvalid {
		return errors.ValidationError(errors.CodeInvalidBalance, "balance", b.ID,
			fmt.Errorf("%d rows failed validation", len(b.ValidationErrors))).
			WithSuggestion("Correct the listed rows and upload the file again")
	}
	return nil
}

func printBalance(w io.Writer, b *models.Balance) {
	fmt.Fprintf(w, "BALANCE %s\n", b.ID)
	fmt.Fprintf(w, "Folder:   %s (%s)\n", b.FolderID, b.PeriodType)
	if b.ExerciseID != "" {
		fmt.Fprintf(w, "Exercise: %s\n", b.ExerciseID)
	}
	fmt.Fprintf(w, "File:     %s\n", b.FileName)
	fmt.Fprintf(w, "Status:   %s\n", b.Status)
	fmt.Fprintf(w, "Entries:  %d\n", len(b.Entries))

	if len(b.ValidationErrors) > 0 {
		fmt.Fprintf(w, "\n=== VALIDATION ERRORS (%d) ===\n", len(b.ValidationErrors))
		for i, msg := range b.ValidationErrors {
			if i >= 20 {
				fmt.Fprintf(w, "  ... and %d more\n", len(b.ValidationErrors)-i)
				break
			}
			fmt.Fprintf(w, "  - %s\n", msg)
		}
		return
	}

	if eq := b.Equilibrium; eq != nil {
		fmt.Fprintf(w, "\n=== EQUILIBRIUM ===\n")
		fmt.Fprintf(w, "%-10s %18s %18s\n", "", "Debit", "Credit")
		fmt.Fprintf(w, "%-10s %18s %18s\n", "Opening", eq.TotalOpeningDebit.StringFixed(2), eq.TotalOpeningCredit.StringFixed(2))
		fmt.Fprintf(w, "%-10s %18s %18s\n", "Movement", eq.TotalMovementDebit.StringFixed(2), eq.TotalMovementCredit.StringFixed(2))
		fmt.Fprintf(w, "%-10s %18s %18s\n", "Closing", eq.TotalClosingDebit.StringFixed(2), eq.TotalClosingCredit.StringFixed(2))
		if eq.IsBalanced {
			fmt.Fprintf(w, "Balanced\n")
		} else {
			fmt.Fprintf(w, "Not balanced: %s\n", eq.AnomalyText())
		}
	}

	open := 0
	for _, issue := range b.Issues {
		if !issue.Resolved {
			open++
		}
	}
	fmt.Fprintf(w, "\n=== ACCOUNT ISSUES (%d open, %d total) ===\n", open, len(b.Issues))
	for _, issue := range b.Issues {
		state := "open"
		if issue.Resolved {
			state = "resolved"
		}
		fmt.Fprintf(w, "  %-10s %-24s %-8s %s\n", issue.AccountNumber, issue.Type, state, issue.Message)
	}
}
