package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"golang-dsf-service/cmd/dsf/config"
	"golang-dsf-service/internal/declaration"
	"golang-dsf-service/internal/exporter"
	"golang-dsf-service/internal/models"
	"golang-dsf-service/pkg/errors"
)

// Flags for the generate and export commands
var (
	genFolder          string
	genExercise        string
	genUser            string
	genRole            string
	genClient          string
	genAllowUnbalanced bool
	genCompanyName     string
	genTaxID           string
	outputFormat       string
	outputFile         string
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the declaration of a folder",
	Long: `Generate builds every report of the declaration from the folder's current
trial balance. Account mappings are resolved for the given user, client and
exercise; prior-year figures come from the PREVIOUS_YEAR balance when one is
usable. The generated reports are checked for coherence and stored as the
folder's latest declaration, then exported.

The declaration is VALID when no blocking coherence issue remains, INVALID
otherwise, and DRAFT when it was generated from an unbalanced balance.

Examples:
  dsf generate --folder F001 --user u1
  dsf generate --folder F001 --user u1 --client C42 --exercise EX2024 \
    --output-format xlsx --output out/dsf_2024.xlsx
  dsf generate --folder F001 --user u1 --allow-unbalanced`,

	PreRunE: validateGenerateFlags,
	RunE:    runGenerate,
}

// exportCmd exports the latest stored declaration without regenerating it
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the latest declaration of a folder",
	Long: `Export writes the folder's latest declaration, including values applied
from legacy imports, in the requested format.

Example:
  dsf export --folder F001 --output-format csv --output dsf.csv`,

	PreRunE: func(cmd *cobra.Command, args []string) error {
		return validateOutputFlags()
	},
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(exportCmd)

	generateCmd.Flags().StringVar(&genFolder, "folder", "", "folder identifier (required)")
	generateCmd.Flags().StringVar(&genExercise, "exercise", "", "exercise identifier (default: from the balance)")
	generateCmd.Flags().StringVar(&genUser, "user", "", "user requesting the generation (required)")
	generateCmd.Flags().StringVar(&genRole, "role", string(models.RoleAccountant), "user role: ACCOUNTANT, ADMIN")
	generateCmd.Flags().StringVar(&genClient, "client", "", "client identifier for client-scoped mappings")
	generateCmd.Flags().BoolVar(&genAllowUnbalanced, "allow-unbalanced", false, "generate from an unbalanced trial balance")
	generateCmd.Flags().StringVar(&genCompanyName, "company-name", "", "company name (overrides entity.name)")
	generateCmd.Flags().StringVar(&genTaxID, "tax-id", "", "taxpayer identifier (overrides entity.tax_id)")
	addOutputFlags(generateCmd)

	generateCmd.MarkFlagRequired("folder")
	generateCmd.MarkFlagRequired("user")

	exportCmd.Flags().StringVar(&genFolder, "folder", "", "folder identifier (required)")
	addOutputFlags(exportCmd)
	exportCmd.MarkFlagRequired("folder")
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&outputFormat, "output-format", "f", "", "output format: console, json, csv, xlsx (default: export.format)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file path (default: stdout)")
}

func validateGenerateFlags(cmd *cobra.Command, args []string) error {
	role := models.UserRole(strings.ToUpper(genRole))
	if role != models.RoleAccountant && role != models.RoleAdmin {
		return errors.ValidationError(errors.CodeInvalidData, "role", genRole, fmt.Errorf("unknown role")).
			WithSuggestion("Use ACCOUNTANT or ADMIN")
	}
	genRole = string(role)
	return validateOutputFlags()
}

func validateOutputFlags() error {
	if outputFormat == "" {
		return nil
	}
	format := exporter.OutputFormat(strings.ToLower(outputFormat))
	if !format.IsValid() {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "output-format", outputFormat,
			fmt.Errorf("invalid output format")).
			WithSuggestion("Valid formats: console, json, csv, xlsx")
	}
	if format.IsBinary() && outputFile == "" {
		return errors.ValidationError(errors.CodeMissingField, "output", nil,
			fmt.Errorf("%s output cannot be written to the terminal", format)).
			WithSuggestion("Add --output with a file path")
	}
	outputFormat = string(format)
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	app, err := newApplication()
	if err != nil {
		return err
	}
	defer app.close()

	entity, err := config.CreateEntity(app.config)
	if err != nil {
		return err
	}
	if genCompanyName != "" {
		entity.Name = genCompanyName
	}
	if genTaxID != "" {
		entity.TaxID = genTaxID
	}

	allowUnbalanced := app.config.Validation.AllowUnbalanced
	if cmd.Flags().Changed("allow-unbalanced") {
		allowUnbalanced = genAllowUnbalanced
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Generating declaration for folder %s...\n", genFolder)
	}

	d, err := app.service.Generate(context.Background(), declaration.GenerateRequest{
		FolderID:   genFolder,
		ExerciseID: genExercise,
		Entity:     entity,
		Context: models.ResolutionContext{
			UserID:     genUser,
			Role:       models.UserRole(genRole),
			ClientID:   genClient,
			ExerciseID: genExercise,
		},
		AllowUnbalanced: allowUnbalanced,
	})
	if err != nil {
		return err
	}

	if err := writeDeclaration(cmd, app, d); err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Declaration %s version %d is %s with %d coherence issues.\n",
			d.ID, d.Version, d.Status, len(d.Coherence))
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	app, err := newApplication()
	if err != nil {
		return err
	}
	defer app.close()

	d, err := app.service.Latest(context.Background(), genFolder)
	if err != nil {
		if errors.HasCode(err, errors.CodeNotFound) {
			if dsfErr, ok := errors.AsDSFError(err); ok {
				return dsfErr.WithSuggestion("Run 'dsf generate' for this folder first")
			}
		}
		return err
	}
	return writeDeclaration(cmd, app, d)
}

func writeDeclaration(cmd *cobra.Command, app *application, d *declaration.Declaration) error {
	exp, err := app.exporter(outputFormat)
	if err != nil {
		return err
	}

	if outputFile == "" {
		if exp.Format().IsBinary() {
			return errors.ValidationError(errors.CodeMissingField, "output", nil, nil).
				WithSuggestion("Add --output with a file path")
		}
		return exp.ExportSafely(d, cmd.OutOrStdout())
	}

	written, err := exp.ExportToFile(d, outputFile)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Declaration %s (%s, version %d) written to %s\n", d.ID, d.Status, d.Version, written)
	return nil
}
