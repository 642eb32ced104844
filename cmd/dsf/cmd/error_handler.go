package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"syscall"

	"golang-dsf-service/pkg/errors"
	"golang-dsf-service/pkg/logger"

	"github.com/spf13/viper"
)

// CLIErrorHandler provides user-friendly error handling for CLI operations
type CLIErrorHandler struct {
	logger  logger.Logger
	verbose bool
	out     io.Writer
}

// NewCLIErrorHandler creates a new CLI error handler writing to stderr
func NewCLIErrorHandler() *CLIErrorHandler {
	return &CLIErrorHandler{
		logger:  logger.GetGlobalLogger().WithComponent("cli"),
		verbose: viper.GetBool("verbose"),
		out:     os.Stderr,
	}
}

// HandleError prints err and returns the process exit code
func (h *CLIErrorHandler) HandleError(err error) int {
	if err == nil {
		return 0
	}

	h.logger.WithError(err).Debug("Command failed")

	if dsfErr, ok := errors.AsDSFError(err); ok {
		return h.handleDSFError(dsfErr)
	}
	return h.handleGenericError(err)
}

func (h *CLIErrorHandler) handleDSFError(err *errors.DSFError) int {
	fmt.Fprintf(h.out, "Error: %s\n", err.Message)

	if len(err.Context) > 0 {
		keys := make([]string, 0, len(err.Context))
		for key := range err.Context {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		fmt.Fprintf(h.out, "\nContext:\n")
		for _, key := range keys {
			fmt.Fprintf(h.out, "  %s: %v\n", key, err.Context[key])
		}
	}

	if err.Suggestion != "" {
		fmt.Fprintf(h.out, "\nSuggestion: %s\n", err.Suggestion)
	}

	if help := h.getCategoryHelp(err.Category); help != "" {
		fmt.Fprintf(h.out, "\n%s\n", help)
	}

	if h.verbose && err.Cause != nil {
		fmt.Fprintf(h.out, "\nUnderlying error: %v\n", err.Cause)
	}

	return err.GetExitCode()
}

func (h *CLIErrorHandler) handleGenericError(err error) int {
	if h.isFileNotFoundError(err) {
		fmt.Fprintf(h.out, "Error: File not found\n")
		fmt.Fprintf(h.out, "Suggestion: Check if the file path is correct and the file exists\n")
		return 2
	}

	if h.isPermissionError(err) {
		fmt.Fprintf(h.out, "Error: Permission denied\n")
		fmt.Fprintf(h.out, "Suggestion: Check file permissions and ensure you have read access\n")
		return 2
	}

	if h.isDiskFullError(err) {
		fmt.Fprintf(h.out, "Error: Insufficient disk space\n")
		fmt.Fprintf(h.out, "Suggestion: Free up disk space and try again\n")
		return 2
	}

	// cobra reports unknown flags and missing required flags as plain errors
	fmt.Fprintf(h.out, "Error: %v\n", err)
	if !h.verbose {
		fmt.Fprintf(h.out, "Run 'dsf --help' for usage.\n")
	}
	return 1
}

func (h *CLIErrorHandler) getCategoryHelp(category errors.ErrorCategory) string {
	switch category {
	case errors.CategoryFile:
		return `File error help:
• Check if the file exists and is readable
• Verify the file path is correct (use absolute paths if needed)
• Trial balances are read from .csv, .txt, .xlsx or .xlsm files`

	case errors.CategoryParse:
		return `Parse error help:
• Check that the header row names the account number, label and amount columns
• Use --sheet to pick the worksheet that holds the balance
• Save CSV files in UTF-8 with ';' separators, or set parser.csv_delimiter`

	case errors.CategoryValidation:
		return `Validation error help:
• Account numbers must contain digits only
• Amounts must be decimal numbers without currency symbols
• Check that every required flag has a value`

	case errors.CategoryConfiguration:
		return `Configuration error help:
• Verify configuration file syntax if using --config
• Environment variables use the DSF_ prefix, e.g. DSF_DATABASE_DSN
• Try running with default settings first`

	case errors.CategoryMapping:
		return `Mapping error help:
• Use 'dsf mappings categories' to list report categories
• Sources are OD, OC, MD, MC, SD, SC, MCD or SCD
• Accountant configurations need an owner id`

	case errors.CategoryGeneration:
		return `Generation error help:
• Upload a CURRENT_YEAR balance with 'dsf upload' first
• Fix validation errors, or pass --allow-unbalanced for an unbalanced balance`

	case errors.CategoryImport:
		return `Import error help:
• Use 'dsf mappings fields' to list field identifiers
• Check the session and entry identifiers printed by 'dsf import'`

	case errors.CategoryStorage:
		return `Storage error help:
• Check --db-driver and --db-dsn, or database.driver and database.dsn in the config file
• Make sure the database is reachable and writable`

	default:
		return ""
	}
}

func (h *CLIErrorHandler) isFileNotFoundError(err error) bool {
	return os.IsNotExist(err) || strings.Contains(err.Error(), "no such file or directory")
}

func (h *CLIErrorHandler) isPermissionError(err error) bool {
	return os.IsPermission(err) ||
		strings.Contains(err.Error(), "permission denied") ||
		strings.Contains(err.Error(), "access denied")
}

func (h *CLIErrorHandler) isDiskFullError(err error) bool {
	if err == syscall.ENOSPC {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "no space left") ||
		strings.Contains(errStr, "disk full") ||
		strings.Contains(errStr, "device full")
}
