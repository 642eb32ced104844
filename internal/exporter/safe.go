package exporter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang-dsf-service/internal/declaration"
	"golang-dsf-service/pkg/errors"
	"golang-dsf-service/pkg/logger"
)

// SafeExporter wraps Exporter with input validation, logging and fallbacks
type SafeExporter struct {
	*Exporter
	logger logger.Logger
}

// NewSafeExporter creates a safe exporter
func NewSafeExporter(config *Config, log logger.Logger) (*SafeExporter, error) {
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	exp, err := NewExporter(config)
	if err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "export_config", config, err).
			WithSuggestion("Use one of the formats console, json, csv or xlsx")
	}
	return &SafeExporter{Exporter: exp, logger: log.WithComponent("exporter")}, nil
}

// ExportSafely exports d to w. When a structured format fails the console
// summary is written instead, preceded by a notice.
func (s *SafeExporter) ExportSafely(d *declaration.Declaration, w io.Writer) error {
	if err := validateInputs(d, w); err != nil {
		s.logger.WithError(err).Error("Export failed: input validation")
		return err
	}

	s.logger.WithFields(logger.Fields{
		"format":    s.config.Format,
		"output":    getWriterDescription(w),
		"folder_id": d.FolderID,
	}).Info("Starting export")

	err := s.Export(d, w)
	if err == nil {
		s.logger.Info("Export completed successfully")
		return nil
	}

	s.logger.WithError(err).Warn("Export failed, attempting console fallback")
	if s.config.Format == FormatConsole || s.config.Format.IsBinary() {
		return wrapExportError(err)
	}

	fallback := *s.config
	fallback.Format = FormatConsole
	fmt.Fprintf(w, "NOTE: Exported in console format due to error with requested format\n")
	fmt.Fprintf(w, "Original error: %v\n\n", err)
	if ferr := (&Exporter{config: &fallback}).Export(d, w); ferr != nil {
		return errors.InternalError(errors.CodeUnexpectedError, "export_fallback",
			fmt.Errorf("both primary and fallback export failed: primary=%v, fallback=%v", err, ferr))
	}
	return nil
}

// ExportToFile writes d to path, creating parent directories. When path
// cannot be created the export goes to a backup file next to it and the
// backup path is returned.
func (s *SafeExporter) ExportToFile(d *declaration.Declaration, path string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", errors.FileError(errors.CodeFilePermission, path, err)
	}

	file, err := os.Create(path)
	if err != nil {
		if !isFileError(err) {
			return "", errors.FileError(errors.CodeFilePermission, path, err)
		}
		backup := backupPath(path)
		s.logger.WithFields(logger.Fields{
			"original_file": path,
			"backup_file":   backup,
		}).Warn("Attempting output fallback")

		file, err = os.Create(backup)
		if err != nil {
			return "", errors.FileError(errors.CodeFilePermission, path, err).
				WithSuggestion("Check the output directory permissions")
		}
		path = backup
	}
	defer file.Close()

	if err := s.Export(d, file); err != nil {
		return "", wrapExportError(err)
	}
	s.logger.WithField("file", path).Info("Declaration exported")
	return path, nil
}

func validateInputs(d *declaration.Declaration, w io.Writer) error {
	if d == nil {
		return errors.ValidationError(errors.CodeMissingField, "declaration", nil, nil).
			WithSuggestion("Generate the declaration before exporting it")
	}
	if d.Reports == nil {
		return errors.ValidationError(errors.CodeMissingField, "reports", nil, nil).
			WithSuggestion("Generate the declaration before exporting it")
	}
	if w == nil {
		return errors.ValidationError(errors.CodeMissingField, "writer", nil, nil).
			WithSuggestion("Provide a valid output writer")
	}
	return nil
}

func wrapExportError(err error) error {
	if dsfErr, ok := errors.AsDSFError(err); ok {
		return dsfErr
	}
	return errors.InternalError(errors.CodeUnexpectedError, "export", err).
		WithSuggestion("Check the output destination and export format settings")
}

func isFileError(err error) bool {
	if os.IsPermission(err) || os.IsNotExist(err) || os.IsExist(err) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "no space left") || strings.Contains(msg, "disk full")
}

func backupPath(original string) string {
	dir := filepath.Dir(original)
	base := filepath.Base(original)
	ext := filepath.Ext(base)
	return filepath.Join(dir, fmt.Sprintf("%s_backup%s", strings.TrimSuffix(base, ext), ext))
}

func getWriterDescription(w io.Writer) string {
	if file, ok := w.(*os.File); ok {
		if file.Name() != "" {
			return "file:" + file.Name()
		}
		return "file:unnamed"
	}
	return fmt.Sprintf("writer:%T", w)
}
