package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"golang-dsf-service/internal/exporter"
	"golang-dsf-service/internal/models"
	"golang-dsf-service/pkg/errors"
)

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return errors.ValidationError(errors.CodeMissingField, description, nil, nil).
			WithSuggestion(fmt.Sprintf("Provide the path of the %s", description))
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return errors.FileError(errors.CodeFileNotFound, filePath, err).
			WithContext("description", description)
	}
	if err != nil {
		return errors.FileError(errors.CodeFilePermission, filePath, err)
	}

	if info.IsDir() {
		return errors.FileError(errors.CodeUnsupported, filePath,
			fmt.Errorf("%s is a directory, expected a file", description))
	}

	// Check if file is readable
	file, err := os.Open(filePath)
	if err != nil {
		return errors.FileError(errors.CodeFilePermission, filePath, err)
	}
	file.Close()

	return nil
}

func writeImportFile(exp *exporter.Exporter, s *models.ImportSession, threshold float64, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.FileError(errors.CodeFilePermission, path, err)
	}
	file, err := os.Create(path)
	if err != nil {
		return errors.FileError(errors.CodeFilePermission, path, err)
	}
	defer file.Close()

	if err := exp.ExportImport(s, threshold, file); err != nil {
		return errors.InternalError(errors.CodeUnexpectedError, "export_import", err)
	}
	return nil
}
