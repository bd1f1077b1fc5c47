// Package validation checks job inputs before they are read.
package validation

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "eventetl/internal/errors"
)

// FileValidator checks that input files exist and can be read
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateFile checks that path is an existing, readable regular file.
// A missing file is a NOT_FOUND error; anything else unreadable is IO.
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			v.logger.Error("Input file does not exist", slog.String("path", path))
			return apperrors.NewNotFoundError(path, err)
		}
		v.logger.Error("Failed to stat input file",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return apperrors.NewIOError(fmt.Sprintf("cannot stat %s", path), err)
	}
	if info.IsDir() {
		v.logger.Error("Input path is a directory", slog.String("path", path))
		return apperrors.NewIOError(fmt.Sprintf("%s is a directory", path), nil)
	}

	// Check if file is readable by opening it
	f, err := os.Open(path)
	if err != nil {
		v.logger.Error("Input file is not readable",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return apperrors.NewIOError(fmt.Sprintf("cannot read %s", path), err)
	}
	f.Close()

	v.logger.Debug("Input file validated",
		slog.String("path", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateExcelFile checks that path is a readable workbook
func (v *FileValidator) ValidateExcelFile(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".xlsx" {
		return apperrors.NewValidationError(fmt.Sprintf("%s is not an .xlsx workbook", path), nil)
	}

	// Office lock files share the workbook's name with a ~$ prefix
	if strings.HasPrefix(filepath.Base(path), "~$") {
		return apperrors.NewValidationError(fmt.Sprintf("%s is an Office lock file", path), nil)
	}

	return nil
}
