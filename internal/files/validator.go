package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "routecleaner/internal/errors"
)

// Validator checks input and output locations before a run touches them
type Validator struct {
	logger *slog.Logger
}

// NewValidator creates a new file validator
func NewValidator(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{logger: logger}
}

// ValidateInputFile checks that path is a readable spreadsheet in a
// supported format and returns that format.
func (v *Validator) ValidateInputFile(path string) (Format, error) {
	if isLockFile(filepath.Base(path)) {
		v.logger.Warn("Refusing office lock file", slog.String("file", path))
		return "", apperrors.NewAppValidationError("input",
			fmt.Sprintf("%s is an office lock file, not a workbook", filepath.Base(path)))
	}

	format, err := DetectFormat(path)
	if err != nil {
		v.logger.Error("Unsupported input format", slog.String("file", path))
		return "", err
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist", slog.String("file", path))
		return "", apperrors.NewIOError("stat", path, err).WithContext("reason", "not_found")
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return "", apperrors.NewIOError("stat", path, err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file", slog.String("path", path))
		return "", apperrors.NewAppValidationError("input", fmt.Sprintf("%s is a directory, not a file", path))
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return "", apperrors.NewIOError("open", path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.String("format", string(format)),
		slog.Int64("size", info.Size()))
	return format, nil
}

// ValidateOutputDirectory ensures dir exists or can be created and is writable
func (v *Validator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewIOError("create directory", dir, err)
	}

	probe, err := os.CreateTemp(dir, ".write_test*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewIOError("write", dir, err)
	}
	probe.Close()
	os.Remove(probe.Name())

	return nil
}

// ValidateInputFile validates path with a default-logger Validator
func ValidateInputFile(path string) (Format, error) {
	return NewValidator(nil).ValidateInputFile(path)
}
