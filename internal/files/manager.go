package files

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"routecleaner/internal/config"
	apperrors "routecleaner/internal/errors"
)

// OutputName builds the file name for a run at now: "<prefix> <date><ext>",
// where the date is now shifted by cfg.DayOffset days and rendered with
// cfg.DateLayout. An empty prefix drops the separating space.
func OutputName(cfg config.OutputConfig, now time.Time) string {
	format, err := ParseFormat(cfg.Format)
	if err != nil {
		format = FormatXLSX
	}
	date := now.AddDate(0, 0, cfg.DayOffset).Format(cfg.DateLayout)
	name := strings.TrimSpace(fmt.Sprintf("%s %s", cfg.Prefix, date))
	return name + format.Extension()
}

// OutputPath places OutputName in cfg.Dir, or next to inputPath when no
// directory is configured. With neither it is relative to the working
// directory.
func OutputPath(cfg config.OutputConfig, inputPath string, now time.Time) string {
	dir := cfg.Dir
	if dir == "" && inputPath != "" {
		dir = filepath.Dir(inputPath)
	}
	return filepath.Join(dir, OutputName(cfg, now))
}

// BatchOutputPath is OutputPath with the input file's base name appended, so
// every file of a batch gets its own output: "<prefix> <date> <stem><ext>".
func BatchOutputPath(cfg config.OutputConfig, inputPath string, now time.Time) string {
	single := OutputPath(cfg, inputPath, now)
	ext := filepath.Ext(single)
	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	return strings.TrimSuffix(single, ext) + " " + stem + ext
}

// Manager provides output file operations
type Manager struct {
	logger *slog.Logger
}

// NewManager creates a new file manager instance
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{logger: logger}
}

// WriteAtomic writes path by streaming into a temporary file in the same
// directory and renaming it over path once write succeeds. A failed write
// leaves any existing file at path untouched.
func (m *Manager) WriteAtomic(path string, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.NewIOError("create directory", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return apperrors.NewIOError("create", path, err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if err := write(tmp); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return apperrors.NewIOError("close", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return apperrors.NewIOError("rename", path, err)
	}

	m.logger.Debug("File written", slog.String("path", path))
	return nil
}

// FileExists checks if a regular file exists at path
func (m *Manager) FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
