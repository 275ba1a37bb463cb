package export

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/amishk599/leadradar/internal/model"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ErrLocked is returned when another run holds the output directory lock.
var ErrLocked = errors.New("export directory is locked by another run")

const lockFile = ".leadradar.lock"

// FileExporter writes one timestamped file per run into dir.
type FileExporter struct {
	dir         string
	format      Format
	maxContacts int
	logger      *slog.Logger
}

// NewFileExporter returns an exporter writing format files into dir.
func NewFileExporter(dir string, format Format, maxContacts int, logger *slog.Logger) (*FileExporter, error) {
	switch format {
	case FormatCSV, FormatXLSX:
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
	return &FileExporter{dir: dir, format: format, maxContacts: maxContacts, logger: logger}, nil
}

// Filename returns the export file name for a run started at runAt.
func Filename(runAt time.Time, format Format) string {
	return fmt.Sprintf("leads_export_%s.%s", runAt.Format("20060102_1504"), format)
}

// Export writes leads and returns the file path. An empty slice produces a
// header-only file.
func (e *FileExporter) Export(leads []*model.Lead, runAt time.Time) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export dir: %w", err)
	}

	lock := flock.New(filepath.Join(e.dir, lockFile))
	locked, err := lock.TryLock()
	if err != nil {
		return "", fmt.Errorf("locking export dir: %w", err)
	}
	if !locked {
		return "", ErrLocked
	}
	defer lock.Unlock()

	path := filepath.Join(e.dir, Filename(runAt, e.format))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}

	if err := e.write(f, leads); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", path, err)
	}

	e.logger.Info("exported leads", "path", path, "rows", len(leads), "format", e.format)
	return path, nil
}

func (e *FileExporter) write(w io.Writer, leads []*model.Lead) error {
	if e.format == FormatXLSX {
		return WriteXLSX(w, leads, e.maxContacts)
	}
	return WriteCSV(w, leads, e.maxContacts)
}
