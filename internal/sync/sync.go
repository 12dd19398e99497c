// Package sync imports recorded GPX/FIT traces as walks.
package sync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sstent/walktime-go/internal/database"
	"github.com/sstent/walktime-go/internal/estimator"
	"github.com/sstent/walktime-go/internal/logger"
	"github.com/sstent/walktime-go/internal/models"
	"github.com/sstent/walktime-go/internal/parser"
)

// Ledger statuses.
const (
	StatusRecorded  = "recorded"
	StatusDiscarded = "discarded"
	StatusFailed    = "failed"
)

// Importer turns a parsed trace into a walk.
type Importer interface {
	ImportTrace(ctx context.Context, name string, positions []models.Position) (estimator.WalkResult, error)
}

// Ledger remembers which inbox files were already processed.
type Ledger interface {
	IsImported(path string) (bool, error)
	MarkImported(f database.ImportedFile) error
	ImportedFiles() ([]database.ImportedFile, error)
}

type ImportService struct {
	importer Importer
	ledger   Ledger
	dir      string
	log      logger.Logger
	now      func() time.Time
}

// ScanResult counts what one inbox scan did.
type ScanResult struct {
	Recorded  int `json:"recorded"`
	Discarded int `json:"discarded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

func NewImportService(importer Importer, ledger Ledger, dir string, log logger.Logger) *ImportService {
	return &ImportService{
		importer: importer,
		ledger:   ledger,
		dir:      dir,
		log:      log,
		now:      time.Now,
	}
}

// Scan imports every new file in the inbox. A failing file is recorded in
// the ledger and logged; it does not stop the scan.
func (s *ImportService) Scan(ctx context.Context) (ScanResult, error) {
	var result ScanResult
	ctx = logger.WithAction(ctx, "import_scan")

	startTime := time.Now()
	defer func() {
		s.log.Info(ctx, "import scan finished",
			"recorded", result.Recorded, "discarded", result.Discarded,
			"failed", result.Failed, "skipped", result.Skipped, "duration", time.Since(startTime).String())
	}()

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return result, fmt.Errorf("failed to create import directory: %w", err)
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return result, fmt.Errorf("failed to list import directory: %w", err)
	}

	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		done, err := s.ledger.IsImported(name)
		if err != nil {
			return result, fmt.Errorf("failed to check import ledger: %w", err)
		}
		if done {
			result.Skipped++
			continue
		}

		status, walkID := s.importFile(ctx, name)
		switch status {
		case StatusRecorded:
			result.Recorded++
		case StatusDiscarded:
			result.Discarded++
		default:
			result.Failed++
		}

		if err := s.ledger.MarkImported(database.ImportedFile{
			Path:       name,
			WalkID:     walkID,
			Status:     status,
			ImportedAt: s.now(),
		}); err != nil {
			return result, fmt.Errorf("failed to update import ledger: %w", err)
		}
	}

	return result, nil
}

func (s *ImportService) importFile(ctx context.Context, name string) (string, int64) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		s.log.Error(ctx, "failed to read trace file", err, "file", name)
		return StatusFailed, 0
	}

	walk, err := s.ImportData(ctx, name, data)
	switch {
	case walk.Recorded:
		if err != nil {
			// the walk is kept in memory; retrying would duplicate it
			s.log.Error(ctx, "imported walk could not be saved", err, "file", name)
		}
		return StatusRecorded, walk.Walk.ID
	case err != nil:
		s.log.Error(ctx, "failed to import trace", err, "file", name)
		return StatusFailed, 0
	default:
		return StatusDiscarded, 0
	}
}

// Processed lists every inbox file already handled, oldest first.
func (s *ImportService) Processed() ([]database.ImportedFile, error) {
	files, err := s.ledger.ImportedFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to read import ledger: %w", err)
	}
	if files == nil {
		files = []database.ImportedFile{}
	}
	return files, nil
}

// ImportData parses a single trace and hands it to the importer.
func (s *ImportService) ImportData(ctx context.Context, name string, data []byte) (estimator.WalkResult, error) {
	positions, fileType, err := parser.ParseFile(name, data)
	if err != nil {
		return estimator.WalkResult{}, fmt.Errorf("%s: %w", name, err)
	}

	s.log.Debug(ctx, "trace parsed", "file", name, "type", string(fileType), "positions", len(positions))
	return s.importer.ImportTrace(ctx, name, positions)
}
