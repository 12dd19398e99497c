package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sstent/walktime-go/internal/models"
)

// ErrNoData is returned when there are no walks to export.
var ErrNoData = errors.New("no data to export yet")

var header = []string{"Date", "Time", "Route", "Distance (km)", "Duration (min)", "Speed (km/h)", "Terrain Factor"}

// WriteCSV writes the walks with every field quoted.
func WriteCSV(w io.Writer, walks []models.WalkRecord) error {
	bw := bufio.NewWriter(w)

	if err := writeRow(bw, header); err != nil {
		return err
	}
	for _, walk := range walks {
		if err := writeRow(bw, row(walk)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func row(walk models.WalkRecord) []string {
	return []string{
		walk.Date,
		walk.Time,
		walk.Route,
		strconv.FormatFloat(walk.Distance, 'f', 2, 64),
		strconv.FormatFloat(walk.Duration, 'f', 0, 64),
		strconv.FormatFloat(walk.Speed, 'f', 1, 64),
		strconv.FormatFloat(walk.Terrain, 'f', -1, 64),
	}
}

func writeRow(w *bufio.Writer, fields []string) error {
	for i, field := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(quote(field)); err != nil {
			return err
		}
	}
	return w.WriteByte('\n')
}

func quote(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// Filename is the download name for an export taken at t.
func Filename(t time.Time) string {
	return fmt.Sprintf("walking_data_%s.csv", t.Format("2006-01-02"))
}

// Snapshot writes the walks into dir and returns the file path. An existing
// snapshot for the same day is replaced.
func Snapshot(dir string, walks []models.WalkRecord, now time.Time) (string, error) {
	if len(walks) == 0 {
		return "", ErrNoData
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(dir, Filename(now))
	tmp, err := os.CreateTemp(dir, ".walking_data_*.csv")
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteCSV(tmp, walks); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to move export into place: %w", err)
	}

	return path, nil
}
