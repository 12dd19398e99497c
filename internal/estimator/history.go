package estimator

import (
	"context"
	"io"

	"github.com/sstent/walktime-go/internal/export"
	"github.com/sstent/walktime-go/internal/models"
	"github.com/sstent/walktime-go/internal/speed"
)

// Walks returns up to limit walks, newest first. limit <= 0 returns all.
func (e *Estimator) Walks(limit int) []models.WalkRecord {
	history := e.profile.History()

	n := len(history)
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]models.WalkRecord, 0, n)
	for i := len(history) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, history[i])
	}
	return out
}

func (e *Estimator) Stats() speed.Stats {
	return speed.Summarize(e.profile.History())
}

// ClearWalks drops the whole history.
func (e *Estimator) ClearWalks(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.profile.Clear(ctx); err != nil {
		return err
	}
	e.log.Info(ctx, "walk history cleared")
	return nil
}

// ExportCSV writes the history, oldest first. An empty history is refused
// with export.ErrNoData before anything is written.
func (e *Estimator) ExportCSV(w io.Writer) error {
	history := e.profile.History()
	if len(history) == 0 {
		return export.ErrNoData
	}
	return export.WriteCSV(w, history)
}

// Snapshot writes a dated CSV export into dir.
func (e *Estimator) Snapshot(ctx context.Context, dir string) (string, error) {
	path, err := export.Snapshot(dir, e.profile.History(), e.now())
	if err != nil {
		return "", err
	}
	e.log.Info(ctx, "history snapshot written", "path", path)
	return path, nil
}
