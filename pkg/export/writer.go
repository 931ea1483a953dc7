package export

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ekaya-inc/ekaya-coursesim/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-coursesim/pkg/models"
)

// Writer persists a completed dataset to one sink.
type Writer interface {
	// Name identifies the sink in logs and the manifest (e.g. "csv").
	Name() string
	Write(ctx context.Context, ds *models.Dataset) error
}

// Dispatcher fans a dataset out to every configured sink concurrently.
// The dataset is immutable once generation finishes, so writers share it.
type Dispatcher struct {
	writers []Writer
	logger  *zap.Logger
}

// NewDispatcher creates a dispatcher for the given writers.
func NewDispatcher(logger *zap.Logger, writers ...Writer) *Dispatcher {
	return &Dispatcher{
		writers: writers,
		logger:  logger.Named("export"),
	}
}

// Sinks returns the names of the configured writers.
func (d *Dispatcher) Sinks() []string {
	names := make([]string, len(d.writers))
	for i, w := range d.writers {
		names[i] = w.Name()
	}
	return names
}

// Write runs every writer and returns the first failure.
func (d *Dispatcher) Write(ctx context.Context, ds *models.Dataset) error {
	if ds == nil || ds.IsEmpty() {
		return apperrors.ErrEmptyDataset
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, w := range d.writers {
		g.Go(func() error {
			start := time.Now()
			if err := w.Write(gctx, ds); err != nil {
				d.logger.Error("Sink write failed",
					zap.String("sink", w.Name()),
					zap.Error(err))
				return fmt.Errorf("%s sink: %w", w.Name(), err)
			}
			d.logger.Info("Sink written",
				zap.String("sink", w.Name()),
				zap.Duration("elapsed", time.Since(start)))
			return nil
		})
	}
	return g.Wait()
}
