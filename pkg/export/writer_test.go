package export

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-coursesim/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-coursesim/pkg/models"
)

type fakeWriter struct {
	name  string
	err   error
	calls atomic.Int32
}

func (w *fakeWriter) Name() string { return w.name }

func (w *fakeWriter) Write(ctx context.Context, ds *models.Dataset) error {
	w.calls.Add(1)
	return w.err
}

func TestDispatcher_WritesEverySink(t *testing.T) {
	csv := &fakeWriter{name: "csv"}
	redis := &fakeWriter{name: "redis"}
	d := NewDispatcher(zap.NewNop(), csv, redis)

	err := d.Write(context.Background(), &models.Dataset{Students: []models.Student{{ID: "STU-0001"}}})

	assert.NoError(t, err)
	assert.Equal(t, []string{"csv", "redis"}, d.Sinks())
	assert.Equal(t, int32(1), csv.calls.Load())
	assert.Equal(t, int32(1), redis.calls.Load())
}

func TestDispatcher_ReturnsSinkError(t *testing.T) {
	boom := errors.New("disk full")
	ok := &fakeWriter{name: "xlsx"}
	failing := &fakeWriter{name: "csv", err: boom}
	d := NewDispatcher(zap.NewNop(), ok, failing)

	err := d.Write(context.Background(), &models.Dataset{Students: []models.Student{{ID: "STU-0001"}}})

	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "csv sink")
}

func TestDispatcher_RejectsEmptyDataset(t *testing.T) {
	w := &fakeWriter{name: "csv"}
	d := NewDispatcher(zap.NewNop(), w)

	assert.ErrorIs(t, d.Write(context.Background(), nil), apperrors.ErrEmptyDataset)
	assert.ErrorIs(t, d.Write(context.Background(), &models.Dataset{}), apperrors.ErrEmptyDataset)
	assert.Zero(t, w.calls.Load())
}
