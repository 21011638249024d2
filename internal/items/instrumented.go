package items

import (
	"context"
	"errors"
	"time"

	"github.com/Aidin1998/crudgate/pkg/metrics"
)

// instrumented records prometheus metrics around every call of the wrapped store.
type instrumented struct {
	next Store
}

// Instrument wraps store so each operation is counted and timed.
func Instrument(store Store) Store {
	return &instrumented{next: store}
}

func observe(op string, start time.Time, err error) {
	outcome := metrics.OutcomeOK
	switch {
	case errors.Is(err, ErrNotFound):
		outcome = metrics.OutcomeNotFound
	case err != nil:
		outcome = metrics.OutcomeError
	}
	metrics.StoreOperations.WithLabelValues(op, outcome).Inc()
	metrics.StoreLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (s *instrumented) List(ctx context.Context) ([]Item, error) {
	start := time.Now()
	result, err := s.next.List(ctx)
	observe("list", start, err)
	return result, err
}

func (s *instrumented) Get(ctx context.Context, id string) (Item, error) {
	start := time.Now()
	item, err := s.next.Get(ctx, id)
	observe("get", start, err)
	return item, err
}

func (s *instrumented) Create(ctx context.Context, fields Item) (string, error) {
	start := time.Now()
	id, err := s.next.Create(ctx, fields)
	observe("create", start, err)
	return id, err
}

func (s *instrumented) Update(ctx context.Context, id string, fields Item) error {
	start := time.Now()
	err := s.next.Update(ctx, id, fields)
	observe("update", start, err)
	return err
}

func (s *instrumented) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := s.next.Delete(ctx, id)
	observe("delete", start, err)
	return err
}

func (s *instrumented) Ping(ctx context.Context) error {
	start := time.Now()
	err := s.next.Ping(ctx)
	observe("ping", start, err)
	return err
}

func (s *instrumented) Close(ctx context.Context) error {
	return s.next.Close(ctx)
}
