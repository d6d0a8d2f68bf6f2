package storage

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	apperrors "github.com/Pritam-devloper/shophub/pkg/errors"
)

var (
	storeOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_operations_total",
			Help: "Total number of key-value store operations",
		},
		[]string{"operation", "key", "status"},
	)

	storeOpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storage_operation_duration_seconds",
			Help:    "Duration of key-value store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "key"},
	)
)

func init() {
	prometheus.MustRegister(storeOpsTotal)
	prometheus.MustRegister(storeOpDuration)
}

// InstrumentedStore wraps a Store and records operation counters and
// latencies. The persisted key names are low-cardinality, so they are safe
// to use as a metric label.
type InstrumentedStore struct {
	next Store
}

// NewInstrumentedStore wraps the given store with Prometheus instrumentation.
func NewInstrumentedStore(next Store) *InstrumentedStore {
	return &InstrumentedStore{next: next}
}

func (s *InstrumentedStore) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	data, err := s.next.Get(ctx, key)
	s.observe("get", key, start, err)
	return data, err
}

func (s *InstrumentedStore) Set(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	err := s.next.Set(ctx, key, value)
	s.observe("set", key, start, err)
	return err
}

func (s *InstrumentedStore) Remove(ctx context.Context, key string) error {
	start := time.Now()
	err := s.next.Remove(ctx, key)
	s.observe("remove", key, start, err)
	return err
}

func (s *InstrumentedStore) observe(op, key string, start time.Time, err error) {
	status := "ok"
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrNotFound):
		status = "not_found"
	default:
		status = "error"
	}
	storeOpsTotal.WithLabelValues(op, key, status).Inc()
	storeOpDuration.WithLabelValues(op, key).Observe(time.Since(start).Seconds())
}
