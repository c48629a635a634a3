// Package metrics keeps a small local time-series store for operational
// counters. It is not an external observability surface; the admin
// dashboard reads it back for simple charts.
package metrics

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/nakabonne/tstorage"
	"go.uber.org/zap"
)

const (
	MetricOrderPlaced     = "shop_order_placed"
	MetricOrderFailed     = "shop_order_failed"
	MetricSuggestRequest  = "shop_suggest_request"
	MetricSystemCPUUsage  = "system_cpu_usage"
	MetricSystemMemUsage  = "system_mem_usage"
	MetricProcessCPUUsage = "process_cpu_usage"
	MetricProcessMemUsage = "process_mem_usage"
)

var (
	storage tstorage.Storage
	mu      sync.Mutex
)

// InitMetrics opens the tstorage partition under the application workdir.
func InitMetrics(workdir string) error {
	mu.Lock()
	defer mu.Unlock()
	s, err := tstorage.NewStorage(
		tstorage.WithDataPath(filepath.Join(workdir, "data", "metrics")),
		tstorage.WithTimestampPrecision(tstorage.Seconds),
		tstorage.WithPartitionDuration(24*time.Hour),
		tstorage.WithRetention(30*24*time.Hour),
	)
	if err != nil {
		return err
	}
	storage = s
	return nil
}

// Counter records a +1 sample for the named metric.
func Counter(name string) {
	Gauge(name, 1)
}

// Gauge records a sample for the named metric. A nil storage (metrics
// disabled or init failed) is a no-op.
func Gauge(name string, value float64) {
	mu.Lock()
	s := storage
	mu.Unlock()
	if s == nil {
		return
	}
	err := s.InsertRows([]tstorage.Row{
		{
			Metric:    name,
			DataPoint: tstorage.DataPoint{Timestamp: time.Now().Unix(), Value: value},
		},
	})
	if err != nil {
		zap.S().Warnf("metrics insert %s: %s", name, err.Error())
	}
}

// Select returns data points for a metric within [start, end].
func Select(name string, start, end int64) ([]*tstorage.DataPoint, error) {
	mu.Lock()
	s := storage
	mu.Unlock()
	if s == nil {
		return nil, nil
	}
	points, err := s.Select(name, nil, start, end)
	if err == tstorage.ErrNoDataPoints {
		return nil, nil
	}
	return points, err
}

func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if storage == nil {
		return nil
	}
	err := storage.Close()
	storage = nil
	return err
}
