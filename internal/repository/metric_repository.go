package repository

import (
	"database/sql"
	"log/slog"
)

// MetricRepository records vendor call telemetry. Recording is best-effort:
// a storage failure is logged and never surfaces to the caller.
type MetricRepository struct {
	db *sql.DB
}

func NewMetricRepository(db *sql.DB) *MetricRepository {
	return &MetricRepository{db: db}
}

func (r *MetricRepository) RecordVendorEvent(provider, event string, ok bool, latencyMs int64) {
	_, err := r.db.Exec(`
		INSERT INTO vendor_event(provider, event, ok, latency_ms)
		VALUES($1, $2, $3, $4)
	`, provider, event, ok, latencyMs)

	if err != nil {
		slog.Error("error recording vendor event", "provider", provider, "event", event, "error", err)
	}
}
