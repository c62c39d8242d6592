package db

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// RegisterMetrics exposes the connection pool statistics (open, idle, in-use,
// wait counts) on the given registerer under the "saree" db_name label.
func (db *DB) RegisterMetrics(reg prometheus.Registerer) error {
	return reg.Register(collectors.NewDBStatsCollector(db.DB, "saree"))
}
