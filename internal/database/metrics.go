package database

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// poolAcquired tracks connections currently checked out of the pool.
	poolAcquired = promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "db_pool_acquired_connections",
		Help: "Catalog database connections currently in use",
	}, func() float64 { return float64(Stats().AcquiredConns) })

	// poolIdle tracks idle pooled connections.
	poolIdle = promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "db_pool_idle_connections",
		Help: "Idle catalog database connections",
	}, func() float64 { return float64(Stats().IdleConns) })

	// poolTotal tracks all pooled connections.
	poolTotal = promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "db_pool_total_connections",
		Help: "Total catalog database connections",
	}, func() float64 { return float64(Stats().TotalConns) })
)
