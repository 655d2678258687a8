// File: internal/monitoring/collector.go
package monitoring

import (
	"context"
	"time"

	"devconnector/internal/cache"
	"devconnector/internal/database"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// ===============================
// DASHBOARD COLLECTOR
// ===============================

// DBStatsSource exposes a point-in-time view of the connection pool
type DBStatsSource interface {
	Metrics() *database.MetricsSnapshot
	LastHealth() *database.HealthStatus
}

// CacheStatsSource exposes cache hit/miss counters
type CacheStatsSource interface {
	Stats(ctx context.Context) (*cache.CacheStats, error)
}

// Collector turns the database and cache snapshots into Prometheus metrics.
// It is scraped on demand, so nothing runs in the background.
type Collector struct {
	db          DBStatsSource
	cache       CacheStatsSource
	logger      *zap.Logger
	startTime   time.Time
	statTimeout time.Duration

	uptime        *prometheus.Desc
	buildInfo     *prometheus.Desc
	dbUp          *prometheus.Desc
	dbOpen        *prometheus.Desc
	dbInUse       *prometheus.Desc
	dbIdle        *prometheus.Desc
	dbSlowQueries *prometheus.Desc
	dbAvgQuery    *prometheus.Desc
	cacheHits     *prometheus.Desc
	cacheMisses   *prometheus.Desc
	cacheKeys     *prometheus.Desc
	cacheHitRatio *prometheus.Desc

	version string
}

// NewCollector creates a collector; either source may be nil
func NewCollector(db DBStatsSource, c CacheStatsSource, version string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{
		db:          db,
		cache:       c,
		logger:      logger,
		startTime:   time.Now(),
		statTimeout: 2 * time.Second,
		version:     version,

		uptime:        prometheus.NewDesc("devconnector_uptime_seconds", "Seconds since the server started", nil, nil),
		buildInfo:     prometheus.NewDesc("devconnector_build_info", "Build version of the running server", []string{"version"}, nil),
		dbUp:          prometheus.NewDesc("devconnector_db_up", "1 unless the last database health check was unhealthy", nil, nil),
		dbOpen:        prometheus.NewDesc("devconnector_db_open_connections", "Open database connections", nil, nil),
		dbInUse:       prometheus.NewDesc("devconnector_db_in_use_connections", "Database connections currently in use", nil, nil),
		dbIdle:        prometheus.NewDesc("devconnector_db_idle_connections", "Idle database connections", nil, nil),
		dbSlowQueries: prometheus.NewDesc("devconnector_db_slow_queries_total", "Queries slower than the configured threshold", nil, nil),
		dbAvgQuery:    prometheus.NewDesc("devconnector_db_avg_query_seconds", "Average query duration", nil, nil),
		cacheHits:     prometheus.NewDesc("devconnector_cache_hits_total", "Cache hits", []string{"provider"}, nil),
		cacheMisses:   prometheus.NewDesc("devconnector_cache_misses_total", "Cache misses", []string{"provider"}, nil),
		cacheKeys:     prometheus.NewDesc("devconnector_cache_keys", "Keys currently held by the cache", []string{"provider"}, nil),
		cacheHitRatio: prometheus.NewDesc("devconnector_cache_hit_ratio", "Cache hit ratio", []string{"provider"}, nil),
	}
}

// Describe implements prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.uptime
	ch <- c.buildInfo
	ch <- c.dbUp
	ch <- c.dbOpen
	ch <- c.dbInUse
	ch <- c.dbIdle
	ch <- c.dbSlowQueries
	ch <- c.dbAvgQuery
	ch <- c.cacheHits
	ch <- c.cacheMisses
	ch <- c.cacheKeys
	ch <- c.cacheHitRatio
}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.uptime, prometheus.GaugeValue, time.Since(c.startTime).Seconds())
	ch <- prometheus.MustNewConstMetric(c.buildInfo, prometheus.GaugeValue, 1, c.version)

	c.collectDatabase(ch)
	c.collectCache(ch)
}

func (c *Collector) collectDatabase(ch chan<- prometheus.Metric) {
	if c.db == nil {
		return
	}

	// Only reported once a health check has run
	if last := c.db.LastHealth(); last != nil {
		up := 1.0
		if last.Status == database.StatusUnhealthy {
			up = 0
		}
		ch <- prometheus.MustNewConstMetric(c.dbUp, prometheus.GaugeValue, up)
	}

	snap := c.db.Metrics()
	if snap == nil {
		return
	}

	ch <- prometheus.MustNewConstMetric(c.dbOpen, prometheus.GaugeValue, float64(snap.OpenConnections))
	ch <- prometheus.MustNewConstMetric(c.dbInUse, prometheus.GaugeValue, float64(snap.InUse))
	ch <- prometheus.MustNewConstMetric(c.dbIdle, prometheus.GaugeValue, float64(snap.Idle))
	ch <- prometheus.MustNewConstMetric(c.dbSlowQueries, prometheus.CounterValue, float64(snap.SlowQueryCount))
	ch <- prometheus.MustNewConstMetric(c.dbAvgQuery, prometheus.GaugeValue, snap.AvgQueryDuration.Seconds())
}

func (c *Collector) collectCache(ch chan<- prometheus.Metric) {
	if c.cache == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.statTimeout)
	defer cancel()

	stats, err := c.cache.Stats(ctx)
	if err != nil {
		// A scrape should not fail because redis is briefly unreachable
		c.logger.Debug("Cache stats unavailable", zap.Error(err))
		return
	}

	ch <- prometheus.MustNewConstMetric(c.cacheHits, prometheus.CounterValue, float64(stats.Hits), stats.Provider)
	ch <- prometheus.MustNewConstMetric(c.cacheMisses, prometheus.CounterValue, float64(stats.Misses), stats.Provider)
	ch <- prometheus.MustNewConstMetric(c.cacheKeys, prometheus.GaugeValue, float64(stats.Keys), stats.Provider)
	ch <- prometheus.MustNewConstMetric(c.cacheHitRatio, prometheus.GaugeValue, stats.HitRatio, stats.Provider)
}
