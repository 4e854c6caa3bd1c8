package observability

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/eventops-backend/internal/pkg/logger"
)

// Metrics holds the service's Prometheus series. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge

	segmentEvals     *CounterVec
	segmentLatency   *HistogramVec
	segmentMatched   *HistogramVec
	predicateQueries *Counter
	predicateHits    *Counter
	universeLoads    *Counter
	rateLimited      *Counter

	dbStats *GaugeVec
	redisUp *Gauge
}

type Counter struct{ vec *CounterVec }

func NewCounter(name, help string) *Counter {
	return &Counter{vec: NewCounterVec(name, help, nil)}
}

func (c *Counter) Add(v float64) {
	if c == nil {
		return
	}
	c.vec.Add(v)
}

func (c *Counter) Value() float64 {
	if c == nil {
		return 0
	}
	return c.vec.Value()
}

func (c *Counter) WritePrometheus(w io.Writer) error {
	if c == nil {
		return nil
	}
	return c.vec.WritePrometheus(w)
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Init builds the process-wide metrics when enabled, else returns nil.
func Init(enabled bool) *Metrics {
	if !enabled {
		return nil
	}
	initOnce.Do(func() {
		instance = NewMetrics()
	})
	return instance
}

func NewMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("eo_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"eo_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		),
		apiInflight: NewGauge("eo_api_inflight_requests", "In-flight API requests."),

		segmentEvals: NewCounterVec("eo_segment_evaluations_total", "Segment evaluations by outcome.", []string{"outcome"}),
		segmentLatency: NewHistogramVec(
			"eo_segment_evaluation_duration_seconds",
			"Segment evaluation latency in seconds.",
			[]string{"outcome"},
			[]float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		),
		segmentMatched: NewHistogramVec(
			"eo_segment_matched_contacts",
			"Matched contacts per evaluation.",
			nil,
			[]float64{0, 10, 100, 1000, 10000, 100000},
		),
		predicateQueries: NewCounter("eo_segment_predicate_queries_total", "Involvement queries sent to the store."),
		predicateHits:    NewCounter("eo_segment_predicate_cache_hits_total", "Involvement lookups served from the per-request cache."),
		universeLoads:    NewCounter("eo_segment_universe_loads_total", "Evaluations that loaded the tenant contact universe."),
		rateLimited:      NewCounter("eo_rate_limited_total", "Requests rejected by the rate limiter."),

		dbStats: NewGaugeVec("eo_db_pool", "Database pool stats.", []string{"stat"}),
		redisUp: NewGauge("eo_redis_up", "1 when the last redis ping succeeded."),
	}
}

// SegmentObservation is one finished evaluation.
type SegmentObservation struct {
	Outcome          string
	Duration         time.Duration
	Matched          int
	PredicateQueries int
	CacheHits        int
	UniverseLoaded   bool
}

func (m *Metrics) ObserveSegment(o SegmentObservation) {
	if m == nil {
		return
	}
	outcome := o.Outcome
	if outcome == "" {
		outcome = "unknown"
	}
	m.segmentEvals.Inc(outcome)
	m.segmentLatency.Observe(o.Duration.Seconds(), outcome)
	if outcome != "ok" {
		return
	}
	m.segmentMatched.Observe(float64(o.Matched))
	m.predicateQueries.Add(float64(o.PredicateQueries))
	m.predicateHits.Add(float64(o.CacheHits))
	if o.UniverseLoaded {
		m.universeLoads.Add(1)
	}
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
}

func (m *Metrics) APIInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Add(1)
}

func (m *Metrics) APIInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Add(-1)
}

func (m *Metrics) IncRateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Add(1)
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, _ *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	writers := []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.segmentEvals, m.segmentLatency, m.segmentMatched,
		m.predicateQueries, m.predicateHits, m.universeLoads, m.rateLimited,
		m.dbStats, m.redisUp,
	}
	for _, wr := range writers {
		if err := wr.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

// StartDBCollector samples pool stats every interval until ctx is done.
func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB, interval time.Duration) {
	if m == nil || db == nil {
		return
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: db stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.dbStats.Set(float64(stats.OpenConnections), "open_connections")
				m.dbStats.Set(float64(stats.InUse), "in_use")
				m.dbStats.Set(float64(stats.Idle), "idle")
				m.dbStats.Set(float64(stats.WaitCount), "wait_count")
				m.dbStats.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
			}
		}
	}()
}

// StartRedisCollector pings rdb every interval until ctx is done.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb *redis.Client, interval time.Duration) {
	if m == nil || rdb == nil {
		return
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
			}
		}
	}()
}
