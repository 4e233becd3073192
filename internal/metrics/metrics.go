package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"daily-tasks/internal/model"
	"daily-tasks/internal/store"
)

// Collector exposes planner activity as Prometheus metrics.
type Collector struct {
	resetsTotal      prometheus.Counter
	instancesTotal   prometheus.Counter
	lastResetTime    prometheus.Gauge
	failuresTotal    *prometheus.CounterVec
	tasksByStatus    *prometheus.GaugeVec
	transitionsTotal *prometheus.CounterVec

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		resetsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "daily_tasks_resets_total",
			Help: "Total number of completed daily resets",
		}),
		instancesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "daily_tasks_recurring_instances_total",
			Help: "Total number of recurring instances materialized by resets",
		}),
		lastResetTime: factory.NewGauge(prometheus.GaugeOpts{
			Name: "daily_tasks_last_reset_timestamp_seconds",
			Help: "Unix time of the last completed daily reset",
		}),
		failuresTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "daily_tasks_operation_failures_total",
			Help: "Total number of failed planner operations",
		}, []string{"operation", "kind"}), // kind: transport, persistence, not_found, other
		tasksByStatus: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "daily_tasks_tasks",
			Help: "Current number of tasks per derived status",
		}, []string{"status"}),
		transitionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "daily_tasks_status_transitions_total",
			Help: "Total number of observed task status changes",
		}, []string{"to"}),
		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method", "path"}),
	}
}

func (c *Collector) ResetPerformed(_ string, instances int) {
	c.resetsTotal.Inc()
	c.instancesTotal.Add(float64(instances))
	c.lastResetTime.Set(float64(time.Now().Unix()))
}

func (c *Collector) OperationFailed(op string, err error) {
	c.failuresTotal.WithLabelValues(op, kindOf(err)).Inc()
}

// ObserveStatuses replaces the per-status task gauges.
func (c *Collector) ObserveStatuses(counts map[model.Status]int) {
	for status, n := range counts {
		c.tasksByStatus.WithLabelValues(string(status)).Set(float64(n))
	}
}

func (c *Collector) StatusChanged(to model.Status) {
	c.transitionsTotal.WithLabelValues(string(to)).Inc()
}

func kindOf(err error) string {
	switch {
	case errors.Is(err, store.ErrTransport):
		return "transport"
	case errors.Is(err, store.ErrPersistence):
		return "persistence"
	case errors.Is(err, store.ErrNotFound):
		return "not_found"
	default:
		return "other"
	}
}

// Middleware records request counts and latency per route.
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		path := ctx.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := ctx.Request.Method
		c.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(ctx.Writer.Status())).Inc()
		c.httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
