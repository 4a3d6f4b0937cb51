// Package metrics exposes prometheus collectors for HTTP traffic, the file
// relay and the nightly purge tasks.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "open_data_api"

// Collector owns the registry and every metric the server records.
type Collector struct {
	registry *prometheus.Registry

	HTTP  *HTTP
	Relay *Relay
	Purge *Purge
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Collector{
		registry: reg,
		HTTP:     newHTTP(reg),
		Relay:    newRelay(reg),
		Purge:    newPurge(reg),
	}
}

// Handler serves the registry in the prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}

type HTTP struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newHTTP(reg prometheus.Registerer) *HTTP {
	h := &HTTP{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(h.requests, h.duration)
	return h
}

// Middleware records every request under its matched route pattern.
// Unmatched requests are grouped under "unmatched".
func (h *HTTP) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		h.requests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		h.duration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// Relay implements relay.Observer.
type Relay struct {
	joins     *prometheus.CounterVec
	forwarded *prometheus.CounterVec
	dropped   *prometheus.CounterVec
	rooms     prometheus.Gauge
}

func newRelay(reg prometheus.Registerer) *Relay {
	r := &Relay{
		joins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "joins_total",
			Help:      "Room joins by role.",
		}, []string{"role"}),
		forwarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "frames_forwarded_total",
			Help:      "Frames delivered to peers by outbound event.",
		}, []string{"event"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "frames_dropped_total",
			Help:      "Inbound frames that reached no peer.",
		}, []string{"event"}),
		rooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "rooms",
			Help:      "Rooms with at least one member.",
		}),
	}
	reg.MustRegister(r.joins, r.forwarded, r.dropped, r.rooms)
	return r
}

func (r *Relay) Joined(role string) { r.joins.WithLabelValues(role).Inc() }

func (r *Relay) Forwarded(event string, recipients int) {
	r.forwarded.WithLabelValues(event).Add(float64(recipients))
}

func (r *Relay) Dropped(event string) { r.dropped.WithLabelValues(event).Inc() }

func (r *Relay) RoomsChanged(n int) { r.rooms.Set(float64(n)) }

type Purge struct {
	runs    *prometheus.CounterVec
	deleted *prometheus.CounterVec
}

func newPurge(reg prometheus.Registerer) *Purge {
	p := &Purge{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "purge",
			Name:      "runs_total",
			Help:      "Purge runs by task and result.",
		}, []string{"task", "result"}),
		deleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "purge",
			Name:      "deleted_total",
			Help:      "Expired records deleted by task.",
		}, []string{"task"}),
	}
	reg.MustRegister(p.runs, p.deleted)
	return p
}

// Observer returns a callback recording runs of the named task.
func (p *Purge) Observer(task string) func(deleted int64, err error) {
	return func(deleted int64, err error) {
		if err != nil {
			p.runs.WithLabelValues(task, "error").Inc()
			return
		}
		p.runs.WithLabelValues(task, "ok").Inc()
		p.deleted.WithLabelValues(task).Add(float64(deleted))
	}
}
