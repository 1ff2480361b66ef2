// Package metrics provides Prometheus metrics for the Poe client.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder holds the client's Prometheus metrics. A nil *Recorder is valid
// and records nothing, so the client works without any metrics wiring.
type Recorder struct {
	RequestsTotal    *prometheus.CounterVec
	PushFramesTotal  prometheus.Counter
	PushEventsTotal  *prometheus.CounterVec
	ReconnectsTotal  prometheus.Counter
	StreamItemsTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates and registers all metrics on a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()

	r := &Recorder{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "poe_requests_total",
				Help: "Signed operation calls by operation name and outcome.",
			},
			[]string{"operation", "status"},
		),
		PushFramesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "poe_push_frames_total",
			Help: "Inbound push frames read from the channel.",
		}),
		PushEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "poe_push_events_total",
				Help: "Dispatched push events by subscription name.",
			},
			[]string{"subscription"},
		),
		ReconnectsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "poe_channel_reconnects_total",
			Help: "Push channel reconnect attempts.",
		}),
		StreamItemsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "poe_stream_items_total",
				Help: "Stream items emitted by kind (chunk, full, error).",
			},
			[]string{"kind"},
		),
		registry: reg,
	}

	reg.MustRegister(r.RequestsTotal, r.PushFramesTotal, r.PushEventsTotal,
		r.ReconnectsTotal, r.StreamItemsTotal)
	return r
}

// Request records one executed operation call.
func (r *Recorder) Request(operation, status string) {
	if r == nil {
		return
	}
	r.RequestsTotal.WithLabelValues(operation, status).Inc()
}

// Frame records one inbound push frame.
func (r *Recorder) Frame() {
	if r == nil {
		return
	}
	r.PushFramesTotal.Inc()
}

// Events records dispatched events for a subscription.
func (r *Recorder) Events(subscription string, n int) {
	if r == nil {
		return
	}
	r.PushEventsTotal.WithLabelValues(subscription).Add(float64(n))
}

// Reconnect records one channel reconnect attempt.
func (r *Recorder) Reconnect() {
	if r == nil {
		return
	}
	r.ReconnectsTotal.Inc()
}

// StreamItem records one emitted stream item.
func (r *Recorder) StreamItem(kind string) {
	if r == nil {
		return
	}
	r.StreamItemsTotal.WithLabelValues(kind).Inc()
}

// Handler returns an HTTP handler exposing the registry.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
