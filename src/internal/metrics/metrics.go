// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package metrics exposes guard decisions as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result labels of trust_guard_checks_total.
const (
	ResultSkipped  = "skipped"
	ResultAccepted = "accepted"
	ResultRejected = "rejected"
)

// Recorder records guard checks. A nil *Recorder records nothing.
type Recorder struct {
	checks     *prometheus.CounterVec
	rejections *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewRecorder registers the guard metrics on reg. A nil reg uses a fresh
// private registry, which keeps tests and embedded guards independent.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Recorder{
		checks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trust_guard_checks_total",
			Help: "Total number of client certificate checks by result",
		}, []string{"result"}), // result: skipped, accepted, rejected

		rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trust_guard_rejections_total",
			Help: "Total number of rejected connections by reason",
		}, []string{"reason"}),

		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trust_guard_check_duration_seconds",
			Help:    "Duration of client certificate checks, including trust material loading",
			Buckets: prometheus.DefBuckets,
		}, []string{"result"}),
	}
}

// Skipped records a check for an identifier with validation disabled.
func (r *Recorder) Skipped(elapsed time.Duration) { r.observe(ResultSkipped, elapsed) }

// Accepted records a check that established trust.
func (r *Recorder) Accepted(elapsed time.Duration) { r.observe(ResultAccepted, elapsed) }

// Rejected records a rejected connection and its reason.
func (r *Recorder) Rejected(reason string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.rejections.WithLabelValues(reason).Inc()
	r.observe(ResultRejected, elapsed)
}

func (r *Recorder) observe(result string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.checks.WithLabelValues(result).Inc()
	r.duration.WithLabelValues(result).Observe(elapsed.Seconds())
}
