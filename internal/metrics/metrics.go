// Package metrics exposes counters for the fail-soft paths of the pricing flow.
package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const namespace = "menupricing"

type Metrics struct {
	missingOption   *prometheus.CounterVec
	parentFallbacks prometheus.Counter
	recordsBuilt    *prometheus.CounterVec
	duplicatePushes prometheus.Counter
}

// New registers the collectors on reg. A nil reg uses a private registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		missingOption: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pricing",
				Name:      "missing_option_total",
				Help:      "Quotes computed without a pricing option for a category that requires one.",
			},
			[]string{"category"},
		),
		parentFallbacks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "popup",
				Name:      "parent_fallback_total",
				Help:      "Parent bundle fetches that failed and fell back to the original item.",
			},
		),
		recordsBuilt: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cart",
				Name:      "records_total",
				Help:      "Customization records handed off to the cart.",
			},
			[]string{"category"},
		),
		duplicatePushes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cart",
				Name:      "duplicate_pushes_total",
				Help:      "Hand-offs ignored because the popup session already pushed a record.",
			},
		),
	}

	reg.MustRegister(m.missingOption, m.parentFallbacks, m.recordsBuilt, m.duplicatePushes)
	return m
}

func (m *Metrics) MissingOption(category string) {
	if m == nil {
		return
	}
	m.missingOption.WithLabelValues(category).Inc()
}

func (m *Metrics) ParentFallback() {
	if m == nil {
		return
	}
	m.parentFallbacks.Inc()
}

func (m *Metrics) RecordBuilt(category string) {
	if m == nil {
		return
	}
	m.recordsBuilt.WithLabelValues(category).Inc()
}

func (m *Metrics) DuplicatePush() {
	if m == nil {
		return
	}
	m.duplicatePushes.Inc()
}

// WriteText writes everything g gathers in the Prometheus text exposition format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
