/*
Copyright 2025 The llm-d Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package metrics exposes Prometheus counters for toolkit activity.
//
// Callers construct a Metrics value against their own Registerer; every
// recording method is nil-safe so components can treat metrics as optional.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for the callback counter.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Metrics holds the toolkit's Prometheus collectors.
type Metrics struct {
	callbacksApplied *prometheus.CounterVec
	parametersFrozen prometheus.Counter
	fixtureSamples   *prometheus.CounterVec
}

// New creates and registers the toolkit collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		callbacksApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "resumption_callbacks_applied_total",
			Help: "Run-start callback invocations by callback name and outcome.",
		}, []string{"callback", "outcome"}),
		parametersFrozen: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "resumption_parameters_frozen_total",
			Help: "Model parameters newly frozen by the layer freezer.",
		}),
		fixtureSamples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "resumption_fixture_samples_written_total",
			Help: "Fixture dataset samples written by dataset format.",
		}, []string{"format"}),
	}
	reg.MustRegister(m.callbacksApplied, m.parametersFrozen, m.fixtureSamples)
	return m
}

// RecordCallback counts one callback invocation with the given outcome.
func (m *Metrics) RecordCallback(name, outcome string) {
	if m == nil {
		return
	}
	m.callbacksApplied.WithLabelValues(name, outcome).Inc()
}

// RecordFrozen counts n newly frozen parameters.
func (m *Metrics) RecordFrozen(n int) {
	if m == nil {
		return
	}
	m.parametersFrozen.Add(float64(n))
}

// RecordFixtureSamples counts n written fixture samples for a format.
func (m *Metrics) RecordFixtureSamples(format string, n int) {
	if m == nil {
		return
	}
	m.fixtureSamples.WithLabelValues(format).Add(float64(n))
}
