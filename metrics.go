// Copyright 2023 The shapefile (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package shapefile

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts decoder outcomes across streams. A nil *Metrics is
// valid and records nothing. One Metrics may be shared by streams
// decoding different buffers concurrently.
type Metrics struct {
	recordsDecoded prometheus.Counter
	recordsSkipped *prometheus.CounterVec
	repairs        *prometheus.CounterVec
	streamsFailed  *prometheus.CounterVec
}

// NewMetrics creates the decoder metrics and registers them with reg.
// A nil reg creates unregistered metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		recordsDecoded: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "shapefile_records_decoded_total",
			Help: "Total number of shapefile records decoded successfully.",
		}),
		recordsSkipped: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "shapefile_records_skipped_total",
			Help: "Total number of shapefile records skipped, by error kind.",
		}, []string{"kind"}),
		repairs: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "shapefile_repairs_total",
			Help: "Total number of in-place repairs and advisory diagnostics, by kind.",
		}, []string{"kind"}),
		streamsFailed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "shapefile_streams_failed_total",
			Help: "Total number of decode streams ended by a fatal error, by error kind.",
		}, []string{"kind"}),
	}
}

func (m *Metrics) recordDecoded() {
	if m != nil {
		m.recordsDecoded.Inc()
	}
}

func (m *Metrics) recordSkipped(k ErrorKind) {
	if m != nil {
		m.recordsSkipped.WithLabelValues(k.String()).Inc()
	}
}

func (m *Metrics) repaired(k DiagnosticKind) {
	if m != nil {
		m.repairs.WithLabelValues(k.String()).Inc()
	}
}

func (m *Metrics) streamFailed(k ErrorKind) {
	if m != nil {
		m.streamsFailed.WithLabelValues(k.String()).Inc()
	}
}
