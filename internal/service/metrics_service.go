package service

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService instruments core operations on a private Prometheus
// registry. The module has no HTTP surface of its own; embedding hosts
// mount Handler wherever they expose metrics.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	studentMutations *prometheus.CounterVec
	attendanceMarks  prometheus.Counter
	reportDuration   prometheus.Histogram
	reportsTotal     prometheus.Counter
	exportsTotal     *prometheus.CounterVec
}

// NewMetricsService registers the core collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	studentMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "directory_mutations_total",
		Help: "Total student directory mutations by operation",
	}, []string{"op"})

	attendanceMarks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "attendance_marks_total",
		Help: "Total attendance status upserts",
	})

	reportDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "report_compute_seconds",
		Help:    "Duration of report aggregation",
		Buckets: prometheus.DefBuckets,
	})

	reportsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reports_computed_total",
		Help: "Total reports computed",
	})

	exportsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "report_exports_total",
		Help: "Total report file exports by format",
	}, []string{"format"})

	registry.MustRegister(studentMutations, attendanceMarks, reportDuration, reportsTotal, exportsTotal)

	return &MetricsService{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		studentMutations: studentMutations,
		attendanceMarks:  attendanceMarks,
		reportDuration:   reportDuration,
		reportsTotal:     reportsTotal,
		exportsTotal:     exportsTotal,
	}
}

// Handler exposes the registry for an embedding host.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return m.handler
}

// RecordStudentMutation counts a directory add/edit/delete.
func (m *MetricsService) RecordStudentMutation(op string) {
	if m == nil {
		return
	}
	m.studentMutations.WithLabelValues(op).Inc()
}

// RecordMarks counts attendance upserts.
func (m *MetricsService) RecordMarks(n int) {
	if m == nil {
		return
	}
	m.attendanceMarks.Add(float64(n))
}

// RecordReport observes one report computation.
func (m *MetricsService) RecordReport(d time.Duration) {
	if m == nil {
		return
	}
	m.reportsTotal.Inc()
	m.reportDuration.Observe(d.Seconds())
}

// RecordExport counts a rendered report file.
func (m *MetricsService) RecordExport(format string) {
	if m == nil {
		return
	}
	m.exportsTotal.WithLabelValues(format).Inc()
}
