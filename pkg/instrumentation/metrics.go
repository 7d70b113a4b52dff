package instrumentation

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	NameSpace           = "modulemd"
	HttpStatusHistogram = "http_status_histogram"
	DocumentsParsed     = "documents_parsed_total"
	SubdocumentFailures = "subdocument_failures_total"
	ValidationRequests  = "validation_requests_total"
	CacheLookups        = "cache_lookups_total"
)

type Metrics struct {
	HttpStatusHistogram prometheus.HistogramVec

	// Custom metrics
	DocumentsParsed     prometheus.CounterVec
	SubdocumentFailures prometheus.CounterVec
	ValidationRequests  prometheus.CounterVec
	CacheLookups        prometheus.CounterVec

	reg *prometheus.Registry
}

// See: https://prometheus.io/docs/tutorials/understanding_metric_types/#types-of-metrics
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		panic("reg cannot be nil")
	}
	metrics := &Metrics{
		reg: reg,
		HttpStatusHistogram: *promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: NameSpace,
			Name:      HttpStatusHistogram,
			Help:      "Duration of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status", "method", "path"}),

		DocumentsParsed: *promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: NameSpace,
			Name:      DocumentsParsed,
			Help:      "Number of subdocuments parsed successfully",
		}, []string{"document", "version"}),
		SubdocumentFailures: *promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: NameSpace,
			Name:      SubdocumentFailures,
			Help:      "Number of subdocuments that failed to parse or validate",
		}, []string{"document"}),
		ValidationRequests: *promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: NameSpace,
			Name:      ValidationRequests,
			Help:      "Result of validation requests",
		}, []string{"state"}),
		CacheLookups: *promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: NameSpace,
			Name:      CacheLookups,
			Help:      "Validation cache lookups",
		}, []string{"result"}),
	}

	reg.MustRegister(collectors.NewBuildInfoCollector())

	return metrics
}

func (m *Metrics) RecordDocument(docType string, version uint64) {
	if m != nil {
		m.DocumentsParsed.With(prometheus.Labels{"document": docType, "version": strconv.FormatUint(version, 10)}).Inc()
	}
}

func (m *Metrics) RecordSubdocumentFailure(docType string) {
	if docType == "" {
		docType = "unknown"
	}
	if m != nil {
		m.SubdocumentFailures.With(prometheus.Labels{"document": docType}).Inc()
	}
}

func (m *Metrics) RecordValidation(valid bool) {
	state := "invalid"
	if valid {
		state = "valid"
	}
	if m != nil {
		m.ValidationRequests.With(prometheus.Labels{"state": state}).Inc()
	}
}

func (m *Metrics) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	if m != nil {
		m.CacheLookups.With(prometheus.Labels{"result": result}).Inc()
	}
}

func (m Metrics) Registry() *prometheus.Registry {
	return m.reg
}
