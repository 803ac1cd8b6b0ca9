package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequestsTotal  *prometheus.CounterVec
	httpLatencySeconds *prometheus.HistogramVec
	httpErrorsTotal    *prometheus.CounterVec

	resolverInvalidDates     *prometheus.CounterVec
	resolverDuplicates       prometheus.Counter
	resolverHiddenDocuments  prometheus.Counter
	resolverRejectedDocs     *prometheus.CounterVec
	resolverPassSeconds      prometheus.Histogram
	dashboardCacheTotal      *prometheus.CounterVec
	dashboardSectionFailures *prometheus.CounterVec

	uploadRequestsTotal  *prometheus.CounterVec
	uploadRejectedTotal  *prometheus.CounterVec
	uploadLatencySeconds prometheus.Histogram

	liveSubscribers  prometheus.Gauge
	liveEventsTotal  *prometheus.CounterVec
	chatMessageTotal *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lynx_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lynx_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lynx_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		resolverInvalidDates = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lynx_resolver_invalid_dates_total",
			Help: "Stored date values that could not be parsed and were treated as absent.",
		}, []string{"field"})

		resolverDuplicates = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lynx_resolver_duplicate_submissions_total",
			Help: "Submission records dropped because another record for the same assignment won.",
		})

		resolverHiddenDocuments = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lynx_resolver_hidden_assignments_total",
			Help: "Assignment definitions skipped because they are not published.",
		})

		resolverRejectedDocs = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lynx_resolver_rejected_documents_total",
			Help: "Raw assignment documents rejected at the store boundary.",
		}, []string{"source"})

		resolverPassSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lynx_resolver_pass_duration_seconds",
			Help:    "Duration of a full resolution pass including store reads.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		})

		dashboardCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lynx_dashboard_cache_total",
			Help: "Dashboard cache lookups by result.",
		}, []string{"result"})

		dashboardSectionFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lynx_dashboard_section_failures_total",
			Help: "Dashboard sections that degraded to empty because a read failed.",
		}, []string{"section"})

		uploadRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lynx_upload_requests_total",
			Help: "Successful submission uploads by detected type.",
		}, []string{"type"})

		uploadRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lynx_upload_rejected_total",
			Help: "Rejected submission uploads by reason.",
		}, []string{"reason"})

		uploadLatencySeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lynx_upload_latency_seconds",
			Help:    "Latency of submission uploads.",
			Buckets: prometheus.DefBuckets,
		})

		liveSubscribers = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lynx_live_subscribers",
			Help: "Active live board subscribers on this node.",
		})

		liveEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lynx_live_events_total",
			Help: "Submission change events handled by origin.",
		}, []string{"origin"})

		chatMessageTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lynx_chat_messages_total",
			Help: "Chat messages relayed to the AI backend by outcome.",
		}, []string{"outcome"})

		prometheus.MustRegister(
			httpRequestsTotal, httpLatencySeconds, httpErrorsTotal,
			resolverInvalidDates, resolverDuplicates, resolverHiddenDocuments, resolverRejectedDocs, resolverPassSeconds,
			dashboardCacheTotal, dashboardSectionFailures,
			uploadRequestsTotal, uploadRejectedTotal, uploadLatencySeconds,
			liveSubscribers, liveEventsTotal, chatMessageTotal,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// ResolverInvalidDates counts unparseable stored dates by field.
func ResolverInvalidDates() *prometheus.CounterVec {
	RegisterMetrics()
	return resolverInvalidDates
}

// ResolverDuplicateSubmissions counts submissions that lost the duplicate tie-break.
func ResolverDuplicateSubmissions() prometheus.Counter {
	RegisterMetrics()
	return resolverDuplicates
}

// ResolverHiddenAssignments counts unpublished definitions skipped during a pass.
func ResolverHiddenAssignments() prometheus.Counter {
	RegisterMetrics()
	return resolverHiddenDocuments
}

// ResolverRejectedDocuments counts raw documents failing schema validation.
func ResolverRejectedDocuments() *prometheus.CounterVec {
	RegisterMetrics()
	return resolverRejectedDocs
}

// ResolverPassDuration observes full pass latency.
func ResolverPassDuration() prometheus.Histogram {
	RegisterMetrics()
	return resolverPassSeconds
}

// DashboardCache counts cache hits and misses.
func DashboardCache() *prometheus.CounterVec {
	RegisterMetrics()
	return dashboardCacheTotal
}

// DashboardSectionFailures counts degraded dashboard sections.
func DashboardSectionFailures() *prometheus.CounterVec {
	RegisterMetrics()
	return dashboardSectionFailures
}

// UploadRequests counts accepted uploads.
func UploadRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRequestsTotal
}

// UploadRejected counts rejected uploads.
func UploadRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRejectedTotal
}

// UploadLatency observes upload latency.
func UploadLatency() prometheus.Histogram {
	RegisterMetrics()
	return uploadLatencySeconds
}

// LiveSubscribers tracks open live board streams.
func LiveSubscribers() prometheus.Gauge {
	RegisterMetrics()
	return liveSubscribers
}

// LiveEvents counts submission change events.
func LiveEvents() *prometheus.CounterVec {
	RegisterMetrics()
	return liveEventsTotal
}

// ChatMessages counts relayed chat messages.
func ChatMessages() *prometheus.CounterVec {
	RegisterMetrics()
	return chatMessageTotal
}
