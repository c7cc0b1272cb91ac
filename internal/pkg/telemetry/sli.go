package telemetry

// SLI metric names used for instrumentation dashboards.
const (
	// Latency
	MetricAPILatencyP50 = "api.latency.p50"
	MetricAPILatencyP95 = "api.latency.p95"
	MetricAPILatencyP99 = "api.latency.p99"

	// Throughput
	MetricRequestsPerSec = "api.requests_per_second"

	// Data freshness
	MetricCatalogFreshness = "catalog.data_age_seconds"
	MetricDigestFreshness  = "sun.digest_age_seconds"

	// Availability
	MetricUptime = "service.uptime_percentage"

	// Business
	MetricTerrainRenders   = "sun.terrain_renders"
	MetricExposureRequests = "sun.exposure_requests"
)
