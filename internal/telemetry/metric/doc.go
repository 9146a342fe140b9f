// Package metric provides Prometheus metrics for ledwall.
//
//   - prometheus.go: the registry, metric families and the HTTP handler
//   - collector.go: a collector that reports the current display mode
//
// Metrics are exposed at /metrics in Prometheus format.
package metric
