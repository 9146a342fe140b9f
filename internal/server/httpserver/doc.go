// Package httpserver provides the HTTP/HTTPS server for ledwall.
//
// This package implements the external API using stdlib net/http:
//
//   - Slot endpoints: /v1/slots, /v1/slots/{index}, export and import
//   - Display endpoints: /v1/mode, /v1/state, /v1/live, /v1/preview
//   - Health endpoints: /health, /ready, /ping/{id}, /metrics
//
// Features:
//
//   - Optional TLS
//   - Middleware chain: Recover, RequestID, Metrics, AccessLog, CORS, RateLimit
//   - Graceful shutdown with configurable timeout
//   - Prometheus metrics integration
package httpserver
