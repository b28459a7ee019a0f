// Package middleware provides HTTP middleware for the vbind live server.
//
// This package includes:
//   - OpenTelemetry tracing, one span per request named after the route
//   - Prometheus request metrics
//
// Both take chi route patterns into account, so /ws?session=... is
// reported as "/ws" rather than per session.
//
//	r := chi.NewRouter()
//	r.Use(middleware.OpenTelemetry(middleware.WithTracerName("my-app")))
//	r.Use(middleware.Prometheus(middleware.WithRegistry(reg)))
//
// # Prometheus Metrics
//
//   - vbind_http_requests_total: requests by method, route and status
//   - vbind_http_request_duration_seconds: request duration by method and route
//   - vbind_http_requests_in_flight: requests being served
//
// WebSocket upgrades are counted with status 101 when the request ends,
// which is when the connection closes.
package middleware
