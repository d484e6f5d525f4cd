// Package api hosts the read-only HTTP server for map frontends and
// operator access. Notable routes:
//   - GET /healthz and /readyz for probes (readyz pings the database).
//   - GET /metrics for Prometheus scraping.
//   - GET /v1/candidates and /v1/candidates/{id} for scored sites.
//   - GET /v1/counties, /v1/zips/{zip}, /v1/signals, /v1/permits for the
//     demand-signal layers.
//   - GET /v1/runs for the loader run ledger.
//
// CORS is fully open and there is no auth: the API serves public-record
// aggregates to internal tooling.
package api
