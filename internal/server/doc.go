// Package server exposes the sequence engine over HTTP.
//
// Routes:
//
//	GET /fizzbuzz?start=1&end=15[&rules=3:Fizz,5:Buzz][&tokens=N]
//	GET /fizzbuzz?numbers=1,2,3[&rules=...][&tokens=N]
//	GET /health
//	GET /metrics
//
// Every response passes through [SecurityMiddleware] and is counted by the
// Prometheus collectors in [Metrics]. Input limits are configured through
// [SecurityConfig].
package server
