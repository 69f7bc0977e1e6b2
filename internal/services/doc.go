// Package services contains the business layer between the HTTP
// transport and the result engine. ResultsService owns the active
// dataset, its configuration, and the memoized pipeline output;
// HealthService reports readiness and dependency status.
//
// Services accept a context on every operation and return typed
// errors that the transport layer maps to RFC 7807 problems.
package services
