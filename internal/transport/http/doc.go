// Package http contains the chi HTTP handlers for the marksight API.
//
// Handlers are thin: they parse and validate the request, call the
// results service, and render either JSON envelopes or RFC 7807
// problem responses through the shared error handler. Exports stream
// directly to the response body.
package http
