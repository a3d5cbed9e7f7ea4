// Package api implements the HTTP/JSON client for the Audit Flow service.
//
// The client is a thin, context-aware wrapper over the service's REST
// endpoints. Non-2xx responses surface as *StatusError so callers can
// distinguish transport failures from decoded service state. Page records
// carry an open schema: unrecognized keys are preserved in Extra and
// round-trip through marshaling unchanged.
package api
