// Package internal documents the event registration server internals.
//
// The internal tree is organized by responsibility:
// - api: HTTP handlers, middleware, problem responses, and routing
// - domain: account and event flows plus their models
// - storage: the in-memory store holding users, events and registrations
// - email: notification rendering and delivery transports
// - auth, audit, config, metrics, telemetry, validation: shared infrastructure
//
// Code in internal/ is not meant for external import.
package internal
