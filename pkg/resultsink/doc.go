// Package resultsink exports a finished simulation run's roll-ups to
// durable storage: construct against a connection string or client,
// expose a narrow method set, and leave wiring to the caller. An S3
// object-store backend and a Postgres backend both implement ResultSink.
package resultsink
