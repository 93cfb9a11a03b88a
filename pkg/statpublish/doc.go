// Package statpublish broadcasts per-cycle engine statistics to external
// aggregators, for a driver running several engine instances as separate
// processes and wanting a live combined view. The default Publisher is a
// newline-delimited JSON stream over plain TCP; a go.nanomsg.org/mangos/v3
// PUB-socket variant is available under the nng build tag for deployments
// that already standardize on nanomsg transports.
package statpublish
