// Package hybrid implements the adaptive ingester: it runs as a classic
// LSM engine while it gathers enough arrival-delay and merge-fanin
// samples, then estimates a sequential-buffer size from those samples
// and switches permanently to a tLSM-shaped write path.
package hybrid
