// Package runident identifies one simulation run: a random uuid.New()
// run ID, plus a content fingerprint of the engine configuration that
// produced it, so two runs of the same config can be recognized as
// comparable without re-parsing their YAML.
package runident
