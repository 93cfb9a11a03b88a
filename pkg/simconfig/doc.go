// Package simconfig loads and validates the YAML-configurable options for
// the LSM, tLSM, and Hybrid engines: struct tags plus a shared
// validator.Validate instance, with errors reformatted into one message
// per offending field.
package simconfig
