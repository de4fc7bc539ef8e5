// Package config defines the clearmob settings file and provides helpers to
// load, validate and save it in YAML format.
//
// Besides transport settings (server address, timeouts, state file) the file
// carries the clear rules under the keys clear-interval, entities,
// warning-interval-1, warning-interval-2 and warnings.*.
package config
