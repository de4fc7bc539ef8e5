// Package client implements the clearmob CLI operations against a running
// daemon: sending commands, printing status and following broadcasts.
package client
