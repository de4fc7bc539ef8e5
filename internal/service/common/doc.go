// Package common contains helpers shared by the clearmob CLI commands:
// actor detection and a typed gRPC client for the daemon.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
