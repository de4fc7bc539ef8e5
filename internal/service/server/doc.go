// Package server runs the clearmob daemon: it loads the configuration, opens
// the entity source, drives the clearing scheduler and exposes the command
// surface over gRPC. Optional extras are a config file watcher and a
// Prometheus endpoint.
package server
