// Package entity defines the closed catalog of world entity kinds and the
// Entity value the clearing cycle operates on.
package entity
