// Package clearing holds the pure state of the clearing cycle: the immutable
// Snapshot of clear rules built from configuration and the Clock that tracks
// elapsed time and staged warnings within a cycle.
//
// Neither type is safe for concurrent use; the scheduler owns and serializes them.
package clearing
