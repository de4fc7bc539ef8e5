// Package world implements the entity source the clearing cycle sweeps.
//
// Source is the read/remove view of a world. Memory keeps entities in process
// and SQLite keeps them in a modernc.org/sqlite database shared with the host.
package world
