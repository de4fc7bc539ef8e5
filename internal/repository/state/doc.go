// Package state implements persistence for the clearmob control State.
//
// The FileRepository stores and loads the enabled flag and the last actor as
// JSON on disk and exposes a Repository interface that the server depends on.
package state
