// Package control contains the command-side domain of clearmob.
//
// It defines Actor (who issued a command), State (whether clearing is enabled
// and who last changed it), Status (State plus cycle progress) and the sentinel
// errors shared by the command surface and its transport.
package control
