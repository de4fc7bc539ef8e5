package server

import "strings"

// Command is a subcommand of the clearmob command surface.
type Command int

// Known commands. CommandUnknown covers empty and unrecognized input.
const (
	CommandUnknown Command = iota
	CommandEnable
	CommandDisable
	CommandReload
)

// ParseCommand maps a subcommand name to a Command, ignoring case.
func ParseCommand(name string) Command {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "enable":
		return CommandEnable
	case "disable":
		return CommandDisable
	case "reload":
		return CommandReload
	default:
		return CommandUnknown
	}
}

// String returns the subcommand name.
func (c Command) String() string {
	switch c {
	case CommandEnable:
		return "enable"
	case CommandDisable:
		return "disable"
	case CommandReload:
		return "reload"
	case CommandUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}
