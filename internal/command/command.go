// Package command interprets the argument line a tiler process is started
// with, either directly or forwarded from a later launch.
package command

import (
	"strings"
)

// Command is a startup action.
type Command int

const (
	// Show brings the application to the user's attention.
	Show Command = iota
	// Tile runs a tile pass over every active rule.
	Tile
)

func (c Command) String() string {
	switch c {
	case Tile:
		return "tile"
	default:
		return "show"
	}
}

// Parse maps an argument line to a command. A "--tile" or "tile" token
// anywhere on the line selects Tile; everything else, including an empty
// line, is Show.
func Parse(line string) Command {
	for _, tok := range strings.Fields(line) {
		switch strings.ToLower(tok) {
		case "--tile", "tile":
			return Tile
		}
	}
	return Show
}

// Join renders arguments as the line that Parse and the instance channel
// carry.
func Join(args []string) string {
	return strings.Join(args, " ")
}

// Handler performs commands.
type Handler interface {
	Show()
	TileAll() int
}

// Dispatch parses line and runs the matching handler method. It must be
// called on the goroutine that owns the handler's state.
func Dispatch(h Handler, line string) Command {
	cmd := Parse(line)
	switch cmd {
	case Tile:
		h.TileAll()
	default:
		h.Show()
	}
	return cmd
}
