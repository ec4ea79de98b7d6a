package mainboilerplate

import (
	"strings"

	"github.com/jessevdk/go-flags"
)

// AddCommandFunc adds a sub-command to a parent flags.Command.
type AddCommandFunc func(*flags.Command) error

// CommandRegistry collects sub-commands by the dotted path of their parent
// command, so that a tree of commands (eg "catalog" and "catalog.list") may
// be declared in any order and attached to a parser in one pass.
type CommandRegistry map[string][]AddCommandFunc

// NewCommandRegistry returns an empty CommandRegistry.
func NewCommandRegistry() CommandRegistry {
	return make(CommandRegistry)
}

// AddCommand registers a |command| beneath the command at dotted |parentPath|
// ("" is the root). Arguments parallel flags.Command.AddCommand.
func (cr CommandRegistry) AddCommand(parentPath, command, short, long string, data interface{}) {
	cr[parentPath] = append(cr[parentPath], func(cmd *flags.Command) error {
		_, err := cmd.AddCommand(command, short, long, data)
		return err
	})
}

// AddCommands attaches commands registered under |path| to |cmd|. If
// |recursive|, commands registered beneath each attached command are then
// attached in turn.
func (cr CommandRegistry) AddCommands(path string, cmd *flags.Command, recursive bool) error {
	for _, fn := range cr[path] {
		if err := fn(cmd); err != nil {
			return err
		}
	}
	if !recursive {
		return nil
	}
	for _, sub := range cmd.Commands() {
		if err := cr.AddCommands(strings.TrimPrefix(path+"."+sub.Name, "."), sub, true); err != nil {
			return err
		}
	}
	return nil
}
