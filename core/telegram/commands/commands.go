// Package commands describes the slash commands a bot publishes.
package commands

// Command is the metadata of one slash command. Handlers live with the
// router that owns the command.
type Command struct {
	Description string
	AdminOnly   bool
	Hidden      bool
	Aliases     []string
}
