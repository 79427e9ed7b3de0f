package command

import (
	"context"
	"fmt"
	"sort"

	"spybot/internal/core/domain"

	"github.com/rs/zerolog/log"
)

// Handler executes a command for a user with the raw argument text.
type Handler func(ctx context.Context, user *domain.User, arg string) error

type Command struct {
	Name    string
	Help    *domain.Help
	Handler Handler
}

type HelpEntry struct {
	Name  string
	Short string
}

// Registry maps command names to handlers. It is filled once at startup and only read afterwards.
type Registry struct {
	commands map[string]*Command
}

// Register adds a command. An empty short help registers it without a help record,
// which keeps it out of the help listing.
func (r *Registry) Register(name, shortHelp string, handler Handler) {
	if r.commands == nil {
		r.commands = make(map[string]*Command)
	}

	cmd := &Command{Name: name, Handler: handler}
	if shortHelp != "" {
		cmd.Help = domain.NewHelp(shortHelp)
	}

	log.Debug().Str("handler", name).Msg("adding command handler to registry")
	r.commands[name] = cmd
}

// SetFullHelp replaces the detailed help of a registered command.
// It panics for names that were never registered with help.
func (r *Registry) SetFullHelp(name, text string) {
	cmd, ok := r.commands[name]
	if !ok {
		panic(fmt.Sprintf("help text for unregistered command %q", name))
	}

	if cmd.Help == nil {
		panic(fmt.Sprintf("help text for command %q registered without help", name))
	}

	cmd.Help.Full = text
}

func (r *Registry) Lookup(name string) (*Command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

// List returns the commands that carry help, sorted by name.
func (r *Registry) List() []HelpEntry {
	entries := make([]HelpEntry, 0, len(r.commands))
	for name, cmd := range r.commands {
		if cmd.Help == nil {
			continue
		}
		entries = append(entries, HelpEntry{Name: name, Short: cmd.Help.Short})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})

	return entries
}

func (r *Registry) ListCommands() []string {
	keys := make([]string, 0, len(r.commands))
	for k := range r.commands {
		keys = append(keys, k)
	}

	sort.Strings(keys)
	return keys
}
