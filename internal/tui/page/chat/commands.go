package chat

import (
	"fmt"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/guilhermegouw/archlens/internal/tui/components/sessions"
	"github.com/guilhermegouw/archlens/internal/tui/util"
)

// Command message types.
type (
	// ZoomMsg changes the diagram zoom. Direction is "in", "out" or "reset".
	ZoomMsg struct {
		Direction string
	}

	// RetryRenderMsg cycles the diagram to the next display strategy.
	RetryRenderMsg struct{}

	// CopyDiagramMsg copies the viewer link of the diagram.
	CopyDiagramMsg struct{}

	// HelpMsg lists the available commands.
	HelpMsg struct {
		Text string
	}

	// UnknownCommandMsg indicates an unknown slash command was entered.
	UnknownCommandMsg struct {
		Command string
	}

	// UsageMsg reports a command invoked with bad arguments.
	UsageMsg struct {
		Usage string
	}
)

// Command represents a slash command.
type Command struct {
	Name        string
	Usage       string
	Description string
	Handler     func(args []string) tea.Msg
}

// CommandRegistry holds registered slash commands.
type CommandRegistry struct {
	commands map[string]Command
}

// NewCommandRegistry creates a new command registry with default commands.
func NewCommandRegistry() *CommandRegistry {
	r := &CommandRegistry{
		commands: make(map[string]Command),
	}

	r.Register(Command{
		Name:        "new",
		Usage:       "/new",
		Description: "Start a new session",
		Handler:     func([]string) tea.Msg { return sessions.NewSessionMsg{} },
	})
	r.Register(Command{
		Name:        "back",
		Usage:       "/back",
		Description: "Return to the architecture overview",
		Handler:     func([]string) tea.Msg { return BackRequestMsg{} },
	})
	r.Register(Command{
		Name:        "drill",
		Usage:       "/drill <module>",
		Description: "Open the detailed diagram of a module",
		Handler: func(args []string) tea.Msg {
			if len(args) == 0 {
				return UsageMsg{Usage: "/drill <module>"}
			}
			return DrillRequestMsg{Module: strings.Join(args, " ")}
		},
	})
	r.Register(Command{
		Name:        "retry",
		Usage:       "/retry",
		Description: "Try the next way of displaying the diagram",
		Handler:     func([]string) tea.Msg { return RetryRenderMsg{} },
	})
	r.Register(Command{
		Name:        "zoom",
		Usage:       "/zoom in|out|reset",
		Description: "Zoom the architecture diagram",
		Handler: func(args []string) tea.Msg {
			if len(args) != 1 || !slices.Contains([]string{"in", "out", "reset"}, strings.ToLower(args[0])) {
				return UsageMsg{Usage: "/zoom in|out|reset"}
			}
			return ZoomMsg{Direction: strings.ToLower(args[0])}
		},
	})
	r.Register(Command{
		Name:        "copy",
		Usage:       "/copy",
		Description: "Copy the diagram link to the clipboard",
		Handler:     func([]string) tea.Msg { return CopyDiagramMsg{} },
	})
	r.Register(Command{
		Name:        "help",
		Usage:       "/help",
		Description: "List commands",
		Handler:     func([]string) tea.Msg { return HelpMsg{Text: r.Help()} },
	})

	return r
}

// Register adds a command to the registry.
func (r *CommandRegistry) Register(cmd Command) {
	r.commands[cmd.Name] = cmd
}

// Parse attempts to parse input as a slash command.
// Returns the command message and true if it's a command, nil and false otherwise.
func (r *CommandRegistry) Parse(input string) (tea.Msg, bool) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return nil, false
	}

	parts := strings.Fields(input[1:])
	if len(parts) == 0 {
		return nil, false
	}

	cmdName := strings.ToLower(parts[0])
	cmd, ok := r.commands[cmdName]
	if !ok {
		return UnknownCommandMsg{Command: cmdName}, true
	}
	return cmd.Handler(parts[1:]), true
}

// GetCommands returns all registered commands sorted by name.
func (r *CommandRegistry) GetCommands() []Command {
	cmds := make([]Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	slices.SortFunc(cmds, func(a, b Command) int { return strings.Compare(a.Name, b.Name) })
	return cmds
}

// Help returns one line per command.
func (r *CommandRegistry) Help() string {
	var b strings.Builder
	for _, cmd := range r.GetCommands() {
		fmt.Fprintf(&b, "%-20s %s\n", cmd.Usage, cmd.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

// parseCommand returns a tea.Cmd if the input is a command, nil otherwise.
func (m *Model) parseCommand(input string) tea.Cmd {
	if m.commandRegistry == nil {
		m.commandRegistry = NewCommandRegistry()
	}

	msg, isCmd := m.commandRegistry.Parse(input)
	if !isCmd {
		return nil
	}
	return util.CmdHandler(msg)
}
