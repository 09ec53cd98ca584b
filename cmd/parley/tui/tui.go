package tuicmder

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/parleylabs/parley/cmd/parley/bootstrap"
	"github.com/parleylabs/parley/pkg/chat"
)

const tuiLongDesc string = `Chat in a full-screen terminal interface.

Replies stream in live and render as markdown once complete. Key
bindings:

  enter   send the message
  ctrl+r  cycle the response style
  esc     quit

Examples:
  parley tui
  parley tui --search`

const tuiShortDesc string = "Chat in a full-screen terminal interface"

type tuiCommander struct {
	configPath string
	search     bool
	style      string
}

func NewTUICmd() *cobra.Command {
	cmder := &tuiCommander{}

	cmd := &cobra.Command{
		Use:   "tui",
		Short: tuiShortDesc,
		Long:  tuiLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.configPath, "config", "c", bootstrap.DefaultConfigPath, "Path to settings file")
	cmd.Flags().BoolVar(&cmder.search, "search", false, "Augment answers with web search")
	cmd.Flags().StringVar(&cmder.style, "style", "standard", "Initial response style")

	return cmd
}

func (c *tuiCommander) run(cmd *cobra.Command) error {
	app, err := bootstrap.New(bootstrap.Options{
		ConfigPath: c.configPath,
		// Logs would tear the alt screen
		Quiet:  true,
		Search: c.search,
	})
	if err != nil {
		return err
	}
	defer app.Close()

	m := newChatModel(app, chat.ResponseStyle(c.style).Normalize())

	options := []tea.ProgramOption{
		tea.WithAltScreen(),
		// Mouse support so the wheel scrolls the transcript
		tea.WithMouseCellMotion(),
	}
	p := tea.NewProgram(m, options...)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("could not run interface: %w", err)
	}
	return nil
}
