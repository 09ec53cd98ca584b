package chatcmder

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/parleylabs/parley/cmd/parley/bootstrap"
	"github.com/parleylabs/parley/pkg/chat"
)

const chatLongDesc string = `Start an interactive chat session.

Responses stream as they are generated. Inside the session a few
commands are available:

  /style <standard|creative|factual>  switch the response style
  /clear                              forget the conversation
  /quit                               leave (exit and Ctrl-D work too)

Examples:
  parley chat
  parley chat --search
  parley chat --style creative --debug`

const chatShortDesc string = "Chat interactively"

type chatCommander struct {
	configPath string
	debug      bool
	search     bool
	style      string
	session    string
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.configPath, "config", "c", bootstrap.DefaultConfigPath, "Path to settings file")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging")
	cmd.Flags().BoolVar(&cmder.search, "search", false, "Augment answers with web search")
	cmd.Flags().StringVar(&cmder.style, "style", "standard", "Initial response style")
	cmd.Flags().StringVar(&cmder.session, "session", "", "Session id (default: a fresh one per run)")

	return cmd
}

func (c *chatCommander) run(cmd *cobra.Command) error {
	app, err := bootstrap.New(bootstrap.Options{
		ConfigPath: c.configPath,
		Debug:      c.debug,
		Search:     c.search,
	})
	if err != nil {
		return err
	}
	defer app.Close()

	// Piped input keeps the transcript reproducible.
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		color.NoColor = true
	}

	sessionID := c.session
	if sessionID == "" {
		sessionID = "cli_" + uuid.NewString()[:8]
	}
	style := chat.ResponseStyle(c.style).Normalize()

	out := cmd.OutOrStdout()
	userLabel := color.New(color.FgGreen, color.Bold).SprintFunc()
	botLabel := color.New(color.FgCyan, color.Bold).SprintFunc()
	notice := color.New(color.FgYellow).SprintFunc()

	fmt.Fprintln(out, botLabel(app.Settings.UI.AppTitle))
	fmt.Fprintln(out, app.Settings.UI.AppMessage)
	fmt.Fprintf(out, "Model: %s  Style: %s\n", app.Settings.ModelName(), style)
	fmt.Fprintln(out, "Type /quit to leave, /style to switch styles, /clear to start over.")
	fmt.Fprintln(out)

	name := app.Settings.Chatbot.Name
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprintf(out, "%s ", userLabel("You:"))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit" || line == "quit" || line == "exit":
			fmt.Fprintln(out, notice("Bye!"))
			return nil
		case line == "/clear":
			app.Registry.GetOrCreate(sessionID).Clear()
			fmt.Fprintln(out, notice("Conversation cleared."))
			continue
		case strings.HasPrefix(line, "/style"):
			style = switchStyle(out, notice, line, style)
			continue
		}

		fmt.Fprintf(out, "%s ", botLabel(name+":"))
		for text := range app.Service.RespondStream(cmd.Context(), chat.ChatRequest{
			UserInput:     line,
			ResponseStyle: style,
			SessionID:     sessionID,
		}) {
			fmt.Fprint(out, text)
		}
		fmt.Fprint(out, "\n\n")
	}
}

func switchStyle(out io.Writer, notice func(...interface{}) string, line string, current chat.ResponseStyle) chat.ResponseStyle {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		fmt.Fprintln(out, notice("Usage: /style standard|creative|factual"))
		return current
	}

	next := chat.ResponseStyle(strings.ToLower(fields[1]))
	if next.Normalize() != next {
		fmt.Fprintln(out, notice(fmt.Sprintf("Unknown style %q, keeping %s.", fields[1], current)))
		return current
	}

	fmt.Fprintln(out, notice(fmt.Sprintf("Response style set to %s.", next)))
	return next
}
