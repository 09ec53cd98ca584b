package askcmder

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/parleylabs/parley/cmd/parley/bootstrap"
	"github.com/parleylabs/parley/pkg/chat"
)

const askLongDesc string = `Ask the chatbot a single question and print the answer.

The response style selects both the persona and the sampling
temperature: standard (0.7), creative (1.0), or factual (0.3).

Examples:
  parley ask "What is a goroutine?"
  parley ask --style factual "When was Go released?"
  parley ask --search "What happened in tech news today?"`

const askShortDesc string = "Ask a single question"

type askCommander struct {
	configPath  string
	debug       bool
	search      bool
	style       string
	session     string
	temperature float64
	showMeta    bool
}

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVarP(&cmder.configPath, "config", "c", bootstrap.DefaultConfigPath, "Path to settings file")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging")
	cmd.Flags().BoolVar(&cmder.search, "search", false, "Augment the answer with web search")
	cmd.Flags().StringVar(&cmder.style, "style", "standard", "Response style: standard, creative, or factual")
	cmd.Flags().StringVar(&cmder.session, "session", "", "Session id for conversation history")
	cmd.Flags().Float64VarP(&cmder.temperature, "temperature", "t", 0, "Override the sampling temperature")
	cmd.Flags().BoolVar(&cmder.showMeta, "meta", false, "Print response metadata")

	return cmd
}

func (c *askCommander) run(cmd *cobra.Command, question string) error {
	app, err := bootstrap.New(bootstrap.Options{
		ConfigPath: c.configPath,
		Debug:      c.debug,
		Search:     c.search,
	})
	if err != nil {
		return err
	}
	defer app.Close()

	resp := app.Service.Respond(cmd.Context(), chat.ChatRequest{
		UserInput:     question,
		ResponseStyle: chat.ResponseStyle(c.style),
		SessionID:     c.session,
		Temperature:   c.temperature,
	})

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, resp.Message)

	if c.showMeta {
		fmt.Fprintf(out, "\nconfidence: %.1f\n", resp.Confidence)
		keys := make([]string, 0, len(resp.Metadata))
		for k := range resp.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(out, "%s: %v\n", k, resp.Metadata[k])
		}
	}

	return nil
}
