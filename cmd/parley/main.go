// Command parley is a tutorial chatbot for local and hosted language
// models: ask one-shot questions, chat interactively in the terminal or the
// browser, and compare response styles side by side.
package main

import (
	"os"

	"github.com/spf13/cobra"

	askcmder "github.com/parleylabs/parley/cmd/parley/ask"
	chatcmder "github.com/parleylabs/parley/cmd/parley/chat"
	comparecmder "github.com/parleylabs/parley/cmd/parley/compare"
	historycmder "github.com/parleylabs/parley/cmd/parley/history"
	servecmder "github.com/parleylabs/parley/cmd/parley/serve"
	tuicmder "github.com/parleylabs/parley/cmd/parley/tui"
)

const rootLongDesc string = `Parley is a configurable LLM chatbot.

It speaks to a local Ollama daemon or a hosted OpenAI compatible
API, picks personas and temperatures per response style, and can
augment answers with web search. Sessions keep their own history,
optionally persisted to SQLite.

Configuration lives in a YAML settings file (config/settings.yaml
by default); every command takes --config to point elsewhere.`

func main() {
	root := &cobra.Command{
		Use:          "parley",
		Short:        "Chat with a configurable LLM chatbot",
		Long:         rootLongDesc,
		SilenceUsage: true,
	}

	root.AddCommand(
		askcmder.NewAskCmd(),
		chatcmder.NewChatCmd(),
		comparecmder.NewCompareCmd(),
		historycmder.NewHistoryCmd(),
		servecmder.NewServeCmd(),
		tuicmder.NewTUICmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
