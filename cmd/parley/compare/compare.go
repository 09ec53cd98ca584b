package comparecmder

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/parleylabs/parley/cmd/parley/bootstrap"
	"github.com/parleylabs/parley/pkg/chat"
)

const compareLongDesc string = `Answer one question in all three response styles.

Runs the question through the standard, creative, and factual
personas in turn, so the effect of persona and temperature is easy
to see. Each style answers in its own session, leaving regular chat
history untouched.

Examples:
  parley compare "Describe the ocean"
  parley compare --search "How warm is the Atlantic right now?"`

const compareShortDesc string = "Compare the three response styles"

type compareCommander struct {
	configPath string
	debug      bool
	search     bool
}

func NewCompareCmd() *cobra.Command {
	cmder := &compareCommander{}

	cmd := &cobra.Command{
		Use:   "compare <question>",
		Short: compareShortDesc,
		Long:  compareLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVarP(&cmder.configPath, "config", "c", bootstrap.DefaultConfigPath, "Path to settings file")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging")
	cmd.Flags().BoolVar(&cmder.search, "search", false, "Augment answers with web search")

	return cmd
}

func (c *compareCommander) run(cmd *cobra.Command, question string) error {
	app, err := bootstrap.New(bootstrap.Options{
		ConfigPath: c.configPath,
		Debug:      c.debug,
		Search:     c.search,
	})
	if err != nil {
		return err
	}
	defer app.Close()

	out := cmd.OutOrStdout()
	header := color.New(color.FgMagenta, color.Bold)

	styles := []chat.ResponseStyle{chat.StyleStandard, chat.StyleCreative, chat.StyleFactual}
	for _, style := range styles {
		resp := app.Service.Respond(cmd.Context(), chat.ChatRequest{
			UserInput:     question,
			ResponseStyle: style,
			SessionID:     fmt.Sprintf("compare_%s", style),
		})

		if temp, ok := resp.Metadata["temperature"].(float64); ok {
			header.Fprintf(out, "=== %s (temperature %.1f) ===\n", style, temp)
		} else {
			header.Fprintf(out, "=== %s ===\n", style)
		}
		fmt.Fprintln(out, resp.Message)
		fmt.Fprintln(out)
	}

	return nil
}
