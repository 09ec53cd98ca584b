package servecmder

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/parleylabs/parley/cmd/parley/bootstrap"
	"github.com/parleylabs/parley/server"
)

const serveLongDesc string = `Serve the chatbot over HTTP.

Exposes a JSON API for single-shot and streaming turns, session
inspection endpoints, and a browser chat page at /.

Examples:
  parley serve
  parley serve --listen :9090 --search
  parley serve --config config/settings.yaml --debug`

const serveShortDesc string = "Serve the chatbot over HTTP"

type serveCommander struct {
	configPath string
	debug      bool
	search     bool
	listenAddr string
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.configPath, "config", "c", bootstrap.DefaultConfigPath, "Path to settings file")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging")
	cmd.Flags().BoolVar(&cmder.search, "search", false, "Augment answers with web search")
	cmd.Flags().StringVarP(&cmder.listenAddr, "listen", "l", ":8080", "Address to listen on")

	return cmd
}

func (c *serveCommander) run(cmd *cobra.Command) error {
	app, err := bootstrap.New(bootstrap.Options{
		ConfigPath: c.configPath,
		Debug:      c.debug,
		Search:     c.search,
	})
	if err != nil {
		return err
	}
	defer app.Close()

	srv := server.New(
		server.Config{ListenAddr: c.listenAddr},
		app.Settings,
		app.Service,
		app.Registry,
		app.Logger,
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case <-ctx.Done():
		app.Logger.Info("shutting down")
		return srv.Close()
	case err := <-errCh:
		return err
	}
}
