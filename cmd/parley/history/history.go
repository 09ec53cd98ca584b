package historycmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parleylabs/parley/cmd/parley/bootstrap"
	"github.com/parleylabs/parley/pkg/config"
	"github.com/parleylabs/parley/pkg/history"
)

const historyLongDesc string = `Inspect the durable conversation log.

When database.url in the settings file points at a SQLite database,
every completed turn is persisted there. These commands read and
manage that log without starting a chat.

Examples:
  parley history sessions
  parley history show cli_a1b2c3d4
  parley history clear default_session`

const historyShortDesc string = "Inspect persisted conversations"

type historyCommander struct {
	configPath string
}

func NewHistoryCmd() *cobra.Command {
	cmder := &historyCommander{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: historyShortDesc,
		Long:  historyLongDesc,
	}

	cmd.PersistentFlags().StringVarP(&cmder.configPath, "config", "c", bootstrap.DefaultConfigPath, "Path to settings file")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "sessions",
			Short: "List sessions in the log",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return cmder.sessions(cmd.Context(), cmd)
			},
		},
		&cobra.Command{
			Use:   "show <session-id>",
			Short: "Print a session transcript",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return cmder.show(cmd.Context(), cmd, args[0])
			},
		},
		&cobra.Command{
			Use:   "clear <session-id>",
			Short: "Delete a session from the log",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return cmder.clear(cmd.Context(), cmd, args[0])
			},
		},
	)

	return cmd
}

// open loads the settings and opens the configured history database. The
// chat commands tolerate a missing database; here it is the whole point,
// so both cases are errors.
func (c *historyCommander) open() (history.Store, error) {
	settings, err := config.Load(c.configPath)
	if err != nil {
		return nil, fmt.Errorf("could not load settings from %s: %w", c.configPath, err)
	}

	dbPath, ok := bootstrap.SQLitePath(settings.DatabaseURL())
	if !ok {
		return nil, fmt.Errorf("no sqlite database configured (database.url is %q)", settings.DatabaseURL())
	}

	store, err := history.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("could not open history database %s: %w", dbPath, err)
	}
	return store, nil
}

func (c *historyCommander) sessions(ctx context.Context, cmd *cobra.Command) error {
	store, err := c.open()
	if err != nil {
		return err
	}
	defer store.Close()

	ids, err := store.Sessions(ctx)
	if err != nil {
		return fmt.Errorf("could not list sessions: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(ids) == 0 {
		fmt.Fprintln(out, "No recorded sessions.")
		return nil
	}
	for _, id := range ids {
		fmt.Fprintln(out, id)
	}
	return nil
}

func (c *historyCommander) show(ctx context.Context, cmd *cobra.Command, sessionID string) error {
	store, err := c.open()
	if err != nil {
		return err
	}
	defer store.Close()

	messages, err := store.Messages(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("could not read session %s: %w", sessionID, err)
	}

	out := cmd.OutOrStdout()
	if len(messages) == 0 {
		fmt.Fprintf(out, "No messages for session %q.\n", sessionID)
		return nil
	}
	for i, msg := range messages {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "[%s] %s\n%s\n", msg.Timestamp.Format("2006-01-02 15:04:05"), msg.Role, msg.Content)
	}
	return nil
}

func (c *historyCommander) clear(ctx context.Context, cmd *cobra.Command, sessionID string) error {
	store, err := c.open()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("could not clear session %s: %w", sessionID, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Cleared session %s.\n", sessionID)
	return nil
}
