package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/teemow/flowspace/internal/engine"
	"github.com/teemow/flowspace/internal/server"
	"github.com/teemow/flowspace/internal/tasks"
)

func newTasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List the registered workflow tasks",
		Long: `List every workflow task that trigger steps can reference,
with a one-line description.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelError,
			}))

			serverContext, err := server.NewServerContext(ctx, logger)
			if err != nil {
				return fmt.Errorf("failed to create server context: %w", err)
			}
			defer func() { _ = serverContext.Shutdown() }()

			registry := engine.NewRegistry()
			if err := tasks.RegisterAll(registry, serverContext); err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, task := range registry.Tasks() {
				fmt.Fprintf(w, "%s\t%s\n", task.Name, task.Description)
			}
			return w.Flush()
		},
	}

	return cmd
}
