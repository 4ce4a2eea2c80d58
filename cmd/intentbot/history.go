package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/0xcro3dile/intentbot-go/internal/adapters/history"
	"github.com/0xcro3dile/intentbot-go/internal/domain/entities"
)

var (
	historySession string
	historyOldest  bool
)

// historyCmd reads persisted turns. In-memory history dies with the process,
// so only the sqlite backend has anything to show.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show persisted chat history (sqlite backend)",
	Long: `Lists turns stored in the sqlite history database, newest first.
Without --session it lists the sessions that have history.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historySession, "session", "", "Session id")
	historyCmd.Flags().BoolVar(&historyOldest, "oldest-first", false, "List oldest turns first")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if cfg.History.Backend != "sqlite" {
		return fmt.Errorf("history backend is %q; only sqlite history outlives the process", cfg.History.Backend)
	}
	store, err := history.NewSQLiteStore(cfg.History.DSN)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	out := cmd.OutOrStdout()

	if historySession == "" {
		ids, err := store.Sessions(ctx)
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Fprintln(out, id)
		}
		return nil
	}

	order := entities.ReverseChronological
	if historyOldest {
		order = entities.Chronological
	}
	turns, err := store.List(ctx, historySession, order)
	if err != nil {
		return err
	}
	printHistory(out, turns)
	return nil
}
