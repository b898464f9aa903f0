package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/rebeliceyang/lazyquery/internal/export"
	"github.com/rebeliceyang/lazyquery/internal/history"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand(opts *RootOptions) *cobra.Command {
	var (
		search string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently executed queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.historyStore()
			if err != nil {
				return err
			}
			if store == nil {
				return fmt.Errorf("query history is disabled")
			}

			var entries []history.HistoryEntry
			if search != "" {
				entries, err = store.Search(search, limit)
			} else {
				entries, err = store.GetRecent(limit)
			}
			if err != nil {
				return err
			}

			rows := make([][]string, len(entries))
			for i, e := range entries {
				status := "ok"
				if !e.Success {
					status = "failed: " + e.ErrorMessage
				}
				rows[i] = []string{
					e.ExecutedAt.Local().Format("2006-01-02 15:04:05"),
					e.QueryName,
					e.DataSource,
					strconv.FormatInt(e.RowsAffected, 10),
					e.Duration.Round(time.Millisecond).String(),
					status,
				}
			}
			export.WriteTable(cmd.OutOrStdout(), []string{"Executed", "Query", "Data Source", "Rows", "Duration", "Status"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "only entries whose name or SQL contains this text")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum entries")
	return cmd
}
