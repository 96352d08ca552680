package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Veraticus/sla-sentinel/internal/cli"
	"github.com/Veraticus/sla-sentinel/internal/storage"
	"github.com/spf13/cobra"
)

func logsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent predictions from the audit log",
		RunE:  runLogs,
	}

	cmd.Flags().IntP("limit", "n", storage.DefaultLogLimit, "Number of entries to show")
	cmd.Flags().Bool("json", false, "Print entries as JSON lines")

	return cmd
}

func runLogs(cmd *cobra.Command, _ []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	asJSON, _ := cmd.Flags().GetBool("json")

	return withStore(cmd, func(store *storage.SQLiteStorage) error {
		entries, err := store.GetPredictionLogs(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("failed to read prediction logs: %w", err)
		}

		out := cmd.OutOrStdout()
		if !asJSON {
			return cli.WriteLogTable(out, entries)
		}

		enc := json.NewEncoder(out)
		for _, e := range entries {
			if err := enc.Encode(struct {
				Request  any    `json:"input_data"`
				Response any    `json:"prediction_result"`
				ID       string `json:"id"`
				At       string `json:"created_at"`
				By       string `json:"requested_by"`
				Source   string `json:"source"`
			}{
				ID:       e.ID,
				At:       e.CreatedAt.Format(time.RFC3339),
				By:       e.RequestedBy,
				Source:   e.Source,
				Request:  e.Request,
				Response: e.Response,
			}); err != nil {
				return fmt.Errorf("failed to encode log %s: %w", e.ID, err)
			}
		}
		return nil
	})
}
