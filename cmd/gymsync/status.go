package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mkrall/gymsync/internal/application/handlers"
	"github.com/mkrall/gymsync/internal/domain/entities"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show sync history and verification accuracy",
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	return withReviewHandler(func(h *handlers.ReviewHandler) error {
		history, err := h.SyncHistory(ctx, globalGym)
		if err != nil {
			return fmt.Errorf("loading sync history: %w", err)
		}

		if len(history) == 0 {
			fmt.Println("No syncs recorded yet.")
		} else {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "GYM\tTYPE\tFOUND\tNEW\tLAST SYNCED")
			for _, entry := range history {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
					entry.GymID, entry.EventType, entry.EventsFound, entry.NewCount,
					entry.LastSyncedAt.Local().Format("2006-01-02 15:04:05"))
			}
			w.Flush()
		}

		stats, err := h.Accuracy(ctx, globalGym)
		if err != nil {
			return fmt.Errorf("computing accuracy: %w", err)
		}
		if stats.Total > 0 {
			fmt.Printf("\nValidator accuracy: %d%% (%d of %d flagged errors verified, %d false positives)\n",
				stats.Pct, stats.Verified, stats.Total, stats.Incorrect)
		}

		return nil
	})
}

func newAuditCmd() *cobra.Command {
	var (
		eventID string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the change history",
		Long:  "Shows recent create, update and delete entries from the change history, newest first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(cmd, eventID, limit)
		},
	}

	cmd.Flags().StringVarP(&eventID, "event", "e", "", "Show changes for one event only")
	cmd.Flags().IntVarP(&limit, "limit", "l", 50, "Maximum number of entries to display")

	return cmd
}

func runAudit(cmd *cobra.Command, eventID string, limit int) error {
	ctx := cmd.Context()

	return withReviewHandler(func(h *handlers.ReviewHandler) error {
		var entries []entities.ChangeEntry
		var err error

		switch {
		case eventID != "":
			entries, err = h.ChangesByEvent(ctx, eventID)
		case globalGym != "":
			entries, err = h.ChangesByGym(ctx, globalGym, limit)
		default:
			entries, err = h.RecentChanges(ctx, limit)
		}
		if err != nil {
			return fmt.Errorf("loading change history: %w", err)
		}

		if len(entries) == 0 {
			fmt.Println("No changes recorded.")
			return nil
		}

		for _, entry := range entries {
			displayChange(entry)
		}
		return nil
	})
}

func displayChange(entry entities.ChangeEntry) {
	when := entry.ChangedAt.Local().Format("2006-01-02 15:04")
	switch entry.Action {
	case entities.ActionUpdate:
		fmt.Printf("%s  %s %s  %q: %s -> %s  (%s %s)\n",
			when, entry.GymID, entry.Action, entry.Field, quoteValue(entry.OldValue), quoteValue(entry.NewValue),
			entry.EventTitle, entry.EventDate)
	default:
		fmt.Printf("%s  %s %s  (%s %s)\n",
			when, entry.GymID, entry.Action, entry.EventTitle, entry.EventDate)
	}
}

func quoteValue(v string) string {
	if v == "" {
		return "(empty)"
	}
	return fmt.Sprintf("%q", v)
}
