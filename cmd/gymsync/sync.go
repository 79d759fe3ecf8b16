package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mkrall/gymsync/internal/domain/entities"
	"github.com/mkrall/gymsync/internal/domain/services"
)

func newSyncCmd() *cobra.Command {
	var eventType string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch listings and reconcile them against the event store",
		Long:  "Fetches current listings for each configured gym, diffs them against stored events and applies inserts, updates and soft-deletes.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, eventType)
		},
	}

	cmd.Flags().StringVarP(&eventType, "type", "t", "", "Event type to sync (default: all types)")

	return cmd
}

func runSync(cmd *cobra.Command, eventType string) error {
	ctx := cmd.Context()

	return withInternalDeps(func(d *internalDeps) error {
		if len(d.Config.GymIDs()) == 0 {
			return fmt.Errorf("no gyms configured; add them under portal.gym_slugs in the config file")
		}

		if d.recorder != nil {
			go func() {
				if err := d.recorder.Serve(ctx, d.Config.Metrics.Addr); err != nil {
					fmt.Printf("metrics endpoint: %v\n", err)
				}
			}()
		}

		var batch services.BatchResult
		switch {
		case globalGym != "" && eventType != "":
			et, err := parseEventType(eventType)
			if err != nil {
				return err
			}
			result := d.SyncHandler.HandleUnit(ctx, globalGym, et)
			batch.Units = []services.UnitResult{result}
			batch.Totals = result.Summary
		case globalGym != "":
			batch = d.SyncHandler.HandleGym(ctx, globalGym)
		case eventType != "":
			return fmt.Errorf("--type requires --gym")
		default:
			batch = d.SyncHandler.HandleAll(ctx)
		}

		return reportBatch(batch)
	})
}

func reportBatch(batch services.BatchResult) error {
	var failed, paused int
	for _, result := range batch.Units {
		switch result.State {
		case services.UnitDone:
			fmt.Printf("%s: done  found=%d new=%d changed=%d deleted=%d unchanged=%d",
				result.Unit, result.Found,
				result.Summary.New, result.Summary.Changed, result.Summary.Deleted, result.Summary.Unchanged)
			if result.Skipped > 0 {
				fmt.Printf(" skipped=%d", result.Skipped)
			}
			fmt.Println()
		case services.UnitPaused:
			paused++
			fmt.Printf("%s: PAUSED  %s\n", result.Unit, result.PauseReason)
		case services.UnitError:
			failed++
			fmt.Printf("%s: error  %v\n", result.Unit, result.Err)
		}
	}

	if batch.Cancelled {
		fmt.Println("Sync cancelled; remaining units were not run.")
	}
	fmt.Printf("Totals: new=%d changed=%d deleted=%d unchanged=%d\n",
		batch.Totals.New, batch.Totals.Changed, batch.Totals.Deleted, batch.Totals.Unchanged)
	if paused > 0 {
		fmt.Printf("%d unit(s) paused by the deletion guard; review and re-run.\n", paused)
	}

	if failed > 0 {
		return fmt.Errorf("%d unit(s) failed", failed)
	}
	return nil
}

func parseEventType(s string) (entities.EventType, error) {
	et := entities.EventType(strings.ToUpper(strings.ReplaceAll(s, "-", "_")))
	for _, known := range allEventTypes {
		if et == known {
			return et, nil
		}
	}
	return "", fmt.Errorf("unknown event type %q, valid types: %v", s, allEventTypes)
}
