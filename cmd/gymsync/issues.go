package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkrall/gymsync/internal/application/handlers"
	"github.com/mkrall/gymsync/internal/domain/entities"
	"github.com/mkrall/gymsync/internal/domain/services"
)

func newIssuesCmd() *cobra.Command {
	var activeOnly bool

	cmd := &cobra.Command{
		Use:   "issues",
		Short: "List events with validation issues",
		Long:  "Lists current events that carry validation errors or are missing description content, grouped by gym.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIssues(cmd, activeOnly)
		},
	}

	cmd.Flags().BoolVarP(&activeOnly, "active", "a", false, "Show only events with undismissed errors")

	return cmd
}

func runIssues(cmd *cobra.Command, activeOnly bool) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		gymIDs := d.Config.GymIDs()
		if globalGym != "" {
			gymIDs = []string{globalGym}
		}

		total := 0
		for _, gymID := range gymIDs {
			issues, err := d.ReviewHandler.EventsWithIssues(ctx, gymID)
			if err != nil {
				return fmt.Errorf("listing issues for %s: %w", gymID, err)
			}

			for _, ei := range issues {
				if activeOnly && len(ei.ActiveErrors) == 0 {
					continue
				}
				total++
				displayIssues(ei)
			}
		}

		if total == 0 {
			fmt.Println("No events with issues found.")
		} else {
			fmt.Printf("%d event(s) need attention.\n", total)
		}
		return nil
	})
}

func displayIssues(ei handlers.EventIssues) {
	e := ei.Event
	fmt.Printf("%s  [%s] %s (%s)\n", e.ID, e.Type, e.Title, e.EffectiveStartDate())
	fmt.Printf("  Gym: %s  URL: %s\n", e.GymID, e.EventURL)

	dismissed := make(map[string]bool, len(ei.DismissedErrors))
	for _, verr := range ei.DismissedErrors {
		dismissed[verr.Message] = true
	}
	for _, verr := range e.ValidationErrors {
		if verr.Type == "sold_out" {
			continue
		}
		marker := "!"
		if dismissed[verr.Message] {
			marker = "-"
		}
		fmt.Printf("  %s %s: %s\n", marker, services.Label(verr.Type), verr.Message)
	}
	if ei.HasDescriptionIssue {
		switch e.DescriptionStatus {
		case entities.DescriptionFlyerOnly:
			fmt.Println("  ! Description: flyer only, no text")
		default:
			fmt.Println("  ! Description: missing")
		}
	}
	fmt.Println()
}

func newDismissCmd() *cobra.Command {
	var (
		note        string
		programWide bool
	)

	cmd := &cobra.Command{
		Use:   "dismiss <event-id> <error-message>",
		Short: "Dismiss a validation error",
		Long:  "Marks a validation error as acknowledged so it no longer counts as an active issue. With --program the dismissal covers every event of the same gym and type.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDismiss(cmd, args[0], args[1], note, programWide)
		},
	}

	cmd.Flags().StringVarP(&note, "note", "n", "", "Optional note recorded with the dismissal")
	cmd.Flags().BoolVarP(&programWide, "program", "p", false, "Dismiss for the whole program, not just this event")

	return cmd
}

func runDismiss(cmd *cobra.Command, eventID, message, note string, programWide bool) error {
	ctx := cmd.Context()

	return withReviewHandler(func(h *handlers.ReviewHandler) error {
		if err := h.Dismiss(ctx, eventID, message, note, programWide); err != nil {
			return fmt.Errorf("dismissing error: %w", err)
		}
		if programWide {
			fmt.Println("Dismissed for the whole program.")
		} else {
			fmt.Println("Dismissed.")
		}
		return nil
	})
}

func newUndismissCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undismiss <event-id> <error-message>",
		Short: "Restore a dismissed validation error",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUndismiss(cmd, args[0], args[1])
		},
	}
}

func runUndismiss(cmd *cobra.Command, eventID, message string) error {
	ctx := cmd.Context()

	return withReviewHandler(func(h *handlers.ReviewHandler) error {
		if err := h.UndoDismiss(ctx, eventID, message); err != nil {
			return fmt.Errorf("restoring error: %w", err)
		}
		fmt.Println("Restored.")
		return nil
	})
}

func newVerifyCmd() *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   "verify <event-id> <error-message> <correct|incorrect|clear>",
		Short: "Record a verification verdict on a validation error",
		Long:  "Records whether a flagged error was a true finding. Use 'clear' to remove an earlier verdict.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, args[0], args[1], args[2], note)
		},
	}

	cmd.Flags().StringVarP(&note, "note", "n", "", "Optional note recorded with the verdict")

	return cmd
}

func runVerify(cmd *cobra.Command, eventID, message, verdict, note string) error {
	ctx := cmd.Context()

	return withReviewHandler(func(h *handlers.ReviewHandler) error {
		v := entities.Verdict(verdict)
		if verdict == "clear" {
			v = ""
		}

		if err := h.SetVerdict(ctx, eventID, message, v, note); err != nil {
			return fmt.Errorf("recording verdict: %w", err)
		}
		if v == "" {
			fmt.Println("Verdict cleared.")
		} else {
			fmt.Printf("Recorded verdict: %s\n", v)
		}
		return nil
	})
}
