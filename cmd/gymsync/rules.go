package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mkrall/gymsync/internal/application/handlers"
	"github.com/mkrall/gymsync/internal/domain/services"
)

func newRulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage gym rules",
		Long:  "List, add, or remove permanent rules that accept known-valid values the validator would otherwise flag.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRulesList(cmd)
		},
	}

	cmd.AddCommand(newRulesListCmd())
	cmd.AddCommand(newRulesAddCmd())
	cmd.AddCommand(newRulesRemoveCmd())

	return cmd
}

func newRulesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List gym rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRulesList(cmd)
		},
	}
}

func runRulesList(cmd *cobra.Command) error {
	ctx := cmd.Context()

	return withReviewHandler(func(h *handlers.ReviewHandler) error {
		rules, err := h.ListRules(ctx, globalGym)
		if err != nil {
			return fmt.Errorf("listing rules: %w", err)
		}

		if len(rules) == 0 {
			fmt.Println("No rules found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tGYM\tTYPE\tRULE\tVALUE\tLABEL")
		for _, rule := range rules {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				rule.ID, rule.GymID, rule.EventType, rule.RuleType, rule.Value, rule.Label)
		}
		w.Flush()

		return nil
	})
}

func newRulesAddCmd() *cobra.Command {
	var label string

	cmd := &cobra.Command{
		Use:   "add <event-id> <error-message>",
		Short: "Promote a flagged error into a permanent rule",
		Long:  "Extracts the accepted value from the error and saves it as a gym rule, then dismisses the error on the event.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRulesAdd(cmd, args[0], args[1], label)
		},
	}

	cmd.Flags().StringVarP(&label, "label", "l", "", "Human-readable label for the rule (default: error type label)")

	return cmd
}

func runRulesAdd(cmd *cobra.Command, eventID, message, label string) error {
	ctx := cmd.Context()

	return withReviewHandler(func(h *handlers.ReviewHandler) error {
		rule, err := h.CreateRule(ctx, eventID, message, label, services.OriginAuditReview)

		var partial *services.PartialWriteError
		if errors.As(err, &partial) {
			fmt.Printf("Added rule %s, but dismissing the error on the event failed: %v\n", rule.ID, partial.Err)
			fmt.Println("The rule is active; dismiss the error manually if it still shows.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("adding rule: %w", err)
		}

		fmt.Printf("Added rule %s: %s %s = %s\n", rule.ID, rule.EventType, rule.RuleType, rule.Value)
		return nil
	})
}

func newRulesRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <rule-id>",
		Short: "Remove a gym rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRulesRemove(cmd, args[0])
		},
	}
}

func runRulesRemove(cmd *cobra.Command, id string) error {
	ctx := cmd.Context()

	return withReviewHandler(func(h *handlers.ReviewHandler) error {
		if err := h.DeleteRule(ctx, id); err != nil {
			return fmt.Errorf("removing rule: %w", err)
		}
		fmt.Printf("Removed rule: %s\n", id)
		return nil
	})
}

func newPatternsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Manage program-wide dismissals",
		Long:  "List or remove dismissals that cover every event of a gym and program type.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPatternsList(cmd)
		},
	}

	cmd.AddCommand(newPatternsListCmd())
	cmd.AddCommand(newPatternsRemoveCmd())

	return cmd
}

func newPatternsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List program-wide dismissals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPatternsList(cmd)
		},
	}
}

func runPatternsList(cmd *cobra.Command) error {
	ctx := cmd.Context()

	return withReviewHandler(func(h *handlers.ReviewHandler) error {
		patterns, err := h.ListPatterns(ctx, globalGym)
		if err != nil {
			return fmt.Errorf("listing patterns: %w", err)
		}

		if len(patterns) == 0 {
			fmt.Println("No program-wide dismissals found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tGYM\tTYPE\tMESSAGE\tNOTE")
		for _, p := range patterns {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				p.ID, p.GymID, p.EventType, truncate(p.ErrorMessage, 60), p.Note)
		}
		w.Flush()

		return nil
	})
}

func newPatternsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <pattern-id>",
		Short: "Remove a program-wide dismissal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPatternsRemove(cmd, args[0])
		},
	}
}

func runPatternsRemove(cmd *cobra.Command, id string) error {
	ctx := cmd.Context()

	return withReviewHandler(func(h *handlers.ReviewHandler) error {
		if err := h.DeletePattern(ctx, id); err != nil {
			return fmt.Errorf("removing pattern: %w", err)
		}
		fmt.Printf("Removed program-wide dismissal: %s\n", id)
		return nil
	})
}

// truncate shortens a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
