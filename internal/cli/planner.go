package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pageza/flavr/backend/internal/calendar"
	"github.com/pageza/flavr/backend/internal/models"
	"github.com/pageza/flavr/backend/internal/planner"
)

func newWeekCmd(a *app) *cobra.Command {
	var date string
	var weeks int
	cmd := &cobra.Command{
		Use:   "week",
		Short: "Print the week planner",
		Long: `Print one or more planner weeks starting at the week that contains --date.

Examples:
  flavrctl week                               # This week and next, no account
  flavrctl week --date 2024-01-01 --weeks 2   # Two weeks from Jan 1 2024
  flavrctl week --email ada@example.com       # Ada's plan for two weeks`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if weeks < 1 || weeks > calendar.MaxWeeks {
				return fmt.Errorf("--weeks must be between 1 and %d", calendar.MaxWeeks)
			}
			anchor, err := a.anchor(date)
			if err != nil {
				return err
			}
			return a.printPlan(cmd, anchor, func(p *planner.Store) [][]planner.Day {
				return p.Week(anchor, weeks)
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "any day of the first week (YYYY-MM-DD, default today)")
	cmd.Flags().IntVar(&weeks, "weeks", 2, "number of weeks to show")
	return cmd
}

func newMonthCmd(a *app) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "month",
		Short: "Print the month planner",
		Long: `Print the six-week grid of the month that contains --date. Days from
the neighbouring months are shown in parentheses.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			anchor, err := a.anchor(date)
			if err != nil {
				return err
			}
			return a.printPlan(cmd, anchor, func(p *planner.Store) [][]planner.Day {
				return p.Month(anchor)
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "any day of the month (YYYY-MM-DD, default today)")
	return cmd
}

func newPlanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "plan <date> <meal> [recipe-id]",
		Short: "Assign or clear a planner slot",
		Long: `Put a catalog recipe into a planner slot of the --email account. Without
a recipe id the slot is cleared.

Examples:
  flavrctl plan 2024-01-01 dinner r1 --email ada@example.com
  flavrctl plan 2024-01-01 dinner --email ada@example.com`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			meal, err := models.ParseMeal(args[1])
			if err != nil {
				return err
			}
			if _, err := calendar.ParseDateKey(args[0], time.Local); err != nil {
				return err
			}

			s, release, err := a.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			if len(args) == 2 {
				if err := s.Planner.Clear(cmd.Context(), args[0], meal); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "cleared %s %s\n", args[0], meal)
				return nil
			}
			if err := s.PlanRecipe(cmd.Context(), args[2], args[0], meal); err != nil {
				return fmt.Errorf("%s: %w", args[2], err)
			}
			fmt.Fprintf(a.out, "planned %s for %s %s\n", args[2], args[0], meal)
			return nil
		},
	}
}

func (a *app) anchor(date string) (time.Time, error) {
	if date == "" {
		return a.now(), nil
	}
	return calendar.ParseDateKey(date, time.Local)
}

// printPlan renders view over the --email account's planner, or over an
// empty planner when no account is given.
func (a *app) printPlan(cmd *cobra.Command, anchor time.Time, view func(*planner.Store) [][]planner.Day) error {
	titles := map[string]string{}
	store := planner.NewStore(nil, a.logger)
	if a.email != "" {
		s, release, err := a.openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer release()
		store = s.Planner
		for _, r := range s.Catalog.List() {
			titles[r.ID] = r.Title
		}
	}

	fmt.Fprintln(a.out, titleColor.Sprint(anchor.Format("January 2006")))
	return renderGrid(a.out, view(store), titles)
}
