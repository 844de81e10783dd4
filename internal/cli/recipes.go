package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pageza/flavr/backend/internal/models"
)

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <url>",
		Short: "Import a recipe through the collector",
		Long: `Ask the collector to import a recipe page and print the result. With
--email the recipe is also added to the front of that account's catalog.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				recipe models.Recipe
				err    error
			)
			if a.email != "" {
				s, release, openErr := a.openSession(cmd.Context())
				if openErr != nil {
					return openErr
				}
				defer release()
				recipe, err = s.ImportURL(cmd.Context(), args[0])
			} else {
				recipe, err = a.collector().Import(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			return renderRecipe(a.out, recipe)
		},
	}
}

func newDiscoverCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "discover [query]",
		Short: "Search the collector for recipes",
		Long: `Search the collector and print the matches. With --email the results
are merged into that account's catalog.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			if limit <= 0 {
				limit = a.cfg.DiscoverLimit
			}

			var (
				recipes []models.Recipe
				err     error
			)
			if a.email != "" {
				s, release, openErr := a.openSession(cmd.Context())
				if openErr != nil {
					return openErr
				}
				defer release()
				recipes, err = s.Discover(cmd.Context(), query, limit)
			} else {
				recipes, err = a.collector().Discover(cmd.Context(), query, limit)
			}
			if err != nil {
				if len(recipes) > 0 {
					fmt.Fprintf(cmd.ErrOrStderr(), "collector failed (%v), showing catalog matches\n", err)
					return renderRecipes(a.out, recipes)
				}
				return err
			}
			return renderRecipes(a.out, recipes)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of results (default DISCOVER_LIMIT)")
	return cmd
}
