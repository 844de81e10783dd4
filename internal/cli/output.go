package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pageza/flavr/backend/internal/models"
	"github.com/pageza/flavr/backend/internal/planner"
)

var (
	dimColor   = color.New(color.Faint)
	titleColor = color.New(color.Bold)
)

var weekdayHeader = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// newTable creates a borderless, left-aligned table.
func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)
}

func render(w io.Writer, header []string, rows [][]string) error {
	table := newTable(w)
	table.Header(header)
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

// renderGrid prints planner rows as a weekday table. Days outside the
// anchor month are wrapped in parentheses.
func renderGrid(w io.Writer, rows [][]planner.Day, titles map[string]string) error {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, day := range row {
			cells[i] = dayCell(day, titles)
		}
		out = append(out, cells)
	}
	return render(w, weekdayHeader, out)
}

func dayCell(day planner.Day, titles map[string]string) string {
	label := day.Date.Format("Jan 02")
	if day.Dim {
		label = dimColor.Sprintf("(%s)", label)
	}
	lines := []string{label}
	for _, meal := range models.Meals {
		id, ok := day.Slots[meal]
		if !ok {
			continue
		}
		title := titles[id]
		if title == "" {
			title = id
		}
		lines = append(lines, fmt.Sprintf("%s: %s", mealInitial(meal), title))
	}
	return strings.Join(lines, "\n")
}

func mealInitial(m models.Meal) string {
	return strings.ToUpper(string(m)[:1])
}

func renderRecipes(w io.Writer, recipes []models.Recipe) error {
	rows := make([][]string, 0, len(recipes))
	for _, r := range recipes {
		rows = append(rows, []string{
			r.ID,
			r.Title,
			fmt.Sprintf("%d min", r.Time),
			r.Cuisine,
			sourceLabel(r.Source),
		})
	}
	return render(w, []string{"ID", "Title", "Time", "Cuisine", "Source"}, rows)
}

func renderRecipe(w io.Writer, r models.Recipe) error {
	fmt.Fprintln(w, titleColor.Sprint(r.Title))
	rows := [][]string{
		{"id", r.ID},
		{"time", fmt.Sprintf("%d min", r.Time)},
		{"difficulty", r.Difficulty},
		{"cuisine", r.Cuisine},
		{"source", sourceLabel(r.Source)},
		{"url", r.Source.URL},
		{"tags", strings.Join(r.Tags, ", ")},
	}
	if r.Calories != nil {
		rows = append(rows, []string{"calories", fmt.Sprint(*r.Calories)})
	}
	if err := render(w, []string{"Field", "Value"}, rows); err != nil {
		return err
	}

	if len(r.Ingredients) > 0 {
		fmt.Fprintln(w)
		ing := make([][]string, 0, len(r.Ingredients))
		for _, in := range r.Ingredients {
			ing = append(ing, []string{in.Item, in.Amount})
		}
		if err := render(w, []string{"Ingredient", "Amount"}, ing); err != nil {
			return err
		}
	}
	if len(r.Steps) > 0 {
		fmt.Fprintln(w)
		for i, step := range r.Steps {
			fmt.Fprintf(w, "%d. %s\n", i+1, step.Text)
		}
	}
	return nil
}

func sourceLabel(s models.Source) string {
	if s.Handle != "" {
		return s.Platform + " " + s.Handle
	}
	return s.Platform
}
