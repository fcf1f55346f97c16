package transform

import (
	"fmt"
	"io"
	"strings"
)

// ReasonUnnamed is recorded for rows missing a category or recipe name.
const ReasonUnnamed = "category or name is empty"

// SkippedRow identifies a data row that produced no recipe. Row is the
// 1-based sheet row number.
type SkippedRow struct {
	Row    int
	Reason string
}

// MissingCover names a recipe for which no cover image was found.
type MissingCover struct {
	Category string
	Recipe   string
}

// CoverGroup lists missing covers of one category.
type CoverGroup struct {
	Category string
	Recipes  []string
}

// Report describes a run. It has no influence on the document.
type Report struct {
	Categories  int
	Recipes     int
	Ingredients int
	Steps       int

	// ShortRows counts rows with too few columns; they are not diagnosed.
	ShortRows int
	Skipped   []SkippedRow

	CoversRequested bool
	CoversFound     int
	MissingCovers   []MissingCover
}

// MissingByCategory groups missing covers by category in first-seen order.
func (r *Report) MissingByCategory() []CoverGroup {
	var groups []CoverGroup
	index := make(map[string]int)
	for _, m := range r.MissingCovers {
		i, ok := index[m.Category]
		if !ok {
			i = len(groups)
			index[m.Category] = i
			groups = append(groups, CoverGroup{Category: m.Category})
		}
		groups[i].Recipes = append(groups[i].Recipes, m.Recipe)
	}
	return groups
}

// WriteSummary prints the human-readable end-of-run summary.
func (r *Report) WriteSummary(w io.Writer, output string) error {
	rule := strings.Repeat("=", 50)

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\nConversion complete\n", rule)
	fmt.Fprintf(&b, "  - categories:  %d\n", r.Categories)
	fmt.Fprintf(&b, "  - recipes:     %d\n", r.Recipes)
	if r.CoversRequested {
		fmt.Fprintf(&b, "  - covers:      %d/%d\n", r.CoversFound, r.Recipes)
	}
	fmt.Fprintf(&b, "  - ingredients: %d\n", r.Ingredients)
	fmt.Fprintf(&b, "  - steps:       %d\n", r.Steps)
	if len(r.Skipped) > 0 {
		fmt.Fprintf(&b, "  - skipped:     %d\n", len(r.Skipped))
	}
	if output != "" {
		fmt.Fprintf(&b, "  - output:      %s\n", output)
	}

	if len(r.MissingCovers) > 0 {
		fmt.Fprintf(&b, "\n%s\nRecipes without a cover (%d):\n%s\n", rule, len(r.MissingCovers), strings.Repeat("-", 50))
		for _, g := range r.MissingByCategory() {
			fmt.Fprintf(&b, "\n【%s】\n", g.Category)
			for _, name := range g.Recipes {
				fmt.Fprintf(&b, "  - %s\n", name)
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
