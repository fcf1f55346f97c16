package backup

import (
	"errors"
	"fmt"

	"github.com/cognicore/recipebook/pkg/recipebook/internalerr"
)

// Verify checks the structural invariants the app relies on when importing:
// ids unique and increasing, category names unique, contiguous sort orders,
// and every reference resolvable. All violations are returned joined; each
// wraps internalerr.ErrIntegrity.
func Verify(doc Document) error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", internalerr.ErrIntegrity, fmt.Sprintf(format, args...)))
	}

	if doc.Version != Version {
		fail("unsupported version %d", doc.Version)
	}

	categories := make(map[int64]struct{}, len(doc.Categories))
	names := make(map[string]int64, len(doc.Categories))
	var prev int64
	for i, c := range doc.Categories {
		if i > 0 && c.ID <= prev {
			fail("category id %d not increasing after %d", c.ID, prev)
		}
		prev = c.ID
		categories[c.ID] = struct{}{}

		if other, dup := names[c.Name]; dup {
			fail("category name %q used by ids %d and %d", c.Name, other, c.ID)
		}
		names[c.Name] = c.ID

		if c.SortOrder != i {
			fail("category %d has sortOrder %d, want %d", c.ID, c.SortOrder, i)
		}
	}

	recipes := make(map[int64]struct{}, len(doc.Recipes))
	prev = 0
	for i, r := range doc.Recipes {
		if i > 0 && r.ID <= prev {
			fail("recipe id %d not increasing after %d", r.ID, prev)
		}
		prev = r.ID
		recipes[r.ID] = struct{}{}

		if _, ok := categories[r.CategoryID]; !ok {
			fail("recipe %d references missing category %d", r.ID, r.CategoryID)
		}
	}

	ingredientPos := make(map[int64]int)
	prev = 0
	for i, ing := range doc.Ingredients {
		if i > 0 && ing.ID <= prev {
			fail("ingredient id %d not increasing after %d", ing.ID, prev)
		}
		prev = ing.ID

		if _, ok := recipes[ing.RecipeID]; !ok {
			fail("ingredient %d references missing recipe %d", ing.ID, ing.RecipeID)
		}
		if want := ingredientPos[ing.RecipeID]; ing.SortOrder != want {
			fail("ingredient %d has sortOrder %d, want %d", ing.ID, ing.SortOrder, want)
		}
		ingredientPos[ing.RecipeID]++
	}

	stepPos := make(map[int64]int)
	prev = 0
	for i, s := range doc.Steps {
		if i > 0 && s.ID <= prev {
			fail("step id %d not increasing after %d", s.ID, prev)
		}
		prev = s.ID

		if _, ok := recipes[s.RecipeID]; !ok {
			fail("step %d references missing recipe %d", s.ID, s.RecipeID)
		}
		want := stepPos[s.RecipeID]
		if s.SortOrder != want {
			fail("step %d has sortOrder %d, want %d", s.ID, s.SortOrder, want)
		}
		if s.StepNumber != s.SortOrder+1 {
			fail("step %d has stepNumber %d with sortOrder %d", s.ID, s.StepNumber, s.SortOrder)
		}
		stepPos[s.RecipeID]++
	}

	return errors.Join(errs...)
}
