package memstore

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/cognicore/recipebook/pkg/recipebook/backup"
	"github.com/cognicore/recipebook/pkg/recipebook/internalerr"
	"github.com/cognicore/recipebook/pkg/recipebook/store"
)

// Store is an in-memory implementation of store.Store for tests and dry runs.
type Store struct {
	mu   sync.RWMutex
	doc  backup.Document
	runs []store.ImportRun
	now  func() time.Time
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		doc: backup.New(0),
		now: time.Now,
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// Import implements store.Store.
func (s *Store) Import(ctx context.Context, runID string, doc backup.Document) error {
	if err := backup.Verify(doc); err != nil {
		return fmt.Errorf("%w: %w", internalerr.ErrInvalidInput, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc = backup.Document{
		Version:     doc.Version,
		ExportTime:  doc.ExportTime,
		Categories:  slices.Clone(doc.Categories),
		Recipes:     slices.Clone(doc.Recipes),
		Ingredients: slices.Clone(doc.Ingredients),
		Steps:       slices.Clone(doc.Steps),
	}
	s.runs = append(s.runs, store.ImportRun{
		ID:         runID,
		ExportTime: doc.ExportTime,
		ImportedAt: s.now().UTC(),
		Counts:     store.CountsOf(doc),
	})
	return nil
}

// Categories implements store.Store.
func (s *Store) Categories(ctx context.Context) ([]backup.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cats := slices.Clone(s.doc.Categories)
	slices.SortStableFunc(cats, func(a, b backup.Category) int { return a.SortOrder - b.SortOrder })
	return cats, nil
}

// Recipes implements store.Store.
func (s *Store) Recipes(ctx context.Context, categoryID int64) ([]backup.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []backup.Recipe
	for _, r := range s.doc.Recipes {
		if r.CategoryID == categoryID {
			out = append(out, r)
		}
	}
	return out, nil
}

// RecipeDetails implements store.Store.
func (s *Store) RecipeDetails(ctx context.Context, recipeID int64) (store.RecipeDetails, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := slices.IndexFunc(s.doc.Recipes, func(r backup.Recipe) bool { return r.ID == recipeID })
	if idx < 0 {
		return store.RecipeDetails{}, false, nil
	}

	details := store.RecipeDetails{Recipe: s.doc.Recipes[idx]}
	for _, ing := range s.doc.Ingredients {
		if ing.RecipeID == recipeID {
			details.Ingredients = append(details.Ingredients, ing)
		}
	}
	for _, st := range s.doc.Steps {
		if st.RecipeID == recipeID {
			details.Steps = append(details.Steps, st)
		}
	}
	slices.SortStableFunc(details.Ingredients, func(a, b backup.Ingredient) int { return a.SortOrder - b.SortOrder })
	slices.SortStableFunc(details.Steps, func(a, b backup.Step) int { return a.SortOrder - b.SortOrder })
	return details, true, nil
}

// Counts implements store.Store.
func (s *Store) Counts(ctx context.Context) (store.Counts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return store.CountsOf(s.doc), nil
}

// LastImport implements store.Store.
func (s *Store) LastImport(ctx context.Context) (store.ImportRun, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.runs) == 0 {
		return store.ImportRun{}, false, nil
	}
	return s.runs[len(s.runs)-1], true, nil
}

var _ store.Store = (*Store)(nil)
