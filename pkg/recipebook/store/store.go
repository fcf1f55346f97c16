package store

import (
	"context"
	"time"

	"github.com/cognicore/recipebook/pkg/recipebook/backup"
)

// Store is a local recipe store that accepts whole backup documents.
type Store interface {
	Close() error

	// Import replaces the store contents with doc in one transaction and
	// records the run. Documents failing backup.Verify are rejected.
	Import(ctx context.Context, runID string, doc backup.Document) error

	Categories(ctx context.Context) ([]backup.Category, error)
	Recipes(ctx context.Context, categoryID int64) ([]backup.Recipe, error)
	RecipeDetails(ctx context.Context, recipeID int64) (RecipeDetails, bool, error)
	Counts(ctx context.Context) (Counts, error)
	LastImport(ctx context.Context) (ImportRun, bool, error)
}

// RecipeDetails is a recipe with its ingredients and steps in sort order.
type RecipeDetails struct {
	Recipe      backup.Recipe
	Ingredients []backup.Ingredient
	Steps       []backup.Step
}

// Counts holds row counts per entity.
type Counts struct {
	Categories  int
	Recipes     int
	Ingredients int
	Steps       int
}

// CountsOf returns the entity counts of a document.
func CountsOf(doc backup.Document) Counts {
	return Counts{
		Categories:  len(doc.Categories),
		Recipes:     len(doc.Recipes),
		Ingredients: len(doc.Ingredients),
		Steps:       len(doc.Steps),
	}
}

// ImportRun describes one completed import.
type ImportRun struct {
	ID         string
	ExportTime int64
	ImportedAt time.Time
	Counts     Counts
}
