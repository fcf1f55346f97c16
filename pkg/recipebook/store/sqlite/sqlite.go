package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/recipebook/pkg/recipebook/backup"
	"github.com/cognicore/recipebook/pkg/recipebook/internalerr"
	"github.com/cognicore/recipebook/pkg/recipebook/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode and foreign keys enabled
// and creates the recipe tables if needed.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	// A single connection keeps the foreign_keys pragma in effect for every
	// statement.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist. Table and column names
// match the app's own database.
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS categories (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	sortOrder INTEGER NOT NULL DEFAULT 0,
	createdAt INTEGER NOT NULL,
	updatedAt INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS recipes (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	categoryId INTEGER NOT NULL,
	coverImagePath TEXT,
	coverImageBase64 TEXT,
	clickCount INTEGER NOT NULL DEFAULT 0,
	isFavorite INTEGER NOT NULL DEFAULT 0,
	createdAt INTEGER NOT NULL,
	updatedAt INTEGER NOT NULL,
	FOREIGN KEY(categoryId) REFERENCES categories(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS index_recipes_categoryId ON recipes(categoryId);

CREATE TABLE IF NOT EXISTS ingredients (
	id INTEGER PRIMARY KEY,
	recipeId INTEGER NOT NULL,
	name TEXT NOT NULL,
	amount TEXT NOT NULL,
	sortOrder INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY(recipeId) REFERENCES recipes(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS index_ingredients_recipeId ON ingredients(recipeId);

CREATE TABLE IF NOT EXISTS steps (
	id INTEGER PRIMARY KEY,
	recipeId INTEGER NOT NULL,
	description TEXT NOT NULL,
	imagePath TEXT,
	stepNumber INTEGER NOT NULL,
	sortOrder INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY(recipeId) REFERENCES recipes(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS index_steps_recipeId ON steps(recipeId);

CREATE TABLE IF NOT EXISTS import_runs (
	id TEXT PRIMARY KEY,
	export_time INTEGER NOT NULL,
	imported_at TEXT NOT NULL,
	categories INTEGER NOT NULL,
	recipes INTEGER NOT NULL,
	ingredients INTEGER NOT NULL,
	steps INTEGER NOT NULL
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// Import replaces all recipe data with doc
func (s *sqliteStore) Import(ctx context.Context, runID string, doc backup.Document) error {
	if err := backup.Verify(doc); err != nil {
		return fmt.Errorf("%w: %w", internalerr.ErrInvalidInput, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Children first so the cascade has nothing left to do.
	for _, table := range []string{"steps", "ingredients", "recipes", "categories"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if err := insertCategories(ctx, tx, doc.Categories); err != nil {
		return err
	}
	if err := insertRecipes(ctx, tx, doc.Recipes); err != nil {
		return err
	}
	if err := insertIngredients(ctx, tx, doc.Ingredients); err != nil {
		return err
	}
	if err := insertSteps(ctx, tx, doc.Steps); err != nil {
		return err
	}

	c := store.CountsOf(doc)
	_, err = tx.ExecContext(ctx, `
INSERT INTO import_runs (id, export_time, imported_at, categories, recipes, ingredients, steps)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, doc.ExportTime, time.Now().UTC().Format(time.RFC3339Nano),
		c.Categories, c.Recipes, c.Ingredients, c.Steps,
	)
	if err != nil {
		return fmt.Errorf("record import run: %w", err)
	}

	return tx.Commit()
}

func insertCategories(ctx context.Context, tx *sql.Tx, cats []backup.Category) error {
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO categories (id, name, sortOrder, createdAt, updatedAt) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range cats {
		if _, err := stmt.ExecContext(ctx, c.ID, c.Name, c.SortOrder, c.CreatedAt, c.UpdatedAt); err != nil {
			return fmt.Errorf("insert category %d: %w", c.ID, err)
		}
	}
	return nil
}

func insertRecipes(ctx context.Context, tx *sql.Tx, recipes []backup.Recipe) error {
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO recipes (id, name, categoryId, coverImagePath, coverImageBase64, clickCount, isFavorite, createdAt, updatedAt)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range recipes {
		var cover sql.NullString
		if r.CoverImageBase64.Valid() {
			cover = sql.NullString{String: r.CoverImageBase64.DataURI, Valid: true}
		}
		_, err := stmt.ExecContext(ctx,
			r.ID, r.Name, r.CategoryID, nullString(r.CoverImagePath), cover,
			r.ClickCount, r.IsFavorite, r.CreatedAt, r.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert recipe %d: %w", r.ID, err)
		}
	}
	return nil
}

func insertIngredients(ctx context.Context, tx *sql.Tx, ings []backup.Ingredient) error {
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO ingredients (id, recipeId, name, amount, sortOrder) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, ing := range ings {
		if _, err := stmt.ExecContext(ctx, ing.ID, ing.RecipeID, ing.Name, ing.Amount, ing.SortOrder); err != nil {
			return fmt.Errorf("insert ingredient %d: %w", ing.ID, err)
		}
	}
	return nil
}

func insertSteps(ctx context.Context, tx *sql.Tx, steps []backup.Step) error {
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO steps (id, recipeId, description, imagePath, stepNumber, sortOrder) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, st := range steps {
		_, err := stmt.ExecContext(ctx, st.ID, st.RecipeID, st.Description, nullString(st.ImagePath), st.StepNumber, st.SortOrder)
		if err != nil {
			return fmt.Errorf("insert step %d: %w", st.ID, err)
		}
	}
	return nil
}

// Categories returns all categories ordered by sortOrder
func (s *sqliteStore) Categories(ctx context.Context) ([]backup.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, name, sortOrder, createdAt, updatedAt FROM categories ORDER BY sortOrder, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []backup.Category
	for rows.Next() {
		var c backup.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

const recipeColumns = `id, name, categoryId, coverImagePath, coverImageBase64, clickCount, isFavorite, createdAt, updatedAt`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecipe(sc scanner) (backup.Recipe, error) {
	var (
		r     backup.Recipe
		path  sql.NullString
		cover sql.NullString
	)
	err := sc.Scan(&r.ID, &r.Name, &r.CategoryID, &path, &cover, &r.ClickCount, &r.IsFavorite, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return backup.Recipe{}, err
	}
	if path.Valid {
		r.CoverImagePath = &path.String
	}
	if cover.Valid {
		r.CoverImageBase64 = backup.Cover(cover.String)
	}
	return r, nil
}

// Recipes returns the recipes of one category in id order
func (s *sqliteStore) Recipes(ctx context.Context, categoryID int64) ([]backup.Recipe, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes WHERE categoryId = ? ORDER BY id`, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipes []backup.Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}
	return recipes, rows.Err()
}

// RecipeDetails loads a recipe with its ingredients and steps
func (s *sqliteStore) RecipeDetails(ctx context.Context, recipeID int64) (store.RecipeDetails, bool, error) {
	r, err := scanRecipe(s.db.QueryRowContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes WHERE id = ?`, recipeID))
	if errors.Is(err, sql.ErrNoRows) {
		return store.RecipeDetails{}, false, nil
	}
	if err != nil {
		return store.RecipeDetails{}, false, err
	}

	details := store.RecipeDetails{Recipe: r}

	ingRows, err := s.db.QueryContext(ctx, `
SELECT id, recipeId, name, amount, sortOrder FROM ingredients WHERE recipeId = ? ORDER BY sortOrder`, recipeID)
	if err != nil {
		return store.RecipeDetails{}, false, err
	}
	defer ingRows.Close()
	for ingRows.Next() {
		var ing backup.Ingredient
		if err := ingRows.Scan(&ing.ID, &ing.RecipeID, &ing.Name, &ing.Amount, &ing.SortOrder); err != nil {
			return store.RecipeDetails{}, false, err
		}
		details.Ingredients = append(details.Ingredients, ing)
	}
	if err := ingRows.Err(); err != nil {
		return store.RecipeDetails{}, false, err
	}
	ingRows.Close()

	stepRows, err := s.db.QueryContext(ctx, `
SELECT id, recipeId, description, imagePath, stepNumber, sortOrder FROM steps WHERE recipeId = ? ORDER BY sortOrder`, recipeID)
	if err != nil {
		return store.RecipeDetails{}, false, err
	}
	defer stepRows.Close()
	for stepRows.Next() {
		var (
			st  backup.Step
			img sql.NullString
		)
		if err := stepRows.Scan(&st.ID, &st.RecipeID, &st.Description, &img, &st.StepNumber, &st.SortOrder); err != nil {
			return store.RecipeDetails{}, false, err
		}
		if img.Valid {
			st.ImagePath = &img.String
		}
		details.Steps = append(details.Steps, st)
	}
	if err := stepRows.Err(); err != nil {
		return store.RecipeDetails{}, false, err
	}

	return details, true, nil
}

// Counts returns the number of rows per entity table
func (s *sqliteStore) Counts(ctx context.Context) (store.Counts, error) {
	var c store.Counts
	err := s.db.QueryRowContext(ctx, `
SELECT
	(SELECT COUNT(*) FROM categories),
	(SELECT COUNT(*) FROM recipes),
	(SELECT COUNT(*) FROM ingredients),
	(SELECT COUNT(*) FROM steps)`).Scan(&c.Categories, &c.Recipes, &c.Ingredients, &c.Steps)
	return c, err
}

// LastImport returns the most recent import run
func (s *sqliteStore) LastImport(ctx context.Context) (store.ImportRun, bool, error) {
	var (
		run        store.ImportRun
		importedAt string
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, export_time, imported_at, categories, recipes, ingredients, steps
FROM import_runs ORDER BY rowid DESC LIMIT 1`).Scan(
		&run.ID, &run.ExportTime, &importedAt,
		&run.Counts.Categories, &run.Counts.Recipes, &run.Counts.Ingredients, &run.Counts.Steps,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ImportRun{}, false, nil
	}
	if err != nil {
		return store.ImportRun{}, false, err
	}

	run.ImportedAt, err = time.Parse(time.RFC3339Nano, importedAt)
	if err != nil {
		return store.ImportRun{}, false, fmt.Errorf("parse imported_at: %w", err)
	}
	return run, true, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
