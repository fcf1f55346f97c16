// Package transform turns spreadsheet rows into a backup document.
//
// Rows flow one way: raw cells → ingest parsers → id assignment → document.
// All counters and the category name index live in a per-run builder, so a
// Pipeline can be reused and two runs over the same rows with the same clock
// produce identical documents.
package transform

import (
	"time"

	"go.uber.org/zap"

	"github.com/cognicore/recipebook/pkg/recipebook/backup"
	"github.com/cognicore/recipebook/pkg/recipebook/ingest"
)

// CoverFinder resolves a recipe name to an encoded cover image.
type CoverFinder interface {
	FindAndCompress(recipeName string) (dataURI string, found bool)
}

// Options configures a Pipeline.
type Options struct {
	// Covers enables cover lookup. When nil, recipes carry no
	// coverImageBase64 field at all.
	Covers CoverFinder
	// StripHTML flattens rich-text cells before parsing.
	StripHTML bool
	// Now supplies the run timestamp. Defaults to time.Now.
	Now    func() time.Time
	Logger *zap.Logger
}

// Pipeline converts rows into documents.
type Pipeline struct {
	covers    CoverFinder
	stripHTML bool
	now       func() time.Time
	logger    *zap.Logger
}

// NewPipeline creates a pipeline with the given options.
func NewPipeline(opts Options) *Pipeline {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Pipeline{
		covers:    opts.Covers,
		stripHTML: opts.StripHTML,
		now:       opts.Now,
		logger:    opts.Logger,
	}
}

// Run processes rows in order. rows[0] is the header and is never read.
// Malformed rows are skipped and recorded in the report; they never shift
// ids or references of other rows.
func (p *Pipeline) Run(rows [][]string) (backup.Document, *Report) {
	b := newBuilder(p.now().UnixMilli(), p.covers != nil)

	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if p.stripHTML {
			row = ingest.FlattenRow(row)
		}
		b.addRow(p, i+1, row)
	}

	b.report.Categories = len(b.doc.Categories)
	b.report.Recipes = len(b.doc.Recipes)
	b.report.Ingredients = len(b.doc.Ingredients)
	b.report.Steps = len(b.doc.Steps)

	p.logger.Info("transform complete",
		zap.Int("categories", b.report.Categories),
		zap.Int("recipes", b.report.Recipes),
		zap.Int("ingredients", b.report.Ingredients),
		zap.Int("steps", b.report.Steps),
		zap.Int("skipped", len(b.report.Skipped)),
	)

	return b.doc, b.report
}

// builder owns the state of a single run.
type builder struct {
	ts         int64
	doc        backup.Document
	report     *Report
	categoryID map[string]int64

	nextCategory   int64
	nextRecipe     int64
	nextIngredient int64
	nextStep       int64
}

func newBuilder(ts int64, coversRequested bool) *builder {
	return &builder{
		ts:             ts,
		doc:            backup.New(ts),
		report:         &Report{CoversRequested: coversRequested},
		categoryID:     make(map[string]int64),
		nextCategory:   1,
		nextRecipe:     1,
		nextIngredient: 1,
		nextStep:       1,
	}
}

func (b *builder) addRow(p *Pipeline, rowNum int, row []string) {
	f, ok := ingest.ExtractRow(row)
	if !ok {
		b.report.ShortRows++
		return
	}
	if !f.Named() {
		b.report.Skipped = append(b.report.Skipped, SkippedRow{Row: rowNum, Reason: ReasonUnnamed})
		p.logger.Warn("row skipped", zap.Int("row", rowNum), zap.String("reason", ReasonUnnamed))
		return
	}

	catID := b.category(f.Category)

	recipeID := b.nextRecipe
	b.nextRecipe++

	recipe := backup.Recipe{
		ID:         recipeID,
		Name:       f.Name,
		CategoryID: catID,
		CreatedAt:  b.ts,
		UpdatedAt:  b.ts,
	}
	if p.covers != nil {
		recipe.CoverImageBase64 = backup.NoCover
		if uri, found := p.covers.FindAndCompress(f.Name); found {
			recipe.CoverImageBase64 = backup.Cover(uri)
			b.report.CoversFound++
		} else {
			b.report.MissingCovers = append(b.report.MissingCovers, MissingCover{Category: f.Category, Recipe: f.Name})
		}
	}
	b.doc.Recipes = append(b.doc.Recipes, recipe)

	for i, ing := range ingest.ParseIngredients(f.Ingredients) {
		b.doc.Ingredients = append(b.doc.Ingredients, backup.Ingredient{
			ID:        b.nextIngredient,
			RecipeID:  recipeID,
			Name:      ing.Name,
			Amount:    ing.Amount,
			SortOrder: i,
		})
		b.nextIngredient++
	}

	for i, desc := range ingest.ParseSteps(f.Steps) {
		b.doc.Steps = append(b.doc.Steps, backup.Step{
			ID:          b.nextStep,
			RecipeID:    recipeID,
			Description: desc,
			StepNumber:  i + 1,
			SortOrder:   i,
		})
		b.nextStep++
	}
}

// category returns the id for name, creating the category on first sight.
func (b *builder) category(name string) int64 {
	if id, ok := b.categoryID[name]; ok {
		return id
	}

	id := b.nextCategory
	b.nextCategory++
	b.categoryID[name] = id
	b.doc.Categories = append(b.doc.Categories, backup.Category{
		ID:        id,
		Name:      name,
		SortOrder: len(b.doc.Categories),
		CreatedAt: b.ts,
		UpdatedAt: b.ts,
	})
	return id
}
