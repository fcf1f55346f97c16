// Package backup defines the import document consumed by the recipe app:
// four flat collections cross-referenced by integer ids plus run metadata.
package backup

import (
	"bytes"
	"encoding/json"
)

// Version is the only document version the app understands.
const Version = 1

// Document is the top-level backup file.
type Document struct {
	Version     int          `json:"version"`
	ExportTime  int64        `json:"exportTime"`
	Categories  []Category   `json:"categories"`
	Recipes     []Recipe     `json:"recipes"`
	Ingredients []Ingredient `json:"ingredients"`
	Steps       []Step       `json:"steps"`
}

// Category groups recipes. Name is unique within a document.
type Category struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	SortOrder int    `json:"sortOrder"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// Recipe references its Category by id.
type Recipe struct {
	ID               int64         `json:"id"`
	Name             string        `json:"name"`
	CategoryID       int64         `json:"categoryId"`
	CoverImagePath   *string       `json:"coverImagePath"`
	CoverImageBase64 OptionalImage `json:"coverImageBase64,omitzero"`
	ClickCount       int           `json:"clickCount"`
	IsFavorite       bool          `json:"isFavorite"`
	CreatedAt        int64         `json:"createdAt"`
	UpdatedAt        int64         `json:"updatedAt"`
}

// Ingredient belongs to one Recipe. SortOrder is its 0-based position.
type Ingredient struct {
	ID        int64  `json:"id"`
	RecipeID  int64  `json:"recipeId"`
	Name      string `json:"name"`
	Amount    string `json:"amount"`
	SortOrder int    `json:"sortOrder"`
}

// Step belongs to one Recipe. StepNumber is 1-based, SortOrder 0-based.
type Step struct {
	ID          int64   `json:"id"`
	RecipeID    int64   `json:"recipeId"`
	Description string  `json:"description"`
	ImagePath   *string `json:"imagePath"`
	StepNumber  int     `json:"stepNumber"`
	SortOrder   int     `json:"sortOrder"`
}

// OptionalImage is a cover encoded as a data URI. It has three states:
// not requested (field omitted), requested but missing (null), and present.
type OptionalImage struct {
	Requested bool
	DataURI   string
}

// NoCover is the requested-but-missing state.
var NoCover = OptionalImage{Requested: true}

// Cover returns a present image.
func Cover(dataURI string) OptionalImage {
	return OptionalImage{Requested: true, DataURI: dataURI}
}

// IsZero reports whether the field should be left out of the document.
func (o OptionalImage) IsZero() bool { return !o.Requested }

// Valid reports whether an image is attached.
func (o OptionalImage) Valid() bool { return o.DataURI != "" }

// MarshalJSON encodes a missing image as null.
func (o OptionalImage) MarshalJSON() ([]byte, error) {
	if o.DataURI == "" {
		return []byte("null"), nil
	}
	return json.Marshal(o.DataURI)
}

// UnmarshalJSON marks the field as requested whenever the key is present.
func (o *OptionalImage) UnmarshalJSON(data []byte) error {
	o.Requested = true
	o.DataURI = ""
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	return json.Unmarshal(data, &o.DataURI)
}

// New returns an empty document stamped with the given export time.
// Collections are non-nil so they encode as [] rather than null.
func New(exportTime int64) Document {
	return Document{
		Version:     Version,
		ExportTime:  exportTime,
		Categories:  []Category{},
		Recipes:     []Recipe{},
		Ingredients: []Ingredient{},
		Steps:       []Step{},
	}
}
