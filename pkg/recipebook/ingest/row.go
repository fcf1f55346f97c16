package ingest

// MinColumns is the number of columns a data row must have. Column 0 is
// ignored; columns 1-4 hold category, name, ingredients and steps.
const MinColumns = 5

// Fields holds the trimmed cells of one data row.
type Fields struct {
	Category    string
	Name        string
	Ingredients string
	Steps       string
}

// ExtractRow pulls the fixed-position fields out of a raw row. It reports
// false when the row is too short to carry them.
func ExtractRow(row []string) (Fields, bool) {
	if len(row) < MinColumns {
		return Fields{}, false
	}

	return Fields{
		Category:    trimSpace(row[1]),
		Name:        trimSpace(row[2]),
		Ingredients: trimSpace(row[3]),
		Steps:       trimSpace(row[4]),
	}, true
}

// Named reports whether both the category and the recipe name are present.
func (f Fields) Named() bool {
	return f.Category != "" && f.Name != ""
}
