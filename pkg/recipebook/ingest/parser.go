package ingest

import (
	"regexp"
	"strings"
	"unicode"
)

// DefaultAmount is used when an ingredient line carries no quantity.
const DefaultAmount = "适量"

// Ingredient is one parsed line of an ingredient cell.
type Ingredient struct {
	Name   string
	Amount string
}

var (
	// newline, ASCII/full-width comma and the ideographic comma
	ingredientDelims = regexp.MustCompile(`[,，、\n]+`)

	// The shortest leading name, then a run of colons or whitespace, then the
	// rest as the amount. "土豆 丝 500g" therefore yields name "土豆".
	ingredientLine = regexp.MustCompile(`^(.+?)[:：\s\v\x1c-\x1f\x{85}\p{Z}]+(.+)$`)

	stepNumbering = regexp.MustCompile(`^\p{Nd}+[.、:：\s\v\x1c-\x1f\x{85}\p{Z}]+`)
)

// isSpace also accepts the ASCII separator controls 0x1c-0x1f, which
// unicode.IsSpace does not.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r >= 0x1c && r <= 0x1f
}

func trimSpace(s string) string {
	return strings.TrimFunc(s, isSpace)
}

// ParseIngredients splits an ingredient cell into name/amount pairs in input
// order. Blank input yields an empty slice.
func ParseIngredients(text string) []Ingredient {
	text = trimSpace(text)
	if text == "" {
		return []Ingredient{}
	}

	ingredients := []Ingredient{}
	for _, line := range ingredientDelims.Split(text, -1) {
		line = trimSpace(line)
		if line == "" {
			continue
		}

		name, amount := line, DefaultAmount
		if m := ingredientLine.FindStringSubmatch(line); m != nil {
			name = trimSpace(m[1])
			amount = trimSpace(m[2])
		}

		if name == "" {
			continue
		}
		ingredients = append(ingredients, Ingredient{Name: name, Amount: amount})
	}

	return ingredients
}

// ParseSteps splits a step cell on newlines and strips leading numbering such
// as "1. ", "2、" or "3:". Commas never split a step.
func ParseSteps(text string) []string {
	text = trimSpace(text)
	if text == "" {
		return []string{}
	}

	steps := []string{}
	for _, line := range strings.Split(text, "\n") {
		line = trimSpace(line)
		if line == "" {
			continue
		}

		line = trimSpace(stepNumbering.ReplaceAllString(line, ""))
		if line != "" {
			steps = append(steps, line)
		}
	}

	return steps
}
