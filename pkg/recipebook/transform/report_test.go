package transform

import (
	"strings"
	"testing"
)

func TestMissingByCategoryKeepsFirstSeenOrder(t *testing.T) {
	r := &Report{MissingCovers: []MissingCover{
		{Category: "午餐", Recipe: "a"},
		{Category: "早餐", Recipe: "b"},
		{Category: "午餐", Recipe: "c"},
	}}

	groups := r.MissingByCategory()
	if len(groups) != 2 {
		t.Fatalf("Expected 2 groups, got %+v", groups)
	}
	if groups[0].Category != "午餐" || strings.Join(groups[0].Recipes, ",") != "a,c" {
		t.Errorf("Unexpected first group %+v", groups[0])
	}
	if groups[1].Category != "早餐" || strings.Join(groups[1].Recipes, ",") != "b" {
		t.Errorf("Unexpected second group %+v", groups[1])
	}
}

func TestWriteSummary(t *testing.T) {
	r := &Report{
		Categories: 1, Recipes: 2, Ingredients: 1, Steps: 3,
		Skipped:         []SkippedRow{{Row: 4, Reason: ReasonUnnamed}},
		CoversRequested: true,
		CoversFound:     1,
		MissingCovers:   []MissingCover{{Category: "早餐", Recipe: "吐司"}},
	}

	var b strings.Builder
	if err := r.WriteSummary(&b, "out.json"); err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}
	out := b.String()

	for _, want := range []string{"recipes:     2", "covers:      1/2", "steps:       3", "skipped:     1", "out.json", "【早餐】", "  - 吐司"} {
		if !strings.Contains(out, want) {
			t.Errorf("Summary missing %q:\n%s", want, out)
		}
	}
}

func TestWriteSummaryWithoutCovers(t *testing.T) {
	var b strings.Builder
	if err := (&Report{Recipes: 2}).WriteSummary(&b, ""); err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}
	if strings.Contains(b.String(), "covers") || strings.Contains(b.String(), "without a cover") {
		t.Errorf("Cover lines should be omitted:\n%s", b.String())
	}
}
