package ingest

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseIngredientsBlank(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\n", ",,，、"} {
		got := ParseIngredients(in)
		if len(got) != 0 {
			t.Errorf("ParseIngredients(%q) should be empty, got %v", in, got)
		}
	}
}

func TestParseIngredientsMixedDelimiters(t *testing.T) {
	got := ParseIngredients("鸡蛋 2个, 盐")
	want := []Ingredient{
		{Name: "鸡蛋", Amount: "2个"},
		{Name: "盐", Amount: DefaultAmount},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseIngredientsAllDelimiters(t *testing.T) {
	got := ParseIngredients("鸡蛋 2个\n牛奶 200ml，面粉、糖,\n\n葱")
	want := []Ingredient{
		{Name: "鸡蛋", Amount: "2个"},
		{Name: "牛奶", Amount: "200ml"},
		{Name: "面粉", Amount: DefaultAmount},
		{Name: "糖", Amount: DefaultAmount},
		{Name: "葱", Amount: DefaultAmount},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseIngredientsColonSeparators(t *testing.T) {
	cases := map[string]Ingredient{
		"盐:5g":        {Name: "盐", Amount: "5g"},
		"糖：10克":       {Name: "糖", Amount: "10克"},
		"葱  ：  少许":    {Name: "葱", Amount: "少许"},
		"酱油\t1勺":      {Name: "酱油", Amount: "1勺"},
		"生抽　两勺": {Name: "生抽", Amount: "两勺"},
	}
	for in, want := range cases {
		got := ParseIngredients(in)
		if len(got) != 1 || got[0] != want {
			t.Errorf("ParseIngredients(%q) = %v, want [%v]", in, got, want)
		}
	}
}

// The first separator run ends the name, even for multi-word names.
func TestParseIngredientsShortestNameWins(t *testing.T) {
	cases := map[string]Ingredient{
		"鸡蛋 2 个":       {Name: "鸡蛋", Amount: "2 个"},
		"土豆 丝 500g":    {Name: "土豆", Amount: "丝 500g"},
		"olive oil  2 tbsp": {Name: "olive", Amount: "oil  2 tbsp"},
		"盐: 少许 : 备用":   {Name: "盐", Amount: "少许 : 备用"},
	}
	for in, want := range cases {
		got := ParseIngredients(in)
		if len(got) != 1 || got[0] != want {
			t.Errorf("ParseIngredients(%q) = %v, want [%v]", in, got, want)
		}
	}
}

func TestParseIngredientsNoSeparatorMatch(t *testing.T) {
	got := ParseIngredients(":5g")
	if len(got) != 1 || got[0].Name != ":5g" || got[0].Amount != DefaultAmount {
		t.Errorf("Expected whole line as name, got %v", got)
	}
}

func TestParseIngredientsCountMatchesSegments(t *testing.T) {
	text := "a 1, b 2，c、d\ne 5"
	got := ParseIngredients(text)
	if len(got) != 5 {
		t.Fatalf("Expected 5 ingredients, got %d: %v", len(got), got)
	}
	for i, ing := range got {
		if ing.Name == "" {
			t.Errorf("Ingredient %d has empty name", i)
		}
	}
}

func TestParseStepsBlank(t *testing.T) {
	for _, in := range []string{"", "   ", "\n \n"} {
		if got := ParseSteps(in); len(got) != 0 {
			t.Errorf("ParseSteps(%q) should be empty, got %v", in, got)
		}
	}
}

func TestParseStepsStripsLeadingNumbering(t *testing.T) {
	got := ParseSteps("1. 打蛋\n2、炒锅热油\n静置5分钟")
	want := []string{"打蛋", "炒锅热油", "静置5分钟"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseStepsNumberingVariants(t *testing.T) {
	got := ParseSteps("3:加盐\n4：出锅\n10. 装盘\n11 撒葱花\n12.、 完成")
	want := []string{"加盐", "出锅", "装盘", "撒葱花", "完成"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseStepsOnlyLeadingPattern(t *testing.T) {
	got := ParseSteps("加入1. 5勺盐\n2023年的做法")
	want := []string{"加入1. 5勺盐", "2023年的做法"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseStepsSingleLineKeepsInlineNumbers(t *testing.T) {
	got := ParseSteps("1.打蛋 2.煎")
	want := []string{"打蛋 2.煎"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseStepsCommasDoNotSplit(t *testing.T) {
	got := ParseSteps("炒，加盐, 出锅")
	if len(got) != 1 || got[0] != "炒，加盐, 出锅" {
		t.Errorf("Commas should not split steps, got %v", got)
	}
}

func TestParseStepsDropsNumberOnlyLines(t *testing.T) {
	got := ParseSteps("1.\n2. 煎\r\n3、")
	if len(got) != 1 || got[0] != "煎" {
		t.Errorf("Expected [煎], got %v", got)
	}
}

func TestParseStepsPreservesOrder(t *testing.T) {
	lines := []string{"c", "a", "b"}
	got := ParseSteps(strings.Join(lines, "\n"))
	if !reflect.DeepEqual(got, lines) {
		t.Errorf("Order changed: got %v, want %v", got, lines)
	}
}

func TestParseIngredientsControlSeparators(t *testing.T) {
	cases := map[string]Ingredient{
		"x\u0085y":   {Name: "x", Amount: "y"},
		"盐\x1c5g":    {Name: "盐", Amount: "5g"},
		"\x1f糖 10克\x1e": {Name: "糖", Amount: "10克"},
	}
	for in, want := range cases {
		got := ParseIngredients(in)
		if len(got) != 1 || got[0] != want {
			t.Errorf("ParseIngredients(%q) = %v, want [%v]", in, got, want)
		}
	}
}

func TestParseStepsControlSeparators(t *testing.T) {
	got := ParseSteps("1\u0085打蛋\n2\x1d煎")
	want := []string{"打蛋", "煎"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
