package sliceutil

import (
	"reflect"
	"testing"
)

func TestDeduplicateStrings(t *testing.T) {
	t.Parallel()

	identity := func(s string) string { return s }

	tests := []struct {
		name  string
		items []string
		want  []string
	}{
		{name: "no duplicates", items: []string{"新聞", "活動", "展覽"}, want: []string{"新聞", "活動", "展覽"}},
		{name: "keeps first occurrence", items: []string{"新聞", "成大", "新聞", "演唱會"}, want: []string{"新聞", "成大", "演唱會"}},
		{name: "all identical", items: []string{"音樂會", "音樂會", "音樂會"}, want: []string{"音樂會"}},
		{name: "single item", items: []string{"講座"}, want: []string{"講座"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Deduplicate(tt.items, identity)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Deduplicate(%v) = %v, want %v", tt.items, got, tt.want)
			}
		})
	}
}

func TestDeduplicateEmpty(t *testing.T) {
	t.Parallel()

	got := Deduplicate([]string{}, func(s string) string { return s })
	if len(got) != 0 {
		t.Errorf("Deduplicate(empty) = %v, want empty", got)
	}
}

func TestDeduplicateByField(t *testing.T) {
	t.Parallel()

	type entity struct {
		Text string
		Kind string
	}

	items := []entity{
		{Text: "台南", Kind: "location"},
		{Text: "演唱會", Kind: "keyword"},
		{Text: "台南", Kind: "keyword"},
	}

	got := Deduplicate(items, func(e entity) string { return e.Text })

	want := []entity{
		{Text: "台南", Kind: "location"},
		{Text: "演唱會", Kind: "keyword"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Deduplicate by Text = %v, want %v", got, want)
	}
}

func TestDeduplicateDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	items := []string{"a", "b", "a", "c"}
	original := append([]string(nil), items...)

	Deduplicate(items, func(s string) string { return s })

	if !reflect.DeepEqual(items, original) {
		t.Errorf("input mutated: %v, want %v", items, original)
	}
}
