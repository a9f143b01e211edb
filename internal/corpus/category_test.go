package corpus

import "testing"

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input   string
		want    Category
		wantErr bool
	}{
		{"science", Science, false},
		{"tech", Technology, false},
		{"body", HumanBody, false},
		{"Human Body", HumanBody, false},
		{"human-body", HumanBody, false},
		{"human_body", HumanBody, false},
		{"ALL", All, false},
		{"Geography", Geography, false},
		{"sports", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseCategory(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseCategory(%q): expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseCategory(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseCategory(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestAllCategories(t *testing.T) {
	cats := AllCategories()
	if len(cats) != 8 {
		t.Errorf("expected 8 categories, got %d", len(cats))
	}
	for _, c := range cats {
		if c.IsWildcard() {
			t.Error("wildcard must not be listed as a concrete category")
		}
	}
}

func TestCategorySetNormalize(t *testing.T) {
	if got := CategorySet(0).Normalize(); got != WildcardSet() {
		t.Errorf("empty set should normalize to wildcard, got %s", got)
	}
	mixed := NewCategorySet(All, Science)
	if got := mixed.Normalize(); got != WildcardSet() {
		t.Errorf("mixed set should normalize to wildcard, got %s", got)
	}
	plain := NewCategorySet(History, Science)
	if got := plain.Normalize(); got != plain {
		t.Errorf("concrete set should be unchanged, got %s", got)
	}
}

func TestCategorySetConcrete(t *testing.T) {
	if got := WildcardSet().Concrete(); len(got) != 8 {
		t.Errorf("wildcard should expand to 8 categories, got %d", len(got))
	}
	got := NewCategorySet(Technology, Science).Concrete()
	if len(got) != 2 || got[0] != Science || got[1] != Technology {
		t.Errorf("expected canonical order [Science Technology], got %v", got)
	}
}

func TestLevelSet(t *testing.T) {
	s := NewLevelSet(Level3, Level1)
	if !s.Has(Level1) || s.Has(Level2) || !s.Has(Level3) {
		t.Errorf("unexpected membership %s", s)
	}
	if s.Without(Level1).Without(Level3).Empty() != true {
		t.Error("expected empty set after removing all members")
	}
	if got := s.Tags(); len(got) != 2 || got[0] != "level1" || got[1] != "level3" {
		t.Errorf("Tags() = %v", got)
	}
	if s.With(Level(9)) != s {
		t.Error("invalid level must not change the set")
	}
	if AllLevelSet().Len() != 3 {
		t.Errorf("expected 3 levels, got %d", AllLevelSet().Len())
	}
}

func TestParseLevel(t *testing.T) {
	for input, want := range map[string]Level{"level1": Level1, "2": Level2, "Hard": Level3, " medium ": Level2} {
		got, err := ParseLevel(input)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", input, got, err, want)
		}
	}
	if _, err := ParseLevel("expert"); err == nil {
		t.Error("expected error for unknown level")
	}
}
