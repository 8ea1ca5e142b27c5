package settings

import (
	"bytes"
	"strings"
	"testing"
)

func TestDefaultsAreNormalized(t *testing.T) {
	d := Defaults()
	if !d.HasFlavor(FlavorGFM) {
		t.Error("expected defaults to enable GFM")
	}
	if d.ParseCacheSize <= 0 {
		t.Errorf("expected positive default cache size, got %d", d.ParseCacheSize)
	}
}

func TestLoadFillsInMissingFields(t *testing.T) {
	r := strings.NewReader("theme: dark\n")
	s, err := Load(r)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Theme != ThemeDark {
		t.Errorf("expected explicit theme to survive, got %q", s.Theme)
	}
	if s.ParseCacheSize != Defaults().ParseCacheSize {
		t.Errorf("expected default cache size to fill in, got %d", s.ParseCacheSize)
	}
}

func TestLoadEmptyReaderReturnsDefaults(t *testing.T) {
	s, err := Load(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Theme != Defaults().Theme {
		t.Errorf("expected default theme for empty input, got %q", s.Theme)
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	original := Settings{
		Flavors:        []Flavor{FlavorCommonMark},
		ParseCacheSize: 64,
		Theme:          ThemeLight,
		ChunkLines:     50,
	}
	var buf bytes.Buffer
	if err := Save(&buf, original); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.ParseCacheSize != original.ParseCacheSize || loaded.Theme != original.Theme {
		t.Errorf("expected round-tripped settings to match, got %+v vs %+v", loaded, original)
	}
}

func TestLoadInvalidYAMLErrors(t *testing.T) {
	if _, err := Load(strings.NewReader("theme: [unclosed\n")); err == nil {
		t.Error("expected error decoding malformed yaml")
	}
}
