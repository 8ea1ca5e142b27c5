// Package settings is the typed read/write surface over the
// pipeline-relevant options a host can persist (spec §2 "Settings
// Surface": flavor flags, cache size, theme selection). Where and how
// a host stores the YAML is its own concern — on-disk layout and
// settings-dialog UX are explicitly out of scope here — so this
// package only marshals to and from an io.Reader/io.Writer.
package settings

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/JamieLittle16/marco/internal/errtax"
)

// Flavor toggles one markdown dialect on or off, per spec §3.2
// "flavor set".
type Flavor string

const (
	FlavorCommonMark Flavor = "commonmark"
	FlavorGFM        Flavor = "gfm"
	FlavorMarco      Flavor = "marco"
)

// Theme selects a host-side presentation palette. The core never
// renders a theme itself (visual rendering is out of scope); it only
// carries the selection through to a host that does.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
	ThemeAuto  Theme = "auto"
)

// Settings is the typed configuration surface. Zero value is valid
// and resolves to Defaults() via Normalize.
type Settings struct {
	Flavors         []Flavor `yaml:"flavors"`
	ParseCacheSize  int      `yaml:"parse_cache_size"`
	Theme           Theme    `yaml:"theme"`
	ChunkLines      int      `yaml:"chunk_lines"`
	MaxThreads      int      `yaml:"max_threads"`
	ParallelRender  bool     `yaml:"parallel_rendering"`
}

// Defaults returns the settings a fresh host should start from.
func Defaults() Settings {
	return Settings{
		Flavors:        []Flavor{FlavorCommonMark, FlavorGFM, FlavorMarco},
		ParseCacheSize: 256,
		Theme:          ThemeAuto,
		ChunkLines:     100,
		MaxThreads:     0,
		ParallelRender: false,
	}
}

// Normalize fills in zero-valued fields with Defaults(), so a
// partially specified YAML document (or the Settings zero value)
// still behaves sensibly.
func (s *Settings) Normalize() {
	d := Defaults()
	if len(s.Flavors) == 0 {
		s.Flavors = d.Flavors
	}
	if s.ParseCacheSize <= 0 {
		s.ParseCacheSize = d.ParseCacheSize
	}
	if s.Theme == "" {
		s.Theme = d.Theme
	}
	if s.ChunkLines <= 0 {
		s.ChunkLines = d.ChunkLines
	}
}

// HasFlavor reports whether f is among the enabled flavors.
func (s Settings) HasFlavor(f Flavor) bool {
	for _, got := range s.Flavors {
		if got == f {
			return true
		}
	}
	return false
}

// Load decodes Settings from r as YAML and normalizes the result.
func Load(r io.Reader) (Settings, error) {
	var s Settings
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&s); err != nil && err != io.EOF {
		return Settings{}, errtax.Wrap(errtax.Invalid, "decode settings", err)
	}
	s.Normalize()
	return s, nil
}

// Save encodes s to w as YAML.
func Save(w io.Writer, s Settings) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(s); err != nil {
		return errtax.Wrap(errtax.Invalid, "encode settings", err)
	}
	return nil
}
