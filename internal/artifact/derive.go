// Package artifact derives the Stardust input bundle from a catalogue
// snapshot. Derivation is pure: it reads the catalogue, never mutates it,
// and deriving twice from the same state yields identical artifacts.
//
// The bundle is five interlocking representations — the data table, the
// bands mapping, the extra-bands mapping, the parameter mapping and the run
// configuration — plus an optional EAZY translation mapping. They must stay
// mutually consistent, which is why they are all computed here from one
// snapshot rather than assembled incrementally.
package artifact

import (
	"fmt"
	"strings"

	"github.com/stardustkit/cataloguer/internal/catalogue"
)

// Column describes one column of the derived data table using FITS binary
// table vocabulary: TFORM "K" is a 64-bit integer, "E" a 32-bit float.
type Column struct {
	Name   string
	Format string // "K" or "E"
	Unit   string // empty for unitless columns
}

// Table is the rectangular data artifact. Rows are row-major in the same
// order as Columns; missing cells already hold the sentinel.
type Table struct {
	Columns []Column
	Rows    [][]float64
}

// Set is the complete derived artifact bundle for one catalogue.
type Set struct {
	Name       string   // catalogue name, file names derive from it
	Dir        string   // normalized storage directory
	Table      Table    // <name>.fits
	Bands      []string // <name>.bands, one line per code-bound group
	ExtraBands []string // <name>.bands_extra, one line per wavelength-bound group
	EazyBands  []string // <name>.eazy.bands, nil unless translation is enabled
	Param      []string // <name>.param, fixed three lines
	Config     string   // <name>.config, templated key/value document
}

// HasExtraBands reports whether any wavelength-bound group exists.
func (s Set) HasExtraBands() bool { return len(s.ExtraBands) > 0 }

// Derive computes the artifact bundle from the catalogue's current state.
func Derive(c *catalogue.Catalogue) Set {
	s := Set{
		Name:  c.Name(),
		Dir:   normalizeDir(c.Path()),
		Table: deriveTable(c),
		Param: []string{"id id", "z z", "Mstar None"},
	}

	for _, g := range c.Groups() {
		f := g.Filter()
		if f.IsWavelength() {
			s.ExtraBands = append(s.ExtraBands,
				fmt.Sprintf("%s %s %s", g.WlCol, g.FluxCol, g.ErrCol))
			continue
		}
		s.Bands = append(s.Bands,
			fmt.Sprintf("%d %s %s", f.Code(), g.FluxCol, g.ErrCol))
		if c.EazyTranslation() {
			s.EazyBands = append(s.EazyBands,
				fmt.Sprintf("%s F%d", g.FluxCol, f.Code()),
				fmt.Sprintf("%s E%d", g.ErrCol, f.Code()))
		}
	}

	s.Config = deriveConfig(c, s)
	return s
}

// deriveTable renders the target table and attaches column metadata.
func deriveTable(c *catalogue.Catalogue) Table {
	unit := c.Unit().String()

	cols := []Column{
		{Name: "id", Format: "K"},
		{Name: "ra", Format: "E"},
		{Name: "dec", Format: "E"},
		{Name: "z", Format: "E"},
	}
	for _, g := range c.Groups() {
		cols = append(cols,
			Column{Name: g.FluxCol, Format: "E", Unit: unit},
			Column{Name: g.ErrCol, Format: "E", Unit: unit})
		if g.HasWavelength() {
			cols = append(cols, Column{Name: g.WlCol, Format: "E", Unit: "um"})
		}
	}

	return Table{Columns: cols, Rows: c.Render()}
}

// normalizeDir rewrites a storage path to forward slashes with exactly one
// trailing slash, so that every path in the config document is stable
// regardless of how the caller spelled the directory.
func normalizeDir(dir string) string {
	dir = strings.ReplaceAll(dir, `\`, "/")
	if !strings.HasSuffix(dir, "/") {
		dir += "/"
	}
	return dir
}

// File name helpers. All bundle paths hang off Dir + Name.

func (s Set) TablePath() string      { return s.Dir + s.Name + ".fits" }
func (s Set) BandsPath() string      { return s.Dir + s.Name + ".bands" }
func (s Set) ExtraBandsPath() string { return s.Dir + s.Name + ".bands_extra" }
func (s Set) EazyBandsPath() string  { return s.Dir + s.Name + ".eazy.bands" }
func (s Set) ParamPath() string      { return s.Dir + s.Name + ".param" }
func (s Set) ConfigPath() string     { return s.Dir + s.Name + ".config" }
func (s Set) PreviewPath() string    { return s.Dir + s.Name + ".xlsx" }
