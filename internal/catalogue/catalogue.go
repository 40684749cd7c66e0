// Package catalogue holds the in-memory model behind a Stardust input
// bundle: an ordered column registry, a row store keyed by target id, and
// the orchestrating Catalogue that normalizes incoming observations into a
// single canonical flux unit.
//
// The package performs no I/O. Deriving the output artifact set from a
// catalogue lives in internal/artifact, and putting it on disk lives in
// internal/writer.
package catalogue

import (
	"fmt"
	"strings"

	"github.com/stardustkit/cataloguer/internal/fluxunit"
)

// DefaultMissingSentinel is the value written for structurally-required but
// unobserved cells. Stardust treats -99 as "no measurement".
const DefaultMissingSentinel = -99

// Params configures a new Catalogue.
type Params struct {
	// Name of the catalogue. Artifact file names derive from it.
	Name string

	// Path is the directory the artifact bundle is written to.
	Path string

	// Unit is the canonical flux density unit. All stored flux and
	// uncertainty values are normalized into it at ingestion time.
	Unit fluxunit.Unit

	// EazyTranslation enables the optional EAZY filter-translation artifact.
	EazyTranslation bool

	// MissingSentinel overrides DefaultMissingSentinel when set. A pointer
	// so that zero is a usable sentinel value.
	MissingSentinel *float64
}

// Catalogue is the single-owner object tree for one Stardust input bundle.
// It owns its column registry and target table exclusively and is not safe
// for concurrent use.
type Catalogue struct {
	name     string
	path     string
	unit     fluxunit.Unit
	eazy     bool
	sentinel float64

	registry *ColumnRegistry
	table    *TargetTable
}

// New creates an empty catalogue. The canonical unit is fixed for the
// lifetime of the catalogue.
func New(p Params) (*Catalogue, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, fmt.Errorf("catalogue name must not be empty")
	}
	if strings.TrimSpace(p.Path) == "" {
		return nil, fmt.Errorf("catalogue path must not be empty")
	}
	if p.Unit.IsZero() {
		return nil, fmt.Errorf("catalogue needs a canonical flux unit")
	}
	sentinel := float64(DefaultMissingSentinel)
	if p.MissingSentinel != nil {
		sentinel = *p.MissingSentinel
	}
	return &Catalogue{
		name:     name,
		path:     p.Path,
		unit:     p.Unit,
		eazy:     p.EazyTranslation,
		sentinel: sentinel,
		registry: NewColumnRegistry(),
		table:    NewTargetTable(),
	}, nil
}

// Name returns the catalogue name.
func (c *Catalogue) Name() string { return c.name }

// Path returns the storage directory for the artifact bundle.
func (c *Catalogue) Path() string { return c.path }

// Unit returns the canonical flux density unit.
func (c *Catalogue) Unit() fluxunit.Unit { return c.unit }

// EazyTranslation reports whether the EAZY translation artifact is enabled.
func (c *Catalogue) EazyTranslation() bool { return c.eazy }

// MissingSentinel returns the value exported for unobserved cells.
func (c *Catalogue) MissingSentinel() float64 { return c.sentinel }

// CreateTarget adds a new target identified by id at the given right
// ascension, declination and redshift. Fails with ErrDuplicateTarget if the
// id is taken.
func (c *Catalogue) CreateTarget(id int64, ra, dec, z float64) error {
	return c.table.Create(id, ra, dec, z)
}

// HasTarget reports whether a target with the given id exists.
func (c *Catalogue) HasTarget(id int64) bool {
	return c.table.Has(id)
}

// AddObservation records a flux measurement of target id through the named
// instrument. The value and uncertainty are measured in unit and converted
// to the catalogue's canonical unit before storage. The filter must be
// exactly one of Code or Wavelength.
//
// The column group for label is created on first use; re-observing an
// existing (target, label) pair overwrites the previous measurement. On any
// failure no column group is registered and no row is altered.
func (c *Catalogue) AddObservation(id int64, label string, value, uncertainty float64, unit string, filter Filter) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return fmt.Errorf("instrument label must not be empty")
	}
	if !filter.IsCode() && !filter.IsWavelength() {
		return fmt.Errorf("observation %q of target %d: %w", label, id, ErrAmbiguousFilterBinding)
	}
	if !c.table.Has(id) {
		return fmt.Errorf("target %d: %w", id, ErrUnknownTarget)
	}

	flux, fluxErr, err := fluxunit.Normalize(value, uncertainty, unit, c.unit)
	if err != nil {
		return fmt.Errorf("observation %q of target %d: %w", label, id, err)
	}

	if _, err := c.registry.EnsureGroup(label, filter); err != nil {
		return err
	}

	return c.table.SetObservation(id, label, flux, fluxErr, filter.Wavelength())
}

// HasColumn reports whether an observation column group exists for the
// instrument label. The match is by label, not by physical column name.
func (c *Catalogue) HasColumn(label string) bool {
	return c.registry.Exists(strings.TrimSpace(label))
}

// Groups returns the instrument column groups in first-seen order.
func (c *Catalogue) Groups() []*Group {
	return c.registry.Groups()
}

// Columns returns the full ordered column list of the rendered table.
func (c *Catalogue) Columns() []string {
	return c.registry.Columns()
}

// Targets returns the catalogue targets in creation order.
func (c *Catalogue) Targets() []*Target {
	return c.table.Targets()
}

// TargetCount returns the number of targets.
func (c *Catalogue) TargetCount() int {
	return c.table.Len()
}

// Render materializes the rectangular data table with every unobserved
// cell replaced by the missing-value sentinel. It never mutates the
// catalogue and is safe to call repeatedly.
func (c *Catalogue) Render() [][]float64 {
	return c.table.Render(c.registry.Groups(), c.sentinel)
}

// Summary returns a human-readable description of the catalogue, one line
// per target.
func (c *Catalogue) Summary() string {
	var b strings.Builder
	b.WriteString("----< stardust catalogue >----\n")
	fmt.Fprintf(&b, "name:    %s\n", c.name)
	fmt.Fprintf(&b, "path:    %s\n", c.path)
	fmt.Fprintf(&b, "unit:    %s\n", c.unit)
	fmt.Fprintf(&b, "targets: %d\n", c.table.Len())
	for _, t := range c.table.Targets() {
		fmt.Fprintf(&b, "%9d>  RA:%.5f  DEC:%.5f  z:%f | observations: %d\n",
			t.ID, t.RA, t.Dec, t.Z, t.ObservationCount())
	}
	b.WriteString("------------------------------")
	return b.String()
}
