package catalogue

import "fmt"

// observation holds one normalized measurement for a (target, label) pair.
// Values are already in the catalogue's canonical unit.
type observation struct {
	flux        float64
	uncertainty float64
	wavelength  float64 // meaningful only for wavelength-bound labels
}

// Target is one row of the catalogue: a unique integer id plus sky
// coordinates and redshift. Stardust does not actively use ra/dec/z but
// requires the columns to be present.
type Target struct {
	ID  int64
	RA  float64
	Dec float64
	Z   float64

	observations map[string]observation // keyed by instrument label
}

// ObservationCount returns the number of observations recorded for the target.
func (t *Target) ObservationCount() int { return len(t.observations) }

// TargetTable is the row store of the catalogue, keyed by target id.
// Rows keep creation order. The table is conceptually sparse: rows created
// before a column group existed simply have no entry for that label, and
// Render materializes the missing-value sentinel for them.
type TargetTable struct {
	targets map[int64]*Target
	order   []int64 // ids in creation order
}

// NewTargetTable returns an empty table.
func NewTargetTable() *TargetTable {
	return &TargetTable{targets: make(map[int64]*Target)}
}

// Create adds a new target row. Fails with ErrDuplicateTarget if the id is
// already present; the table is unchanged on failure.
func (t *TargetTable) Create(id int64, ra, dec, z float64) error {
	if _, ok := t.targets[id]; ok {
		return fmt.Errorf("target %d: %w", id, ErrDuplicateTarget)
	}
	t.targets[id] = &Target{
		ID:           id,
		RA:           ra,
		Dec:          dec,
		Z:            z,
		observations: make(map[string]observation),
	}
	t.order = append(t.order, id)
	return nil
}

// Has reports whether a target with the given id exists.
func (t *TargetTable) Has(id int64) bool {
	_, ok := t.targets[id]
	return ok
}

// Len returns the number of targets.
func (t *TargetTable) Len() int { return len(t.order) }

// Targets returns all targets in creation order.
func (t *TargetTable) Targets() []*Target {
	out := make([]*Target, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.targets[id])
	}
	return out
}

// SetObservation records a measurement for a (target, label) pair.
// Re-setting an existing pair overwrites rather than duplicates. Fails with
// ErrUnknownTarget if the id was never created.
func (t *TargetTable) SetObservation(id int64, label string, flux, uncertainty, wavelength float64) error {
	target, ok := t.targets[id]
	if !ok {
		return fmt.Errorf("target %d: %w", id, ErrUnknownTarget)
	}
	target.observations[label] = observation{
		flux:        flux,
		uncertainty: uncertainty,
		wavelength:  wavelength,
	}
	return nil
}

// Render materializes the table as a rectangular row-major grid under the
// column ordering implied by groups: id, ra, dec, z, then flux,
// uncertainty and (for wavelength-bound groups) wavelength per group.
// Cells with no recorded observation hold sentinel. Target ids are exact
// for any realistic catalogue size (float64 holds integers up to 2^53).
func (t *TargetTable) Render(groups []*Group, sentinel float64) [][]float64 {
	width := len(infoColumns)
	for _, g := range groups {
		width += 2
		if g.HasWavelength() {
			width++
		}
	}

	rows := make([][]float64, 0, len(t.order))
	for _, id := range t.order {
		target := t.targets[id]
		row := make([]float64, 0, width)
		row = append(row, float64(target.ID), target.RA, target.Dec, target.Z)
		for _, g := range groups {
			obs, ok := target.observations[g.Label]
			if !ok {
				row = append(row, sentinel, sentinel)
				if g.HasWavelength() {
					row = append(row, sentinel)
				}
				continue
			}
			row = append(row, obs.flux, obs.uncertainty)
			if g.HasWavelength() {
				row = append(row, obs.wavelength)
			}
		}
		rows = append(rows, row)
	}
	return rows
}
