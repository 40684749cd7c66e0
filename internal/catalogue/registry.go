package catalogue

import "fmt"

// Column name prefixes. A single instrument label fans out into a group of
// physical columns using these fixed prefixes.
const (
	fluxPrefix        = "f_"
	uncertaintyPrefix = "fe_"
	wavelengthPrefix  = "wl_"
)

// infoColumns are the four fixed columns every catalogue starts with.
// Their roles never change.
var infoColumns = []string{"id", "ra", "dec", "z"}

// Group is the set of physical columns backing one instrument label:
// always a flux and an uncertainty column, plus a wavelength column for
// wavelength-bound labels.
type Group struct {
	Label   string
	FluxCol string
	ErrCol  string
	WlCol   string // empty for code-bound groups

	filter Filter
}

// Filter returns the filter binding most recently associated with the group.
func (g *Group) Filter() Filter { return g.filter }

// HasWavelength reports whether the group carries a wavelength column.
func (g *Group) HasWavelength() bool { return g.WlCol != "" }

// ColumnRegistry tracks the ordered set of catalogue columns and the
// instrument group each observation column belongs to. Groups are created
// lazily the first time a label is seen and keep first-seen insertion order
// so that exported column ordering is deterministic.
type ColumnRegistry struct {
	groups map[string]*Group
	order  []string // labels in first-seen order
}

// NewColumnRegistry returns an empty registry holding only the fixed
// id/ra/dec/z columns.
func NewColumnRegistry() *ColumnRegistry {
	return &ColumnRegistry{groups: make(map[string]*Group)}
}

// EnsureGroup returns the column group for label, creating it on first use.
// The filter decides the group's shape: wavelength-bound groups gain a
// wavelength column, code-bound groups do not. Re-ensuring an existing
// group with the other binding kind fails with ErrColumnShapeConflict and
// leaves the registry untouched; re-ensuring with the same kind updates the
// stored binding to the most recent value.
func (r *ColumnRegistry) EnsureGroup(label string, filter Filter) (*Group, error) {
	if g, ok := r.groups[label]; ok {
		if g.HasWavelength() != filter.IsWavelength() {
			return nil, fmt.Errorf("column group %q: %w", label, ErrColumnShapeConflict)
		}
		g.filter = filter
		return g, nil
	}

	g := &Group{
		Label:   label,
		FluxCol: fluxPrefix + label,
		ErrCol:  uncertaintyPrefix + label,
		filter:  filter,
	}
	if filter.IsWavelength() {
		g.WlCol = wavelengthPrefix + label
	}
	r.groups[label] = g
	r.order = append(r.order, label)
	return g, nil
}

// Exists reports whether any column group has been registered for label.
// This is a capability check on the observation concept, not a literal
// column-name lookup: Exists("A") is true even though the physical columns
// are named f_A and fe_A.
func (r *ColumnRegistry) Exists(label string) bool {
	_, ok := r.groups[label]
	return ok
}

// Group returns the column group for label, if registered.
func (r *ColumnRegistry) Group(label string) (*Group, bool) {
	g, ok := r.groups[label]
	return g, ok
}

// Groups returns all instrument groups in first-seen order.
func (r *ColumnRegistry) Groups() []*Group {
	out := make([]*Group, 0, len(r.order))
	for _, label := range r.order {
		out = append(out, r.groups[label])
	}
	return out
}

// Columns returns the full ordered column list: id, ra, dec, z, then each
// instrument group in first-seen order with flux before uncertainty before
// wavelength.
func (r *ColumnRegistry) Columns() []string {
	cols := make([]string, 0, len(infoColumns)+3*len(r.order))
	cols = append(cols, infoColumns...)
	for _, g := range r.Groups() {
		cols = append(cols, g.FluxCol, g.ErrCol)
		if g.HasWavelength() {
			cols = append(cols, g.WlCol)
		}
	}
	return cols
}
