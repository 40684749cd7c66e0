package catalogue

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/stardustkit/cataloguer/internal/fluxunit"
)

func newTestCatalogue(t *testing.T) *Catalogue {
	t.Helper()
	c, err := New(Params{
		Name: "test-name",
		Path: t.TempDir(),
		Unit: fluxunit.MustParse("mJy"),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestNew_Validation(t *testing.T) {
	mJy := fluxunit.MustParse("mJy")
	tests := []struct {
		name   string
		params Params
	}{
		{"empty name", Params{Name: "", Path: "/tmp/x", Unit: mJy}},
		{"empty path", Params{Name: "x", Path: "  ", Unit: mJy}},
		{"zero unit", Params{Name: "x", Path: "/tmp/x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.params); err == nil {
				t.Error("New() succeeded, want error")
			}
		})
	}
}

func TestNew_SentinelOverride(t *testing.T) {
	mJy := fluxunit.MustParse("mJy")
	zero := 0.0

	c, err := New(Params{Name: "x", Path: t.TempDir(), Unit: mJy, MissingSentinel: &zero})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if c.MissingSentinel() != 0 {
		t.Errorf("MissingSentinel() = %v, want 0", c.MissingSentinel())
	}

	// Zero must flow through to rendered missing cells.
	if err := c.CreateTarget(1, 1, 1, 1); err != nil {
		t.Fatal(err)
	}
	if err := c.CreateTarget(2, 2, 2, 2); err != nil {
		t.Fatal(err)
	}
	if err := c.AddObservation(1, "A", 5, 1, "mJy", Code(3)); err != nil {
		t.Fatal(err)
	}
	rows := c.Render()
	if got := rows[1][4]; got != 0 {
		t.Errorf("missing cell = %v, want sentinel 0", got)
	}

	// Unset means the default.
	d, err := New(Params{Name: "y", Path: t.TempDir(), Unit: mJy})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if d.MissingSentinel() != DefaultMissingSentinel {
		t.Errorf("MissingSentinel() = %v, want %v", d.MissingSentinel(), DefaultMissingSentinel)
	}
}

func TestCreateTarget_Duplicate(t *testing.T) {
	c := newTestCatalogue(t)

	if err := c.CreateTarget(1, 1, 1, 1); err != nil {
		t.Fatalf("CreateTarget() error = %v", err)
	}
	if !c.HasTarget(1) {
		t.Error("HasTarget(1) = false after creation")
	}

	err := c.CreateTarget(1, 9, 9, 9)
	if !errors.Is(err, ErrDuplicateTarget) {
		t.Errorf("duplicate CreateTarget error = %v, want ErrDuplicateTarget", err)
	}
	if c.TargetCount() != 1 {
		t.Errorf("TargetCount() = %d after failed create, want 1", c.TargetCount())
	}
}

func TestAddObservation_AmbiguousBinding(t *testing.T) {
	c := newTestCatalogue(t)
	if err := c.CreateTarget(1, 1, 1, 1); err != nil {
		t.Fatal(err)
	}

	err := c.AddObservation(1, "A", 1000, 100, "uJy", Filter{})
	if !errors.Is(err, ErrAmbiguousFilterBinding) {
		t.Errorf("zero filter error = %v, want ErrAmbiguousFilterBinding", err)
	}

	// No column or row mutation occurred.
	if c.HasColumn("A") {
		t.Error("failed AddObservation registered a column group")
	}
	if got := c.Targets()[0].ObservationCount(); got != 0 {
		t.Errorf("observation count = %d after failed add, want 0", got)
	}
}

func TestAddObservation_UnknownTarget(t *testing.T) {
	c := newTestCatalogue(t)

	err := c.AddObservation(7, "A", 1000, 100, "uJy", Code(1))
	if !errors.Is(err, ErrUnknownTarget) {
		t.Errorf("error = %v, want ErrUnknownTarget", err)
	}
	if c.HasColumn("A") {
		t.Error("failed AddObservation registered a column group")
	}
}

func TestAddObservation_IncompatibleUnit(t *testing.T) {
	c := newTestCatalogue(t)
	if err := c.CreateTarget(1, 1, 1, 1); err != nil {
		t.Fatal(err)
	}

	err := c.AddObservation(1, "A", 1000, 100, "parsec", Code(1))
	if !errors.Is(err, fluxunit.ErrIncompatibleUnit) {
		t.Errorf("error = %v, want ErrIncompatibleUnit", err)
	}
	if c.HasColumn("A") {
		t.Error("failed AddObservation registered a column group")
	}
}

func TestAddObservation_ShapeConflict(t *testing.T) {
	c := newTestCatalogue(t)
	if err := c.CreateTarget(1, 1, 1, 1); err != nil {
		t.Fatal(err)
	}
	if err := c.AddObservation(1, "A", 1000, 100, "uJy", Code(1)); err != nil {
		t.Fatal(err)
	}

	err := c.AddObservation(1, "A", 1000, 100, "uJy", Wavelength(250))
	if !errors.Is(err, ErrColumnShapeConflict) {
		t.Errorf("error = %v, want ErrColumnShapeConflict", err)
	}
	// The existing observation is untouched.
	rows := c.Render()
	if rows[0][4] != 1.0 || rows[0][5] != 0.1 {
		t.Errorf("row = %v, want original 1.0 ± 0.1 mJy preserved", rows[0])
	}
}

func TestHasColumn_ByLabel(t *testing.T) {
	c := newTestCatalogue(t)
	if err := c.CreateTarget(1, 1, 1, 1); err != nil {
		t.Fatal(err)
	}
	if c.HasColumn("A") {
		t.Error("HasColumn(A) = true before any observation")
	}
	if err := c.AddObservation(1, "A", 1, 1, "mJy", Code(1)); err != nil {
		t.Fatal(err)
	}
	if !c.HasColumn("A") {
		t.Error("HasColumn(A) = false after first observation")
	}

	// Later rows lacking the observation do not unregister the column.
	if err := c.CreateTarget(2, 2, 2, 2); err != nil {
		t.Fatal(err)
	}
	if !c.HasColumn("A") {
		t.Error("HasColumn(A) = false after adding an unrelated target")
	}
}

// TestWalkThrough follows the reference scenario: two targets, a code-bound
// instrument A observed for both, and a wavelength-bound instrument B
// observed only for the first.
func TestWalkThrough(t *testing.T) {
	c := newTestCatalogue(t)

	if err := c.CreateTarget(1, 1, 1, 1); err != nil {
		t.Fatal(err)
	}
	if err := c.CreateTarget(2, 2, 2, 2); err != nil {
		t.Fatal(err)
	}
	if err := c.AddObservation(1, "A", 1000, 100, "uJy", Code(1)); err != nil {
		t.Fatal(err)
	}
	if err := c.AddObservation(2, "A", 2000, 500, "uJy", Code(1)); err != nil {
		t.Fatal(err)
	}
	if err := c.AddObservation(1, "B", 3000, 400, "uJy", Wavelength(250)); err != nil {
		t.Fatal(err)
	}

	wantCols := []string{"id", "ra", "dec", "z", "f_A", "fe_A", "f_B", "fe_B", "wl_B"}
	if got := c.Columns(); !reflect.DeepEqual(got, wantCols) {
		t.Errorf("Columns() = %v, want %v", got, wantCols)
	}

	wantRows := [][]float64{
		{1, 1, 1, 1, 1.0, 0.1, 3.0, 0.4, 250},
		{2, 2, 2, 2, 2.0, 0.5, -99, -99, -99},
	}
	if got := c.Render(); !reflect.DeepEqual(got, wantRows) {
		t.Errorf("Render() = %v, want %v", got, wantRows)
	}
}

func TestSummary(t *testing.T) {
	c := newTestCatalogue(t)
	if err := c.CreateTarget(1, 1, 1, 1); err != nil {
		t.Fatal(err)
	}

	s := c.Summary()
	for _, want := range []string{"test-name", "targets: 1", "unit:    mJy"} {
		if !strings.Contains(s, want) {
			t.Errorf("Summary() missing %q:\n%s", want, s)
		}
	}
}
