// Package fluxunit converts flux density measurements between units.
//
// Every catalogue fixes one canonical flux density unit at construction;
// observations arrive in whatever unit the photometry was published in and
// are normalized at ingestion time. Conversion between flux density units
// is a pure scale factor, so the package keeps a fixed table of factors
// relative to the Jansky and never touches the values otherwise.
package fluxunit

import (
	"errors"
	"fmt"
	"strings"
)

// ErrIncompatibleUnit is returned when a supplied unit is not a flux
// density unit convertible to the catalogue's canonical unit.
var ErrIncompatibleUnit = errors.New("incompatible flux density unit")

// Unit is a flux density unit. The zero value is invalid; obtain units
// through Parse or MustParse.
type Unit struct {
	name string
	toJy float64 // multiplicative factor to Jansky
}

// Supported units, factors relative to 1 Jy.
var units = map[string]Unit{
	"Jy":          {"Jy", 1},
	"mJy":         {"mJy", 1e-3},
	"uJy":         {"uJy", 1e-6},
	"nJy":         {"nJy", 1e-9},
	"kJy":         {"kJy", 1e3},
	"W/(m2 Hz)":   {"W/(m2 Hz)", 1e26},
	"erg/(s cm2 Hz)": {"erg/(s cm2 Hz)", 1e23},
}

// aliases maps alternate spellings to the canonical key in units.
var aliases = map[string]string{
	"µJy":        "uJy",
	"μJy":        "uJy",
	"microJy":    "uJy",
	"jansky":     "Jy",
	"millijansky": "mJy",
	"microjansky": "uJy",
	"W m-2 Hz-1": "W/(m2 Hz)",
	"erg s-1 cm-2 Hz-1": "erg/(s cm2 Hz)",
}

// Parse resolves a unit name to a Unit.
// Returns ErrIncompatibleUnit for anything that is not a recognised flux
// density unit.
func Parse(s string) (Unit, error) {
	name := strings.TrimSpace(s)
	if key, ok := aliases[name]; ok {
		name = key
	}
	u, ok := units[name]
	if !ok {
		return Unit{}, fmt.Errorf("%q: %w", s, ErrIncompatibleUnit)
	}
	return u, nil
}

// MustParse is Parse for statically-known unit names. Panics on error.
func MustParse(s string) Unit {
	u, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("fluxunit: %v", err))
	}
	return u
}

// String returns the canonical name of the unit, e.g. "mJy".
func (u Unit) String() string { return u.name }

// IsZero reports whether the unit is the invalid zero value.
func (u Unit) IsZero() bool { return u.toJy == 0 }

// Convert expresses v, measured in u, in the target unit. The scale ratio
// is computed first: power-of-ten factors like 1e-6/1e-3 divide to an exact
// double, so decimal inputs convert without picking up rounding error.
func (u Unit) Convert(v float64, to Unit) float64 {
	if u == to {
		return v
	}
	return v * (u.toJy / to.toJy)
}

// Normalize converts a (value, uncertainty) pair measured in the named
// unit into the target unit. Side-effect free; fails only when the named
// unit cannot be parsed.
func Normalize(value, uncertainty float64, from string, to Unit) (float64, float64, error) {
	u, err := Parse(from)
	if err != nil {
		return 0, 0, err
	}
	return u.Convert(value, to), u.Convert(uncertainty, to), nil
}
