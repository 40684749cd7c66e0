package catalogue

import "fmt"

type filterKind int

const (
	filterNone filterKind = iota
	filterCode
	filterWavelength
)

// Filter is the binding of an observation to either a Stardust filter code
// (a catalogued transmission curve) or a central wavelength in μm (a
// synthetic square filter). The zero Filter is invalid; construct values
// with Code or Wavelength.
type Filter struct {
	kind       filterKind
	code       int
	wavelength float64
}

// Code binds an observation to the Stardust filter list entry c.
func Code(c int) Filter {
	return Filter{kind: filterCode, code: c}
}

// Wavelength binds an observation to a square filter centred at wl μm.
func Wavelength(wl float64) Filter {
	return Filter{kind: filterWavelength, wavelength: wl}
}

// IsCode reports whether the filter is code-bound.
func (f Filter) IsCode() bool { return f.kind == filterCode }

// IsWavelength reports whether the filter is wavelength-bound.
func (f Filter) IsWavelength() bool { return f.kind == filterWavelength }

// Code returns the Stardust filter code. Only meaningful when IsCode.
func (f Filter) Code() int { return f.code }

// Wavelength returns the central wavelength in μm. Only meaningful when
// IsWavelength.
func (f Filter) Wavelength() float64 { return f.wavelength }

func (f Filter) String() string {
	switch f.kind {
	case filterCode:
		return fmt.Sprintf("code=%d", f.code)
	case filterWavelength:
		return fmt.Sprintf("wavelength=%gμm", f.wavelength)
	default:
		return "unbound"
	}
}
