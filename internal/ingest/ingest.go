package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/stardustkit/cataloguer/internal/catalogue"
)

// TargetFields is the CSV schema for target rows.
var TargetFields = []FieldSpec{
	{Name: "id", Type: FieldInt, Required: true},
	{Name: "ra", Type: FieldFloat, Required: true},
	{Name: "dec", Type: FieldFloat, Required: true},
	{Name: "z", Type: FieldFloat, Required: true},
}

// ObservationFields is the CSV schema for observation rows. Exactly one of
// code and wavelength must be set per row; the catalogue enforces this.
var ObservationFields = []FieldSpec{
	{Name: "id", Type: FieldInt, Required: true},
	{Name: "label", Type: FieldText, Required: true},
	{Name: "flux", Type: FieldFloat, Required: true},
	{Name: "flux_error", Type: FieldFloat, Required: true},
	{Name: "unit", Type: FieldText, Required: true},
	{Name: "code", Type: FieldInt, Required: false},
	{Name: "wavelength", Type: FieldFloat, Required: false},
}

// RowError records why a single CSV row was rejected.
type RowError struct {
	Line int // 1-based line number in the file, header is line 1
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Result summarizes one CSV load.
type Result struct {
	Processed int        // data rows read
	Applied   int        // rows accepted into the catalogue
	Failed    []RowError // rejected rows with line numbers
}

// LoadTargets reads a targets CSV (columns id, ra, dec, z) from r and
// creates one catalogue target per valid row. Invalid rows are collected in
// the result, not fatal; a malformed or headerless file is.
func LoadTargets(c *catalogue.Catalogue, r io.Reader) (Result, error) {
	return load(r, TargetFields, func(row []string, idx HeaderIndex) error {
		id, err := parseInt(cell(row, idx, "id"))
		if err != nil {
			return fmt.Errorf("invalid number in %q: %w", "id", err)
		}
		ra, err := parseFloat(cell(row, idx, "ra"))
		if err != nil {
			return fmt.Errorf("invalid number in %q: %w", "ra", err)
		}
		dec, err := parseFloat(cell(row, idx, "dec"))
		if err != nil {
			return fmt.Errorf("invalid number in %q: %w", "dec", err)
		}
		z, err := parseFloat(cell(row, idx, "z"))
		if err != nil {
			return fmt.Errorf("invalid number in %q: %w", "z", err)
		}
		return c.CreateTarget(id, ra, dec, z)
	})
}

// LoadObservations reads an observations CSV (columns id, label, flux,
// flux_error, unit, code, wavelength) from r and adds one observation per
// valid row. Rows with neither or both of code/wavelength fail with the
// catalogue's ambiguous-binding error.
func LoadObservations(c *catalogue.Catalogue, r io.Reader) (Result, error) {
	return load(r, ObservationFields, func(row []string, idx HeaderIndex) error {
		id, err := parseInt(cell(row, idx, "id"))
		if err != nil {
			return fmt.Errorf("invalid number in %q: %w", "id", err)
		}
		flux, err := parseFloat(cell(row, idx, "flux"))
		if err != nil {
			return fmt.Errorf("invalid number in %q: %w", "flux", err)
		}
		fluxErr, err := parseFloat(cell(row, idx, "flux_error"))
		if err != nil {
			return fmt.Errorf("invalid number in %q: %w", "flux_error", err)
		}

		// The zero Filter stands for "neither or both bindings" and is
		// rejected by the catalogue.
		var filter catalogue.Filter
		codeRaw := cell(row, idx, "code")
		wlRaw := cell(row, idx, "wavelength")
		switch {
		case codeRaw != "" && wlRaw != "":
			// leave filter unbound
		case codeRaw != "":
			code, err := parseInt(codeRaw)
			if err != nil {
				return fmt.Errorf("invalid number in %q: %w", "code", err)
			}
			filter = catalogue.Code(int(code))
		case wlRaw != "":
			wl, err := parseFloat(wlRaw)
			if err != nil {
				return fmt.Errorf("invalid number in %q: %w", "wavelength", err)
			}
			filter = catalogue.Wavelength(wl)
		}

		return c.AddObservation(id, cell(row, idx, "label"), flux, fluxErr, cell(row, idx, "unit"), filter)
	})
}

// load runs the shared CSV loop: read the header, validate it against the
// specs, then validate and apply every data row, collecting failures.
func load(r io.Reader, specs []FieldSpec, apply func(row []string, idx HeaderIndex) error) (Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	// Excel exports cells like ="7" with bare quotes; let them through so
	// CleanCell can strip the formula prefix.
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return Result{}, fmt.Errorf("empty file: no header row")
	}
	if err != nil {
		return Result{}, fmt.Errorf("invalid csv: %w", err)
	}

	idx, err := ValidateHeaders(header, specs)
	if err != nil {
		return Result{}, err
	}

	var res Result
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return res, fmt.Errorf("invalid csv on line %d: %w", line, err)
		}
		res.Processed++

		if err := validateRow(row, idx, specs); err != nil {
			res.Failed = append(res.Failed, RowError{Line: line, Err: err})
			continue
		}
		if err := apply(row, idx); err != nil {
			res.Failed = append(res.Failed, RowError{Line: line, Err: err})
			continue
		}
		res.Applied++
	}
	return res, nil
}
