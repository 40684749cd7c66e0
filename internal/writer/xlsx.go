package writer

// xlsx.go exports the rendered table as a spreadsheet. Stardust never reads
// this file; it exists so the catalogue can be eyeballed without FITS
// tooling. Cell values match the FITS table exactly, sentinel included.

import (
	"github.com/xuri/excelize/v2"

	"github.com/stardustkit/cataloguer/internal/artifact"
)

const previewSheet = "catalogue"

// writePreview writes the table artifact as an XLSX workbook with one
// header row followed by one row per target.
func writePreview(s artifact.Set) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", previewSheet); err != nil {
		return err
	}

	for i, col := range s.Table.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(previewSheet, cell, col.Name); err != nil {
			return err
		}
	}

	for r, row := range s.Table.Rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			// The id column stays integral in the spreadsheet.
			var value any = v
			if s.Table.Columns[c].Format == "K" {
				value = int64(v)
			}
			if err := f.SetCellValue(previewSheet, cell, value); err != nil {
				return err
			}
		}
	}

	return f.SaveAs(s.PreviewPath())
}
