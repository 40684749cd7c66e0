package writer

// fits.go serializes the derived data table as a FITS file: an empty
// primary HDU followed by a BINTABLE extension. Only the two cell formats
// the catalogue produces are supported — TFORM "K" (64-bit integer, used
// for the id column) and "E" (32-bit float, everything else).
//
// FITS files are sequences of 2880-byte blocks. Headers are 80-character
// keyword cards, space-padded to a block boundary; table data is big-endian
// and zero-padded to a block boundary.

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/stardustkit/cataloguer/internal/artifact"
)

const (
	fitsBlockSize = 2880
	fitsCardSize  = 80
)

// encodeFITS renders the table as a complete FITS byte stream.
func encodeFITS(t artifact.Table) ([]byte, error) {
	rowWidth := 0
	for _, col := range t.Columns {
		switch col.Format {
		case "K":
			rowWidth += 8
		case "E":
			rowWidth += 4
		default:
			return nil, fmt.Errorf("unsupported FITS column format %q", col.Format)
		}
	}

	var buf bytes.Buffer
	writePrimaryHeader(&buf)
	writeTableHeader(&buf, t, rowWidth)
	if err := writeTableData(&buf, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writePrimaryHeader emits the mandatory dataless primary HDU.
func writePrimaryHeader(buf *bytes.Buffer) {
	start := buf.Len()
	writeCard(buf, logicalCard("SIMPLE", true))
	writeCard(buf, intCard("BITPIX", 8))
	writeCard(buf, intCard("NAXIS", 0))
	writeCard(buf, logicalCard("EXTEND", true))
	writeCard(buf, "END")
	padBlock(buf, start, ' ')
}

// writeTableHeader emits the BINTABLE extension header.
func writeTableHeader(buf *bytes.Buffer, t artifact.Table, rowWidth int) {
	start := buf.Len()
	writeCard(buf, stringCard("XTENSION", "BINTABLE"))
	writeCard(buf, intCard("BITPIX", 8))
	writeCard(buf, intCard("NAXIS", 2))
	writeCard(buf, intCard("NAXIS1", rowWidth))
	writeCard(buf, intCard("NAXIS2", len(t.Rows)))
	writeCard(buf, intCard("PCOUNT", 0))
	writeCard(buf, intCard("GCOUNT", 1))
	writeCard(buf, intCard("TFIELDS", len(t.Columns)))
	for i, col := range t.Columns {
		n := i + 1
		writeCard(buf, stringCard(fmt.Sprintf("TTYPE%d", n), col.Name))
		writeCard(buf, stringCard(fmt.Sprintf("TFORM%d", n), col.Format))
		if col.Unit != "" {
			writeCard(buf, stringCard(fmt.Sprintf("TUNIT%d", n), col.Unit))
		}
	}
	writeCard(buf, "END")
	padBlock(buf, start, ' ')
}

// writeTableData emits the big-endian row data, zero-padded to a block.
func writeTableData(buf *bytes.Buffer, t artifact.Table) error {
	start := buf.Len()
	scratch := make([]byte, 8)
	for _, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("row has %d cells, table has %d columns", len(row), len(t.Columns))
		}
		for i, col := range t.Columns {
			switch col.Format {
			case "K":
				binary.BigEndian.PutUint64(scratch, uint64(int64(row[i])))
				buf.Write(scratch[:8])
			case "E":
				binary.BigEndian.PutUint32(scratch, math.Float32bits(float32(row[i])))
				buf.Write(scratch[:4])
			}
		}
	}
	padBlock(buf, start, 0)
	return nil
}

// writeCard pads a card to 80 characters and appends it.
func writeCard(buf *bytes.Buffer, card string) {
	buf.WriteString(card)
	for i := len(card); i < fitsCardSize; i++ {
		buf.WriteByte(' ')
	}
}

// padBlock pads the bytes written since start up to a 2880-byte boundary.
func padBlock(buf *bytes.Buffer, start int, fill byte) {
	for (buf.Len()-start)%fitsBlockSize != 0 {
		buf.WriteByte(fill)
	}
}

// logicalCard formats a FITS logical keyword card, value in column 30.
func logicalCard(key string, v bool) string {
	val := "F"
	if v {
		val = "T"
	}
	return fmt.Sprintf("%-8s= %20s", key, val)
}

// intCard formats an integer keyword card, value right-justified to column 30.
func intCard(key string, v int) string {
	return fmt.Sprintf("%-8s= %20d", key, v)
}

// stringCard formats a string keyword card; FITS pads quoted strings to at
// least eight characters.
func stringCard(key, v string) string {
	return fmt.Sprintf("%-8s= '%-8s'", key, v)
}
