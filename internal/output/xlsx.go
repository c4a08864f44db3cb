package output

import (
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sfhousing/parcel-enrich/internal/parcel"
)

// Workbook sheet names.
const (
	SheetOverlay = "overlay"
	SheetModel   = "model"
)

// WriteWorkbook writes the overlay and model tables as two sheets of one
// XLSX workbook. Numeric cells are stored as numbers; the identifier column
// stays text.
func WriteWorkbook(path string, t parcel.Table) error {
	f := xlsx.NewFile()
	if err := addSheet(f, SheetOverlay, OverlayColumns, t, OverlayRecord); err != nil {
		return err
	}
	if err := addSheet(f, SheetModel, ModelColumns, t, ModelRecord); err != nil {
		return err
	}
	return writeAtomic(path, func(w *os.File) error {
		return eris.Wrapf(f.Write(w), "xlsx: save %s", path)
	})
}

func addSheet(f *xlsx.File, name string, header []string, t parcel.Table, record func(*parcel.Parcel) []string) error {
	sheet, err := f.AddSheet(name)
	if err != nil {
		return eris.Wrapf(err, "xlsx: add sheet %s", name)
	}
	row := sheet.AddRow()
	for _, h := range header {
		row.AddCell().SetString(h)
	}
	for i := 0; i < t.Len(); i++ {
		p := t.At(i)
		row := sheet.AddRow()
		for j, v := range record(&p) {
			cell := row.AddCell()
			if j == 0 || v == "" {
				cell.SetString(v)
				continue
			}
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				cell.SetFloat(n)
			} else {
				cell.SetString(v)
			}
		}
	}
	return nil
}
