package output

import (
	"encoding/csv"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/sfhousing/parcel-enrich/internal/parcel"
)

// WriteOverlay writes the overlay table to path.
func WriteOverlay(path string, t parcel.Table) error {
	return writeTable(path, OverlayColumns, t, OverlayRecord)
}

// WriteModel writes the model table to path.
func WriteModel(path string, t parcel.Table) error {
	return writeTable(path, ModelColumns, t, ModelRecord)
}

func writeTable(path string, header []string, t parcel.Table, record func(*parcel.Parcel) []string) error {
	return writeAtomic(path, func(f *os.File) error {
		w := csv.NewWriter(f)
		if err := w.Write(header); err != nil {
			return eris.Wrap(err, "output: write header")
		}
		for i := 0; i < t.Len(); i++ {
			p := t.At(i)
			if err := w.Write(record(&p)); err != nil {
				return eris.Wrapf(err, "output: write row %s", p.MapBlkLot)
			}
		}
		w.Flush()
		return eris.Wrap(w.Error(), "output: flush csv")
	})
}

// writeAtomic writes through a temp file in the target directory and renames
// it over path, so readers never see a partial file.
func writeAtomic(path string, write func(*os.File) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "output: create %s", dir)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return eris.Wrapf(err, "output: create temp for %s", path)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if err := write(tmp); err != nil {
		tmp.Close() //nolint:errcheck
		return err
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrapf(err, "output: close %s", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return eris.Wrapf(err, "output: rename to %s", path)
	}
	return nil
}
