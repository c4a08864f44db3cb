package source

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
)

// LandUse is one row of the land-use survey.
type LandUse struct {
	MapBlkLot string `csv:"mapblklot"`
	FromSt    string `csv:"from_st"`
	Street    string `csv:"street"`
	StType    string `csv:"st_type"`
	ResUnits  string `csv:"resunits"`
	Res       string `csv:"res"`
}

// LandUseIndex maps mapblklot to its survey row. When the survey repeats a
// mapblklot the last row wins.
type LandUseIndex map[string]LandUse

// LoadLandUse decodes the land-use survey.
func LoadLandUse(path string) (LandUseIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "source: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	return DecodeLandUse(f)
}

// DecodeLandUse decodes a land-use CSV stream.
func DecodeLandUse(r io.Reader) (LandUseIndex, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	dec, err := csvutil.NewDecoder(cr)
	if err != nil {
		return nil, eris.Wrap(err, "source: land use header")
	}
	if !hasColumn(dec.Header(), "mapblklot") {
		return nil, eris.New("source: land use: required column \"mapblklot\" not found")
	}

	idx := make(LandUseIndex)
	for {
		var row LandUse
		if err := dec.Decode(&row); err == io.EOF {
			break
		} else if err != nil {
			return nil, eris.Wrap(err, "source: decode land use")
		}
		row.MapBlkLot = strings.TrimSpace(row.MapBlkLot)
		if row.MapBlkLot == "" {
			continue
		}
		idx[row.MapBlkLot] = row
	}
	return idx, nil
}

func hasColumn(header []string, col string) bool {
	for _, h := range header {
		if strings.TrimSpace(h) == col {
			return true
		}
	}
	return false
}
