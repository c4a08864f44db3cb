package enrich

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/sfhousing/parcel-enrich/internal/parcel"
)

// IsOpenSpace reports whether the parcel's height district is the open
// space sentinel. An unknown height is not open space.
func IsOpenSpace(p *parcel.Parcel) bool {
	return p.HeightFt != nil && *p.HeightFt >= OpenSpaceHeight
}

// IsNonHousing reports whether the parcel's zoning excludes housing: an
// exact non-housing code, a non-housing code family, or a single-family lot
// above the institutional size threshold.
func IsNonHousing(p *parcel.Parcel) bool {
	code, ok := p.EffectiveZoning()
	if !ok {
		return false
	}
	if nonHousingCodes[code] {
		return true
	}
	for _, prefix := range nonHousingPrefixes {
		if strings.HasPrefix(code, prefix) {
			return true
		}
	}
	return code == LargeParcelZone && p.Area1000 != nil && *p.Area1000 > LargeParcelArea
}

// IsIncompleteShipyard reports whether the parcel sits in the shipyard
// neighborhood with neither zoning nor height on record.
func IsIncompleteShipyard(p *parcel.Parcel) bool {
	_, zoned := p.EffectiveZoning()
	return !zoned && p.HeightFt == nil && p.Neighborhood() == ShipyardNeighborhood
}

// RemoveOpenSpace drops open space parcels and records them as public.
func RemoveOpenSpace(t parcel.Table, public *PublicAccumulator) parcel.Table {
	return removeToPublic(t, public, IsOpenSpace)
}

// RemoveNonHousing drops non-housing parcels and records them as public.
func RemoveNonHousing(t parcel.Table, public *PublicAccumulator) parcel.Table {
	return removeToPublic(t, public, IsNonHousing)
}

// RemoveShipyard drops incomplete shipyard parcels.
func RemoveShipyard(t parcel.Table) parcel.Table {
	return t.Filter(func(p *parcel.Parcel) bool { return !IsIncompleteShipyard(p) })
}

func removeToPublic(t parcel.Table, public *PublicAccumulator, drop func(*parcel.Parcel) bool) parcel.Table {
	return t.Filter(func(p *parcel.Parcel) bool {
		if !drop(p) {
			return true
		}
		public.Add(*p)
		return false
	})
}

// SDBEligible applies the density-bonus rule: an eligible zoning family,
// envelope above the threshold and height at or under the cap.
func SDBEligible(zoning string, envelope, heightFt float64) bool {
	return inSDBFamily(zoning) && SDBQualifies(envelope, heightFt)
}

// SDBQualifies is the envelope and height half of the density-bonus rule.
func SDBQualifies(envelope, heightFt float64) bool {
	return envelope > SDBEnvelopeThreshold && heightFt <= SDBHeightCap
}

// inSDBFamily folds with a fresh Caser per call; Casers are stateful.
func inSDBFamily(zoning string) bool {
	fold := cases.Fold()
	z := fold.String(zoning)
	for _, fam := range sdbFamilies {
		if strings.Contains(z, fold.String(fam)) {
			return true
		}
	}
	return false
}

// FillSDB derives SDB_2016_5Plus for parcels where it is missing, setting
// SDB_2016_5Plus_EnvFull to the envelope of eligible parcels (0 otherwise)
// where that is missing too. Any SDB column still missing afterwards
// defaults to 0.
func FillSDB(t parcel.Table) parcel.Table {
	out := t.Clone()
	out.Update(func(_ int, p *parcel.Parcel) {
		if p.SDB == nil {
			code, _ := p.EffectiveZoning()
			eligible := p.Envelope != nil && p.HeightFt != nil &&
				SDBEligible(code, *p.Envelope, *p.HeightFt)
			p.SDB = parcel.Bool(eligible)
			if p.SDBEnvFull == nil {
				if eligible {
					p.SDBEnvFull = parcel.Float(*p.Envelope)
				} else {
					p.SDBEnvFull = parcel.Float(0)
				}
			}
		}
		if p.SDBEnvFull == nil {
			p.SDBEnvFull = parcel.Float(0)
		}
		if p.ZoningDREnvFull == nil {
			p.ZoningDREnvFull = parcel.Float(0)
		}
	})
	return out
}
