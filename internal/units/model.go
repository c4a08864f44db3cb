// Package units estimates the expected new housing units of a parcel: a
// 20-year discrete-time hazard model gives the probability of redevelopment
// under a low and a high price trajectory, and a linear capacity model gives
// the units a redevelopment would yield.
package units

import (
	"math"

	"github.com/sfhousing/parcel-enrich/internal/parcel"
)

// Redevelopment model coefficients.
const (
	wIntercept   = -1.6226
	wHeightFt    = 0.0017
	wArea1000    = 0.0049
	wEnvelope    = 0.0002
	wBldgSqFt    = -0.0023
	wResDummy    = -0.8231
	wHistoric    = -1.0378
	wConstCosts  = -0.0992
	wZillowPrice = 0.0143
	wSDB         = 0.6303
)

// Capacity model coefficients.
const (
	wCapEnvelope = 0.4252
	wCapSDBEnv   = 0.4385
	wCapZoningDR = -0.1601
)

var zoningWeights = [parcel.NumZoningCategories]float64{
	parcel.ZPOfficeComm:  4.2634,
	parcel.ZPDRMultiRTO:  4.2450,
	parcel.ZPFBDMultiRTO: 5.0508,
	parcel.ZPPDRInd:      3.4115,
	parcel.ZPPublic:      1.2491,
	parcel.ZPRedev:       4.5361,
	parcel.ZPRH2:         0.2674,
	parcel.ZPRH3RM1:      1.3187,
}

var districtWeights = [parcel.NumDistricts]float64{
	parcel.DistSBayshore:    -1.4824,
	parcel.DistBernalHts:    -1.7011,
	parcel.DistSCentral:     -1.7307,
	parcel.DistCentral:      -1.1523,
	parcel.DistBuenaVista:   -2.5369,
	parcel.DistNortheast:    -1.4171,
	parcel.DistWestAddition: -0.6831,
	parcel.DistSOMA:         -0.0756,
	parcel.DistInnerSunset:  -1.6187,
	parcel.DistRichmond:     -2.8019,
	parcel.DistIngleside:    -1.8670,
	parcel.DistOuterSunset:  -2.6147,
	parcel.DistMarina:       -1.2492,
	parcel.DistMission:      -1.0938,
}

// Macro is one year of the macro-economic scenario: a real construction
// cost index and a low and a high real price index.
type Macro struct {
	Year      int
	Costs     float64
	PriceLow  float64
	PriceHigh float64
}

// Horizon is the forecast, one entry per year.
var Horizon = []Macro{
	{2026, 112.723, 78.091, 78.091},
	{2027, 112.723, 77.203, 77.203},
	{2028, 112.723, 78.537, 86.719},
	{2029, 112.723, 79.895, 96.236},
	{2030, 112.723, 81.275, 105.752},
	{2031, 112.723, 82.680, 115.268},
	{2032, 112.723, 84.108, 124.784},
	{2033, 112.723, 85.562, 128.587},
	{2034, 112.723, 87.041, 132.506},
	{2035, 112.723, 88.545, 136.544},
	{2036, 112.723, 90.075, 140.706},
	{2037, 112.723, 91.631, 144.994},
	{2038, 112.723, 93.215, 149.413},
	{2039, 112.723, 94.826, 153.966},
	{2040, 112.723, 96.464, 158.659},
	{2041, 112.723, 98.131, 163.494},
	{2042, 112.723, 99.827, 168.477},
	{2043, 112.723, 101.552, 173.611},
	{2044, 112.723, 103.307, 178.902},
	{2045, 112.723, 105.092, 184.355},
}

// Scenario selects the price trajectory.
type Scenario int

const (
	Low Scenario = iota
	High
)

func (m Macro) price(s Scenario) float64 {
	if s == High {
		return m.PriceHigh
	}
	return m.PriceLow
}

// Features is the numeric feature vector of one parcel. Missing values are 0.
type Features struct {
	HeightFt        float64
	Area1000        float64
	Envelope        float64
	BldgSqFt1000    float64
	ResDummy        float64
	Historic        float64
	SDB             float64
	Zoning          [parcel.NumZoningCategories]float64
	Districts       [parcel.NumDistricts]float64
	SDBEnvFull      float64
	ZoningDREnvFull float64
}

// FeaturesOf reads the model inputs of p.
func FeaturesOf(p *parcel.Parcel) Features {
	f := Features{
		HeightFt:        parcel.OrZero(p.HeightFt),
		Area1000:        parcel.OrZero(p.Area1000),
		Envelope:        parcel.OrZero(p.Envelope),
		BldgSqFt1000:    parcel.OrZero(p.BldgSqFt1000),
		ResDummy:        parcel.FlagValue(p.ResDummy),
		Historic:        parcel.FlagValue(p.Historic),
		SDB:             parcel.FlagValue(p.SDB),
		SDBEnvFull:      parcel.OrZero(p.SDBEnvFull),
		ZoningDREnvFull: parcel.OrZero(p.ZoningDREnvFull),
	}
	if p.Zoning != nil {
		for c, set := range p.Zoning {
			if set {
				f.Zoning[c] = 1
			}
		}
	}
	if p.Districts != nil {
		for d, set := range p.Districts {
			if set {
				f.Districts[d] = 1
			}
		}
	}
	return f
}

// Score is the parcel-specific part of the linear predictor, excluding the
// intercept and the macro terms.
func (f Features) Score() float64 {
	z := wHeightFt*f.HeightFt +
		wArea1000*f.Area1000 +
		wEnvelope*f.Envelope +
		wBldgSqFt*f.BldgSqFt1000 +
		wResDummy*f.ResDummy +
		wHistoric*f.Historic +
		wSDB*f.SDB
	for c, v := range f.Zoning {
		z += zoningWeights[c] * v
	}
	for d, v := range f.Districts {
		z += districtWeights[d] * v
	}
	return z
}

// Capacity is the number of units a redevelopment would yield, never negative.
func (f Features) Capacity() float64 {
	c := wCapEnvelope*f.Envelope + wCapSDBEnv*f.SDBEnvFull + wCapZoningDR*f.ZoningDREnvFull
	return math.Max(0, c)
}

// Probability returns the probability that a parcel with the given score
// redevelops at least once over the horizon.
func Probability(score float64, s Scenario) float64 {
	survive := 1.0
	for _, m := range Horizon {
		z := wIntercept + wConstCosts*m.Costs + wZillowPrice*m.price(s) + score
		survive *= 1 - logistic(z)
	}
	return 1 - survive
}

func logistic(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// Estimate is the model output for one parcel.
type Estimate struct {
	ProbLow   float64
	ProbHigh  float64
	Capacity  float64
	UnitsLow  float64
	UnitsHigh float64
}

// Evaluate runs both scenarios for f.
func Evaluate(f Features) Estimate {
	score := f.Score()
	e := Estimate{
		ProbLow:  Probability(score, Low),
		ProbHigh: Probability(score, High),
		Capacity: f.Capacity(),
	}
	e.UnitsLow = e.ProbLow * e.Capacity
	e.UnitsHigh = e.ProbHigh * e.Capacity
	return e
}
