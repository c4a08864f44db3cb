package enrich

import (
	"github.com/sfhousing/parcel-enrich/internal/parcel"
)

// PlanningDistricts maps planning_district names to their DIST_* flag.
var PlanningDistricts = map[string]parcel.District{
	"South Bayshore":   parcel.DistSBayshore,
	"Bernal Heights":   parcel.DistBernalHts,
	"South Central":    parcel.DistSCentral,
	"Central":          parcel.DistCentral,
	"Buena Vista":      parcel.DistBuenaVista,
	"Northeast":        parcel.DistNortheast,
	"Western Addition": parcel.DistWestAddition,
	"South of Market":  parcel.DistSOMA,
	"Inner Sunset":     parcel.DistInnerSunset,
	"Richmond":         parcel.DistRichmond,
	"Ingleside":        parcel.DistIngleside,
	"Outer Sunset":     parcel.DistOuterSunset,
	"Marina":           parcel.DistMarina,
	"Mission":          parcel.DistMission,
}

// zoningFamilies lists the planning codes of each zp_* category.
var zoningFamilies = map[parcel.ZoningCategory][]string{
	parcel.ZPRH2: {
		"RH-2",
	},
	parcel.ZPRH3RM1: {
		"RH-3", "RM-1",
	},
	parcel.ZPOfficeComm: {
		"C-2", "C-3-G", "C-3-O", "C-3-O(SD)", "C-3-R", "C-3-S", "C-M",
		"CMUO", "MUO", "WMUO",
	},
	parcel.ZPDRMultiRTO: {
		"NC-1", "NC-2", "NC-3", "NC-S", "RC-3", "RC-4", "RM-2", "RM-3", "RM-4",
		"RSD", "SLR", "SSO", "NCD",
		"NCD-24TH-MISSION", "NCD-24TH-NOE-VALLEY", "NCD-BROADWAY", "NCD-CASTRO",
		"NCD-COLE VALLEY", "NCD-CORTLAND AVENUE", "NCD-EXCELSIOR OUTER MISSION",
		"NCD-FILLMORE", "NCD-GEARY BOULEVARD", "NCD-HAIGHT", "NCD-HAYES",
		"NCD-INNER BALBOA STREET", "NCD-INNER CLEMENT", "NCD-INNER SUNSET",
		"NCD-INNER TARAVAL STREET", "NCD-IRVING", "NCD-JAPANTOWN", "NCD-JUDAH",
		"NCD-LAKESIDE VILLAGE", "NCD-LOWER HAIGHT STREET", "NCD-LOWER POLK STREET",
		"NCD-MISSION BERNAL", "NCD-NORIEGA", "NCD-NORTH BEACH",
		"NCD-OUTER BALBOA STREET", "NCD-OUTER CLEMENT", "NCD-PACIFIC", "NCD-POLK",
		"NCD-SACRAMENTO", "NCD-SAN BRUNO AVENUE", "NCD-TARAVAL", "NCD-UNION",
		"NCD-UPPER FILLMORE", "NCD-UPPER MARKET", "NCD-VALENCIA", "NCD-WEST PORTAL",
		"NCD-BAYVIEW",
	},
	parcel.ZPFBDMultiRTO: {
		"NCT", "NCT-1", "NCT-2", "NCT-3", "NCT-DIVISADERO", "NCT-FOLSOM",
		"NCT-GLEN PARK", "NCT-HAYES", "NCT-MISSION", "NCT-OCEAN", "NCT-SOMA",
		"NCT-UPPER MARKET", "RTO", "RTO-1", "RTO-C", "RTO-M", "DTR", "MUR",
		"MUG", "RCD", "RED", "RED-MX", "RH DTR", "SB-DTR", "SPD", "TB DTR",
		"UMU", "WMUG", "PM-MU1", "PM-MU2", "PM-R", "P70-MU", "MR-MU",
	},
	parcel.ZPPDRInd: {
		"M-1", "M-2", "PDR-1", "PDR-1-B", "PDR-1-D", "PDR-1-G", "PDR-2",
		"SALI", "SLI",
	},
	parcel.ZPPublic: {
		"P", "PM-CF", "PM-OS", "MB-O", "MB-OS",
	},
	parcel.ZPRedev: {
		"HP-RA", "MB-RA", "MISS BAY N RED", "MISS BAY S RED", "MISS BAY S PLN",
	},
}

// codeToCategory is the inverse of zoningFamilies.
var codeToCategory = func() map[string]parcel.ZoningCategory {
	m := make(map[string]parcel.ZoningCategory)
	for cat, codes := range zoningFamilies {
		for _, code := range codes {
			m[code] = cat
		}
	}
	return m
}()

// CategoryOf returns the zp_* category of a planning code. Only the primary
// entry of a semicolon-joined list is considered.
func CategoryOf(code string) (parcel.ZoningCategory, bool) {
	cat, ok := codeToCategory[parcel.PrimaryCode(code)]
	return cat, ok
}

// Eligibility thresholds.
const (
	// OpenSpaceHeight is the height-district sentinel for open space.
	OpenSpaceHeight = 1000.0

	// LargeParcelArea is the Area_1000 above which a single-family lot is
	// treated as institutional.
	LargeParcelArea = 20.0
	LargeParcelZone = "RH-1(D)"

	SDBEnvelopeThreshold = 9.0
	SDBHeightCap         = 130.0

	ExcludedDistrict     = "Presidio"
	ShipyardNeighborhood = "Bayview Hunters Point"
)

// nonHousingCodes are zoning codes that never carry housing.
var nonHousingCodes = map[string]bool{
	"P":     true,
	"M-1":   true,
	"M-2":   true,
	"PM-CF": true,
	"PM-OS": true,
	"MB-OS": true,
}

// nonHousingPrefixes match code families that never carry housing.
var nonHousingPrefixes = []string{"PDR-"}

// sdbFamilies are matched as case-insensitive substrings of the zoning code.
var sdbFamilies = []string{"RTO", "NCT", "WMUG"}
