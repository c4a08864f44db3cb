//go:build !integration

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sfhousing/parcel-enrich/internal/rules"
	"github.com/sfhousing/parcel-enrich/internal/units"
)

func TestFormatSimulation(t *testing.T) {
	rep := rules.Report{
		Baseline: units.Totals{Low: 100, High: 200},
		Plan:     units.Totals{Low: 130, High: 260},
		Rescored: 42,
		Gains: map[string]units.Totals{
			"Mission":      {Low: 10, High: 20},
			"Outer Sunset": {Low: 20, High: 40},
		},
	}

	var buf bytes.Buffer
	formatSimulation(&buf, rep)
	output := buf.String()

	assert.Contains(t, output, "Parcels re-scored: 42")
	assert.Contains(t, output, "100.0 - 200.0")
	assert.Contains(t, output, "130.0 - 260.0")
	assert.Contains(t, output, "NEIGHBORHOOD")
	assert.Less(t, strings.Index(output, "Outer Sunset"), strings.Index(output, "Mission"),
		"larger gain listed first")
}

func TestFormatSimulation_NoGains(t *testing.T) {
	var buf bytes.Buffer
	formatSimulation(&buf, rules.Report{})

	assert.Contains(t, buf.String(), "Parcels re-scored: 0")
	assert.NotContains(t, buf.String(), "NEIGHBORHOOD")
}
