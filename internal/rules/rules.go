// Package rules re-scores a finished model table under upzoning rules: each
// rule selects parcels and proposes a taller height for them.
package rules

import (
	"os"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sfhousing/parcel-enrich/internal/parcel"
)

// Rule selects parcels and proposes a height for them. Empty selectors
// match every parcel.
type Rule struct {
	Name            string  `yaml:"name"`
	Neighborhood    string  `yaml:"neighborhood"`
	ZoningCode      string  `yaml:"zoning_code"`
	Height          string  `yaml:"height"`
	TransitDistance float64 `yaml:"transit_distance"`
	ProposedHeight  float64 `yaml:"proposed_height"`
}

type file struct {
	Rules []Rule `yaml:"rules"`
}

// Load reads a YAML rule file. Unknown keys are rejected so a misspelled
// selector does not silently widen a rule.
func Load(path string) ([]Rule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "rules: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	var doc file
	if err := dec.Decode(&doc); err != nil {
		return nil, eris.Wrapf(err, "rules: decode %s", path)
	}
	for i, r := range doc.Rules {
		if r.ProposedHeight <= 0 {
			return nil, eris.Errorf("rules: rule %d (%s): proposed_height must be positive", i, r.Name)
		}
		if r.TransitDistance < 0 {
			return nil, eris.Errorf("rules: rule %d (%s): transit_distance must not be negative", i, r.Name)
		}
	}
	return doc.Rules, nil
}

// Matches reports whether r selects p. The zoning selector matches one
// entry of the registry's "|"-separated zoning list; the height selector
// matches the rendered Height_Ft; a transit limit excludes parcels without a
// distance.
func (r Rule) Matches(p *parcel.Parcel) bool {
	if r.Neighborhood != "" && p.Neighborhood() != r.Neighborhood {
		return false
	}
	if r.ZoningCode != "" {
		code := parcel.Deref(p.ZoningCode)
		if code == "" || !slices.Contains(strings.Split(code, "|"), r.ZoningCode) {
			return false
		}
	}
	if r.Height != "" && parcel.FormatFloat(p.HeightFt) != r.Height {
		return false
	}
	if r.TransitDistance > 0 {
		if p.DistanceToTransit == nil || *p.DistanceToTransit > r.TransitDistance {
			return false
		}
	}
	return true
}

// ProposedHeight is the tallest height proposed for p by any matching rule.
func ProposedHeight(rules []Rule, p *parcel.Parcel) (float64, bool) {
	var (
		best  float64
		found bool
	)
	for _, r := range rules {
		if r.Matches(p) && (!found || r.ProposedHeight > best) {
			best = r.ProposedHeight
			found = true
		}
	}
	return best, found
}
