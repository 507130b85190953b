// Package scenario runs a deck of what-if variants against a base case and
// compares their credit statistics.
package scenario

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"levfin_model/pkg/core/assumption"
)

// BaseName is the outcome name reserved for the unmodified base case.
const BaseName = "base"

// Overrides replace parts of the base case. Nil fields keep the base value.
type Overrides struct {
	RevenueGrowthPercent  []float64 `yaml:"revenueGrowthPercent,omitempty" json:"revenueGrowthPercent,omitempty"`
	EbitdaMarginPercent   []float64 `yaml:"ebitdaMarginPercent,omitempty" json:"ebitdaMarginPercent,omitempty"`
	CapexPercent          []float64 `yaml:"capexPercent,omitempty" json:"capexPercent,omitempty"`
	EbitdaAdjustments     []float64 `yaml:"ebitdaAdjustments,omitempty" json:"ebitdaAdjustments,omitempty"`
	TaxRatePercent        *float64  `yaml:"taxRatePercent,omitempty" json:"taxRatePercent,omitempty"`
	CashSweepPercent      *float64  `yaml:"cashSweepPercent,omitempty" json:"cashSweepPercent,omitempty"`
	Principal             *float64  `yaml:"principal,omitempty" json:"principal,omitempty"`
	InterestRatePercent   *float64  `yaml:"interestRatePercent,omitempty" json:"interestRatePercent,omitempty"`
	MandatoryAmortPercent *float64  `yaml:"mandatoryAmortPercent,omitempty" json:"mandatoryAmortPercent,omitempty"`
}

type Scenario struct {
	Name      string    `yaml:"name" json:"name"`
	Overrides Overrides `yaml:"overrides" json:"overrides"`
}

// Deck is a base case plus named variants.
type Deck struct {
	Name      string                 `yaml:"name" json:"name"`
	Base      assumption.Assumptions `yaml:"base" json:"base"`
	Scenarios []Scenario             `yaml:"scenarios" json:"scenarios"`
}

// Apply returns a copy of base with o applied.
func (o Overrides) Apply(base assumption.Assumptions) assumption.Assumptions {
	a := base.Clone()
	if o.RevenueGrowthPercent != nil {
		a.RevenueGrowthPercent = append([]float64(nil), o.RevenueGrowthPercent...)
	}
	if o.EbitdaMarginPercent != nil {
		a.EbitdaMarginPercent = append([]float64(nil), o.EbitdaMarginPercent...)
	}
	if o.CapexPercent != nil {
		a.CapexPercent = append([]float64(nil), o.CapexPercent...)
	}
	if o.EbitdaAdjustments != nil {
		a.EbitdaAdjustments = append([]float64(nil), o.EbitdaAdjustments...)
	}
	if o.TaxRatePercent != nil {
		a.TaxRatePercent = *o.TaxRatePercent
	}
	if o.CashSweepPercent != nil {
		a.CashSweepPercent = *o.CashSweepPercent
	}
	if o.Principal != nil {
		a.Debt.Principal = *o.Principal
	}
	if o.InterestRatePercent != nil {
		a.Debt.InterestRatePercent = *o.InterestRatePercent
	}
	if o.MandatoryAmortPercent != nil {
		a.Debt.MandatoryAmortPercent = *o.MandatoryAmortPercent
	}
	return a
}

// ParseDeck decodes a YAML deck. Unknown keys are rejected so a typo in a
// driver name cannot silently fall back to the base case. The base case goes
// through assumption.Decode, so a missing required field is reported as a
// *assumption.ValidationError wrapping assumption.ErrMissingField.
func ParseDeck(data []byte) (*Deck, error) {
	var d Deck
	if err := yaml.UnmarshalStrict(data, &d); err != nil {
		return nil, fmt.Errorf("parse scenario deck: %w", err)
	}
	if err := d.validate(); err != nil {
		return nil, err
	}

	base, err := decodeBase(data)
	if err != nil {
		return nil, err
	}
	d.Base = base
	return &d, nil
}

// decodeBase re-reads the deck's base case as JSON so absent fields are told
// apart from zeros.
func decodeBase(data []byte) (assumption.Assumptions, error) {
	var raw struct {
		Base interface{} `yaml:"base"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return assumption.Assumptions{}, fmt.Errorf("parse scenario deck: %w", err)
	}

	base := jsonValue(raw.Base)
	if base == nil {
		base = map[string]interface{}{}
	}
	b, err := json.Marshal(base)
	if err != nil {
		return assumption.Assumptions{}, fmt.Errorf("re-encode deck base: %w", err)
	}

	a, err := assumption.Decode(b)
	if err != nil {
		return assumption.Assumptions{}, fmt.Errorf("scenario deck base: %w", err)
	}
	return a, nil
}

// jsonValue converts yaml.v2's map[interface{}]interface{} nodes into
// string-keyed maps that encoding/json accepts.
func jsonValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = jsonValue(val)
		}
		return m
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = jsonValue(val)
		}
		return out
	default:
		return v
	}
}

// LoadDeck reads and parses a YAML deck file.
func LoadDeck(path string) (*Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario deck: %w", err)
	}
	return ParseDeck(data)
}

func (d *Deck) validate() error {
	seen := map[string]bool{BaseName: true}
	for i, s := range d.Scenarios {
		if s.Name == "" {
			return fmt.Errorf("scenario %d has no name", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate scenario name %q", s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}
