package assumption

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// assumptionsSchema describes the wire form. Driver arrays carry no length
// bound here; length policy belongs to Normalize.
const assumptionsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["ltmRevenue", "ltmEbitda", "debt"],
  "properties": {
    "ltmRevenue": {"type": "number", "minimum": 0},
    "ltmEbitda": {"type": "number"},
    "revenueGrowthPercent": {"type": "array", "items": {"type": "number"}},
    "ebitdaMarginPercent": {"type": "array", "items": {"type": "number"}},
    "capexPercent": {"type": "array", "items": {"type": "number"}},
    "ebitdaAdjustments": {"type": "array", "items": {"type": "number"}},
    "taxRatePercent": {"type": "number"},
    "depreciationPercent": {"type": "number"},
    "cashSweepPercent": {"type": "number", "minimum": 0, "maximum": 100},
    "debt": {
      "type": "object",
      "required": ["principal", "interestRatePercent"],
      "properties": {
        "principal": {"type": "number", "minimum": 0},
        "interestRatePercent": {"type": "number", "minimum": 0},
        "mandatoryAmortPercent": {"type": "number", "minimum": 0}
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(assumptionsSchema)

// SchemaError collects every schema violation found in one document.
type SchemaError struct {
	Issues []*ValidationError
}

func (e *SchemaError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		parts = append(parts, is.Error())
	}
	return "assumptions failed schema validation: " + strings.Join(parts, "; ")
}

// Unwrap exposes the individual issues to errors.Is / errors.As.
func (e *SchemaError) Unwrap() []error {
	out := make([]error, 0, len(e.Issues))
	for _, is := range e.Issues {
		out = append(out, is)
	}
	return out
}

func checkSchema(data []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if result.Valid() {
		return nil
	}

	issues := make([]*ValidationError, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		field := re.Field()
		if re.Type() == "required" {
			if prop, ok := re.Details()["property"].(string); ok {
				switch {
				case field == "(root)":
					field = prop
				case field == prop, strings.HasSuffix(field, "."+prop):
				default:
					field = field + "." + prop
				}
			}
			issues = append(issues, missing(field))
			continue
		}
		issues = append(issues, invalid(field, re.Description()))
	}
	sort.SliceStable(issues, func(i, j int) bool { return issues[i].Field < issues[j].Field })
	return &SchemaError{Issues: issues}
}
