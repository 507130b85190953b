// Package utils holds input helpers shared by the command-line runners.
package utils

import (
	"encoding/json"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// Source reports which parser accepted a lenient document.
type Source string

const (
	SourceJSON     Source = "json"
	SourceHJSON    Source = "hjson"
	SourceRepaired Source = "repaired"
)

// CanonicalJSON returns data as strict JSON. Valid JSON is returned as is.
// Otherwise it is read as HJSON (comments, unquoted keys, optional commas)
// and, failing that, passed through json-repair (unclosed brackets, single
// quotes, markdown fences).
func CanonicalJSON(data []byte) ([]byte, Source, error) {
	if json.Valid(data) {
		return data, SourceJSON, nil
	}

	if out, err := ParseHJSON(data); err == nil {
		return out, SourceHJSON, nil
	}

	repaired, err := RepairJSON(string(data))
	if err != nil {
		return nil, "", err
	}
	return []byte(repaired), SourceRepaired, nil
}

// ParseHJSON converts an HJSON document to standard JSON.
func ParseHJSON(data []byte) ([]byte, error) {
	var generic interface{}
	if err := hjson.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("HJSON_PARSE_ERROR: %v", err)
	}
	out, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("JSON_MARSHAL_ERROR: %v", err)
	}
	return out, nil
}

// RepairJSON fixes common hand-editing mistakes. The result is always
// syntactically valid JSON or an error.
func RepairJSON(malformed string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformed)
	if err != nil {
		return "", fmt.Errorf("JSON_REPAIR_FAILED: %v", err)
	}
	if !json.Valid([]byte(repaired)) {
		return "", fmt.Errorf("JSON_REPAIR_FAILED: output is not valid JSON")
	}
	return repaired, nil
}
