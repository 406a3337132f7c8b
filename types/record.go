package types

import "encoding/json"

// Record is a single raw JSON object read from an artifact.
// Values are as produced by encoding/json with UseNumber set:
// string, json.Number, bool, nil, []any or map[string]any
type Record map[string]any

// Get returns the value of a field and whether the field is present
// NOTE: a field which is present with a JSON null value returns (nil, true)
func (r Record) Get(field string) (any, bool) {
	v, ok := r[field]
	return v, ok
}

// IsNull returns true if the field is absent or explicitly null
func (r Record) IsNull(field string) bool {
	return r[field] == nil
}

// MissingFields returns the subset of fields which are not present in the record
func (r Record) MissingFields(fields ...string) []string {
	var missing []string
	for _, f := range fields {
		if _, ok := r[f]; !ok {
			missing = append(missing, f)
		}
	}
	return missing
}

func (r Record) String() string {
	b, err := json.Marshal(r)
	if err != nil {
		return "<invalid record>"
	}
	return string(b)
}
