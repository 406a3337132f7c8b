package schema

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/exp/maps"
)

// ParquetTag represents the components of a parquet-go struct tag,
// e.g. `parquet:"name=song_id, type=BYTE_ARRAY, convertedtype=UTF8"`
type ParquetTag struct {
	Name           string
	Type           string
	ConvertedType  string
	RepetitionType string
	Encoding       string
	Skip           bool
}

// ParseParquetTag parses and validates a parquet tag string
func ParseParquetTag(tag string) (*ParquetTag, error) {
	pt := &ParquetTag{}

	// NOTE: if tag is "-" then skip the field
	if tag == "-" {
		pt.Skip = true
		return pt, nil
	}
	// an empty tag marks a column with an inferred name and type
	if strings.TrimSpace(tag) == "" {
		return pt, nil
	}

	// Split the tag into components
	parts := strings.Split(tag, ",")
	for _, part := range parts {
		part = strings.TrimSpace(part)

		// split on '='
		kv := strings.Split(part, "=")
		if len(kv) != 2 {
			return nil, fmt.Errorf("invalid parquet tag: %s - expected comma separated key=value pairs", tag)
		}

		key := strings.ToLower(strings.TrimSpace(kv[0]))
		value := strings.TrimSpace(kv[1])

		switch key {
		case "name":
			pt.Name = value
		case "type":
			pt.Type = strings.ToUpper(value)
		case "convertedtype":
			pt.ConvertedType = strings.ToUpper(value)
		case "repetitiontype":
			pt.RepetitionType = strings.ToUpper(value)
		case "encoding":
			pt.Encoding = strings.ToUpper(value)
		default:
			return nil, fmt.Errorf("invalid parquet tag: %s, key '%s' not recognized", tag, key)
		}
	}

	return pt.validate()
}

func (t *ParquetTag) Optional() bool {
	return t.RepetitionType == "OPTIONAL"
}

// parquet physical types
var validTypes = map[string]struct{}{
	"BOOLEAN":              {},
	"INT32":                {},
	"INT64":                {},
	"INT96":                {},
	"FLOAT":                {},
	"DOUBLE":               {},
	"BYTE_ARRAY":           {},
	"FIXED_LEN_BYTE_ARRAY": {},
}

var validConvertedTypes = map[string]struct{}{
	"UTF8":             {},
	"DATE":             {},
	"TIME_MILLIS":      {},
	"TIME_MICROS":      {},
	"TIMESTAMP_MILLIS": {},
	"TIMESTAMP_MICROS": {},
	"INT_8":            {},
	"INT_16":           {},
	"INT_32":           {},
	"INT_64":           {},
	"UINT_8":           {},
	"UINT_16":          {},
	"UINT_32":          {},
	"UINT_64":          {},
	"DECIMAL":          {},
	"JSON":             {},
}

var validRepetitionTypes = map[string]struct{}{
	"REQUIRED": {},
	"OPTIONAL": {},
	"REPEATED": {},
}

var validEncodings = map[string]struct{}{
	"PLAIN":                   {},
	"PLAIN_DICTIONARY":        {},
	"RLE_DICTIONARY":          {},
	"DELTA_BINARY_PACKED":     {},
	"DELTA_LENGTH_BYTE_ARRAY": {},
	"DELTA_BYTE_ARRAY":        {},
}

// column names must be usable unquoted by query engines reading the output
var reservedKeywords = map[string]struct{}{
	"ALL": {}, "AND": {}, "AS": {}, "ASC": {}, "CASE": {}, "CAST": {}, "CHECK": {},
	"COLUMN": {}, "CREATE": {}, "CROSS": {}, "DEFAULT": {}, "DESC": {}, "DISTINCT": {},
	"ELSE": {}, "END": {}, "EXCEPT": {}, "FROM": {}, "FULL": {}, "GROUP": {}, "HAVING": {},
	"IN": {}, "INNER": {}, "INTO": {}, "IS": {}, "JOIN": {}, "LEFT": {}, "LIKE": {},
	"LIMIT": {}, "NOT": {}, "NULL": {}, "OFFSET": {}, "ON": {}, "OR": {}, "ORDER": {},
	"OUTER": {}, "RIGHT": {}, "SELECT": {}, "TABLE": {}, "THEN": {}, "TO": {}, "UNION": {},
	"UNIQUE": {}, "USING": {}, "WHEN": {}, "WHERE": {}, "WITH": {},
}

var unquotedRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

func (t *ParquetTag) validate() (*ParquetTag, error) {
	if t.Name != "" {
		if !unquotedRegex.MatchString(t.Name) {
			return nil, fmt.Errorf("invalid parquet tag: 'name' %q must start with a letter and contain only letters, numbers and underscores", t.Name)
		}
		if _, reserved := reservedKeywords[strings.ToUpper(t.Name)]; reserved {
			return nil, fmt.Errorf("invalid parquet tag: 'name' %q cannot be a reserved keyword", t.Name)
		}
	}
	if err := checkValue("type", t.Type, validTypes); err != nil {
		return nil, err
	}
	if err := checkValue("convertedtype", t.ConvertedType, validConvertedTypes); err != nil {
		return nil, err
	}
	if err := checkValue("repetitiontype", t.RepetitionType, validRepetitionTypes); err != nil {
		return nil, err
	}
	if err := checkValue("encoding", t.Encoding, validEncodings); err != nil {
		return nil, err
	}
	return t, nil
}

func checkValue(key, value string, valid map[string]struct{}) error {
	if value == "" {
		return nil
	}
	if _, ok := valid[value]; !ok {
		keys := maps.Keys(valid)
		sort.Strings(keys)
		return fmt.Errorf("invalid parquet tag: '%s' must be one of %v", key, keys)
	}
	return nil
}
