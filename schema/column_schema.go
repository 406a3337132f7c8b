package schema

import "fmt"

type ColumnSchema struct {
	// SourceName is the struct field name
	SourceName string `json:"-"`
	ColumnName string `json:"name"`
	// parquet physical type
	Type          string `json:"type"`
	ConvertedType string `json:"converted_type,omitempty"`
	Nullable      bool   `json:"nullable"`
}

// FullType returns the type including the converted type and nullability, e.g. BYTE_ARRAY(UTF8) NULL
func (c *ColumnSchema) FullType() string {
	res := c.Type
	if c.ConvertedType != "" {
		res = fmt.Sprintf("%s(%s)", res, c.ConvertedType)
	}
	if c.Nullable {
		return res + " NULL"
	}
	return res + " NOT NULL"
}
