package schema

import (
	"fmt"
	"strings"
)

// TableSchema is the column layout of an output table
type TableSchema struct {
	Name    string          `json:"name"`
	Columns []*ColumnSchema `json:"columns"`
}

func (s *TableSchema) AsMap() map[string]*ColumnSchema {
	var res = make(map[string]*ColumnSchema, len(s.Columns))
	for _, c := range s.Columns {
		res[c.ColumnName] = c
	}
	return res
}

func (s *TableSchema) ColumnNames() []string {
	res := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		res[i] = c.ColumnName
	}
	return res
}

func (s *TableSchema) String() string {
	var sb strings.Builder
	sb.WriteString(s.Name)
	sb.WriteString("\n")
	maxLen := 0
	for _, c := range s.Columns {
		maxLen = max(maxLen, len(c.ColumnName))
	}
	for _, c := range s.Columns {
		sb.WriteString(fmt.Sprintf("  %-*s  %s\n", maxLen, c.ColumnName, c.FullType()))
	}
	return sb.String()
}
