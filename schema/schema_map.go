package schema

import (
	"fmt"
	"sync"

	"github.com/turbot/songplay-etl/tables"
)

// SchemaMap is a map of table schemas, keyed by table name
type SchemaMap map[string]*TableSchema

var (
	tableSchemasOnce sync.Once
	tableSchemas     SchemaMap
	tableSchemasErr  error
)

// TableSchemas returns the schema of every output table
func TableSchemas() (SchemaMap, error) {
	tableSchemasOnce.Do(func() {
		res := make(SchemaMap)
		for _, t := range tables.All() {
			s, err := SchemaFromStruct(t.Name, t.Prototype)
			if err != nil {
				tableSchemasErr = fmt.Errorf("invalid schema for table '%s': %w", t.Name, err)
				return
			}
			res[t.Name] = s
		}
		tableSchemas = res
	})
	return tableSchemas, tableSchemasErr
}

// ForTable returns the schema of the named table
func ForTable(name string) (*TableSchema, error) {
	schemas, err := TableSchemas()
	if err != nil {
		return nil, err
	}
	s, ok := schemas[name]
	if !ok {
		return nil, fmt.Errorf("no schema for table '%s'", name)
	}
	return s, nil
}
