package schema

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/iancoleman/strcase"
)

// SchemaFromStruct builds the schema of a table from the parquet tags of its row struct.
// Fields without a parquet tag are not columns. A tag without a name uses the snake case field name,
// a tag without a type infers it from the field type
func SchemaFromStruct(name string, s any) (*TableSchema, error) {
	return SchemaFromType(name, reflect.TypeOf(s))
}

func SchemaFromType(name string, t reflect.Type) (*TableSchema, error) {
	var res = &TableSchema{Name: name}

	// If rowStruct is a pointer, get the element type
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("schema for table '%s' requires a struct, got %s", name, t.Kind())
	}

	var errorList []error
	seen := make(map[string]struct{})
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		tag, ok := field.Tag.Lookup("parquet")
		if !ok {
			continue
		}
		p, err := ParseParquetTag(tag)
		if err != nil {
			errorList = append(errorList, fmt.Errorf("field %s: %w", field.Name, err))
			continue
		}
		if p.Skip {
			continue
		}

		if p.Name == "" {
			p.Name = strcase.ToSnake(field.Name)
		}
		if _, dup := seen[p.Name]; dup {
			errorList = append(errorList, fmt.Errorf("field %s: duplicate column name '%s'", field.Name, p.Name))
			continue
		}
		seen[p.Name] = struct{}{}

		c, err := columnFromField(field, p)
		if err != nil {
			errorList = append(errorList, fmt.Errorf("field %s: %w", field.Name, err))
			continue
		}
		res.Columns = append(res.Columns, c)
	}

	if len(errorList) > 0 {
		return nil, errors.Join(errorList...)
	}
	if len(res.Columns) == 0 {
		return nil, fmt.Errorf("table '%s' has no columns", name)
	}
	return res, nil
}

func columnFromField(field reflect.StructField, p *ParquetTag) (*ColumnSchema, error) {
	fieldType := field.Type
	isPtr := fieldType.Kind() == reflect.Ptr
	if isPtr {
		fieldType = fieldType.Elem()
	}

	inferred, err := getColumnType(fieldType)
	if err != nil {
		return nil, err
	}

	c := &ColumnSchema{
		SourceName:    field.Name,
		ColumnName:    p.Name,
		Type:          p.Type,
		ConvertedType: p.ConvertedType,
		Nullable:      isPtr,
	}
	if c.Type == "" {
		c.Type = inferred.Type
		if c.ConvertedType == "" {
			c.ConvertedType = inferred.ConvertedType
		}
	} else if c.Type != inferred.Type {
		return nil, fmt.Errorf("parquet type %s does not match field type %s (%s)", c.Type, fieldType, inferred.Type)
	}

	// pointers are nullable and must be OPTIONAL, values must not be
	if isPtr && p.RepetitionType != "" && !p.Optional() {
		return nil, fmt.Errorf("pointer field must have repetitiontype=OPTIONAL")
	}
	if !isPtr && p.Optional() {
		return nil, fmt.Errorf("repetitiontype=OPTIONAL requires a pointer field")
	}
	return c, nil
}

type columnType struct {
	Type          string
	ConvertedType string
}

func getColumnType(t reflect.Type) (columnType, error) {
	switch t.Kind() {
	case reflect.Bool:
		return columnType{Type: "BOOLEAN"}, nil
	case reflect.Int8:
		return columnType{Type: "INT32", ConvertedType: "INT_8"}, nil
	case reflect.Int16:
		return columnType{Type: "INT32", ConvertedType: "INT_16"}, nil
	case reflect.Int32:
		return columnType{Type: "INT32"}, nil
	case reflect.Int, reflect.Int64:
		return columnType{Type: "INT64"}, nil
	case reflect.Uint8:
		return columnType{Type: "INT32", ConvertedType: "UINT_8"}, nil
	case reflect.Uint16:
		return columnType{Type: "INT32", ConvertedType: "UINT_16"}, nil
	case reflect.Uint32:
		return columnType{Type: "INT32", ConvertedType: "UINT_32"}, nil
	case reflect.Uint, reflect.Uint64:
		return columnType{Type: "INT64", ConvertedType: "UINT_64"}, nil
	case reflect.Float32:
		return columnType{Type: "FLOAT"}, nil
	case reflect.Float64:
		return columnType{Type: "DOUBLE"}, nil
	case reflect.String:
		return columnType{Type: "BYTE_ARRAY", ConvertedType: "UTF8"}, nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return columnType{Type: "BYTE_ARRAY"}, nil
		}
	}
	return columnType{}, fmt.Errorf("unsupported column type %s", t)
}
