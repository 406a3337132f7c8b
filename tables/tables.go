package tables

import (
	"fmt"
	"slices"
	"sort"

	"golang.org/x/exp/maps"
)

const (
	TableSongs     = "songs"
	TableArtists   = "artists"
	TableUsers     = "users"
	TableTime      = "time"
	TableSongplays = "songplays"
)

// Row is implemented by the row type of every table
type Row interface {
	// PartitionValues returns the value of every column the table may be partitioned by.
	// A nil value is a null
	PartitionValues() map[string]*string
}

// Table describes an output table
type Table struct {
	Name string
	// an empty row, used to derive the schema
	Prototype Row
	// default partition columns, in path order
	DefaultPartitionBy []string
}

// PartitionColumns returns the columns the table may be partitioned by, sorted
func (t Table) PartitionColumns() []string {
	cols := maps.Keys(t.Prototype.PartitionValues())
	sort.Strings(cols)
	return cols
}

// ValidatePartitionBy returns an error if any of the columns may not be used to partition the table
func (t Table) ValidatePartitionBy(columns []string) error {
	valid := t.PartitionColumns()
	seen := make(map[string]struct{})
	for _, c := range columns {
		if !slices.Contains(valid, c) {
			return fmt.Errorf("table '%s' cannot be partitioned by '%s', valid columns: %v", t.Name, c, valid)
		}
		if _, ok := seen[c]; ok {
			return fmt.Errorf("table '%s' partition column '%s' is repeated", t.Name, c)
		}
		seen[c] = struct{}{}
	}
	return nil
}

var all = []Table{
	{Name: TableSongs, Prototype: Song{}, DefaultPartitionBy: []string{"year", "artist_id"}},
	{Name: TableArtists, Prototype: Artist{}},
	{Name: TableUsers, Prototype: User{}},
	{Name: TableTime, Prototype: Time{}, DefaultPartitionBy: []string{"year", "month"}},
	{Name: TableSongplays, Prototype: Songplay{}, DefaultPartitionBy: []string{"year", "month"}},
}

// All returns every output table, in write order
func All() []Table {
	return slices.Clone(all)
}

func ByName(name string) (Table, bool) {
	for _, t := range all {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}
