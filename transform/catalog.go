package transform

import (
	"context"

	"github.com/turbot/songplay-etl/dataset"
	"github.com/turbot/songplay-etl/tables"
	"github.com/turbot/songplay-etl/types"
)

// DecodeCatalog converts raw catalog records to typed records
func DecodeCatalog(ctx context.Context, records *dataset.Dataset[types.Record]) (*dataset.Dataset[tables.CatalogRecord], error) {
	return dataset.Map(ctx, records, tables.DecodeCatalogRecord)
}

// ProjectSongs selects the songs dimension from the catalog. Every catalog record produces exactly one row
func ProjectSongs(ctx context.Context, catalog *dataset.Dataset[tables.CatalogRecord]) (*dataset.Dataset[tables.Song], error) {
	return dataset.Map(ctx, catalog, func(c tables.CatalogRecord) (tables.Song, error) {
		return tables.Song{
			SongId:   c.SongId,
			Title:    c.Title,
			ArtistId: c.ArtistId,
			Year:     c.Year,
			Duration: c.Duration,
		}, nil
	})
}

// ProjectArtists selects the artists dimension from the catalog. Duplicate artists are kept
func ProjectArtists(ctx context.Context, catalog *dataset.Dataset[tables.CatalogRecord]) (*dataset.Dataset[tables.Artist], error) {
	return dataset.Map(ctx, catalog, func(c tables.CatalogRecord) (tables.Artist, error) {
		return tables.Artist{
			ArtistId:        c.ArtistId,
			ArtistName:      c.ArtistName,
			ArtistLocation:  c.ArtistLocation,
			ArtistLatitude:  c.ArtistLatitude,
			ArtistLongitude: c.ArtistLongitude,
		}, nil
	})
}
