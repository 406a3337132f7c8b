package transform

import (
	"context"
	"time"

	"github.com/turbot/songplay-etl/dataset"
	"github.com/turbot/songplay-etl/id_generator"
	"github.com/turbot/songplay-etl/tables"
)

// JoinOptions configures the fact joiner
type JoinOptions struct {
	Type      dataset.JoinType
	Match     MatchPolicy
	Generator id_generator.Generator
	Location  *time.Location
}

// JoinSongplays joins the NextSong activity records against the catalog to produce the songplays fact table.
// With an inner join unmatched plays are dropped, with a left join they are kept with null song_id and artist_id.
// A play matching several catalog records produces one row per match
func JoinSongplays(ctx context.Context, activity *dataset.Dataset[tables.ActivityRecord], catalog *dataset.Dataset[tables.CatalogRecord], opts JoinOptions) (*dataset.Dataset[tables.Songplay], error) {
	plays, err := FilterPages(ctx, activity, PageNextSong)
	if err != nil {
		return nil, err
	}

	joined, err := dataset.HashJoin(ctx, plays, catalog, opts.Match.activityKey, opts.Match.catalogKey, opts.Type)
	if err != nil {
		return nil, err
	}

	return dataset.MapWithIndex(ctx, joined, func(p, i int, j dataset.Joined[tables.ActivityRecord, tables.CatalogRecord]) (tables.Songplay, error) {
		a := j.Left
		parts, err := Decompose(a.Ts, opts.Location)
		if err != nil {
			return tables.Songplay{}, err
		}
		res := tables.Songplay{
			SongplayId: opts.Generator.Next(p, i),
			Timestamp:  parts.Timestamp.UnixMilli(),
			UserId:     a.UserId,
			Level:      a.Level,
			SessionId:  a.SessionId,
			Location:   a.Location,
			UserAgent:  a.UserAgent,
			Year:       int32(parts.Year),
			Month:      int32(parts.Month),
		}
		if j.Right != nil {
			songId, artistId := j.Right.SongId, j.Right.ArtistId
			res.SongId = &songId
			res.ArtistId = &artistId
		}
		return res, nil
	})
}
