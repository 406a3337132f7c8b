package tables

import (
	"encoding/json"

	"github.com/turbot/songplay-etl/types"
)

// field names of the upstream record contract
var (
	CatalogFields = []string{
		"song_id", "title", "artist_id", "artist_name", "artist_location",
		"artist_latitude", "artist_longitude", "year", "duration",
	}
	ActivityFields = []string{
		"userId", "firstName", "lastName", "gender", "level", "ts", "page",
		"song", "artist", "length", "location", "sessionId", "userAgent",
	}
)

// CatalogRecord is a single song of the song catalog
type CatalogRecord struct {
	SongId          string
	Title           string
	ArtistId        string
	ArtistName      string
	ArtistLocation  *string
	ArtistLatitude  *float64
	ArtistLongitude *float64
	Year            int32
	Duration        float64
}

// ActivityRecord is a single user activity event
type ActivityRecord struct {
	UserId    string
	FirstName *string
	LastName  *string
	Gender    *string
	Level     string
	// epoch milliseconds, validated by the timestamp decomposer
	Ts        json.Number
	Page      string
	Song      *string
	Artist    *string
	Length    *float64
	Location  *string
	SessionId int64
	UserAgent *string
}

// DecodeCatalogRecord converts a raw record to a CatalogRecord.
// A missing field is a ParseError, a value of the wrong type is a TransformError
func DecodeCatalogRecord(r types.Record) (CatalogRecord, error) {
	f := newFieldReader("catalog", r, CatalogFields)
	res := CatalogRecord{
		SongId:          f.string("song_id"),
		Title:           f.string("title"),
		ArtistId:        f.string("artist_id"),
		ArtistName:      f.string("artist_name"),
		ArtistLocation:  f.optionalString("artist_location"),
		ArtistLatitude:  f.optionalFloat("artist_latitude"),
		ArtistLongitude: f.optionalFloat("artist_longitude"),
		Year:            f.int32("year"),
		Duration:        f.float("duration"),
	}
	if f.err != nil {
		return CatalogRecord{}, f.err
	}
	return res, nil
}

// DecodeActivityRecord converts a raw record to an ActivityRecord.
// A missing field is a ParseError, a value of the wrong type is a TransformError
func DecodeActivityRecord(r types.Record) (ActivityRecord, error) {
	f := newFieldReader("activity", r, ActivityFields)
	res := ActivityRecord{
		UserId:    f.stringOrNumber("userId"),
		FirstName: f.optionalString("firstName"),
		LastName:  f.optionalString("lastName"),
		Gender:    f.optionalString("gender"),
		Level:     f.string("level"),
		Ts:        f.number("ts"),
		Page:      f.string("page"),
		Song:      f.optionalString("song"),
		Artist:    f.optionalString("artist"),
		Length:    f.optionalFloat("length"),
		Location:  f.optionalString("location"),
		SessionId: f.int("sessionId"),
		UserAgent: f.optionalString("userAgent"),
	}
	if f.err != nil {
		return ActivityRecord{}, f.err
	}
	return res, nil
}
