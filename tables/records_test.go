package tables

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turbot/songplay-etl/types"
)

func decodeRecord(t *testing.T, s string) types.Record {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var r types.Record
	require.NoError(t, dec.Decode(&r))
	return r
}

const catalogJSON = `{"num_songs": 1, "artist_id": "ARJIE2Y1187B994AB7", "artist_latitude": null, "artist_longitude": null, "artist_location": "", "artist_name": "Line Renaud", "song_id": "SOUPIRU12A6D4FA1E1", "title": "Der Kleine Dompfaff", "duration": 152.92036, "year": 0}`

const activityJSON = `{"artist":"Coldplay","auth":"Logged In","firstName":"Jacob","gender":"M","itemInSession":0,"lastName":"Klein","length":296.0,"level":"paid","location":"London","method":"PUT","page":"NextSong","registration":1540558108796.0,"sessionId":518,"song":"Fix You","status":200,"ts":1543449657796,"userAgent":"Mozilla/5.0","userId":"73"}`

func TestDecodeCatalogRecord(t *testing.T) {
	got, err := DecodeCatalogRecord(decodeRecord(t, catalogJSON))
	require.NoError(t, err)
	assert.Equal(t, "SOUPIRU12A6D4FA1E1", got.SongId)
	assert.Equal(t, "Line Renaud", got.ArtistName)
	require.NotNil(t, got.ArtistLocation)
	assert.Equal(t, "", *got.ArtistLocation)
	assert.Nil(t, got.ArtistLatitude)
	assert.Equal(t, int32(0), got.Year)
	assert.Equal(t, 152.92036, got.Duration)
}

func TestDecodeActivityRecord(t *testing.T) {
	got, err := DecodeActivityRecord(decodeRecord(t, activityJSON))
	require.NoError(t, err)
	assert.Equal(t, "73", got.UserId)
	assert.Equal(t, int64(518), got.SessionId)
	assert.Equal(t, json.Number("1543449657796"), got.Ts)
	require.NotNil(t, got.Length)
	assert.Equal(t, 296.0, *got.Length)
	assert.Equal(t, "NextSong", got.Page)
}

func TestDecodeActivityRecord_Normalisation(t *testing.T) {
	r := decodeRecord(t, activityJSON)
	r["userId"] = json.Number("7")
	r["sessionId"] = "42"
	r["song"] = nil
	r["length"] = nil

	got, err := DecodeActivityRecord(r)
	require.NoError(t, err)
	assert.Equal(t, "7", got.UserId)
	assert.Equal(t, int64(42), got.SessionId)
	assert.Nil(t, got.Song)
	assert.Nil(t, got.Length)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name          string
		activity      bool
		mutate        func(types.Record)
		wantParse     bool
		wantTransform string
	}{
		{
			name:      "catalog missing field",
			mutate:    func(r types.Record) { delete(r, "duration") },
			wantParse: true,
		},
		{
			name:          "catalog duration is a string",
			mutate:        func(r types.Record) { r["duration"] = "long" },
			wantTransform: "duration",
		},
		{
			name:          "catalog title null",
			mutate:        func(r types.Record) { r["title"] = nil },
			wantTransform: "title",
		},
		{
			name:          "catalog fractional year",
			mutate:        func(r types.Record) { r["year"] = json.Number("1999.5") },
			wantTransform: "year",
		},
		{
			name:          "catalog year out of range",
			mutate:        func(r types.Record) { r["year"] = json.Number("4294967296") },
			wantTransform: "year",
		},
		{
			name:      "activity missing ts",
			activity:  true,
			mutate:    func(r types.Record) { delete(r, "ts") },
			wantParse: true,
		},
		{
			name:          "activity ts is a boolean",
			activity:      true,
			mutate:        func(r types.Record) { r["ts"] = true },
			wantTransform: "ts",
		},
		{
			name:          "activity level is a number",
			activity:      true,
			mutate:        func(r types.Record) { r["level"] = json.Number("1") },
			wantTransform: "level",
		},
		{
			name:          "activity session id not an integer",
			activity:      true,
			mutate:        func(r types.Record) { r["sessionId"] = "abc" },
			wantTransform: "sessionId",
		},
		{
			name:          "activity user id is an object",
			activity:      true,
			mutate:        func(r types.Record) { r["userId"] = map[string]any{} },
			wantTransform: "userId",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			if tt.activity {
				r := decodeRecord(t, activityJSON)
				tt.mutate(r)
				_, err = DecodeActivityRecord(r)
			} else {
				r := decodeRecord(t, catalogJSON)
				tt.mutate(r)
				_, err = DecodeCatalogRecord(r)
			}
			require.Error(t, err)

			if tt.wantParse {
				var parseErr *types.ParseError
				assert.True(t, errors.As(err, &parseErr), "expected ParseError, got %v", err)
				return
			}
			var transformErr *types.TransformError
			require.True(t, errors.As(err, &transformErr), "expected TransformError, got %v", err)
			assert.Equal(t, tt.wantTransform, transformErr.Field)
		})
	}
}

func TestTable_ValidatePartitionBy(t *testing.T) {
	songs, ok := ByName(TableSongs)
	require.True(t, ok)
	assert.NoError(t, songs.ValidatePartitionBy(songs.DefaultPartitionBy))
	assert.Error(t, songs.ValidatePartitionBy([]string{"duration"}))
	assert.Error(t, songs.ValidatePartitionBy([]string{"year", "year"}))
	assert.Equal(t, []string{"artist_id", "song_id", "year"}, songs.PartitionColumns())

	for _, table := range All() {
		assert.NoError(t, table.ValidatePartitionBy(table.DefaultPartitionBy), table.Name)
	}

	_, ok = ByName("plays")
	assert.False(t, ok)
}

func TestSongplay_PartitionValues(t *testing.T) {
	sp := Songplay{Year: 2018, Month: 11, Level: "free"}
	values := sp.PartitionValues()
	assert.Equal(t, "2018", *values["year"])
	assert.Equal(t, "11", *values["month"])
	assert.Nil(t, values["song_id"])
}
