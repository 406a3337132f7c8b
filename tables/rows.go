package tables

import "strconv"

// Song is a row of the songs dimension
type Song struct {
	SongId   string  `parquet:"name=song_id, type=BYTE_ARRAY, convertedtype=UTF8" json:"song_id"`
	Title    string  `parquet:"name=title, type=BYTE_ARRAY, convertedtype=UTF8" json:"title"`
	ArtistId string  `parquet:"name=artist_id, type=BYTE_ARRAY, convertedtype=UTF8" json:"artist_id"`
	Year     int32   `parquet:"name=year, type=INT32" json:"year"`
	Duration float64 `parquet:"name=duration, type=DOUBLE" json:"duration"`
}

func (s Song) PartitionValues() map[string]*string {
	return map[string]*string{
		"year":      intValue(int64(s.Year)),
		"artist_id": &s.ArtistId,
		"song_id":   &s.SongId,
	}
}

// Artist is a row of the artists dimension
type Artist struct {
	ArtistId        string   `parquet:"name=artist_id, type=BYTE_ARRAY, convertedtype=UTF8" json:"artist_id"`
	ArtistName      string   `parquet:"name=artist_name, type=BYTE_ARRAY, convertedtype=UTF8" json:"artist_name"`
	ArtistLocation  *string  `parquet:"name=artist_location, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL" json:"artist_location"`
	ArtistLatitude  *float64 `parquet:"name=artist_latitude, type=DOUBLE, repetitiontype=OPTIONAL" json:"artist_latitude"`
	ArtistLongitude *float64 `parquet:"name=artist_longitude, type=DOUBLE, repetitiontype=OPTIONAL" json:"artist_longitude"`
}

func (a Artist) PartitionValues() map[string]*string {
	return map[string]*string{
		"artist_id":       &a.ArtistId,
		"artist_location": a.ArtistLocation,
	}
}

// User is a row of the users dimension
type User struct {
	UserId    string  `parquet:"name=userId, type=BYTE_ARRAY, convertedtype=UTF8" json:"userId"`
	FirstName *string `parquet:"name=firstName, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL" json:"firstName"`
	LastName  *string `parquet:"name=lastName, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL" json:"lastName"`
	Gender    *string `parquet:"name=gender, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL" json:"gender"`
	Level     string  `parquet:"name=level, type=BYTE_ARRAY, convertedtype=UTF8" json:"level"`
}

func (u User) PartitionValues() map[string]*string {
	return map[string]*string{
		"userId": &u.UserId,
		"gender": u.Gender,
		"level":  &u.Level,
	}
}

// Time is a row of the time dimension, one per song play
type Time struct {
	Id int64 `parquet:"name=id, type=INT64" json:"id"`
	// epoch milliseconds, truncated to the second
	Timestamp int64 `parquet:"name=timestamp, type=INT64, convertedtype=TIMESTAMP_MILLIS" json:"timestamp"`
	Hour      int32 `parquet:"name=hour, type=INT32" json:"hour"`
	Day       int32 `parquet:"name=day, type=INT32" json:"day"`
	Week      int32 `parquet:"name=week, type=INT32" json:"week"`
	Month     int32 `parquet:"name=month, type=INT32" json:"month"`
	Year      int32 `parquet:"name=year, type=INT32" json:"year"`
	// 1 = Sunday ... 7 = Saturday
	Weekday int32 `parquet:"name=weekday, type=INT32" json:"weekday"`
}

func (t Time) PartitionValues() map[string]*string {
	return map[string]*string{
		"year":    intValue(int64(t.Year)),
		"month":   intValue(int64(t.Month)),
		"week":    intValue(int64(t.Week)),
		"day":     intValue(int64(t.Day)),
		"hour":    intValue(int64(t.Hour)),
		"weekday": intValue(int64(t.Weekday)),
	}
}

// Songplay is a row of the songplays fact table, one per matched song play
type Songplay struct {
	SongplayId int64   `parquet:"name=songplay_id, type=INT64" json:"songplay_id"`
	Timestamp  int64   `parquet:"name=timestamp, type=INT64, convertedtype=TIMESTAMP_MILLIS" json:"timestamp"`
	UserId     string  `parquet:"name=userId, type=BYTE_ARRAY, convertedtype=UTF8" json:"userId"`
	Level      string  `parquet:"name=level, type=BYTE_ARRAY, convertedtype=UTF8" json:"level"`
	SongId     *string `parquet:"name=song_id, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL" json:"song_id"`
	ArtistId   *string `parquet:"name=artist_id, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL" json:"artist_id"`
	SessionId  int64   `parquet:"name=sessionId, type=INT64" json:"sessionId"`
	Location   *string `parquet:"name=location, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL" json:"location"`
	UserAgent  *string `parquet:"name=userAgent, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL" json:"userAgent"`

	// partition values only, not written as columns
	Year  int32 `json:"-"`
	Month int32 `json:"-"`
}

func (s Songplay) PartitionValues() map[string]*string {
	return map[string]*string{
		"year":    intValue(int64(s.Year)),
		"month":   intValue(int64(s.Month)),
		"level":   &s.Level,
		"userId":  &s.UserId,
		"song_id": s.SongId,
	}
}

func intValue(i int64) *string {
	s := strconv.FormatInt(i, 10)
	return &s
}
