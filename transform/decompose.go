package transform

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/turbot/songplay-etl/dataset"
	"github.com/turbot/songplay-etl/id_generator"
	"github.com/turbot/songplay-etl/tables"
	"github.com/turbot/songplay-etl/types"
)

// DateParts is the calendar decomposition of a timestamp
type DateParts struct {
	// truncated to the second, in the decomposition location
	Timestamp time.Time
	Hour      int
	Day       int
	// ISO 8601 week number
	Week  int
	Month int
	Year  int
	// 1 = Sunday ... 7 = Saturday
	Weekday int
}

// Decompose converts epoch milliseconds to calendar components in the given location.
// A non-numeric value is a TransformError
func Decompose(ts json.Number, loc *time.Location) (DateParts, error) {
	ms, err := epochMillis(ts)
	if err != nil {
		return DateParts{}, types.NewTransformError("decompose", "ts", ts.String(), err)
	}
	if loc == nil {
		loc = time.UTC
	}

	t := time.UnixMilli(ms).Truncate(time.Second).In(loc)
	_, week := t.ISOWeek()
	return DateParts{
		Timestamp: t,
		Hour:      t.Hour(),
		Day:       t.Day(),
		Week:      week,
		Month:     int(t.Month()),
		Year:      t.Year(),
		Weekday:   int(t.Weekday()) + 1,
	}, nil
}

func epochMillis(ts json.Number) (int64, error) {
	s := ts.String()
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ms, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number")
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("out of range")
	}
	return int64(math.Floor(f)), nil
}

// TimeRows produces one time row per NextSong activity record, with a surrogate id from the generator
func TimeRows(ctx context.Context, activity *dataset.Dataset[tables.ActivityRecord], gen id_generator.Generator, loc *time.Location) (*dataset.Dataset[tables.Time], error) {
	plays, err := FilterPages(ctx, activity, PageNextSong)
	if err != nil {
		return nil, err
	}
	return dataset.MapWithIndex(ctx, plays, func(p, i int, a tables.ActivityRecord) (tables.Time, error) {
		parts, err := Decompose(a.Ts, loc)
		if err != nil {
			return tables.Time{}, err
		}
		return tables.Time{
			Id:        gen.Next(p, i),
			Timestamp: parts.Timestamp.UnixMilli(),
			Hour:      int32(parts.Hour),
			Day:       int32(parts.Day),
			Week:      int32(parts.Week),
			Month:     int32(parts.Month),
			Year:      int32(parts.Year),
			Weekday:   int32(parts.Weekday),
		}, nil
	})
}
