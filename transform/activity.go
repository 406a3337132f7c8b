package transform

import (
	"context"
	"slices"

	"github.com/turbot/songplay-etl/dataset"
	"github.com/turbot/songplay-etl/tables"
	"github.com/turbot/songplay-etl/types"
)

const (
	PageNextSong = "NextSong"
	PageHome     = "Home"
)

// UserPages are the pages retained for the users dimension
var UserPages = []string{PageNextSong, PageHome}

// DecodeActivity converts raw activity records to typed records
func DecodeActivity(ctx context.Context, records *dataset.Dataset[types.Record]) (*dataset.Dataset[tables.ActivityRecord], error) {
	return dataset.Map(ctx, records, tables.DecodeActivityRecord)
}

// FilterPages retains the activity records for the given pages
func FilterPages(ctx context.Context, activity *dataset.Dataset[tables.ActivityRecord], pages ...string) (*dataset.Dataset[tables.ActivityRecord], error) {
	return dataset.Filter(ctx, activity, func(a tables.ActivityRecord) bool {
		return slices.Contains(pages, a.Page)
	})
}

// ProjectUsers selects the users dimension. No deduplication is performed, a user whose level
// changes appears once per activity record
func ProjectUsers(ctx context.Context, activity *dataset.Dataset[tables.ActivityRecord]) (*dataset.Dataset[tables.User], error) {
	return dataset.Map(ctx, activity, func(a tables.ActivityRecord) (tables.User, error) {
		return tables.User{
			UserId:    a.UserId,
			FirstName: a.FirstName,
			LastName:  a.LastName,
			Gender:    a.Gender,
			Level:     a.Level,
		}, nil
	})
}
