package transform

import (
	"fmt"
	"math"
	"strings"

	"github.com/turbot/songplay-etl/tables"
)

type MatchMode string

const (
	// MatchExact compares strings byte for byte and floats by value
	MatchExact MatchMode = "exact"
	// MatchRounded trims surrounding whitespace from strings and rounds floats to Precision decimal places
	MatchRounded MatchMode = "rounded"

	DefaultMatchPrecision = 3
)

// MatchPolicy controls how an activity record is matched to a catalog record on
// (song, length, artist, location) = (title, duration, artist_name, artist_location).
// String comparison is always case-sensitive and a null value never matches
type MatchPolicy struct {
	Mode      MatchMode
	Precision int
}

func DefaultMatchPolicy() MatchPolicy {
	return MatchPolicy{Mode: MatchRounded, Precision: DefaultMatchPrecision}
}

func (m MatchPolicy) Validate() error {
	switch m.Mode {
	case MatchExact:
	case MatchRounded:
		if m.Precision < 0 || m.Precision > 15 {
			return fmt.Errorf("match precision must be between 0 and 15, got %d", m.Precision)
		}
	default:
		return fmt.Errorf("invalid match mode '%s', must be one of: %s, %s", m.Mode, MatchExact, MatchRounded)
	}
	return nil
}

type matchKey struct {
	song     string
	artist   string
	location string
	length   uint64
}

func (m MatchPolicy) key(song, artist, location *string, length *float64) (matchKey, bool) {
	if song == nil || artist == nil || location == nil || length == nil {
		return matchKey{}, false
	}
	if m.Mode == MatchExact {
		return matchKey{
			song:     *song,
			artist:   *artist,
			location: *location,
			length:   floatKey(*length),
		}, true
	}
	return matchKey{
		song:     strings.TrimSpace(*song),
		artist:   strings.TrimSpace(*artist),
		location: strings.TrimSpace(*location),
		length:   floatKey(roundTo(*length, m.Precision)),
	}, true
}

// roundTo rounds f to precision decimal places.
// Values too large to carry a fractional part at that precision are returned unchanged
func roundTo(f float64, precision int) float64 {
	scale := math.Pow10(precision)
	scaled := f * scale
	if math.IsInf(scaled, 0) || math.Abs(scaled) >= 1<<52 {
		return f
	}
	return math.Round(scaled) / scale
}

// floatKey returns the bits of f, with -0 folded into 0
func floatKey(f float64) uint64 {
	if f == 0 {
		return 0
	}
	return math.Float64bits(f)
}

func (m MatchPolicy) activityKey(a tables.ActivityRecord) (matchKey, bool) {
	return m.key(a.Song, a.Artist, a.Location, a.Length)
}

func (m MatchPolicy) catalogKey(c tables.CatalogRecord) (matchKey, bool) {
	return m.key(&c.Title, &c.ArtistName, c.ArtistLocation, &c.Duration)
}
