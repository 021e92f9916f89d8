// Package ledger reads and appends the ^-delimited story ledger shared by
// crawler instances.
package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/IshaanNene/storyspider/internal/types"
)

// Separator delimits the fields of a ledger line.
const Separator = "^"

// FieldCount is the number of fields in a well-formed line.
const FieldCount = 8

// TimestampLayout renders the record timestamp, e.g. "Tue Mar 05 14:02:11 CET 2024".
const TimestampLayout = "Mon Jan 02 15:04:05 MST 2006"

// Fixed placeholder values for fields a spider has no data for.
const (
	LocationLong = "locationLong"
	LocationLat  = "locationLat"
	SourceTag    = "spider"
	UserName     = "userName"
	ScreenName   = "screenName"
)

// ErrMalformedLine is returned by ParseLine for lines without exactly
// FieldCount fields.
var ErrMalformedLine = errors.New("malformed ledger line")

// Line is one ledger record.
type Line struct {
	LocationLong string
	LocationLat  string
	Source       string
	Timestamp    string
	URL          string // identity key
	UserName     string
	ScreenName   string
	Text         string
}

// NewLine builds the ledger line for an extracted record.
func NewLine(rec *types.Record, now time.Time) Line {
	return Line{
		LocationLong: LocationLong,
		LocationLat:  LocationLat,
		Source:       SourceTag,
		Timestamp:    now.Format(TimestampLayout),
		URL:          rec.URL,
		UserName:     UserName,
		ScreenName:   ScreenName,
		Text:         "<title>" + rec.Title + "</title><body>" + rec.Body + "</body>",
	}
}

// String joins the fields without a trailing newline.
func (l Line) String() string {
	return strings.Join([]string{
		l.LocationLong,
		l.LocationLat,
		l.Source,
		l.Timestamp,
		l.URL,
		l.UserName,
		l.ScreenName,
		l.Text,
	}, Separator)
}

// ParseLine splits a ledger line (surrounding whitespace ignored) into its fields.
func ParseLine(s string) (Line, error) {
	fields := strings.Split(strings.TrimSpace(s), Separator)
	if len(fields) != FieldCount {
		return Line{}, fmt.Errorf("%w: %d fields", ErrMalformedLine, len(fields))
	}
	return Line{
		LocationLong: fields[0],
		LocationLat:  fields[1],
		Source:       fields[2],
		Timestamp:    fields[3],
		URL:          fields[4],
		UserName:     fields[5],
		ScreenName:   fields[6],
		Text:         fields[7],
	}, nil
}
