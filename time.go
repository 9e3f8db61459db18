package proligent

import (
	"strings"
	"time"
	_ "time/tzdata" // zone lookups must work on hosts without a zoneinfo database

	perrors "github.com/jacoelho/proligent/errors"
)

// TimestampLayout is the document timestamp format. The offset is always
// numeric, UTC included.
const TimestampLayout = "2006-01-02T15:04:05-07:00"

// naiveLayouts are accepted by ParseTimestamp for text without an offset.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// FormatTimestamp renders t in loc using TimestampLayout.
// A nil loc means time.Local.
func FormatTimestamp(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(TimestampLayout)
}

// ParseTimestamp reads s as an absolute instant when it carries an offset,
// and as wall-clock time in loc otherwise. A nil loc means time.Local.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, perrors.Newf(perrors.ErrInvalidArgument, "parse timestamp %q", s)
}

// LoadLocation resolves an IANA zone name. Empty and "Local" map to
// time.Local.
func LoadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "Local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrInvalidArgument, err, "load time zone "+name)
	}
	return loc, nil
}
