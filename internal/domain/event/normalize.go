package event

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/geocoder89/eventbooking/internal/validation"
)

const entity = "event"

var (
	ErrInvalidDate = errors.New("invalid date format")
	ErrInvalidTime = errors.New("time must be in HH:MM format")
)

var (
	nonSlugChars   = regexp.MustCompile(`[^\w\s-]`)
	slugSeparators = regexp.MustCompile(`[\s_-]+`)
	clockPattern   = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):([0-5][0-9])$`)
)

// accepted date inputs; layouts without a zone are read as UTC. Numeric
// fields in the non-padded layouts also accept leading zeros.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-1-2",
	"2006/1/2",
	"1/2/2006",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
	"Mon, Jan 2, 2006",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.ANSIC,
	time.UnixDate,
}

// time-of-day inputs tried after the strict HH:MM form; input is upper-cased first
var clockLayouts = []string{
	"3:04 PM",
	"3:04PM",
	"3:04:05 PM",
	"3 PM",
	"3PM",
	"15:04:05",
}

// Normalize validates candidate and fills its derived fields. prev is the
// currently stored version of the record, or nil when it has never been saved;
// slug, date and time are only recomputed when their source differs from prev.
func Normalize(candidate Event, prev *Event) (Event, error) {
	e := candidate.trimmed()

	err := validation.Struct(entity, e)
	if err != nil {
		return Event{}, err
	}

	if prev == nil || e.Title != prev.Title {
		e.Slug = Slugify(e.Title)
	} else {
		e.Slug = prev.Slug
	}

	if prev == nil || e.Date != prev.Date {
		d, err := NormalizeDate(e.Date)
		if err != nil {
			return Event{}, validation.NewFieldError(entity, "date", "date_format", err.Error())
		}
		e.Date = d
	}

	if prev == nil || e.Time != prev.Time {
		t, err := NormalizeTime(e.Time)
		if err != nil {
			return Event{}, validation.NewFieldError(entity, "time", "time_format", err.Error())
		}
		e.Time = t
	}

	if len(e.Agenda) == 0 {
		return Event{}, validation.NewFieldError(entity, "agenda", "min", "at least one agenda item is required")
	}
	if len(e.Tags) == 0 {
		return Event{}, validation.NewFieldError(entity, "tags", "min", "at least one tag is required")
	}

	return e, nil
}

// Slugify derives a URL-safe identifier from a title. Characters outside
// ASCII word characters, whitespace and hyphens are dropped, so a title with
// no ASCII letters or digits yields "".
func Slugify(title string) string {
	s := strings.TrimSpace(strings.ToLower(title))
	s = nonSlugChars.ReplaceAllString(s, "")
	s = slugSeparators.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// NormalizeDate returns the UTC calendar day of the parsed input as YYYY-MM-DD.
func NormalizeDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t.UTC().Format(time.DateOnly), nil
		}
	}
	return "", ErrInvalidDate
}

// NormalizeTime returns raw as a zero-padded 24-hour HH:MM string.
func NormalizeTime(raw string) (string, error) {
	raw = strings.TrimSpace(raw)

	if m := clockPattern.FindStringSubmatch(raw); m != nil {
		hour := m[1]
		if len(hour) == 1 {
			hour = "0" + hour
		}
		return hour + ":" + m[2], nil
	}

	upper := strings.ToUpper(raw)
	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, upper)
		if err == nil {
			return t.Format("15:04"), nil
		}
	}

	return "", ErrInvalidTime
}
