package coerce

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"infinite-experiment/logbook/internal/constants"
	"infinite-experiment/logbook/internal/models"
	"infinite-experiment/logbook/internal/registry"
)

// TwoDigitYearPivot bounds how far into the future a two-digit year may land
// before it is read as the previous century.
var TwoDigitYearPivot = 1

// Layouts tried when the batch has no format hint. zoned layouts carry their
// own offset.
var (
	zonedLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05Z07:00",
		"2006-01-02 15:04Z07:00",
	}
	isoLayouts = []string{
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
		"2006/01/02 15:04",
		"2006/01/02",
		"2006.01.02",
		"Jan 2, 2006 15:04",
		"Jan 2, 2006",
		"2 Jan 2006 15:04",
		"2 Jan 2006",
		"02-Jan-2006",
		"January 2, 2006",
		"20060102",
	}
	usLayouts = []string{
		"1/2/2006 15:04:05", "1/2/2006 15:04", "1/2/2006 3:04 PM", "1/2/2006",
		"1-2-2006 15:04", "1-2-2006",
		"1/2/06 15:04", "1/2/06",
	}
	euLayouts = []string{
		"2/1/2006 15:04:05", "2/1/2006 15:04", "2/1/2006 3:04 PM", "2/1/2006",
		"2-1-2006 15:04", "2-1-2006",
		"2.1.2006 15:04", "2.1.2006",
		"2/1/06 15:04", "2/1/06",
		"2.1.06",
	}
)

var errNoZone = errors.New("value has no time zone and no default zone is configured")

// TimestampParser reads timestamps for one batch
type TimestampParser struct {
	layout string
	loc    *time.Location
	now    func() time.Time
}

// NewTimestampParser builds a parser for hint, a token pattern such as
// "MM/DD/YYYY HH:mm" (a Go reference layout is also accepted). loc is applied
// to values without an offset; nil rejects them.
func NewTimestampParser(hint string, loc *time.Location) *TimestampParser {
	return &TimestampParser{
		layout: LayoutFromHint(hint),
		loc:    loc,
		now:    time.Now,
	}
}

// Layout returns the Go layout derived from the hint, if any
func (p *TimestampParser) Layout() string {
	return p.layout
}

// Parse returns s as a UTC instant
func (p *TimestampParser) Parse(def registry.ColumnDefinition, s string) (time.Time, error) {
	t, err := p.parse(s)
	if err != nil {
		return time.Time{}, models.NewError(constants.ErrCodeInvalidTimestamp, def.Key, err)
	}
	return t.UTC(), nil
}

func (p *TimestampParser) parse(s string) (time.Time, error) {
	if p.layout != "" {
		return p.parseLayout(p.layout, s)
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if p.loc == nil {
		if _, err := p.firstMatch(append(append(isoLayouts, usLayouts...), euLayouts...), s); err == nil {
			return time.Time{}, errNoZone
		}
		return time.Time{}, fmt.Errorf("unrecognized date %q", s)
	}

	if t, err := p.firstMatch(isoLayouts, s); err == nil {
		return t, nil
	}

	us, usErr := p.firstMatch(usLayouts, s)
	eu, euErr := p.firstMatch(euLayouts, s)
	switch {
	case usErr == nil && euErr == nil:
		if !us.Equal(eu) {
			return time.Time{}, fmt.Errorf("%q is ambiguous between month/day and day/month order", s)
		}
		return us, nil
	case usErr == nil:
		return us, nil
	case euErr == nil:
		return eu, nil
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func (p *TimestampParser) firstMatch(layouts []string, s string) (time.Time, error) {
	for _, layout := range layouts {
		if t, err := p.inLocation(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func (p *TimestampParser) parseLayout(layout, s string) (time.Time, error) {
	if hasZone(layout) {
		return time.Parse(layout, s)
	}
	if p.loc == nil {
		return time.Time{}, errNoZone
	}
	t, err := p.inLocation(layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q does not match format %q", s, layout)
	}
	return t, nil
}

func (p *TimestampParser) inLocation(layout, s string) (time.Time, error) {
	loc := p.loc
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(layout, s, loc)
	if err != nil {
		return time.Time{}, err
	}
	if strings.Contains(layout, "06") && !strings.Contains(layout, "2006") {
		if t.Year() > p.now().Year()+TwoDigitYearPivot {
			t = t.AddDate(-100, 0, 0)
		}
	}
	return t, nil
}

func hasZone(layout string) bool {
	return strings.Contains(layout, "Z07") || strings.Contains(layout, "-07") || strings.Contains(layout, "MST")
}

// hint tokens, longest first so "MMMM" wins over "MM"
var hintTokens = []struct{ token, layout string }{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"dddd", "Monday"},
	{"ddd", "Mon"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"HH", "15"},
	{"hh", "03"},
	{"mm", "04"},
	{"ss", "05"},
	{"SSS", "000"},
	{"M", "1"},
	{"D", "2"},
	{"H", "15"},
	{"h", "3"},
	{"A", "PM"},
	{"a", "pm"},
	{"Z", "Z07:00"},
}

// LayoutFromHint converts a token pattern into a Go time layout. Strings that
// already contain the Go reference year are returned unchanged.
func LayoutFromHint(hint string) string {
	hint = strings.TrimSpace(hint)
	if hint == "" || strings.Contains(hint, "2006") {
		return hint
	}

	var b strings.Builder
	for i := 0; i < len(hint); {
		matched := false
		for _, tok := range hintTokens {
			if strings.HasPrefix(hint[i:], tok.token) {
				b.WriteString(tok.layout)
				i += len(tok.token)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(hint[i])
			i++
		}
	}
	return b.String()
}
