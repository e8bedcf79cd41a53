package mapping

import (
	"regexp"
	"strconv"
	"strings"
)

// maxDurationSample bounds a plausible single-flight duration in hours
const maxDurationSample = 24

var (
	// header words used for flight-time columns across common logbook exports
	durationHeader = regexp.MustCompile(`(?i)(^|[^a-z])(time|times|hours?|hrs?|duration|block|airborne|hobbs|tach|pic|sic|p1|p2|pilot in command|dual|solo|night|imc|ifr|instrument|hood|sim|simulator|ftd|xc|cross ?country|instructor|cfi)($|[^a-z])`)

	// columns holding a count or text, whatever else the header says
	countOrTextHeader = regexp.MustCompile(`(?i)(^|[^a-z])(landings|ldgs?|approach(es)?|app|holds?|name|ident|reg|registration|remarks?|comments?)($|[^a-z])`)

	// clock words: a column named only by them holds a time of day, but
	// "Block Time (Out-In)" or "Flight Time UTC" still carry a duration
	clockHeader = regexp.MustCompile(`(?i)(^|[^a-z])(date|utc|zulu|local|out|off|dep|departure|arr|arrival|start|end|takeoff|landing)($|[^a-z])`)

	clockValue    = regexp.MustCompile(`^\d{1,3}:[0-5]\d$`)
	shortDuration = regexp.MustCompile(`^\d:[0-5]\d$`)
	decimalHours  = regexp.MustCompile(`^\d{1,2}(\.\d+)?$`)
)

// isDurationColumn reports whether a column carries flight-duration data.
// A duration word in the header is enough unless the header also names a
// count, or names a clock and the samples read as times of day. Without a
// duration word every non-empty sample must be an H:MM value.
func isDurationColumn(header string, samples []string) bool {
	header = strings.TrimSpace(header)
	if countOrTextHeader.MatchString(header) {
		return false
	}

	if durationHeader.MatchString(header) {
		if !clockHeader.MatchString(header) {
			return true
		}
		return samplesLookLikeDurations(samples)
	}
	if clockHeader.MatchString(header) {
		return false
	}

	seen := 0
	for _, s := range samples {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if !clockValue.MatchString(s) {
			return false
		}
		seen++
	}
	return seen > 0
}

// samplesLookLikeDurations is true when no sample reads as a time of day.
// Every non-empty sample must be decimal hours below maxDurationSample or a
// single-digit H:MM, and at least one must carry a fraction or a colon so a
// column of bare integers stays ambiguous. An empty sample keeps the column.
func samplesLookLikeDurations(samples []string) bool {
	seen, fractional := 0, false
	for _, s := range samples {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		seen++
		switch {
		case shortDuration.MatchString(s):
			fractional = true
		case decimalHours.MatchString(s):
			f, err := strconv.ParseFloat(s, 64)
			if err != nil || f >= maxDurationSample {
				return false
			}
			if strings.Contains(s, ".") {
				fractional = true
			}
		default:
			return false
		}
	}
	return seen == 0 || fractional
}
