// Package hours parses OSM-style opening_hours expressions and evaluates
// open/closed status at a given instant.
//
// Supported forms: "Mo-Fr 09:00-18:00", "24/7", "Mo-Sa 08:00-22:00; Su 10:00-20:00".
package hours

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrEmptyExpression is returned when there is no expression to parse.
var ErrEmptyExpression = errors.New("empty opening hours expression")

const minutesPerDay = 24 * 60

// Interval is a time-of-day window in minutes since midnight.
// Start > End means the interval wraps past midnight.
type Interval struct {
	Start int
	End   int
}

// Rule applies a set of intervals to a set of weekdays.
// Days is indexed in OSM week order, Monday = 0 .. Sunday = 6.
type Rule struct {
	Days      [7]bool
	Intervals []Interval
}

// Schedule is a parsed weekly-recurring opening hours expression.
// A schedule with zero rules is always closed.
type Schedule struct {
	Rules []Rule
}

var timeRangeRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})-(\d{1,2}):(\d{2})$`)

var dayIndex = map[string]int{
	"Mo": 0, "Tu": 1, "We": 2, "Th": 3, "Fr": 4, "Sa": 5, "Su": 6,
	"Monday": 0, "Tuesday": 1, "Wednesday": 2, "Thursday": 3,
	"Friday": 4, "Saturday": 5, "Sunday": 6,
}

// Parse interprets an opening hours expression. Parsing is best-effort:
// unrecognized fragments are skipped rather than failing the whole input.
func Parse(expr string) (Schedule, error) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return Schedule{}, ErrEmptyExpression
	}

	lower := strings.ToLower(trimmed)

	if strings.Contains(lower, "24/7") || strings.Contains(lower, "24 hours") {
		return alwaysOpen(), nil
	}

	if strings.Contains(lower, "closed") || trimmed == "off" {
		return Schedule{}, nil
	}

	var sched Schedule
	for _, fragment := range strings.Split(trimmed, ";") {
		fragment = strings.TrimSpace(fragment)
		if fragment == "" {
			continue
		}
		if rule, ok := parseRule(fragment); ok {
			sched.Rules = append(sched.Rules, rule)
		}
	}

	return sched, nil
}

// IsOpen reports whether the schedule is open at the given instant.
// The instant's weekday and wall-clock minute are evaluated in its own location.
func (s Schedule) IsOpen(at time.Time) bool {
	day := osmDay(at.Weekday())
	current := at.Hour()*60 + at.Minute()

	for _, rule := range s.Rules {
		if !rule.Days[day] {
			continue
		}
		for _, iv := range rule.Intervals {
			if inInterval(current, iv) {
				return true
			}
		}
	}
	return false
}

func parseRule(fragment string) (Rule, bool) {
	// A fragment matching the bare time pattern applies to every day.
	if iv, ok := parseTimeRange(fragment); ok {
		rule := Rule{Intervals: []Interval{iv}}
		for i := range rule.Days {
			rule.Days[i] = true
		}
		return rule, true
	}

	daySpec, timeSpec, found := strings.Cut(fragment, " ")
	if !found {
		return Rule{}, false
	}

	rule := Rule{Days: parseDaySpec(daySpec)}

	iv, ok := parseTimeRange(strings.TrimSpace(timeSpec))
	if !ok {
		// A rule with no recognizable time contributes no interval.
		return Rule{}, false
	}
	rule.Intervals = append(rule.Intervals, iv)

	return rule, true
}

// parseDaySpec accepts a single day token, a comma-separated list, or a
// hyphenated range. A range whose start index exceeds its end wraps around
// the week (Sa-Mo covers Sat, Sun, Mon). Unknown tokens are ignored.
func parseDaySpec(spec string) [7]bool {
	var days [7]bool

	for _, token := range strings.Split(spec, ",") {
		token = strings.TrimSpace(token)

		if start, end, isRange := strings.Cut(token, "-"); isRange {
			si, okS := dayIndex[strings.TrimSpace(start)]
			ei, okE := dayIndex[strings.TrimSpace(end)]
			if okS && okE {
				for i := si; ; i = (i + 1) % 7 {
					days[i] = true
					if i == ei {
						break
					}
				}
				continue
			}
		}

		if i, ok := dayIndex[token]; ok {
			days[i] = true
		}
	}

	return days
}

func parseTimeRange(s string) (Interval, bool) {
	m := timeRangeRe.FindStringSubmatch(s)
	if m == nil {
		return Interval{}, false
	}

	sh, _ := strconv.Atoi(m[1])
	sm, _ := strconv.Atoi(m[2])
	eh, _ := strconv.Atoi(m[3])
	em, _ := strconv.Atoi(m[4])

	return Interval{Start: sh*60 + sm, End: eh*60 + em}, true
}

func inInterval(current int, iv Interval) bool {
	if iv.Start <= iv.End {
		return current >= iv.Start && current <= iv.End
	}
	// Overnight wrap, e.g. 22:00-02:00.
	return current >= iv.Start || current <= iv.End
}

func alwaysOpen() Schedule {
	rule := Rule{Intervals: []Interval{{Start: 0, End: minutesPerDay}}}
	for i := range rule.Days {
		rule.Days[i] = true
	}
	return Schedule{Rules: []Rule{rule}}
}

// osmDay converts Go's Sunday-first weekday to OSM's Monday-first index.
func osmDay(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}
