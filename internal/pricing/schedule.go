package pricing

import (
	"sort"
	"time"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// ExpandSchedule turns a mode-tagged date selection into an ordered,
// deduplicated list of billable windows. It is a pure function of its inputs;
// all failures are ValidationError.
func ExpandSchedule(in ScheduleInput, loc *time.Location) ([]Window, error) {
	if loc == nil {
		loc = time.Local
	}

	days, err := expandDays(in, loc)
	if err != nil {
		return nil, err
	}
	if len(days) == 0 {
		return nil, validationErrorf("schedule contains no days")
	}

	times, err := timesForDays(in, len(days))
	if err != nil {
		return nil, err
	}

	windows := make([]Window, 0, len(days))
	for i, day := range days {
		w, err := buildWindow(day, times[i], loc)
		if err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}

	windows = dedupe(windows)
	sort.Slice(windows, func(i, j int) bool {
		return windows[i].StartsAt.Before(windows[j].StartsAt)
	})

	for i := 1; i < len(windows); i++ {
		if windows[i].StartsAt.Before(windows[i-1].EndsAt) {
			return nil, validationErrorf("windows %s and %s overlap",
				windows[i-1].StartsAt.Format("2006-01-02 15:04"),
				windows[i].StartsAt.Format("2006-01-02 15:04"))
		}
	}

	return windows, nil
}

// expandDays resolves the selection mode into the ordered list of calendar days.
func expandDays(in ScheduleInput, loc *time.Location) ([]time.Time, error) {
	switch in.Mode {
	case SelectSingle:
		if in.Date == "" {
			return nil, validationErrorf("date is required for single-date selection")
		}
		day, err := parseDate(in.Date, loc)
		if err != nil {
			return nil, err
		}
		return []time.Time{day}, nil

	case SelectRange:
		if in.StartDate == "" || in.EndDate == "" {
			return nil, validationErrorf("start_date and end_date are required for range selection")
		}
		start, err := parseDate(in.StartDate, loc)
		if err != nil {
			return nil, err
		}
		end, err := parseDate(in.EndDate, loc)
		if err != nil {
			return nil, err
		}
		if end.Before(start) {
			return nil, validationErrorf("end date %s precedes start date %s", in.EndDate, in.StartDate)
		}
		var days []time.Time
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			days = append(days, d)
		}
		return days, nil

	case SelectMultiple:
		if len(in.Dates) == 0 {
			return nil, validationErrorf("dates list is required for multiple-date selection")
		}
		days := make([]time.Time, 0, len(in.Dates))
		for _, raw := range in.Dates {
			day, err := parseDate(raw, loc)
			if err != nil {
				return nil, err
			}
			days = append(days, day)
		}
		return days, nil

	default:
		return nil, validationErrorf("unknown date selection mode %q", in.Mode)
	}
}

// timesForDays returns one time pair per day according to the time mode.
func timesForDays(in ScheduleInput, dayCount int) ([]TimePair, error) {
	switch in.TimeMode {
	case TimeSameForAll, "":
		pairs := make([]TimePair, dayCount)
		for i := range pairs {
			pairs[i] = in.Time
		}
		return pairs, nil

	case TimePerEntry:
		// The caller must supply exactly one pair per generated day; a
		// mismatch is an error, never a silent drop.
		if len(in.Times) != dayCount {
			return nil, validationErrorf("per-entry time mode requires %d time pairs, got %d", dayCount, len(in.Times))
		}
		return in.Times, nil

	default:
		return nil, validationErrorf("unknown time mode %q", in.TimeMode)
	}
}

func buildWindow(day time.Time, pair TimePair, loc *time.Location) (Window, error) {
	if pair.Start == "" || pair.End == "" {
		return Window{}, validationErrorf("day %s is missing a start/end time", day.Format(dateLayout))
	}
	start, err := parseClock(pair.Start)
	if err != nil {
		return Window{}, err
	}
	end, err := parseClock(pair.End)
	if err != nil {
		return Window{}, err
	}
	startsAt := time.Date(day.Year(), day.Month(), day.Day(), start.Hour(), start.Minute(), 0, 0, loc)
	endsAt := time.Date(day.Year(), day.Month(), day.Day(), end.Hour(), end.Minute(), 0, 0, loc)
	if !startsAt.Before(endsAt) {
		return Window{}, validationErrorf("start time %s must be before end time %s on %s", pair.Start, pair.End, day.Format(dateLayout))
	}
	return Window{Date: day, StartsAt: startsAt, EndsAt: endsAt}, nil
}

func dedupe(windows []Window) []Window {
	type span struct{ start, end time.Time }
	seen := make(map[span]bool, len(windows))
	out := windows[:0]
	for _, w := range windows {
		key := span{w.StartsAt, w.EndsAt}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, w)
	}
	return out
}

func parseDate(raw string, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(dateLayout, raw, loc)
	if err != nil {
		return time.Time{}, validationErrorf("invalid date %q, expected YYYY-MM-DD", raw)
	}
	return day, nil
}

func parseClock(raw string) (time.Time, error) {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}, validationErrorf("invalid time %q, expected HH:MM", raw)
	}
	return t, nil
}
