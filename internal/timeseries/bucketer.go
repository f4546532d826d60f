package timeseries

import (
	"fmt"
	"time"
)

// Key layouts for the manual bucketing tiers. Week keys are the date of the
// period's Monday, so weeks anchor to Monday-start ISO weeks like the native
// truncation does.
const (
	hourKeyLayout  = "2006-01-02 15"
	dayKeyLayout   = "2006-01-02"
	monthKeyLayout = "2006-01"
)

// bucketSubmissions is the manual fallback: format each timestamp into a
// canonical per-unit string key, group by that key, then parse the key back
// into a period-start timestamp.
func bucketSubmissions(subs []Submission, interval Interval, loc *time.Location) ([]Bucket, error) {
	type group struct {
		count           int
		completionSum   int
		completionCount int
	}

	groups := make(map[string]*group)
	for _, sub := range subs {
		key := periodKey(sub.SubmittedAt.In(loc), interval)
		g, ok := groups[key]
		if !ok {
			g = &group{}
			groups[key] = g
		}
		g.count++
		if sub.CompletionSeconds != nil {
			g.completionSum += *sub.CompletionSeconds
			g.completionCount++
		}
	}

	buckets := make([]Bucket, 0, len(groups))
	for key, g := range groups {
		start, err := parsePeriodKey(key, interval, loc)
		if err != nil {
			return nil, err
		}
		avg := 0.0
		if g.completionCount > 0 {
			avg = float64(g.completionSum) / float64(g.completionCount)
		}
		buckets = append(buckets, Bucket{
			PeriodStart:       start,
			ResponseCount:     g.count,
			AvgCompletionTime: avg,
		})
	}
	return buckets, nil
}

func periodKey(t time.Time, interval Interval) string {
	switch interval {
	case IntervalHour:
		return t.Format(hourKeyLayout)
	case IntervalWeek:
		return mondayOf(t).Format(dayKeyLayout)
	case IntervalMonth:
		return t.Format(monthKeyLayout)
	default:
		return t.Format(dayKeyLayout)
	}
}

func parsePeriodKey(key string, interval Interval, loc *time.Location) (time.Time, error) {
	layout := dayKeyLayout
	switch interval {
	case IntervalHour:
		layout = hourKeyLayout
	case IntervalMonth:
		layout = monthKeyLayout
	}

	start, err := time.ParseInLocation(layout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed period key %q: %w", key, err)
	}
	return start, nil
}

// mondayOf truncates t to the start of its ISO week.
func mondayOf(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	return day.AddDate(0, 0, -offset)
}

// FillGaps inserts zero-count buckets for every period missing between the
// first and last observed period, so trend charts render a dense series
// instead of misleading gaps. Input must already be sorted ascending.
func FillGaps(buckets []Bucket, interval Interval, loc *time.Location) []Bucket {
	if len(buckets) < 2 {
		return buckets
	}

	filled := make([]Bucket, 0, len(buckets))
	filled = append(filled, buckets[0])
	for _, b := range buckets[1:] {
		for {
			next := nextPeriod(filled[len(filled)-1].PeriodStart.In(loc), interval)
			if !next.Before(b.PeriodStart) {
				break
			}
			filled = append(filled, Bucket{PeriodStart: next})
		}
		filled = append(filled, b)
	}
	return filled
}

func nextPeriod(t time.Time, interval Interval) time.Time {
	switch interval {
	case IntervalHour:
		return t.Add(time.Hour)
	case IntervalWeek:
		return t.AddDate(0, 0, 7)
	case IntervalMonth:
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}
