package audit

import (
	"context"
	"sort"
	"time"
)

const dayLayout = "2006-01-02"

// DailyCount is the number of entries recorded on one UTC day.
type DailyCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// PerformerCount is one performer's entry count within the window.
type PerformerCount struct {
	PerformedBy string `json:"performed_by"`
	Count       int    `json:"count"`
}

// Summary aggregates audit activity over a trailing window of days.
type Summary struct {
	Days        int              `json:"days"`
	Total       int              `json:"total"`
	ByAction    map[Action]int   `json:"by_action"`
	ByPerformer []PerformerCount `json:"by_performer"`
	Daily       []DailyCount     `json:"daily"`
}

// Stats summarises entries from the last days days ending at now. Every
// action appears in ByAction and every day in the window appears in Daily,
// zero-filled. Performers are ordered by count, then name.
func Stats(ctx context.Context, store Store, days int, now time.Time) (*Summary, error) {
	if days <= 0 {
		days = 30
	}
	now = now.UTC()
	firstDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -(days - 1))

	entries, err := store.List(ctx, Filter{Since: firstDay})
	if err != nil {
		return nil, err
	}

	summary := &Summary{Days: days, ByAction: make(map[Action]int, len(Actions))}
	for _, a := range Actions {
		summary.ByAction[a] = 0
	}
	daily := make(map[string]int, days)
	performers := make(map[string]int)

	for _, e := range entries {
		if e.Timestamp.After(now) {
			continue
		}
		summary.Total++
		summary.ByAction[e.Action]++
		performers[e.PerformedBy]++
		daily[e.Timestamp.UTC().Format(dayLayout)]++
	}

	for i := 0; i < days; i++ {
		day := firstDay.AddDate(0, 0, i).Format(dayLayout)
		summary.Daily = append(summary.Daily, DailyCount{Day: day, Count: daily[day]})
	}

	for name, count := range performers {
		summary.ByPerformer = append(summary.ByPerformer, PerformerCount{PerformedBy: name, Count: count})
	}
	sort.Slice(summary.ByPerformer, func(i, j int) bool {
		a, b := summary.ByPerformer[i], summary.ByPerformer[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.PerformedBy < b.PerformedBy
	})

	return summary, nil
}
