package core

import (
	"slices"
	"time"
)

const dayLayout = "2006-01-02"

// FormatFlat orders items by start time in the direction of mode. Items
// sharing a start time keep their relative order.
func FormatFlat(items []ScheduledItem, mode Mode) []ScheduledItem {
	out := slices.Clone(items)
	if out == nil {
		out = []ScheduledItem{}
	}

	slices.SortStableFunc(out, func(a, b ScheduledItem) int {
		if mode.ascending() {
			return a.StartTime.Compare(b.StartTime)
		}

		return b.StartTime.Compare(a.StartTime)
	})

	return out
}

// FormatGroup buckets items by the calendar date of their start time as seen
// in loc. Buckets and the items inside them follow the direction of mode.
func FormatGroup(items []ScheduledItem, mode Mode, loc *time.Location) []DayBucket {
	buckets := []DayBucket{}
	index := map[string]int{}

	for _, item := range FormatFlat(items, mode) {
		date := item.StartTime.In(loc).Format(dayLayout)

		i, ok := index[date]
		if !ok {
			i = len(buckets)
			index[date] = i
			buckets = append(buckets, DayBucket{Date: date})
		}

		buckets[i].Items = append(buckets[i].Items, item)
		buckets[i].Count++
	}

	return buckets
}
