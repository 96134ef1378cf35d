package core

import (
	"time"
)

// Window partitions items around Now: ModeNext keeps EndTime >= Now and
// ModePrev keeps EndTime < Now.
type Window struct {
	Mode Mode
	Now  time.Time
}

func (w Window) Matches(item ScheduledItem) bool {
	if w.Mode == ModePrev {
		return item.EndTime.Before(w.Now)
	}

	return !item.EndTime.Before(w.Now)
}

// operator is the SQL comparison of end_time against Now.
func (w Window) operator() string {
	if w.Mode == ModePrev {
		return "<"
	}

	return ">="
}
