package core

import (
	"encoding/json"
	"time"
)

// ScheduledItem is a class or a task: an owned [StartTime, EndTime) range.
// Details holds the kind-specific fields and is never interpreted here.
type ScheduledItem struct {
	Id        string          `json:"id,omitempty"`
	Owner     string          `json:"owner,omitempty"`
	Subject   string          `json:"subject,omitempty"`
	StartTime time.Time       `json:"startTime"`
	EndTime   time.Time       `json:"endTime"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt *time.Time      `json:"updatedAt,omitempty"`
}

func (item ScheduledItem) Interval() Interval {
	return Interval{Start: item.StartTime, End: item.EndTime}
}

// DayBucket groups the items starting on one calendar date.
type DayBucket struct {
	Date  string          `json:"date"`
	Items []ScheduledItem `json:"items"`
	Count int             `json:"count"`
}

// Listing is the body of a listing response. Items is a []ScheduledItem for
// the flat view and a []DayBucket for the group view.
type Listing struct {
	View       string `json:"view"`
	Mode       string `json:"mode"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalCount int64  `json:"totalCount"`
	TotalPages int    `json:"totalPages"`
	Items      any    `json:"items"`
}
