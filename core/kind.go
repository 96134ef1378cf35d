package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind selects one of the two scheduled collections.
type Kind int

const (
	KindClass Kind = iota
	KindTask
)

func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindTask:
		return "task"
	}

	panic(fmt.Sprintf("core: unknown kind %d", int(k)))
}

func (k Kind) table() string {
	switch k {
	case KindClass:
		return "classes"
	case KindTask:
		return "tasks"
	}

	panic(fmt.Sprintf("core: unknown kind %d", int(k)))
}

// NewDraft returns an empty create payload for the kind, ready to be decoded.
func (k Kind) NewDraft() Draft {
	switch k {
	case KindClass:
		return &ClassDraft{}
	case KindTask:
		return &TaskDraft{}
	}

	panic(fmt.Sprintf("core: unknown kind %d", int(k)))
}

// NewPatch returns an empty partial update for the kind.
func (k Kind) NewPatch() Patch {
	switch k {
	case KindClass:
		return &ClassPatch{}
	case KindTask:
		return &TaskPatch{}
	}

	panic(fmt.Sprintf("core: unknown kind %d", int(k)))
}

// Draft is a decoded create payload.
type Draft interface {
	item() (*ScheduledItem, error)
}

// Patch is a decoded partial update. Only the fields it declares can change.
type Patch interface {
	apply(item *ScheduledItem) error
}

type ClassDetails struct {
	Instructor string     `json:"instructor"`
	Color      string     `json:"color"`
	Day        string     `json:"day"`
	Date       *time.Time `json:"date,omitempty"`
}

type ClassDraft struct {
	Subject    string     `json:"subject"    validate:"required,max=100"`
	StartTime  time.Time  `json:"startTime"  validate:"required"`
	EndTime    time.Time  `json:"endTime"    validate:"required"`
	Instructor string     `json:"instructor" validate:"required,max=100"`
	Color      string     `json:"color"      validate:"required,len=7,hexcolor"`
	Day        string     `json:"day"        validate:"required,weekday"`
	Date       *time.Time `json:"date,omitempty"`
}

func (d *ClassDraft) item() (*ScheduledItem, error) {
	details, err := json.Marshal(ClassDetails{Instructor: d.Instructor, Color: d.Color, Day: d.Day, Date: d.Date})
	if err != nil {
		return nil, fmt.Errorf("failed to encode class details: %w", err)
	}

	return &ScheduledItem{Subject: d.Subject, StartTime: d.StartTime, EndTime: d.EndTime, Details: details}, nil
}

type ClassPatch struct {
	Subject    *string    `json:"subject"    validate:"omitnil,min=1,max=100"`
	StartTime  *time.Time `json:"startTime"`
	EndTime    *time.Time `json:"endTime"`
	Instructor *string    `json:"instructor" validate:"omitnil,min=1,max=100"`
	Color      *string    `json:"color"      validate:"omitnil,len=7,hexcolor"`
	Day        *string    `json:"day"        validate:"omitnil,weekday"`
	Date       *time.Time `json:"date"`
}

func (p *ClassPatch) apply(item *ScheduledItem) error {
	var details ClassDetails

	err := decodeDetails(item.Details, &details)
	if err != nil {
		return err
	}

	setIf(&item.Subject, p.Subject)
	setIf(&item.StartTime, p.StartTime)
	setIf(&item.EndTime, p.EndTime)
	setIf(&details.Instructor, p.Instructor)
	setIf(&details.Color, p.Color)
	setIf(&details.Day, p.Day)

	if p.Date != nil {
		details.Date = p.Date
	}

	item.Details, err = json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to encode class details: %w", err)
	}

	return nil
}

type TaskDetails struct {
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority,omitempty"`
	Completed   bool   `json:"completed"`
}

type TaskDraft struct {
	Title       string    `json:"title"       validate:"required,max=100"`
	StartTime   time.Time `json:"startTime"   validate:"required"`
	EndTime     time.Time `json:"endTime"     validate:"required"`
	Description string    `json:"description" validate:"max=1000"`
	Priority    string    `json:"priority"    validate:"omitempty,oneof=low medium high"`
	Completed   bool      `json:"completed"`
}

func (d *TaskDraft) item() (*ScheduledItem, error) {
	details, err := json.Marshal(TaskDetails{Description: d.Description, Priority: d.Priority, Completed: d.Completed})
	if err != nil {
		return nil, fmt.Errorf("failed to encode task details: %w", err)
	}

	return &ScheduledItem{Subject: d.Title, StartTime: d.StartTime, EndTime: d.EndTime, Details: details}, nil
}

type TaskPatch struct {
	Title       *string    `json:"title"       validate:"omitnil,min=1,max=100"`
	StartTime   *time.Time `json:"startTime"`
	EndTime     *time.Time `json:"endTime"`
	Description *string    `json:"description" validate:"omitnil,max=1000"`
	Priority    *string    `json:"priority"    validate:"omitnil,oneof=low medium high"`
	Completed   *bool      `json:"completed"`
}

func (p *TaskPatch) apply(item *ScheduledItem) error {
	var details TaskDetails

	err := decodeDetails(item.Details, &details)
	if err != nil {
		return err
	}

	setIf(&item.Subject, p.Title)
	setIf(&item.StartTime, p.StartTime)
	setIf(&item.EndTime, p.EndTime)
	setIf(&details.Description, p.Description)
	setIf(&details.Priority, p.Priority)
	setIf(&details.Completed, p.Completed)

	item.Details, err = json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to encode task details: %w", err)
	}

	return nil
}

func decodeDetails(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return nil
	}

	err := json.Unmarshal(raw, dst)
	if err != nil {
		return fmt.Errorf("failed to decode stored details: %w", err)
	}

	return nil
}

func setIf[T any](dst *T, value *T) {
	if value != nil {
		*dst = *value
	}
}
