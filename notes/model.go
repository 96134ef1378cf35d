package notes

import (
	"strings"
	"time"
)

type Note struct {
	Id        string     `json:"id"`
	Owner     string     `json:"owner"`
	Title     string     `json:"title"`
	Subject   string     `json:"subject"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

type NoteDraft struct {
	Title   string `json:"title"   validate:"required,max=200"`
	Subject string `json:"subject" validate:"max=100"`
	Content string `json:"content" validate:"max=200000"`
}

// NotePatch lists the only fields a note update may touch.
type NotePatch struct {
	Title   *string `json:"title"   validate:"omitnil,min=1,max=200"`
	Subject *string `json:"subject" validate:"omitnil,max=100"`
	Content *string `json:"content" validate:"omitnil,max=200000"`
}

// subjectFilter turns the subject query parameter into a filter; the
// placeholders browsers send for "no subject" select every note.
func subjectFilter(subject string) string {
	switch strings.ToLower(strings.TrimSpace(subject)) {
	case "", "all", "undefined", "null":
		return ""
	default:
		return subject
	}
}
